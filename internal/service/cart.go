package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/cache"
	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/mykafka"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/transport"
)

const (
	MsgQuantityUpdated = "product quantity in cart updated"
	MsgLineRemoved     = "product removed from cart"
	MsgCartCleared     = "cart cleared"
)

const cartLoadTimeout = 10 * time.Second

var (
	errLineNotFound  = fail(ErrNotFound, "product in cart not found")
	errQuantityLimit = fail(ErrValidation, fmt.Sprintf("quantity of one product in cart cannot exceed %d", models.MaxLineQuantity))
	errTotalTooLarge = fail(ErrValidation, "cart total is too large")
)

type CartService struct {
	Repo   *repo.GormRepo
	Cache  cache.CartCache
	Events EventPublisher

	sfg singleflight.Group
}

func (s *CartService) GetCart(ctx context.Context, user *models.User) (*transport.CartView, error) {
	key := strconv.FormatUint(uint64(user.ID), 10)
	v, err, _ := s.sfg.Do(key, func() (any, error) {
		// detached from the first caller: joined callers share this load
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cartLoadTimeout)
		defer cancel()
		l := logging.FromContext(ctx)

		version, cacheable := int64(0), s.Cache != nil
		if cacheable {
			cached, err := s.Cache.Get(ctx, user.ID)
			if err == nil {
				return cached, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				l.Warn("cache_get_error", "user_id", user.ID, "error", err)
			}
			if version, err = s.Cache.Version(ctx, user.ID); err != nil {
				l.Warn("cache_version_error", "user_id", user.ID, "error", err)
				cacheable = false
			}
		}

		cart, err := s.cartOf(ctx, user)
		if err != nil {
			return nil, err
		}
		view, err := s.loadCart(ctx, cart.ID)
		if err != nil {
			return nil, err
		}

		if cacheable {
			if err := s.Cache.Set(ctx, user.ID, version, view); err != nil {
				l.Warn("cache_set_error", "user_id", user.ID, "error", err)
			}
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*transport.CartView), nil
}

// AddProduct puts quantity units of a visible product into the cart. A nil
// quantity means one unit.
func (s *CartService) AddProduct(ctx context.Context, user *models.User, req transport.AddToCartRequest) (*transport.CartView, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if _, err := readProduct(ctx, s.Repo, req.ProductID, user); err != nil {
		return nil, err
	}

	cart, err := s.cartOf(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddToCart(ctx, cart.ID, req.ProductID, quantity); err != nil {
		if errors.Is(err, repo.ErrQuantityLimit) {
			return nil, errQuantityLimit
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	s.changed(ctx, user, "cart_item_added", req.ProductID, quantity)

	return s.loadCart(ctx, cart.ID)
}

func (s *CartService) IncrementLine(ctx context.Context, user *models.User, productID uint) (*transport.CartChangeQuantity, error) {
	cart, err := s.cartOf(ctx, user)
	if err != nil {
		return nil, err
	}

	line, err := s.Repo.IncrementLine(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLineNotFound
		}
		if errors.Is(err, repo.ErrQuantityLimit) {
			return nil, errQuantityLimit
		}
		return nil, fmt.Errorf("increment line: %w", err)
	}
	s.changed(ctx, user, "cart_item_incremented", productID, line.Quantity)

	view, err := s.loadCart(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return &transport.CartChangeQuantity{
		Message:   MsgQuantityUpdated,
		TotalCost: view.TotalCost,
		CartItem:  toLine(*line),
	}, nil
}

// DecrementLine takes one unit off the line. When the last unit goes the line is
// deleted and the result carries the remaining cart instead of the line.
func (s *CartService) DecrementLine(ctx context.Context, user *models.User, productID uint) (*transport.DecrementResult, error) {
	cart, err := s.cartOf(ctx, user)
	if err != nil {
		return nil, err
	}

	deleted, line, err := s.Repo.DecrementLine(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLineNotFound
		}
		return nil, fmt.Errorf("decrement line: %w", err)
	}

	view, err := s.loadCart(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	if deleted {
		s.changed(ctx, user, "cart_item_removed", productID, 0)
		return &transport.DecrementResult{
			Kind:      transport.DecrementLineRemoved,
			Message:   MsgLineRemoved,
			TotalCost: view.TotalCost,
			Cart:      view.Cart,
		}, nil
	}

	s.changed(ctx, user, "cart_item_decremented", productID, line.Quantity)
	item := toLine(*line)
	return &transport.DecrementResult{
		Kind:      transport.DecrementLineUpdated,
		Message:   MsgQuantityUpdated,
		TotalCost: view.TotalCost,
		CartItem:  &item,
	}, nil
}

func (s *CartService) RemoveLine(ctx context.Context, user *models.User, productID uint) (*transport.CartChange, error) {
	cart, err := s.cartOf(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.RemoveLine(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLineNotFound
		}
		return nil, fmt.Errorf("remove line: %w", err)
	}
	s.changed(ctx, user, "cart_item_removed", productID, 0)

	view, err := s.loadCart(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return &transport.CartChange{Message: MsgLineRemoved, TotalCost: view.TotalCost, Cart: view.Cart}, nil
}

func (s *CartService) Clear(ctx context.Context, user *models.User) (*transport.CartChange, error) {
	cart, err := s.cartOf(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.ClearCart(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	s.changed(ctx, user, "cart_cleared", 0, 0)

	return &transport.CartChange{Message: MsgCartCleared, TotalCost: 0, Cart: []transport.CartLine{}}, nil
}

func (s *CartService) cartOf(ctx context.Context, user *models.User) (*models.Cart, error) {
	cart, err := s.Repo.GetCartByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(ErrNotFound, "cart not found")
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// loadCart reads the lines straight from the store and sums quantity × price.
func (s *CartService) loadCart(ctx context.Context, cartID uint) (*transport.CartView, error) {
	lines, err := s.Repo.GetLines(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart lines: %w", err)
	}

	view := &transport.CartView{Cart: make([]transport.CartLine, 0, len(lines))}
	for _, l := range lines {
		line := toLine(l)
		cost, ok := lineCost(line.Quantity, line.Product.Price)
		if !ok || cost > math.MaxInt64-view.TotalCost {
			logging.FromContext(ctx).Error("cart_total_overflow", "cart_id", cartID, "product_id", line.Product.ID)
			return nil, errTotalTooLarge
		}
		view.TotalCost += cost
		view.Cart = append(view.Cart, line)
	}
	return view, nil
}

// lineCost multiplies non-negative quantity and price, reporting overflow.
func lineCost(quantity, price int64) (int64, bool) {
	if quantity < 0 || price < 0 {
		return 0, false
	}
	if quantity != 0 && price > math.MaxInt64/quantity {
		return 0, false
	}
	return quantity * price, true
}

func (s *CartService) changed(ctx context.Context, user *models.User, eventType string, productID uint, quantity int64) {
	if s.Cache != nil {
		if err := s.Cache.Delete(ctx, user.ID); err != nil {
			logging.FromContext(ctx).Warn("cache_delete_error", "user_id", user.ID, "error", err)
		}
	}

	event := map[string]any{
		"type":   eventType,
		"userID": user.ID,
	}
	if productID != 0 {
		event["productID"] = productID
		event["quantity"] = quantity
	}
	publish(ctx, s.Events, mykafka.TopicCartEvents, strconv.FormatUint(uint64(user.ID), 10), event)
}

func toLine(l models.CartProduct) transport.CartLine {
	line := transport.CartLine{Quantity: l.Quantity}
	if l.Product != nil {
		line.Product = transport.CartProduct{
			ID:       l.Product.ID,
			Name:     l.Product.Name,
			Price:    l.Product.Price,
			IsActive: l.Product.IsActive,
		}
	}
	return line
}
