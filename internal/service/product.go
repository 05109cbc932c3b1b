package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/cache"
	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/mykafka"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/transport"
	"github.com/Skotchmaster/store_api/internal/util"
)

type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, onlyActive bool, from, size int) (int64, []models.Product, error)
}

type ProductService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Cache  cache.CartCache
	Events EventPublisher
}

var errProductNotFound = fail(ErrNotFound, "product not found")

// readProduct loads a product and applies the visibility policy for viewer.
func readProduct(ctx context.Context, r *repo.GormRepo, id uint, viewer *models.User) (*models.Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := CanView(p, viewer); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint, viewer *models.User) (*models.Product, error) {
	return readProduct(ctx, s.Repo, id, viewer)
}

// ListProducts returns every product to admins and only active ones to everyone else.
func (s *ProductService) ListProducts(ctx context.Context, viewer *models.User) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, !isAdmin(viewer))
}

func (s *ProductService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		IsActive: true,
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.reindex(ctx, prod)
	s.publish(ctx, "product_created", prod.ID, map[string]any{"name": prod.Name, "price": prod.Price})
	return prod, nil
}

func (s *ProductService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	prod, err := s.Repo.PatchProduct(ctx, id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProductNotFound
		}
		return nil, fmt.Errorf("patch product: %w", err)
	}

	s.invalidateCarts(ctx, prod.ID)
	s.reindex(ctx, prod)
	s.publish(ctx, "product_updated", prod.ID, map[string]any{"name": prod.Name, "price": prod.Price, "is_active": prod.IsActive})
	return prod, nil
}

// DeleteProduct removes the product; its cart lines go with it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	owners, err := s.Repo.CartOwnersOfProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("cart owners: %w", err)
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.dropCarts(ctx, owners)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_error", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, "product_deleted", id, nil)
	return nil
}

func (s *ProductService) SearchProducts(ctx context.Context, query string, page, size int, viewer *models.User) (int64, []models.Product, error) {
	if s.Index == nil {
		return 0, nil, fail(ErrSearchUnavailable, "search is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fail(ErrValidation, "q is required")
	}

	from, limit := util.Calculate(page, size)
	total, items, err := s.Index.Search(ctx, query, !isAdmin(viewer), from, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("search products: %w", err)
	}
	return total, items, nil
}

func (s *ProductService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "product_id", p.ID, "error", err)
	}
}

// invalidateCarts drops the cached carts that show the product.
func (s *ProductService) invalidateCarts(ctx context.Context, productID uint) {
	if s.Cache == nil {
		return
	}
	owners, err := s.Repo.CartOwnersOfProduct(ctx, productID)
	if err != nil {
		logging.FromContext(ctx).Error("cart_owners_error", "product_id", productID, "error", err)
		return
	}
	s.dropCarts(ctx, owners)
}

func (s *ProductService) dropCarts(ctx context.Context, userIDs []uint) {
	if s.Cache == nil || len(userIDs) == 0 {
		return
	}
	if err := s.Cache.Delete(ctx, userIDs...); err != nil {
		logging.FromContext(ctx).Error("cache_delete_error", "users", len(userIDs), "error", err)
	}
}

func (s *ProductService) publish(ctx context.Context, eventType string, productID uint, extra map[string]any) {
	event := map[string]any{
		"type":      eventType,
		"productID": productID,
	}
	for k, v := range extra {
		event[k] = v
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, strconv.FormatUint(uint64(productID), 10), event)
}
