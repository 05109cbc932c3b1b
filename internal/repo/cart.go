package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/store_api/internal/models"
)

var errLineChanged = errors.New("cart line changed concurrently")

const decrementAttempts = 3

func (r *GormRepo) GetCartByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetLines returns the cart lines in insertion order with their products loaded.
func (r *GormRepo) GetLines(ctx context.Context, cartID uint) ([]models.CartProduct, error) {
	lines := make([]models.CartProduct, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("added_at ASC").Order("product_id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) GetLine(ctx context.Context, cartID, productID uint) (*models.CartProduct, error) {
	return lineIn(r.DB.WithContext(ctx), cartID, productID)
}

// AddToCart adds quantity to an existing line or inserts a new one in a single
// upsert. ErrQuantityLimit is returned when the line would exceed MaxLineQuantity.
func (r *GormRepo) AddToCart(ctx context.Context, cartID, productID uint, quantity int64) error {
	if quantity > models.MaxLineQuantity {
		return ErrQuantityLimit
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("cart_products.quantity + excluded.quantity"),
			}),
		}).
		Create(&models.CartProduct{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		}).Error
	if isCheckViolation(err) {
		return ErrQuantityLimit
	}
	return err
}

// IncrementLine adds one unit and returns the line as it was written.
func (r *GormRepo) IncrementLine(ctx context.Context, cartID, productID uint) (*models.CartProduct, error) {
	var line *models.CartProduct
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartProduct{}).
			Where("cart_id = ? AND product_id = ? AND quantity < ?", cartID, productID, models.MaxLineQuantity).
			Update("quantity", gorm.Expr("quantity + 1"))
		if res.Error != nil {
			return res.Error
		}

		var err error
		line, err = lineIn(tx, cartID, productID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return ErrQuantityLimit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// DecrementLine takes one unit off the line and deletes the line when its last
// unit goes. deleted reports which of the two happened; line is nil when deleted.
func (r *GormRepo) DecrementLine(ctx context.Context, cartID, productID uint) (deleted bool, line *models.CartProduct, err error) {
	for attempt := 0; attempt < decrementAttempts; attempt++ {
		deleted, line, err = r.decrementOnce(ctx, cartID, productID)
		if !errors.Is(err, errLineChanged) {
			break
		}
	}
	if err != nil {
		return false, nil, err
	}
	return deleted, line, nil
}

func (r *GormRepo) decrementOnce(ctx context.Context, cartID, productID uint) (bool, *models.CartProduct, error) {
	deleted := false
	var line *models.CartProduct
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartProduct{}).
			Where("cart_id = ? AND product_id = ? AND quantity > 1", cartID, productID).
			Update("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			var err error
			line, err = lineIn(tx, cartID, productID)
			return err
		}

		res = tx.Where("cart_id = ? AND product_id = ? AND quantity <= 1", cartID, productID).
			Delete(&models.CartProduct{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			deleted = true
			return nil
		}

		var count int64
		if err := tx.Model(&models.CartProduct{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return errLineChanged
	})
	if err != nil {
		return false, nil, err
	}
	return deleted, line, nil
}

// lineIn reads a line with its product inside tx, so it sees the tx's own write.
func lineIn(tx *gorm.DB, cartID, productID uint) (*models.CartProduct, error) {
	var line models.CartProduct
	if err := tx.Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormRepo) RemoveLine(ctx context.Context, cartID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartProduct{}).Error
}
