package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/transport"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns products by descending id, optionally only the active ones.
func (r *GormRepo) ListProducts(ctx context.Context, onlyActive bool) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}

	items := make([]models.Product, 0)
	if err := q.Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prod, id).Error; err != nil {
			return err
		}

		if req.Name != nil {
			prod.Name = *req.Name
		}
		if req.Price != nil {
			prod.Price = *req.Price
		}
		if req.IsActive != nil {
			prod.IsActive = *req.IsActive
		}

		return tx.Save(&prod).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CartOwnersOfProduct lists the users whose carts hold the product.
func (r *GormRepo) CartOwnersOfProduct(ctx context.Context, productID uint) ([]uint, error) {
	var userIDs []uint
	if err := r.DB.WithContext(ctx).
		Model(&models.Cart{}).
		Joins("JOIN cart_products ON cart_products.cart_id = carts.id").
		Where("cart_products.product_id = ?", productID).
		Pluck("carts.user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}
