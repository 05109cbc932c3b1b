package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/models"
)

// CreateUserWithCart stores the user and its empty cart in one transaction.
func (r *GormRepo) CreateUserWithCart(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).
			Where("email = ? OR phone = ?", u.Email, u.Phone).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUserAlreadyExist
		}

		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&models.Cart{UserID: u.ID}).Error
	})
	if isUniqueViolation(err) {
		return ErrUserAlreadyExist
	}
	return err
}

// GetUserByLogin finds a user by email or phone.
func (r *GormRepo) GetUserByLogin(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("email = ? OR phone = ?", username, username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
