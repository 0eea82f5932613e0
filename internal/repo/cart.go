package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart merges qty into an existing line or creates one.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Omit("Product").Create(&models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", qty)).Error
	})
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
