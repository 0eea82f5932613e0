package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/models"
)

func (r *GormRepo) ListOffers(ctx context.Context, activeOnly bool) ([]models.Offer, error) {
	q := r.DB.WithContext(ctx).Model(&models.Offer{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	items := []models.Offer{}
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var o models.Offer
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) CreateOffer(ctx context.Context, o *models.Offer) error {
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *GormRepo) SaveOffer(ctx context.Context, o *models.Offer) error {
	return r.DB.WithContext(ctx).Save(o).Error
}

func (r *GormRepo) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Offer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
