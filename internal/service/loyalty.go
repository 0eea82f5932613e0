package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
)

// LoyaltyService is read-only: nothing accrues or redeems points yet.
type LoyaltyService struct {
	Repo *repo.GormRepo
}

func NewLoyaltyService(r *repo.GormRepo) *LoyaltyService {
	return &LoyaltyService{Repo: r}
}

// GetLoyalty returns the stored row, or a zeroed Bronze record when the
// customer has none.
func (s *LoyaltyService) GetLoyalty(ctx context.Context, userID uuid.UUID) (*models.Loyalty, error) {
	l, err := s.Repo.GetLoyalty(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			def := models.NewLoyalty(userID)
			return &def, nil
		}
		return nil, repoErr(err, "loyalty")
	}
	return l, nil
}
