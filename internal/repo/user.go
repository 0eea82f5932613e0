package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/general_store/internal/models"
)

func (r *GormRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) GetSessionByHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) DeleteSessionByHash(ctx context.Context, tokenHash string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", now.UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) CreateLoyalty(ctx context.Context, l *models.Loyalty) error {
	return r.DB.WithContext(ctx).Create(l).Error
}

func (r *GormRepo) GetLoyalty(ctx context.Context, userID uuid.UUID) (*models.Loyalty, error) {
	var l models.Loyalty
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
