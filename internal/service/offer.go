package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/transport"
)

var hundred = decimal.NewFromInt(100)

type OfferService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func NewOfferService(r *repo.GormRepo) *OfferService {
	return &OfferService{Repo: r, Now: time.Now}
}

func (s *OfferService) List(ctx context.Context) ([]models.Offer, error) {
	items, err := s.Repo.ListOffers(ctx, false)
	if err != nil {
		return nil, repoErr(err, "offers")
	}
	return items, nil
}

// ListActive returns offers a customer can use right now: enabled, inside the
// validity window, and under the usage limit (0 means unlimited).
func (s *OfferService) ListActive(ctx context.Context) ([]models.Offer, error) {
	items, err := s.Repo.ListOffers(ctx, true)
	if err != nil {
		return nil, repoErr(err, "offers")
	}
	now := s.Now()
	out := make([]models.Offer, 0, len(items))
	for _, o := range items {
		if o.ActiveAt(now) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *OfferService) Create(ctx context.Context, req transport.CreateOfferRequest) (*models.Offer, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	o := &models.Offer{
		Title:          req.Title,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		ValidFrom:      utcPtr(req.ValidFrom),
		ValidTo:        utcPtr(req.ValidTo),
		IsActive:       boolOr(req.IsActive, true),
		UsageLimit:     req.UsageLimit,
	}
	if err := checkOffer(o); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateOffer(ctx, o); err != nil {
		return nil, repoErr(err, "offer")
	}
	return o, nil
}

func (s *OfferService) Update(ctx context.Context, id uuid.UUID, req transport.PatchOfferRequest) (*models.Offer, error) {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		req.Title = &t
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	o, err := s.Repo.GetOffer(ctx, id)
	if err != nil {
		return nil, repoErr(err, "offer")
	}
	if req.Title != nil {
		o.Title = *req.Title
	}
	if req.Description != nil {
		o.Description = *req.Description
	}
	if req.DiscountType != nil {
		o.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		o.DiscountValue = *req.DiscountValue
	}
	if req.MinOrderAmount != nil {
		o.MinOrderAmount = *req.MinOrderAmount
	}
	if req.ValidFrom != nil {
		o.ValidFrom = utcPtr(req.ValidFrom)
	}
	if req.ValidTo != nil {
		o.ValidTo = utcPtr(req.ValidTo)
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	if req.UsageLimit != nil {
		o.UsageLimit = *req.UsageLimit
	}
	if err := checkOffer(o); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveOffer(ctx, o); err != nil {
		return nil, repoErr(err, "offer")
	}
	return o, nil
}

func (s *OfferService) Toggle(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	o, err := s.Repo.GetOffer(ctx, id)
	if err != nil {
		return nil, repoErr(err, "offer")
	}
	o.IsActive = !o.IsActive
	if err := s.Repo.SaveOffer(ctx, o); err != nil {
		return nil, repoErr(err, "offer")
	}
	return o, nil
}

func (s *OfferService) Delete(ctx context.Context, id uuid.UUID) error {
	return repoErr(s.Repo.DeleteOffer(ctx, id), "offer")
}

func checkOffer(o *models.Offer) error {
	if err := nonNegative("discount_value", o.DiscountValue); err != nil {
		return err
	}
	if err := nonNegative("min_order_amount", o.MinOrderAmount); err != nil {
		return err
	}
	if o.DiscountType == models.DiscountPercentage && o.DiscountValue.GreaterThan(hundred) {
		return invalid("discount_value", "percentage must not exceed 100")
	}
	if o.ValidFrom != nil && o.ValidTo != nil && o.ValidTo.Before(*o.ValidFrom) {
		return invalid("valid_to", "must not be before valid_from")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
