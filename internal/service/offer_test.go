package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo/repotest"
	"github.com/Skotchmaster/general_store/internal/transport"
)

func TestOfferService(t *testing.T) {
	t.Parallel()
	svc := NewOfferService(repotest.InitTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	past := now.Add(-48 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	live, err := svc.Create(ctx, transport.CreateOfferRequest{
		Title: "Eid Sale", DiscountType: models.DiscountPercentage, DiscountValue: dec("15"),
		ValidFrom: &yesterday, ValidTo: &tomorrow,
	})
	require.NoError(t, err)
	assert.True(t, live.IsActive)

	_, err = svc.Create(ctx, transport.CreateOfferRequest{
		Title: "Expired", DiscountType: models.DiscountFixed, DiscountValue: dec("100"),
		ValidFrom: &past, ValidTo: &yesterday,
	})
	require.NoError(t, err)

	used, err := svc.Create(ctx, transport.CreateOfferRequest{
		Title: "First ten", DiscountType: models.DiscountBOGO, UsageLimit: 10,
	})
	require.NoError(t, err)
	used.UsedCount = 10
	require.NoError(t, svc.Repo.SaveOffer(ctx, used))

	disabled, err := svc.Create(ctx, transport.CreateOfferRequest{
		Title: "Later", DiscountType: models.DiscountFixed, DiscountValue: dec("50"), IsActive: ptr(false),
	})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, live.ID, active[0].ID)

	toggled, err := svc.Toggle(ctx, disabled.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	upd, err := svc.Update(ctx, live.ID, transport.PatchOfferRequest{UsageLimit: ptr(5), Title: ptr("Eid Mega Sale")})
	require.NoError(t, err)
	assert.Equal(t, "Eid Mega Sale", upd.Title)
	assert.Equal(t, 5, upd.UsageLimit)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, svc.Delete(ctx, live.ID))
	assert.ErrorIs(t, svc.Delete(ctx, live.ID), ErrNotFound)
	_, err = svc.Toggle(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOfferService_Validation(t *testing.T) {
	t.Parallel()
	svc := NewOfferService(repotest.InitTestDB(t))
	ctx := context.Background()
	now := time.Now()
	before := now.Add(-time.Hour)

	tests := []struct {
		name string
		req  transport.CreateOfferRequest
	}{
		{"missing title", transport.CreateOfferRequest{DiscountType: models.DiscountFixed}},
		{"unknown type", transport.CreateOfferRequest{Title: "x", DiscountType: "cashback"}},
		{"percentage over 100", transport.CreateOfferRequest{Title: "x", DiscountType: models.DiscountPercentage, DiscountValue: dec("120")}},
		{"negative value", transport.CreateOfferRequest{Title: "x", DiscountType: models.DiscountFixed, DiscountValue: dec("-1")}},
		{"window reversed", transport.CreateOfferRequest{Title: "x", DiscountType: models.DiscountFixed, ValidFrom: &now, ValidTo: &before}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
