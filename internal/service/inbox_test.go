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

func TestNotificationService(t *testing.T) {
	t.Parallel()
	svc := NewNotificationService(repotest.InitTestDB(t))
	ctx := context.Background()
	readAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.Now = func() time.Time { return readAt }

	sys, err := svc.Create(ctx, transport.CreateNotificationRequest{Title: "Maintenance", Message: "Tonight"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSystem, sys.Type)
	assert.Equal(t, models.PriorityNormal, sys.Priority)

	_, err = svc.Create(ctx, transport.CreateNotificationRequest{
		Type: models.NotificationStock, Title: "Low", Message: "Rice", Priority: models.PriorityHigh,
		Data: models.JSON(`{"product_id":"x"}`),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, transport.CreateNotificationRequest{Title: "x", Message: "y", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrValidation)

	all, err := svc.List(ctx, transport.NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	marked, err := svc.MarkRead(ctx, sys.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsRead)
	require.NotNil(t, marked.ReadAt)
	assert.True(t, marked.ReadAt.Equal(readAt))

	unread, err := svc.List(ctx, transport.NotificationQuery{IsRead: ptr(false)})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, models.NotificationStock, unread[0].Type)
	assert.JSONEq(t, `{"product_id":"x"}`, string(unread[0].Data))

	stock, err := svc.List(ctx, transport.NotificationQuery{Type: models.NotificationStock})
	require.NoError(t, err)
	assert.Len(t, stock, 1)

	_, err = svc.MarkRead(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, sys.ID))
	assert.ErrorIs(t, svc.Delete(ctx, sys.ID), ErrNotFound)
}

func TestLoyaltyService_DefaultsToBronze(t *testing.T) {
	t.Parallel()
	r := repotest.InitTestDB(t)
	svc := NewLoyaltyService(r)
	ctx := context.Background()

	id := uuid.New()
	l, err := svc.GetLoyalty(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, l.UserID)
	assert.Equal(t, models.TierBronze, l.MembershipLevel)
	assert.Zero(t, l.PointsBalance)

	stored := models.NewLoyalty(uuid.New())
	stored.PointsEarned, stored.PointsBalance, stored.MembershipLevel = 120, 120, models.TierSilver
	require.NoError(t, r.CreateLoyalty(ctx, &stored))
	got, err := svc.GetLoyalty(ctx, stored.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.TierSilver, got.MembershipLevel)
	assert.Equal(t, 120, got.PointsBalance)
}

func TestStatsService_Dashboard(t *testing.T) {
	t.Parallel()
	orders, _ := newTestOrderService(t)
	ctx := context.Background()

	a := repotest.Product(t, orders.Repo, "Rice", 250, 10, 8, nil)
	repotest.Product(t, orders.Repo, "Salt", 40, 2, 5, nil)

	first, err := orders.PlaceOrder(ctx, orderReq("100", "0", line(a, 1)), nil)
	require.NoError(t, err)
	second, err := orders.PlaceOrder(ctx, orderReq("0", "0", line(a, 2)), nil)
	require.NoError(t, err)
	_, err = orders.UpdateOrderStatus(ctx, second.Order.ID, "cancelled")
	require.NoError(t, err)

	st, err := NewStatsService(orders.Repo).Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.TotalProducts)
	assert.EqualValues(t, 2, st.LowStockProducts)
	assert.EqualValues(t, 2, st.TotalOrders)
	assert.EqualValues(t, 1, st.OrdersByStatus["pending"])
	assert.EqualValues(t, 1, st.OrdersByStatus["cancelled"])
	assert.True(t, st.Revenue.Equal(first.Order.FinalAmount), "revenue %s", st.Revenue)
	assert.EqualValues(t, 3, st.UnreadNotifications)
	assert.Zero(t, st.UnreadConversations)
}
