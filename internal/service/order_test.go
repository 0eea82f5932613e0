package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/repo/repotest"
	"github.com/Skotchmaster/general_store/internal/transport"
)

var trackingSecret = []byte("order-test-secret")

func newTestOrderService(t *testing.T) (*OrderService, *events.Memory) {
	t.Helper()
	pub := &events.Memory{}
	return NewOrderService(repotest.InitTestDB(t), pub, trackingSecret), pub
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(p *models.Product, qty int64) transport.CreateOrderItem {
	return transport.CreateOrderItem{
		ProductID:  p.ID,
		Quantity:   int(qty),
		UnitPrice:  p.Price,
		TotalPrice: p.Price.Mul(decimal.NewFromInt(qty)),
	}
}

func orderReq(delivery, discount string, items ...transport.CreateOrderItem) transport.CreateOrderRequest {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return transport.CreateOrderRequest{
		CustomerName:    "Bilal",
		CustomerPhone:   "03001234567",
		DeliveryAddress: "12 Canal Road",
		City:            "Lahore",
		Items:           items,
		TotalAmount:     total,
		DiscountAmount:  dec(discount),
		DeliveryCharges: dec(delivery),
		FinalAmount:     total.Sub(dec(discount)).Add(dec(delivery)),
	}
}

func countRows(t *testing.T, r *repo.GormRepo, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := r.DB.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestOrderService_PlaceOrder_RiceScenario(t *testing.T) {
	t.Parallel()
	svc, pub := newTestOrderService(t)
	ctx := context.Background()

	rice := repotest.Product(t, svc.Repo, "Basmati Rice", 250, 10, 5, nil)

	req := orderReq("100", "0", line(rice, 3))
	res, err := svc.PlaceOrder(ctx, req, nil)
	require.NoError(t, err)

	o := res.Order
	assert.Regexp(t, regexp.MustCompile(`^AGS-\d{8}-[0-9a-f]{12}$`), o.OrderNumber)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, models.PaymentCOD, o.PaymentMethod)
	assert.Nil(t, o.UserID)
	assert.True(t, o.FinalAmount.Equal(dec("850")))
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Basmati Rice", o.Items[0].ProductName)
	assert.Equal(t, "piece", o.Items[0].ProductUnit)
	assert.NotEmpty(t, res.TrackingToken)

	p, err := svc.Repo.GetProduct(ctx, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, p.StockQuantity)

	notes, err := svc.Repo.ListNotifications(ctx, repo.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationOrder, notes[0].Type)
	assert.Equal(t, models.PriorityHigh, notes[0].Priority)
	assert.Equal(t, "New Order Received", notes[0].Title)
	assert.Contains(t, notes[0].Message, o.OrderNumber)
	assert.Contains(t, notes[0].Message, "Rs. 850.00")
	assert.Contains(t, string(notes[0].Data), o.ID.String())

	assert.Equal(t, []string{events.OrderCreated, events.StockChanged}, pub.Types())
}

func TestOrderService_PlaceOrder_MultipleLines(t *testing.T) {
	t.Parallel()
	svc, _ := newTestOrderService(t)
	ctx := context.Background()
	userID := uuid.New()

	a := repotest.Product(t, svc.Repo, "Tea", 300, 20, 2, nil)
	b := repotest.Product(t, svc.Repo, "Milk", 180, 15, 2, nil)
	c := repotest.Product(t, svc.Repo, "Bread", 120, 9, 2, nil)

	req := orderReq("0", "50", line(a, 2), line(b, 5), line(c, 1))
	req.Items[1].ProductName = "Fresh Milk 1L"
	res, err := svc.PlaceOrder(ctx, req, &userID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countRows(t, svc.Repo, &models.Order{}))
	assert.EqualValues(t, 3, countRows(t, svc.Repo, &models.OrderItem{}, "order_id = ?", res.Order.ID))

	for _, tc := range []struct {
		id   uuid.UUID
		want int
	}{{a.ID, 18}, {b.ID, 10}, {c.ID, 8}} {
		p, err := svc.Repo.GetProduct(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.StockQuantity)
	}

	got, err := svc.GetUserOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Items, 3)
	names := []string{got[0].Items[0].ProductName, got[0].Items[1].ProductName, got[0].Items[2].ProductName}
	assert.Contains(t, names, "Fresh Milk 1L")
}

func TestOrderService_PlaceOrder_OversellRollsBack(t *testing.T) {
	t.Parallel()
	svc, pub := newTestOrderService(t)
	ctx := context.Background()

	a := repotest.Product(t, svc.Repo, "Oil", 500, 10, 1, nil)
	b := repotest.Product(t, svc.Repo, "Ghee", 900, 2, 1, nil)

	_, err := svc.PlaceOrder(ctx, orderReq("0", "0", line(a, 4), line(b, 3)), nil)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.ErrorIs(t, err, ErrConflict)
	var se *StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, b.ID, se.ProductID)
	assert.Equal(t, 2, se.Available)

	assert.Zero(t, countRows(t, svc.Repo, &models.Order{}))
	assert.Zero(t, countRows(t, svc.Repo, &models.OrderItem{}))
	assert.Zero(t, countRows(t, svc.Repo, &models.Notification{}))

	p, err := svc.Repo.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQuantity)
	assert.Empty(t, pub.Events())
}

func TestOrderService_PlaceOrder_UnknownProduct(t *testing.T) {
	t.Parallel()
	svc, _ := newTestOrderService(t)

	ghost := &models.Product{ID: uuid.New(), Price: dec("10")}
	_, err := svc.PlaceOrder(context.Background(), orderReq("0", "0", line(ghost, 1)), nil)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, countRows(t, svc.Repo, &models.Order{}))
}

func TestOrderService_PlaceOrder_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestOrderService(t)
	p := repotest.Product(t, svc.Repo, "Salt", 40, 100, 5, nil)

	tests := []struct {
		name   string
		mutate func(r *transport.CreateOrderRequest)
		field  string
	}{
		{"empty cart", func(r *transport.CreateOrderRequest) { r.Items = nil }, "items"},
		{"missing name", func(r *transport.CreateOrderRequest) { r.CustomerName = "  " }, "customer_name"},
		{"missing phone", func(r *transport.CreateOrderRequest) { r.CustomerPhone = "" }, "customer_phone"},
		{"missing address", func(r *transport.CreateOrderRequest) { r.DeliveryAddress = "" }, "delivery_address"},
		{"missing city", func(r *transport.CreateOrderRequest) { r.City = "" }, "city"},
		{"zero quantity", func(r *transport.CreateOrderRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"missing product id", func(r *transport.CreateOrderRequest) { r.Items[0].ProductID = uuid.Nil }, "items[0].product_id"},
		{"negative price", func(r *transport.CreateOrderRequest) { r.Items[0].UnitPrice = dec("-1") }, "items[0].unit_price"},
		{"line total mismatch", func(r *transport.CreateOrderRequest) { r.Items[0].TotalPrice = dec("1") }, "items[0].total_price"},
		{"total mismatch", func(r *transport.CreateOrderRequest) {
			r.TotalAmount = dec("999")
			r.FinalAmount = dec("999")
		}, "total_amount"},
		{"final mismatch", func(r *transport.CreateOrderRequest) { r.FinalAmount = r.FinalAmount.Add(dec("1")) }, "final_amount"},
		{"negative delivery", func(r *transport.CreateOrderRequest) { r.DeliveryCharges = dec("-5") }, "delivery_charges"},
		{"unsupported payment", func(r *transport.CreateOrderRequest) { r.PaymentMethod = "card" }, "payment_method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := orderReq("50", "10", line(p, 2))
			tt.mutate(&req)
			_, err := svc.PlaceOrder(context.Background(), req, nil)
			require.ErrorIs(t, err, ErrValidation)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
	assert.Zero(t, countRows(t, svc.Repo, &models.Order{}))
}

func TestOrderService_PlaceOrder_LowStockNotification(t *testing.T) {
	t.Parallel()
	svc, _ := newTestOrderService(t)
	ctx := context.Background()

	flour := repotest.Product(t, svc.Repo, "Flour", 100, 12, 10, nil)
	eggs := repotest.Product(t, svc.Repo, "Eggs", 30, 4, 10, nil)

	_, err := svc.PlaceOrder(ctx, orderReq("0", "0", line(flour, 3), line(eggs, 1)), nil)
	require.NoError(t, err)

	stock, err := svc.Repo.ListNotifications(ctx, repo.NotificationFilter{Type: models.NotificationStock})
	require.NoError(t, err)
	require.Len(t, stock, 1, "only the product that crossed its threshold is reported")
	assert.Contains(t, stock[0].Message, "Flour")

	_, err = svc.PlaceOrder(ctx, orderReq("0", "0", line(flour, 9)), nil)
	require.NoError(t, err)
	stock, err = svc.Repo.ListNotifications(ctx, repo.NotificationFilter{Type: models.NotificationStock})
	require.NoError(t, err)
	assert.Len(t, stock, 1)
}

func TestOrderService_PlaceOrder_PublishFailureDoesNotFail(t *testing.T) {
	t.Parallel()
	svc, pub := newTestOrderService(t)
	pub.Err = errors.New("broker down")
	p := repotest.Product(t, svc.Repo, "Soap", 60, 10, 1, nil)

	_, err := svc.PlaceOrder(context.Background(), orderReq("0", "0", line(p, 1)), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, countRows(t, svc.Repo, &models.Order{}))
}

func TestOrderService_StatusAndListing(t *testing.T) {
	t.Parallel()
	svc, pub := newTestOrderService(t)
	ctx := context.Background()
	p := repotest.Product(t, svc.Repo, "Lentils", 200, 50, 5, nil)

	first, err := svc.PlaceOrder(ctx, orderReq("0", "0", line(p, 1)), nil)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := svc.PlaceOrder(ctx, orderReq("0", "0", line(p, 2)), nil)
	require.NoError(t, err)

	list, err := svc.ListOrders(ctx, transport.OrderQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, second.Order.ID, list.Items[0].ID)

	o, err := svc.UpdateOrderStatus(ctx, first.Order.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, o.Status)

	o, err = svc.UpdateOrderStatus(ctx, first.Order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, o.Status)

	_, err = svc.UpdateOrderStatus(ctx, first.Order.ID, "shipped")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateOrderStatus(ctx, uuid.New(), "confirmed")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateOrderStatus(ctx, second.Order.ID, "cancelled")
	require.NoError(t, err)
	cancelled, err := svc.ListOrders(ctx, transport.OrderQuery{Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, cancelled.Items, 1)
	assert.Equal(t, second.Order.ID, cancelled.Items[0].ID)

	_, err = svc.ListOrders(ctx, transport.OrderQuery{Status: "lost"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Contains(t, pub.Types(), events.OrderStatusChanged)

	_, err = svc.GetOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_TrackOrder(t *testing.T) {
	t.Parallel()
	svc, _ := newTestOrderService(t)
	ctx := context.Background()
	p := repotest.Product(t, svc.Repo, "Rice", 250, 10, 1, nil)

	res, err := svc.PlaceOrder(ctx, orderReq("0", "0", line(p, 1)), nil)
	require.NoError(t, err)

	o, err := svc.TrackOrder(ctx, res.TrackingToken)
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, o.ID)
	assert.Len(t, o.Items, 1)

	_, err = svc.TrackOrder(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.TrackOrder(ctx, res.TrackingToken+"x")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	svc.Now = func() time.Time { return time.Now().Add(-60 * 24 * time.Hour) }
	old, err := svc.PlaceOrder(ctx, orderReq("0", "0", line(p, 1)), nil)
	require.NoError(t, err)
	_, err = svc.TrackOrder(ctx, old.TrackingToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNewOrderNumber_Unique(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		n := NewOrderNumber(now)
		assert.Regexp(t, `^AGS-20250309-[0-9a-f]{12}$`, n)
		assert.False(t, seen[n])
		seen[n] = true
	}
}
