package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
	"github.com/Skotchmaster/general_store/pkg/tokens"
)

const orderNumberPrefix = "AGS"

type OrderService struct {
	Repo           *repo.GormRepo
	Events         events.Publisher
	TrackingSecret []byte
	Now            func() time.Time
}

func NewOrderService(r *repo.GormRepo, pub events.Publisher, trackingSecret []byte) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{Repo: r, Events: pub, TrackingSecret: trackingSecret, Now: time.Now}
}

// NewOrderNumber renders AGS-<yyyymmdd>-<12 hex>. The random tail keeps
// numbers unique across concurrent checkouts; the column is unique as well.
func NewOrderNumber(now time.Time) string {
	tail := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, now.UTC().Format("20060102"), tail)
}

type stockChange struct {
	productID uuid.UUID
	name      string
	before    int
	after     int
	alert     int
}

// PlaceOrder validates the cart, then in one transaction writes the order, its
// line snapshots, the stock decrements and the admin notifications. Nothing is
// persisted when any step fails.
func (s *OrderService) PlaceOrder(ctx context.Context, req transport.CreateOrderRequest, userID *uuid.UUID) (*transport.CreateOrderResponse, error) {
	l := logging.FromContext(ctx).With("svc", "order.place")

	if err := s.validateOrder(&req); err != nil {
		l.Info("place_order_rejected", "status", 400, "reason", err.Error())
		return nil, err
	}

	now := s.Now().UTC()
	order := &models.Order{
		OrderNumber:     NewOrderNumber(now),
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   strings.ToLower(req.CustomerEmail),
		DeliveryAddress: req.DeliveryAddress,
		City:            req.City,
		TotalAmount:     req.TotalAmount,
		DiscountAmount:  req.DiscountAmount,
		DeliveryCharges: req.DeliveryCharges,
		FinalAmount:     req.FinalAmount,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderPending,
		Notes:           req.Notes,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentCOD
	}

	var changes []stockChange
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		changes = changes[:0]
		before := map[uuid.UUID]*models.Product{}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			p, ok := before[line.ProductID]
			if !ok {
				var err error
				p, err = tx.GetProduct(ctx, line.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
					}
					return err
				}
				before[line.ProductID] = p
			}

			pid := line.ProductID
			item := models.OrderItem{
				ProductID:   &pid,
				ProductName: line.ProductName,
				ProductUnit: line.ProductUnit,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				TotalPrice:  line.TotalPrice,
			}
			if item.ProductName == "" {
				item.ProductName = p.Name
			}
			if item.ProductUnit == "" {
				item.ProductUnit = p.Unit
			}
			items = append(items, item)
		}
		order.Items = items

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range req.Items {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				cur, err := tx.GetProduct(ctx, line.ProductID)
				if err != nil {
					return err
				}
				return &StockError{
					ProductID: cur.ID,
					Name:      cur.Name,
					Requested: line.Quantity,
					Available: cur.StockQuantity,
				}
			}
		}

		for id, p := range before {
			cur, err := tx.GetProduct(ctx, id)
			if err != nil {
				return err
			}
			changes = append(changes, stockChange{
				productID: id,
				name:      p.Name,
				before:    p.StockQuantity,
				after:     cur.StockQuantity,
				alert:     cur.LowStockAlert,
			})
		}

		if err := tx.CreateNotification(ctx, orderNotification(order)); err != nil {
			return err
		}
		for _, ch := range changes {
			if ch.before > ch.alert && ch.after <= ch.alert {
				if err := tx.CreateNotification(ctx, stockNotification(ch)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		var se *StockError
		switch {
		case errors.As(err, &se):
			l.Info("place_order_rejected", "status", 409, "reason", "insufficient stock", "product_id", se.ProductID)
		case errors.Is(err, ErrNotFound):
			l.Info("place_order_rejected", "status", 404, "reason", err.Error())
		default:
			l.Error("place_order_error", "status", 500, "error", err)
		}
		return nil, repoErr(err, "order")
	}

	s.publishPlaced(ctx, order, changes)

	resp := &transport.CreateOrderResponse{Order: order}
	if len(s.TrackingSecret) > 0 {
		tok, _, err := tokens.SignTracking(order.ID, order.OrderNumber, s.TrackingSecret, now)
		if err != nil {
			l.Warn("tracking_token_failed", "order_id", order.ID, "error", err)
		} else {
			resp.TrackingToken = tok
		}
	}

	l.Info("order_placed", "order_id", order.ID, "order_number", order.OrderNumber, "items", len(order.Items))
	return resp, nil
}

func (s *OrderService) validateOrder(req *transport.CreateOrderRequest) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)
	req.City = strings.TrimSpace(req.City)

	if err := validateStruct(req); err != nil {
		return err
	}

	sum := decimal.Zero
	for i, it := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID == uuid.Nil {
			return invalid(field+".product_id", "is required")
		}
		if err := nonNegative(field+".unit_price", it.UnitPrice); err != nil {
			return err
		}
		want := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if !money(want).Equal(money(it.TotalPrice)) {
			return invalid(field+".total_price", "must equal unit_price × quantity")
		}
		sum = sum.Add(it.TotalPrice)
	}

	amounts := []struct {
		field string
		v     decimal.Decimal
	}{
		{"total_amount", req.TotalAmount},
		{"discount_amount", req.DiscountAmount},
		{"delivery_charges", req.DeliveryCharges},
		{"final_amount", req.FinalAmount},
	}
	for _, a := range amounts {
		if err := nonNegative(a.field, a.v); err != nil {
			return err
		}
	}
	if !money(sum).Equal(money(req.TotalAmount)) {
		return invalid("total_amount", "must equal the sum of item totals")
	}
	want := req.TotalAmount.Sub(req.DiscountAmount).Add(req.DeliveryCharges)
	if !money(want).Equal(money(req.FinalAmount)) {
		return invalid("final_amount", "must equal total_amount - discount_amount + delivery_charges")
	}
	return nil
}

func money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func orderNotification(o *models.Order) *models.Notification {
	return &models.Notification{
		Type:     models.NotificationOrder,
		Title:    "New Order Received",
		Message:  fmt.Sprintf("New order %s from %s for Rs. %s", o.OrderNumber, o.CustomerName, o.FinalAmount.StringFixed(2)),
		Priority: models.PriorityHigh,
		Data: models.MustJSON(map[string]any{
			"order_id":     o.ID,
			"order_number": o.OrderNumber,
		}),
	}
}

func stockNotification(ch stockChange) *models.Notification {
	n := &models.Notification{
		Type:     models.NotificationStock,
		Title:    "Low Stock Alert",
		Message:  fmt.Sprintf("%s is running low: %d left (alert at %d)", ch.name, ch.after, ch.alert),
		Priority: models.PriorityNormal,
		Data: models.MustJSON(map[string]any{
			"product_id":     ch.productID,
			"stock_quantity": ch.after,
		}),
	}
	if ch.after == 0 {
		n.Title = "Out of Stock"
		n.Message = fmt.Sprintf("%s is out of stock", ch.name)
		n.Priority = models.PriorityHigh
	}
	return n
}

func (s *OrderService) publishPlaced(ctx context.Context, o *models.Order, changes []stockChange) {
	evs := []events.Event{events.New(events.OrderCreated, o.ID.String(), map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"user_id":      o.UserID,
		"final_amount": o.FinalAmount,
		"items":        len(o.Items),
	})}
	for _, ch := range changes {
		evs = append(evs, events.New(events.StockChanged, ch.productID.String(), map[string]any{
			"product_id":     ch.productID,
			"stock_quantity": ch.after,
			"low_stock":      ch.after <= ch.alert,
		}))
	}
	if err := s.Events.Publish(ctx, evs...); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", events.OrderCreated, "order_id", o.ID, "error", err)
	}
}

func (s *OrderService) ListOrders(ctx context.Context, q transport.OrderQuery) (*transport.OrderListResponse, error) {
	f := repo.OrderFilter{
		Limit:  clamp(q.Limit, 0, maxPageSize),
		Offset: max(q.Offset, 0),
	}
	if q.Status != "" {
		st := models.OrderStatus(strings.ToLower(q.Status))
		if !st.Valid() {
			return nil, invalid("status", "must be one of: pending confirmed delivered cancelled")
		}
		f.Status = st
	}
	if q.CustomerID != "" {
		id, err := uuid.Parse(q.CustomerID)
		if err != nil {
			return nil, invalid("customer_id", "must be a UUID")
		}
		f.CustomerID = &id
	}

	items, total, err := s.Repo.ListOrders(ctx, f)
	if err != nil {
		return nil, repoErr(err, "orders")
	}
	return &transport.OrderListResponse{Total: total, Items: items}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, repoErr(err, "order")
	}
	return o, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	items, _, err := s.Repo.ListOrders(ctx, repo.OrderFilter{CustomerID: &userID})
	if err != nil {
		return nil, repoErr(err, "orders")
	}
	return items, nil
}

// UpdateOrderStatus accepts any of the four statuses; transitions are not restricted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	st := models.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, invalid("status", "must be one of: pending confirmed delivered cancelled")
	}
	if err := s.Repo.UpdateOrderStatus(ctx, id, st); err != nil {
		return nil, repoErr(err, "order")
	}
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, repoErr(err, "order")
	}

	if err := s.Events.Publish(ctx, events.New(events.OrderStatusChanged, id.String(), map[string]any{
		"order_id":     id,
		"order_number": o.OrderNumber,
		"status":       st,
	})); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", events.OrderStatusChanged, "error", err)
	}
	return o, nil
}

// TrackOrder resolves a guest tracking token issued at checkout.
func (s *OrderService) TrackOrder(ctx context.Context, token string) (*models.Order, error) {
	if token == "" || len(s.TrackingSecret) == 0 {
		return nil, fmt.Errorf("%w: tracking token required", ErrUnauthenticated)
	}
	claims, err := tokens.TrackingClaimsFromToken(token, s.TrackingSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: tracking link expired", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: invalid tracking token", ErrUnauthenticated)
	}
	id, err := claims.OrderID()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tracking token", ErrUnauthenticated)
	}

	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, repoErr(err, "order")
	}
	if o.OrderNumber != claims.OrderNumber {
		return nil, fmt.Errorf("%w: invalid tracking token", ErrUnauthenticated)
	}
	return o, nil
}
