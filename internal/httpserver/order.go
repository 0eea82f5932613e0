package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/internal/util"
	"github.com/Skotchmaster/general_store/pkg/logging"
	authmw "github.com/Skotchmaster/general_store/pkg/middleware/auth"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

// CreateOrder serves guests and logged-in customers alike; the session, if
// any, only links the order to the account.
func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_order_error", err)
	}

	var userID *uuid.UUID
	if p, ok := authmw.PrincipalFrom(c); ok {
		userID = &p.UserID
	}

	res, err := h.Svc.PlaceOrder(ctx, req, userID)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_number", res.Order.OrderNumber)
	return c.JSON(http.StatusCreated, res)
}

func (h *OrderHTTP) TrackOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.track_order")

	o, err := h.Svc.TrackOrder(ctx, c.QueryParam("token"))
	if err != nil {
		return fail(l, "track_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.user_orders")

	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	items, err := h.Svc.GetUserOrders(ctx, p.UserID)
	if err != nil {
		return fail(l, "user_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": items})
}

// ListOrders pages with page/size like the rest of the admin panel.
func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	var (
		q          transport.OrderQuery
		page, size int
	)
	err := echo.QueryParamsBinder(c).
		String("status", &q.Status).
		String("customer_id", &q.CustomerID).
		Int("page", &page).
		Int("size", &size).
		BindError()
	if err != nil {
		return badBody(l, "list_orders_error", err)
	}
	q.Offset, q.Limit = util.Calculate(page, size)

	res, err := h.Svc.ListOrders(ctx, q)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	l.Info("list_orders_success", "total", res.Total)
	return c.JSON(http.StatusOK, echo.Map{
		"orders": res.Items,
		"total":  res.Total,
		"meta":   util.NewMeta(page, size, res.Total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := idParam(c, l, "get_order_error", "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := idParam(c, l, "update_status_error", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_status_error", err)
	}
	o, err := h.Svc.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", id, "order_status", o.Status)
	return c.JSON(http.StatusOK, o)
}
