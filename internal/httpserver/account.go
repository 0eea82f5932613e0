package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
	authmw "github.com/Skotchmaster/general_store/pkg/middleware/auth"
)

// AccountHTTP serves the logged-in customer's cart and loyalty card.
// Routes are mounted behind RequireAuth, so the principal is always set.
type AccountHTTP struct {
	Cart    *service.CartService
	Loyalty *service.LoyaltyService
}

func (h *AccountHTTP) GetLoyalty(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.loyalty")

	p, _ := authmw.PrincipalFrom(c)
	res, err := h.Loyalty.GetLoyalty(ctx, p.UserID)
	if err != nil {
		return fail(l, "loyalty_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.get_cart")

	p, _ := authmw.PrincipalFrom(c)
	res, err := h.Cart.GetCart(ctx, p.UserID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.add_to_cart")

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_to_cart_error", err)
	}
	p, _ := authmw.PrincipalFrom(c)
	res, err := h.Cart.AddItem(ctx, p.UserID, req)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", req.ProductID)
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.update_cart_item")

	productID, err := idParam(c, l, "update_cart_item_error", "productId")
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_cart_item_error", err)
	}
	p, _ := authmw.PrincipalFrom(c)
	res, err := h.Cart.UpdateItem(ctx, p.UserID, productID, req)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHTTP) RemoveCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.remove_cart_item")

	productID, err := idParam(c, l, "remove_cart_item_error", "productId")
	if err != nil {
		return err
	}
	p, _ := authmw.PrincipalFrom(c)
	res, err := h.Cart.RemoveItem(ctx, p.UserID, productID)
	if err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.clear_cart")

	p, _ := authmw.PrincipalFrom(c)
	if err := h.Cart.Clear(ctx, p.UserID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
