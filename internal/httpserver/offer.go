package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
)

type OfferHTTP struct {
	Svc *service.OfferService
}

func (h *OfferHTTP) ListActive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.list_active")

	items, err := h.Svc.ListActive(ctx)
	if err != nil {
		return fail(l, "list_offers_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": items})
}

func (h *OfferHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.list")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_offers_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": items})
}

func (h *OfferHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.create")

	var req transport.CreateOfferRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "offer_create_error", err)
	}
	o, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "offer_create_error", err)
	}

	l.Info("create_offer_success", "offer_id", o.ID)
	return c.JSON(http.StatusCreated, o)
}

func (h *OfferHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.patch")

	id, err := idParam(c, l, "offer_patch_error", "id")
	if err != nil {
		return err
	}
	var req transport.PatchOfferRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "offer_patch_error", err)
	}
	o, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "offer_patch_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OfferHTTP) Toggle(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.toggle")

	id, err := idParam(c, l, "offer_toggle_error", "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.Toggle(ctx, id)
	if err != nil {
		return fail(l, "offer_toggle_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OfferHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "offer.delete")

	id, err := idParam(c, l, "offer_delete_error", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "offer_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
