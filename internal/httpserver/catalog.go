package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	active, err := optBool(c, "active")
	if err != nil {
		return badBody(l, "list_categories_error", err)
	}
	items, err := h.Svc.ListCategories(ctx, active != nil && *active)
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": items})
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "category_create_error", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "category_create_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_category")

	id, err := idParam(c, l, "category_patch_error", "id")
	if err != nil {
		return err
	}
	var req transport.PatchCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "category_patch_error", err)
	}
	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return fail(l, "category_patch_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, err := idParam(c, l, "category_delete_error", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "category_delete_error", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	var q transport.ProductQuery
	err := echo.QueryParamsBinder(c).
		String("category", &q.Category).
		String("search", &q.Search).
		Bool("featured", &q.Featured).
		Bool("low_stock", &q.LowStock).
		Int("limit", &q.Limit).
		Int("offset", &q.Offset).
		BindError()
	if err != nil {
		return badBody(l, "list_products_error", err)
	}
	if q.Active, err = optBool(c, "active"); err != nil {
		return badBody(l, "list_products_error", err)
	}

	items, err := h.Svc.ListProducts(ctx, q)
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": items})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	var (
		q             string
		limit, offset int
	)
	err := echo.QueryParamsBinder(c).
		String("q", &q).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError()
	if err != nil {
		return badBody(l, "search_products_error", err)
	}

	res, err := h.Svc.SearchProducts(ctx, q, limit, offset)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := idParam(c, l, "get_product_failed", "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) LowStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.low_stock")

	items, err := h.Svc.LowStock(ctx)
	if err != nil {
		return fail(l, "low_stock_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": items})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "product_create_error", err)
	}
	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id, err := idParam(c, l, "product_patch_error", "id")
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "product_patch_error", err)
	}
	p, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return fail(l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := idParam(c, l, "product_delete_error", "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
