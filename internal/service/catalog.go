package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/search"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
)

const (
	defaultUnit          = "piece"
	defaultLowStockAlert = 10
	maxPageSize          = 200
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  search.Indexer
	Events events.Publisher
}

// NewCatalogService wires the catalog. idx may be nil when no search cluster
// is configured; searches then fall back to the database.
func NewCatalogService(r *repo.GormRepo, idx search.Indexer, pub events.Publisher) *CatalogService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &CatalogService{Repo: r, Index: idx, Events: pub}
}

func (s *CatalogService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	items, err := s.Repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, repoErr(err, "categories")
	}
	return items, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryNameFree(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	c := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    boolOr(req.IsActive, true),
	}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, repoErr(err, "category")
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.PatchCategoryRequest) (*models.Category, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, repoErr(err, "category")
	}
	if req.Name != nil && *req.Name != c.Name {
		if err := s.ensureCategoryNameFree(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.ImageURL != nil {
		c.ImageURL = *req.ImageURL
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.Repo.SaveCategory(ctx, c); err != nil {
		return nil, repoErr(err, "category")
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return repoErr(s.Repo.DeleteCategory(ctx, id), "category")
}

func (s *CatalogService) ensureCategoryNameFree(ctx context.Context, name string, except uuid.UUID) error {
	taken, err := s.Repo.CategoryNameTaken(ctx, name, except)
	if err != nil {
		return repoErr(err, "category")
	}
	if taken {
		return fmt.Errorf("%w: category name already exists", ErrConflict)
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ProductQuery) ([]models.Product, error) {
	f := repo.ProductFilter{
		Category:     strings.TrimSpace(q.Category),
		Search:       strings.TrimSpace(q.Search),
		ActiveOnly:   q.Active != nil && *q.Active,
		FeaturedOnly: q.Featured,
		LowStockOnly: q.LowStock,
		Limit:        clamp(q.Limit, 0, maxPageSize),
		Offset:       max(q.Offset, 0),
	}
	items, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, repoErr(err, "products")
	}
	return items, nil
}

func (s *CatalogService) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.ListProducts(ctx, transport.ProductQuery{LowStock: true})
}

// SearchProducts ranks through the search index when one is configured and
// falls back to the database substring match when it is absent or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, limit, offset int) (*transport.SearchResponse, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return &transport.SearchResponse{Items: []models.Product{}}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	limit = min(limit, 100)
	offset = max(offset, 0)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return nil, repoErr(err, "products")
			}
			return &transport.SearchResponse{Total: total, Items: orderByIDs(items, ids)}, nil
		}
		l.Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{Search: q, ActiveOnly: true, Limit: limit, Offset: offset})
	if err != nil {
		return nil, repoErr(err, "products")
	}
	return &transport.SearchResponse{Total: int64(len(items)), Items: items}, nil
}

func orderByIDs(items []models.Product, ids []uuid.UUID) []models.Product {
	byID := make(map[uuid.UUID]models.Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(items))
	for _, id := range ids {
		if p, ok := byID[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, repoErr(err, "product")
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := nonNegative("price", req.Price); err != nil {
		return nil, err
	}
	if err := nonNegative("cost_price", req.CostPrice); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		Unit:          req.Unit,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		StockQuantity: req.StockQuantity,
		LowStockAlert: defaultLowStockAlert,
		ImageURL:      req.ImageURL,
		SKU:           req.SKU,
		IsActive:      boolOr(req.IsActive, true),
		IsFeatured:    req.IsFeatured,
	}
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	if req.LowStockAlert != nil {
		p.LowStockAlert = *req.LowStockAlert
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		l.Error("create_product_error", "status", 500, "error", err)
		return nil, repoErr(err, "product")
	}

	created, err := s.Repo.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, repoErr(err, "product")
	}
	s.afterWrite(ctx, created)
	return created, nil
}

// UpdateProduct applies only the supplied fields. stock_quantity is an
// absolute value, not a delta.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Price != nil {
		if err := nonNegative("price", *req.Price); err != nil {
			return nil, err
		}
	}
	if req.CostPrice != nil {
		if err := nonNegative("cost_price", *req.CostPrice); err != nil {
			return nil, err
		}
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, repoErr(err, "product")
	}

	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.LowStockAlert != nil {
		p.LowStockAlert = *req.LowStockAlert
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.SKU != nil {
		p.SKU = *req.SKU
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}

	p.Category = nil
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, repoErr(err, "product")
	}

	updated, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, repoErr(err, "product")
	}
	s.afterWrite(ctx, updated)
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return repoErr(err, "product")
	}

	l := logging.FromContext(ctx).With("svc", "catalog.delete_product")
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	if err := s.Events.Publish(ctx, events.New(events.ProductDeleted, id.String(), map[string]any{"product_id": id})); err != nil {
		l.Warn("event_publish_failed", "event", events.ProductDeleted, "error", err)
	}
	return nil
}

// Reindex pushes every product to the search index and returns how many were sent.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, fmt.Errorf("%w: search index is not configured", ErrValidation)
	}
	n := 0
	err := s.Repo.EachProduct(ctx, 500, func(batch []models.Product) error {
		if err := s.Index.Index(ctx, batch...); err != nil {
			return err
		}
		n += len(batch)
		return nil
	})
	if err != nil {
		return n, repoErr(err, "reindex")
	}
	return n, nil
}

func (s *CatalogService) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("category_id", "unknown category")
		}
		return repoErr(err, "category")
	}
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, p *models.Product) {
	l := logging.FromContext(ctx).With("svc", "catalog")
	if s.Index != nil {
		if err := s.Index.Index(ctx, *p); err != nil {
			l.Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	if err := s.Events.Publish(ctx, events.New(events.ProductUpserted, p.ID.String(), map[string]any{
		"product_id":     p.ID,
		"stock_quantity": p.StockQuantity,
		"price":          p.Price,
	})); err != nil {
		l.Warn("event_publish_failed", "event", events.ProductUpserted, "error", err)
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
