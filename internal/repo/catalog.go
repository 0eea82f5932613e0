package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/general_store/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	q := r.DB.WithContext(ctx).Model(&models.Category{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	items := []models.Category{}
	if err := q.Order("sort_order ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CategoryNameTaken(ctx context.Context, name string, except uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, except).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

type ProductFilter struct {
	Category     string
	Search       string
	ActiveOnly   bool
	FeaturedOnly bool
	LowStockOnly bool
	Limit        int
	Offset       int
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category")

	if f.Category != "" {
		if id, err := uuid.Parse(f.Category); err == nil {
			q = q.Where("products.category_id = ?", id)
		} else {
			q = q.Where("LOWER(categories.name) = LOWER(?)", f.Category)
		}
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(
			`LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\' OR LOWER(categories.name) LIKE ? ESCAPE '\'`,
			p, p, p,
		)
	}
	if f.ActiveOnly {
		q = q.Where("products.is_active = ?", true)
	}
	if f.FeaturedOnly {
		q = q.Where("products.is_featured = ?", true)
	}
	if f.LowStockOnly {
		q = q.Where("products.stock_quantity <= products.low_stock_alert")
	}

	items := []models.Product{}
	err := page(q, f.Limit, f.Offset).
		Order("products.created_at DESC").
		Order("products.id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	items := []models.Product{}
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock takes qty units only when that many are on hand and reports
// whether the row was updated.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     r.DB.NowFunc(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// EachProduct streams every product to fn in primary-key batches.
func (r *GormRepo) EachProduct(ctx context.Context, batch int, fn func([]models.Product) error) error {
	var items []models.Product
	return r.DB.WithContext(ctx).Preload("Category").
		FindInBatches(&items, batch, func(tx *gorm.DB, _ int) error {
			return fn(items)
		}).Error
}
