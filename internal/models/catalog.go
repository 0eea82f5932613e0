package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"   json:"id"`
	Name        string    `gorm:"uniqueIndex;not null"   json:"name"`
	Description string    `                              json:"description"`
	ImageURL    string    `                              json:"image_url"`
	SortOrder   int       `gorm:"not null"               json:"sort_order"`
	IsActive    bool      `gorm:"not null"               json:"is_active"`
	CreatedAt   time.Time `                              json:"created_at"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                          json:"id"`
	Name          string          `gorm:"not null"                                      json:"name"`
	Description   string          `                                                     json:"description"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"                               json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Unit          string          `gorm:"not null"                                      json:"unit"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"                   json:"price"`
	CostPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"                   json:"cost_price"`
	StockQuantity int             `gorm:"not null"                                      json:"stock_quantity"`
	LowStockAlert int             `gorm:"not null"                                      json:"low_stock_alert"`
	ImageURL      string          `                                                     json:"image_url"`
	SKU           string          `gorm:"index"                                         json:"sku"`
	IsActive      bool            `gorm:"not null"                                      json:"is_active"`
	IsFeatured    bool            `gorm:"not null"                                      json:"is_featured"`
	CreatedAt     time.Time       `                                                     json:"created_at"`
	UpdatedAt     time.Time       `                                                     json:"updated_at"`

	LowStock bool `gorm:"-" json:"low_stock"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (p *Product) AfterFind(*gorm.DB) error {
	p.RefreshLowStock()
	return nil
}

// RefreshLowStock recomputes the derived low_stock flag; it is never persisted.
func (p *Product) RefreshLowStock() {
	p.LowStock = p.StockQuantity <= p.LowStockAlert
}
