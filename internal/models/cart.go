package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                           json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                    json:"quantity"`
	CreatedAt time.Time `                                                      json:"created_at"`
	UpdatedAt time.Time `                                                      json:"updated_at"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
	DiscountBOGO       = "bogo"
)

type Offer struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"            json:"id"`
	Title          string          `gorm:"not null"                        json:"title"`
	Description    string          `                                       json:"description"`
	DiscountType   string          `gorm:"type:varchar(20);not null"       json:"discount_type"`
	DiscountValue  decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"discount_value"`
	MinOrderAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"min_order_amount"`
	ValidFrom      *time.Time      `                                       json:"valid_from"`
	ValidTo        *time.Time      `                                       json:"valid_to"`
	IsActive       bool            `gorm:"not null"                        json:"is_active"`
	UsageLimit     int             `gorm:"not null"                        json:"usage_limit"`
	UsedCount      int             `gorm:"not null"                        json:"used_count"`
	CreatedAt      time.Time       `                                       json:"created_at"`
}

func (o *Offer) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// ActiveAt reports whether the offer can be shown to customers at t.
func (o *Offer) ActiveAt(t time.Time) bool {
	if !o.IsActive {
		return false
	}
	if o.ValidFrom != nil && t.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidTo != nil && t.After(*o.ValidTo) {
		return false
	}
	return o.UsageLimit == 0 || o.UsedCount < o.UsageLimit
}
