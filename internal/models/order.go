package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

const PaymentCOD = "cod"

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null"           json:"order_number"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index"                json:"user_id"`
	CustomerName    string          `gorm:"not null"                       json:"customer_name"`
	CustomerPhone   string          `gorm:"not null"                       json:"customer_phone"`
	CustomerEmail   string          `                                      json:"customer_email"`
	DeliveryAddress string          `gorm:"not null"                       json:"delivery_address"`
	City            string          `gorm:"not null"                       json:"city"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"total_amount"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"discount_amount"`
	DeliveryCharges decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"delivery_charges"`
	FinalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"final_amount"`
	PaymentMethod   string          `gorm:"not null"                       json:"payment_method"`
	Status          OrderStatus     `gorm:"type:varchar(20);index;not null" json:"status"`
	Notes           string          `                                      json:"notes"`
	CreatedAt       time.Time       `gorm:"index"                          json:"created_at"`
	UpdatedAt       time.Time       `                                      json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"      json:"order_id"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"               json:"product_id"`
	ProductName string          `gorm:"not null"                      json:"product_name"`
	ProductUnit string          `                                     json:"product_unit"`
	Quantity    int             `gorm:"not null"                      json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"total_price"`
	CreatedAt   time.Time       `                                     json:"created_at"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
