package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/general_store/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,store_email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone"    validate:"max=20"`
	Address  string `json:"address"`
	City     string `json:"city"     validate:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"   validate:"omitempty,url"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

type PatchCategoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"   validate:"omitempty,url"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

type CreateProductRequest struct {
	Name          string          `json:"name"            validate:"required,max=200"`
	Description   string          `json:"description"`
	CategoryID    *uuid.UUID      `json:"category_id"`
	Unit          string          `json:"unit"            validate:"max=20"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	StockQuantity int             `json:"stock_quantity"  validate:"gte=0"`
	LowStockAlert *int            `json:"low_stock_alert" validate:"omitempty,gte=0"`
	ImageURL      string          `json:"image_url"       validate:"omitempty,url"`
	SKU           string          `json:"sku"             validate:"max=50"`
	IsActive      *bool           `json:"is_active"`
	IsFeatured    bool            `json:"is_featured"`
}

type PatchProductRequest struct {
	Name          *string          `json:"name"            validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	Unit          *string          `json:"unit"            validate:"omitempty,max=20"`
	Price         *decimal.Decimal `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	StockQuantity *int             `json:"stock_quantity"  validate:"omitempty,gte=0"`
	LowStockAlert *int             `json:"low_stock_alert" validate:"omitempty,gte=0"`
	ImageURL      *string          `json:"image_url"       validate:"omitempty,url"`
	SKU           *string          `json:"sku"             validate:"omitempty,max=50"`
	IsActive      *bool            `json:"is_active"`
	IsFeatured    *bool            `json:"is_featured"`
}

type ProductQuery struct {
	Category string `query:"category"`
	Search   string `query:"search"`
	Active   *bool  `query:"active"`
	Featured bool   `query:"featured"`
	LowStock bool   `query:"low_stock"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

type SearchResponse struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

type CreateOrderItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name" validate:"max=200"`
	ProductUnit string          `json:"product_unit" validate:"max=20"`
	Quantity    int             `json:"quantity"     validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type CreateOrderRequest struct {
	CustomerName    string            `json:"customer_name"    validate:"required,max=100"`
	CustomerPhone   string            `json:"customer_phone"   validate:"required,max=20"`
	CustomerEmail   string            `json:"customer_email"   validate:"omitempty,store_email"`
	DeliveryAddress string            `json:"delivery_address" validate:"required"`
	City            string            `json:"city"             validate:"required,max=100"`
	Items           []CreateOrderItem `json:"items"            validate:"required,min=1,dive"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	DiscountAmount  decimal.Decimal   `json:"discount_amount"`
	DeliveryCharges decimal.Decimal   `json:"delivery_charges"`
	FinalAmount     decimal.Decimal   `json:"final_amount"`
	PaymentMethod   string            `json:"payment_method"   validate:"omitempty,oneof=cod"`
	Notes           string            `json:"notes"            validate:"max=1000"`
}

type CreateOrderResponse struct {
	Order         *models.Order `json:"order"`
	TrackingToken string        `json:"tracking_token"`
}

type OrderQuery struct {
	Status     string `query:"status"`
	CustomerID string `query:"customer_id"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

type OrderListResponse struct {
	Total int64          `json:"total"`
	Items []models.Order `json:"items"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CreateNotificationRequest struct {
	Type     string      `json:"type"     validate:"omitempty,oneof=order stock message system"`
	Title    string      `json:"title"    validate:"required,max=200"`
	Message  string      `json:"message"  validate:"required"`
	Priority string      `json:"priority" validate:"omitempty,oneof=low normal high"`
	Data     models.JSON `json:"data"`
}

type NotificationQuery struct {
	IsRead *bool  `query:"is_read"`
	Type   string `query:"type"`
	Limit  int    `query:"limit"`
}

type StartConversationRequest struct {
	CustomerName  string `json:"customer_name"  validate:"required,max=100"`
	CustomerPhone string `json:"customer_phone" validate:"max=20"`
	Message       string `json:"message"        validate:"required,max=2000"`
}

type SendMessageRequest struct {
	SenderName string `json:"sender_name" validate:"max=100"`
	Message    string `json:"message"     validate:"required,max=2000"`
}

type ConversationResponse struct {
	Conversation *models.Conversation `json:"conversation"`
	Messages     []models.Message     `json:"messages"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type CartResponse struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

type CreateOfferRequest struct {
	Title          string          `json:"title"            validate:"required,max=200"`
	Description    string          `json:"description"`
	DiscountType   string          `json:"discount_type"    validate:"required,oneof=percentage fixed bogo"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	ValidFrom      *time.Time      `json:"valid_from"`
	ValidTo        *time.Time      `json:"valid_to"`
	IsActive       *bool           `json:"is_active"`
	UsageLimit     int             `json:"usage_limit"      validate:"gte=0"`
}

type PatchOfferRequest struct {
	Title          *string          `json:"title"            validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	DiscountType   *string          `json:"discount_type"    validate:"omitempty,oneof=percentage fixed bogo"`
	DiscountValue  *decimal.Decimal `json:"discount_value"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	ValidFrom      *time.Time       `json:"valid_from"`
	ValidTo        *time.Time       `json:"valid_to"`
	IsActive       *bool            `json:"is_active"`
	UsageLimit     *int             `json:"usage_limit"      validate:"omitempty,gte=0"`
}
