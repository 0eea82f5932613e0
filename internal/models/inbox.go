package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationOrder   = "order"
	NotificationStock   = "stock"
	NotificationMessage = "message"
	NotificationSystem  = "system"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"           json:"id"`
	Type      string     `gorm:"type:varchar(20);index;not null" json:"type"`
	Title     string     `gorm:"not null"                       json:"title"`
	Message   string     `gorm:"not null"                       json:"message"`
	Data      JSON       `                                      json:"data"`
	Priority  string     `gorm:"type:varchar(10);not null"      json:"priority"`
	IsRead    bool       `gorm:"index;not null"                 json:"is_read"`
	ReadAt    *time.Time `                                      json:"read_at"`
	CreatedAt time.Time  `gorm:"index"                          json:"created_at"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"
)

type Conversation struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"          json:"customer_id"`
	CustomerName  string     `gorm:"not null"                 json:"customer_name"`
	CustomerPhone string     `                                json:"customer_phone"`
	LastMessage   string     `                                json:"last_message"`
	LastMessageAt *time.Time `gorm:"index"                    json:"last_message_at"`
	UnreadCount   int        `gorm:"not null"                 json:"unread_count"`
	CreatedAt     time.Time  `                                json:"created_at"`
}

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;index;not null"     json:"conversation_id"`
	SenderType     string    `gorm:"type:varchar(10);not null"    json:"sender_type"`
	SenderName     string    `                                    json:"sender_name"`
	Message        string    `gorm:"not null"                     json:"message"`
	IsRead         bool      `gorm:"not null"                     json:"is_read"`
	CreatedAt      time.Time `gorm:"index"                        json:"created_at"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
