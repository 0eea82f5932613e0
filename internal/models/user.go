package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Name          string    `gorm:"not null"                    json:"name"`
	Email         string    `gorm:"uniqueIndex;not null"        json:"email"`
	PasswordHash  string    `gorm:"not null"                    json:"-"`
	Phone         string    `                                   json:"phone"`
	Address       string    `                                   json:"address"`
	City          string    `                                   json:"city"`
	Role          string    `gorm:"not null"                    json:"role"`
	IsActive      bool      `gorm:"not null"                    json:"is_active"`
	EmailVerified bool      `gorm:"not null"                    json:"email_verified"`
	CreatedAt     time.Time `                                   json:"created_at"`
	UpdatedAt     time.Time `                                   json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	TokenHash string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
)

type Loyalty struct {
	UserID          uuid.UUID       `gorm:"type:uuid;primaryKey"             json:"user_id"`
	PointsEarned    int             `gorm:"not null"                         json:"points_earned"`
	PointsUsed      int             `gorm:"not null"                         json:"points_used"`
	PointsBalance   int             `gorm:"not null"                         json:"points_balance"`
	TotalOrders     int             `gorm:"not null"                         json:"total_orders"`
	TotalSpent      decimal.Decimal `gorm:"type:numeric(12,2);not null"      json:"total_spent"`
	MembershipLevel string          `gorm:"not null"                         json:"membership_level"`
	CreatedAt       time.Time       `                                        json:"created_at"`
	UpdatedAt       time.Time       `                                        json:"updated_at"`
}

func (Loyalty) TableName() string { return "customer_loyalty" }

func NewLoyalty(userID uuid.UUID) Loyalty {
	return Loyalty{UserID: userID, TotalSpent: decimal.Zero, MembershipLevel: TierBronze}
}
