package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/general_store/internal/models"
)

type DashboardStats struct {
	TotalProducts       int64            `json:"total_products"`
	LowStockProducts    int64            `json:"low_stock_products"`
	TotalOrders         int64            `json:"total_orders"`
	OrdersByStatus      map[string]int64 `json:"orders_by_status"`
	Revenue             decimal.Decimal  `json:"revenue"`
	UnreadNotifications int64            `json:"unread_notifications"`
	UnreadConversations int64            `json:"unread_conversations"`
}

func (r *GormRepo) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.DB.WithContext(ctx)
	st := &DashboardStats{OrdersByStatus: map[string]int64{}}

	if err := db.Model(&models.Product{}).Count(&st.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).
		Where("stock_quantity <= low_stock_alert").
		Count(&st.LowStockProducts).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		st.OrdersByStatus[row.Status] = row.Count
		st.TotalOrders += row.Count
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&models.Order{}).
		Select("SUM(final_amount)").
		Where("status <> ?", models.OrderCancelled).
		Row().Scan(&revenue); err != nil {
		return nil, err
	}
	st.Revenue = revenue.Decimal

	if err := db.Model(&models.Notification{}).Where("is_read = ?", false).
		Count(&st.UnreadNotifications).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Conversation{}).Where("unread_count > 0").
		Count(&st.UnreadConversations).Error; err != nil {
		return nil, err
	}
	return st, nil
}
