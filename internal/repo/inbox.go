package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/models"
)

func (r *GormRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

type NotificationFilter struct {
	IsRead *bool
	Type   string
	Limit  int
}

func (r *GormRepo) ListNotifications(ctx context.Context, f NotificationFilter) ([]models.Notification, error) {
	q := r.DB.WithContext(ctx).Model(&models.Notification{})
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	items := []models.Notification{}
	if err := page(q, f.Limit, 0).Order("created_at DESC").Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *GormRepo) MarkNotificationRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "read_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CreateConversation(ctx context.Context, c *models.Conversation) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	items := []models.Conversation{}
	err := r.DB.WithContext(ctx).
		Order("CASE WHEN last_message_at IS NULL THEN 1 ELSE 0 END").
		Order("last_message_at DESC").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

// TouchConversation moves the conversation snapshot to the latest message.
// Only customer messages count as unread for the admin side.
func (r *GormRepo) TouchConversation(ctx context.Context, id uuid.UUID, text string, at time.Time, fromCustomer bool) error {
	updates := map[string]any{
		"last_message":    text,
		"last_message_at": at,
	}
	if fromCustomer {
		updates["unread_count"] = gorm.Expr("unread_count + 1")
	}
	res := r.DB.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	items := []models.Message{}
	err := r.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) MarkConversationRead(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Update("unread_count", 0)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.DB.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_type = ? AND is_read = ?", id, models.SenderCustomer, false).
		Update("is_read", true).Error
}
