package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/transport"
)

const defaultNotificationLimit = 50

type NotificationService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func NewNotificationService(r *repo.GormRepo) *NotificationService {
	return &NotificationService{Repo: r, Now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, q transport.NotificationQuery) ([]models.Notification, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	items, err := s.Repo.ListNotifications(ctx, repo.NotificationFilter{
		IsRead: q.IsRead,
		Type:   strings.TrimSpace(q.Type),
		Limit:  min(limit, maxPageSize),
	})
	if err != nil {
		return nil, repoErr(err, "notifications")
	}
	return items, nil
}

func (s *NotificationService) Create(ctx context.Context, req transport.CreateNotificationRequest) (*models.Notification, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	n := &models.Notification{
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		Priority: req.Priority,
		Data:     req.Data,
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		return nil, repoErr(err, "notification")
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	if err := s.Repo.MarkNotificationRead(ctx, id, s.Now().UTC()); err != nil {
		return nil, repoErr(err, "notification")
	}
	n, err := s.Repo.GetNotification(ctx, id)
	if err != nil {
		return nil, repoErr(err, "notification")
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	return repoErr(s.Repo.DeleteNotification(ctx, id), "notification")
}
