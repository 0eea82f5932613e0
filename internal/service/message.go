package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
)

const previewLen = 120

type MessageService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func NewMessageService(r *repo.GormRepo, pub events.Publisher) *MessageService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &MessageService{Repo: r, Events: pub, Now: time.Now}
}

func (s *MessageService) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	items, err := s.Repo.ListConversations(ctx)
	if err != nil {
		return nil, repoErr(err, "conversations")
	}
	return items, nil
}

// StartConversation opens a thread with the customer's first message.
func (s *MessageService) StartConversation(ctx context.Context, customerID *uuid.UUID, req transport.StartConversationRequest) (*transport.ConversationResponse, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		CustomerID:    customerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	}
	var msg *models.Message
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateConversation(ctx, conv); err != nil {
			return err
		}
		var err error
		msg, err = s.appendMessage(ctx, tx, conv, models.SenderCustomer, req.CustomerName, req.Message)
		return err
	})
	if err != nil {
		return nil, repoErr(err, "conversation")
	}

	conv, err = s.Repo.GetConversation(ctx, conv.ID)
	if err != nil {
		return nil, repoErr(err, "conversation")
	}
	s.publish(ctx, conv, msg)
	return &transport.ConversationResponse{Conversation: conv, Messages: []models.Message{*msg}}, nil
}

func (s *MessageService) ListMessages(ctx context.Context, conversationID uuid.UUID) (*transport.ConversationResponse, error) {
	conv, err := s.Repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, repoErr(err, "conversation")
	}
	msgs, err := s.Repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, repoErr(err, "messages")
	}
	return &transport.ConversationResponse{Conversation: conv, Messages: msgs}, nil
}

// SendMessage appends a message and moves the conversation snapshot forward.
// Only customer messages bump the unread counter and notify the admin inbox.
func (s *MessageService) SendMessage(ctx context.Context, conversationID uuid.UUID, senderType string, req transport.SendMessageRequest) (*models.Message, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.SenderName = strings.TrimSpace(req.SenderName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if senderType != models.SenderCustomer && senderType != models.SenderAdmin {
		return nil, invalid("sender_type", "must be customer or admin")
	}

	var (
		msg  *models.Message
		conv *models.Conversation
	)
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		var err error
		conv, err = tx.GetConversation(ctx, conversationID)
		if err != nil {
			return err
		}
		name := req.SenderName
		if name == "" {
			name = conv.CustomerName
			if senderType == models.SenderAdmin {
				name = "Admin"
			}
		}
		msg, err = s.appendMessage(ctx, tx, conv, senderType, name, req.Message)
		return err
	})
	if err != nil {
		return nil, repoErr(err, "conversation")
	}

	s.publish(ctx, conv, msg)
	return msg, nil
}

func (s *MessageService) appendMessage(ctx context.Context, tx *repo.GormRepo, conv *models.Conversation, senderType, senderName, text string) (*models.Message, error) {
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderType:     senderType,
		SenderName:     senderName,
		Message:        text,
		IsRead:         senderType == models.SenderAdmin,
	}
	if err := tx.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	fromCustomer := senderType == models.SenderCustomer
	if err := tx.TouchConversation(ctx, conv.ID, preview(text), msg.CreatedAt, fromCustomer); err != nil {
		return nil, err
	}
	if fromCustomer {
		n := &models.Notification{
			Type:     models.NotificationMessage,
			Title:    "New Message",
			Message:  fmt.Sprintf("%s: %s", conv.CustomerName, preview(text)),
			Priority: models.PriorityNormal,
			Data:     models.MustJSON(map[string]any{"conversation_id": conv.ID, "message_id": msg.ID}),
		}
		if err := tx.CreateNotification(ctx, n); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func (s *MessageService) MarkConversationRead(ctx context.Context, conversationID uuid.UUID) error {
	err := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		return tx.MarkConversationRead(ctx, conversationID)
	})
	return repoErr(err, "conversation")
}

func (s *MessageService) publish(ctx context.Context, conv *models.Conversation, msg *models.Message) {
	if msg.SenderType != models.SenderCustomer {
		return
	}
	if err := s.Events.Publish(ctx, events.New(events.MessageReceived, conv.ID.String(), map[string]any{
		"conversation_id": conv.ID,
		"message_id":      msg.ID,
	})); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", events.MessageReceived, "error", err)
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "…"
}
