package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
	authmw "github.com/Skotchmaster/general_store/pkg/middleware/auth"
)

type InboxHTTP struct {
	Notifications *service.NotificationService
	Messages      *service.MessageService
	Stats         *service.StatsService
}

func (h *InboxHTTP) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.list_notifications")

	var q transport.NotificationQuery
	err := echo.QueryParamsBinder(c).
		String("type", &q.Type).
		Int("limit", &q.Limit).
		BindError()
	if err != nil {
		return badBody(l, "list_notifications_error", err)
	}
	if q.IsRead, err = optBool(c, "is_read"); err != nil {
		return badBody(l, "list_notifications_error", err)
	}

	items, err := h.Notifications.List(ctx, q)
	if err != nil {
		return fail(l, "list_notifications_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items})
}

func (h *InboxHTTP) CreateNotification(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.create_notification")

	var req transport.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_notification_error", err)
	}
	n, err := h.Notifications.Create(ctx, req)
	if err != nil {
		return fail(l, "create_notification_error", err)
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *InboxHTTP) MarkNotificationRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.mark_notification_read")

	id, err := idParam(c, l, "mark_read_error", "id")
	if err != nil {
		return err
	}
	n, err := h.Notifications.MarkRead(ctx, id)
	if err != nil {
		return fail(l, "mark_read_error", err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *InboxHTTP) DeleteNotification(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.delete_notification")

	id, err := idParam(c, l, "delete_notification_error", "id")
	if err != nil {
		return err
	}
	if err := h.Notifications.Delete(ctx, id); err != nil {
		return fail(l, "delete_notification_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InboxHTTP) ListConversations(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.list_conversations")

	items, err := h.Messages.ListConversations(ctx)
	if err != nil {
		return fail(l, "list_conversations_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": items})
}

func (h *InboxHTTP) StartConversation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.start_conversation")

	var req transport.StartConversationRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "start_conversation_error", err)
	}
	var customerID *uuid.UUID
	if p, ok := authmw.PrincipalFrom(c); ok {
		customerID = &p.UserID
	}

	res, err := h.Messages.StartConversation(ctx, customerID, req)
	if err != nil {
		return fail(l, "start_conversation_error", err)
	}

	l.Info("start_conversation_success", "conversation_id", res.Conversation.ID)
	return c.JSON(http.StatusCreated, res)
}

func (h *InboxHTTP) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.list_messages")

	id, err := idParam(c, l, "list_messages_error", "id")
	if err != nil {
		return err
	}
	res, err := h.Messages.ListMessages(ctx, id)
	if err != nil {
		return fail(l, "list_messages_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *InboxHTTP) CustomerMessage(c echo.Context) error {
	return h.send(c, models.SenderCustomer)
}

func (h *InboxHTTP) AdminReply(c echo.Context) error {
	return h.send(c, models.SenderAdmin)
}

func (h *InboxHTTP) send(c echo.Context, senderType string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.send_message", "sender_type", senderType)

	id, err := idParam(c, l, "send_message_error", "id")
	if err != nil {
		return err
	}
	var req transport.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "send_message_error", err)
	}
	msg, err := h.Messages.SendMessage(ctx, id, senderType, req)
	if err != nil {
		return fail(l, "send_message_error", err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *InboxHTTP) MarkConversationRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inbox.mark_conversation_read")

	id, err := idParam(c, l, "mark_conversation_read_error", "id")
	if err != nil {
		return err
	}
	if err := h.Messages.MarkConversationRead(ctx, id); err != nil {
		return fail(l, "mark_conversation_read_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InboxHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	st, err := h.Stats.Dashboard(ctx)
	if err != nil {
		return fail(l, "stats_error", err)
	}
	return c.JSON(http.StatusOK, st)
}
