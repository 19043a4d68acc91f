package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/middleware"
	"github.com/iliyamo/instant-messaging/internal/service"
)

// MessageHandler serves posting and reading channel messages.
type MessageHandler struct {
	Messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{Messages: messages}
}

type createMessageReq struct {
	Content string `json:"content"`
}

// Create posts a message to the channel. Requires read-write access;
// live subscribers receive the message once it is stored.
func (h *MessageHandler) Create(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	var req createMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	msg, err := h.Messages.CreateMessage(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.Content)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, toMessageView(*msg))
}

// List returns a page of channel messages, newest first. Any member
// may read regardless of access level.
func (h *MessageHandler) List(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	limit, offset := pageParams(c)
	msgs, err := h.Messages.ListMessages(c.Request().Context(), middleware.CurrentUser(c).ID, id, limit, offset)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toMessageViews(msgs))
}
