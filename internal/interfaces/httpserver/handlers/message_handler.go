package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/requests"
	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/responses"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

// MessageHandler exposes the open conversation thread.
type MessageHandler struct {
	stream MessageStream
	log    zerolog.Logger
}

func NewMessageHandler(stream MessageStream, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		stream: stream,
		log:    log.With().Str("handler", "message").Logger(),
	}
}

// Get handles GET /v1/messages
func (h *MessageHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.stream.View())
}

// Send handles POST /v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	var req requests.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.stream.Send(c.Request.Context(), req.Content); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, h.stream.View())
}

// Delete handles DELETE /v1/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.stream.Delete(c.Request.Context(), c.Param("id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, h.stream.View())
}

// SetDraft handles PUT /v1/messages/draft
func (h *MessageHandler) SetDraft(c *gin.Context) {
	var req requests.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.stream.SetDraft(c.Request.Context(), req.Content); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, h.stream.View())
}

// UnreadHandler exposes the header badge.
type UnreadHandler struct {
	badge UnreadBadge
	log   zerolog.Logger
}

func NewUnreadHandler(badge UnreadBadge, log zerolog.Logger) *UnreadHandler {
	return &UnreadHandler{
		badge: badge,
		log:   log.With().Str("handler", "unread").Logger(),
	}
}

// Get handles GET /v1/unread
func (h *UnreadHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, responses.MapUnread(h.badge.View()))
}

// Dismiss handles DELETE /v1/unread/notification
func (h *UnreadHandler) Dismiss(c *gin.Context) {
	h.badge.Dismiss()
	c.Status(http.StatusNoContent)
}
