package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/requests"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

// ConversationHandler exposes the conversation list of the session's user.
type ConversationHandler struct {
	list ConversationList
	log  zerolog.Logger
}

func NewConversationHandler(list ConversationList, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		list: list,
		log:  log.With().Str("handler", "conversation").Logger(),
	}
}

// List handles GET /v1/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.list.View())
}

// Select handles POST /v1/conversations/:userId/select. The selected
// conversation becomes the thread served under /v1/messages; marking it read
// happens in the background.
func (h *ConversationHandler) Select(c *gin.Context) {
	h.list.Select(c.Request.Context(), c.Param("userId"))
	c.JSON(http.StatusOK, h.list.View())
}

// Start handles POST /v1/conversations
func (h *ConversationHandler) Start(c *gin.Context) {
	var req requests.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "userId is required")
		return
	}
	if _, err := h.list.StartConversation(c.Request.Context(), req.UserID); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, h.list.View())
}

// Delete handles DELETE /v1/conversations/:userId
func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.list.DeleteConversation(c.Request.Context(), c.Param("userId")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, h.list.View())
}
