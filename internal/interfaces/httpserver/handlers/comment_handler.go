package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/requests"
	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/responses"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

// CommentHandler exposes the comment thread of the configured collection.
type CommentHandler struct {
	thread CommentThread
	log    zerolog.Logger
}

func NewCommentHandler(thread CommentThread, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		thread: thread,
		log:    log.With().Str("handler", "comment").Logger(),
	}
}

// Get handles GET /v1/comments. With ?refresh=true the tree is reloaded
// first; a failed reload shows up as loadFailed, not as an error status.
func (h *CommentHandler) Get(c *gin.Context) {
	if c.Query("refresh") == "true" {
		_ = h.thread.Refresh(c.Request.Context())
	}
	c.JSON(http.StatusOK, responses.MapCommentThread(h.thread.View()))
}

// Post handles POST /v1/comments
func (h *CommentHandler) Post(c *gin.Context) {
	var req requests.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.thread.PostComment(c.Request.Context(), req.Content); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, responses.MapCommentThread(h.thread.View()))
}

// Reply handles POST /v1/comments/:id/replies
func (h *CommentHandler) Reply(c *gin.Context) {
	var req requests.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	if err := h.thread.PostReply(c.Request.Context(), c.Param("id"), req.Content); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusCreated, responses.MapCommentThread(h.thread.View()))
}

// Delete handles DELETE /v1/comments/:id. The request itself is the
// user's confirmation.
func (h *CommentHandler) Delete(c *gin.Context) {
	confirmed := func() bool { return true }
	if err := h.thread.DeleteComment(c.Request.Context(), c.Param("id"), confirmed); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.MapCommentThread(h.thread.View()))
}

// SetDraft handles PUT /v1/comments/draft
func (h *CommentHandler) SetDraft(c *gin.Context) {
	var req requests.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	h.thread.SetDraft(req.Content)
	c.JSON(http.StatusOK, responses.MapCommentThread(h.thread.View()))
}

// OpenReplyForm handles PUT /v1/comments/:id/reply-form
func (h *CommentHandler) OpenReplyForm(c *gin.Context) {
	var req requests.ReplyFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	id := c.Param("id")
	if req.Content == nil {
		h.thread.OpenReplyForm(id)
	} else {
		h.thread.SetReplyDraft(id, *req.Content)
	}
	c.JSON(http.StatusOK, responses.MapCommentThread(h.thread.View()))
}

// CloseReplyForm handles DELETE /v1/comments/:id/reply-form
func (h *CommentHandler) CloseReplyForm(c *gin.Context) {
	h.thread.CloseReplyForm(c.Param("id"))
	c.JSON(http.StatusOK, responses.MapCommentThread(h.thread.View()))
}

// SetCollection handles PUT /v1/comments/collection. The new collection is
// loaded before responding; a failed load shows up as loadFailed.
func (h *CommentHandler) SetCollection(c *gin.Context) {
	var req requests.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "collectionId is required")
		return
	}
	h.thread.SetCollection(req.CollectionID)
	_ = h.thread.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, responses.MapCommentThread(h.thread.View()))
}

// Toggle handles POST /v1/comments/:id/toggle
func (h *CommentHandler) Toggle(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, responses.Toggle{ID: id, Expanded: h.thread.Toggle(id)})
}
