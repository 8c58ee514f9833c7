package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/handlers"
)

func registerCommentRoutes(router gin.IRoutes, handler *handlers.CommentHandler) {
	router.GET("/comments", handler.Get)
	router.POST("/comments", handler.Post)
	router.PUT("/comments/draft", handler.SetDraft)
	router.PUT("/comments/collection", handler.SetCollection)
	router.POST("/comments/:id/replies", handler.Reply)
	router.POST("/comments/:id/toggle", handler.Toggle)
	router.PUT("/comments/:id/reply-form", handler.OpenReplyForm)
	router.DELETE("/comments/:id/reply-form", handler.CloseReplyForm)
	router.DELETE("/comments/:id", handler.Delete)
}
