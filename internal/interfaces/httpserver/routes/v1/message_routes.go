package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.GET("/conversations", handler.List)
	router.POST("/conversations", handler.Start)
	router.POST("/conversations/:userId/select", handler.Select)
	router.DELETE("/conversations/:userId", handler.Delete)
}

func registerMessageRoutes(router gin.IRoutes, handler *handlers.MessageHandler) {
	router.GET("/messages", handler.Get)
	router.POST("/messages", handler.Send)
	router.PUT("/messages/draft", handler.SetDraft)
	router.DELETE("/messages/:id", handler.Delete)
}

func registerUnreadRoutes(router gin.IRoutes, handler *handlers.UnreadHandler) {
	router.GET("/unread", handler.Get)
	router.DELETE("/unread/notification", handler.Dismiss)
}
