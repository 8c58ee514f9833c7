package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches the v1 routes of every configured component under /v1.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")

	if r.handlers.Comment != nil {
		registerCommentRoutes(group, r.handlers.Comment)
	}
	if r.handlers.Conversation != nil {
		registerConversationRoutes(group, r.handlers.Conversation)
	}
	if r.handlers.Message != nil {
		registerMessageRoutes(group, r.handlers.Message)
	}
	if r.handlers.Unread != nil {
		registerUnreadRoutes(group, r.handlers.Unread)
	}
}
