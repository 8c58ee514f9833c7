package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/domain/comment"
	"github.com/chloeho97/arcana-front/internal/domain/message"
	"github.com/chloeho97/arcana-front/internal/domain/session"
)

// CommentThread is the comment component served over HTTP.
type CommentThread interface {
	View() comment.View
	Refresh(ctx context.Context) error
	PostComment(ctx context.Context, body string) error
	PostReply(ctx context.Context, targetID, body string) error
	DeleteComment(ctx context.Context, commentID string, confirm func() bool) error
	Toggle(commentID string) bool
	SetDraft(body string)
	OpenReplyForm(targetID string)
	SetReplyDraft(targetID, body string)
	CloseReplyForm(targetID string)
	SetCollection(collectionID string)
}

// ConversationList is the conversation component served over HTTP.
type ConversationList interface {
	View() message.ConversationsView
	Select(ctx context.Context, counterpartID string)
	StartConversation(ctx context.Context, otherID string) (*session.User, error)
	DeleteConversation(ctx context.Context, otherID string) error
}

// MessageStream is the open-thread component served over HTTP. Selecting a
// conversation decides which thread it serves.
type MessageStream interface {
	View() message.StreamView
	Send(ctx context.Context, content string) error
	Delete(ctx context.Context, messageID string) error
	SetDraft(ctx context.Context, content string) error
}

// UnreadBadge is the header badge component served over HTTP.
type UnreadBadge interface {
	View() message.BadgeView
	Dismiss()
}

// Components are the running domain components. Any of them may be nil when
// the daemon is not configured for it.
type Components struct {
	Comments      CommentThread
	Conversations ConversationList
	Messages      MessageStream
	Unread        UnreadBadge
}

// Provider wires all HTTP handlers for dependency injection. A nil handler
// means its routes are not registered.
type Provider struct {
	Comment      *CommentHandler
	Conversation *ConversationHandler
	Message      *MessageHandler
	Unread       *UnreadHandler
}

// NewProvider builds a handler for every configured component.
func NewProvider(components Components, log zerolog.Logger) *Provider {
	p := &Provider{}
	if components.Comments != nil {
		p.Comment = NewCommentHandler(components.Comments, log)
	}
	if components.Conversations != nil {
		p.Conversation = NewConversationHandler(components.Conversations, log)
	}
	if components.Messages != nil {
		p.Message = NewMessageHandler(components.Messages, log)
	}
	if components.Unread != nil {
		p.Unread = NewUnreadHandler(components.Unread, log)
	}
	return p
}
