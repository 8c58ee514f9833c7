// Package message keeps the direct-messaging state of one user in sync with
// the backend: the conversation list, the open thread and the unread badge.
package message

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/chloeho97/arcana-front/internal/domain/session"
)

// DefaultAvatar is served when a user has no avatar of their own.
const DefaultAvatar = "/assets/default-avatar.png"

// Message is one direct message between two users.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"sender"`
	ReceiverID string    `json:"receiver"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
}

// UnreadFor reports whether m is addressed to userID and not yet read.
func (m Message) UnreadFor(userID string) bool {
	return m.ReceiverID == userID && !m.Read
}

// UnreadTotal is the sitewide unread summary of a user.
type UnreadTotal struct {
	Total       int      `json:"total"`
	LastMessage *Message `json:"lastMessage,omitempty"`
}

// Conversation is one entry of the conversation list.
type Conversation struct {
	User          session.User `json:"user"`
	LastMessageAt time.Time    `json:"lastMessageAt"`
	HasUnread     bool         `json:"hasUnread"`
	Status        Status       `json:"status"`
}

// HasMessages reports whether a last message was found for the conversation.
func (c Conversation) HasMessages() bool {
	return !c.LastMessageAt.IsZero()
}

// settle records the last message of the conversation as seen by me.
func (c *Conversation) settle(last *Message, me string) {
	c.LastMessageAt = time.Time{}
	c.HasUnread = false
	if last == nil {
		return
	}
	c.LastMessageAt = last.CreatedAt
	c.HasUnread = last.SenderID != me && !last.Read
}

// SortConversations orders conversations by most recent message first.
// Conversations without messages keep their relative order at the end.
func SortConversations(conversations []Conversation) {
	slices.SortStableFunc(conversations, func(a, b Conversation) int {
		return b.LastMessageAt.Compare(a.LastMessageAt)
	})
}

// BadgeLabel renders an unread total capped at limit, e.g. "9+". Zero renders
// as an empty label.
func BadgeLabel(total, limit int) string {
	if total <= 0 {
		return ""
	}
	if limit > 0 && total > limit {
		return fmt.Sprintf("%d+", limit)
	}
	return strconv.Itoa(total)
}

// AvatarOrDefault returns avatar, or the default asset when it is unset.
func AvatarOrDefault(avatar string) string {
	if avatar == "" || strings.Contains(avatar, "default-avatar.png") {
		return DefaultAvatar
	}
	return avatar
}
