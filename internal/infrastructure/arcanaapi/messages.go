package arcanaapi

import (
	"context"
	"net/http"

	"github.com/chloeho97/arcana-front/internal/domain/message"
	"github.com/chloeho97/arcana-front/internal/domain/session"
)

type sendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type deleteMessageRequest struct {
	UserID string `json:"userId"`
}

type startConversationRequest struct {
	UserID1 string `json:"userId1"`
	UserID2 string `json:"userId2"`
}

type unreadCountResponse struct {
	Count *int `json:"count"`
}

type unreadTotalResponse struct {
	Total       *int             `json:"total"`
	LastMessage *message.Message `json:"lastMessage"`
}

func pair(userID, otherID string) map[string]string {
	return map[string]string{"userId": userID, "otherId": otherID}
}

// ListConversations returns the counterparts the user has talked to. The
// route answers with a bare array.
func (c *Client) ListConversations(ctx context.Context, userID string) ([]session.User, error) {
	var out []session.User
	err := c.do(ctx, call{
		operation: "list_conversations",
		method:    http.MethodGet,
		path:      "/messages/conversations/{userId}",
		params:    map[string]string{"userId": userID},
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LastMessage returns the newest message between two users, or nil if they
// never exchanged one.
func (c *Client) LastMessage(ctx context.Context, userID, otherID string) (*message.Message, error) {
	var out *message.Message
	err := c.do(ctx, call{
		operation: "last_message",
		method:    http.MethodGet,
		path:      "/messages/{userId}/{otherId}/last",
		params:    pair(userID, otherID),
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UnreadCount(ctx context.Context, userID, otherID string) (int, error) {
	const op = "unread_count"
	var out unreadCountResponse
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodGet,
		path:      "/messages/{userId}/{otherId}/unread/count",
		params:    pair(userID, otherID),
		result:    &out,
	})
	if err != nil {
		return 0, err
	}
	if out.Count == nil {
		return 0, missingField(ctx, op, "count")
	}
	return *out.Count, nil
}

func (c *Client) UnreadTotal(ctx context.Context, userID string) (*message.UnreadTotal, error) {
	const op = "unread_total"
	var out unreadTotalResponse
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodGet,
		path:      "/messages/{userId}/unread/total",
		params:    map[string]string{"userId": userID},
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Total == nil {
		return nil, missingField(ctx, op, "total")
	}
	return &message.UnreadTotal{Total: *out.Total, LastMessage: out.LastMessage}, nil
}

// FetchThread returns the full ordered history between two users.
func (c *Client) FetchThread(ctx context.Context, userID, otherID string) ([]message.Message, error) {
	var out []message.Message
	err := c.do(ctx, call{
		operation: "fetch_thread",
		method:    http.MethodGet,
		path:      "/messages/{userId}/{otherId}",
		params:    pair(userID, otherID),
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkRead(ctx context.Context, userID, otherID string) error {
	return c.do(ctx, call{
		operation: "mark_read",
		method:    http.MethodPost,
		path:      "/messages/{userId}/{otherId}/mark-read",
		params:    pair(userID, otherID),
	})
}

func (c *Client) SendMessage(ctx context.Context, senderID, receiverID, content string) error {
	return c.do(ctx, call{
		operation: "send_message",
		method:    http.MethodPost,
		path:      "/messages",
		body:      sendMessageRequest{SenderID: senderID, ReceiverID: receiverID, Content: content},
	})
}

// DeleteMessage sends the requesting user id in the DELETE body.
func (c *Client) DeleteMessage(ctx context.Context, messageID, userID string) error {
	return c.do(ctx, call{
		operation: "delete_message",
		method:    http.MethodDelete,
		path:      "/messages/{messageId}",
		params:    map[string]string{"messageId": messageID},
		body:      deleteMessageRequest{UserID: userID},
	})
}

// StartConversation returns the counterpart, creating the conversation if
// needed.
func (c *Client) StartConversation(ctx context.Context, userID, otherID string) (*session.User, error) {
	const op = "start_conversation"
	var out session.User
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodPost,
		path:      "/messages/start-conversation",
		body:      startConversationRequest{UserID1: userID, UserID2: otherID},
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, missingField(ctx, op, "_id")
	}
	return &out, nil
}

func (c *Client) DeleteConversation(ctx context.Context, userID, otherID string) error {
	return c.do(ctx, call{
		operation: "delete_conversation",
		method:    http.MethodDelete,
		path:      "/messages/conversation/{userId}/{otherId}",
		params:    pair(userID, otherID),
	})
}
