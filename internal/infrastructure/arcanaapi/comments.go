package arcanaapi

import (
	"context"
	"net/http"

	"github.com/chloeho97/arcana-front/internal/domain/comment"
)

type commentsResponse struct {
	envelope
	Comments []*comment.Comment `json:"comments"`
}

type postCommentRequest struct {
	CollectionID string `json:"collectionId"`
	UserID       string `json:"userId"`
	Content      string `json:"content"`
}

type postReplyRequest struct {
	Token   string `json:"token"`
	Content string `json:"content"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// FetchComments returns the pre-assembled tree of a collection.
func (c *Client) FetchComments(ctx context.Context, collectionID string) ([]*comment.Comment, error) {
	const op = "fetch_comments"
	var out commentsResponse
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodGet,
		path:      "/comments/collection/{collectionId}",
		params:    map[string]string{"collectionId": collectionID},
		result:    &out,
	})
	if err != nil {
		return nil, err
	}
	if err := out.check(ctx, op); err != nil {
		return nil, err
	}
	if out.Comments == nil {
		return nil, missingField(ctx, op, "comments")
	}
	return out.Comments, nil
}

func (c *Client) PostComment(ctx context.Context, collectionID, userID, content string) error {
	const op = "post_comment"
	var out envelope
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodPost,
		path:      "/comments",
		body:      postCommentRequest{CollectionID: collectionID, UserID: userID, Content: content},
		result:    &out,
	})
	if err != nil {
		return err
	}
	return out.check(ctx, op)
}

func (c *Client) PostReply(ctx context.Context, targetID, token, content string) error {
	const op = "post_reply"
	var out envelope
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodPost,
		path:      "/comments/{targetId}/reply",
		params:    map[string]string{"targetId": targetID},
		body:      postReplyRequest{Token: token, Content: content},
		result:    &out,
	})
	if err != nil {
		return err
	}
	return out.check(ctx, op)
}

// DeleteComment sends the session token in the DELETE body.
func (c *Client) DeleteComment(ctx context.Context, commentID, token string) error {
	const op = "delete_comment"
	var out envelope
	err := c.do(ctx, call{
		operation: op,
		method:    http.MethodDelete,
		path:      "/comments/{commentId}",
		params:    map[string]string{"commentId": commentID},
		body:      tokenRequest{Token: token},
		result:    &out,
	})
	if err != nil {
		return err
	}
	return out.check(ctx, op)
}
