package responses

import (
	"time"

	"github.com/chloeho97/arcana-front/internal/domain/comment"
	"github.com/chloeho97/arcana-front/internal/domain/message"
)

// CommentNode is one rendered line of the comment tree.
type CommentNode struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName,omitempty"`
	Avatar      string    `json:"avatar"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	Depth       int       `json:"depth"`
	ShowToggle  bool      `json:"showToggle"`
	Expanded    bool      `json:"expanded"`
	HiddenCount int       `json:"hiddenCount,omitempty"`
	CanReply    bool      `json:"canReply"`
	CanDelete   bool      `json:"canDelete"`
}

// ReplyForm is the state of one reply form.
type ReplyForm struct {
	Open  bool   `json:"open"`
	Draft string `json:"draft"`
}

// CommentThread is the payload of GET /v1/comments.
type CommentThread struct {
	CollectionID string               `json:"collectionId"`
	Nodes        []CommentNode        `json:"nodes"`
	Count        int                  `json:"count"`
	LoadFailed   bool                 `json:"loadFailed"`
	Banner       string               `json:"banner,omitempty"`
	Draft        string               `json:"draft"`
	DraftHint    string               `json:"draftHint"`
	ReplyForms   map[string]ReplyForm `json:"replyForms"`
}

// Toggle is the payload of POST /v1/comments/:id/toggle.
type Toggle struct {
	ID       string `json:"id"`
	Expanded bool   `json:"expanded"`
}

// Unread is the payload of GET /v1/unread.
type Unread struct {
	Total        int                   `json:"total"`
	Label        string                `json:"label"`
	Notification *message.Notification `json:"notification,omitempty"`
	LoadFailed   bool                  `json:"loadFailed"`
}

func MapCommentThread(view comment.View) CommentThread {
	nodes := make([]CommentNode, len(view.Nodes))
	for i, n := range view.Nodes {
		nodes[i] = CommentNode{
			ID:          n.Comment.ID,
			AuthorID:    n.Comment.Author.ID,
			AuthorName:  n.Comment.Author.Username,
			Avatar:      message.AvatarOrDefault(n.Comment.Author.Avatar),
			Content:     n.Comment.Content,
			CreatedAt:   n.Comment.CreatedAt,
			Depth:       n.Depth,
			ShowToggle:  n.ShowToggle,
			Expanded:    n.Expanded,
			HiddenCount: n.HiddenCount,
			CanReply:    n.CanReply,
			CanDelete:   n.CanDelete,
		}
	}
	forms := make(map[string]ReplyForm, len(view.ReplyForms))
	for id, f := range view.ReplyForms {
		forms[id] = ReplyForm{Open: f.Open, Draft: f.Draft}
	}
	return CommentThread{
		CollectionID: view.CollectionID,
		Nodes:        nodes,
		Count:        view.Count,
		LoadFailed:   view.LoadFailed,
		Banner:       view.Banner,
		Draft:        view.Draft,
		DraftHint:    view.DraftHint,
		ReplyForms:   forms,
	}
}

func MapUnread(view message.BadgeView) Unread {
	return Unread{
		Total:        view.Total,
		Label:        view.Label,
		Notification: view.Notification,
		LoadFailed:   view.LoadFailed,
	}
}
