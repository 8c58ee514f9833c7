// Package comment keeps a client-side view of a collection's threaded
// discussion in sync with the backend.
package comment

import (
	"bytes"
	"encoding/json"
	"time"
)

// Author is the denormalized author summary attached to every comment.
type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// UnmarshalJSON accepts either a populated author object or a bare user id.
func (a *Author) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*a = Author{ID: id}
		return nil
	}

	type plain Author
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*a = Author(decoded)
	return nil
}

// Comment is one post in a discussion. Replies are in server order.
type Comment struct {
	ID        string     `json:"_id"`
	Author    Author     `json:"userId"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	Replies   []*Comment `json:"replies,omitempty"`
}

// TotalCount counts comments and all nested replies.
func TotalCount(comments []*Comment) int {
	total := 0
	for _, c := range comments {
		if c == nil {
			continue
		}
		total += 1 + TotalCount(c.Replies)
	}
	return total
}

// DepthOf returns the nesting depth of id, 0 for top-level comments, or -1
// when id is not in the tree.
func DepthOf(comments []*Comment, id string) int {
	for _, c := range comments {
		if c == nil {
			continue
		}
		if c.ID == id {
			return 0
		}
		if d := DepthOf(c.Replies, id); d >= 0 {
			return d + 1
		}
	}
	return -1
}

// Find returns the comment with id anywhere in the tree.
func Find(comments []*Comment, id string) *Comment {
	for _, c := range comments {
		if c == nil {
			continue
		}
		if c.ID == id {
			return c
		}
		if found := Find(c.Replies, id); found != nil {
			return found
		}
	}
	return nil
}
