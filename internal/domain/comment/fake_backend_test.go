package comment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type fakeBackend struct {
	mu     sync.Mutex
	trees  map[string][]*Comment
	tokens map[string]string
	nextID int

	fetchCalls  int
	postCalls   int
	replyCalls  int
	deleteCalls int

	fetchErr  error
	postErr   error
	replyErr  error
	deleteErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		trees:  make(map[string][]*Comment),
		tokens: map[string]string{"tok-u1": "u1", "tok-u2": "u2", "tok-admin": "admin"},
	}
}

func (f *fakeBackend) FetchComments(_ context.Context, collectionID string) ([]*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return cloneTree(f.trees[collectionID]), nil
}

func (f *fakeBackend) PostComment(_ context.Context, collectionID, userID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postCalls++
	if f.postErr != nil {
		return f.postErr
	}
	f.trees[collectionID] = append(f.trees[collectionID], f.newComment(userID, content))
	return nil
}

func (f *fakeBackend) PostReply(_ context.Context, targetID, token, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replyCalls++
	if f.replyErr != nil {
		return f.replyErr
	}
	for _, tree := range f.trees {
		if target := Find(tree, targetID); target != nil {
			target.Replies = append(target.Replies, f.newComment(f.tokens[token], content))
			return nil
		}
	}
	return fmt.Errorf("target %s not found", targetID)
}

func (f *fakeBackend) DeleteComment(_ context.Context, commentID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, tree := range f.trees {
		f.trees[id] = removeComment(tree, commentID)
	}
	return nil
}

func (f *fakeBackend) seed(collectionID string, comments ...*Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees[collectionID] = comments
}

func (f *fakeBackend) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.postCalls + f.replyCalls + f.deleteCalls
}

func (f *fakeBackend) newComment(userID, content string) *Comment {
	f.nextID++
	return &Comment{
		ID:        fmt.Sprintf("c%d", f.nextID),
		Author:    Author{ID: userID},
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func removeComment(tree []*Comment, id string) []*Comment {
	out := tree[:0:0]
	for _, c := range tree {
		if c.ID == id {
			continue
		}
		c.Replies = removeComment(c.Replies, id)
		out = append(out, c)
	}
	return out
}

func cloneTree(tree []*Comment) []*Comment {
	if tree == nil {
		return nil
	}
	out := make([]*Comment, len(tree))
	for i, c := range tree {
		copied := *c
		copied.Replies = cloneTree(c.Replies)
		out[i] = &copied
	}
	return out
}

func node(id, author string, replies ...*Comment) *Comment {
	return &Comment{ID: id, Author: Author{ID: author}, Content: "body " + id, Replies: replies}
}
