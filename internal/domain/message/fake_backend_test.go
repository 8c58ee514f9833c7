package message

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/chloeho97/arcana-front/internal/domain/session"
)

var epoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// fakeServer is an in-memory messaging backend shared by all components.
type fakeServer struct {
	mu       sync.Mutex
	users    map[string]session.User
	messages []Message
	partners map[string]map[string]bool
	nextID   int
	clock    time.Time

	listCalls, lastCalls, countCalls, totalCalls int
	fetchCalls, markReadCalls, sendCalls         int
	deleteCalls, userCalls                       int

	listErr, lastErr, countErr, totalErr error
	fetchErr, markReadErr, sendErr       error
	deleteErr, startErr, userErr         error

	// holdList, when set, makes the next ListConversations read its result
	// and then wait until the channel is closed before returning it.
	holdList    chan struct{}
	listStarted chan struct{}

	// holdFetch, when set, makes the next FetchThread read its result and
	// then wait until the channel is closed before returning it.
	holdFetch    chan struct{}
	fetchStarted chan struct{}

	// holdDelete, when set, blocks DeleteMessage until closed.
	holdDelete    chan struct{}
	deleteStarted chan struct{}
}

func newFakeServer(users ...session.User) *fakeServer {
	f := &fakeServer{
		users:    make(map[string]session.User),
		partners: make(map[string]map[string]bool),
		clock:    epoch,
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeServer) link(a, b string) {
	if f.partners[a] == nil {
		f.partners[a] = make(map[string]bool)
	}
	if f.partners[b] == nil {
		f.partners[b] = make(map[string]bool)
	}
	f.partners[a][b] = true
	f.partners[b][a] = true
}

// say appends a message at the fake clock and advances it by step.
func (f *fakeServer) say(from, to, content string, step time.Duration) Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sayLocked(from, to, content, step)
}

func (f *fakeServer) sayLocked(from, to, content string, step time.Duration) Message {
	f.nextID++
	f.clock = f.clock.Add(step)
	m := Message{
		ID:         fmt.Sprintf("m%d", f.nextID),
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		CreatedAt:  f.clock,
	}
	f.messages = append(f.messages, m)
	f.link(from, to)
	return m
}

func between(m Message, a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func (f *fakeServer) ListConversations(_ context.Context, userID string) ([]session.User, error) {
	f.mu.Lock()
	f.listCalls++
	if f.listErr != nil {
		err := f.listErr
		f.mu.Unlock()
		return nil, err
	}
	ids := make([]string, 0, len(f.partners[userID]))
	for id := range f.partners[userID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]session.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.users[id])
	}
	hold, started := f.holdList, f.listStarted
	f.holdList, f.listStarted = nil, nil
	f.mu.Unlock()

	if hold != nil {
		if started != nil {
			close(started)
		}
		<-hold
	}
	return out, nil
}

func (f *fakeServer) LastMessage(_ context.Context, userID, otherID string) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCalls++
	if f.lastErr != nil {
		return nil, f.lastErr
	}
	for i := len(f.messages) - 1; i >= 0; i-- {
		if between(f.messages[i], userID, otherID) {
			m := f.messages[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeServer) UnreadCount(_ context.Context, userID, otherID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, m := range f.messages {
		if m.SenderID == otherID && m.UnreadFor(userID) {
			n++
		}
	}
	return n, nil
}

func (f *fakeServer) UnreadTotal(_ context.Context, userID string) (*UnreadTotal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalCalls++
	if f.totalErr != nil {
		return nil, f.totalErr
	}
	summary := &UnreadTotal{}
	for _, m := range f.messages {
		if m.UnreadFor(userID) {
			summary.Total++
			last := m
			summary.LastMessage = &last
		}
	}
	return summary, nil
}

func (f *fakeServer) UserByID(_ context.Context, userID string) (*session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	return &u, nil
}

func (f *fakeServer) FetchThread(_ context.Context, userID, otherID string) ([]Message, error) {
	f.mu.Lock()
	f.fetchCalls++
	if f.fetchErr != nil {
		err := f.fetchErr
		f.mu.Unlock()
		return nil, err
	}
	var out []Message
	for _, m := range f.messages {
		if between(m, userID, otherID) {
			out = append(out, m)
		}
	}
	hold, started := f.holdFetch, f.fetchStarted
	f.holdFetch, f.fetchStarted = nil, nil
	f.mu.Unlock()

	if hold != nil {
		if started != nil {
			close(started)
		}
		<-hold
	}
	return out, nil
}

func (f *fakeServer) MarkRead(_ context.Context, userID, otherID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls++
	if f.markReadErr != nil {
		return f.markReadErr
	}
	for i := range f.messages {
		if f.messages[i].SenderID == otherID && f.messages[i].ReceiverID == userID {
			f.messages[i].Read = true
		}
	}
	return nil
}

func (f *fakeServer) SendMessage(_ context.Context, senderID, receiverID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sayLocked(senderID, receiverID, content, time.Minute)
	return nil
}

func (f *fakeServer) DeleteMessage(_ context.Context, messageID, userID string) error {
	f.mu.Lock()
	f.deleteCalls++
	hold, started := f.holdDelete, f.deleteStarted
	f.holdDelete, f.deleteStarted = nil, nil
	f.mu.Unlock()

	if hold != nil {
		if started != nil {
			close(started)
		}
		<-hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.messages = slices.DeleteFunc(f.messages, func(m Message) bool {
		return m.ID == messageID && m.SenderID == userID
	})
	return nil
}

func (f *fakeServer) StartConversation(_ context.Context, userID, otherID string) (*session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	u, ok := f.users[otherID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", otherID)
	}
	f.link(userID, otherID)
	return &u, nil
}

func (f *fakeServer) DeleteConversation(_ context.Context, userID, otherID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.partners[userID], otherID)
	delete(f.partners[otherID], userID)
	f.messages = slices.DeleteFunc(f.messages, func(m Message) bool { return between(m, userID, otherID) })
	return nil
}

func (f *fakeServer) calls(counter *int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *counter
}

func (f *fakeServer) set(apply func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apply()
}
