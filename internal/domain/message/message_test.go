package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chloeho97/arcana-front/internal/domain/session"
)

func TestSortConversations_MostRecentFirstEmptyLast(t *testing.T) {
	t1 := epoch
	t2 := epoch.Add(time.Hour)
	t3 := epoch.Add(2 * time.Hour)
	conversations := []Conversation{
		{User: session.User{ID: "none"}},
		{User: session.User{ID: "t1"}, LastMessageAt: t1},
		{User: session.User{ID: "t3"}, LastMessageAt: t3},
		{User: session.User{ID: "t2"}, LastMessageAt: t2},
	}

	SortConversations(conversations)

	ids := make([]string, len(conversations))
	for i, c := range conversations {
		ids[i] = c.User.ID
	}
	assert.Equal(t, []string{"t3", "t2", "t1", "none"}, ids)
	assert.False(t, conversations[3].HasMessages())
}

func TestSortConversations_EmptyOnesKeepOrder(t *testing.T) {
	conversations := []Conversation{
		{User: session.User{ID: "a"}},
		{User: session.User{ID: "b"}},
		{User: session.User{ID: "c"}, LastMessageAt: epoch},
	}

	SortConversations(conversations)

	assert.Equal(t, "c", conversations[0].User.ID)
	assert.Equal(t, "a", conversations[1].User.ID)
	assert.Equal(t, "b", conversations[2].User.ID)
}

func TestConversationSettle(t *testing.T) {
	tests := []struct {
		name      string
		last      *Message
		hasUnread bool
	}{
		{"no message", nil, false},
		{"incoming unread", &Message{SenderID: "u2", CreatedAt: epoch}, true},
		{"incoming read", &Message{SenderID: "u2", Read: true, CreatedAt: epoch}, false},
		{"outgoing unread", &Message{SenderID: "u1", CreatedAt: epoch}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Conversation{HasUnread: true, LastMessageAt: epoch.Add(time.Hour)}
			c.settle(tt.last, "u1")

			assert.Equal(t, tt.hasUnread, c.HasUnread)
			if tt.last == nil {
				assert.True(t, c.LastMessageAt.IsZero())
			} else {
				assert.Equal(t, tt.last.CreatedAt, c.LastMessageAt)
			}
		})
	}
}

func TestBadgeLabel(t *testing.T) {
	tests := []struct {
		total, limit int
		want         string
	}{
		{0, 9, ""},
		{-1, 9, ""},
		{3, 9, "3"},
		{9, 9, "9"},
		{10, 9, "9+"},
		{99, 99, "99"},
		{150, 99, "99+"},
		{150, 0, "150"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BadgeLabel(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestAvatarOrDefault(t *testing.T) {
	assert.Equal(t, DefaultAvatar, AvatarOrDefault(""))
	assert.Equal(t, DefaultAvatar, AvatarOrDefault("https://cdn.example.com/default-avatar.png"))
	assert.Equal(t, "https://cdn.example.com/me.jpg", AvatarOrDefault("https://cdn.example.com/me.jpg"))
}

func TestStatus_Transitions(t *testing.T) {
	s := StatusUnknown

	s, err := s.TransitionTo(StatusFetchingLastMessage)
	require.NoError(t, err)
	s, err = s.TransitionTo(StatusSettled)
	require.NoError(t, err)
	assert.True(t, s.IsSettled())

	_, err = s.TransitionTo(StatusUnknown)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.True(t, s.CanTransitionTo(StatusFetchingLastMessage))
	assert.False(t, StatusUnknown.CanTransitionTo(StatusSettled))
	assert.False(t, Status("bogus").CanTransitionTo(StatusSettled))
}

func TestMessage_DecodesBackendShape(t *testing.T) {
	raw := `{"_id":"m1","sender":"u2","receiver":"u1","content":"hey","createdAt":"2025-03-10T09:00:00Z","read":false}`

	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "u2", m.SenderID)
	assert.True(t, m.UnreadFor("u1"))
	assert.False(t, m.UnreadFor("u2"))
	assert.Equal(t, epoch, m.CreatedAt)
}

func TestBuildTimeline_DateSeparators(t *testing.T) {
	paris := time.FixedZone("CET", 3600)

	messages := []Message{
		{ID: "a", SenderID: "u1", CreatedAt: time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)},
		{ID: "b", SenderID: "u2", CreatedAt: time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)},
		{ID: "c", SenderID: "u1", CreatedAt: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)},
	}

	utc := BuildTimeline(messages, "u1", time.UTC)
	assert.Equal(t, "2025-03-10", utc[0].Separator)
	assert.Empty(t, utc[1].Separator)
	assert.Equal(t, "2025-03-11", utc[2].Separator)

	// 23:30 UTC is already the next day in Paris.
	local := BuildTimeline(messages, "u1", paris)
	assert.Equal(t, "2025-03-10", local[0].Separator)
	assert.Equal(t, "2025-03-11", local[1].Separator)
	assert.Empty(t, local[2].Separator)

	assert.True(t, utc[0].Mine)
	assert.True(t, utc[0].CanDelete)
	assert.False(t, utc[1].Mine)
	assert.False(t, utc[1].CanDelete)
}

func TestBuildTimeline_Empty(t *testing.T) {
	assert.Empty(t, BuildTimeline(nil, "u1", time.UTC))
}
