package comment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chloeho97/arcana-front/internal/domain/session"
)

func ids(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Comment.ID
	}
	return out
}

func TestExpandState_ToggleTwiceRestores(t *testing.T) {
	state := NewExpandState()

	for _, id := range []string{"a", "b", ""} {
		before := state.Expanded(id)
		state.Toggle(id)
		state.Toggle(id)
		assert.Equal(t, before, state.Expanded(id))
	}

	assert.True(t, state.Toggle("a"))
	state.Toggle("a")
	state.Toggle("a")
	assert.True(t, state.Expanded("a"))
}

func TestExpandState_Reset(t *testing.T) {
	state := NewExpandState()
	state.Toggle("a")
	state.Reset()
	assert.False(t, state.Expanded("a"))
}

func TestNeedsToggle_TruthTable(t *testing.T) {
	assert.False(t, NeedsToggle(nil))
	assert.False(t, NeedsToggle(node("a", "u1")))
	assert.False(t, NeedsToggle(node("a", "u1", node("b", "u1"))))
	assert.True(t, NeedsToggle(node("a", "u1", node("b", "u1"), node("c", "u1"))))
}

func TestRender_SingleChildNeverShowsToggle(t *testing.T) {
	tree := []*Comment{node("a", "u1", node("b", "u1", node("c", "u1")))}
	state := NewExpandState()

	for _, toggled := range []bool{false, true} {
		if toggled {
			state.Toggle("a")
			state.Toggle("b")
		}
		for _, n := range Render(tree, state, RenderOptions{}) {
			assert.False(t, n.ShowToggle, n.Comment.ID)
			assert.Zero(t, n.HiddenCount)
		}
	}
}

func TestRender_CollapsedShowsFirstChildOnly(t *testing.T) {
	tree := []*Comment{node("a", "u1", node("b", "u2"), node("c", "u2"), node("d", "u2"))}
	state := NewExpandState()

	nodes := Render(tree, state, RenderOptions{})
	assert.Equal(t, []string{"a", "b"}, ids(nodes))
	assert.True(t, nodes[0].ShowToggle)
	assert.False(t, nodes[0].Expanded)
	assert.Equal(t, 2, nodes[0].HiddenCount)

	state.Toggle("a")
	nodes = Render(tree, state, RenderOptions{})
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(nodes))
	assert.True(t, nodes[0].Expanded)
	assert.Zero(t, nodes[0].HiddenCount)
	assert.Equal(t, []int{0, 1, 1, 1}, []int{nodes[0].Depth, nodes[1].Depth, nodes[2].Depth, nodes[3].Depth})
}

func TestRender_FlattensBeyondMaxDepth(t *testing.T) {
	deep := node("l4a", "u1", node("l5", "u1", node("l6", "u1")))
	tree := []*Comment{
		node("l1", "u1",
			node("l2", "u1",
				node("l3", "u1", deep, node("l4b", "u1")),
			),
		),
	}

	nodes := Render(tree, NewExpandState(), RenderOptions{MaxDepth: 3})

	assert.Equal(t, []string{"l1", "l2", "l3", "l4a", "l5", "l6", "l4b"}, ids(nodes))
	depths := make([]int, len(nodes))
	for i, n := range nodes {
		depths[i] = n.Depth
		if n.Depth >= 2 {
			assert.False(t, n.ShowToggle, n.Comment.ID)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 3, 3, 3}, depths)
}

func TestRender_ThirdLevelShowsAllChildrenWithoutToggle(t *testing.T) {
	tree := []*Comment{node("a", "u1", node("b", "u1", node("c", "u1", node("d", "u1"), node("e", "u1"))))}

	nodes := Render(tree, NewExpandState(), RenderOptions{})

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(nodes))
}

func TestRender_IsPure(t *testing.T) {
	tree := []*Comment{node("a", "u1", node("b", "u2"), node("c", "u2"))}
	state := NewExpandState()
	state.Toggle("a")

	assert.Equal(t, Render(tree, state, RenderOptions{}), Render(tree, state, RenderOptions{}))
}

func TestRender_Actions(t *testing.T) {
	tree := []*Comment{node("a", "u1", node("b", "u2", node("c", "u2", node("d", "u1"))))}

	owner := Render(tree, nil, RenderOptions{Viewer: session.New("tok", session.User{ID: "u1"})})
	require.Len(t, owner, 4)
	assert.Equal(t, []bool{true, false, false, true}, []bool{owner[0].CanDelete, owner[1].CanDelete, owner[2].CanDelete, owner[3].CanDelete})
	assert.Equal(t, []bool{true, true, false, false}, []bool{owner[0].CanReply, owner[1].CanReply, owner[2].CanReply, owner[3].CanReply})

	admin := Render(tree, nil, RenderOptions{Viewer: session.New("tok", session.User{ID: "x", Role: session.RoleAdmin})})
	for _, n := range admin {
		assert.True(t, n.CanDelete)
	}

	anonymous := Render(tree, nil, RenderOptions{})
	for _, n := range anonymous {
		assert.False(t, n.CanDelete)
		assert.False(t, n.CanReply)
	}
}

func TestTotalCountAndFind(t *testing.T) {
	tree := []*Comment{node("a", "u1", node("b", "u1", node("c", "u1"))), node("d", "u1")}

	assert.Equal(t, 4, TotalCount(tree))
	assert.Equal(t, 0, TotalCount(nil))
	require.NotNil(t, Find(tree, "c"))
	assert.Equal(t, "c", Find(tree, "c").ID)
	assert.Nil(t, Find(tree, "zz"))
}

func TestCounter_NeverNegative(t *testing.T) {
	var c Counter
	c.Set(2)
	c.Add(1)
	assert.Equal(t, 3, c.Value())
	c.Add(-5)
	assert.Equal(t, 0, c.Value())
}

func TestComment_DecodesBackendShape(t *testing.T) {
	raw := `[{"_id":"a","userId":{"_id":"u1","username":"ana","avatar":""},"content":"Hello","createdAt":"2024-03-01T10:00:00.000Z",
		"replies":[{"_id":"b","userId":"u2","content":"Hi back","createdAt":"2024-03-01T10:05:00.000Z","replies":[]}]}]`

	var tree []*Comment
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))

	require.Len(t, tree, 1)
	assert.Equal(t, "ana", tree[0].Author.Username)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, Author{ID: "u2"}, tree[0].Replies[0].Author)
	assert.Equal(t, 2024, tree[0].CreatedAt.Year())
}

func TestLengthHint(t *testing.T) {
	assert.Equal(t, "0/500", LengthHint("", 500))
	assert.Equal(t, "3/200", LengthHint("abc", 200))
	assert.Equal(t, "1/500", LengthHint("é", 0))
}
