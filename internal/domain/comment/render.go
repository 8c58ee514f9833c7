package comment

import "github.com/chloeho97/arcana-front/internal/domain/session"

// DefaultMaxDepth is comment, reply and sub-reply.
const DefaultMaxDepth = 3

// ExpandLookup is the read side of ExpandState.
type ExpandLookup interface {
	Expanded(id string) bool
}

// RenderOptions controls Render.
type RenderOptions struct {
	// MaxDepth is the number of nesting levels with their own expand control.
	// Anything below the last level is flattened at depth MaxDepth.
	MaxDepth int
	Viewer   *session.Session
}

// Node is one visible row of the rendered thread.
type Node struct {
	Comment     *Comment
	Depth       int
	ShowToggle  bool
	Expanded    bool
	HiddenCount int
	CanReply    bool
	CanDelete   bool
}

// Render flattens the tree into visible rows in display order. It is a pure
// function of comments, expand state and options.
func Render(comments []*Comment, expand ExpandLookup, opts RenderOptions) []Node {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	nodes := make([]Node, 0, len(comments))
	for _, c := range comments {
		nodes = renderNode(nodes, c, 0, expand, opts)
	}
	return nodes
}

func renderNode(nodes []Node, c *Comment, depth int, expand ExpandLookup, opts RenderOptions) []Node {
	if c == nil {
		return nodes
	}

	node := Node{
		Comment:   c,
		Depth:     depth,
		CanReply:  opts.Viewer.Authenticated() && depth < opts.MaxDepth-1,
		CanDelete: opts.Viewer.CanModerate(c.Author.ID),
	}

	if depth >= opts.MaxDepth-1 {
		nodes = append(nodes, node)
		for _, reply := range c.Replies {
			nodes = renderFlat(nodes, reply, opts)
		}
		return nodes
	}

	visible := c.Replies
	if NeedsToggle(c) {
		node.ShowToggle = true
		node.Expanded = expand != nil && expand.Expanded(c.ID)
		if !node.Expanded {
			visible = c.Replies[:1]
			node.HiddenCount = len(c.Replies) - 1
		}
	}

	nodes = append(nodes, node)
	for _, reply := range visible {
		nodes = renderNode(nodes, reply, depth+1, expand, opts)
	}
	return nodes
}

// renderFlat emits c and all its descendants at the capped depth.
func renderFlat(nodes []Node, c *Comment, opts RenderOptions) []Node {
	if c == nil {
		return nodes
	}
	nodes = append(nodes, Node{
		Comment:   c,
		Depth:     opts.MaxDepth,
		CanDelete: opts.Viewer.CanModerate(c.Author.ID),
	})
	for _, reply := range c.Replies {
		nodes = renderFlat(nodes, reply, opts)
	}
	return nodes
}
