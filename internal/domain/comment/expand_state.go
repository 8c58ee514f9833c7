package comment

import "sync"

// ExpandState remembers which nodes show all their replies. An absent entry
// means collapsed: only the first reply is visible.
type ExpandState struct {
	mu       sync.RWMutex
	expanded map[string]bool
}

func NewExpandState() *ExpandState {
	return &ExpandState{expanded: make(map[string]bool)}
}

// Toggle flips the entry for id and returns the new value.
func (e *ExpandState) Toggle(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.expanded == nil {
		e.expanded = make(map[string]bool)
	}
	next := !e.expanded[id]
	if next {
		e.expanded[id] = true
	} else {
		delete(e.expanded, id)
	}
	return next
}

func (e *ExpandState) Expanded(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.expanded[id]
}

// Reset clears every entry. Called when the thread switches collection.
func (e *ExpandState) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expanded = make(map[string]bool)
}

// NeedsToggle reports whether a "show more" control makes sense for c.
func NeedsToggle(c *Comment) bool {
	return c != nil && len(c.Replies) > 1
}
