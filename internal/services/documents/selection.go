package documents

import (
	"sort"
	"sync"

	"github.com/Jitesh17/docai/internal/interfaces"
)

// Selection tracks the document ids marked for inclusion in the next AI
// request. It holds ids by value only and performs no validation against
// the registry; dangling ids are tolerated until the next reconciliation.
type Selection struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewSelection creates an empty selection tracker
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// SetSelection replaces the selection wholesale
func (s *Selection) SetSelection(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		next[id] = struct{}{}
	}

	s.mu.Lock()
	s.ids = next
	s.mu.Unlock()
}

// RemoveIDs drops the given ids from the selection. Used to reconcile the
// selection after a successful delete.
func (s *Selection) RemoveIDs(ids []string) {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.ids, id)
	}
	s.mu.Unlock()
}

// IDs returns the selected ids, sorted for stable output
func (s *Selection) IDs() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.mu.Unlock()
}

var _ interfaces.SelectionTracker = (*Selection)(nil)
