// Package selection tracks the ids a user has picked for a bulk action.
package selection

import "sync"

// Set is an ordered set of task ids. It knows nothing about the task store;
// callers prune it with Retain once records go away.
type Set struct {
	mu    sync.RWMutex
	order []string
	index map[string]struct{}
}

func New(ids ...string) *Set {
	s := &Set{}
	s.SelectAll(ids)
	return s
}

// Toggle adds id if absent and removes it otherwise.
func (s *Set) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	if _, ok := s.index[id]; ok {
		s.removeLocked(id)
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

// SelectAll replaces the selection with ids.
func (s *Set) SelectAll(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.index = map[string]struct{}{}
}

func (s *Set) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// IDs returns the selected ids in the order they were selected.
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Remove drops ids from the selection; unknown ids are ignored.
func (s *Set) Remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			s.removeLocked(id)
		}
	}
}

// Retain keeps only the selected ids that also appear in live.
func (s *Set) Retain(live []string) {
	keep := make(map[string]struct{}, len(live))
	for _, id := range live {
		keep[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	order := s.order[:0:0]
	for _, id := range s.order {
		if _, ok := keep[id]; ok {
			order = append(order, id)
			continue
		}
		delete(s.index, id)
	}
	s.order = order
}

func (s *Set) init() {
	if s.index == nil {
		s.index = map[string]struct{}{}
	}
}

func (s *Set) removeLocked(id string) {
	delete(s.index, id)
	for i, got := range s.order {
		if got == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
}
