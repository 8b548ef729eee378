// Package canonical holds the client's authoritative in-memory task list.
//
// Every method is synchronous and total: patching or removing an id that is not
// present is a no-op. Whether such a no-op counts as a failure is the caller's call.
package canonical

import (
	"sync"

	"taskdeck/internal/model"
)

type Store struct {
	mu    sync.RWMutex
	tasks []model.Task

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func()
}

func New(tasks []model.Task) *Store {
	s := &Store{}
	s.tasks = cloneAll(tasks)
	return s
}

// Subscribe registers fn to run after every change. The returned func unsubscribes.
// fn runs on the goroutine that made the change, outside the store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = map[int]func(){}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Tasks returns a deep copy of the list in store order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tasks)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.ID)
	}
	return out
}

func (s *Store) ReplaceAll(tasks []model.Task) {
	s.mu.Lock()
	s.tasks = cloneAll(tasks)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ApplyPatch(id string, patch model.TaskPatch) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.tasks[i] = patch.Apply(s.tasks[i])
	s.mu.Unlock()
	s.notify()
}

// ApplyPatches applies each patch to its id; missing ids are skipped.
func (s *Store) ApplyPatches(patches map[string]model.TaskPatch) {
	s.mu.Lock()
	changed := false
	for i := range s.tasks {
		p, ok := patches[s.tasks[i].ID]
		if !ok {
			continue
		}
		s.tasks[i] = p.Apply(s.tasks[i])
		changed = true
	}
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *Store) Remove(id string) {
	s.RemoveMany([]string{id})
}

func (s *Store) RemoveMany(ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	s.mu.Lock()
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if !drop[t.ID] {
			kept = append(kept, t)
		}
	}
	changed := len(kept) != len(s.tasks)
	s.tasks = kept
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// Put replaces the record with t.ID in place, or appends it when absent.
func (s *Store) Put(t model.Task) {
	s.mu.Lock()
	if i := s.indexOf(t.ID); i >= 0 {
		s.tasks[i] = t.Clone()
	} else {
		s.tasks = append(s.tasks, t.Clone())
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}
