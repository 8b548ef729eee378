package canonical

import "taskdeck/internal/model"

// Snapshot is an immutable copy of the whole list, captured before an optimistic apply.
type Snapshot struct {
	tasks []model.Task
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{tasks: s.Tasks()}
}

// Restore puts the list back exactly as it was when snap was taken.
func (s *Store) Restore(snap Snapshot) {
	s.ReplaceAll(snap.tasks)
}

func (snap Snapshot) Len() int { return len(snap.tasks) }

// TaskSnapshot is a copy of a single record and its position.
type TaskSnapshot struct {
	ID      string
	Task    model.Task
	Index   int
	Present bool
}

func (s *Store) SnapshotTask(id string) TaskSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return TaskSnapshot{ID: id}
	}
	return TaskSnapshot{ID: id, Task: s.tasks[i].Clone(), Index: i, Present: true}
}

// RestoreTask writes the snapshotted record back, re-inserting it at its old
// position if it has since been removed. A snapshot of an absent id restores nothing.
func (s *Store) RestoreTask(snap TaskSnapshot) {
	if !snap.Present {
		return
	}
	s.mu.Lock()
	if i := s.indexOf(snap.ID); i >= 0 {
		s.tasks[i] = snap.Task.Clone()
	} else {
		at := snap.Index
		if at > len(s.tasks) {
			at = len(s.tasks)
		}
		s.tasks = append(s.tasks, model.Task{})
		copy(s.tasks[at+1:], s.tasks[at:])
		s.tasks[at] = snap.Task.Clone()
	}
	s.mu.Unlock()
	s.notify()
}
