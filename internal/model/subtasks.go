package model

// Subtask edits shared by every backend. Each returns a modified copy and
// false when the subtask id is unknown.

func (t Task) WithSubtask(st Subtask) Task {
	out := t.Clone()
	out.Subtasks = append(out.Subtasks, st)
	return out
}

func (t Task) WithSubtaskTitle(subtaskID, title string) (Task, bool) {
	i := t.FindSubtask(subtaskID)
	if i < 0 {
		return t, false
	}
	out := t.Clone()
	out.Subtasks[i].Title = title
	return out, true
}

func (t Task) WithSubtaskToggled(subtaskID string) (Task, bool) {
	i := t.FindSubtask(subtaskID)
	if i < 0 {
		return t, false
	}
	out := t.Clone()
	out.Subtasks[i].IsCompleted = !out.Subtasks[i].IsCompleted
	return out, true
}

func (t Task) WithoutSubtask(subtaskID string) (Task, bool) {
	i := t.FindSubtask(subtaskID)
	if i < 0 {
		return t, false
	}
	out := t.Clone()
	out.Subtasks = append(out.Subtasks[:i], out.Subtasks[i+1:]...)
	return out, true
}
