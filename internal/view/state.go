package view

import (
	"strings"

	"taskdeck/internal/model"
	"taskdeck/internal/statusutil"
)

// State holds the filter inputs the user controls. It owns nothing else:
// the projection is recomputed from the store on every read.
type State struct {
	query      string
	status     string
	categoryID string
}

func NewState() *State {
	return &State{status: statusutil.FilterAll}
}

func (s *State) Query() string      { return s.query }
func (s *State) Status() string     { return s.status }
func (s *State) CategoryID() string { return s.categoryID }

func (s *State) SetQuery(q string) { s.query = q }

// SetStatus accepts "all" or any status spelling statusutil understands.
// It reports false and leaves the filter alone for anything else.
func (s *State) SetStatus(raw string) bool {
	f, err := statusutil.NormalizeFilter(raw)
	if err != nil {
		return false
	}
	s.status = f
	return true
}

func (s *State) SetCategory(id string) { s.categoryID = strings.TrimSpace(id) }

// CycleStatus moves the status tab to the next one (all → todo → … → done → all).
func (s *State) CycleStatus() {
	if s.status == statusutil.FilterAll || s.status == "" {
		s.status = string(model.Statuses[0])
		return
	}
	for i, st := range model.Statuses {
		if string(st) == s.status {
			if i+1 < len(model.Statuses) {
				s.status = string(model.Statuses[i+1])
			} else {
				s.status = statusutil.FilterAll
			}
			return
		}
	}
	s.status = statusutil.FilterAll
}

// CycleCategory steps through "" (all) followed by each category in order.
func (s *State) CycleCategory(cats []model.Category) {
	if len(cats) == 0 {
		s.categoryID = ""
		return
	}
	if s.categoryID == "" {
		s.categoryID = cats[0].ID
		return
	}
	for i, c := range cats {
		if c.ID == s.categoryID {
			if i+1 < len(cats) {
				s.categoryID = cats[i+1].ID
			} else {
				s.categoryID = ""
			}
			return
		}
	}
	s.categoryID = ""
}

func (s *State) Filter() Filter {
	return Filter{Query: s.query, Status: s.status, CategoryID: s.categoryID}
}

func (s *State) Project(tasks []model.Task) Result {
	return Project(tasks, s.Filter())
}
