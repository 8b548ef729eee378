package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/model"
)

const (
	pomodoroWork      = 25 * time.Minute
	pomodoroBreak     = 5 * time.Minute
	pomodoroLongBreak = 15 * time.Minute
	pomodoroLongEvery = 4
)

// pomodoroTickMsg carries the timer generation it was scheduled for; ticks
// from an earlier start or pause are dropped.
type pomodoroTickMsg struct{ seq int }

// pomodoro is a focus timer bound to one task. Finished focus sessions are
// counted on the task's pomodoroCompleted field.
type pomodoro struct {
	taskID    string
	title     string
	breakTime bool
	left      time.Duration
	running   bool
	sessions  int
	seq       int
}

// toggle pauses or resumes the timer for t. Picking a different task starts
// a new focus session. It reports whether the timer is now running.
func (p *pomodoro) toggle(t model.Task) bool {
	if p.taskID != t.ID {
		*p = pomodoro{taskID: t.ID, title: t.Title, left: pomodoroWork, sessions: p.sessions, seq: p.seq}
	}
	p.running = !p.running
	p.seq++
	return p.running
}

func (p *pomodoro) stop() {
	*p = pomodoro{seq: p.seq + 1}
}

// tick advances a running timer by one second and reports whether a focus
// session just ended. The timer pauses at every switch between focus and break.
func (p *pomodoro) tick() bool {
	if !p.running {
		return false
	}
	p.left -= time.Second
	if p.left > 0 {
		return false
	}
	p.running = false
	if p.breakTime {
		p.breakTime = false
		p.left = pomodoroWork
		return false
	}
	p.sessions++
	p.breakTime = true
	p.left = pomodoroBreak
	if p.sessions%pomodoroLongEvery == 0 {
		p.left = pomodoroLongBreak
	}
	return true
}

func (p pomodoro) status() string {
	if p.taskID == "" {
		return ""
	}
	mode := "focus"
	if p.breakTime {
		mode = "break"
	}
	paused := ""
	if !p.running {
		paused = " paused"
	}
	mins := int(p.left / time.Minute)
	secs := int(p.left % time.Minute / time.Second)
	return fmt.Sprintf("%s %02d:%02d%s · %s", mode, mins, secs, paused, p.title)
}

func (m *appModel) pomodoroTick() tea.Cmd {
	seq := m.pomo.seq
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return pomodoroTickMsg{seq: seq} })
}

func (m *appModel) updatePomodoro(msg pomodoroTickMsg) tea.Cmd {
	if msg.seq != m.pomo.seq || !m.pomo.running {
		return nil
	}
	if !m.pomo.tick() {
		if m.pomo.running {
			return m.pomodoroTick()
		}
		m.flash("Break over", false)
		return nil
	}

	m.flash("Pomodoro done: "+m.pomo.title, false)
	t, ok := m.ctrl.Store().Get(m.pomo.taskID)
	if !ok {
		return nil
	}
	n := 1
	if t.PomodoroCompleted != nil {
		n = *t.PomodoroCompleted + 1
	}
	return m.update(t.ID, model.TaskPatch{PomodoroCompleted: &n})
}

// pomodoroCount renders "done/estimate" for the detail pane.
func pomodoroCount(t model.Task) string {
	done := 0
	if t.PomodoroCompleted != nil {
		done = *t.PomodoroCompleted
	}
	if t.PomodoroEstimate != nil {
		return fmt.Sprintf("pomodoros %d/%d", done, *t.PomodoroEstimate)
	}
	return fmt.Sprintf("pomodoros %d", done)
}
