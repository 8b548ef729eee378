package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"taskdeck/internal/model"
	"taskdeck/internal/mutate"
	"taskdeck/internal/statusutil"
	"taskdeck/internal/view"
)

type storeChangedMsg struct{}

type noteMsg Note

type resyncTickMsg struct{}

type resyncDoneMsg struct {
	changed bool
	err     error
}

// opDoneMsg ends a mutation command. The list itself is refreshed by the
// store change that the mutation triggers.
type opDoneMsg struct{ kind mutate.Kind }

// noteTTL is how long a notification stays on the status line.
const noteTTL = 5 * time.Second

var statusTabs = []string{statusutil.FilterAll, string(model.StatusTodo), string(model.StatusInProgress), string(model.StatusDone)}

// row is either a group header or a task.
type row struct {
	header string
	task   *model.Task
}

type appModel struct {
	ctx    context.Context
	ctrl   *mutate.Controller
	notes  *Notifier
	log    zerolog.Logger
	resync time.Duration
	title  string

	changes     chan struct{}
	unsubscribe func()

	state    *view.State
	result   view.Result
	rows     []row
	cursorID string

	search    textinput.Model
	searching bool
	spin      spinner.Model
	keys      keyMap
	help      help.Model

	pomo pomodoro

	note   Note
	width  int
	height int
}

func newModel(ctx context.Context, opts Options) *appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search title or description"
	ti.CharLimit = 200

	m := &appModel{
		ctx:     ctx,
		ctrl:    opts.Controller,
		notes:   opts.Notes,
		log:     opts.Logger,
		resync:  opts.Resync,
		title:   opts.Title,
		changes: make(chan struct{}, 1),
		state:   view.NewState(),
		search:  ti,
		spin:    spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	if m.title == "" {
		m.title = "taskdeck"
	}
	m.unsubscribe = m.ctrl.Store().Subscribe(func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	m.reproject()
	return m
}

func (m *appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitChange(), m.waitNote(), m.spin.Tick}
	if m.resync > 0 {
		cmds = append(cmds, m.scheduleResync())
	}
	return tea.Batch(cmds...)
}

func (m *appModel) waitChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return storeChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *appModel) waitNote() tea.Cmd {
	if m.notes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case n := <-m.notes.Notes():
			return noteMsg(n)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *appModel) scheduleResync() tea.Cmd {
	return tea.Tick(m.resync, func(time.Time) tea.Msg { return resyncTickMsg{} })
}

func (m *appModel) runResync() tea.Cmd {
	ctx := m.ctx
	ctrl := m.ctrl
	return func() tea.Msg {
		changed, err := ctrl.Resync(ctx)
		return resyncDoneMsg{changed: changed, err: err}
	}
}

// reproject recomputes the visible rows from the store and keeps the cursor
// on the same task when it is still visible.
func (m *appModel) reproject() {
	tasks := m.ctrl.Store().Tasks()
	m.ctrl.Selection().Retain(view.IDs(tasks))
	m.result = m.state.Project(tasks)
	m.rows = m.rows[:0]

	if m.state.Status() == statusutil.FilterAll {
		for _, st := range model.Statuses {
			group := m.result.Groups.Get(st)
			if len(group) == 0 {
				continue
			}
			m.rows = append(m.rows, row{header: fmt.Sprintf("%s (%d)", statusutil.Label(string(st)), len(group))})
			for i := range group {
				m.rows = append(m.rows, row{task: &group[i]})
			}
		}
	} else {
		for i := range m.result.Filtered {
			m.rows = append(m.rows, row{task: &m.result.Filtered[i]})
		}
	}

	if m.cursorIndex() < 0 {
		m.cursorID = ""
		if i := m.firstTask(0, 1); i >= 0 {
			m.cursorID = m.rows[i].task.ID
		}
	}
}

func (m *appModel) cursorIndex() int {
	if m.cursorID == "" {
		return -1
	}
	for i, r := range m.rows {
		if r.task != nil && r.task.ID == m.cursorID {
			return i
		}
	}
	return -1
}

// firstTask returns the first task row at or after from, stepping by dir.
func (m *appModel) firstTask(from, dir int) int {
	for i := from; i >= 0 && i < len(m.rows); i += dir {
		if m.rows[i].task != nil {
			return i
		}
	}
	return -1
}

func (m *appModel) current() (model.Task, bool) {
	i := m.cursorIndex()
	if i < 0 {
		return model.Task{}, false
	}
	return *m.rows[i].task, true
}

func (m *appModel) move(dir int) {
	start := m.cursorIndex()
	if start < 0 {
		start = -dir
	}
	if i := m.firstTask(start+dir, dir); i >= 0 {
		m.cursorID = m.rows[i].task.ID
	}
}

func (m *appModel) flash(text string, isErr bool) {
	m.note = Note{Text: text, Err: isErr, At: time.Now()}
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.Width = max(10, msg.Width-4)
		return m, nil

	case storeChangedMsg:
		m.reproject()
		return m, m.waitChange()

	case noteMsg:
		m.note = Note(msg)
		return m, m.waitNote()

	case resyncTickMsg:
		if m.ctrl.Busy() {
			return m, m.scheduleResync()
		}
		return m, m.runResync()

	case resyncDoneMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("resync failed")
		}
		if m.resync > 0 {
			return m, m.scheduleResync()
		}
		return m, nil

	case pomodoroTickMsg:
		return m, m.updatePomodoro(msg)

	case opDoneMsg:
		m.log.Debug().Str("kind", string(msg.kind)).Msg("operation finished")
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.state.SetQuery("")
		m.reproject()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.state.SetQuery(m.search.Value())
	m.reproject()
	return m, cmd
}

func (m *appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.ctrl.Selection()
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Down):
		m.move(1)
	case key.Matches(msg, k.Up):
		m.move(-1)
	case key.Matches(msg, k.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, k.NextTab):
		m.state.CycleStatus()
		m.reproject()
	case key.Matches(msg, k.Tab):
		m.state.SetStatus(statusTabs[int(msg.String()[0]-'1')])
		m.reproject()
	case key.Matches(msg, k.Category):
		m.state.CycleCategory(m.ctrl.Categories())
		m.reproject()
	case key.Matches(msg, k.Select):
		if t, ok := m.current(); ok {
			sel.Toggle(t.ID)
		}
	case key.Matches(msg, k.SelectAll):
		sel.SelectAll(view.IDs(m.result.Filtered))
	case key.Matches(msg, k.Clear):
		sel.Clear()
	case key.Matches(msg, k.Refresh):
		return m, m.runResync()
	case key.Matches(msg, k.Complete):
		if t, ok := m.current(); ok {
			done := !t.IsCompleted
			return m, m.update(t.ID, model.TaskPatch{IsCompleted: &done})
		}
	case key.Matches(msg, k.Status):
		if t, ok := m.current(); ok {
			next := statusutil.Next(t.Status)
			return m, m.update(t.ID, model.TaskPatch{Status: &next})
		}
	case key.Matches(msg, k.Delete):
		if t, ok := m.current(); ok {
			if m.ctrl.IsDeleting(t.ID) {
				return m, nil
			}
			ctx, ctrl, id := m.ctx, m.ctrl, t.ID
			return m, func() tea.Msg {
				ctrl.DeleteTask(ctx, id)
				return opDoneMsg{kind: mutate.KindDelete}
			}
		}
	case key.Matches(msg, k.Pomodoro):
		if t, ok := m.current(); ok && m.pomo.toggle(t) {
			return m, m.pomodoroTick()
		}
	case key.Matches(msg, k.PomodoroStop):
		m.pomo.stop()
	case key.Matches(msg, k.BulkDelete):
		return m, m.bulk(mutate.KindBulkDelete, m.ctrl.BulkDeleteSelected)
	case key.Matches(msg, k.BulkComplete):
		return m, m.bulk(mutate.KindBulkUpdate, m.ctrl.BulkCompleteSelected)
	}
	return m, nil
}

func (m *appModel) update(id string, patch model.TaskPatch) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ctrl.UpdateTask(ctx, id, patch)
		return opDoneMsg{kind: mutate.KindUpdate}
	}
}

func (m *appModel) bulk(kind mutate.Kind, run func(context.Context) error) tea.Cmd {
	if m.ctrl.Selection().Count() == 0 {
		m.flash("Nothing selected", true)
		return nil
	}
	if m.ctrl.IsBulkOperation() {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		// The controller reports the outcome through the notifier.
		_ = run(ctx)
		return opDoneMsg{kind: kind}
	}
}

func (m *appModel) View() string {
	w := m.width
	if w <= 0 {
		w = 100
	}
	var b strings.Builder
	b.WriteString(m.headerLine(w))
	b.WriteString("\n")
	b.WriteString(m.tabsLine(w))
	b.WriteString("\n")
	if m.searching || m.state.Query() != "" {
		b.WriteString(truncate(m.search.View(), w))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	listW := w
	detailW := 0
	if w >= 90 {
		listW = w * 55 / 100
		detailW = w - listW - 2
	}
	bodyH := m.height - 7
	if bodyH < 5 {
		bodyH = 20
	}
	list := m.listView(listW, bodyH)
	if detailW > 0 {
		detail := lipgloss.NewStyle().Width(detailW).PaddingLeft(2).Render(m.detailView(detailW - 2))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(listW).Render(list), detail))
	} else {
		b.WriteString(list)
	}
	b.WriteString("\n\n")
	b.WriteString(m.statusLine(w))
	return b.String()
}

func (m *appModel) headerLine(w int) string {
	left := styleHeader().Render(m.title)
	if busy := busyText(m.ctrl.Operations()); busy != "" {
		left += "  " + m.spin.View() + " " + styleMuted().Render(busy)
	}
	if p := m.pomo.status(); p != "" {
		left += "  " + styleMuted().Render(p)
	}
	right := ""
	if n := m.ctrl.Selection().Count(); n > 0 {
		right = fmt.Sprintf("%d selected", n)
	}
	if cat := m.state.CategoryID(); cat != "" {
		name := cat
		if c, ok := m.ctrl.Category(cat); ok {
			name = c.Name
		}
		if right != "" {
			right += " · "
		}
		right += "category: " + name
	}
	return truncate(spread(left, styleMuted().Render(right), w), w)
}

var busyLabels = map[mutate.Kind]string{
	mutate.KindCreate:     "creating",
	mutate.KindUpdate:     "saving",
	mutate.KindSubtask:    "saving",
	mutate.KindDelete:     "deleting",
	mutate.KindBulkDelete: "bulk delete",
	mutate.KindBulkUpdate: "bulk update",
}

// busyText summarizes in-flight operations, oldest kind first, e.g.
// "saving 2, deleting".
func busyText(ops []mutate.Operation) string {
	var order []string
	counts := map[string]int{}
	for _, o := range ops {
		label, ok := busyLabels[o.Kind]
		if !ok {
			label = "working"
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}
	parts := make([]string, 0, len(order))
	for _, label := range order {
		if n := counts[label]; n > 1 {
			label = fmt.Sprintf("%s %d", label, n)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

func (m *appModel) tabsLine(w int) string {
	parts := make([]string, 0, len(statusTabs))
	for _, f := range statusTabs {
		label := fmt.Sprintf("%s %d", statusutil.Label(f), m.result.Stats.Count(f))
		parts = append(parts, styleTab(m.state.Status() == f).Render(label))
	}
	return truncate(strings.Join(parts, " "), w)
}

func (m *appModel) listView(w, h int) string {
	if len(m.rows) == 0 {
		if m.ctrl.Store().Len() == 0 {
			return styleMuted().Render("No tasks yet.")
		}
		return styleMuted().Render("No tasks match the current filter.")
	}
	lines := make([]string, 0, len(m.rows))
	cur := m.cursorIndex()
	for i, r := range m.rows {
		if r.task == nil {
			lines = append(lines, styleHeader().Render(truncate(r.header, w)))
			continue
		}
		lines = append(lines, m.taskLine(*r.task, w, i == cur))
	}
	return strings.Join(window(lines, cur, h), "\n")
}

func (m *appModel) taskLine(t model.Task, w int, isCursor bool) string {
	mark := " "
	if m.ctrl.Selection().IsSelected(t.ID) {
		mark = "•"
	}
	check := "[ ]"
	if t.IsCompleted {
		check = "[x]"
	}
	title := t.Title
	if n := len(t.Subtasks); n > 0 {
		done := 0
		for _, s := range t.Subtasks {
			if s.IsCompleted {
				done++
			}
		}
		title = fmt.Sprintf("%s [%d/%d]", title, done, n)
	}
	if m.ctrl.IsDeleting(t.ID) {
		title += " (deleting…)"
	}
	line := fmt.Sprintf("%s %s %s", mark, check, title)
	suffix := ""
	if t.DueDate != "" {
		suffix = " " + t.DueDate
	}
	prio := string(t.Priority)

	if isCursor {
		text := pad(truncate(line+suffix+"  "+prio, w), w)
		return styleCursor().Render(text)
	}
	line = truncate(line, max(1, w-xansi.StringWidth(suffix)-len(prio)-2))
	return line + styleMuted().Render(suffix) + "  " + stylePriority(prio).Render(prio)
}

func (m *appModel) detailView(w int) string {
	t, ok := m.current()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleHeader().Render(truncate(t.Title, w)))
	b.WriteString("\n")

	meta := []string{statusutil.Label(string(t.Status)), string(t.Priority)}
	if t.DueDate != "" {
		meta = append(meta, "due "+t.DueDate)
	}
	if t.CategoryID != "" {
		name := t.CategoryID
		if c, ok := m.ctrl.Category(t.CategoryID); ok {
			name = c.Name
		}
		meta = append(meta, name)
	}
	if t.PomodoroCompleted != nil || t.PomodoroEstimate != nil {
		meta = append(meta, pomodoroCount(t))
	}
	b.WriteString(styleMuted().Render(truncate(strings.Join(meta, " · "), w)))
	b.WriteString("\n")

	if desc := renderMarkdown(t.Description, w); desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	if len(t.Subtasks) > 0 {
		b.WriteString("\n")
		b.WriteString(styleHeader().Render("Subtasks"))
		b.WriteString("\n")
		for _, s := range t.Subtasks {
			check := "[ ]"
			if s.IsCompleted {
				check = "[x]"
			}
			b.WriteString(truncate(check+" "+s.Title, w))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *appModel) statusLine(w int) string {
	if m.note.Text != "" && time.Since(m.note.At) < noteTTL {
		return styleNote(m.note.Err).Render(truncate(m.note.Text, w))
	}
	m.help.Width = w
	return m.help.View(m.keys)
}

// window returns at most h lines around the cursor.
func window(lines []string, cursor, h int) []string {
	if h <= 0 || len(lines) <= h {
		return lines
	}
	start := 0
	if cursor >= h {
		start = cursor - h + 1
	}
	end := min(start+h, len(lines))
	return lines[start:end]
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return xansi.Truncate(s, w, "…")
}

func pad(s string, w int) string {
	if n := xansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func spread(left, right string, w int) string {
	gap := w - xansi.StringWidth(left) - xansi.StringWidth(right)
	if gap < 1 {
		return left + " " + right
	}
	return left + strings.Repeat(" ", gap) + right
}
