// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joescharf/todo/internal/app"
	"github.com/joescharf/todo/internal/dashboard"
	"github.com/joescharf/todo/internal/models"
)

// InputMode is the current input mode.
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	SearchMode
	HelpViewMode
	StatsViewMode
)

// Form field indexes.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDue
	fieldCount
)

// tickInterval drives expiry of the undo hint and notification line.
const tickInterval = time.Second

// noticeTTL is how long a notification stays on screen.
const noticeTTL = 4 * time.Second

type tickMsg time.Time

// Model is the dashboard state of one terminal session.
type Model struct {
	ctx    context.Context
	app    *app.App
	keyMap KeyMap
	styles Styles
	now    func() time.Time

	table         table.Model
	page          dashboard.Page
	width, height int

	mode        InputMode
	inputs      []textinput.Model
	activeInput int
	searchInput textinput.Model
	formErr     string
	editingItem *models.TodoItem

	notice   *models.Notification
	undoHint string
	stats    models.Statistics
}

// NewModel builds the model over a wired app and loads the first page.
func NewModel(ctx context.Context, a *app.App) Model {
	styles := StylesFor(a.Theme.Get(ctx))

	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Title", Width: 36},
		{Title: "Priority", Width: 8},
		{Title: "Status", Width: 11},
		{Title: "Due", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(dashboard.PageSize+1),
		table.WithKeyMap(tableKeyMap()),
	)
	t.SetStyles(styles.table())

	placeholders := [fieldCount]string{
		fieldTitle:       "Title",
		fieldDescription: "Description",
		fieldPriority:    "Priority (low, medium, high)",
		fieldDue:         "Due Date (YYYY-MM-DD, optional)",
	}
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Width = 40
		inputs[i] = in
	}

	search := textinput.New()
	search.Placeholder = "Search title and description"
	search.Width = 40

	m := Model{
		ctx:         ctx,
		app:         a,
		keyMap:      DefaultKeyMap(),
		styles:      styles,
		now:         time.Now,
		table:       t,
		mode:        NormalMode,
		inputs:      inputs,
		searchInput: search,
	}
	m.setPage(a.Dashboard.Refresh(ctx))
	return m
}

// Init starts the clock that expires notifications.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Run starts the program in the alternate screen and blocks until it exits.
func Run(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(NewModel(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// setPage replaces the visible rows and keeps the cursor in range.
func (m *Model) setPage(p dashboard.Page) {
	m.page = p
	now := m.now()
	rows := make([]table.Row, 0, len(p.Items))
	for _, it := range p.Items {
		rows = append(rows, itemRow(it, now))
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) refresh() {
	m.setPage(m.app.Dashboard.Refresh(m.ctx))
}

// selected returns the item under the cursor.
func (m Model) selected() (models.TodoItem, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.page.Items) {
		return models.TodoItem{}, false
	}
	return m.page.Items[c], true
}

// collectNotices moves the newest queued notification to the status line
// and updates the undo hint.
func (m *Model) collectNotices() {
	for _, n := range m.app.Notifications.Drain() {
		m.notice = &n
	}
	if m.notice != nil && m.now().Sub(m.notice.At) > noticeTTL {
		m.notice = nil
	}
	m.undoHint = ""
	if title, ok := m.app.Dashboard.PendingUndo(); ok {
		m.undoHint = title
	}
}

func (m *Model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.activeInput = fieldTitle
	m.inputs[fieldTitle].Focus()
	m.formErr = ""
}

func (m *Model) loadDraft(d dashboard.Draft) {
	m.resetInputs()
	m.inputs[fieldTitle].SetValue(d.Title)
	m.inputs[fieldDescription].SetValue(d.Description)
	m.inputs[fieldPriority].SetValue(string(d.Priority))
	if d.DueDate != nil {
		m.inputs[fieldDue].SetValue(d.DueDate.Format(time.DateOnly))
	}
}

func (m *Model) focusInput(i int) {
	m.inputs[m.activeInput].Blur()
	m.activeInput = (i + fieldCount) % fieldCount
	m.inputs[m.activeInput].Focus()
}

// Mode reports the current input mode.
func (m Model) Mode() InputMode { return m.mode }

// Page returns the page on screen.
func (m Model) Page() dashboard.Page { return m.page }
