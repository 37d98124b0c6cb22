package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joescharf/todo/internal/dashboard"
	"github.com/joescharf/todo/internal/models"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		m.collectNotices()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			next, cmd, handled := m.updateNormal(msg)
			if handled {
				return next, cmd
			}
			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case AddMode, EditMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.editingItem = nil
				m.formErr = ""
				return m, nil
			case "tab", "down":
				m.focusInput(m.activeInput + 1)
				return m, nil
			case "shift+tab", "up":
				m.focusInput(m.activeInput - 1)
				return m, nil
			case "enter":
				if m.activeInput == fieldDue {
					m.submitForm()
				} else {
					m.focusInput(m.activeInput + 1)
				}
				return m, nil
			}
			m.inputs[m.activeInput], cmd = m.inputs[m.activeInput].Update(msg)
			cmds = append(cmds, cmd)

		case SearchMode:
			switch msg.String() {
			case "esc":
				m.mode = NormalMode
				m.searchInput.Blur()
				m.setPage(m.app.Dashboard.SetSearch(m.ctx, ""))
				return m, nil
			case "enter":
				m.mode = NormalMode
				m.searchInput.Blur()
				m.setPage(m.app.Dashboard.SetSearch(m.ctx, m.searchInput.Value()))
				return m, nil
			}
			m.searchInput, cmd = m.searchInput.Update(msg)
			cmds = append(cmds, cmd)

		case DeleteConfirmMode:
			switch msg.String() {
			case "y", "Y":
				if m.editingItem != nil {
					m.app.Dashboard.Delete(m.ctx, m.editingItem.ID)
					m.refresh()
					m.collectNotices()
				}
				m.mode = NormalMode
				m.editingItem = nil
			case "n", "N", "esc":
				m.mode = NormalMode
				m.editingItem = nil
			}

		case HelpViewMode, StatsViewMode:
			switch {
			case msg.String() == "esc",
				m.mode == HelpViewMode && key.Matches(msg, m.keyMap.Help),
				m.mode == StatsViewMode && key.Matches(msg, m.keyMap.Stats):
				m.mode = NormalMode
			case key.Matches(msg, m.keyMap.Quit):
				return m, tea.Quit
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// updateNormal applies a normal-mode key. handled is false for keys the
// table should see, such as cursor movement.
func (m Model) updateNormal(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	ctx := m.ctx
	d := m.app.Dashboard

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keyMap.Help):
		m.mode = HelpViewMode

	case key.Matches(msg, m.keyMap.Stats):
		m.stats = m.app.Stats.Statistics(ctx)
		m.mode = StatsViewMode

	case key.Matches(msg, m.keyMap.Add):
		m.mode = AddMode
		m.editingItem = nil
		m.loadDraft(dashboard.NewDraft(m.now()))

	case key.Matches(msg, m.keyMap.Edit):
		if it, ok := m.selected(); ok {
			m.mode = EditMode
			m.editingItem = &it
			m.loadDraft(dashboard.DraftOf(it))
		}

	case key.Matches(msg, m.keyMap.Delete):
		if it, ok := m.selected(); ok {
			m.mode = DeleteConfirmMode
			m.editingItem = &it
		}

	case key.Matches(msg, m.keyMap.Undo):
		if d.Undo(ctx) {
			m.refresh()
		}

	case key.Matches(msg, m.keyMap.ToggleStatus):
		if it, ok := m.selected(); ok {
			d.ToggleStatus(ctx, it.ID)
			m.refresh()
		}

	case key.Matches(msg, m.keyMap.Search):
		m.mode = SearchMode
		m.searchInput.SetValue(d.Query().Search)
		m.searchInput.Focus()
		return m, nil, true

	case key.Matches(msg, m.keyMap.StatusFilter):
		m.setPage(d.SetStatusFilter(ctx, nextStatus(d.Query().Status)))

	case key.Matches(msg, m.keyMap.PriorityFilter):
		m.setPage(d.SetPriorityFilter(ctx, nextPriority(d.Query().Priority)))

	case key.Matches(msg, m.keyMap.CycleSort):
		m.setPage(d.SetSort(ctx, d.Query().Sort.Next()))

	case key.Matches(msg, m.keyMap.ClearFilters):
		m.setPage(d.ClearFilters(ctx))

	case key.Matches(msg, m.keyMap.NextPage):
		m.setPage(d.NextPage(ctx))

	case key.Matches(msg, m.keyMap.PrevPage):
		m.setPage(d.PrevPage(ctx))

	case key.Matches(msg, m.keyMap.MoveTop):
		if it, ok := m.selected(); ok {
			d.MoveToTop(ctx, it.ID)
			m.refresh()
		}

	case key.Matches(msg, m.keyMap.MoveBottom):
		if it, ok := m.selected(); ok {
			d.MoveToBottom(ctx, it.ID)
			m.refresh()
		}

	case key.Matches(msg, m.keyMap.Theme):
		m.styles = StylesFor(m.app.Theme.Toggle(ctx))
		m.table.SetStyles(m.styles.table())
		m.setPage(m.page)

	default:
		return m, nil, false
	}

	m.collectNotices()
	return m, nil, true
}

// submitForm validates the inputs and creates or edits the item. On failure
// the form stays open with the message shown.
func (m *Model) submitForm() {
	draft := dashboard.Draft{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		Status:      models.StatusTodo,
		Priority:    models.PriorityMedium,
	}
	if m.editingItem != nil {
		draft.Status = m.editingItem.Status
	}
	if raw := strings.TrimSpace(m.inputs[fieldPriority].Value()); raw != "" {
		p, err := models.ParsePriority(raw)
		if err != nil {
			m.formErr = err.Error()
			return
		}
		draft.Priority = p
	}
	due, err := models.ParseDueDate(m.inputs[fieldDue].Value())
	if err != nil {
		m.formErr = err.Error()
		return
	}
	draft.DueDate = due

	if m.editingItem != nil {
		_, err = m.app.Dashboard.Edit(m.ctx, m.editingItem.ID, draft)
	} else {
		_, err = m.app.Dashboard.Create(m.ctx, draft)
	}
	if err != nil {
		var verr *dashboard.ValidationError
		if errors.As(err, &verr) {
			m.formErr = verr.Message
		} else {
			m.formErr = err.Error()
		}
		return
	}

	m.mode = NormalMode
	m.editingItem = nil
	m.formErr = ""
	m.refresh()
	m.collectNotices()
}

// nextStatus cycles any -> todo -> in progress -> done -> any.
func nextStatus(cur *models.TodoStatus) *models.TodoStatus {
	if cur == nil {
		s := models.Statuses[0]
		return &s
	}
	for i, s := range models.Statuses {
		if s == *cur && i+1 < len(models.Statuses) {
			n := models.Statuses[i+1]
			return &n
		}
	}
	return nil
}

// nextPriority cycles any -> low -> medium -> high -> any.
func nextPriority(cur *models.TodoPriority) *models.TodoPriority {
	if cur == nil {
		p := models.Priorities[0]
		return &p
	}
	for i, p := range models.Priorities {
		if p == *cur && i+1 < len(models.Priorities) {
			n := models.Priorities[i+1]
			return &n
		}
	}
	return nil
}
