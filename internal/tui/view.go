package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/joescharf/todo/internal/models"
)

var statusMarks = map[models.TodoStatus]string{
	models.StatusTodo:       "[ ]",
	models.StatusInProgress: "[~]",
	models.StatusDone:       "[x]",
}

func itemRow(it models.TodoItem, now time.Time) []string {
	due := ""
	if it.DueDate != nil {
		due = it.DueDate.Format(time.DateOnly)
		if it.IsOverdue(now) {
			due += " !"
		}
	}
	return []string{statusMarks[it.Status], it.Title, it.Priority.Label(), it.Status.Label(), due}
}

// View renders the UI for the current mode.
func (m Model) View() string {
	var sb strings.Builder

	switch m.mode {
	case NormalMode:
		sb.WriteString(m.styles.titleBar(m.styles.Accent).Render(" Todo "))
		sb.WriteString("\n\n")
		if m.page.Empty {
			sb.WriteString(m.styles.muted().Render("No tasks match the current filters."))
			sb.WriteString("\n")
		} else {
			sb.WriteString(m.table.View())
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.muted().Render(m.statusLine()))
		sb.WriteString("\n")
		if m.undoHint != "" {
			sb.WriteString(m.styles.severity(models.SeverityInfo).
				Render(fmt.Sprintf("Deleted \"%s\". Press %s to undo.", m.undoHint, m.keyMap.Undo.Help().Key)))
			sb.WriteString("\n")
		}
		if m.notice != nil {
			sb.WriteString(m.styles.severity(m.notice.Severity).Render(m.notice.Message))
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.muted().Render("? commands • q quit"))

	case AddMode, EditMode:
		title := " Add New Task "
		if m.mode == EditMode {
			title = " Edit Task "
		}
		sb.WriteString(m.styles.titleBar(m.styles.Accent).Render(title))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case DeleteConfirmMode:
		sb.WriteString(m.styles.titleBar(m.styles.Error).Render(" Delete Task "))
		sb.WriteString("\n\n")
		if m.editingItem != nil {
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", m.editingItem.Title))
			if m.editingItem.Description != "" {
				sb.WriteString(fmt.Sprintf("Description: %s\n", m.editingItem.Description))
			}
			sb.WriteString("\n")
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
		}

	case SearchMode:
		sb.WriteString(m.styles.titleBar(m.styles.Accent).Render(" Search Tasks "))
		sb.WriteString("\n\n")
		sb.WriteString(m.searchInput.View())
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.muted().Render("enter apply • esc clear"))

	case HelpViewMode:
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")
		keyStyle := lipgloss.NewStyle().Bold(true).Foreground(m.styles.Accent).Width(10)
		for _, b := range m.keyMap.Bindings() {
			h := b.Help()
			sb.WriteString(keyStyle.Render(h.Key))
			sb.WriteString(h.Desc)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(m.styles.muted().Render("↑/k ↓/j move • esc back"))

	case StatsViewMode:
		sb.WriteString(m.styles.titleBar(m.styles.Accent).Render(" Statistics "))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderStats())
		sb.WriteString("\n")
		sb.WriteString(m.styles.muted().Render("esc back"))
	}

	return sb.String()
}

func (m Model) statusLine() string {
	q := m.app.Dashboard.Query()
	parts := []string{
		fmt.Sprintf("Page %d/%d", m.page.Page, max(m.page.TotalPages, 1)),
		fmt.Sprintf("%d task(s)", m.page.TotalItems),
		"sort: " + string(q.Sort),
	}
	if q.Status != nil {
		parts = append(parts, "status: "+q.Status.Label())
	}
	if q.Priority != nil {
		parts = append(parts, "priority: "+q.Priority.Label())
	}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", q.Search))
	}
	return strings.Join(parts, " | ")
}

func (m Model) renderForm() string {
	labels := [fieldCount]string{
		fieldTitle:       "Title",
		fieldDescription: "Description",
		fieldPriority:    "Priority",
		fieldDue:         "Due",
	}
	labelStyle := lipgloss.NewStyle().Width(13)
	active := labelStyle.Foreground(m.styles.Accent).Bold(true)

	var sb strings.Builder
	for i, in := range m.inputs {
		style := labelStyle
		if i == m.activeInput {
			style = active
		}
		sb.WriteString(style.Render(labels[i]))
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	if m.formErr != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.severity(models.SeverityError).Render(m.formErr))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.muted().Render("tab next • enter on Due saves • esc cancel"))
	return sb.String()
}

func (m Model) renderStats() string {
	s := m.stats
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total:        %d\n", s.TotalTasks)
	fmt.Fprintf(&sb, "Todo:         %d\n", s.TodoTasks)
	fmt.Fprintf(&sb, "In progress:  %d\n", s.InProgressTasks)
	fmt.Fprintf(&sb, "Done:         %d\n", s.CompletedTasks)
	fmt.Fprintf(&sb, "Overdue:      %d\n", s.OverdueTasks)
	fmt.Fprintf(&sb, "Completion:   %.1f%%\n", s.CompletionRate)
	fmt.Fprintf(&sb, "Avg. hours:   %.1f\n", s.AverageCompletionTimeHours)
	fmt.Fprintf(&sb, "Priority:     %d high, %d medium, %d low\n", s.HighPriorityTasks, s.MediumPriorityTasks, s.LowPriorityTasks)
	sb.WriteString("\nActivity in the last 7 days\n")

	peak := 0
	for _, d := range s.WeeklyActivity {
		peak = max(peak, d.Count)
	}
	bar := lipgloss.NewStyle().Foreground(m.styles.Success)
	for _, d := range s.WeeklyActivity {
		width := 0
		if peak > 0 {
			width = d.Count * 20 / peak
		}
		fmt.Fprintf(&sb, "%-4s %s %d\n", d.Day, bar.Render(strings.Repeat("█", width)), d.Count)
	}
	return sb.String()
}
