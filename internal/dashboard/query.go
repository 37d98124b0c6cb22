package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joescharf/todo/internal/models"
)

// PageSize is the number of items shown per page.
const PageSize = 10

// SortOption selects the ordering of a page.
type SortOption string

const (
	SortOrder    SortOption = "order"
	SortPriority SortOption = "priority"
	SortDue      SortOption = "due"
	SortStatus   SortOption = "status"
	SortTitle    SortOption = "title"
)

// SortOptions lists every sort in display order.
var SortOptions = []SortOption{SortOrder, SortPriority, SortDue, SortStatus, SortTitle}

// ParseSort accepts a sort name. An empty string selects SortOrder.
func ParseSort(s string) (SortOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "order", "manual", "created":
		return SortOrder, nil
	case "priority":
		return SortPriority, nil
	case "due", "due_date", "duedate":
		return SortDue, nil
	case "status":
		return SortStatus, nil
	case "title":
		return SortTitle, nil
	}
	return "", fmt.Errorf("invalid sort %q (use: order, priority, due, status, title)", s)
}

// Next cycles to the following sort option.
func (s SortOption) Next() SortOption {
	for i, o := range SortOptions {
		if o == s {
			return SortOptions[(i+1)%len(SortOptions)]
		}
	}
	return SortOrder
}

// Query describes the filters, sort and page requested by a view.
type Query struct {
	Search   string
	Status   *models.TodoStatus
	Priority *models.TodoPriority
	Sort     SortOption
	Page     int
}

// Page is one window of a filtered, sorted item list.
type Page struct {
	Items      []models.TodoItem `json:"items"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	TotalItems int               `json:"totalItems"`
	// Empty reports that the unfiltered collection has no items at all.
	Empty bool `json:"empty"`
}

// Apply filters, sorts and pages items. items is not modified.
func Apply(items []models.TodoItem, q Query) Page {
	filtered := make([]models.TodoItem, 0, len(items))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, it := range items {
		if search != "" &&
			!strings.Contains(strings.ToLower(it.Title), search) &&
			!strings.Contains(strings.ToLower(it.Description), search) {
			continue
		}
		if q.Status != nil && it.Status != *q.Status {
			continue
		}
		if q.Priority != nil && it.Priority != *q.Priority {
			continue
		}
		filtered = append(filtered, it)
	}

	sortItems(filtered, q.Sort)

	total := len(filtered)
	pages := max(1, (total+PageSize-1)/PageSize)
	page := min(max(q.Page, 1), pages)

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)
	window := make([]models.TodoItem, 0, end-start)
	for _, it := range filtered[start:end] {
		window = append(window, it.Clone())
	}

	return Page{
		Items:      window,
		Page:       page,
		TotalPages: pages,
		TotalItems: total,
		Empty:      len(items) == 0,
	}
}

func sortItems(items []models.TodoItem, by SortOption) {
	var less func(a, b models.TodoItem) bool
	switch by {
	case SortPriority:
		less = func(a, b models.TodoItem) bool { return a.Priority.Rank() > b.Priority.Rank() }
	case SortDue:
		less = func(a, b models.TodoItem) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			}
			return a.DueDate.Before(*b.DueDate)
		}
	case SortStatus:
		less = func(a, b models.TodoItem) bool { return a.Status.Rank() < b.Status.Rank() }
	case SortTitle:
		less = func(a, b models.TodoItem) bool {
			la, lb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if la != lb {
				return la < lb
			}
			return a.Title < b.Title
		}
	default:
		less = func(a, b models.TodoItem) bool { return a.OrderIndex < b.OrderIndex }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
