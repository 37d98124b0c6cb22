// Package dashboard holds the per-session view state over the todo
// repository: filters, paging, editing and the delete/undo window.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/notify"
)

// DefaultUndoWindow is how long a deleted item can be restored.
const DefaultUndoWindow = 5 * time.Second

// MsgTitleRequired is returned when a draft has a blank title.
const MsgTitleRequired = "Title is required."

// ErrNotFound is returned by Edit for an unknown id.
var ErrNotFound = errors.New("todo not found")

// ValidationError carries a user-facing message for a rejected draft.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Repository is the subset of todo.Repository the dashboard drives.
type Repository interface {
	All(ctx context.Context) []models.TodoItem
	Get(ctx context.Context, id string) (models.TodoItem, bool)
	Add(ctx context.Context, item models.TodoItem) models.TodoItem
	Update(ctx context.Context, item models.TodoItem) bool
	Delete(ctx context.Context, id string) bool
	Reorder(ctx context.Context, id string, newIndex int) bool
}

// Draft is the editable part of an item.
type Draft struct {
	Title       string
	Description string
	Status      models.TodoStatus
	Priority    models.TodoPriority
	DueDate     *time.Time
}

// NewDraft returns the defaults for a new task: todo, medium, due in a week.
func NewDraft(now time.Time) Draft {
	return Draft{
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
		DueDate:  models.DueOn(now.AddDate(0, 0, 7)),
	}
}

// DraftOf returns a draft pre-filled from item.
func DraftOf(item models.TodoItem) Draft {
	item = item.Clone()
	return Draft{
		Title:       item.Title,
		Description: item.Description,
		Status:      item.Status,
		Priority:    item.Priority,
		DueDate:     item.DueDate,
	}
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Message: MsgTitleRequired}
	}
	return nil
}

func (d Draft) applyTo(item *models.TodoItem) {
	item.Title = strings.TrimSpace(d.Title)
	item.Description = strings.TrimSpace(d.Description)
	if d.Status != "" {
		item.Status = d.Status
	}
	if d.Priority != "" {
		item.Priority = d.Priority
	}
	item.DueDate = nil
	if d.DueDate != nil {
		item.DueDate = models.DueOn(*d.DueDate)
	}
}

// Dashboard is the view state of one session.
type Dashboard struct {
	repo   Repository
	sink   notify.Sink
	log    zerolog.Logger
	window time.Duration

	mu    sync.Mutex
	query Query

	deleted *models.TodoItem
	undoGen uint64
	timer   *time.Timer
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithUndoWindow overrides DefaultUndoWindow.
func WithUndoWindow(d time.Duration) Option {
	return func(db *Dashboard) {
		if d > 0 {
			db.window = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(db *Dashboard) { db.log = l }
}

// New returns a dashboard on page 1 with no filters.
func New(repo Repository, sink notify.Sink, opts ...Option) *Dashboard {
	if sink == nil {
		sink = notify.Discard
	}
	d := &Dashboard{
		repo:   repo,
		sink:   sink,
		log:    zerolog.Nop(),
		window: DefaultUndoWindow,
		query:  Query{Sort: SortOrder, Page: 1},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Query returns the current view query.
func (d *Dashboard) Query() Query {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.query
}

// Refresh re-reads the repository and returns the current page.
func (d *Dashboard) Refresh(ctx context.Context) Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refreshLocked(ctx)
}

func (d *Dashboard) refreshLocked(ctx context.Context) Page {
	p := Apply(d.repo.All(ctx), d.query)
	d.query.Page = p.Page
	return p
}

// SetQuery replaces the whole query, as a stateless caller would.
func (d *Dashboard) SetQuery(ctx context.Context, q Query) Page {
	return d.mutate(ctx, func(cur *Query) { *cur = q })
}

// SetSearch changes the search text and returns to page 1.
func (d *Dashboard) SetSearch(ctx context.Context, s string) Page {
	return d.mutate(ctx, func(q *Query) { q.Search = s; q.Page = 1 })
}

// SetStatusFilter changes the status filter (nil for any) and returns to page 1.
func (d *Dashboard) SetStatusFilter(ctx context.Context, s *models.TodoStatus) Page {
	return d.mutate(ctx, func(q *Query) { q.Status = s; q.Page = 1 })
}

// SetPriorityFilter changes the priority filter (nil for any) and returns to page 1.
func (d *Dashboard) SetPriorityFilter(ctx context.Context, p *models.TodoPriority) Page {
	return d.mutate(ctx, func(q *Query) { q.Priority = p; q.Page = 1 })
}

// SetSort changes the ordering and keeps the current page.
func (d *Dashboard) SetSort(ctx context.Context, s SortOption) Page {
	return d.mutate(ctx, func(q *Query) { q.Sort = s })
}

// NextPage advances one page when there is one.
func (d *Dashboard) NextPage(ctx context.Context) Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.refreshLocked(ctx)
	if p.Page < p.TotalPages {
		d.query.Page++
		p = d.refreshLocked(ctx)
	}
	return p
}

// PrevPage goes back one page when there is one.
func (d *Dashboard) PrevPage(ctx context.Context) Page {
	return d.mutate(ctx, func(q *Query) {
		if q.Page > 1 {
			q.Page--
		}
	})
}

// ClearFilters resets search, filters, sort and page.
func (d *Dashboard) ClearFilters(ctx context.Context) Page {
	return d.mutate(ctx, func(q *Query) { *q = Query{Sort: SortOrder, Page: 1} })
}

func (d *Dashboard) mutate(ctx context.Context, f func(*Query)) Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	f(&d.query)
	return d.refreshLocked(ctx)
}

// Create validates draft and adds it as a new item.
func (d *Dashboard) Create(ctx context.Context, draft Draft) (models.TodoItem, error) {
	if err := draft.validate(); err != nil {
		return models.TodoItem{}, err
	}
	var item models.TodoItem
	draft.applyTo(&item)
	added := d.repo.Add(ctx, item)
	d.sink.Notify("Task created successfully!", models.SeveritySuccess)
	return added, nil
}

// Edit validates draft and applies it to the item with id.
func (d *Dashboard) Edit(ctx context.Context, id string, draft Draft) (models.TodoItem, error) {
	if err := draft.validate(); err != nil {
		return models.TodoItem{}, err
	}
	item, ok := d.repo.Get(ctx, id)
	if !ok {
		return models.TodoItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	draft.applyTo(&item)
	if !d.repo.Update(ctx, item) {
		return models.TodoItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated, _ := d.repo.Get(ctx, id)
	d.sink.Notify("Task updated!", models.SeveritySuccess)
	return updated, nil
}

// Delete removes the item and arms the undo window for it, replacing any
// earlier pending undo.
func (d *Dashboard) Delete(ctx context.Context, id string) bool {
	item, ok := d.repo.Get(ctx, id)
	if !ok || !d.repo.Delete(ctx, id) {
		return false
	}

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.undoGen++
	gen := d.undoGen
	clone := item.Clone()
	d.deleted = &clone
	d.timer = time.AfterFunc(d.window, func() { d.expire(gen) })
	d.mu.Unlock()

	d.sink.Notify(fmt.Sprintf("Task \"%s\" deleted", item.Title), models.SeverityWarning)
	d.log.Debug().Str("id", id).Dur("window", d.window).Msg("undo armed")
	return true
}

func (d *Dashboard) expire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.undoGen == gen {
		d.deleted = nil
		d.timer = nil
	}
}

// PendingUndo returns the title of the item that Undo would restore.
func (d *Dashboard) PendingUndo() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleted == nil {
		return "", false
	}
	return d.deleted.Title, true
}

// Undo restores the last deleted item while its window is open. The item
// comes back with its id and content but a new creation time and position.
func (d *Dashboard) Undo(ctx context.Context) bool {
	d.mu.Lock()
	item := d.deleted
	d.deleted = nil
	d.undoGen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if item == nil {
		return false
	}
	d.repo.Add(ctx, *item)
	d.sink.Notify("Task restored!", models.SeveritySuccess)
	return true
}

// ToggleStatus advances the item's status todo -> in progress -> done -> todo.
func (d *Dashboard) ToggleStatus(ctx context.Context, id string) (models.TodoItem, bool) {
	item, ok := d.repo.Get(ctx, id)
	if !ok {
		return models.TodoItem{}, false
	}
	item.Status = item.Status.Next()
	if !d.repo.Update(ctx, item) {
		return models.TodoItem{}, false
	}
	updated, _ := d.repo.Get(ctx, id)
	return updated, true
}

// BulkDelete deletes every listed item and reports how many were removed.
// Bulk deletes are not undoable.
func (d *Dashboard) BulkDelete(ctx context.Context, ids []string) int {
	n := 0
	for _, id := range ids {
		if d.repo.Delete(ctx, id) {
			n++
		}
	}
	d.sink.Notify(fmt.Sprintf("Deleted %d task(s)", n), models.SeverityWarning)
	return n
}

// BulkSetPriority sets the priority of every listed item.
func (d *Dashboard) BulkSetPriority(ctx context.Context, ids []string, p models.TodoPriority) int {
	n := 0
	for _, id := range ids {
		item, ok := d.repo.Get(ctx, id)
		if !ok {
			continue
		}
		item.Priority = p
		if d.repo.Update(ctx, item) {
			n++
		}
	}
	d.sink.Notify(fmt.Sprintf("Updated %d task(s) to %s priority", n, p.Label()), models.SeveritySuccess)
	return n
}

// MoveToTop moves the item to the first manual position.
func (d *Dashboard) MoveToTop(ctx context.Context, id string) bool {
	return d.repo.Reorder(ctx, id, 0)
}

// MoveToBottom moves the item to the last manual position.
func (d *Dashboard) MoveToBottom(ctx context.Context, id string) bool {
	return d.repo.Reorder(ctx, id, len(d.repo.All(ctx))-1)
}

// Close stops a pending undo timer.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
