package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/store"
	"github.com/joescharf/todo/internal/todo"
)

type recorder struct {
	mu   sync.Mutex
	msgs []models.Notification
}

func (r *recorder) Notify(message string, severity models.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, models.Notification{Message: message, Severity: severity})
}

func (r *recorder) last() models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return models.Notification{}
	}
	return r.msgs[len(r.msgs)-1]
}

// setup returns a dashboard over a repository holding n generated items.
func setup(t *testing.T, n int, opts ...Option) (*Dashboard, *todo.Repository, *recorder) {
	t.Helper()
	ctx := context.Background()
	repo := todo.NewRepository(store.NewMemoryStore())
	for _, it := range repo.All(ctx) {
		repo.Delete(ctx, it.ID)
	}
	for i := range n {
		repo.Add(ctx, models.TodoItem{Title: fmt.Sprintf("task %02d", i)})
	}
	rec := &recorder{}
	d := New(repo, rec, opts...)
	t.Cleanup(d.Close)
	return d, repo, rec
}

func TestDashboard_FilterChangesResetPage(t *testing.T) {
	d, _, _ := setup(t, 25)
	ctx := context.Background()

	p := d.NextPage(ctx)
	require.Equal(t, 2, p.Page)
	assert.Equal(t, 2, d.SetSort(ctx, SortTitle).Page, "sort keeps the page")

	assert.Equal(t, 1, d.SetSearch(ctx, "task").Page)

	d.NextPage(ctx)
	done := models.StatusDone
	assert.Equal(t, 1, d.SetStatusFilter(ctx, &done).Page)
	d.SetStatusFilter(ctx, nil)

	d.NextPage(ctx)
	high := models.PriorityHigh
	assert.Equal(t, 1, d.SetPriorityFilter(ctx, &high).Page)
}

func TestDashboard_PagingBounded(t *testing.T) {
	d, _, _ := setup(t, 25)
	ctx := context.Background()

	assert.Equal(t, 1, d.PrevPage(ctx).Page)
	d.Refresh(ctx)
	d.NextPage(ctx)
	d.NextPage(ctx)
	p := d.NextPage(ctx)
	assert.Equal(t, 3, p.Page)
	assert.Len(t, p.Items, 5)
	assert.Equal(t, 2, d.PrevPage(ctx).Page)
}

func TestDashboard_PageClampsAfterDeletes(t *testing.T) {
	d, repo, _ := setup(t, 11)
	ctx := context.Background()

	require.Equal(t, 2, d.NextPage(ctx).Page)
	last := repo.All(ctx)[10]
	repo.Delete(ctx, last.ID)

	p := d.Refresh(ctx)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, d.Query().Page)
}

func TestDashboard_ClearFilters(t *testing.T) {
	d, _, _ := setup(t, 15)
	ctx := context.Background()
	done := models.StatusDone
	d.SetSearch(ctx, "x")
	d.SetStatusFilter(ctx, &done)
	d.SetSort(ctx, SortDue)

	p := d.ClearFilters(ctx)
	assert.Equal(t, Query{Sort: SortOrder, Page: 1}, d.Query())
	assert.Equal(t, 15, p.TotalItems)
}

func TestDashboard_Create(t *testing.T) {
	d, repo, rec := setup(t, 0)
	ctx := context.Background()

	_, err := d.Create(ctx, Draft{Title: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgTitleRequired, verr.Message)
	assert.Empty(t, repo.All(ctx))

	draft := NewDraft(time.Now())
	draft.Title = "  Buy milk  "
	draft.Description = " 2 litres "
	item, err := d.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", item.Title)
	assert.Equal(t, "2 litres", item.Description)
	assert.Equal(t, models.StatusTodo, item.Status)
	assert.Equal(t, models.PriorityMedium, item.Priority)
	require.NotNil(t, item.DueDate)
	assert.Equal(t, "Task created successfully!", rec.last().Message)
	assert.Equal(t, models.SeveritySuccess, rec.last().Severity)
}

func TestDashboard_Edit(t *testing.T) {
	d, repo, rec := setup(t, 1)
	ctx := context.Background()
	orig := repo.All(ctx)[0]

	_, err := d.Edit(ctx, orig.ID, Draft{Title: ""})
	assert.Error(t, err)

	draft := DraftOf(orig)
	draft.Title = "renamed "
	draft.Priority = models.PriorityHigh
	draft.DueDate = nil
	got, err := d.Edit(ctx, orig.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, orig.CreatedAt, got.CreatedAt)
	assert.Equal(t, "Task updated!", rec.last().Message)

	_, err = d.Edit(ctx, "ghost", draft)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDashboard_DeleteAndUndo(t *testing.T) {
	d, repo, rec := setup(t, 3, WithUndoWindow(time.Hour))
	ctx := context.Background()
	victim := repo.All(ctx)[1]
	victim.Description = "details"
	victim.Priority = models.PriorityHigh
	victim.DueDate = models.DueOn(time.Now())
	require.True(t, repo.Update(ctx, victim))
	victim, _ = repo.Get(ctx, victim.ID)

	require.True(t, d.Delete(ctx, victim.ID))
	assert.Len(t, repo.All(ctx), 2)
	assert.Equal(t, models.Notification{Message: `Task "task 01" deleted`, Severity: models.SeverityWarning}, rec.last())
	title, ok := d.PendingUndo()
	assert.True(t, ok)
	assert.Equal(t, "task 01", title)

	require.True(t, d.Undo(ctx))
	assert.Equal(t, "Task restored!", rec.last().Message)

	restored, ok := repo.Get(ctx, victim.ID)
	require.True(t, ok)
	assert.Equal(t, victim.Title, restored.Title)
	assert.Equal(t, victim.Description, restored.Description)
	assert.Equal(t, victim.Status, restored.Status)
	assert.Equal(t, victim.Priority, restored.Priority)
	assert.Equal(t, victim.DueDate, restored.DueDate)
	assert.Equal(t, 3, restored.OrderIndex, "restored item goes to the end")

	assert.False(t, d.Undo(ctx), "undo is single shot")
	_, ok = d.PendingUndo()
	assert.False(t, ok)
}

func TestDashboard_UndoExpires(t *testing.T) {
	d, repo, _ := setup(t, 2, WithUndoWindow(20*time.Millisecond))
	ctx := context.Background()
	id := repo.All(ctx)[0].ID

	require.True(t, d.Delete(ctx, id))
	assert.Eventually(t, func() bool {
		_, ok := d.PendingUndo()
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.False(t, d.Undo(ctx))
	_, ok := repo.Get(ctx, id)
	assert.False(t, ok)
}

func TestDashboard_SecondDeleteSupersedes(t *testing.T) {
	d, repo, _ := setup(t, 3, WithUndoWindow(time.Hour))
	ctx := context.Background()
	items := repo.All(ctx)

	require.True(t, d.Delete(ctx, items[0].ID))
	require.True(t, d.Delete(ctx, items[1].ID))
	require.True(t, d.Undo(ctx))

	_, ok := repo.Get(ctx, items[1].ID)
	assert.True(t, ok, "latest delete is restored")
	_, ok = repo.Get(ctx, items[0].ID)
	assert.False(t, ok, "superseded delete stays deleted")
}

func TestDashboard_StaleTimerDoesNotClearNewerUndo(t *testing.T) {
	d, repo, _ := setup(t, 2, WithUndoWindow(200*time.Millisecond))
	ctx := context.Background()
	items := repo.All(ctx)

	require.True(t, d.Delete(ctx, items[0].ID))
	time.Sleep(150 * time.Millisecond)
	require.True(t, d.Delete(ctx, items[1].ID))
	time.Sleep(100 * time.Millisecond)

	// The first timer would have fired by now; the second is still open.
	assert.True(t, d.Undo(ctx))
}

func TestDashboard_DeleteUnknown(t *testing.T) {
	d, _, rec := setup(t, 1)
	assert.False(t, d.Delete(context.Background(), "ghost"))
	assert.Empty(t, rec.msgs)
	assert.False(t, d.Undo(context.Background()))
}

func TestDashboard_ToggleStatusCycles(t *testing.T) {
	d, repo, _ := setup(t, 1)
	ctx := context.Background()
	id := repo.All(ctx)[0].ID

	var seen []models.TodoStatus
	for range 3 {
		item, ok := d.ToggleStatus(ctx, id)
		require.True(t, ok)
		seen = append(seen, item.Status)
	}
	assert.Equal(t, []models.TodoStatus{models.StatusInProgress, models.StatusDone, models.StatusTodo}, seen)

	_, ok := d.ToggleStatus(ctx, "ghost")
	assert.False(t, ok)
}

func TestDashboard_Bulk(t *testing.T) {
	d, repo, rec := setup(t, 4)
	ctx := context.Background()
	items := repo.All(ctx)

	n := d.BulkSetPriority(ctx, []string{items[0].ID, items[1].ID, "ghost"}, models.PriorityHigh)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Updated 2 task(s) to High priority", rec.last().Message)
	got, _ := repo.Get(ctx, items[1].ID)
	assert.Equal(t, models.PriorityHigh, got.Priority)

	n = d.BulkDelete(ctx, []string{items[2].ID, items[3].ID})
	assert.Equal(t, 2, n)
	assert.Equal(t, models.Notification{Message: "Deleted 2 task(s)", Severity: models.SeverityWarning}, rec.last())
	assert.Len(t, repo.All(ctx), 2)
	assert.False(t, d.Undo(ctx))
}

func TestDashboard_MoveToTopAndBottom(t *testing.T) {
	d, repo, _ := setup(t, 4)
	ctx := context.Background()
	items := repo.All(ctx)

	require.True(t, d.MoveToTop(ctx, items[2].ID))
	assert.Equal(t, items[2].ID, repo.All(ctx)[0].ID)

	require.True(t, d.MoveToBottom(ctx, items[2].ID))
	all := repo.All(ctx)
	assert.Equal(t, items[2].ID, all[len(all)-1].ID)
	for i, it := range all {
		assert.Equal(t, i, it.OrderIndex)
	}
}
