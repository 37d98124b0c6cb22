// Package todo owns the authoritative, ordered list of todo items and keeps
// it mirrored into a key-value store under a single key.
package todo

import (
	"context"
	"math/rand"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/store"
)

// Repository is the single owner of the todo collection. Every public
// method loads the collection on first use and returns copies, never live
// references. Mutations rewrite the whole collection to the store.
type Repository struct {
	kv    store.Store
	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	items  []models.TodoItem
	loaded bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// WithIDGenerator overrides ULID generation.
func WithIDGenerator(f func() string) Option {
	return func(r *Repository) { r.newID = f }
}

// NewRepository returns an unloaded repository backed by kv.
func NewRepository(kv store.Store, opts ...Option) *Repository {
	r := &Repository{
		kv:    kv,
		log:   zerolog.Nop(),
		now:   time.Now,
		newID: newULID,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// newULID generates a new ULID string, monotonic within a millisecond.
func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Load reads the collection from the store once. A missing, empty or
// undecodable payload is replaced by the seed set, which is persisted.
func (r *Repository) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)
}

func (r *Repository) loadLocked(ctx context.Context) {
	if r.loaded {
		return
	}

	var items []models.TodoItem
	if raw, ok := r.kv.Get(ctx, store.KeyTodoItems); ok && raw != "" {
		decoded, err := Decode(raw)
		if err != nil {
			r.log.Warn().Err(err).Msg("stored todo items are corrupt, reseeding")
		} else {
			items = decoded
		}
	}

	if len(items) == 0 {
		items = Seed(r.now().UTC(), r.newID)
		r.items = items
		r.saveLocked(ctx)
		r.log.Info().Int("count", len(items)).Msg("seeded todo items")
	} else {
		r.items = items
		r.log.Debug().Int("count", len(items)).Msg("loaded todo items")
	}
	r.loaded = true
}

// All returns every item sorted by orderIndex.
func (r *Repository) All(ctx context.Context) []models.TodoItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)
	return r.sortedLocked(nil)
}

// Get returns the item with the given id.
func (r *Repository) Get(ctx context.Context, id string) (models.TodoItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)

	if i := r.indexLocked(id); i >= 0 {
		return r.items[i].Clone(), true
	}
	return models.TodoItem{}, false
}

// Add appends item after the current maximum orderIndex. The id is kept
// when it is set and unused; otherwise a new one is generated. Timestamps
// are always reset to now.
func (r *Repository) Add(ctx context.Context, item models.TodoItem) models.TodoItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)

	item = item.Clone()
	if item.ID == "" || r.indexLocked(item.ID) >= 0 {
		item.ID = r.newID()
	}
	item = normalize(item)

	now := r.now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	next := 0
	for i, it := range r.items {
		if i == 0 || it.OrderIndex >= next {
			next = it.OrderIndex + 1
		}
	}
	item.OrderIndex = next

	r.items = append(r.items, item)
	r.saveLocked(ctx)
	r.log.Debug().Str("id", item.ID).Int("order_index", item.OrderIndex).Msg("added todo")
	return item.Clone()
}

// Update overwrites the mutable fields of an existing item and refreshes
// UpdatedAt. Empty status and priority take the Add defaults. Unknown ids
// and unknown status or priority values are ignored and reported as false.
func (r *Repository) Update(ctx context.Context, item models.TodoItem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)

	i := r.indexLocked(item.ID)
	if i < 0 {
		return false
	}

	item = item.Clone()
	if item.Status == "" {
		item.Status = models.StatusTodo
	}
	if item.Priority == "" {
		item.Priority = models.PriorityMedium
	}
	if !slices.Contains(models.Statuses, item.Status) || !slices.Contains(models.Priorities, item.Priority) {
		r.log.Warn().Str("id", item.ID).Str("status", string(item.Status)).
			Str("priority", string(item.Priority)).Msg("rejected todo update")
		return false
	}

	existing := &r.items[i]
	existing.Title = item.Title
	existing.Description = item.Description
	existing.Status = item.Status
	existing.Priority = item.Priority
	existing.DueDate = item.DueDate
	existing.OrderIndex = item.OrderIndex

	now := r.now().UTC()
	if now.Before(existing.CreatedAt) {
		now = existing.CreatedAt
	}
	existing.UpdatedAt = now

	r.saveLocked(ctx)
	r.log.Debug().Str("id", item.ID).Msg("updated todo")
	return true
}

// Delete removes the item. Remaining orderIndex values are not renumbered.
func (r *Repository) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)

	i := r.indexLocked(id)
	if i < 0 {
		return false
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	r.saveLocked(ctx)
	r.log.Debug().Str("id", id).Msg("deleted todo")
	return true
}

// Reorder moves the item to newIndex within the orderIndex-sorted list and
// renumbers every item to 0..N-1. An index past the end appends.
func (r *Repository) Reorder(ctx context.Context, id string, newIndex int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)

	ordered := r.sortedLocked(nil)
	pos := -1
	for i, it := range ordered {
		if it.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}

	moved := ordered[pos]
	ordered = append(ordered[:pos], ordered[pos+1:]...)
	switch {
	case newIndex >= len(ordered):
		ordered = append(ordered, moved)
	case newIndex <= 0:
		ordered = append([]models.TodoItem{moved}, ordered...)
	default:
		ordered = append(ordered[:newIndex], append([]models.TodoItem{moved}, ordered[newIndex:]...)...)
	}

	for i := range ordered {
		ordered[i].OrderIndex = i
	}
	r.items = ordered
	r.saveLocked(ctx)
	r.log.Debug().Str("id", id).Int("index", newIndex).Msg("reordered todo")
	return true
}

// Search returns items whose title or description contains query,
// case-insensitively, in orderIndex order. A blank query returns everything.
func (r *Repository) Search(ctx context.Context, query string) []models.TodoItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadLocked(ctx)

	if strings.TrimSpace(query) == "" {
		return r.sortedLocked(nil)
	}
	q := strings.ToLower(query)
	return r.sortedLocked(func(it models.TodoItem) bool {
		return strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.Description), q)
	})
}

// Save writes the full collection to the store.
func (r *Repository) Save(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveLocked(ctx)
}

func (r *Repository) saveLocked(ctx context.Context) {
	raw, err := Encode(r.items)
	if err != nil {
		r.log.Error().Err(err).Msg("encode todo items")
		return
	}
	r.kv.Set(ctx, store.KeyTodoItems, raw)
}

func (r *Repository) indexLocked(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

// sortedLocked returns copies of the items matching keep (all when nil),
// stably sorted by orderIndex.
func (r *Repository) sortedLocked(keep func(models.TodoItem) bool) []models.TodoItem {
	out := make([]models.TodoItem, 0, len(r.items))
	for _, it := range r.items {
		if keep == nil || keep(it) {
			out = append(out, it.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out
}
