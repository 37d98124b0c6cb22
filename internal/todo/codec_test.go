package todo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/todo/internal/models"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	items := Seed(now, sequentialIDs())
	items[2].DueDate = nil
	items[3].UpdatedAt = now.Add(90 * time.Minute)

	raw, err := Encode(items)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	raw, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestDecode_RejectsMalformed(t *testing.T) {
	for _, raw := range []string{"{", `{"id":"a"}`, "[1, 2]"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Decode(raw)
			assert.Error(t, err)
		})
	}
}

func TestDecode_RepairsBadItems(t *testing.T) {
	raw := `[
		{"id":"a","title":"keep","status":"done","priority":"high"},
		{"title":"no id","status":"todo","priority":"low"},
		{"id":"a","title":"duplicate","status":"todo","priority":"low"},
		{"id":"b","title":"odd status","status":"blocked","priority":"low"},
		{"id":"c","title":"empty priority","status":"in_progress","priority":""}
	]`
	items, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "keep", items[0].Title)
	assert.Equal(t, models.StatusDone, items[0].Status)

	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, models.StatusTodo, items[1].Status)
	assert.Equal(t, models.PriorityLow, items[1].Priority)

	assert.Equal(t, "c", items[2].ID)
	assert.Equal(t, models.StatusInProgress, items[2].Status)
	assert.Equal(t, models.PriorityMedium, items[2].Priority)
}

func TestSeed(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	items := Seed(now, sequentialIDs())
	require.Len(t, items, 7)

	for i, it := range items {
		assert.Equal(t, i, it.OrderIndex)
		assert.NotEmpty(t, it.ID)
		require.NotNil(t, it.DueDate)
	}
	// One done item in the past and one open item past due.
	assert.False(t, items[0].IsOverdue(now))
	assert.True(t, items[6].IsOverdue(now))
	assert.Equal(t, models.PriorityLow, items[6].Priority)
}
