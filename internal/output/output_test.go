package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/todo/internal/models"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestDryRunMsg_Enabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = true
	u.DryRunMsg("would create %s", "file")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would create file")
}

func TestDryRunMsg_Disabled(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRun = false
	u.DryRunMsg("would create %s", "file")
	assert.Empty(t, errOut.String())
}

func TestColorHelpers(t *testing.T) {
	// Color helpers should return non-empty strings
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
	assert.NotEmpty(t, Yellow("test"))
	assert.NotEmpty(t, Red("test"))
}

func TestStatusColor(t *testing.T) {
	assert.NotEmpty(t, StatusColor("todo"))
	assert.NotEmpty(t, StatusColor("in_progress"))
	assert.NotEmpty(t, StatusColor("done"))
	assert.Equal(t, "unknown", StatusColor("unknown"))
}

func TestPriorityColor(t *testing.T) {
	assert.NotEmpty(t, PriorityColor("high"))
	assert.NotEmpty(t, PriorityColor("medium"))
	assert.NotEmpty(t, PriorityColor("low"))
	assert.Equal(t, "urgent", PriorityColor("urgent"))
}

func TestRateColor(t *testing.T) {
	assert.Contains(t, RateColor(90), "90.0%")
	assert.Contains(t, RateColor(50), "50.0%")
	assert.Contains(t, RateColor(33.3), "33.3%")
}

func TestBar(t *testing.T) {
	assert.Empty(t, Bar(0, 10, 20))
	assert.Empty(t, Bar(3, 0, 20))
	assert.Equal(t, 20, strings.Count(Bar(10, 10, 20), "\u2588"))
	assert.Equal(t, 10, strings.Count(Bar(5, 10, 20), "\u2588"))
	assert.Equal(t, 1, strings.Count(Bar(1, 100, 20), "\u2588"), "non-zero values always show")
}

func TestNotify(t *testing.T) {
	u, out, errOut := newTestUI()
	u.Notify("Task created successfully!", models.SeveritySuccess)
	u.Notify("note", models.SeverityInfo)
	u.Notify(`Task "x" deleted`, models.SeverityWarning)
	u.Notify("boom", models.SeverityError)

	assert.Contains(t, out.String(), "Task created successfully!")
	assert.Contains(t, out.String(), "note")
	assert.Contains(t, errOut.String(), `Task "x" deleted`)
	assert.Contains(t, errOut.String(), "boom")
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Title", "Status"})
	require.NotNil(t, table)

	table.Append([]string{"milk", "todo"})
	table.Append([]string{"rent", "done"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "milk"), "table output should contain titles")
	assert.True(t, strings.Contains(result, "rent"), "table output should contain titles")
}
