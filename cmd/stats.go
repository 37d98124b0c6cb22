package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/todo/internal/models"
	"github.com/joescharf/todo/internal/output"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"status"},
	Short:   "Show task statistics",
	Long: `Show task counts by status and priority, the completion rate, the
average time to completion and the activity of the last seven days.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func statsRun() error {
	a, err := getApp()
	if err != nil {
		return err
	}

	s := a.Stats.Statistics(context.Background())
	if statsJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	renderStats(s)
	return nil
}

func renderStats(s models.Statistics) {
	table := ui.Table([]string{"Metric", "Value"})
	_ = table.Append([]string{"Total", fmt.Sprintf("%d", s.TotalTasks)})
	_ = table.Append([]string{output.StatusColor("todo"), fmt.Sprintf("%d", s.TodoTasks)})
	_ = table.Append([]string{output.StatusColor("in_progress"), fmt.Sprintf("%d", s.InProgressTasks)})
	_ = table.Append([]string{output.StatusColor("done"), fmt.Sprintf("%d", s.CompletedTasks)})
	_ = table.Append([]string{"Overdue", overdueCount(s.OverdueTasks)})
	_ = table.Append([]string{"Completion", output.RateColor(s.CompletionRate)})
	_ = table.Append([]string{"Avg. completion", formatHours(s.AverageCompletionTimeHours)})
	_ = table.Append([]string{output.PriorityColor("high"), fmt.Sprintf("%d", s.HighPriorityTasks)})
	_ = table.Append([]string{output.PriorityColor("medium"), fmt.Sprintf("%d", s.MediumPriorityTasks)})
	_ = table.Append([]string{output.PriorityColor("low"), fmt.Sprintf("%d", s.LowPriorityTasks)})
	_ = table.Render()

	fmt.Fprintln(ui.Out)
	fmt.Fprintln(ui.Out, "Last 7 days")

	peak := 0
	for _, d := range s.WeeklyActivity {
		peak = max(peak, d.Count)
	}
	for _, d := range s.WeeklyActivity {
		fmt.Fprintf(ui.Out, "  %-3s %s %s %d\n", d.Day, d.Date.Format("01-02"), output.Bar(d.Count, peak, 30), d.Count)
	}
}

func overdueCount(n int) string {
	if n > 0 {
		return output.Red(fmt.Sprintf("%d", n))
	}
	return "0"
}

// formatHours renders a duration given in hours, e.g. "36.0h (1.5d)".
func formatHours(h float64) string {
	if h <= 0 {
		return "-"
	}
	d := time.Duration(h * float64(time.Hour))
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", h)
	}
	return fmt.Sprintf("%.1fh (%.1fd)", h, h/24)
}
