package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpetrov/tempo/internal/engine"
	"github.com/mpetrov/tempo/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running timers and the active routine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	ctx := context.Background()
	timers, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}

	running := timers.Timers()
	run := routines.Current()

	if len(running) == 0 && run == nil {
		ui.Info("Nothing is running. Start with 'tempo timer start' or 'tempo routine start'.")
		return nil
	}

	if len(running) > 0 {
		fmt.Fprintf(ui.Out, "%s\n", output.Green("Timers"))
		table := ui.Table([]string{"Activity", "Category", "Elapsed", "Expected"})
		for _, t := range running {
			expected := "-"
			if t.ExpectedMinutes > 0 {
				expected = fmt.Sprintf("%d min", t.ExpectedMinutes)
			}
			_ = table.Append([]string{
				t.ActivityName, t.CategoryName,
				output.FormatSeconds(timers.Duration(t.ID)), expected,
			})
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if run != nil {
		state := "running"
		if run.IsPaused {
			state = "paused"
		}
		now := time.Now()
		slot := run.Current()
		fmt.Fprintf(ui.Out, "%s %s [%s] — %s on %s (%d/%d), total %s\n",
			output.Green("Routine"), output.Cyan(run.RoutineName), output.StateColor(state),
			output.FormatSeconds(engine.CurrentActivityDuration(run, now)),
			slot.ActivityName, run.CurrentIndex+1, len(run.Activities),
			output.FormatSeconds(engine.TotalRoutineDuration(run, now)))
	}

	// Surface reminders that have come due but not yet been delivered.
	due, err := dataStore.DueReminders(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, r := range due {
		ui.Warning("%s — expected time is up (since %s)", r.Label, r.FireAt.Local().Format("15:04"))
	}
	return nil
}
