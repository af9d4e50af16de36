package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpetrov/tempo/internal/engine"
	"github.com/mpetrov/tempo/internal/output"
)

var (
	timerExpected int
	timerPlanned  bool
	timerManual   bool
	timerCategory string
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Manage ad-hoc timers",
	Long:  "Start, stop, and inspect ad-hoc timers. Each timer is backed by one running session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerListRun()
	},
}

var timerStartCmd = &cobra.Command{
	Use:   "start <activity>",
	Short: "Start a timer for an activity",
	Long: `Start a timer for a known activity, or — with --manual — an ad-hoc timer
for a name that has no stored activity. Manual timers require --expected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerStartRun(args[0])
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop <activity>",
	Short: "Stop a running timer by activity name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerStopRun(args[0])
	},
}

var timerStopAllCmd = &cobra.Command{
	Use:   "stop-all",
	Short: "Stop every running timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerStopAllRun()
	},
}

var timerListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List running timers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return timerListRun()
	},
}

func init() {
	timerStartCmd.Flags().IntVar(&timerExpected, "expected", 0, "Expected duration in minutes")
	timerStartCmd.Flags().BoolVar(&timerPlanned, "planned", false, "Mark the session as planned")
	timerStartCmd.Flags().BoolVar(&timerManual, "manual", false, "Ad-hoc timer without a stored activity (requires --expected)")
	timerStartCmd.Flags().StringVar(&timerCategory, "category", "", "Category for a --manual timer")

	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerStopAllCmd)
	timerCmd.AddCommand(timerListCmd)
	rootCmd.AddCommand(timerCmd)
}

func timerStartRun(name string) error {
	ctx := context.Background()
	timers, _, err := getEngines(ctx)
	if err != nil {
		return err
	}

	var timer *engine.RunningTimer
	if timerManual {
		if timerExpected <= 0 {
			return fmt.Errorf("--manual requires --expected to be a positive number of minutes")
		}
		var categoryID, categoryName, categoryColor string
		if timerCategory != "" {
			cat, err := dataStore.GetCategoryByName(ctx, timerCategory)
			if err != nil {
				return err
			}
			categoryID, categoryName, categoryColor = cat.ID, cat.Name, cat.Color
		}
		timer, err = timers.StartManual(ctx, name, categoryID, categoryName, categoryColor, timerExpected, timerPlanned)
	} else {
		activity, aerr := dataStore.GetActivityByName(ctx, name)
		if aerr != nil {
			return fmt.Errorf("%w (use --manual for an ad-hoc timer)", aerr)
		}
		timer, err = timers.Start(ctx, activity, timerPlanned, timerExpected)
	}
	if err != nil {
		return err
	}

	if timer.ExpectedMinutes > 0 {
		ui.Success("Started %s (expected %d min)", output.Cyan(timer.ActivityName), timer.ExpectedMinutes)
	} else {
		ui.Success("Started %s", output.Cyan(timer.ActivityName))
	}
	return nil
}

func timerStopRun(name string) error {
	ctx := context.Background()
	timers, _, err := getEngines(ctx)
	if err != nil {
		return err
	}

	var timerID string
	for _, t := range timers.Timers() {
		if strings.EqualFold(t.ActivityName, name) {
			timerID = t.ID
			break
		}
	}
	if timerID == "" {
		return fmt.Errorf("no running timer for %q", name)
	}

	sess, err := timers.Stop(ctx, timerID)
	if err != nil {
		return err
	}
	if sess != nil && sess.ActualDurationMinutes != nil {
		ui.Success("Stopped %s after %s", output.Cyan(sess.ActivityName),
			output.FormatSeconds(int64(*sess.ActualDurationMinutes*60)))
	} else {
		ui.Success("Stopped %s", output.Cyan(name))
	}
	return nil
}

func timerStopAllRun() error {
	ctx := context.Background()
	timers, _, err := getEngines(ctx)
	if err != nil {
		return err
	}

	n := timers.StopAll(ctx)
	ui.Success("Stopped %d timer(s)", n)
	return nil
}

func timerListRun() error {
	ctx := context.Background()
	timers, _, err := getEngines(ctx)
	if err != nil {
		return err
	}

	running := timers.Timers()
	if len(running) == 0 {
		ui.Info("No running timers.")
		return nil
	}

	table := ui.Table([]string{"Activity", "Category", "Elapsed", "Expected", "Planned"})
	for _, t := range running {
		expected := "-"
		if t.ExpectedMinutes > 0 {
			expected = fmt.Sprintf("%d min", t.ExpectedMinutes)
		}
		planned := ""
		if t.IsPlanned {
			planned = "yes"
		}
		table.Append([]string{
			t.ActivityName,
			t.CategoryName,
			output.FormatSeconds(timers.Duration(t.ID)),
			expected,
			planned,
		})
	}
	return table.Render()
}
