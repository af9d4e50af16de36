package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpetrov/tempo/internal/output"
	"github.com/mpetrov/tempo/internal/store"
)

var (
	reportDays     int
	reportActivity string
	reportRoutine  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked time",
	Long:  "Show completed sessions in a time window with per-activity totals.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportRun()
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "How many days back to include")
	reportCmd.Flags().StringVar(&reportActivity, "activity", "", "Filter by activity name")
	reportCmd.Flags().StringVar(&reportRoutine, "routine", "", "Filter by routine name")
	rootCmd.AddCommand(reportCmd)
}

func reportRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	from := time.Now().AddDate(0, 0, -reportDays)
	filter := store.SessionFilter{From: &from}

	if reportActivity != "" {
		a, err := s.GetActivityByName(ctx, reportActivity)
		if err != nil {
			return err
		}
		filter.ActivityID = a.ID
	}
	if reportRoutine != "" {
		r, err := s.GetRoutineByName(ctx, reportRoutine)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("routine not found: %s", reportRoutine)
		}
		filter.RoutineID = r.ID
	}

	sessions, err := s.ListSessions(ctx, filter)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		ui.Info("No sessions in the last %d day(s).", reportDays)
		return nil
	}

	table := ui.Table([]string{"Started", "Activity", "Source", "Duration", "Expected"})
	totals := make(map[string]int64)
	var totalSeconds int64
	for _, sess := range sessions {
		duration := output.Yellow("running")
		if !sess.IsRunning {
			secs := sess.DurationSeconds()
			duration = output.FormatSeconds(secs)
			totals[sess.ActivityName] += secs
			totalSeconds += secs
		}
		expected := "-"
		if sess.ExpectedDurationMinutes != nil {
			expected = fmt.Sprintf("%d min", *sess.ExpectedDurationMinutes)
		}
		_ = table.Append([]string{
			sess.StartTime.Local().Format("Mon 15:04"),
			sess.ActivityName,
			output.SourceColor(string(sess.Source)),
			duration,
			expected,
		})
	}
	if err := table.Render(); err != nil {
		return err
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return totals[names[i]] > totals[names[j]] })

	fmt.Fprintln(ui.Out)
	for _, name := range names {
		fmt.Fprintf(ui.Out, "  %s  %s\n", output.FormatSeconds(totals[name]), name)
	}
	fmt.Fprintf(ui.Out, "  %s  %s\n", output.FormatSeconds(totalSeconds), output.Green("total"))
	return nil
}
