package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpetrov/tempo/internal/engine"
	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/output"
)

var (
	routineType  string
	routineItems []string
)

var routineCmd = &cobra.Command{
	Use:   "routine",
	Short: "Define and run routines",
	Long: `A routine is a named, ordered template of activities executed in sequence.
Only one routine run is active at a time; it survives process restarts by
rehydrating from the session log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineListRun()
	},
}

var routineStartCmd = &cobra.Command{
	Use:   "start <routine>",
	Short: "Start a routine run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineStartRun(args[0])
	},
}

var routineNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Finish the current activity and advance",
	Long:  "Finish the current activity and advance to the next slot. On the last activity this finishes the run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineNextRun()
	},
}

var routinePauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active routine run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routinePauseRun()
	},
}

var routineResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused routine run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineResumeRun()
	},
}

var routineStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active routine run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineStopRun()
	},
}

var routineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active routine run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineShowRun()
	},
}

var routineListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List defined routines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineListRun()
	},
}

var routineDefineCmd = &cobra.Command{
	Use:   "define <name>",
	Short: "Define a routine from the command line",
	Long: `Define a routine with ordered items. Each --item is "<activity>[:<minutes>][@HH:MM]";
the activity must already exist, minutes defaults to the activity's default.

  tempo routine define Morning --type morning \
    --item "Coffee:5@07:00" --item Journal:10 --item Stretch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineDefineRun(args[0])
	},
}

func init() {
	routineDefineCmd.Flags().StringVar(&routineType, "type", "custom", "Routine type: morning, evening, custom")
	routineDefineCmd.Flags().StringArrayVar(&routineItems, "item", nil, "Ordered item spec (repeatable)")
	_ = routineDefineCmd.MarkFlagRequired("item")

	routineCmd.AddCommand(routineStartCmd)
	routineCmd.AddCommand(routineNextCmd)
	routineCmd.AddCommand(routinePauseCmd)
	routineCmd.AddCommand(routineResumeCmd)
	routineCmd.AddCommand(routineStopCmd)
	routineCmd.AddCommand(routineShowCmd)
	routineCmd.AddCommand(routineListCmd)
	routineCmd.AddCommand(routineDefineCmd)
	routineCmd.AddCommand(routineImportCmd)
	rootCmd.AddCommand(routineCmd)
}

// resolveRoutine accepts a routine name or id.
func resolveRoutine(ctx context.Context, ref string) (*models.Routine, error) {
	r, err := dataStore.GetRoutineByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r, err = dataStore.GetRoutineWithItems(ctx, ref)
		if err != nil {
			return nil, err
		}
	}
	if r == nil {
		return nil, fmt.Errorf("routine not found: %s", ref)
	}
	return r, nil
}

func routineStartRun(ref string) error {
	ctx := context.Background()
	_, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}

	if cur := routines.Current(); cur != nil {
		return fmt.Errorf("routine %q is already running; stop it first", cur.RoutineName)
	}

	def, err := resolveRoutine(ctx, ref)
	if err != nil {
		return err
	}

	run, err := routines.Start(ctx, def.ID)
	if err != nil {
		return err
	}

	first := run.Current()
	ui.Success("Started routine %s (%d activities)", output.Cyan(run.RoutineName), len(run.Activities))
	ui.Info("Now: %s", formatSlot(first))
	return nil
}

func routineNextRun() error {
	ctx := context.Background()
	_, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}

	before := routines.Current()
	if before == nil {
		return fmt.Errorf("no routine is running")
	}
	finished := before.Current().ActivityName

	if err := routines.Next(ctx); err != nil {
		return err
	}

	after := routines.Current()
	if after == nil {
		ui.Success("Finished %s — routine %s complete", output.Cyan(finished), output.Cyan(before.RoutineName))
		return nil
	}
	ui.Success("Finished %s", output.Cyan(finished))
	ui.Info("Now: %s (%d/%d)", formatSlot(after.Current()), after.CurrentIndex+1, len(after.Activities))
	return nil
}

func routinePauseRun() error {
	ctx := context.Background()
	_, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}
	if routines.Current() == nil {
		return fmt.Errorf("no routine is running")
	}
	if err := routines.Pause(ctx); err != nil {
		return err
	}
	ui.Success("Paused %s", output.Cyan(routines.Current().RoutineName))
	return nil
}

func routineResumeRun() error {
	ctx := context.Background()
	_, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}
	cur := routines.Current()
	if cur == nil {
		return fmt.Errorf("no routine is running")
	}
	if !cur.IsPaused {
		ui.Info("Routine %s is not paused.", cur.RoutineName)
		return nil
	}
	if err := routines.Resume(ctx); err != nil {
		return err
	}
	ui.Success("Resumed %s", output.Cyan(cur.RoutineName))
	return nil
}

func routineStopRun() error {
	ctx := context.Background()
	_, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}
	cur := routines.Current()
	if cur == nil {
		ui.Info("No routine is running.")
		return nil
	}
	if err := routines.Stop(ctx); err != nil {
		return err
	}
	ui.Success("Stopped routine %s", output.Cyan(cur.RoutineName))
	return nil
}

func routineShowRun() error {
	ctx := context.Background()
	_, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}

	run := routines.Current()
	if run == nil {
		ui.Info("No routine is running.")
		return nil
	}

	state := "running"
	if run.IsPaused {
		state = "paused"
	}
	now := time.Now()
	fmt.Fprintf(ui.Out, "%s [%s] — total %s\n",
		output.Cyan(run.RoutineName), output.StateColor(state),
		output.FormatSeconds(engine.TotalRoutineDuration(run, now)))

	table := ui.Table([]string{"", "Activity", "Expected", "Spent"})
	for i, slot := range run.Activities {
		marker := " "
		spent := output.FormatSeconds(run.ActivityDurations[slot.Key])
		switch {
		case i == run.CurrentIndex:
			marker = ">"
			spent = output.FormatSeconds(engine.CurrentActivityDuration(run, now))
		case slot.EndTime != nil:
			marker = "✓"
		}
		expected := "-"
		if slot.ExpectedMinutes > 0 {
			expected = fmt.Sprintf("%d min", slot.ExpectedMinutes)
		}
		_ = table.Append([]string{marker, slot.ActivityName, expected, spent})
	}
	return table.Render()
}

func routineListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	list, err := s.ListRoutines(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ui.Info("No routines defined. Use 'tempo routine define' or 'tempo routine import'.")
		return nil
	}

	table := ui.Table([]string{"Name", "Type", "Activities"})
	for _, r := range list {
		full, err := s.GetRoutineWithItems(ctx, r.ID)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(full.Items))
		for _, item := range full.Items {
			if item.Activity != nil {
				names = append(names, item.Activity.Name)
			}
		}
		_ = table.Append([]string{r.Name, string(r.Type), strings.Join(names, " → ")})
	}
	return table.Render()
}

func routineDefineRun(name string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r := &models.Routine{
		Name: name,
		Type: models.RoutineType(routineType),
	}
	for i, spec := range routineItems {
		item, err := parseItemSpec(ctx, spec)
		if err != nil {
			return err
		}
		item.DisplayOrder = i
		r.Items = append(r.Items, item)
	}

	if err := s.CreateRoutine(ctx, r); err != nil {
		return err
	}
	ui.Success("Defined routine %s with %d activities", output.Cyan(name), len(r.Items))
	return nil
}

// parseItemSpec parses "<activity>[:<minutes>][@HH:MM]".
func parseItemSpec(ctx context.Context, spec string) (*models.RoutineItem, error) {
	scheduled := ""
	if at := strings.LastIndex(spec, "@"); at != -1 {
		scheduled = spec[at+1:]
		spec = spec[:at]
	}

	name := spec
	minutes := 0
	if colon := strings.LastIndex(spec, ":"); colon != -1 {
		m, err := strconv.Atoi(spec[colon+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid item spec %q: minutes must be a number", spec)
		}
		name = spec[:colon]
		minutes = m
	}

	activity, err := dataStore.GetActivityByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &models.RoutineItem{
		ActivityID:              activity.ID,
		ExpectedDurationMinutes: minutes,
		ScheduledTime:           scheduled,
	}, nil
}

func formatSlot(slot *engine.RoutineActivity) string {
	if slot.ExpectedMinutes > 0 {
		return fmt.Sprintf("%s (%d min)", output.Cyan(slot.ActivityName), slot.ExpectedMinutes)
	}
	return output.Cyan(slot.ActivityName)
}
