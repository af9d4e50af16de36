package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mpetrov/tempo/internal/engine"
	"github.com/mpetrov/tempo/internal/output"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of running timers and the active routine",
	Long:  "Re-renders every second, the way a timer screen should. Press q to quit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchRun()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func watchRun() error {
	ctx := context.Background()
	timers, routines, err := getEngines(ctx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newWatchModel(ctx, timers, routines))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run watch view: %w", err)
	}
	return nil
}

// tickMsg fires once a second, driving the duration poll.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	watchDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	watchRunStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8CC8C"))
	watchPauseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DBAB79"))
)

type watchModel struct {
	ctx      context.Context
	timers   *engine.TimerEngine
	routines *engine.RoutineEngine
	now      time.Time
}

func newWatchModel(ctx context.Context, timers *engine.TimerEngine, routines *engine.RoutineEngine) watchModel {
	return watchModel{ctx: ctx, timers: timers, routines: routines, now: time.Now()}
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		m.now = time.Time(msg)
		// Another process may have started or stopped things; the session
		// log is the source of truth, so re-derive from it each tick.
		if err := m.timers.Reload(m.ctx); err == nil {
			_ = m.routines.Hydrate(m.ctx)
		}
		return m, tick()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(watchTitleStyle.Render("tempo"))
	b.WriteString(watchDimStyle.Render("  " + m.now.Format("15:04:05")))
	b.WriteString("\n\n")

	running := m.timers.Timers()
	if len(running) > 0 {
		b.WriteString(watchDimStyle.Render("Timers") + "\n")
		for _, t := range running {
			line := fmt.Sprintf("  %s  %s", output.FormatSeconds(m.timers.Duration(t.ID)), t.ActivityName)
			if t.ExpectedMinutes > 0 {
				line += watchDimStyle.Render(fmt.Sprintf(" / %d min", t.ExpectedMinutes))
			}
			b.WriteString(watchRunStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	if run := m.routines.Current(); run != nil {
		style := watchRunStyle
		state := ""
		if run.IsPaused {
			style = watchPauseStyle
			state = " (paused)"
		}
		b.WriteString(watchDimStyle.Render("Routine ") + watchTitleStyle.Render(run.RoutineName) + state + "\n")
		for i, slot := range run.Activities {
			switch {
			case i == run.CurrentIndex:
				b.WriteString(style.Render(fmt.Sprintf("> %s  %s",
					output.FormatSeconds(engine.CurrentActivityDuration(run, m.now)), slot.ActivityName)) + "\n")
			case slot.EndTime != nil:
				b.WriteString(watchDimStyle.Render(fmt.Sprintf("✓ %s  %s",
					output.FormatSeconds(run.ActivityDurations[slot.Key]), slot.ActivityName)) + "\n")
			default:
				b.WriteString(watchDimStyle.Render("  -       "+slot.ActivityName) + "\n")
			}
		}
		b.WriteString(watchDimStyle.Render(fmt.Sprintf("  total %s",
			output.FormatSeconds(engine.TotalRoutineDuration(run, m.now)))) + "\n\n")
	}

	if len(running) == 0 && m.routines.Current() == nil {
		b.WriteString(watchDimStyle.Render("Nothing is running.") + "\n\n")
	}

	b.WriteString(watchDimStyle.Render("q to quit"))
	return b.String()
}
