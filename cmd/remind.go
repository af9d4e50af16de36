package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mpetrov/tempo/internal/daemon"
	"github.com/mpetrov/tempo/internal/output"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder watcher",
	Long: `Run a foreground watcher that prints "time's up" reminders when a
session exceeds its expected duration. Only one watcher runs at a time;
a PID file guards against a second instance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return remindRun()
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)
}

func remindRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	pidPath := filepath.Join(viper.GetString("state_dir"), "remind.pid")
	pf := daemon.NewPIDFile(pidPath)
	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("reminder watcher already running (pid %d)", pid)
	}
	if err := pf.Write(); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer func() { _ = pf.Remove() }()

	interval := time.Duration(viper.GetInt("remind.poll_seconds")) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ui.Info("Watching for due reminders every %s (ctrl-c to stop)", interval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-stop:
			return nil
		case <-ticker.C:
			due, err := s.DueReminders(ctx, time.Now())
			if err != nil {
				ui.Warning("check reminders: %v", err)
				continue
			}
			for _, r := range due {
				ui.Warning("%s — expected time is up", output.Cyan(r.Label))
				// A delivered reminder is done; a still-running session does
				// not warn twice.
				if err := s.DeleteReminder(ctx, r.SessionID); err != nil {
					ui.Warning("clear reminder: %v", err)
				}
			}
		}
	}
}
