package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mpetrov/tempo/internal/engine"
	"github.com/mpetrov/tempo/internal/notify"
	"github.com/mpetrov/tempo/internal/output"
	"github.com/mpetrov/tempo/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tempo",
	Short: "Track time with ad-hoc timers and multi-step routines",
	Long: `tempo tracks how you spend time: start and stop ad-hoc timers, or run
routines — ordered sequences of activities executed back-to-back with
pause/resume. Live state is rebuilt from the durable session log on every
invocation, so nothing is lost between runs.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return statusRun()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/tempo/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "tempo")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TEMPO")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "tempo")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "tempo.db"))
	viper.SetDefault("remind.poll_seconds", 30)
	viper.SetDefault("remind.label", "Time's up")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	// The store is initialized lazily — only when commands actually need it.
	// This allows config/version commands to run without a db.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(context.Background()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getEngines builds both execution engines and rehydrates them from the
// session log. Every CLI invocation is a fresh process, so this is the
// restart-recovery path running each time.
func getEngines(ctx context.Context) (*engine.TimerEngine, *engine.RoutineEngine, error) {
	s, err := getStore()
	if err != nil {
		return nil, nil, err
	}

	sched := notify.NewStoreScheduler(s)
	timers := engine.NewTimerEngine(s, sched, engine.WithTimerLogger(ui))
	routines := engine.NewRoutineEngine(s, sched, engine.WithRoutineLogger(ui))

	if err := timers.Reload(ctx); err != nil {
		return nil, nil, err
	}
	// Rehydration failures must never take down the CLI; the engine keeps
	// whatever state it had.
	if err := routines.Hydrate(ctx); err != nil {
		ui.Warning("rehydrate routine: %v", err)
	}

	return timers, routines, nil
}
