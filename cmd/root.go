package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/todo/internal/app"
	"github.com/joescharf/todo/internal/auth"
	"github.com/joescharf/todo/internal/dashboard"
	"github.com/joescharf/todo/internal/logging"
	"github.com/joescharf/todo/internal/notify"
	"github.com/joescharf/todo/internal/output"
	"github.com/joescharf/todo/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui     *output.UI
	logger = zerolog.Nop()
	core   *app.App

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "Todo - a single-user task manager",
	Long: `todo keeps a prioritized list of tasks with due dates.
It offers a CLI, an interactive terminal dashboard, a REST API and an
MCP server over the same store.`,
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
	cobra.OnFinalize(closeApp)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return todoListRun()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/todo/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TODO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	defaultConfigDir, _ := configDirFunc()
	setDefaults(defaultConfigDir)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers the default of every config key under stateDir.
func setDefaults(stateDir string) {
	viper.SetDefault("state_dir", stateDir)
	viper.SetDefault("store.driver", store.DriverSQLite)
	viper.SetDefault("store.sqlite_path", filepath.Join(stateDir, "todo.db"))
	viper.SetDefault("store.postgres_dsn", "")
	viper.SetDefault("auth.latency", "600ms")
	viper.SetDefault("auth.token_secret", auth.DefaultTokenSecret)
	viper.SetDefault("dashboard.undo_window", dashboard.DefaultUndoWindow.String())
	viper.SetDefault("notify.buffer", notify.DefaultBuffer)
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.require_auth", false)
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", logging.FormatConsole)
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	level := viper.GetString("log.level")
	if verbose {
		level = "debug"
	}
	l, err := logging.New(os.Stderr, level, viper.GetString("log.format"))
	if err != nil {
		ui.Warning("Logging disabled: %v", err)
		return
	}
	logger = l

	// The app is built lazily, only when commands actually need it.
	// This allows config/version commands to run without a store.
}

// appConfig maps viper keys onto the core configuration.
func appConfig() app.Config {
	return app.Config{
		Store: store.Config{
			Driver:      viper.GetString("store.driver"),
			SQLitePath:  viper.GetString("store.sqlite_path"),
			PostgresDSN: viper.GetString("store.postgres_dsn"),
		},
		Auth: auth.Config{
			Latency:     viper.GetDuration("auth.latency"),
			TokenSecret: viper.GetString("auth.token_secret"),
		},
		UndoWindow:   viper.GetDuration("dashboard.undo_window"),
		NotifyBuffer: viper.GetInt("notify.buffer"),
	}
}

// getApp returns the shared app, building it on first call.
func getApp() (*app.App, error) {
	if core != nil {
		return core, nil
	}

	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.New(ctx, appConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	core = a
	return core, nil
}

// flushNotices prints the notifications queued by the last operation.
func flushNotices() {
	if core == nil {
		return
	}
	for _, n := range core.Notifications.Drain() {
		ui.Notify(n.Message, n.Severity)
	}
}

func closeApp() {
	if core == nil {
		return
	}
	if err := core.Close(); err != nil {
		logger.Warn().Err(err).Msg("close app")
	}
	core = nil
}
