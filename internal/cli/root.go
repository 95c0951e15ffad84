package cli

import (
	"context"
	"fmt"

	"github.com/OverStackedLab/mytimeblock.com/internal/config"
	"github.com/OverStackedLab/mytimeblock.com/internal/logger"
	"github.com/OverStackedLab/mytimeblock.com/internal/pomodoro"
	"github.com/OverStackedLab/mytimeblock.com/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "timeblock",
	Short: "mytimeblock - time-blocking calendar with focus timer",
	Long: `mytimeblock is a time-blocking calendar: schedule blocks on your day,
drag them around, and run a pomodoro focus timer alongside.

Run 'timeblock' without arguments to launch the interactive timer and agenda.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("mytimeblock started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		sess, local, cleanup, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := sess.StartLiveUpdates(context.Background()); err != nil {
			logger.Warn("Live updates unavailable", logger.F("error", err))
		}

		logger.Info("Launching TUI")
		m := tui.NewModel(sess, pomodoro.NewStore(local))
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("mytimeblock exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(duplicateCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(authCmd)
}
