package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/cmd/cli/commands"
	"github.com/jakechorley/major-admission/internal/config"
	"github.com/jakechorley/major-admission/pkg/postgres"
	"github.com/jakechorley/major-admission/pkg/utils/logging"
)

var (
	env        string
	configPath string
	verbose    bool
	app        = &commands.AppContext{}
	database   *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "admission",
		Short: "Major admission CLI - allocate students to majors by preference and quota",
		Long: `A CLI tool that assigns students to majors from their preference codes,
their score or rank, and the seat quota of each major.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if database != nil {
				database.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default admission_config.<env>.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.AdmitCmd(app))
	rootCmd.AddCommand(commands.AdmitSheetCmd(app))
	rootCmd.AddCommand(commands.QuotasCmd(app))
	rootCmd.AddCommand(commands.AdjustmentsCmd(app))
	rootCmd.AddCommand(commands.ListRunsCmd(app))
	rootCmd.AddCommand(commands.ViewRunCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and, when configured, the database
func initApp() error {
	app.Env = env
	app.Ctx = context.Background()

	logger, logPath, err := logging.InitLogger(env, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Logger.Info("Starting application", zap.String("environment", env), zap.String("log_file", logPath))

	app.Logger.Debug("Loading configuration")
	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.LoadWithEnv(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.Int("majors", len(app.Cfg.Majors)))

	if app.Cfg.DatabaseURL == "" {
		app.Logger.Debug("No database configured, run history disabled")
		return nil
	}

	app.Logger.Info("Connecting to database")
	database, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := database.RunMigrations(app.Ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		app.Logger.Info("Applied migrations", zap.Strings("files", applied))
	}

	app.Store = database
	app.Logger.Debug("Database initialized successfully")

	return nil
}
