package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/belphemur/haushaltsheld/internal/config"
	"github.com/belphemur/haushaltsheld/internal/database"
	"github.com/belphemur/haushaltsheld/internal/household"
	"github.com/belphemur/haushaltsheld/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultConfigPath = "configs/haushaltsheld.toml"

// app carries what every command needs once the root command has run
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	root := &cobra.Command{
		Use:           "haushaltsheld",
		Short:         "haushaltsheld - shared household chore calendar",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// serve logs to stdout; the other commands keep stdout for their output
			var out io.Writer = cmd.ErrOrStderr()
			if cmd.Name() == "serve" {
				out = cmd.OutOrStdout()
			}
			logging.InitializeWithWriter(out, os.Getenv("ENV") != "production")

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration %s: %w", a.configPath, err)
			}
			logging.SetLogLevel(cfg.Service.LogLevel)
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", configPath, "Path to the TOML configuration file")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newCalendarCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := logging.GetLogger("main")
		logger.Error().Err(err).Msg("Command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", a.cfg.Service.StateFile)
			return nil
		},
	}
}

// openDatabase opens the state file, creating its directory, and applies
// pending migrations.
func (a *app) openDatabase() (*database.DB, error) {
	logger := logging.GetLogger("main")
	stateFile := a.cfg.Service.StateFile

	if err := os.MkdirAll(filepath.Dir(stateFile), 0755); err != nil {
		logger.Error().Err(err).Str("path", filepath.Dir(stateFile)).Msg("Failed to create data directory")
		return nil, err
	}

	db, err := database.New(database.NewDefaultOptions(stateFile))
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize database: %w", err)
		logger.Error().Err(wrappedErr).Str("db_path", stateFile).Msg("Database initialization failed")
		return nil, wrappedErr
	}

	if err := db.MigrateDatabase(); err != nil {
		db.Close()
		wrappedErr := fmt.Errorf("failed to initialize database schema: %w", err)
		logger.Error().Err(wrappedErr).Msg("Database schema initialization failed")
		return nil, wrappedErr
	}
	return db, nil
}

// openService opens the database and builds the household service on it
func (a *app) openService() (*database.DB, *household.Service, error) {
	db, err := a.openDatabase()
	if err != nil {
		return nil, nil, err
	}
	return db, household.NewService(database.NewStore(db)), nil
}
