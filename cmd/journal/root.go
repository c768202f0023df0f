package main

import (
	"fmt"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is what every subcommand runs against. It is filled in by the root
// command's PersistentPreRunE and released by teardown.
type app struct {
	configDir string

	cfg   config.Config
	log   *zap.Logger
	db    *database.DB
	repos *repository.Repositories
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "journal",
		Short:        "Local trading journal: trades, AI forecasts, market data, strategies and signals",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsStore(cmd) {
				return nil
			}
			return a.setup()
		},
	}
	cmd.PersistentFlags().StringVar(&a.configDir, "config", "./configs", "directory holding config.yml and .env")

	cmd.AddCommand(
		newStatusCmd(a),
		newSampleCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newClearCmd(a),
		newPruneCmd(a),
	)

	return cmd, a
}

// needsStore reports whether cmd works on the journal. Help and shell
// completion, including cobra's hidden completion requests, must not create
// the database file.
func needsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configDir)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	a.cfg = cfg

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return fmt.Errorf("could not initialize logger: %w", err)
	}
	a.log = log

	db, err := database.NewDatabase(cfg.Database, log)
	if err != nil {
		log.Error("Failed to open journal store", zap.Error(err))
		return err
	}
	a.db = db
	a.repos = repository.New(db, log)
	return nil
}

// teardown is safe to call whether or not setup ran.
func (a *app) teardown() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close journal store", zap.Error(err))
		}
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
