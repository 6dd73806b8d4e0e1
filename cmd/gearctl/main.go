// Command gearctl runs one-off maintenance tasks against the GearVault
// database: schema migration, demo data and the overdue-maintenance sweep.
package main

import (
	"fmt"
	"os"

	"gearvault/internal/config"
	"gearvault/internal/database"
	"gearvault/internal/pkg/logger"
	"gearvault/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *repository.Store
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:           "gearctl",
		Short:         "GearVault administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")

	open := func(migrate bool) (*env, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if databaseURL != "" {
			cfg.DatabaseURL = databaseURL
		}
		log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		db, err := database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		if migrate {
			if err := database.Migrate(db); err != nil {
				return nil, err
			}
		}
		return &env{cfg: cfg, log: log, store: repository.NewStore(db)}, nil
	}

	cmd.AddCommand(migrateCmd(open), seedCmd(open), remindersCmd(open))
	return cmd
}

func migrateCmd(open func(bool) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(true)
			if err != nil {
				return err
			}
			e.log.Info("migration completed")
			return nil
		},
	}
}
