package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jaypeewhat/ThriftStore/configs"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
)

var seedAdmin bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&seedAdmin, "seed-admin", true, "Create the admin account from ADMIN_EMAIL/ADMIN_PASSWORD")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := configs.ConnectionDB(cfg)
	if err != nil {
		return err
	}
	if err := configs.SetupDatabase(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	ctx := context.Background()
	log.Infof(ctx, "schema up to date (%s)", cfg.DBDriver)
	if seedAdmin {
		return configs.SeedAdmin(ctx, db, cfg, log)
	}
	return nil
}
