package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/2beens/fittrack/internal/db"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var flags envFlags
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			setupLogging(cfg, "fittrack-migrate")

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
				DBHost:     cfg.PostgresHost,
				DBPort:     cfg.PostgresPort,
				DBName:     cfg.PostgresDBName,
				DBUser:     os.Getenv("FITTRACK_DB_USER"),
				DBPassword: os.Getenv("FITTRACK_DB_PASS"),
			})
			if err != nil {
				return fmt.Errorf("new db pool: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			log.Infof("schema applied to [%s]", cfg.PostgresDBName)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
