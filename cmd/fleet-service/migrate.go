package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleet-service/internal/config"
	"fleet-service/internal/db"
	"fleet-service/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDB()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appLogger := logger.New(cfg.Environment, cfg.LogLevel)

		if _, err := db.New(cfg, appLogger); err != nil {
			return err
		}
		return nil
	},
}
