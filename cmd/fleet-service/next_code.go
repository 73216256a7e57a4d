package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fleet-service/internal/config"
	"fleet-service/internal/db"
	"fleet-service/internal/logger"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

var peekCounter bool

var nextCodeCmd = &cobra.Command{
	Use:   "next-code <TYPE>",
	Short: "Allocate the next code of a type and print it",
	Long:  `Allocates and prints the next code for one of JOB, SHF, INV, VEH, DRV, CLI, PRD, TRL. With --peek the current counter is printed and nothing is allocated.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codeType := model.CodeType(strings.ToUpper(strings.TrimSpace(args[0])))
		if !codeType.Valid() {
			return fmt.Errorf("unknown code type %q", args[0])
		}

		cfg, err := config.LoadDB()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appLogger := logger.New(cfg.Environment, cfg.LogLevel)

		database, err := db.Open(cfg, appLogger)
		if err != nil {
			return err
		}
		codes := service.NewCodeService(database, repository.NewCounterRepository(database), appLogger)

		if peekCounter {
			current, err := codes.GetCurrentCounter(cmd.Context(), codeType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), current)
			return nil
		}

		code, err := codes.GetNextCode(cmd.Context(), codeType)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), code)
		return nil
	},
}

func init() {
	nextCodeCmd.Flags().BoolVar(&peekCounter, "peek", false, "print the current counter without allocating")
}
