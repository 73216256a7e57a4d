package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "fleet-service",
	Short:        "Fleet operations back office",
	Long:         `Schedules drivers and vehicles into shifts and jobs, allocates document codes and bills completed jobs.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, nextCodeCmd)
}
