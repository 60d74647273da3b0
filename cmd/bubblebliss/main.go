package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"bubblebliss/internal/config"
	"bubblebliss/internal/repos"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "bubblebliss",
		Short:         "Bubble Bliss order and payment backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, tees logging into LOG_FILE when set and
// opens the database with the schema in place.
func setup() (config.Config, *sqlx.DB, error) {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database %s: %w", cfg.DBDSN, err)
	}
	return cfg, db, nil
}
