package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bubblebliss/internal/repos"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the menu fixture and the bootstrap admin (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repos.Seed(cmd.Context(), db, cfg.Admin.Email, cfg.Admin.Password); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
			return nil
		},
	}
}
