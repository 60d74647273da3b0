package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"bubblebliss/internal/hubtel"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/repos"
	"bubblebliss/internal/services"
)

func reconcileCmd() *cobra.Command {
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run one sweep over checkouts that never reached the orders table",
		Long: `Run one reconciliation sweep and print its summary as JSON.

Examples:
  bubblebliss reconcile
  bubblebliss reconcile --grace 1h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			if grace <= 0 {
				grace = cfg.ReconcileGrace
			}

			m := metrics.New()
			gw := hubtel.NewClient(cfg.Hubtel, m)
			cbs := services.NewCallbackService(repos.NewOrderRepo(db), repos.NewCallbackRepo(db), gw, m)
			rec := services.NewReconciler(db, cbs, gw, grace, cfg.OrderTxTimeout, m)

			rep, err := rec.Sweep(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().DurationVar(&grace, "grace", 0, "only sweep sessions older than this (default RECONCILE_GRACE_MINUTES)")
	return cmd
}
