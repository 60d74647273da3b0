package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bubblebliss/internal/http/handlers"
	"bubblebliss/internal/hubtel"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/repos"
)

func serveCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the background reconcile loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if seed {
				if err := repos.Seed(ctx, db, cfg.Admin.Email, cfg.Admin.Password); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
			}

			m := metrics.New()
			gw := hubtel.NewClient(cfg.Hubtel, m)
			deps := handlers.NewDeps(db, cfg, gw, m)
			app := handlers.NewApp(deps, handlers.DefaultLimits())

			go deps.Reconciler.Run(ctx, cfg.ReconcileInterval)
			if cfg.ReconcileInterval > 0 {
				log.Printf("[reconcile] sweeping every %s (grace %s)", cfg.ReconcileInterval, cfg.ReconcileGrace)
			} else {
				log.Printf("[reconcile] background sweep disabled")
			}

			errc := make(chan error, 1)
			go func() { errc <- app.Listen(":" + cfg.Port) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			log.Printf("[serve] shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(sctx)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the menu fixture and bootstrap admin before serving")
	return cmd
}
