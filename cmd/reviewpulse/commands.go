package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ReviewPulse/internal/app"
	"ReviewPulse/internal/config"
	"ReviewPulse/internal/logging"
)

type cliState struct {
	cfg    config.Config
	logger *slog.Logger
}

func rootCommand() *cobra.Command {
	rt := &cliState{}

	rootCmd := &cobra.Command{
		Use:           "reviewpulse",
		Short:         "Restaurant review analytics",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	rootCmd.AddCommand(analyzeCommand(rt), serveCommand(rt), historyCommand(rt))
	return rootCmd
}

func analyzeCommand(rt *cliState) *cobra.Command {
	var (
		every       time.Duration
		repeat      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build restaurant reports from the review dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application, err := app.New(ctx, rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			if metricsAddr == "" {
				metricsAddr = rt.cfg.Metrics.Addr
			}

			if repeat && every <= 0 {
				every = rt.cfg.Scheduler.Interval
			}

			if every <= 0 {
				result, err := application.Run(ctx)
				if err != nil {
					return err
				}
				rt.logger.Info("analysis finished",
					"run_id", result.RunID,
					"reports", len(result.Reports),
					"skipped", len(result.Skipped),
					"output", rt.cfg.Output.Path)
				return nil
			}

			g, gctx := errgroup.WithContext(ctx)
			if metricsAddr != "" {
				g.Go(func() error { return application.ServeMetrics(gctx, metricsAddr) })
			}
			g.Go(func() error { return application.RunEvery(gctx, every) })
			return g.Wait()
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "repeat the analysis on this interval (0 runs once)")
	cmd.Flags().BoolVar(&repeat, "repeat", false, "repeat the analysis on scheduler.interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while repeating")
	return cmd
}

func serveCommand(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve precomputed reports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Serve(cmd.Context())
		},
	}
}

func historyCommand(rt *cliState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <restaurant-id>",
		Short: "Show recorded runs for one restaurant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid restaurant id %q", args[0])
			}

			application, err := app.New(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			records, err := application.History(cmd.Context(), id, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tWHEN\tHEALTH\tREVIEWS\tPOS%\tNEG%\tALERTS")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f\t%.1f\t%d\n",
					r.RunID, r.CreatedAt.Format(time.RFC3339), r.HealthScore, r.TotalReviews,
					r.PositiveShare, r.NegativeShare, r.AlertCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "maximum number of runs to list")
	return cmd
}
