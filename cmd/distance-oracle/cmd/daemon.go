package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/paw-chain/distance/oracle"
)

const (
	defaultInterval    = 30 * time.Second
	defaultMetricsAddr = ":36670"
)

// DaemonCmd runs the oracle periodically until interrupted.
func DaemonCmd(state *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the oracle periodically",
		Long: `Run the oracle on a fixed interval. A run for a period whose artifact
already exists does nothing, so the interval only needs to be shorter than a
period. Failed runs are logged and retried on the next tick.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interval := state.cfg.Interval
			if interval <= 0 {
				interval = defaultInterval
			}

			runner, client, provider, err := newRunner(state)
			if err != nil {
				return err
			}
			defer shutdown(state, provider)

			if state.cfg.MetricsAddr != "" {
				checker := oracle.NewHealthChecker(client, 3*interval)
				runner.OnRun(checker.Observe)
				server := StartMonitoringServer(state.cfg.MetricsAddr, checker, state.logger)
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Shutdown(ctx)
				}()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			state.logger.Info("distance oracle started", "interval", interval, "node", state.cfg.Client.BaseURL)
			err = runner.RunEvery(ctx, interval)
			if errors.Is(err, context.Canceled) {
				state.logger.Info("distance oracle stopped")
				return nil
			}
			return err
		},
	}
	cmd.Flags().Duration(FlagInterval, defaultInterval, "time between runs")
	cmd.Flags().String(FlagMetricsAddr, defaultMetricsAddr, "metrics and health listen address; empty disables")
	return cmd
}
