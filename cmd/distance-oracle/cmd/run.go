package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/paw-chain/distance/oracle"
	"github.com/paw-chain/distance/oracle/telemetry"
)

// newRunner wires client, store and telemetry from the resolved config.
func newRunner(state *cmdState) (*oracle.Runner, oracle.ChainClient, *telemetry.Provider, error) {
	store, err := state.store()
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := oracle.NewHTTPClient(state.cfg.Client)
	if err != nil {
		return nil, nil, nil, err
	}
	provider, err := telemetry.NewProvider(state.cfg.Telemetry)
	if err != nil {
		return nil, nil, nil, err
	}
	runner, err := oracle.NewRunner(client, store, oracle.Config{Workers: state.cfg.Workers}, state.logger, provider)
	if err != nil {
		return nil, nil, nil, err
	}
	return runner, client, provider, nil
}

// RunCmd performs a single run.
func RunCmd(state *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Compute the pool under computation once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, _, provider, err := newRunner(state)
			if err != nil {
				return err
			}
			defer shutdown(state, provider)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := runner.Run(ctx)
			if errors.Is(err, oracle.ErrNothingToDo) {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "period %d: %d identities, %d referees (threshold %d), written to %s in %s\n",
				res.Period, res.Identities, res.Referees, res.Threshold, res.ArtifactDir, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

func shutdown(state *cmdState, provider *telemetry.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(ctx); err != nil {
		state.logger.Error("failed to shutdown telemetry", "error", err)
	}
}
