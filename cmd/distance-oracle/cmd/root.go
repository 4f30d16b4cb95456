package cmd

import (
	"fmt"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/paw-chain/distance/oracle/artifact"
)

// cmdState carries what PersistentPreRunE resolved to the subcommands.
type cmdState struct {
	cfg    Config
	logger log.Logger
}

func (s *cmdState) store() (*artifact.Store, error) {
	store, err := artifact.NewStore(s.cfg.ArtifactDir, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store: %w", err)
	}
	return store, nil
}

// NewRootCmd creates the distance-oracle root command.
func NewRootCmd() *cobra.Command {
	state := &cmdState{}

	rootCmd := &cobra.Command{
		Use:   "distance-oracle",
		Short: "Off-chain distance evaluation for the web of trust",
		Long: `distance-oracle scores the identities queued for computation against the
certification graph recorded at the evaluation height, and stores the result
for the local validator to submit during the next period.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = logger
			return nil
		},
	}

	persistentFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(
		RunCmd(state),
		DaemonCmd(state),
		InspectCmd(state),
		PruneCmd(state),
	)
	return rootCmd
}
