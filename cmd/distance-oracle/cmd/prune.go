package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const flagKeep = "keep"

// PruneCmd applies artifact retention by hand.
func PruneCmd(state *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete artifacts except the newest and the listed periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keep, err := cmd.Flags().GetUintSlice(flagKeep)
			if err != nil {
				return err
			}
			store, err := state.store()
			if err != nil {
				return err
			}
			periods := make([]uint64, len(keep))
			for i, p := range keep {
				periods[i] = uint64(p)
			}
			removed, err := store.Prune(periods...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d artifacts %v\n", len(removed), removed)
			return nil
		},
	}
	cmd.Flags().UintSlice(flagKeep, nil, "periods to keep in addition to the newest")
	return cmd
}
