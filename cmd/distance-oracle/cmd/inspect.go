package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/paw-chain/distance/oracle/artifact"
)

const flagOutput = "output"

// artifactSummary is one row of the artifact listing.
type artifactSummary struct {
	Period    uint64 `json:"period" yaml:"period"`
	Distances int    `json:"distances" yaml:"distances"`
	State     string `json:"state" yaml:"state"`
}

// artifactDetail is a single decoded artifact.
type artifactDetail struct {
	Period    uint64   `json:"period" yaml:"period"`
	Distances []string `json:"distances" yaml:"distances"`
}

// InspectCmd lists stored artifacts or prints one of them.
func InspectCmd(state *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [period]",
		Short: "List stored artifacts, or print the distances of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString(flagOutput)
			if err != nil {
				return err
			}
			store, err := state.store()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				period, err := cast.ToUint64E(args[0])
				if err != nil {
					return fmt.Errorf("invalid period %q: %w", args[0], err)
				}
				a, err := store.Read(period)
				if err != nil {
					return err
				}
				detail := artifactDetail{Period: a.Period, Distances: make([]string, len(a.Distances))}
				for i, d := range a.Distances {
					detail.Distances[i] = d.String()
				}
				return render(cmd.OutOrStdout(), output, detail, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "INDEX\tDISTANCE")
					for i, d := range detail.Distances {
						fmt.Fprintf(w, "%d\t%s\n", i, d)
					}
				})
			}

			periods, err := store.Periods()
			if err != nil {
				return err
			}
			rows := make([]artifactSummary, 0, len(periods))
			for _, period := range periods {
				row := artifactSummary{Period: period, State: "ok"}
				a, err := store.Read(period)
				switch {
				case errors.Is(err, artifact.ErrUnrecognizedVersion):
					row.State = "unrecognized"
				case err != nil:
					row.State = "unreadable"
				default:
					row.Distances = len(a.Distances)
				}
				rows = append(rows, row)
			}
			return render(cmd.OutOrStdout(), output, rows, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "PERIOD\tDISTANCES\tSTATE")
				for _, row := range rows {
					if row.State != "ok" {
						fmt.Fprintf(w, "%d\t-\t%s\n", row.Period, row.State)
						continue
					}
					fmt.Fprintf(w, "%d\t%d\t%s\n", row.Period, row.Distances, row.State)
				}
			})
		},
	}
	cmd.Flags().StringP(flagOutput, "o", "text", "output format (text|json|yaml)")
	return cmd
}

func render(out io.Writer, format string, v interface{}, table func(*tabwriter.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		bz, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = out.Write(bz)
		return err
	case "text", "":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		table(w)
		return w.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
