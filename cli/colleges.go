package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rmp-dashboard/services"
)

// collegeSummary is one row of the colleges listing.
type collegeSummary struct {
	College    string `json:"college" yaml:"college"`
	Professors int    `json:"professors" yaml:"professors"`
}

var collegesCmd = &cobra.Command{
	Use:   "colleges",
	Short: "List the colleges in the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ds, err := loadDataset(cmd.Context(), cfg, newLogger(cmd, cfg))
		if err != nil {
			return err
		}

		records := ds.Records()
		summary := make([]collegeSummary, 0, len(ds.Colleges()))
		for _, c := range ds.Colleges() {
			summary = append(summary, collegeSummary{College: c, Professors: len(services.Filter(records, c))})
		}

		return render(cmd.OutOrStdout(), summary, func(w io.Writer) {
			width := len("College")
			for _, s := range summary {
				width = max(width, len(s.College))
			}
			fmt.Fprintf(w, "%-*s  %s\n", width, "College", "Professors")
			for _, s := range summary {
				fmt.Fprintf(w, "%-*s  %d\n", width, s.College, s.Professors)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(collegesCmd)
}
