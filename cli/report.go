package cli

import (
	"io"

	"github.com/spf13/cobra"

	"rmp-dashboard/services"
)

var (
	reportCollege string
	reportTop     int
)

// reportCmd prints the dashboard views for one selection.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard views for a college",
	Long: `Compute every dashboard view for the selected college and print them.

Text output is a terminal report; json and yaml emit the full view.

Examples:
  rmp-dashboard report                                  # All colleges
  rmp-dashboard report --college "College of Science"
  rmp-dashboard report --college "Khoury College of Computer Sciences" -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg)

		ds, err := loadDataset(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		if reportCollege != "" && !ds.HasCollege(reportCollege) {
			logger.Warn("[report] College %q not in dataset; views will be empty", reportCollege)
		}

		top := reportTop
		if top <= 0 {
			top = cfg.TopTags
		}

		dashboard := services.NewDashboardService(logger, services.OptionsFromConfig(cfg))
		view := dashboard.Generate(ds, reportCollege)
		return render(cmd.OutOrStdout(), view, func(w io.Writer) {
			dashboard.Print(w, view, top)
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportCollege, "college", "c", "", "college to select (default: all colleges)")
	reportCmd.Flags().IntVar(&reportTop, "top", 0, "number of tags in the text report (default: TOP_TAGS)")
}
