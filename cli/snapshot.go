package cli

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rmp-dashboard/services"
	"rmp-dashboard/snapshot"
	"rmp-dashboard/web"
)

var snapshotColleges []string

// snapshotCmd renders the dashboard with headless Chrome.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a PNG of the dashboard for each college",
	Long: `Serve the dashboard on a loopback port and capture a full-page screenshot
per college with headless Chrome. Requires Chrome or Chromium; set CHROME_BIN
to point at a specific binary.

Examples:
  rmp-dashboard snapshot                                # Every college
  rmp-dashboard snapshot --college "College of Science" --dir ./shots`,
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

		colleges := snapshotColleges
		if len(colleges) == 0 {
			colleges = ds.Colleges()
		}

		dashboard := services.NewDashboardService(logger, services.OptionsFromConfig(cfg))
		serverCfg := web.DefaultConfig()
		serverCfg.TopTags = cfg.TopTags
		srv := web.New(serverCfg, ds, dashboard, loadFragment(cfg, logger), logger)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("snapshot: listen: %w", err)
		}
		httpSrv := &http.Server{Handler: srv.Handler()}
		go func() {
			if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("[snapshot] Server error: %v", err)
			}
		}()
		defer httpSrv.Close()

		baseURL := "http://" + listener.Addr().String()
		results, captureErr := snapshot.New(cfg, logger, baseURL).Capture(cmd.Context(), colleges)

		if err := render(cmd.OutOrStdout(), results, func(w io.Writer) {
			for _, r := range results {
				fmt.Fprintf(w, "%s -> %s\n", r.College, r.Path)
			}
			fmt.Fprintf(w, "Saved %d of %d snapshots to %s\n", len(results), len(colleges), cfg.SnapshotDir)
		}); err != nil {
			return err
		}
		return captureErr
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringSliceVarP(&snapshotColleges, "college", "c", nil, "colleges to capture (default: all)")
	snapshotCmd.Flags().String("dir", "", "output directory (default: SNAPSHOT_DIR)")
	snapshotCmd.Flags().String("chrome", "", "Chrome/Chromium binary (default: CHROME_BIN or auto-detect)")

	_ = viper.BindPFlag("SNAPSHOT_DIR", snapshotCmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("CHROME_BIN", snapshotCmd.Flags().Lookup("chrome"))
}
