package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rmp-dashboard/services"
	"rmp-dashboard/web"
)

var (
	// Serve command flags
	serveMetrics bool
	serveCORS    bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	Long: `Load the dataset once and serve the dashboard page plus a JSON API.

The server provides:
- The dashboard page at /
- Derived views under /api/v1 (colleges, dashboard, tags, heatmap, histogram,
  scatter, wordcloud, comments, sentiment)
- The sentiment analysis fragment at /api/v1/fragments/sentiment
- Prometheus metrics at /metrics

Examples:
  rmp-dashboard serve                          # Serve on localhost:8080
  rmp-dashboard serve --port 9000 --host 0.0.0.0
  rmp-dashboard serve --source postgres        # Read professors from PostgreSQL`,
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
		fragment := loadFragment(cfg, logger)

		serverCfg := web.DefaultConfig()
		serverCfg.Addr = cfg.Addr()
		serverCfg.TopTags = cfg.TopTags
		serverCfg.EnableMetrics = serveMetrics
		serverCfg.EnableCORS = serveCORS

		dashboard := services.NewDashboardService(logger, services.OptionsFromConfig(cfg))
		srv := web.New(serverCfg, ds, dashboard, fragment, logger)

		fmt.Fprintf(cmd.OutOrStdout(), "Dashboard: http://%s/\n", serverCfg.Addr)
		fmt.Fprintf(cmd.OutOrStdout(), "API:       http://%s/api/v1/colleges\n", serverCfg.Addr)
		if serveMetrics {
			fmt.Fprintf(cmd.OutOrStdout(), "Metrics:   http://%s/metrics\n", serverCfg.Addr)
		}
		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", true, "enable Prometheus metrics endpoint")
	serveCmd.Flags().BoolVar(&serveCORS, "cors", false, "enable CORS headers")

	_ = viper.BindPFlag("HTTP_PORT", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("HTTP_HOST", serveCmd.Flags().Lookup("host"))
}
