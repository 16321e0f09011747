package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rmp-dashboard/config"
	"rmp-dashboard/utils"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rmp-dashboard",
	Short: "Explore professor ratings by college",
	Long: `rmp-dashboard loads a table of scraped professor ratings and derives the
views behind an interactive dashboard: tag counts, a metric heatmap, a
rating histogram, difficulty/rating correlations, a tag cloud and reviews.

Serve the dashboard over HTTP, print a report in the terminal, or render
per-college screenshots with headless Chrome.`,
	Version:       "dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
// This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./rmp-dashboard.yaml if present)")
	flags.String("log-level", "info", "log level (debug, info, warn, error, disabled)")
	flags.StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, yaml)")
	flags.String("source", config.SourceCSV, "data source (csv, postgres)")
	flags.String("data", "", "path to the professor ratings CSV")
	flags.String("fragment", "", "path to the sentiment analysis HTML fragment")

	// Flags bind to the same keys as their environment variables.
	_ = viper.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))
	_ = viper.BindPFlag("DATA_SOURCE", flags.Lookup("source"))
	_ = viper.BindPFlag("DATA_PATH", flags.Lookup("data"))
	_ = viper.BindPFlag("SENTIMENT_HTML_PATH", flags.Lookup("fragment"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("rmp-dashboard")
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds and validates the configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to the command's stderr at the configured level.
func newLogger(cmd *cobra.Command, cfg *config.Config) *utils.Logger {
	return utils.NewLoggerWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
}
