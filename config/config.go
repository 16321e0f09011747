package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data source kinds accepted in DATA_SOURCE.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataSource        string
	DataPath          string
	SentimentHTMLPath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresTable    string

	HTTPHost string
	HTTPPort int

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	HistogramBins           int
	CommentMaxLen           int
	TopTags                 int
	ScatterMinRatings       float64
	ScatterExcludedColleges []string

	SnapshotDir string
	ChromeBin   string
	LogLevel    string
}

var defaults = map[string]any{
	"DATA_SOURCE":         SourceCSV,
	"DATA_PATH":           "data/northeastern_rmp_data_updated.csv",
	"SENTIMENT_HTML_PATH": "public/college_sentiment_analysis.html",

	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "rmp",
	"POSTGRES_PASSWORD": "rmp123",
	"POSTGRES_DB":       "rmp_db",
	"POSTGRES_SSLMODE":  "disable",
	"POSTGRES_TABLE":    "professors",

	"HTTP_HOST": "localhost",
	"HTTP_PORT": 8080,

	"MAX_CONCURRENCY": 4,
	"RATE_LIMIT_MS":   0,
	"MAX_RETRIES":     3,

	"HISTOGRAM_BINS":            10,
	"COMMENT_MAX_LEN":           100,
	"TOP_TAGS":                  15,
	"SCATTER_MIN_RATINGS":       5,
	"SCATTER_EXCLUDED_COLLEGES": "Unknown,School of Law",

	"SNAPSHOT_DIR": "./output/snapshots",
	"CHROME_BIN":   "",
	"LOG_LEVEL":    "info",
}

// Load reads the .env file and returns a populated Config struct. Values
// already set on v (for example bound command-line flags) take precedence
// over the environment. A nil v uses the global viper instance.
func Load(v *viper.Viper) *Config {
	// A missing .env is normal; system env vars are used instead.
	_ = godotenv.Load()

	if v == nil {
		v = viper.GetViper()
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	return &Config{
		DataSource:        strings.ToLower(v.GetString("DATA_SOURCE")),
		DataPath:          v.GetString("DATA_PATH"),
		SentimentHTMLPath: v.GetString("SENTIMENT_HTML_PATH"),

		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetString("POSTGRES_PORT"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),
		PostgresTable:    v.GetString("POSTGRES_TABLE"),

		HTTPHost: v.GetString("HTTP_HOST"),
		HTTPPort: v.GetInt("HTTP_PORT"),

		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),
		RateLimitMs:    v.GetInt("RATE_LIMIT_MS"),
		MaxRetries:     v.GetInt("MAX_RETRIES"),

		HistogramBins:           v.GetInt("HISTOGRAM_BINS"),
		CommentMaxLen:           v.GetInt("COMMENT_MAX_LEN"),
		TopTags:                 v.GetInt("TOP_TAGS"),
		ScatterMinRatings:       v.GetFloat64("SCATTER_MIN_RATINGS"),
		ScatterExcludedColleges: splitList(v.GetString("SCATTER_EXCLUDED_COLLEGES")),

		SnapshotDir: v.GetString("SNAPSHOT_DIR"),
		ChromeBin:   v.GetString("CHROME_BIN"),
		LogLevel:    v.GetString("LOG_LEVEL"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceCSV:
		if c.DataPath == "" {
			return errors.New("config: DATA_PATH is empty")
		}
	case SourcePostgres:
		if c.PostgresTable == "" {
			return errors.New("config: POSTGRES_TABLE is empty")
		}
	default:
		return fmt.Errorf("config: unknown DATA_SOURCE %q (want %q or %q)",
			c.DataSource, SourceCSV, SourcePostgres)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("config: HISTOGRAM_BINS must be positive, got %d", c.HistogramBins)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("config: MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
