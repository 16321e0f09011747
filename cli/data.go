package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rmp-dashboard/config"
	"rmp-dashboard/models"
	"rmp-dashboard/services"
	"rmp-dashboard/storage"
	"rmp-dashboard/utils"
)

// openSource returns the configured record source.
func openSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.RecordSource, error) {
	switch cfg.DataSource {
	case config.SourcePostgres:
		return storage.NewPostgresSource(ctx, cfg.DSN(), cfg.PostgresTable, &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		})
	default:
		return storage.NewCSVSource(cfg.DataPath), nil
	}
}

// loadDataset reads and normalizes the whole table. Nothing is returned on
// failure; a missing source and a malformed row produce distinct messages.
func loadDataset(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*models.Dataset, error) {
	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return nil, explainLoadError(cfg, err)
	}
	defer src.Close()

	logger.Info("[data] Loading professors from %s", src.Describe())
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, explainLoadError(cfg, err)
	}

	ds, err := services.NewNormalizer(logger).Normalize(raw)
	if err != nil {
		return nil, explainLoadError(cfg, err)
	}
	logger.Info("[data] Loaded %d professors across %d colleges", ds.Len(), len(ds.Colleges()))
	return ds, nil
}

func explainLoadError(cfg *config.Config, err error) error {
	var mre *models.MalformedRecordError
	switch {
	case errors.Is(err, storage.ErrSourceNotFound) && cfg.DataSource == config.SourcePostgres:
		return fmt.Errorf("table %q not found. Please load the professor ratings into PostgreSQL first: %w",
			cfg.PostgresTable, err)
	case errors.Is(err, storage.ErrSourceNotFound):
		return fmt.Errorf("data file not found. Please ensure '%s' is in the correct directory: %w",
			cfg.DataPath, err)
	case errors.As(err, &mre):
		return fmt.Errorf("the data file is malformed and was not loaded: %w", err)
	}
	return fmt.Errorf("load data: %w", err)
}

// loadFragment reads the sentiment fragment. A missing fragment only
// leaves that panel empty.
func loadFragment(cfg *config.Config, logger *utils.Logger) string {
	if cfg.SentimentHTMLPath == "" {
		return ""
	}
	fragment, err := storage.ReadFragment(cfg.SentimentHTMLPath)
	if err != nil {
		logger.Warn("[data] Sentiment fragment unavailable: %v", err)
		return ""
	}
	return fragment
}
