package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rmp-dashboard/models"
	"rmp-dashboard/utils"
)

// PostgresSource reads raw professor rows from a PostgreSQL table. The
// table is populated out of band; this type never writes to it.
//
// Every column is read back as text so that coercion and list decoding go
// through the same normalizer as the CSV source.
type PostgresSource struct {
	db    *sql.DB
	table string
}

// NewPostgresSource opens a connection to PostgreSQL, waits for it to answer
// a ping, and returns a ready-to-use PostgresSource.
func NewPostgresSource(ctx context.Context, dsn, table string, retry *utils.RetryConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &PostgresSource{db: db, table: table}, nil
}

// Describe names the backing table.
func (ps *PostgresSource) Describe() string { return "postgres table " + ps.table }

func (ps *PostgresSource) query() string {
	return fmt.Sprintf(`
		SELECT
			COALESCE(first_name, ''),
			COALESCE(last_name, ''),
			COALESCE(department, ''),
			COALESCE(college, ''),
			COALESCE(average_rating::text, ''),
			COALESCE(num_ratings::text, ''),
			COALESCE(would_take_again::text, ''),
			COALESCE(difficulty::text, ''),
			COALESCE(reviews, ''),
			COALESCE(popular_tags, ''),
			COALESCE(sentiment_score::text, '')
		FROM %s
		ORDER BY id
	`, pq.QuoteIdentifier(ps.table))
}

// Load retrieves all stored rows in id order.
func (ps *PostgresSource) Load(ctx context.Context) ([]*models.RawProfessor, error) {
	rows, err := ps.db.QueryContext(ctx, ps.query())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "42P01" {
			return nil, fmt.Errorf("postgres: %w: table %s", ErrSourceNotFound, ps.table)
		}
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []*models.RawProfessor
	for n := 1; rows.Next(); n++ {
		r := &models.RawProfessor{Row: n}
		if err := rows.Scan(
			&r.FirstName, &r.LastName, &r.Department, &r.College,
			&r.AverageRating, &r.NumRatings, &r.WouldTakeAgain, &r.Difficulty,
			&r.Reviews, &r.Tags, &r.Sentiment,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row %d: %w", n, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate rows: %w", err)
	}
	return out, nil
}

func (ps *PostgresSource) Close() error {
	return ps.db.Close()
}
