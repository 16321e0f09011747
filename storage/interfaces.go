package storage

import (
	"context"
	"errors"

	"rmp-dashboard/models"
)

// ErrSourceNotFound is returned when the tabular source does not exist.
var ErrSourceNotFound = errors.New("data source not found")

// RecordSource is the interface any dataset backend must satisfy. Load
// returns every row or an error; it never returns a partial result.
type RecordSource interface {
	Load(ctx context.Context) ([]*models.RawProfessor, error)
	Describe() string
	Close() error
}
