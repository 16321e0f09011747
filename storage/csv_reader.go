package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"rmp-dashboard/models"
)

// CSVSource reads raw professor rows from a CSV file with a header row.
// Columns are located by header name, so their order is free.
type CSVSource struct {
	path string
}

// NewCSVSource returns a source for the file at path. The file is opened
// lazily by Load.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Describe names the backing file.
func (c *CSVSource) Describe() string { return c.path }

// Load opens and parses the whole file.
func (c *CSVSource) Load(ctx context.Context) ([]*models.RawProfessor, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("csv: %w: %s", ErrSourceNotFound, c.path)
		}
		return nil, fmt.Errorf("csv: open %q: %w", c.path, err)
	}
	defer f.Close()

	return ReadCSV(ctx, f)
}

// Close is a no-op; Load closes the file it opens.
func (c *CSVSource) Close() error { return nil }

// ReadCSV parses raw rows from r. A short row, a parse error or a missing
// required header is reported as a *models.MalformedRecordError.
func ReadCSV(ctx context.Context, r io.Reader) ([]*models.RawProfessor, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &models.MalformedRecordError{Column: "header", Err: errors.New("empty source")}
	}
	if err != nil {
		return nil, &models.MalformedRecordError{Column: "header", Err: err}
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []*models.RawProfessor
	for row := 1; ; row++ {
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &models.MalformedRecordError{Row: row, Column: "*", Err: err}
		}
		rows = append(rows, cols.raw(row, rec))
	}
	return rows, nil
}

// columnIndex maps each header to its position.
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, h := range header {
		// Spreadsheet exports sometimes prefix the first header with a BOM.
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, want := range models.RequiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, &models.MalformedRecordError{
				Column: want,
				Err:    errors.New("required column missing from header"),
			}
		}
	}
	return cols, nil
}

func (c columnIndex) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func (c columnIndex) raw(row int, rec []string) *models.RawProfessor {
	return &models.RawProfessor{
		Row:            row,
		FirstName:      c.get(rec, models.ColFirstName),
		LastName:       c.get(rec, models.ColLastName),
		Department:     c.get(rec, models.ColDepartment),
		College:        c.get(rec, models.ColCollege),
		AverageRating:  c.get(rec, models.ColAverageRating),
		NumRatings:     c.get(rec, models.ColNumRatings),
		WouldTakeAgain: c.get(rec, models.ColWouldTakeAgain),
		Difficulty:     c.get(rec, models.ColDifficulty),
		Reviews:        c.get(rec, models.ColReviews),
		Tags:           c.get(rec, models.ColTags),
		Sentiment:      c.get(rec, models.ColSentiment),
	}
}
