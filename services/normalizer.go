package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"rmp-dashboard/models"
	"rmp-dashboard/utils"
)

// Normalizer transforms RawProfessors into typed Professors. Rows are
// never dropped or zero-filled; the first row that fails decoding aborts
// the whole load.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts every raw row and returns the resulting dataset, or
// a *models.MalformedRecordError for the first bad row.
func (n *Normalizer) Normalize(raw []*models.RawProfessor) (*models.Dataset, error) {
	records := make([]models.Professor, 0, len(raw))
	missing := 0

	for _, r := range raw {
		p, gaps, err := normalizeRow(r)
		if err != nil {
			return nil, err
		}
		missing += gaps
		records = append(records, p)
	}

	if missing > 0 {
		n.logger.Debug("[normalizer] %d empty numeric cells kept as missing values", missing)
	}
	n.logger.Info("[normalizer] Normalized %d records", len(records))
	return models.NewDataset(records), nil
}

func normalizeRow(r *models.RawProfessor) (models.Professor, int, error) {
	p := models.Professor{
		FirstName:  normaliseText(r.FirstName),
		LastName:   normaliseText(r.LastName),
		Department: normaliseText(r.Department),
		College:    normaliseText(r.College),
		Reviews:    strings.TrimSpace(r.Reviews),
	}

	tags, err := DecodeTags(r.Tags)
	if err != nil {
		return p, 0, &models.MalformedRecordError{Row: r.Row, Column: models.ColTags, Value: r.Tags, Err: err}
	}
	p.Tags = tags

	gaps := 0
	fields := []struct {
		col string
		raw string
		dst *float64
	}{
		{models.ColAverageRating, r.AverageRating, &p.AverageRating},
		{models.ColNumRatings, r.NumRatings, &p.NumRatings},
		{models.ColWouldTakeAgain, r.WouldTakeAgain, &p.WouldTakeAgain},
		{models.ColDifficulty, r.Difficulty, &p.Difficulty},
		{models.ColSentiment, r.Sentiment, &p.SentimentScore},
	}
	for _, f := range fields {
		v, err := ParseNumber(f.raw)
		if err != nil {
			return p, 0, &models.MalformedRecordError{Row: r.Row, Column: f.col, Value: f.raw, Err: err}
		}
		if math.IsNaN(v) && f.col != models.ColSentiment {
			gaps++
		}
		*f.dst = v
	}
	return p, gaps, nil
}

// ParseNumber coerces a numeric cell. An empty cell is a missing value
// and yields NaN; any other non-numeric text is an error.
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotNumber
	}
	return v, nil
}

var (
	errBadList   = errors.New("not a list literal")
	errNotNumber = errors.New("not a number")
)

// DecodeTags decodes a serialized list of strings. JSON arrays are accepted,
// as are Python-style list literals with single-quoted items such as
// ['Caring', "Tough grader"]. An empty cell decodes to an empty list.
func DecodeTags(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []string{}, nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err == nil {
		if tags == nil {
			// JSON null
			return nil, errBadList
		}
		return tags, nil
	}
	return decodeListLiteral(s)
}

// decodeListLiteral parses a Python list literal containing only string
// items.
func decodeListLiteral(s string) ([]string, error) {
	sc := &literalScanner{src: s}
	sc.skipSpace()
	if !sc.consume('[') {
		return nil, errBadList
	}

	tags := []string{}
	for {
		sc.skipSpace()
		if sc.consume(']') {
			break
		}
		item, err := sc.quoted()
		if err != nil {
			return nil, err
		}
		tags = append(tags, item)

		sc.skipSpace()
		if sc.consume(',') {
			continue
		}
		if sc.consume(']') {
			break
		}
		return nil, fmt.Errorf("%w: expected ',' or ']' at offset %d", errBadList, sc.pos)
	}

	sc.skipSpace()
	if sc.pos != len(sc.src) {
		return nil, fmt.Errorf("%w: trailing data at offset %d", errBadList, sc.pos)
	}
	return tags, nil
}

type literalScanner struct {
	src string
	pos int
}

func (sc *literalScanner) skipSpace() {
	for sc.pos < len(sc.src) && unicode.IsSpace(rune(sc.src[sc.pos])) {
		sc.pos++
	}
}

func (sc *literalScanner) consume(c byte) bool {
	if sc.pos < len(sc.src) && sc.src[sc.pos] == c {
		sc.pos++
		return true
	}
	return false
}

func (sc *literalScanner) quoted() (string, error) {
	if sc.pos >= len(sc.src) {
		return "", fmt.Errorf("%w: unexpected end", errBadList)
	}
	quote := sc.src[sc.pos]
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("%w: expected quoted item at offset %d", errBadList, sc.pos)
	}
	sc.pos++

	var b strings.Builder
	for sc.pos < len(sc.src) {
		c := sc.src[sc.pos]
		sc.pos++
		switch {
		case c == quote:
			return b.String(), nil
		case c == '\\':
			if sc.pos >= len(sc.src) {
				return "", fmt.Errorf("%w: dangling escape", errBadList)
			}
			e := sc.src[sc.pos]
			sc.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '\'', '"':
				b.WriteByte(e)
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("%w: unterminated string", errBadList)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
