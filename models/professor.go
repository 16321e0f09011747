package models

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Source column headers of the ratings dataset.
const (
	ColFirstName      = "First Name"
	ColLastName       = "Last Name"
	ColDepartment     = "Department"
	ColCollege        = "NEU_Colleges"
	ColAverageRating  = "Average Rating (Out of 5)"
	ColNumRatings     = "Number of Ratings"
	ColWouldTakeAgain = "Would Take Again (Percent)"
	ColDifficulty     = "Level of Difficulty (Out of 5)"
	ColReviews        = "Reviews"
	ColTags           = "Popular Tags"
	ColSentiment      = "Sentiment Score"
)

// RequiredColumns lists the headers every source must carry.
var RequiredColumns = []string{
	ColFirstName, ColLastName, ColDepartment, ColCollege,
	ColAverageRating, ColNumRatings, ColWouldTakeAgain, ColDifficulty,
	ColReviews, ColTags,
}

// RawProfessor holds one unprocessed row exactly as it was read from the
// source. Row is the 1-based data row number (header excluded).
type RawProfessor struct {
	Row            int
	FirstName      string
	LastName       string
	Department     string
	College        string
	AverageRating  string
	NumRatings     string
	WouldTakeAgain string
	Difficulty     string
	Reviews        string
	Tags           string
	Sentiment      string
}

// Professor is a normalized, fully typed record. Missing numeric values
// are NaN.
type Professor struct {
	FirstName      string
	LastName       string
	Department     string
	College        string
	AverageRating  float64
	NumRatings     float64
	WouldTakeAgain float64
	Difficulty     float64
	Reviews        string
	Tags           []string
	SentimentScore float64
}

// FullName joins first and last name.
func (p Professor) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Value returns the numeric attribute backing m, or NaN for an unknown
// metric.
func (p Professor) Value(m Metric) float64 {
	switch m {
	case AverageRating:
		return p.AverageRating
	case NumRatings:
		return p.NumRatings
	case WouldTakeAgain:
		return p.WouldTakeAgain
	case Difficulty:
		return p.Difficulty
	}
	return math.NaN()
}

// Dataset is the record set produced by a single load. It is never
// modified after construction, so it can be shared between goroutines.
type Dataset struct {
	records  []Professor
	colleges []string
}

// NewDataset takes ownership of records.
func NewDataset(records []Professor) *Dataset {
	seen := make(map[string]struct{})
	var colleges []string
	for _, r := range records {
		if _, ok := seen[r.College]; ok {
			continue
		}
		seen[r.College] = struct{}{}
		colleges = append(colleges, r.College)
	}
	sort.Strings(colleges)
	return &Dataset{records: records, colleges: colleges}
}

// Records returns a copy of the record slice. Tag slices are shared and
// must be treated as read-only.
func (d *Dataset) Records() []Professor {
	return slices.Clone(d.records)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Colleges returns the distinct college values in sorted order.
func (d *Dataset) Colleges() []string {
	return slices.Clone(d.colleges)
}

// HasCollege reports whether any record belongs to college.
func (d *Dataset) HasCollege(college string) bool {
	_, found := slices.BinarySearch(d.colleges, college)
	return found
}

// MalformedRecordError reports a row that could not be decoded or coerced.
type MalformedRecordError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed source: column %q: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("malformed record at row %d: column %q value %q: %v",
		e.Row, e.Column, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }
