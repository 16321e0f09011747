package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Metric names one of the numeric professor attributes shown on the heatmap.
type Metric int

const (
	AverageRating Metric = iota
	NumRatings
	WouldTakeAgain
	Difficulty
)

// AllMetrics is the fixed heatmap metric set, in display order.
var AllMetrics = []Metric{AverageRating, NumRatings, WouldTakeAgain, Difficulty}

// String returns the source column header for the metric.
func (m Metric) String() string {
	switch m {
	case AverageRating:
		return ColAverageRating
	case NumRatings:
		return ColNumRatings
	case WouldTakeAgain:
		return ColWouldTakeAgain
	case Difficulty:
		return ColDifficulty
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

func (m Metric) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Metric) UnmarshalText(b []byte) error {
	for _, cand := range AllMetrics {
		if cand.String() == string(b) {
			*m = cand
			return nil
		}
	}
	return fmt.Errorf("unknown metric %q", b)
}

// Number is a float64 that encodes NaN and infinities as JSON null.
type Number float64

// IsNaN reports whether the value is missing.
func (n Number) IsNaN() bool { return math.IsNaN(float64(n)) }

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// TagKey identifies one tag-frequency bucket.
type TagKey struct {
	Tag        string `json:"tag" yaml:"tag"`
	College    string `json:"college" yaml:"college"`
	Department string `json:"department" yaml:"department"`
}

// TagCount is one row of the tag-frequency view.
type TagCount struct {
	TagKey `yaml:",inline"`
	Count  int `json:"count" yaml:"count"`
}

// MetricPoint is one (record, metric) row of the melted heatmap data.
type MetricPoint struct {
	Department string `json:"department" yaml:"department"`
	College    string `json:"college" yaml:"college"`
	Metric     Metric `json:"metric" yaml:"metric"`
	Value      Number `json:"value" yaml:"value"`
}

// Histogram holds counts for equal-width bins over [Min, Max].
type Histogram struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Bins []int   `json:"bins" yaml:"bins"`
}

// Width returns the width of a single bin.
func (h Histogram) Width() float64 {
	if len(h.Bins) == 0 {
		return 0
	}
	return (h.Max - h.Min) / float64(len(h.Bins))
}

// Labels returns the lower edge of every bin, with one decimal.
func (h Histogram) Labels() []string {
	labels := make([]string, len(h.Bins))
	w := h.Width()
	for i := range h.Bins {
		labels[i] = fmt.Sprintf("%.1f", h.Min+float64(i)*w)
	}
	return labels
}

// Total returns the number of binned values.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h.Bins {
		n += c
	}
	return n
}

// CorrelationResult is the Pearson r between difficulty and rating for one
// group. R is NaN when the group has no variance.
type CorrelationResult struct {
	College string `json:"college" yaml:"college"`
	R       Number `json:"r" yaml:"r"`
	N       int    `json:"n" yaml:"n"`
}

// HasTrend reports whether R is a usable number.
func (c CorrelationResult) HasTrend() bool { return !c.R.IsNaN() }

// WordWeight is one entry of the word cloud.
type WordWeight struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Comment is a truncated review shown in the comment list.
type Comment struct {
	Professor  string `json:"professor" yaml:"professor"`
	Department string `json:"department" yaml:"department"`
	Text       string `json:"text" yaml:"text"`
}

// ScatterPoint is one professor on the difficulty/rating scatter plot.
type ScatterPoint struct {
	Professor  string `json:"professor" yaml:"professor"`
	College    string `json:"college" yaml:"college"`
	Difficulty Number `json:"difficulty" yaml:"difficulty"`
	Rating     Number `json:"rating" yaml:"rating"`
}

// ScatterView carries the scatter points and the per-college correlations
// computed over the same points.
type ScatterView struct {
	Points       []ScatterPoint      `json:"points" yaml:"points"`
	Correlations []CorrelationResult `json:"correlations" yaml:"correlations"`
}

// SentimentPoint is one professor on the sentiment/rating scatter plot.
type SentimentPoint struct {
	Professor string `json:"professor" yaml:"professor"`
	College   string `json:"college" yaml:"college"`
	Sentiment Number `json:"sentiment" yaml:"sentiment"`
	Rating    Number `json:"rating" yaml:"rating"`
}

// CollegeAverage is the mean sentiment and rating for one college.
type CollegeAverage struct {
	College   string `json:"college" yaml:"college"`
	Sentiment Number `json:"sentiment" yaml:"sentiment"`
	Rating    Number `json:"rating" yaml:"rating"`
	N         int    `json:"n" yaml:"n"`
}

// Extent is a closed numeric range used for axis scaling.
type Extent struct {
	Min Number `json:"min" yaml:"min"`
	Max Number `json:"max" yaml:"max"`
}

// SentimentView holds both sentiment scatter plots.
type SentimentView struct {
	Points          []SentimentPoint `json:"points" yaml:"points"`
	Averages        []CollegeAverage `json:"averages" yaml:"averages"`
	SentimentExtent Extent           `json:"sentiment_extent" yaml:"sentiment_extent"`
	RatingExtent    Extent           `json:"rating_extent" yaml:"rating_extent"`
}

// DashboardView is every derived view for one selection.
type DashboardView struct {
	College   string         `json:"college" yaml:"college"`
	Records   int            `json:"records" yaml:"records"`
	Tags      []TagCount     `json:"tags" yaml:"tags"`
	Heatmap   []MetricPoint  `json:"heatmap" yaml:"heatmap"`
	Histogram Histogram      `json:"histogram" yaml:"histogram"`
	Scatter   ScatterView    `json:"scatter" yaml:"scatter"`
	WordCloud []WordWeight   `json:"wordcloud" yaml:"wordcloud"`
	Comments  []Comment      `json:"comments" yaml:"comments"`
	Sentiment *SentimentView `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
}
