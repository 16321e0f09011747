package services

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"rmp-dashboard/models"
)

// Filter returns the records whose college equals college, in their
// original order. An empty college selects everything. The input slice is
// never modified; the result is always a fresh slice.
func Filter(records []models.Professor, college string) []models.Professor {
	if college == "" {
		out := make([]models.Professor, len(records))
		copy(out, records)
		return out
	}
	out := make([]models.Professor, 0)
	for _, r := range records {
		if r.College == college {
			out = append(out, r)
		}
	}
	return out
}

// AggregateTags counts tag occurrences per (tag, college, department).
// Every key with at least one occurrence is present.
func AggregateTags(records []models.Professor) map[models.TagKey]int {
	counts := make(map[models.TagKey]int)
	for _, r := range records {
		for _, tag := range r.Tags {
			counts[models.TagKey{Tag: tag, College: r.College, Department: r.Department}]++
		}
	}
	return counts
}

// TagCounts flattens AggregateTags into a slice ordered by count
// descending, then by tag, college and department.
func TagCounts(records []models.Professor) []models.TagCount {
	counts := AggregateTags(records)
	out := make([]models.TagCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, models.TagCount{TagKey: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Tag != b.Tag {
			return a.Tag < b.Tag
		}
		if a.College != b.College {
			return a.College < b.College
		}
		return a.Department < b.Department
	})
	return out
}

// TopTags returns the n most frequent tags summed across colleges and
// departments. A non-positive n returns every tag.
func TopTags(counts []models.TagCount, n int) []models.WordWeight {
	totals := make(map[string]int)
	for _, c := range counts {
		totals[c.Tag] += c.Count
	}
	out := WordWeights(totals)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Melt reshapes records into one MetricPoint per (record, metric), record
// major. Values are copied as-is, including NaN.
func Melt(records []models.Professor, metrics []models.Metric) []models.MetricPoint {
	out := make([]models.MetricPoint, 0, len(records)*len(metrics))
	for _, r := range records {
		for _, m := range metrics {
			out = append(out, models.MetricPoint{
				Department: r.Department,
				College:    r.College,
				Metric:     m,
				Value:      models.Number(r.Value(m)),
			})
		}
	}
	return out
}

// HistogramOf counts values into binCount equal-width bins spanning the
// closed interval [min, max]. A value equal to max lands in the last bin.
// Values outside the interval and NaN are skipped. The result always has
// binCount entries; a degenerate range leaves them all zero.
func HistogramOf(values []float64, binCount int, min, max float64) []int {
	if binCount <= 0 {
		return []int{}
	}
	bins := make([]int, binCount)
	if !(max > min) {
		return bins
	}

	width := (max - min) / float64(binCount)
	for _, v := range values {
		if !(v >= min && v <= max) {
			continue
		}
		i := int(math.Floor((v - min) / width))
		if i >= binCount {
			i = binCount - 1
		}
		bins[i]++
	}
	return bins
}

// RatingHistogram bins average ratings over [min, max].
func RatingHistogram(records []models.Professor, binCount int, min, max float64) models.Histogram {
	ratings := make([]float64, len(records))
	for i, r := range records {
		ratings[i] = r.AverageRating
	}
	return models.Histogram{Min: min, Max: max, Bins: HistogramOf(ratings, binCount, min, max)}
}

// WordFrequency counts tag occurrences across all records, case-sensitively.
// It returns an empty map for empty input.
func WordFrequency(records []models.Professor) map[string]int {
	freq := make(map[string]int)
	for _, r := range records {
		for _, tag := range r.Tags {
			freq[tag]++
		}
	}
	return freq
}

// WordWeights orders a frequency map by count descending, then word.
func WordWeights(freq map[string]int) []models.WordWeight {
	out := make([]models.WordWeight, 0, len(freq))
	for w, c := range freq {
		out = append(out, models.WordWeight{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// Comments returns one entry per record with its review cut to maxLen
// runes. A non-positive maxLen keeps reviews whole.
func Comments(records []models.Professor, maxLen int) []models.Comment {
	out := make([]models.Comment, len(records))
	for i, r := range records {
		out[i] = models.Comment{
			Professor:  r.FullName(),
			Department: r.Department,
			Text:       truncateRunes(r.Reviews, maxLen),
		}
	}
	return out
}

// ScatterFilter selects the records eligible for the difficulty/rating
// scatter plot.
type ScatterFilter struct {
	MinRatings       float64
	ExcludedColleges []string
}

// Keep reports whether r has enough ratings, both plotted values and a
// college free of every excluded substring.
func (f ScatterFilter) Keep(r models.Professor) bool {
	if !(r.NumRatings >= f.MinRatings) {
		return false
	}
	if math.IsNaN(r.Difficulty) || math.IsNaN(r.AverageRating) {
		return false
	}
	for _, ex := range f.ExcludedColleges {
		if strings.Contains(r.College, ex) {
			return false
		}
	}
	return true
}

// Scatter builds the difficulty/rating scatter for the records passing f
// (and the college selection), with one correlation per college over the
// same points.
func Scatter(records []models.Professor, f ScatterFilter, college string) models.ScatterView {
	var kept []models.Professor
	for _, r := range records {
		if f.Keep(r) {
			kept = append(kept, r)
		}
	}
	kept = Filter(kept, college)

	points := make([]models.ScatterPoint, len(kept))
	for i, r := range kept {
		points[i] = models.ScatterPoint{
			Professor:  r.FullName(),
			College:    r.College,
			Difficulty: models.Number(r.Difficulty),
			Rating:     models.Number(r.AverageRating),
		}
	}
	return models.ScatterView{
		Points:       points,
		Correlations: CorrelateByGroup(kept, ByCollege),
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
