package services

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"rmp-dashboard/models"
)

// Correlate returns the Pearson correlation coefficient of xs and ys.
//
// The result is NaN when the inputs are empty, differ in length, or either
// has zero variance. Callers must treat NaN as "no trend" rather than 0.
func Correlate(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) || constant(xs) || constant(ys) {
		return math.NaN()
	}
	mx, my := stats.Mean(xs), stats.Mean(ys)

	var cov, sx, sy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		sx += dx * dx
		sy += dy * dy
	}
	den := math.Sqrt(sx) * math.Sqrt(sy)
	if den == 0 {
		return math.NaN()
	}
	r := cov / den
	// Rounding can push |r| a hair past 1.
	return math.Max(-1, math.Min(1, r))
}

// constant reports whether every element equals the first.
func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// ByCollege is the usual grouping key for CorrelateByGroup.
func ByCollege(p models.Professor) string { return p.College }

// CorrelateByGroup computes the difficulty/rating correlation for every
// distinct key in records, in first-seen key order.
func CorrelateByGroup(records []models.Professor, key func(models.Professor) string) []models.CorrelationResult {
	type group struct{ xs, ys []float64 }

	var order []string
	groups := make(map[string]*group)
	for _, r := range records {
		k := key(r)
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.xs = append(g.xs, r.Difficulty)
		g.ys = append(g.ys, r.AverageRating)
	}

	out := make([]models.CorrelationResult, 0, len(order))
	for _, k := range order {
		g := groups[k]
		out = append(out, models.CorrelationResult{
			College: k,
			R:       models.Number(Correlate(g.xs, g.ys)),
			N:       len(g.xs),
		})
	}
	return out
}

// Sentiment builds the sentiment/rating scatter and per-college averages
// from records that carry a sentiment score. It returns nil when none do.
func Sentiment(records []models.Professor) *models.SentimentView {
	var points []models.SentimentPoint
	var order []string
	bySentiment := make(map[string][]float64)
	byRating := make(map[string][]float64)

	for _, r := range records {
		if math.IsNaN(r.SentimentScore) || math.IsNaN(r.AverageRating) {
			continue
		}
		points = append(points, models.SentimentPoint{
			Professor: r.FullName(),
			College:   r.College,
			Sentiment: models.Number(r.SentimentScore),
			Rating:    models.Number(r.AverageRating),
		})
		if _, seen := bySentiment[r.College]; !seen {
			order = append(order, r.College)
		}
		bySentiment[r.College] = append(bySentiment[r.College], r.SentimentScore)
		byRating[r.College] = append(byRating[r.College], r.AverageRating)
	}
	if len(points) == 0 {
		return nil
	}

	view := &models.SentimentView{Points: points}
	var allS, allR []float64
	for _, c := range order {
		s, rt := bySentiment[c], byRating[c]
		view.Averages = append(view.Averages, models.CollegeAverage{
			College:   c,
			Sentiment: models.Number(stats.Mean(s)),
			Rating:    models.Number(stats.Mean(rt)),
			N:         len(s),
		})
		allS = append(allS, s...)
		allR = append(allR, rt...)
	}
	view.SentimentExtent = extent(allS)
	view.RatingExtent = extent(allR)
	return view
}

func extent(xs []float64) models.Extent {
	if len(xs) == 0 {
		return models.Extent{Min: models.Number(math.NaN()), Max: models.Number(math.NaN())}
	}
	lo, hi := stats.Bounds(xs)
	return models.Extent{Min: models.Number(lo), Max: models.Number(hi)}
}
