package services

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"rmp-dashboard/config"
	"rmp-dashboard/models"
	"rmp-dashboard/utils"
)

// DashboardOptions tunes the derived views.
type DashboardOptions struct {
	HistogramBins int
	HistogramMin  float64
	HistogramMax  float64
	CommentMaxLen int
	Scatter       ScatterFilter
	Concurrency   int
}

// DefaultDashboardOptions matches the stock dashboard layout.
func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{
		HistogramBins: 10,
		HistogramMin:  0,
		HistogramMax:  5,
		CommentMaxLen: 100,
		Scatter: ScatterFilter{
			MinRatings:       5,
			ExcludedColleges: []string{"Unknown", "School of Law"},
		},
		Concurrency: 4,
	}
}

// OptionsFromConfig maps configuration onto DashboardOptions.
func OptionsFromConfig(cfg *config.Config) DashboardOptions {
	opts := DefaultDashboardOptions()
	opts.HistogramBins = cfg.HistogramBins
	opts.CommentMaxLen = cfg.CommentMaxLen
	opts.Scatter = ScatterFilter{
		MinRatings:       cfg.ScatterMinRatings,
		ExcludedColleges: cfg.ScatterExcludedColleges,
	}
	opts.Concurrency = cfg.MaxConcurrency
	return opts
}

// ViewObserver is notified of the time each derivation took. The web
// server uses it for metrics.
type ViewObserver func(view string, d time.Duration)

// DashboardService derives every dashboard view from a dataset.
type DashboardService struct {
	logger   *utils.Logger
	opts     DashboardOptions
	observer ViewObserver
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(logger *utils.Logger, opts DashboardOptions) *DashboardService {
	return &DashboardService{logger: logger, opts: opts}
}

// Observe installs fn as the timing observer.
func (s *DashboardService) Observe(fn ViewObserver) { s.observer = fn }

// Options returns the options the service was built with.
func (s *DashboardService) Options() DashboardOptions { return s.opts }

// Generate computes the full view for college ("" means every college).
// The derivations are independent and run concurrently; each writes its
// own field of the view.
func (s *DashboardService) Generate(ds *models.Dataset, college string) *models.DashboardView {
	records := Filter(ds.Records(), college)
	view := &models.DashboardView{College: college, Records: len(records)}

	pool := utils.NewWorkerPool(s.opts.Concurrency, 0)
	s.run(pool, "tags", func() { view.Tags = TagCounts(records) })
	s.run(pool, "heatmap", func() { view.Heatmap = Melt(records, models.AllMetrics) })
	s.run(pool, "histogram", func() {
		view.Histogram = RatingHistogram(records, s.opts.HistogramBins, s.opts.HistogramMin, s.opts.HistogramMax)
	})
	s.run(pool, "scatter", func() {
		// Scatter applies its own eligibility filter before the selection.
		view.Scatter = Scatter(ds.Records(), s.opts.Scatter, college)
	})
	s.run(pool, "wordcloud", func() { view.WordCloud = WordWeights(WordFrequency(records)) })
	s.run(pool, "comments", func() { view.Comments = Comments(records, s.opts.CommentMaxLen) })
	s.run(pool, "sentiment", func() { view.Sentiment = Sentiment(records) })
	if err := pool.Wait(); err != nil {
		s.logger.Error("[dashboard] View for %q incomplete: %v", displayCollege(college), err)
	}

	s.logger.Debug("[dashboard] Generated view for %q over %d records", displayCollege(college), len(records))
	return view
}

// run builds one view on the pool. A panicking builder leaves its field
// empty and surfaces as an error from pool.Wait.
func (s *DashboardService) run(pool *utils.WorkerPool, name string, fn func()) {
	pool.SubmitErr(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s view: %v", name, r)
			}
		}()
		start := time.Now()
		fn()
		if s.observer != nil {
			s.observer(name, time.Since(start))
		}
		return nil
	})
}

func displayCollege(c string) string {
	if c == "" {
		return "All colleges"
	}
	return c
}

var (
	headerColor = color.New(color.FgMagenta, color.Bold)
	titleColor  = color.New(color.FgYellow, color.Bold)
	boldColor   = color.New(color.Bold)
	goodColor   = color.New(color.FgGreen, color.Bold)
	badColor    = color.New(color.FgRed, color.Bold)
)

// Print writes a terminal report of view to w. topTags bounds the tag list.
func (s *DashboardService) Print(w io.Writer, v *models.DashboardView, topTags int) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint(sep))
	fmt.Fprintf(w, "%s\n", headerColor.Sprintf("  PROFESSOR RATINGS: %s", strings.ToUpper(displayCollege(v.College))))
	fmt.Fprintf(w, "%s\n\n", headerColor.Sprint(sep))

	section := func(title string) {
		fmt.Fprintf(w, "%s\n", titleColor.Sprintf("  %s", title))
		fmt.Fprintf(w, "  %s\n", thin)
	}

	section("Overview")
	fmt.Fprintf(w, "  Professors       : %s\n", boldColor.Sprint(v.Records))
	fmt.Fprintf(w, "  Distinct tags    : %s\n", boldColor.Sprint(len(v.WordCloud)))
	fmt.Fprintf(w, "  Scatter points   : %s\n", boldColor.Sprint(len(v.Scatter.Points)))
	fmt.Fprintln(w)

	section(fmt.Sprintf("Top %d Tags", topTags))
	top := TopTags(v.Tags, topTags)
	if len(top) == 0 {
		fmt.Fprintf(w, "  No tags found\n")
	}
	for i, t := range top {
		fmt.Fprintf(w, "  %s %-36s %s\n", boldColor.Sprintf("%2d.", i+1), truncate(t.Word, 36), goodColor.Sprint(t.Count))
	}
	fmt.Fprintln(w)

	section("Average Rating Distribution")
	h := v.Histogram
	if h.Total() == 0 {
		fmt.Fprintf(w, "  No ratings in range\n")
	} else {
		labels := h.Labels()
		for i, c := range h.Bins {
			fmt.Fprintf(w, "  %4s-%-4.1f %s (%d)\n", labels[i], h.Min+float64(i+1)*h.Width(), strings.Repeat("█", c), c)
		}
	}
	fmt.Fprintln(w)

	section("Difficulty vs Rating (Pearson r)")
	if len(v.Scatter.Correlations) == 0 {
		fmt.Fprintf(w, "  No eligible professors\n")
	}
	corrs := append([]models.CorrelationResult(nil), v.Scatter.Correlations...)
	sort.Slice(corrs, func(i, j int) bool { return corrs[i].College < corrs[j].College })
	for _, c := range corrs {
		r := "n/a (no variance)"
		if c.HasTrend() {
			col := goodColor
			if c.R < 0 {
				col = badColor
			}
			r = col.Sprintf("R = %+.2f", float64(c.R))
		}
		fmt.Fprintf(w, "  %-36s %s  (n=%d)\n", truncate(c.College, 36), r, c.N)
	}
	fmt.Fprintln(w)

	if v.Sentiment != nil {
		section("Sentiment by College")
		for _, a := range v.Sentiment.Averages {
			fmt.Fprintf(w, "  %-36s sentiment %6.2f  rating %4.2f\n",
				truncate(a.College, 36), float64(a.Sentiment), float64(a.Rating))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\n\n", headerColor.Sprint(sep))
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return truncateRunes(s, max-3) + "..."
}
