package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"rmp-dashboard/models"
	"rmp-dashboard/services"
)

// selection reads the college query parameter. An absent or empty value
// selects every college; an unknown college yields empty views.
func selection(r *http.Request) string {
	return r.URL.Query().Get("college")
}

// records returns the filtered records for the request's selection.
func (s *Server) records(r *http.Request) []models.Professor {
	return services.Filter(s.dataset.Records(), selection(r))
}

// positiveParam parses an optional positive integer query parameter.
// A positive limit caps the accepted value.
func positiveParam(r *http.Request, name string, def, limit int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	if limit > 0 && n > limit {
		return 0, fmt.Errorf("%s must be at most %d, got %d", name, limit, n)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// listColleges returns the distinct colleges and the initial selection.
func (s *Server) listColleges(w http.ResponseWriter, r *http.Request) {
	colleges := s.dataset.Colleges()
	initial := ""
	if len(colleges) > 0 {
		initial = colleges[0]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"colleges": colleges,
		"initial":  initial,
		"count":    len(colleges),
	})
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dashboard.Generate(s.dataset, selection(r)))
}

func (s *Server) getTags(w http.ResponseWriter, r *http.Request) {
	top, err := positiveParam(r, "top", s.cfg.TopTags, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	counts := services.TagCounts(s.records(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"college": selection(r),
		"counts":  counts,
		"top":     services.TopTags(counts, top),
	})
}

func (s *Server) getHeatmap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"college": selection(r),
		"metrics": models.AllMetrics,
		"points":  services.Melt(s.records(r), models.AllMetrics),
	})
}

func (s *Server) getHistogram(w http.ResponseWriter, r *http.Request) {
	opts := s.dashboard.Options()
	bins, err := positiveParam(r, "bins", opts.HistogramBins, s.cfg.MaxHistogramBins)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h := services.RatingHistogram(s.records(r), bins, opts.HistogramMin, opts.HistogramMax)
	writeJSON(w, http.StatusOK, map[string]any{
		"college":   selection(r),
		"histogram": h,
		"labels":    h.Labels(),
	})
}

func (s *Server) getScatter(w http.ResponseWriter, r *http.Request) {
	view := services.Scatter(s.dataset.Records(), s.dashboard.Options().Scatter, selection(r))
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getWordCloud(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"college": selection(r),
		"words":   services.WordWeights(services.WordFrequency(s.records(r))),
	})
}

func (s *Server) getComments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"college":  selection(r),
		"comments": services.Comments(s.records(r), s.dashboard.Options().CommentMaxLen),
	})
}

func (s *Server) getSentiment(w http.ResponseWriter, r *http.Request) {
	view := services.Sentiment(s.records(r))
	if view == nil {
		writeError(w, http.StatusNotFound, errors.New("no sentiment scores in the dataset"))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// getSentimentFragment serves the secondary HTML document verbatim.
func (s *Server) getSentimentFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.fragment))
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"records":  s.dataset.Len(),
		"colleges": len(s.dataset.Colleges()),
	})
}
