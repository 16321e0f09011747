package services

import (
	"bytes"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmp-dashboard/models"
	"rmp-dashboard/utils"
)

func TestDashboardGenerateAllColleges(t *testing.T) {
	svc := NewDashboardService(newTestLogger(), DefaultDashboardOptions())
	ds := models.NewDataset(sampleProfessors())

	v := svc.Generate(ds, "")
	assert.Equal(t, "", v.College)
	assert.Equal(t, 5, v.Records)
	assert.Len(t, v.Heatmap, 5*len(models.AllMetrics))
	assert.Len(t, v.Histogram.Bins, 10)
	assert.Equal(t, 5, v.Histogram.Total())
	assert.Len(t, v.Comments, 5)
	assert.Len(t, v.Scatter.Points, 3)
	assert.Equal(t, "Caring", v.WordCloud[0].Word)
}

func TestDashboardGenerateSelectedCollege(t *testing.T) {
	svc := NewDashboardService(newTestLogger(), DefaultDashboardOptions())
	ds := models.NewDataset(sampleProfessors())

	v := svc.Generate(ds, "College of Science")
	assert.Equal(t, 3, v.Records)
	assert.Len(t, v.Heatmap, 3*len(models.AllMetrics))
	for _, tc := range v.Tags {
		assert.Equal(t, "College of Science", tc.College)
	}
	require.Len(t, v.Scatter.Correlations, 1)
}

func TestDashboardGenerateUnknownCollege(t *testing.T) {
	svc := NewDashboardService(newTestLogger(), DefaultDashboardOptions())
	v := svc.Generate(models.NewDataset(sampleProfessors()), "Nonexistent")

	assert.Equal(t, 0, v.Records)
	assert.Empty(t, v.Tags)
	assert.Empty(t, v.Heatmap)
	assert.Empty(t, v.WordCloud)
	assert.Empty(t, v.Scatter.Points)
	assert.Equal(t, 0, v.Histogram.Total())
}

func TestDashboardObserver(t *testing.T) {
	svc := NewDashboardService(newTestLogger(), DefaultDashboardOptions())

	var mu sync.Mutex
	seen := map[string]bool{}
	svc.Observe(func(view string, _ time.Duration) {
		mu.Lock()
		seen[view] = true
		mu.Unlock()
	})
	svc.Generate(models.NewDataset(sampleProfessors()), "")

	for _, name := range []string{"tags", "heatmap", "histogram", "scatter", "wordcloud", "comments", "sentiment"} {
		assert.True(t, seen[name], "observer not called for %s", name)
	}
}

func TestDashboardGenerateLogsFailedView(t *testing.T) {
	var logs bytes.Buffer
	svc := NewDashboardService(utils.NewLoggerWithWriter(&logs, "info"), DefaultDashboardOptions())
	svc.Observe(func(view string, _ time.Duration) {
		if view == "tags" {
			panic("boom")
		}
	})

	v := svc.Generate(models.NewDataset(sampleProfessors()), "")
	assert.Equal(t, 5, v.Records)
	assert.NotEmpty(t, v.Heatmap, "other views still built")
	assert.Contains(t, logs.String(), "incomplete")
	assert.Contains(t, logs.String(), "tags view: boom")
}

func TestDashboardPrint(t *testing.T) {
	svc := NewDashboardService(newTestLogger(), DefaultDashboardOptions())
	v := svc.Generate(models.NewDataset(sampleProfessors()), "")

	var buf bytes.Buffer
	svc.Print(&buf, v, 3)
	out := buf.String()

	assert.Contains(t, out, "ALL COLLEGES")
	assert.Contains(t, out, "Top 3 Tags")
	assert.Contains(t, out, "Caring")
	assert.Contains(t, out, "College of Science")
	assert.Contains(t, out, "R = ")
}

func TestDashboardPrintNoVariance(t *testing.T) {
	svc := NewDashboardService(newTestLogger(), DefaultDashboardOptions())
	v := &models.DashboardView{
		College: "X",
		Scatter: models.ScatterView{Correlations: []models.CorrelationResult{
			{College: "X", R: models.Number(math.NaN()), N: 1},
		}},
	}

	var buf bytes.Buffer
	svc.Print(&buf, v, 5)
	assert.Contains(t, buf.String(), "n/a (no variance)")
	assert.Contains(t, buf.String(), "No tags found")
}

func TestTruncateCountsRunes(t *testing.T) {
	accented := strings.Repeat("é", 36)
	assert.Equal(t, accented, truncate(accented, 36))

	got := truncate(strings.Repeat("é", 40), 36)
	assert.Equal(t, strings.Repeat("é", 33)+"...", got)
	assert.Equal(t, "short", truncate("short", 36))
}
