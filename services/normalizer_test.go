package services

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmp-dashboard/models"
	"rmp-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func rawRow(row int) *models.RawProfessor {
	return &models.RawProfessor{
		Row:            row,
		FirstName:      " Ada ",
		LastName:       "Lovelace",
		Department:     "Computer  Science",
		College:        "Khoury College of Computer Sciences",
		AverageRating:  "4.5",
		NumRatings:     "12",
		WouldTakeAgain: "90",
		Difficulty:     "3.2",
		Reviews:        "  Great lecturer.  ",
		Tags:           `["Caring", "Tough grader"]`,
	}
}

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["A", "B"]`, []string{"A", "B"}},
		{`[]`, []string{}},
		{``, []string{}},
		{`   `, []string{}},
		{`['Caring', 'Tough grader']`, []string{"Caring", "Tough grader"}},
		{`['Respected', "Don't skip class"]`, []string{"Respected", "Don't skip class"}},
		{`['It\'s fine',]`, []string{"It's fine"}},
	}

	for _, tt := range tests {
		got, err := DecodeTags(tt.raw)
		if !assert.NoError(t, err, "DecodeTags(%q)", tt.raw) {
			continue
		}
		assert.Equal(t, tt.want, got, "DecodeTags(%q)", tt.raw)
	}
}

func TestDecodeTagsRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		`Caring, Tough grader`,
		`["A", 1]`,
		`null`,
		`['unterminated]`,
		`['a' 'b']`,
		`['a'] extra`,
		`{"a": 1}`,
	} {
		_, err := DecodeTags(raw)
		assert.Error(t, err, "DecodeTags(%q) should fail", raw)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"4.85", 4.85},
		{" 5 ", 5},
		{"0", 0},
		{"100.0", 100},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.raw)
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}

	v, err := ParseNumber("")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v), "empty cell should be a missing value")

	_, err = ParseNumber("N/A")
	assert.Error(t, err)
}

func TestNormalizeTypesRecords(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	ds, err := n.Normalize([]*models.RawProfessor{rawRow(1)})
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	p := ds.Records()[0]
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "Computer Science", p.Department)
	assert.Equal(t, "Great lecturer.", p.Reviews)
	assert.Equal(t, 4.5, p.AverageRating)
	assert.Equal(t, 12.0, p.NumRatings)
	assert.Equal(t, 90.0, p.WouldTakeAgain)
	assert.Equal(t, 3.2, p.Difficulty)
	assert.Equal(t, []string{"Caring", "Tough grader"}, p.Tags)
	assert.True(t, math.IsNaN(p.SentimentScore))
}

func TestNormalizeRejectsBadTags(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	bad := rawRow(2)
	bad.Tags = `[Caring`

	ds, err := n.Normalize([]*models.RawProfessor{rawRow(1), bad, rawRow(3)})
	assert.Nil(t, ds, "no partial dataset on failure")

	var mre *models.MalformedRecordError
	require.True(t, errors.As(err, &mre), "want MalformedRecordError, got %v", err)
	assert.Equal(t, 2, mre.Row)
	assert.Equal(t, models.ColTags, mre.Column)
}

func TestNormalizeRejectsNonNumeric(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	bad := rawRow(1)
	bad.Difficulty = "hard"

	_, err := n.Normalize([]*models.RawProfessor{bad})
	var mre *models.MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, models.ColDifficulty, mre.Column)
	assert.Equal(t, "hard", mre.Value)
	assert.ErrorIs(t, err, errNotNumber)
}

func TestNormalizeKeepsMissingAsNaN(t *testing.T) {
	n := NewNormalizer(newTestLogger())
	r := rawRow(1)
	r.WouldTakeAgain = ""

	ds, err := n.Normalize([]*models.RawProfessor{r})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ds.Records()[0].WouldTakeAgain))
}

func TestNormalizeEmptyInput(t *testing.T) {
	ds, err := NewNormalizer(newTestLogger()).Normalize(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, ds.Colleges())
}
