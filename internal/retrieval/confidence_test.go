package retrieval

import (
	"testing"

	"github.com/hyperjump/horitsu/internal/models"
)

func TestAssessConfidence(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   models.Confidence
	}{
		{"empty", nil, models.ConfidenceVeryLow},
		{"single high", []float64{0.95}, models.ConfidenceHigh},
		{"boundary high", []float64{0.8}, models.ConfidenceHigh},
		{"boundary medium", []float64{0.6}, models.ConfidenceMedium},
		{"boundary low", []float64{0.4}, models.ConfidenceLow},
		{"below low", []float64{0.39}, models.ConfidenceVeryLow},
		{"mean across matches", []float64{0.9, 0.7}, models.ConfidenceHigh},
		{"mean pulls down", []float64{0.9, 0.3, 0.3}, models.ConfidenceLow},
		{"mid band", []float64{0.7, 0.6}, models.ConfidenceMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := make([]models.Match, len(tt.scores))
			for i, s := range tt.scores {
				matches[i] = models.Match{Score: s}
			}
			if got := AssessConfidence(matches); got != tt.want {
				t.Errorf("AssessConfidence(%v) = %s, want %s", tt.scores, got, tt.want)
			}
		})
	}
}

func TestAssessConfidence_ignoresAdjustedScore(t *testing.T) {
	// Boosted scores never feed confidence; only raw similarity does.
	matches := []models.Match{
		{Score: 0.5, Boost: 0.4, AdjustedScore: 0.9},
	}
	if got := AssessConfidence(matches); got != models.ConfidenceLow {
		t.Errorf("AssessConfidence() = %s, want low", got)
	}
}
