// Package scoring computes derived lead metrics: score tiers, the
// predictive-quality blend and KPI aggregates.
package scoring

import (
	"math"

	"github.com/sells-group/lead-console/internal/model"
)

// Tier classifies a score for display.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Score thresholds. Fixed by product, not configurable.
const (
	highThreshold   = 90
	mediumThreshold = 70
	minBarWidth     = 10
)

// Class returns the display tier for a score: >=90 high, >=70 medium,
// otherwise low.
func Class(score float64) Tier {
	switch {
	case score >= highThreshold:
		return TierHigh
	case score >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Width returns the score-bar width percentage. Scores below 10 are floored
// so the indicator never collapses to invisible; the upper bound is the
// producer's responsibility.
func Width(score float64) float64 {
	return math.Max(score, minBarWidth)
}

// sourceWeights maps lead sources to a credibility weight for the
// predictive-quality blend. Unknown sources get defaultSourceWeight.
var sourceWeights = map[string]float64{
	"Referral":     100,
	"Website":      80,
	"LinkedIn":     75,
	"Cold Email":   40,
	"Social Media": 60,
	"Event":        85,
	"Partner":      90,
}

const defaultSourceWeight = 50

// SourceWeight returns the credibility weight for a lead source.
func SourceWeight(source string) float64 {
	if w, ok := sourceWeights[source]; ok {
		return w
	}
	return defaultSourceWeight
}

// PredictiveQuality blends the raw score with the source weight
// (70/30) and clamps the rounded result to [0,100].
func PredictiveQuality(score float64, source string) int {
	q := math.Round(score*0.7 + SourceWeight(source)*0.3)
	return int(model.ClampScore(q))
}
