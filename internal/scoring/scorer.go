// Package scoring combines a collaboration model's weighted matching metrics
// with evaluator sub-scores into one aggregate 0–100 score and an
// accept/reject decision against the model's threshold.
//
// Missing metrics contribute 0. This is a deliberate fail-soft policy:
// incomplete data silently penalizes the match rather than rejecting it
// outright, so a half-filled profile still surfaces with a degraded score.
// Sub-scores supplied for metrics the model does not name are ignored.
package scoring

import (
	"math"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/catalog"
)

// Result is the outcome of scoring one pair against a model.
type Result struct {
	Aggregate int                `json:"aggregate"`
	Accepted  bool               `json:"accepted"`
	PerMetric map[string]float64 `json:"per_metric"`
}

// ScoreAgainstModel computes aggregate = round(Σ weight_i * subscore_i) over
// the model's matching metrics and accepts when it meets the model's
// threshold. Sub-scores are clamped to [0, 100] before weighting.
func ScoreAgainstModel(def *catalog.ModelDefinition, metricScores map[string]float64) Result {
	perMetric := make(map[string]float64, len(def.MatchingMetrics))

	var weightedSum float64
	for _, mw := range def.MatchingMetrics {
		sub := clampScore(metricScores[mw.Name]) // absent → 0, fail-soft
		perMetric[mw.Name] = sub
		weightedSum += mw.Weight * sub
	}

	aggregate := int(math.Round(weightedSum))
	if aggregate < 0 {
		aggregate = 0
	}
	if aggregate > 100 {
		aggregate = 100
	}

	return Result{
		Aggregate: aggregate,
		Accepted:  aggregate >= def.Threshold,
		PerMetric: perMetric,
	}
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
