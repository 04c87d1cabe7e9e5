package scoring

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/barter"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/catalog"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// Neutral is the sub-score an evaluator returns when it has no data to
// judge. Missing data degrades the match but never zeroes it.
const Neutral = 50.0

// Evaluator turns two matchable entities into a 0–100 sub-score for one
// named metric.
type Evaluator func(source, candidate *model.Opportunity) float64

// Registry resolves metric names from the catalog to evaluator functions.
type Registry struct {
	evals map[string]Evaluator
}

// NewRegistry returns a registry with the built-in evaluators installed.
func NewRegistry() *Registry {
	r := &Registry{evals: make(map[string]Evaluator)}
	r.Register(catalog.MetricSkillMatch, SkillMatch)
	r.Register(catalog.MetricFinancialCapacity, FinancialCapacity)
	r.Register(catalog.MetricGeoProximity, GeoProximity)
	r.Register(catalog.MetricStrategicFit, StrategicFit)
	r.Register(catalog.MetricBarterFit, BarterFit)
	return r
}

// Register installs or replaces the evaluator for a metric name.
func (r *Registry) Register(name string, eval Evaluator) {
	r.evals[name] = eval
}

// EvaluateAll produces the metric-score map consumed by ScoreAgainstModel,
// covering only the metrics the model names. Metrics without a registered
// evaluator are omitted and contribute 0 downstream.
func (r *Registry) EvaluateAll(def *catalog.ModelDefinition, source, candidate *model.Opportunity) map[string]float64 {
	scores := make(map[string]float64, len(def.MatchingMetrics))
	for _, mw := range def.MatchingMetrics {
		if eval, ok := r.evals[mw.Name]; ok {
			scores[mw.Name] = eval(source, candidate)
		}
	}
	return scores
}

// SkillMatch scores the overlap between the source's required skills and the
// candidate's declared skills: matched / required * 100. Case-insensitive
// substring containment either direction, same leniency as basket matching.
// Neutral when either side declares nothing.
func SkillMatch(source, candidate *model.Opportunity) float64 {
	required := source.Attributes.RequiredSkills
	if len(required) == 0 {
		required = source.Attributes.Skills
	}
	declared := candidate.Attributes.Skills
	if len(declared) == 0 {
		declared = candidate.Attributes.RequiredSkills
	}
	if len(required) == 0 || len(declared) == 0 {
		return Neutral
	}
	return OverlapRatio(required, declared) * 100
}

// OverlapRatio returns the fraction of wanted entries that appear in the
// declared list, matching case-insensitively with substring containment.
func OverlapRatio(wanted, declared []string) float64 {
	if len(wanted) == 0 {
		return 0
	}
	matched := 0
	for _, w := range wanted {
		for _, d := range declared {
			if skillOverlaps(w, d) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(wanted))
}

func skillOverlaps(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// FinancialCapacity bands the candidate's budget ceiling against the
// source's budget range. Within range scores full; above it scores high
// (over-capacity is acceptable); below it degrades with distance.
func FinancialCapacity(source, candidate *model.Opportunity) float64 {
	srcMin := source.Attributes.BudgetMin
	srcMax := source.Attributes.BudgetMax
	capacity := candidate.Attributes.BudgetMax

	if capacity.IsZero() || (srcMin.IsZero() && srcMax.IsZero()) {
		return Neutral
	}

	switch {
	case capacity.GreaterThanOrEqual(srcMin) && (srcMax.IsZero() || capacity.LessThanOrEqual(srcMax)):
		return 100
	case !srcMax.IsZero() && capacity.GreaterThan(srcMax):
		return 80
	case capacity.GreaterThanOrEqual(srcMin.Mul(decimal.NewFromFloat(0.8))):
		return 60
	case capacity.GreaterThanOrEqual(srcMin.Mul(decimal.NewFromFloat(0.5))):
		return 40
	}
	return 20
}

// GeoProximity compares declared locations by shared prefix. Location codes
// encode region hierarchy left to right ("SA-RUH-01"), so a longer shared
// prefix means geographically closer parties.
func GeoProximity(source, candidate *model.Opportunity) float64 {
	a := strings.ToUpper(strings.TrimSpace(source.Attributes.Location))
	b := strings.ToUpper(strings.TrimSpace(candidate.Attributes.Location))
	if a == "" || b == "" {
		return Neutral
	}
	if a == b {
		return 100
	}

	shared := sharedPrefixLen(a, b)
	switch {
	case shared >= 6:
		return 85
	case shared >= 3:
		return 65
	case shared >= 1:
		return 40
	}
	return 20
}

func sharedPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// StrategicFit scores structural alignment: complementary intents and a
// workable payment-mode pairing.
func StrategicFit(source, candidate *model.Opportunity) float64 {
	score := 0.0

	if source.IntentType.Opposite() == candidate.IntentType ||
		source.IntentType == model.IntentBoth || candidate.IntentType == model.IntentBoth {
		score += 50
	}

	switch {
	case source.Payment == candidate.Payment:
		score += 50
	case paymentCrossCompatible(source.Payment, candidate.Payment):
		score += 25
	}

	return score
}

func paymentCrossCompatible(a, b model.PaymentMode) bool {
	return (a == model.PaymentCash && b == model.PaymentHybrid) ||
		(a == model.PaymentHybrid && b == model.PaymentCash)
}

// BarterFit delegates to the barter compatibility module, synthesizing a
// party profile from the candidate's declared services. Neutral when the
// module is not applicable (cash-settled source).
func BarterFit(source, candidate *model.Opportunity) float64 {
	party := SynthesizeProfile(candidate)
	res := barter.Match(source, party)
	if res == nil {
		return Neutral
	}
	return res.Score
}

// SynthesizeProfile builds a party profile from an opportunity's declared
// services: what it offers become barter offers, what it requests become
// barter needs.
func SynthesizeProfile(opp *model.Opportunity) *model.PartyProfile {
	profile := &model.PartyProfile{
		UserID:   opp.CreatorID,
		Location: opp.Attributes.Location,
	}
	for _, svc := range opp.Attributes.ServicesOffered {
		profile.BarterOffers = append(profile.BarterOffers, model.ItemRef(svc))
	}
	for _, svc := range opp.Attributes.ServicesRequested {
		profile.BarterNeeds = append(profile.BarterNeeds, model.ItemRef(svc))
	}
	if opp.Attributes.BarterOffer != "" {
		profile.BarterOffers = append(profile.BarterOffers, model.PlainRef(opp.Attributes.BarterOffer))
	}
	return profile
}
