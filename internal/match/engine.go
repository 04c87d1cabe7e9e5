// Package match implements the reciprocal REQUEST↔OFFER matcher and the
// HTTP surface of the matching engine. Given one opportunity it scans the
// opposite-intent active population and combines payment-mode, skill, and
// barter signals into a single ranked score per candidate.
//
// The matcher degrades silently: a missing opportunity, an empty candidate
// population, or a store failure yields an empty result list, never an
// error — pages that merely want "matches if any" must not abort.
package match

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/barter"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/metrics"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/scoring"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/store"
)

// Reciprocal scoring constants. The contributions are pre-scaled so their
// sum is naturally bounded near 0–100; this is additive scoring, not a
// weighted-to-100 normalization. MatchThreshold (70) is deliberately
// distinct from the catalog's per-model threshold (80) and the barter
// compatibility floor (50).
var (
	// PaymentExactBonus is awarded when both sides settle identically.
	PaymentExactBonus = 30.0

	// PaymentCrossBonus is awarded for the Cash↔Hybrid pairing, the only
	// cross-mode combination treated as workable.
	PaymentCrossBonus = 15.0

	// SkillWeight scales the 0–100 skill overlap ratio.
	SkillWeight = 0.4

	// BarterWeight scales the barter module score for non-cash sources.
	BarterWeight = 0.3

	// MatchThreshold is the minimum total for MeetsThreshold.
	MatchThreshold = 70.0

	// DefaultMaxCandidates bounds the candidate scan per invocation.
	DefaultMaxCandidates = 1000
)

// Factors is the per-contribution breakdown of a reciprocal score.
type Factors struct {
	Payment float64 `json:"payment"`
	Skills  float64 `json:"skills"`
	Barter  float64 `json:"barter"`
}

// Candidate is one scored entry of the ranked result list. The caller
// decides how many to keep, persist, or notify; the matcher attaches the
// threshold flag but never truncates or filters.
type Candidate struct {
	Opportunity    model.Opportunity `json:"opportunity"`
	Score          int               `json:"score"`
	Factors        Factors           `json:"factors"`
	MeetsThreshold bool              `json:"meets_threshold"`
}

// Engine computes reciprocal matches over the stored opportunity
// population. It holds no state between invocations.
type Engine struct {
	store         store.Store
	maxCandidates int
}

// NewEngine creates a matcher over the given store.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, maxCandidates: DefaultMaxCandidates}
}

// MatchRequestToOfferings ranks active OFFER_SERVICE opportunities against
// the given REQUEST_SERVICE opportunity.
func (e *Engine) MatchRequestToOfferings(ctx context.Context, opportunityID string) []Candidate {
	return e.matchReciprocal(ctx, opportunityID, model.IntentRequestService)
}

// MatchOfferingToRequests ranks active REQUEST_SERVICE opportunities against
// the given OFFER_SERVICE opportunity.
func (e *Engine) MatchOfferingToRequests(ctx context.Context, opportunityID string) []Candidate {
	return e.matchReciprocal(ctx, opportunityID, model.IntentOfferService)
}

func (e *Engine) matchReciprocal(ctx context.Context, opportunityID string, expectedIntent model.IntentType) []Candidate {
	if e.store == nil {
		return []Candidate{}
	}

	source, err := e.store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		slog.Warn("match source not found", "opportunity", opportunityID, "err", err)
		return []Candidate{}
	}
	if source.IntentType != expectedIntent {
		slog.Warn("match source has wrong intent",
			"opportunity", opportunityID,
			"intent", source.IntentType,
			"expected", expectedIntent,
		)
		return []Candidate{}
	}
	source = NormalizeOpportunity(source)

	population, err := e.store.ListOpportunities(ctx, store.OpportunityFilter{
		IntentType: expectedIntent.Opposite(),
		Status:     model.StatusActive,
	})
	if err != nil {
		slog.Warn("match population unavailable", "opportunity", opportunityID, "err", err)
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(population))
	scanned := 0
	for i := range population {
		if scanned >= e.maxCandidates {
			slog.Warn("candidate scan bound reached",
				"opportunity", opportunityID,
				"bound", e.maxCandidates,
			)
			break
		}
		scanned++

		cand := NormalizeOpportunity(&population[i])
		if cand.ID == source.ID {
			continue
		}
		candidates = append(candidates, ScorePair(source, cand))
	}
	metrics.CandidatesScanned.Observe(float64(scanned))

	// Rank descending; candidate id breaks ties for a stable order.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Opportunity.ID < candidates[j].Opportunity.ID
	})

	return candidates
}

// ScorePair computes the reciprocal score for one source/candidate pair.
// Each candidate's score is independent and the function is side-effect
// free, so callers may fan the per-candidate loop out across goroutines
// without changing semantics.
func ScorePair(source, candidate *model.Opportunity) Candidate {
	factors := Factors{
		Payment: paymentContribution(source.Payment, candidate.Payment),
		Skills:  skillContribution(source, candidate),
	}

	// The barter module only weighs in when the non-cash source actually
	// declares barter content; otherwise its neutral score would inflate
	// every barter-mode pair by the same amount.
	if source.Payment.NonCash() && hasBarterData(source) {
		party := scoring.SynthesizeProfile(candidate)
		if res := barter.Match(source, party); res != nil {
			factors.Barter = res.Score * BarterWeight
		}
		metrics.BarterEvaluations.Inc()
	}

	total := factors.Payment + factors.Skills + factors.Barter
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	score := int(math.Round(total))
	metrics.MatchScores.Observe(total)

	return Candidate{
		Opportunity:    *candidate,
		Score:          score,
		Factors:        factors,
		MeetsThreshold: total >= MatchThreshold,
	}
}

func hasBarterData(opp *model.Opportunity) bool {
	attrs := opp.Attributes
	return len(attrs.ServicesOffered) > 0 ||
		len(attrs.ServicesRequested) > 0 ||
		attrs.BarterOffer != ""
}

func paymentContribution(a, b model.PaymentMode) float64 {
	switch {
	case a == b:
		return PaymentExactBonus
	case a == model.PaymentCash && b == model.PaymentHybrid,
		a == model.PaymentHybrid && b == model.PaymentCash:
		return PaymentCrossBonus
	}
	return 0
}

// skillContribution scores matched/sourceCount*100*SkillWeight when both
// sides declare skills, else 0 — no neutral fallback here; the reciprocal
// scale treats undeclared skills as simply contributing nothing.
func skillContribution(source, candidate *model.Opportunity) float64 {
	wanted := source.Attributes.RequiredSkills
	if len(wanted) == 0 {
		wanted = source.Attributes.Skills
	}
	declared := candidate.Attributes.Skills
	if len(declared) == 0 {
		declared = candidate.Attributes.RequiredSkills
	}
	if len(wanted) == 0 || len(declared) == 0 {
		return 0
	}
	return scoring.OverlapRatio(wanted, declared) * 100 * SkillWeight
}
