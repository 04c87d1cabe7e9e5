// Package barter decides whether two parties' non-cash offers are compatible
// for a Barter or Hybrid opportunity, and how equivalent in value they are.
//
// Service names are free text from different parties and rarely match
// exactly, so basket matching uses case-insensitive substring containment in
// either direction — a deliberately lenient heuristic. A nil basket score
// means "not applicable" and is distinct from a zero score: callers drop the
// corresponding blend weight instead of counting it as a miss.
//
// Basket totals use shopspring/decimal — never float64 for money.
package barter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// Blend weights and adjustment constants. These were tuned independently of
// the catalog threshold (80) and the reciprocal matcher threshold (70); the
// three scales are not interchangeable. Exposed as vars so deployments can
// retune without a code change.
var (
	// WeightOffered blends the offered-side basket match.
	WeightOffered = 0.4

	// WeightRequested blends the requested-side basket match.
	WeightRequested = 0.4

	// WeightOfferText blends the free-text barter offer match.
	WeightOfferText = 0.2

	// NeutralScore is returned when there is no data to match against.
	// Absence of data must not zero out an otherwise viable match.
	NeutralScore = 50.0

	// CompatibilityFloor is the minimum blended score considered compatible.
	CompatibilityFloor = 50.0

	// EquivalenceBonus is added when the two basket totals are equal within
	// EquivalenceTolerancePct. Result is clamped at 100.
	EquivalenceBonus = 10.0

	// EquivalencePenalty is subtracted when the basket totals differ by more
	// than PenaltyCutoffPct. Result is clamped at 0.
	EquivalencePenalty = 15.0

	// EquivalenceTolerancePct is the percentage difference within which two
	// basket totals count as equal.
	EquivalenceTolerancePct = decimal.NewFromInt(5)

	// PenaltyCutoffPct is the percentage difference beyond which the penalty
	// applies. The boundary is exclusive: a 50% difference gets no penalty.
	PenaltyCutoffPct = decimal.NewFromInt(50)
)

// Result is the outcome of a barter compatibility evaluation.
type Result struct {
	Compatible bool    `json:"compatible"`
	Score      float64 `json:"score"`
	Details    Details `json:"details"`
}

// Details is the per-factor breakdown behind a Result. Nil factor scores
// mean the factor was not applicable and its weight was dropped.
type Details struct {
	OfferedMatch   *float64 `json:"offered_match,omitempty"`
	RequestedMatch *float64 `json:"requested_match,omitempty"`
	OfferTextMatch float64  `json:"offer_text_match"`
	ValueAdjust    float64  `json:"value_adjustment"`
	OfferedValue   string   `json:"offered_value,omitempty"`
	RequestedValue string   `json:"requested_value,omitempty"`
}

// ServiceMatch scores an opportunity-side service basket against a party's
// declared services. Each opportunity service counts as matched when some
// party entry's name or description contains it, or is contained by it,
// case-insensitively. Returns nil when the opportunity side has no services:
// not applicable, not zero.
func ServiceMatch(oppServices []model.ServiceItem, partyServices []model.ServiceRef) *float64 {
	if len(oppServices) == 0 {
		return nil
	}

	matched := 0
	for _, svc := range oppServices {
		if anyRefMatches(svc, partyServices) {
			matched++
		}
	}

	score := float64(matched) / float64(len(oppServices)) * 100
	return &score
}

func anyRefMatches(svc model.ServiceItem, refs []model.ServiceRef) bool {
	for _, ref := range refs {
		if textOverlaps(svc.Name, ref.Name) {
			return true
		}
		if ref.Item != nil && textOverlaps(svc.Name, ref.Item.Description) {
			return true
		}
		if svc.Description != "" && textOverlaps(svc.Description, ref.Name) {
			return true
		}
	}
	return false
}

// textOverlaps reports case-insensitive substring containment in either
// direction. Blank strings never overlap.
func textOverlaps(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// OfferTextMatch scores a free-text barter offer against a party's declared
// offer and need lists. An empty offer text is always neutral regardless of
// party data, as is an empty party (both lists empty).
func OfferTextMatch(offerText string, partyOffers, partyNeeds []string) float64 {
	if strings.TrimSpace(offerText) == "" {
		return NeutralScore
	}

	total := len(partyOffers) + len(partyNeeds)
	if total == 0 {
		return NeutralScore
	}

	matched := 0
	for _, entry := range partyOffers {
		if textOverlaps(offerText, entry) {
			matched++
		}
	}
	for _, entry := range partyNeeds {
		if textOverlaps(offerText, entry) {
			matched++
		}
	}

	return float64(matched) / float64(total) * 100
}

// Match evaluates barter compatibility between an opportunity and a party.
// Returns nil when the opportunity's payment mode is not Barter or Hybrid,
// or when it declares no barter content at all (no service baskets and no
// offer text) — without content every factor would sit at neutral and an
// empty opportunity would rank as compatible with every party.
//
// The blend drops the weight of any nil sub-score without renormalizing the
// rest: final = Σ(w_i * s_i) / Σ(w_i used). The value-equivalence adjustment
// is applied after the blend as a clamp-bounded correction, in that order.
func Match(opp *model.Opportunity, party *model.PartyProfile) *Result {
	if opp == nil || !opp.Payment.NonCash() {
		return nil
	}

	attrs := opp.Attributes
	if len(attrs.ServicesOffered) == 0 && len(attrs.ServicesRequested) == 0 &&
		strings.TrimSpace(attrs.BarterOffer) == "" {
		return nil
	}

	if party == nil {
		party = &model.PartyProfile{}
	}

	// What the opportunity offers is matched against what the party needs,
	// and vice versa.
	offered := ServiceMatch(attrs.ServicesOffered, party.BarterNeeds)
	requested := ServiceMatch(attrs.ServicesRequested, party.BarterOffers)
	textScore := OfferTextMatch(attrs.BarterOffer,
		model.RefNames(party.BarterOffers), model.RefNames(party.BarterNeeds))

	weighted := textScore * WeightOfferText
	usedWeight := WeightOfferText
	if offered != nil {
		weighted += *offered * WeightOffered
		usedWeight += WeightOffered
	}
	if requested != nil {
		weighted += *requested * WeightRequested
		usedWeight += WeightRequested
	}

	score := weighted / usedWeight

	details := Details{
		OfferedMatch:   offered,
		RequestedMatch: requested,
		OfferTextMatch: textScore,
	}

	// Value equivalence applies only when both baskets are present.
	if len(attrs.ServicesOffered) > 0 && len(attrs.ServicesRequested) > 0 {
		offeredValue := model.BasketValue(attrs.ServicesOffered)
		requestedValue := model.BasketValue(attrs.ServicesRequested)
		adjust := equivalenceAdjustment(offeredValue, requestedValue)

		score += adjust
		details.ValueAdjust = adjust
		details.OfferedValue = offeredValue.String()
		details.RequestedValue = requestedValue.String()
	}

	score = clamp(score)

	return &Result{
		Compatible: score >= CompatibilityFloor,
		Score:      score,
		Details:    details,
	}
}

// equivalenceAdjustment returns the additive correction for two basket
// totals: +EquivalenceBonus when equal within tolerance, -EquivalencePenalty
// when the percentage difference exceeds the cutoff, 0 otherwise.
func equivalenceAdjustment(a, b decimal.Decimal) float64 {
	diffPct := PercentDifference(a, b)
	switch {
	case diffPct.LessThanOrEqual(EquivalenceTolerancePct):
		return EquivalenceBonus
	case diffPct.GreaterThan(PenaltyCutoffPct):
		return -EquivalencePenalty
	}
	return 0
}

// PercentDifference returns |a-b| relative to the larger total, as a
// percentage. Two zero totals are equal (0% difference).
func PercentDifference(a, b decimal.Decimal) decimal.Decimal {
	larger := a
	if b.GreaterThan(larger) {
		larger = b
	}
	if larger.IsZero() {
		return decimal.Zero
	}
	return a.Sub(b).Abs().Div(larger).Mul(decimal.NewFromInt(100))
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
