// Package model defines the core domain types shared across the matching
// engine. All monetary values use shopspring/decimal — never float64 for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntentType describes the direction of an opportunity.
type IntentType string

const (
	IntentRequestService IntentType = "REQUEST_SERVICE"
	IntentOfferService   IntentType = "OFFER_SERVICE"
	IntentBoth           IntentType = "BOTH"
)

// Opposite returns the reciprocal intent. BOTH has no single opposite and
// maps to itself.
func (i IntentType) Opposite() IntentType {
	switch i {
	case IntentRequestService:
		return IntentOfferService
	case IntentOfferService:
		return IntentRequestService
	}
	return i
}

// PaymentMode describes how an engagement is settled.
type PaymentMode string

const (
	PaymentCash          PaymentMode = "Cash"
	PaymentEquity        PaymentMode = "Equity"
	PaymentProfitSharing PaymentMode = "ProfitSharing"
	PaymentBarter        PaymentMode = "Barter"
	PaymentHybrid        PaymentMode = "Hybrid"
)

// NonCash reports whether the mode is settled wholly or partly via exchange
// of services rather than cash.
func (p PaymentMode) NonCash() bool {
	return p == PaymentBarter || p == PaymentHybrid
}

// OpportunityStatus is the lifecycle state of a published opportunity.
type OpportunityStatus string

const (
	StatusDraft  OpportunityStatus = "draft"
	StatusActive OpportunityStatus = "active"
	StatusClosed OpportunityStatus = "closed"
)

// Opportunity is a published request/offer for collaboration under a
// specific catalog model. The engine never deletes opportunities; delete is
// an external-store operation.
type Opportunity struct {
	ID         string            `json:"id" db:"id"`
	IntentType IntentType        `json:"intent_type" db:"intent_type"`
	ModelID    string            `json:"model_id" db:"model_id"`
	Payment    PaymentMode       `json:"payment_mode" db:"payment_mode"`
	Attributes Attributes        `json:"attributes" db:"attributes"`
	Status     OpportunityStatus `json:"status" db:"status"`
	CreatorID  string            `json:"creator_id" db:"creator_id"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// Attributes is the model-specific bag carried by an opportunity. Only the
// fields the engine reads are typed here; everything else rides in Extra.
type Attributes struct {
	ServicesOffered   []ServiceItem     `json:"services_offered,omitempty"`
	ServicesRequested []ServiceItem     `json:"services_requested,omitempty"`
	BarterOffer       string            `json:"barter_offer,omitempty"`
	RequiredSkills    []string          `json:"required_skills,omitempty"`
	Skills            []string          `json:"skills,omitempty"`
	Location          string            `json:"location,omitempty"`
	BudgetMin         decimal.Decimal   `json:"budget_min,omitempty"`
	BudgetMax         decimal.Decimal   `json:"budget_max,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// ServiceItem is one line of a service basket: a proposal line item and the
// comparable unit for barter value equivalence.
type ServiceItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"` // reference price, single currency
}

// TotalValue returns quantity × unit price. Malformed lines (negative
// quantity or price) contribute zero rather than erroring.
func (s ServiceItem) TotalValue() decimal.Decimal {
	if s.Quantity.IsNegative() || s.UnitPrice.IsNegative() {
		return decimal.Zero
	}
	return s.Quantity.Mul(s.UnitPrice)
}

// BasketValue sums the total reference value of a service basket.
func BasketValue(items []ServiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalValue())
	}
	return total
}

// PartyProfile is the subset of a user profile the engine reads: what the
// party can give and what it wants, as free-form text or service entries.
type PartyProfile struct {
	UserID       string       `json:"user_id" db:"user_id"`
	CompanyName  string       `json:"company_name,omitempty" db:"company_name"`
	Location     string       `json:"location,omitempty" db:"location"`
	BarterOffers []ServiceRef `json:"barter_offers,omitempty" db:"barter_offers"`
	BarterNeeds  []ServiceRef `json:"barter_needs,omitempty" db:"barter_needs"`
}

// Match is the persisted record of a computed pairing. The engine produces
// MatchResult values; the caller persists them as Match records. The three
// flags flip monotonically false→true and never reset.
type Match struct {
	ID                string    `json:"id" db:"id"`
	SourceID          string    `json:"source_id" db:"source_id"`
	CandidateID       string    `json:"candidate_id" db:"candidate_id"`
	Score             int       `json:"score" db:"score"`
	MeetsThreshold    bool      `json:"meets_threshold" db:"meets_threshold"`
	Notified          bool      `json:"notified" db:"notified"`
	Viewed            bool      `json:"viewed" db:"viewed"`
	ProposalSubmitted bool      `json:"proposal_submitted" db:"proposal_submitted"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
