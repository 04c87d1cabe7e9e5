// Package catalog holds the static registry of collaboration-model
// definitions: applicability, supported intents and payment modes, and the
// per-model weighted matching metrics with their acceptance threshold.
//
// The catalog is declarative data plus lookup — it is never mutated at
// runtime. Weight-sum consistency is checked once at startup via Validate,
// surfaced as a configuration error rather than a per-call error.
package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// Model categories.
const (
	CategoryProjectDelivery = "PROJECT_DELIVERY"
	CategoryAlliance        = "ALLIANCE"
	CategoryProcurement     = "PROCUREMENT"
	CategoryTalent          = "TALENT"
)

// Applicability (relationship type) values used by ByApplicability.
const (
	ApplicabilityB2B = "B2B"
	ApplicabilityB2P = "B2P" // business to professional
	ApplicabilityAny = "ANY"
)

// Metric names referenced by model definitions and resolved by the scoring
// package's evaluator registry.
const (
	MetricSkillMatch        = "skillMatch"
	MetricFinancialCapacity = "financialCapacity"
	MetricGeoProximity      = "geoProximity"
	MetricStrategicFit      = "strategicFit"
	MetricBarterFit         = "barterFit"
)

var (
	ErrWeightSum        = errors.New("catalog: matching metric weights must sum to 1.0")
	ErrWeightRange      = errors.New("catalog: metric weight must be in (0,1]")
	ErrThresholdRange   = errors.New("catalog: threshold must be in [0,100]")
	ErrDuplicateModel   = errors.New("catalog: duplicate model id")
	ErrNoMetrics        = errors.New("catalog: model defines no matching metrics")
	ErrUnknownIntent    = errors.New("catalog: unsupported intent type")
	ErrUnknownPayment   = errors.New("catalog: unsupported payment mode")
	weightSumTolerance  = 0.01
)

// MetricWeight is one (metricName, weight) pair of a model's ordered
// matching-metric list.
type MetricWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ModelDefinition is one immutable catalog entry.
type ModelDefinition struct {
	ID                    string              `json:"id"`
	Category              string              `json:"category"`
	Applicability         []string            `json:"applicability"`
	SupportedIntentTypes  []model.IntentType  `json:"supported_intent_types"`
	SupportedPaymentModes []model.PaymentMode `json:"supported_payment_modes"`
	MatchingMetrics       []MetricWeight      `json:"matching_metrics"`
	Threshold             int                 `json:"threshold"`
}

// SupportsPayment reports whether the model allows the given payment mode.
func (m *ModelDefinition) SupportsPayment(p model.PaymentMode) bool {
	for _, mode := range m.SupportedPaymentModes {
		if mode == p {
			return true
		}
	}
	return false
}

// SupportsIntent reports whether the model allows the given intent type.
func (m *ModelDefinition) SupportsIntent(i model.IntentType) bool {
	for _, intent := range m.SupportedIntentTypes {
		if intent == i || intent == model.IntentBoth {
			return true
		}
	}
	return false
}

// Catalog is a lookup table of model definitions keyed by id.
type Catalog struct {
	byID       map[string]*ModelDefinition
	order      []string
	duplicates []string
}

// New builds a catalog from the given definitions. The first definition
// wins on duplicate ids; duplicates are remembered and surfaced by
// Validate, which is the single startup gate for data-entry errors.
func New(defs []ModelDefinition) *Catalog {
	c := &Catalog{byID: make(map[string]*ModelDefinition, len(defs))}
	for i := range defs {
		def := defs[i]
		if _, exists := c.byID[def.ID]; exists {
			c.duplicates = append(c.duplicates, def.ID)
			continue
		}
		c.byID[def.ID] = &def
		c.order = append(c.order, def.ID)
	}
	return c
}

// Default returns the built-in collaboration model catalog.
func Default() *Catalog {
	return New(builtinModels)
}

// Get returns the model definition for the given id. Unknown ids return
// (nil, false); callers must treat matching as unavailable, not crash.
func (c *Catalog) Get(modelID string) (*ModelDefinition, bool) {
	def, ok := c.byID[modelID]
	return def, ok
}

// ByApplicability returns all models applicable to the given relationship
// type, in catalog order. ANY-scoped models match every relationship type.
func (c *Catalog) ByApplicability(relationshipType string) []ModelDefinition {
	var out []ModelDefinition
	for _, id := range c.order {
		def := c.byID[id]
		for _, a := range def.Applicability {
			if a == relationshipType || a == ApplicabilityAny {
				out = append(out, *def)
				break
			}
		}
	}
	return out
}

// All returns every model definition in catalog order.
func (c *Catalog) All() []ModelDefinition {
	out := make([]ModelDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.byID[id])
	}
	return out
}

// Validate checks every definition for data-entry errors: duplicate ids,
// unknown intent/payment enum values, weights within (0,1] and summing to
// 1.0 ± 0.01, thresholds within [0,100]. Run once at catalog load; a
// failure here is a startup configuration error.
func (c *Catalog) Validate() error {
	if len(c.duplicates) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, c.duplicates[0])
	}

	for _, id := range c.order {
		def := c.byID[id]
		if len(def.MatchingMetrics) == 0 {
			return fmt.Errorf("%w: model %s", ErrNoMetrics, id)
		}
		if def.Threshold < 0 || def.Threshold > 100 {
			return fmt.Errorf("%w: model %s has threshold %d", ErrThresholdRange, id, def.Threshold)
		}

		for _, intent := range def.SupportedIntentTypes {
			switch intent {
			case model.IntentRequestService, model.IntentOfferService, model.IntentBoth:
			default:
				return fmt.Errorf("%w: model %s declares %q", ErrUnknownIntent, id, intent)
			}
		}
		for _, mode := range def.SupportedPaymentModes {
			switch mode {
			case model.PaymentCash, model.PaymentEquity, model.PaymentProfitSharing,
				model.PaymentBarter, model.PaymentHybrid:
			default:
				return fmt.Errorf("%w: model %s declares %q", ErrUnknownPayment, id, mode)
			}
		}

		sum := 0.0
		for _, mw := range def.MatchingMetrics {
			if mw.Weight <= 0 || mw.Weight > 1 {
				return fmt.Errorf("%w: model %s metric %s weight %.3f", ErrWeightRange, id, mw.Name, mw.Weight)
			}
			sum += mw.Weight
		}
		if math.Abs(sum-1.0) > weightSumTolerance {
			return fmt.Errorf("%w: model %s sums to %.3f", ErrWeightSum, id, sum)
		}
	}
	return nil
}
