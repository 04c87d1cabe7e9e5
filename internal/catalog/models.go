package catalog

import "github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"

// builtinModels is the declarative collaboration-model catalog. The
// acceptance threshold of 80 here is deliberately distinct from the
// reciprocal matcher's 70 and the barter compatibility floor of 50; the
// three scales were tuned independently and are not interchangeable.
var builtinModels = []ModelDefinition{
	{
		ID:            "task-engagement",
		Category:      CategoryProjectDelivery,
		Applicability: []string{ApplicabilityAny},
		SupportedIntentTypes: []model.IntentType{
			model.IntentRequestService, model.IntentOfferService,
		},
		SupportedPaymentModes: []model.PaymentMode{
			model.PaymentCash, model.PaymentBarter, model.PaymentHybrid,
		},
		MatchingMetrics: []MetricWeight{
			{Name: MetricSkillMatch, Weight: 0.50},
			{Name: MetricGeoProximity, Weight: 0.20},
			{Name: MetricFinancialCapacity, Weight: 0.30},
		},
		Threshold: 80,
	},
	{
		ID:            "joint-venture",
		Category:      CategoryAlliance,
		Applicability: []string{ApplicabilityB2B},
		SupportedIntentTypes: []model.IntentType{
			model.IntentBoth,
		},
		SupportedPaymentModes: []model.PaymentMode{
			model.PaymentCash, model.PaymentEquity, model.PaymentProfitSharing,
		},
		MatchingMetrics: []MetricWeight{
			{Name: MetricStrategicFit, Weight: 0.40},
			{Name: MetricFinancialCapacity, Weight: 0.35},
			{Name: MetricSkillMatch, Weight: 0.25},
		},
		Threshold: 80,
	},
	{
		ID:            "consortium",
		Category:      CategoryAlliance,
		Applicability: []string{ApplicabilityB2B},
		SupportedIntentTypes: []model.IntentType{
			model.IntentBoth,
		},
		SupportedPaymentModes: []model.PaymentMode{
			model.PaymentCash, model.PaymentProfitSharing,
		},
		MatchingMetrics: []MetricWeight{
			{Name: MetricSkillMatch, Weight: 0.35},
			{Name: MetricStrategicFit, Weight: 0.35},
			{Name: MetricGeoProximity, Weight: 0.15},
			{Name: MetricFinancialCapacity, Weight: 0.15},
		},
		Threshold: 80,
	},
	{
		ID:            "bulk-purchasing",
		Category:      CategoryProcurement,
		Applicability: []string{ApplicabilityB2B},
		SupportedIntentTypes: []model.IntentType{
			model.IntentRequestService,
		},
		SupportedPaymentModes: []model.PaymentMode{
			model.PaymentCash,
		},
		MatchingMetrics: []MetricWeight{
			{Name: MetricFinancialCapacity, Weight: 0.50},
			{Name: MetricGeoProximity, Weight: 0.30},
			{Name: MetricStrategicFit, Weight: 0.20},
		},
		Threshold: 80,
	},
	{
		ID:            "hiring",
		Category:      CategoryTalent,
		Applicability: []string{ApplicabilityB2P},
		SupportedIntentTypes: []model.IntentType{
			model.IntentRequestService, model.IntentOfferService,
		},
		SupportedPaymentModes: []model.PaymentMode{
			model.PaymentCash,
		},
		MatchingMetrics: []MetricWeight{
			{Name: MetricSkillMatch, Weight: 0.60},
			{Name: MetricGeoProximity, Weight: 0.25},
			{Name: MetricFinancialCapacity, Weight: 0.15},
		},
		Threshold: 80,
	},
	{
		ID:            "competition",
		Category:      CategoryProjectDelivery,
		Applicability: []string{ApplicabilityAny},
		SupportedIntentTypes: []model.IntentType{
			model.IntentRequestService,
		},
		SupportedPaymentModes: []model.PaymentMode{
			model.PaymentCash, model.PaymentEquity,
		},
		MatchingMetrics: []MetricWeight{
			{Name: MetricSkillMatch, Weight: 0.70},
			{Name: MetricStrategicFit, Weight: 0.30},
		},
		Threshold: 80,
	},
	{
		ID:            "barter-exchange",
		Category:      CategoryProcurement,
		Applicability: []string{ApplicabilityAny},
		SupportedIntentTypes: []model.IntentType{
			model.IntentRequestService, model.IntentOfferService, model.IntentBoth,
		},
		SupportedPaymentModes: []model.PaymentMode{
			model.PaymentBarter, model.PaymentHybrid,
		},
		MatchingMetrics: []MetricWeight{
			{Name: MetricBarterFit, Weight: 0.55},
			{Name: MetricSkillMatch, Weight: 0.30},
			{Name: MetricGeoProximity, Weight: 0.15},
		},
		Threshold: 80,
	},
}
