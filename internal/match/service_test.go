package match_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/barter"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/catalog"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/match"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/scoring"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/store"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// newTestEnv creates a test Service with in-memory store and chi router.
func newTestEnv(t *testing.T) (*match.Service, *store.MemoryStore, chi.Router) {
	t.Helper()
	ms := store.NewMemoryStore()
	svc := match.NewService(ms, catalog.Default(), nil)

	r := chi.NewRouter()
	r.Get("/api/v1/models", svc.ListModels)
	r.Get("/api/v1/opportunities", svc.ListOpportunities)
	r.Post("/api/v1/opportunities", svc.CreateOpportunity)
	r.Get("/api/v1/opportunities/{opportunityID}", svc.GetOpportunity)
	r.Get("/api/v1/opportunities/{opportunityID}/matches", svc.GetMatches)
	r.Get("/api/v1/opportunities/{opportunityID}/compatibility/{candidateID}", svc.PairCompatibility)
	r.Post("/api/v1/score", svc.ScoreModel)
	r.Post("/api/v1/barter/match", svc.BarterMatch)
	r.Put("/api/v1/profiles/{userID}", svc.SaveProfile)
	r.Put("/api/v1/matches/{matchID}/viewed", svc.MarkMatchViewed)
	r.Put("/api/v1/matches/{matchID}/proposal", svc.MarkMatchProposal)

	return svc, ms, r
}

// seed creates an active opportunity directly in the store.
func seed(t *testing.T, ms *store.MemoryStore, opp model.Opportunity) {
	t.Helper()
	if opp.Status == "" {
		opp.Status = model.StatusActive
	}
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = time.Now().UTC()
	}
	if err := ms.CreateOpportunity(context.Background(), &opp); err != nil {
		t.Fatalf("failed to seed opportunity %s: %v", opp.ID, err)
	}
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- Opportunity lifecycle ---

func TestCreateOpportunity(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/opportunities", match.CreateOpportunityRequest{
		IntentType: model.IntentRequestService,
		ModelID:    "task-engagement",
		Payment:    model.PaymentCash,
		CreatorID:  "user1",
		Attributes: model.Attributes{RequiredSkills: []string{"Surveying"}},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var opp model.Opportunity
	json.Unmarshal(w.Body.Bytes(), &opp)
	if opp.ID == "" {
		t.Error("expected generated opportunity id")
	}
	if opp.Status != model.StatusActive {
		t.Errorf("expected active status, got %s", opp.Status)
	}
}

func TestCreateOpportunity_Validation(t *testing.T) {
	_, _, router := newTestEnv(t)

	tests := []struct {
		name string
		req  match.CreateOpportunityRequest
	}{
		{"unknown model", match.CreateOpportunityRequest{
			IntentType: model.IntentRequestService,
			ModelID:    "no-such-model",
			Payment:    model.PaymentCash,
			CreatorID:  "user1",
		}},
		{"unsupported payment", match.CreateOpportunityRequest{
			IntentType: model.IntentRequestService,
			ModelID:    "hiring", // cash only
			Payment:    model.PaymentBarter,
			CreatorID:  "user1",
		}},
		{"unsupported intent", match.CreateOpportunityRequest{
			IntentType: model.IntentOfferService,
			ModelID:    "bulk-purchasing", // request only
			Payment:    model.PaymentCash,
			CreatorID:  "user1",
		}},
		{"missing creator", match.CreateOpportunityRequest{
			IntentType: model.IntentRequestService,
			ModelID:    "task-engagement",
			Payment:    model.PaymentCash,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", "/api/v1/opportunities", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetOpportunity_NotFound(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := doJSON(t, router, "GET", "/api/v1/opportunities/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestListOpportunities_Filtered(t *testing.T) {
	_, ms, router := newTestEnv(t)
	seed(t, ms, model.Opportunity{ID: "req-1", IntentType: model.IntentRequestService, Payment: model.PaymentCash})
	seed(t, ms, model.Opportunity{ID: "off-1", IntentType: model.IntentOfferService, Payment: model.PaymentCash})

	w := doJSON(t, router, "GET", "/api/v1/opportunities?intent=OFFER_SERVICE", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var opps []model.Opportunity
	json.Unmarshal(w.Body.Bytes(), &opps)
	if len(opps) != 1 || opps[0].ID != "off-1" {
		t.Errorf("expected only off-1, got %+v", opps)
	}
}

// --- Reciprocal matching endpoint ---

func TestGetMatches_PersistsThresholdMatches(t *testing.T) {
	_, ms, router := newTestEnv(t)

	seed(t, ms, model.Opportunity{
		ID:         "req-1",
		IntentType: model.IntentRequestService,
		Payment:    model.PaymentBarter,
		Attributes: model.Attributes{
			RequiredSkills: []string{"Steel Fabrication"},
			ServicesOffered: []model.ServiceItem{
				{Name: "Steel Fabrication", Quantity: dec("10"), UnitPrice: dec("100")},
			},
			ServicesRequested: []model.ServiceItem{
				{Name: "Structural Design", Quantity: dec("1"), UnitPrice: dec("1000")},
			},
		},
	})
	seed(t, ms, model.Opportunity{
		ID:         "off-strong",
		IntentType: model.IntentOfferService,
		Payment:    model.PaymentBarter,
		Attributes: model.Attributes{
			Skills: []string{"Steel Fabrication"},
			ServicesOffered: []model.ServiceItem{
				{Name: "Structural Design", Quantity: dec("1"), UnitPrice: dec("1000")},
			},
			ServicesRequested: []model.ServiceItem{
				{Name: "Steel Fabrication", Quantity: dec("10"), UnitPrice: dec("100")},
			},
		},
	})
	seed(t, ms, model.Opportunity{
		ID:         "off-weak",
		IntentType: model.IntentOfferService,
		Payment:    model.PaymentEquity,
	})

	w := doJSON(t, router, "GET", "/api/v1/opportunities/req-1/matches", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var candidates []match.Candidate
	json.Unmarshal(w.Body.Bytes(), &candidates)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Opportunity.ID != "off-strong" || !candidates[0].MeetsThreshold {
		t.Errorf("expected off-strong above threshold first, got %+v", candidates[0])
	}
	if candidates[1].MeetsThreshold {
		t.Error("off-weak must not meet the threshold")
	}

	// Only the threshold-meeting candidate gets a persisted record.
	records, err := ms.GetMatchesByOpportunity(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("failed to read match records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 persisted match, got %d", len(records))
	}
	if records[0].CandidateID != "off-strong" || !records[0].MeetsThreshold {
		t.Errorf("unexpected persisted record %+v", records[0])
	}
}

func TestGetMatches_MissingSourceDegrades(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := doJSON(t, router, "GET", "/api/v1/opportunities/ghost/matches", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var candidates []match.Candidate
	json.Unmarshal(w.Body.Bytes(), &candidates)
	if len(candidates) != 0 {
		t.Errorf("expected empty candidate list, got %d", len(candidates))
	}
}

// --- Model-scoped scoring ---

func TestScoreModel(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/score", match.ScoreRequest{
		ModelID: "hiring",
		MetricScores: map[string]float64{
			catalog.MetricSkillMatch:        100,
			catalog.MetricGeoProximity:      100,
			catalog.MetricFinancialCapacity: 100,
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res scoring.Result
	json.Unmarshal(w.Body.Bytes(), &res)
	if res.Aggregate != 100 || !res.Accepted {
		t.Errorf("expected aggregate 100 accepted, got %+v", res)
	}
}

func TestScoreModel_MissingMetricFailsSoft(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/score", match.ScoreRequest{
		ModelID:      "hiring",
		MetricScores: map[string]float64{catalog.MetricSkillMatch: 100},
	})

	var res scoring.Result
	json.Unmarshal(w.Body.Bytes(), &res)
	if res.Aggregate != 60 {
		t.Errorf("expected aggregate 60 with only skill supplied, got %d", res.Aggregate)
	}
	if res.Accepted {
		t.Error("60 must not pass the 80 threshold")
	}
}

func TestScoreModel_UnknownModel(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := doJSON(t, router, "POST", "/api/v1/score", match.ScoreRequest{ModelID: "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPairCompatibility(t *testing.T) {
	_, ms, router := newTestEnv(t)
	seed(t, ms, model.Opportunity{
		ID:         "req-1",
		IntentType: model.IntentRequestService,
		ModelID:    "hiring",
		Payment:    model.PaymentCash,
		Attributes: model.Attributes{
			RequiredSkills: []string{"Quantity Surveying"},
			Location:       "SA-RUH-01",
			BudgetMin:      dec("1000"),
			BudgetMax:      dec("5000"),
		},
	})
	seed(t, ms, model.Opportunity{
		ID:         "off-1",
		IntentType: model.IntentOfferService,
		ModelID:    "hiring",
		Payment:    model.PaymentCash,
		Attributes: model.Attributes{
			Skills:    []string{"Quantity Surveying"},
			Location:  "SA-RUH-02",
			BudgetMax: dec("3000"),
		},
	})

	w := doJSON(t, router, "GET", "/api/v1/opportunities/req-1/compatibility/off-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res scoring.Result
	json.Unmarshal(w.Body.Bytes(), &res)
	// skill 100 * 0.6 + geo 85 * 0.25 + financial 100 * 0.15 = 96.
	if res.Aggregate != 96 {
		t.Errorf("expected aggregate 96, got %d", res.Aggregate)
	}
	if !res.Accepted {
		t.Error("96 must pass the model threshold")
	}
	if len(res.PerMetric) != 3 {
		t.Errorf("expected 3 per-metric entries, got %v", res.PerMetric)
	}
}

func TestPairCompatibility_UnknownModelReturnsNull(t *testing.T) {
	_, ms, router := newTestEnv(t)
	seed(t, ms, model.Opportunity{ID: "req-1", IntentType: model.IntentRequestService, ModelID: "retired-model", Payment: model.PaymentCash})
	seed(t, ms, model.Opportunity{ID: "off-1", IntentType: model.IntentOfferService, Payment: model.PaymentCash})

	w := doJSON(t, router, "GET", "/api/v1/opportunities/req-1/compatibility/off-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("expected null body for unknown model, got %q", w.Body.String())
	}
}

// --- Barter endpoint ---

func TestBarterMatch(t *testing.T) {
	_, ms, router := newTestEnv(t)
	seed(t, ms, model.Opportunity{
		ID:         "req-1",
		IntentType: model.IntentRequestService,
		Payment:    model.PaymentBarter,
		Attributes: model.Attributes{
			ServicesOffered: []model.ServiceItem{
				{Name: "Electrical Works", Quantity: dec("4"), UnitPrice: dec("250")},
			},
			ServicesRequested: []model.ServiceItem{
				{Name: "Plumbing", Quantity: dec("2"), UnitPrice: dec("500")},
			},
		},
	})
	ms.SaveProfile(context.Background(), &model.PartyProfile{
		UserID:       "user1",
		BarterOffers: []model.ServiceRef{model.PlainRef("Plumbing")},
		BarterNeeds:  []model.ServiceRef{model.PlainRef("Electrical Works")},
	})

	w := doJSON(t, router, "POST", "/api/v1/barter/match", match.BarterMatchRequest{
		OpportunityID: "req-1",
		UserID:        "user1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res barter.Result
	json.Unmarshal(w.Body.Bytes(), &res)
	// Both baskets fully matched (90 blend) plus equal-value bonus.
	if res.Score != 100 {
		t.Errorf("expected score 100, got %v", res.Score)
	}
	if !res.Compatible {
		t.Error("expected compatible result")
	}
}

func TestBarterMatch_CashOpportunityReturnsNull(t *testing.T) {
	_, ms, router := newTestEnv(t)
	seed(t, ms, model.Opportunity{ID: "req-1", IntentType: model.IntentRequestService, Payment: model.PaymentCash})

	w := doJSON(t, router, "POST", "/api/v1/barter/match", match.BarterMatchRequest{
		OpportunityID: "req-1",
		UserID:        "user1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("expected null body for cash opportunity, got %q", w.Body.String())
	}
}

func TestBarterMatch_ContentlessOpportunityReturnsNull(t *testing.T) {
	_, ms, router := newTestEnv(t)
	seed(t, ms, model.Opportunity{ID: "req-1", IntentType: model.IntentRequestService, Payment: model.PaymentBarter})

	w := doJSON(t, router, "POST", "/api/v1/barter/match", match.BarterMatchRequest{
		OpportunityID: "req-1",
		UserID:        "user1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	// No baskets, no offer text: nothing to evaluate.
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("expected null body for content-less opportunity, got %q", w.Body.String())
	}
}

func TestBarterMatch_MissingProfileDegrades(t *testing.T) {
	_, ms, router := newTestEnv(t)
	seed(t, ms, model.Opportunity{
		ID:         "req-1",
		IntentType: model.IntentRequestService,
		Payment:    model.PaymentBarter,
		Attributes: model.Attributes{BarterOffer: "welding services"},
	})

	w := doJSON(t, router, "POST", "/api/v1/barter/match", match.BarterMatchRequest{
		OpportunityID: "req-1",
		UserID:        "nobody",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res barter.Result
	json.Unmarshal(w.Body.Bytes(), &res)
	// Empty party: only the neutral offer-text sub-score participates.
	if res.Score != 50 {
		t.Errorf("expected neutral 50 against empty party, got %v", res.Score)
	}
}

// --- Profiles ---

func TestSaveProfile_MixedRefShapes(t *testing.T) {
	_, ms, router := newTestEnv(t)

	body := []byte(`{
		"company_name": "Delta Contracting",
		"barter_offers": ["Scaffolding", {"name": "Crane Rental", "quantity": "2", "unit_price": "1500"}],
		"barter_needs": ["Concrete Works"]
	}`)
	req := httptest.NewRequest("PUT", "/api/v1/profiles/user9", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	saved, err := ms.GetProfile(context.Background(), "user9")
	if err != nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if len(saved.BarterOffers) != 2 {
		t.Fatalf("expected 2 barter offers, got %d", len(saved.BarterOffers))
	}
	if saved.BarterOffers[0].Name != "Scaffolding" || saved.BarterOffers[0].Item != nil {
		t.Errorf("plain ref decoded wrong: %+v", saved.BarterOffers[0])
	}
	if saved.BarterOffers[1].Name != "Crane Rental" || saved.BarterOffers[1].Item == nil {
		t.Errorf("object ref decoded wrong: %+v", saved.BarterOffers[1])
	}
}

// --- Match flags ---

func TestMatchFlags(t *testing.T) {
	_, ms, router := newTestEnv(t)
	ms.InsertMatch(context.Background(), &model.Match{
		ID:          "m-1",
		SourceID:    "req-1",
		CandidateID: "off-1",
		Score:       85,
	})

	w := doJSON(t, router, "PUT", "/api/v1/matches/m-1/viewed", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	// Flipping an already-set flag stays a no-op success.
	w = doJSON(t, router, "PUT", "/api/v1/matches/m-1/viewed", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected idempotent 204, got %d", w.Code)
	}

	w = doJSON(t, router, "PUT", "/api/v1/matches/m-1/proposal", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	records, _ := ms.GetMatchesByOpportunity(context.Background(), "req-1")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].Viewed || !records[0].ProposalSubmitted {
		t.Errorf("flags not set: %+v", records[0])
	}

	w = doJSON(t, router, "PUT", "/api/v1/matches/ghost/viewed", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown match, got %d", w.Code)
	}
}

// --- Model catalog endpoint ---

func TestListModels(t *testing.T) {
	_, _, router := newTestEnv(t)

	w := doJSON(t, router, "GET", "/api/v1/models", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var all []catalog.ModelDefinition
	json.Unmarshal(w.Body.Bytes(), &all)
	if len(all) != 7 {
		t.Errorf("expected 7 built-in models, got %d", len(all))
	}

	w = doJSON(t, router, "GET", "/api/v1/models?applicability=B2P", nil)
	var b2p []catalog.ModelDefinition
	json.Unmarshal(w.Body.Bytes(), &b2p)
	for _, def := range b2p {
		if def.ID == "joint-venture" {
			t.Error("B2B-only joint-venture must not appear for B2P")
		}
	}
}
