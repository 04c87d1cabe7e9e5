package match

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/barter"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/catalog"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/metrics"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/scoring"
	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/store"
)

// Service exposes the matching engine over HTTP: opportunity management,
// model-scoped scoring, barter compatibility, and reciprocal matching.
type Service struct {
	store   store.Store
	catalog *catalog.Catalog
	engine  *Engine
	evals   *scoring.Registry
	wsHub   *WSHub // optional hub for real-time match broadcasts
}

// NewService creates the HTTP service. Pass nil for hub if WebSocket
// broadcasting is not needed.
func NewService(st store.Store, cat *catalog.Catalog, hub *WSHub) *Service {
	return &Service{
		store:   st,
		catalog: cat,
		engine:  NewEngine(st),
		evals:   scoring.NewRegistry(),
		wsHub:   hub,
	}
}

// --- Request/Response types ---

// CreateOpportunityRequest is the JSON body for opportunity creation.
type CreateOpportunityRequest struct {
	IntentType model.IntentType  `json:"intent_type"`
	ModelID    string            `json:"model_id"`
	Payment    model.PaymentMode `json:"payment_mode"`
	Attributes model.Attributes  `json:"attributes"`
	CreatorID  string            `json:"creator_id"`
}

// ScoreRequest is the JSON body for POST /score.
type ScoreRequest struct {
	ModelID      string             `json:"model_id"`
	MetricScores map[string]float64 `json:"metric_scores"`
}

// BarterMatchRequest is the JSON body for POST /barter/match.
type BarterMatchRequest struct {
	OpportunityID string `json:"opportunity_id"`
	UserID        string `json:"user_id"`
}

// --- HTTP Handlers ---

// CreateOpportunity handles POST /api/v1/opportunities
func (s *Service) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req CreateOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	def, ok := s.catalog.Get(req.ModelID)
	if !ok {
		writeError(w, "unknown collaboration model: "+req.ModelID, http.StatusBadRequest)
		return
	}
	if !def.SupportsIntent(req.IntentType) {
		writeError(w, "model does not support intent type "+string(req.IntentType), http.StatusBadRequest)
		return
	}
	if !def.SupportsPayment(req.Payment) {
		writeError(w, "model does not support payment mode "+string(req.Payment), http.StatusBadRequest)
		return
	}
	if req.CreatorID == "" {
		writeError(w, "creator_id is required", http.StatusBadRequest)
		return
	}

	opp := &model.Opportunity{
		ID:         uuid.New().String(),
		IntentType: req.IntentType,
		ModelID:    req.ModelID,
		Payment:    req.Payment,
		Attributes: req.Attributes,
		Status:     model.StatusActive,
		CreatorID:  req.CreatorID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateOpportunity(r.Context(), opp); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	slog.Info("opportunity created",
		"id", opp.ID,
		"intent", opp.IntentType,
		"model", opp.ModelID,
		"payment", opp.Payment,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(opp)
}

// GetOpportunity handles GET /api/v1/opportunities/{opportunityID}
func (s *Service) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "opportunityID")

	opp, err := s.store.GetOpportunity(r.Context(), id)
	if err != nil {
		writeError(w, "opportunity not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opp)
}

// ListOpportunities handles GET /api/v1/opportunities
// Optional filters: ?intent=REQUEST_SERVICE&status=active&model=consortium
func (s *Service) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	filter := store.OpportunityFilter{
		IntentType: model.IntentType(r.URL.Query().Get("intent")),
		Status:     model.OpportunityStatus(r.URL.Query().Get("status")),
		ModelID:    r.URL.Query().Get("model"),
	}

	opps, err := s.store.ListOpportunities(r.Context(), filter)
	if err != nil {
		writeError(w, "failed to list opportunities", http.StatusInternalServerError)
		return
	}
	if opps == nil {
		opps = []model.Opportunity{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opps)
}

// GetMatches handles GET /api/v1/opportunities/{opportunityID}/matches
// Runs the reciprocal matcher in the direction implied by the source's
// intent, persists threshold-meeting results as match records, and
// broadcasts them over the WebSocket hub.
func (s *Service) GetMatches(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "opportunityID")
	ctx := r.Context()

	source, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		// Silent degradation: the page wants "matches if any".
		writeJSON(w, []Candidate{})
		return
	}

	var candidates []Candidate
	switch source.IntentType {
	case model.IntentRequestService:
		metrics.MatchRunsTotal.WithLabelValues("request_to_offerings").Inc()
		candidates = s.engine.MatchRequestToOfferings(ctx, id)
	case model.IntentOfferService:
		metrics.MatchRunsTotal.WithLabelValues("offering_to_requests").Inc()
		candidates = s.engine.MatchOfferingToRequests(ctx, id)
	default:
		writeJSON(w, []Candidate{})
		return
	}

	s.persistMatches(ctx, source, candidates)

	writeJSON(w, candidates)
}

// persistMatches records threshold-meeting candidates as match records and
// broadcasts them. Persistence failures are logged, never surfaced: the
// ranked list is still useful without the records.
func (s *Service) persistMatches(ctx context.Context, source *model.Opportunity, candidates []Candidate) {
	for _, c := range candidates {
		if !c.MeetsThreshold {
			continue
		}

		rec := &model.Match{
			ID:             uuid.New().String(),
			SourceID:       source.ID,
			CandidateID:    c.Opportunity.ID,
			Score:          c.Score,
			MeetsThreshold: true,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.store.InsertMatch(ctx, rec); err != nil {
			slog.Warn("failed to persist match", "source", source.ID, "candidate", c.Opportunity.ID, "err", err)
			continue
		}
		metrics.MatchesPersisted.WithLabelValues("true").Inc()

		if s.wsHub != nil {
			s.wsHub.Broadcast(WSMessage{
				Type:        "match_found",
				MatchID:     rec.ID,
				SourceID:    source.ID,
				CandidateID: c.Opportunity.ID,
				Score:       c.Score,
			})
			if err := s.store.SetMatchFlag(ctx, rec.ID, store.FlagNotified); err != nil {
				slog.Warn("failed to mark match notified", "match", rec.ID, "err", err)
			}
		}
	}
}

// ScoreModel handles POST /api/v1/score
// Model-scoped weighted scoring over caller-supplied metric sub-scores.
func (s *Service) ScoreModel(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	def, ok := s.catalog.Get(req.ModelID)
	if !ok {
		writeError(w, "unknown collaboration model: "+req.ModelID, http.StatusNotFound)
		return
	}

	result := scoring.ScoreAgainstModel(def, req.MetricScores)

	slog.Info("model-scoped score computed",
		"model", req.ModelID,
		"aggregate", result.Aggregate,
		"accepted", result.Accepted,
	)

	writeJSON(w, result)
}

// PairCompatibility handles
// GET /api/v1/opportunities/{opportunityID}/compatibility/{candidateID}
// Model-scoped matching: the source's collaboration model selects the
// metrics, the evaluator registry produces the sub-scores, and the weighted
// scorer aggregates them. An unknown model id makes matching unavailable
// and responds with JSON null rather than an error.
func (s *Service) PairCompatibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	source, err := s.store.GetOpportunity(ctx, chi.URLParam(r, "opportunityID"))
	if err != nil {
		writeError(w, "opportunity not found", http.StatusNotFound)
		return
	}
	candidate, err := s.store.GetOpportunity(ctx, chi.URLParam(r, "candidateID"))
	if err != nil {
		writeError(w, "candidate opportunity not found", http.StatusNotFound)
		return
	}

	def, ok := s.catalog.Get(source.ModelID)
	if !ok {
		slog.Warn("matching unavailable for unknown model", "model", source.ModelID)
		writeJSON(w, nil)
		return
	}

	subScores := s.evals.EvaluateAll(def,
		NormalizeOpportunity(source), NormalizeOpportunity(candidate))
	writeJSON(w, scoring.ScoreAgainstModel(def, subScores))
}

// BarterMatch handles POST /api/v1/barter/match
// Evaluates barter compatibility between an opportunity and a party.
// Responds with JSON null when the module is not applicable.
func (s *Service) BarterMatch(w http.ResponseWriter, r *http.Request) {
	var req BarterMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	opp, err := s.store.GetOpportunity(ctx, req.OpportunityID)
	if err != nil {
		writeError(w, "opportunity not found", http.StatusNotFound)
		return
	}
	opp = NormalizeOpportunity(opp)

	// A missing profile degrades to an empty party, not an error.
	party, err := s.store.GetProfile(ctx, req.UserID)
	if err != nil {
		slog.Warn("party profile unavailable", "user", req.UserID, "err", err)
		party = &model.PartyProfile{UserID: req.UserID}
	}
	party = NormalizeProfile(party)

	metrics.BarterEvaluations.Inc()
	writeJSON(w, barter.Match(opp, party))
}

// SaveProfile handles PUT /api/v1/profiles/{userID}
// Upserts the matching-relevant subset of a party profile. Barter entries
// may arrive as plain strings or full service objects; decoding normalizes
// both shapes.
func (s *Service) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.PartyProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	profile.UserID = chi.URLParam(r, "userID")

	normalized := NormalizeProfile(&profile)
	if err := s.store.SaveProfile(r.Context(), normalized); err != nil {
		writeError(w, "failed to save profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, normalized)
}

// ListModels handles GET /api/v1/models
// Optional filter: ?applicability=B2B
func (s *Service) ListModels(w http.ResponseWriter, r *http.Request) {
	if app := r.URL.Query().Get("applicability"); app != "" {
		defs := s.catalog.ByApplicability(app)
		if defs == nil {
			defs = []catalog.ModelDefinition{}
		}
		writeJSON(w, defs)
		return
	}
	writeJSON(w, s.catalog.All())
}

// MarkMatchViewed handles PUT /api/v1/matches/{matchID}/viewed
func (s *Service) MarkMatchViewed(w http.ResponseWriter, r *http.Request) {
	s.setFlag(w, r, store.FlagViewed)
}

// MarkMatchProposal handles PUT /api/v1/matches/{matchID}/proposal
func (s *Service) MarkMatchProposal(w http.ResponseWriter, r *http.Request) {
	s.setFlag(w, r, store.FlagProposalSubmitted)
}

func (s *Service) setFlag(w http.ResponseWriter, r *http.Request, flag store.MatchFlag) {
	matchID := chi.URLParam(r, "matchID")
	if err := s.store.SetMatchFlag(r.Context(), matchID, flag); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
