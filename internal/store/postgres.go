package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Model-specific attribute bags and barter lists are stored as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateOpportunity(ctx context.Context, opp *model.Opportunity) error {
	attrs, err := json.Marshal(opp.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO opportunities (id, intent_type, model_id, payment_mode, attributes, status, creator_id, created_at)
		 VALUES ($1, $2, $3, $4, $5::JSONB, $6, $7, $8)`,
		opp.ID, opp.IntentType, opp.ModelID, opp.Payment,
		string(attrs), opp.Status, opp.CreatorID, opp.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	var opp model.Opportunity
	var attrs []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, intent_type, model_id, payment_mode, attributes, status, creator_id, created_at
		 FROM opportunities WHERE id = $1`, id).
		Scan(&opp.ID, &opp.IntentType, &opp.ModelID, &opp.Payment,
			&attrs, &opp.Status, &opp.CreatorID, &opp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get opportunity %s: %w", id, err)
	}

	if err := json.Unmarshal(attrs, &opp.Attributes); err != nil {
		return nil, fmt.Errorf("decode attributes for %s: %w", id, err)
	}

	return &opp, nil
}

func (s *PostgresStore) ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]model.Opportunity, error) {
	// Filters are optional; empty values match everything.
	rows, err := s.pool.Query(ctx,
		`SELECT id, intent_type, model_id, payment_mode, attributes, status, creator_id, created_at
		 FROM opportunities
		 WHERE ($1 = '' OR intent_type = $1)
		   AND ($2 = '' OR status = $2)
		   AND ($3 = '' OR model_id = $3)
		 ORDER BY created_at DESC`,
		string(filter.IntentType), string(filter.Status), filter.ModelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Opportunity
	for rows.Next() {
		var opp model.Opportunity
		var attrs []byte
		if err := rows.Scan(&opp.ID, &opp.IntentType, &opp.ModelID, &opp.Payment,
			&attrs, &opp.Status, &opp.CreatorID, &opp.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(attrs, &opp.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes for %s: %w", opp.ID, err)
		}
		out = append(out, opp)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateOpportunityStatus(ctx context.Context, id string, status model.OpportunityStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE opportunities SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("opportunity %s not found", id)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*model.PartyProfile, error) {
	var p model.PartyProfile
	var offers, needs []byte

	err := s.pool.QueryRow(ctx,
		`SELECT user_id, company_name, location, barter_offers, barter_needs
		 FROM party_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.CompanyName, &p.Location, &offers, &needs)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	// Malformed lists degrade to empty rather than failing the lookup.
	if json.Unmarshal(offers, &p.BarterOffers) != nil {
		p.BarterOffers = nil
	}
	if json.Unmarshal(needs, &p.BarterNeeds) != nil {
		p.BarterNeeds = nil
	}

	return &p, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, profile *model.PartyProfile) error {
	offers, err := json.Marshal(profile.BarterOffers)
	if err != nil {
		return fmt.Errorf("marshal barter offers: %w", err)
	}
	needs, err := json.Marshal(profile.BarterNeeds)
	if err != nil {
		return fmt.Errorf("marshal barter needs: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO party_profiles (user_id, company_name, location, barter_offers, barter_needs)
		 VALUES ($1, $2, $3, $4::JSONB, $5::JSONB)
		 ON CONFLICT (user_id) DO UPDATE
		 SET company_name = $2, location = $3, barter_offers = $4::JSONB, barter_needs = $5::JSONB`,
		profile.UserID, profile.CompanyName, profile.Location,
		string(offers), string(needs),
	)
	return err
}

func (s *PostgresStore) InsertMatch(ctx context.Context, m *model.Match) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO matches (id, source_id, candidate_id, score, meets_threshold,
		                      notified, viewed, proposal_submitted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.SourceID, m.CandidateID, m.Score, m.MeetsThreshold,
		m.Notified, m.Viewed, m.ProposalSubmitted, m.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetMatchesByOpportunity(ctx context.Context, sourceID string) ([]model.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_id, candidate_id, score, meets_threshold,
		        notified, viewed, proposal_submitted, created_at
		 FROM matches WHERE source_id = $1 ORDER BY score DESC, created_at`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.SourceID, &m.CandidateID, &m.Score, &m.MeetsThreshold,
			&m.Notified, &m.Viewed, &m.ProposalSubmitted, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetMatchFlag(ctx context.Context, matchID string, flag MatchFlag) error {
	var column string
	switch flag {
	case FlagNotified:
		column = "notified"
	case FlagViewed:
		column = "viewed"
	case FlagProposalSubmitted:
		column = "proposal_submitted"
	default:
		return fmt.Errorf("unknown match flag %q", flag)
	}

	// Monotonic: only ever flips false→true.
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE matches SET %s = TRUE WHERE id = $1`, column), matchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %s not found", matchID)
	}
	return nil
}
