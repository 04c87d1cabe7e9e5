package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateOpportunity(ctx context.Context, opp *model.Opportunity) error {
	if err := s.primary.CreateOpportunity(ctx, opp); err != nil {
		return err
	}
	s.cacheOpportunity(ctx, opp)
	return nil
}

func (s *CachedStore) UpdateOpportunityStatus(ctx context.Context, id string, status model.OpportunityStatus) error {
	if err := s.primary.UpdateOpportunityStatus(ctx, id, status); err != nil {
		return err
	}
	// Invalidate; next read re-populates.
	s.rdb.Del(ctx, opportunityKey(id))
	return nil
}

func (s *CachedStore) SaveProfile(ctx context.Context, profile *model.PartyProfile) error {
	if err := s.primary.SaveProfile(ctx, profile); err != nil {
		return err
	}
	s.rdb.Del(ctx, profileKey(profile.UserID))
	return nil
}

func (s *CachedStore) InsertMatch(ctx context.Context, m *model.Match) error {
	if err := s.primary.InsertMatch(ctx, m); err != nil {
		return err
	}
	s.rdb.Del(ctx, matchesKey(m.SourceID))
	return nil
}

func (s *CachedStore) SetMatchFlag(ctx context.Context, matchID string, flag MatchFlag) error {
	// Flags live on match rows fetched by source, which we cannot derive
	// from the match id alone; the match-list cache self-heals at TTL.
	return s.primary.SetMatchFlag(ctx, matchID, flag)
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	data, err := s.rdb.Get(ctx, opportunityKey(id)).Bytes()
	if err == nil {
		var opp model.Opportunity
		if json.Unmarshal(data, &opp) == nil {
			return &opp, nil
		}
	}

	opp, err := s.primary.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheOpportunity(ctx, opp)
	return opp, nil
}

func (s *CachedStore) GetProfile(ctx context.Context, userID string) (*model.PartyProfile, error) {
	data, err := s.rdb.Get(ctx, profileKey(userID)).Bytes()
	if err == nil {
		var p model.PartyProfile
		if json.Unmarshal(data, &p) == nil {
			return &p, nil
		}
	}

	p, err := s.primary.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		s.rdb.Set(ctx, profileKey(userID), data, s.ttl)
	}
	return p, nil
}

func (s *CachedStore) GetMatchesByOpportunity(ctx context.Context, sourceID string) ([]model.Match, error) {
	data, err := s.rdb.Get(ctx, matchesKey(sourceID)).Bytes()
	if err == nil {
		var matches []model.Match
		if json.Unmarshal(data, &matches) == nil {
			return matches, nil
		}
	}

	matches, err := s.primary.GetMatchesByOpportunity(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(matches); err == nil {
		s.rdb.Set(ctx, matchesKey(sourceID), data, s.ttl)
	}
	return matches, nil
}

// --- Passthrough (not cached) ---

// ListOpportunities hits the primary directly: the active population feeding
// the reciprocal matcher must not be TTL-stale.
func (s *CachedStore) ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]model.Opportunity, error) {
	return s.primary.ListOpportunities(ctx, filter)
}

// --- Cache helpers ---

func (s *CachedStore) cacheOpportunity(ctx context.Context, opp *model.Opportunity) {
	if data, err := json.Marshal(opp); err == nil {
		s.rdb.Set(ctx, opportunityKey(opp.ID), data, s.ttl)
	}
}

func opportunityKey(id string) string { return fmt.Sprintf("opportunity:%s", id) }
func profileKey(uid string) string    { return fmt.Sprintf("profile:%s", uid) }
func matchesKey(id string) string     { return fmt.Sprintf("matches:%s", id) }
