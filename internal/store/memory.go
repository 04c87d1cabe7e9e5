package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu            sync.RWMutex
	opportunities map[string]*model.Opportunity
	profiles      map[string]*model.PartyProfile
	matches       []model.Match
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		opportunities: make(map[string]*model.Opportunity),
		profiles:      make(map[string]*model.PartyProfile),
	}
}

func (s *MemoryStore) CreateOpportunity(_ context.Context, opp *model.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.opportunities[opp.ID]; exists {
		return fmt.Errorf("opportunity %s already exists", opp.ID)
	}

	// Store a copy to avoid external mutation.
	copy := *opp
	s.opportunities[opp.ID] = &copy
	return nil
}

func (s *MemoryStore) GetOpportunity(_ context.Context, id string) (*model.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opp, ok := s.opportunities[id]
	if !ok {
		return nil, fmt.Errorf("opportunity %s not found", id)
	}
	copy := *opp
	return &copy, nil
}

func (s *MemoryStore) ListOpportunities(_ context.Context, filter OpportunityFilter) ([]model.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Opportunity
	for _, opp := range s.opportunities {
		if !filterMatches(filter, opp) {
			continue
		}
		out = append(out, *opp)
	}
	return out, nil
}

func filterMatches(f OpportunityFilter, opp *model.Opportunity) bool {
	if f.IntentType != "" && opp.IntentType != f.IntentType {
		return false
	}
	if f.Status != "" && opp.Status != f.Status {
		return false
	}
	if f.ModelID != "" && opp.ModelID != f.ModelID {
		return false
	}
	return true
}

func (s *MemoryStore) UpdateOpportunityStatus(_ context.Context, id string, status model.OpportunityStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opportunities[id]
	if !ok {
		return fmt.Errorf("opportunity %s not found", id)
	}
	opp.Status = status
	return nil
}

func (s *MemoryStore) GetProfile(_ context.Context, userID string) (*model.PartyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s not found", userID)
	}
	copy := *p
	return &copy, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, profile *model.PartyProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *profile
	s.profiles[profile.UserID] = &copy
	return nil
}

func (s *MemoryStore) InsertMatch(_ context.Context, m *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.matches = append(s.matches, *m)
	return nil
}

func (s *MemoryStore) GetMatchesByOpportunity(_ context.Context, sourceID string) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Match
	for _, m := range s.matches {
		if m.SourceID == sourceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetMatchFlag(_ context.Context, matchID string, flag MatchFlag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.matches {
		if s.matches[i].ID != matchID {
			continue
		}
		switch flag {
		case FlagNotified:
			s.matches[i].Notified = true
		case FlagViewed:
			s.matches[i].Viewed = true
		case FlagProposalSubmitted:
			s.matches[i].ProposalSubmitted = true
		default:
			return fmt.Errorf("unknown match flag %q", flag)
		}
		return nil
	}
	return fmt.Errorf("match %s not found", matchID)
}
