// Package store defines the persistence interface for the matching engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"

	"github.com/Mabdelmofdy/PMTWIN-sub002/internal/model"
)

// OpportunityFilter narrows ListOpportunities. Zero-value fields are
// ignored.
type OpportunityFilter struct {
	IntentType model.IntentType
	Status     model.OpportunityStatus
	ModelID    string
}

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Opportunity operations ---

	// CreateOpportunity persists a new opportunity.
	CreateOpportunity(ctx context.Context, opp *model.Opportunity) error

	// GetOpportunity retrieves an opportunity by its ID.
	GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error)

	// ListOpportunities returns opportunities matching the filter.
	ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]model.Opportunity, error)

	// UpdateOpportunityStatus moves an opportunity through its lifecycle.
	UpdateOpportunityStatus(ctx context.Context, id string, status model.OpportunityStatus) error

	// --- Party profiles ---

	// GetProfile retrieves the matching-relevant subset of a user profile.
	GetProfile(ctx context.Context, userID string) (*model.PartyProfile, error)

	// SaveProfile creates or replaces a party profile.
	SaveProfile(ctx context.Context, profile *model.PartyProfile) error

	// --- Match records ---

	// InsertMatch appends a computed match record.
	InsertMatch(ctx context.Context, m *model.Match) error

	// GetMatchesByOpportunity returns all match records where the
	// opportunity is the source.
	GetMatchesByOpportunity(ctx context.Context, sourceID string) ([]model.Match, error)

	// SetMatchFlag flips one of the monotonic match flags false→true.
	// Flipping an already-set flag is a no-op, never an error.
	SetMatchFlag(ctx context.Context, matchID string, flag MatchFlag) error
}

// MatchFlag names the monotonic lifecycle flags on a match record.
type MatchFlag string

const (
	FlagNotified          MatchFlag = "notified"
	FlagViewed            MatchFlag = "viewed"
	FlagProposalSubmitted MatchFlag = "proposal_submitted"
)
