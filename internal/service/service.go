// Package service holds the application services wiring the domain rules to
// the repositories, the update feed and the alert matcher.
package service

import (
	"github.com/google/uuid"

	"github.com/farewatch/farewatch/internal/domain"
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// MatchPage is one page of a user's matches with a keyset cursor.
type MatchPage struct {
	Items      []*domain.MatchDetail
	NextCursor string
	HasMore    bool
}
