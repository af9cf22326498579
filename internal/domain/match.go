package domain

import (
	"fmt"
	"time"
)

// Match records one alert being satisfied by one observation.
// (AlertID, ObservationID) is unique; rows are never deleted.
type Match struct {
	ID            string
	AlertID       string
	ObservationID string
	MatchedAt     time.Time
	Seen          bool
}

// NewMatch creates a new unseen Match instance
func NewMatch(id, alertID, observationID string, matchedAt time.Time) *Match {
	return &Match{
		ID:            id,
		AlertID:       alertID,
		ObservationID: observationID,
		MatchedAt:     matchedAt,
		Seen:          false,
	}
}

// ValidateMatch validates a Match instance
func ValidateMatch(m *Match) error {
	if m == nil {
		return fmt.Errorf("match cannot be nil")
	}
	if m.ID == "" {
		return fmt.Errorf("match ID is required")
	}
	if m.AlertID == "" {
		return fmt.Errorf("match AlertID is required")
	}
	if m.ObservationID == "" {
		return fmt.Errorf("match ObservationID is required")
	}
	return nil
}

// MatchDetail is a match joined with the originating observation's price,
// carrier, route and source, as listed on the alert boundary.
type MatchDetail struct {
	Match
	AlertType    AlertType
	Price        float64
	Currency     string
	Carrier      string
	Origin       string
	Destination  string
	SourceDomain string
}
