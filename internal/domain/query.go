package domain

import (
	"fmt"
	"time"
)

// QueryStatus represents the lifecycle status of a search query
type QueryStatus string

const (
	QueryStatusActive   QueryStatus = "active"
	QueryStatusArchived QueryStatus = "archived"
)

// CabinClass represents the requested cabin
type CabinClass string

const (
	CabinEconomy  CabinClass = "economy"
	CabinPremium  CabinClass = "premium"
	CabinBusiness CabinClass = "business"
	CabinFirst    CabinClass = "first"
)

// SearchQuery represents one user-issued flight search. Immutable except Status.
type SearchQuery struct {
	ID          string
	Origin      string
	Destination string
	DepartDate  *time.Time
	ReturnDate  *time.Time
	Cabin       CabinClass
	Passengers  int
	UserID      string
	Status      QueryStatus
	CreatedAt   time.Time
}

// NewSearchQuery creates a new SearchQuery instance
func NewSearchQuery(id, origin, destination string, departDate, returnDate *time.Time, cabin CabinClass, passengers int, userID string, createdAt time.Time) *SearchQuery {
	return &SearchQuery{
		ID:          id,
		Origin:      origin,
		Destination: destination,
		DepartDate:  departDate,
		ReturnDate:  returnDate,
		Cabin:       cabin,
		Passengers:  passengers,
		UserID:      userID,
		Status:      QueryStatusActive,
		CreatedAt:   createdAt,
	}
}

// ValidateSearchQuery validates a SearchQuery instance
func ValidateSearchQuery(q *SearchQuery) error {
	if q == nil {
		return fmt.Errorf("search query cannot be nil")
	}
	if q.ID == "" {
		return fmt.Errorf("search query ID is required")
	}
	if !isAirportCode(q.Origin) {
		return fmt.Errorf("search query origin must be a 3-letter airport code, got %q", q.Origin)
	}
	if !isAirportCode(q.Destination) {
		return fmt.Errorf("search query destination must be a 3-letter airport code, got %q", q.Destination)
	}
	if q.Passengers < 1 {
		return fmt.Errorf("search query needs at least one passenger")
	}
	if !isValidCabin(q.Cabin) {
		return fmt.Errorf("search query cabin is invalid: %s", q.Cabin)
	}
	if !isValidQueryStatus(q.Status) {
		return fmt.Errorf("search query status is invalid: %s", q.Status)
	}
	if q.DepartDate != nil && q.ReturnDate != nil && q.ReturnDate.Before(*q.DepartDate) {
		return fmt.Errorf("search query return date precedes depart date")
	}
	return nil
}

func isAirportCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isValidCabin(c CabinClass) bool {
	switch c {
	case CabinEconomy, CabinPremium, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

func isValidQueryStatus(s QueryStatus) bool {
	switch s {
	case QueryStatusActive, QueryStatusArchived:
		return true
	}
	return false
}
