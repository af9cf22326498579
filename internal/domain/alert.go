package domain

import (
	"fmt"
	"time"
)

// AlertType represents the kind of standing alert
type AlertType string

const (
	AlertTypeCheap           AlertType = "cheap"
	AlertTypeRareAircraft    AlertType = "rare-aircraft"
	AlertTypeOpenDestination AlertType = "open-destination"
	AlertTypePriceWar        AlertType = "price-war"
)

// Alert is a standing user-defined rule evaluated against new observations.
// Soft-deleted by clearing Active.
type Alert struct {
	ID          string
	UserID      string
	Type        AlertType
	Origin      string
	Destination string
	DateFrom    *time.Time
	DateTo      *time.Time
	MinPrice    *float64
	MaxPrice    *float64
	Aircraft    []string
	OneWayOnly  bool
	Active      bool
	CreatedAt   time.Time
}

// NewAlert creates a new active Alert instance
func NewAlert(id, userID string, alertType AlertType, createdAt time.Time) *Alert {
	return &Alert{
		ID:        id,
		UserID:    userID,
		Type:      alertType,
		Active:    true,
		CreatedAt: createdAt,
	}
}

// ValidateAlert validates an Alert instance. The matcher skips (and logs)
// alerts failing this check rather than aborting a batch.
func ValidateAlert(a *Alert) error {
	if a == nil {
		return fmt.Errorf("alert cannot be nil")
	}
	if a.ID == "" {
		return fmt.Errorf("alert ID is required")
	}
	if a.UserID == "" {
		return fmt.Errorf("alert UserID is required")
	}
	if !isValidAlertType(a.Type) {
		return ErrInvalidAlertType
	}
	if a.Origin != "" && !isAirportCode(a.Origin) {
		return fmt.Errorf("alert origin must be a 3-letter airport code, got %q", a.Origin)
	}
	if a.Destination != "" && !isAirportCode(a.Destination) {
		return fmt.Errorf("alert destination must be a 3-letter airport code, got %q", a.Destination)
	}
	if a.MinPrice != nil && *a.MinPrice < 0 {
		return fmt.Errorf("alert min price cannot be negative")
	}
	if a.MinPrice != nil && a.MaxPrice != nil && *a.MinPrice > *a.MaxPrice {
		return fmt.Errorf("alert min price exceeds max price")
	}
	if a.Type == AlertTypeOpenDestination {
		// The open-destination rule is asymmetric: origin pinned, destination
		// deliberately absent.
		if a.Origin == "" {
			return fmt.Errorf("open-destination alert requires an origin")
		}
		if a.Destination != "" {
			return fmt.Errorf("open-destination alert must not set a destination")
		}
	}
	return nil
}

func isValidAlertType(t AlertType) bool {
	switch t {
	case AlertTypeCheap, AlertTypeRareAircraft, AlertTypeOpenDestination, AlertTypePriceWar:
		return true
	}
	return false
}
