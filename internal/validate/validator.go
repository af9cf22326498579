// Package validate implements the stateless rule-checker applied to every
// candidate observation at the ingestion boundary. It is a pure predicate:
// no side effects, and it never panics on malformed input.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
)

// Rejection reasons, one per rule.
const (
	ReasonMissingFields   = "missing_required_fields"
	ReasonDeniedProvider  = "denied_provider"
	ReasonBadFlightNumber = "bad_flight_number"
	ReasonBadAirportCode  = "bad_airport_code"
	ReasonPriceOutOfRange = "price_out_of_range"
	ReasonBadCurrency     = "bad_currency"
	ReasonDateInPast      = "date_in_past"
	ReasonDeniedReference = "denied_reference_url"
)

// RejectionError carries the first rule a candidate failed. Folded into the
// gateway's rejected count, never surfaced as a hard error.
type RejectionError struct {
	Reason string
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return "rejected: " + e.Reason
	}
	return fmt.Sprintf("rejected: %s (%s)", e.Reason, e.Detail)
}

func reject(reason, detail string) error {
	return &RejectionError{Reason: reason, Detail: detail}
}

// QueryContext is the owning query's route/date context the validator needs.
type QueryContext struct {
	Origin      string
	Destination string
	DepartDate  *time.Time
}

// Price bounds: open lower, closed upper.
const (
	priceFloor   = 10.0
	priceCeiling = 5000.0
)

// providerDenyList rejects helpers and fixtures masquerading as producers.
var providerDenyList = []string{"demo", "test", "sample", "fake"}

// allowedCurrencies is the fixed currency allow-list.
var allowedCurrencies = map[string]struct{}{
	"GBP": {},
	"USD": {},
	"EUR": {},
	"CAD": {},
	"AUD": {},
}

// 2-3 letter carrier, 1-4 digits, optional trailing letter.
var flightNumberPattern = regexp.MustCompile(`^[A-Z]{2,3}[0-9]{1,4}[A-Z]?$`)

var airportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Candidate applies the rules in order; the first failure short-circuits.
// A nil return means the candidate is accepted.
func Candidate(c domain.Candidate, q QueryContext, now time.Time) error {
	if c.Price == 0 || c.Currency == "" || len(c.Legs) == 0 {
		return reject(ReasonMissingFields, "price, currency and at least one leg are required")
	}

	label := strings.ToLower(c.Provider)
	for _, denied := range providerDenyList {
		if strings.Contains(label, denied) {
			return reject(ReasonDeniedProvider, c.Provider)
		}
	}

	first := c.Legs[0]
	last := c.Legs[len(c.Legs)-1]

	if !flightNumberPattern.MatchString(first.Carrier + first.FlightNumber) {
		return reject(ReasonBadFlightNumber, first.Carrier+first.FlightNumber)
	}

	if !airportCodePattern.MatchString(first.Origin) {
		return reject(ReasonBadAirportCode, first.Origin)
	}
	if !airportCodePattern.MatchString(last.Destination) {
		return reject(ReasonBadAirportCode, last.Destination)
	}

	if c.Price <= priceFloor || c.Price > priceCeiling {
		return reject(ReasonPriceOutOfRange, fmt.Sprintf("%.2f", c.Price))
	}

	if _, ok := allowedCurrencies[c.Currency]; !ok {
		return reject(ReasonBadCurrency, c.Currency)
	}

	if q.DepartDate != nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if q.DepartDate.Before(today) {
			return reject(ReasonDateInPast, q.DepartDate.Format("2006-01-02"))
		}
	}

	if c.ReferenceURL != "" {
		ref := strings.ToLower(c.ReferenceURL)
		if strings.Contains(ref, "demo") || strings.Contains(ref, "test") {
			return reject(ReasonDeniedReference, c.ReferenceURL)
		}
	}

	return nil
}
