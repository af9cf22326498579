package domain

import (
	"fmt"
	"time"
)

// Leg is one flight segment of a candidate itinerary.
type Leg struct {
	Carrier      string    `json:"carrier"`
	FlightNumber string    `json:"flight_number"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	DepartAt     time.Time `json:"depart_at"`
	ArriveAt     time.Time `json:"arrive_at"`
	Aircraft     string    `json:"aircraft,omitempty"`
}

// Candidate is one raw price report handed to the ingestion boundary by a
// producer. It is an explicit tagged record validated once at the boundary;
// downstream code never re-checks optional keys.
type Candidate struct {
	Provider     string  `json:"provider"`
	ReferenceURL string  `json:"reference_url,omitempty"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	FareBrand    string  `json:"fare_brand,omitempty"`
	BookingRef   string  `json:"booking_ref,omitempty"`
	Legs         []Leg   `json:"legs"`
}

// Route returns "ORIGIN-DESTINATION" from the first and last legs, or empty
// strings when legs are missing.
func (c Candidate) Route() (origin, destination string) {
	if len(c.Legs) == 0 {
		return "", ""
	}
	return c.Legs[0].Origin, c.Legs[len(c.Legs)-1].Destination
}

// Observation is one accepted, canonically-keyed price report for a query.
// Rows are written once per (query, primary hash), never updated in place;
// invalidation flips Valid instead of deleting.
type Observation struct {
	ID            string
	QueryID       string
	SourceID      string
	RawPayload    []byte
	PrimaryHash   string
	SecondaryHash string
	Price         float64
	Currency      string
	Origin        string
	Destination   string
	Carriers      []string
	FlightNumbers []string
	Aircraft      []string
	Stops         int
	FareBrand     string
	BookingRef    string
	Valid         bool
	FetchedAt     time.Time
}

// LegCount returns the number of legs the observation was built from.
func (o *Observation) LegCount() int {
	return o.Stops + 1
}

// NewObservation builds an Observation from a validated candidate.
func NewObservation(id, queryID, sourceID string, c Candidate, raw []byte, primaryHash, secondaryHash string, fetchedAt time.Time) *Observation {
	origin, destination := c.Route()

	carriers := make([]string, 0, len(c.Legs))
	flightNumbers := make([]string, 0, len(c.Legs))
	var aircraft []string
	for _, leg := range c.Legs {
		carriers = append(carriers, leg.Carrier)
		flightNumbers = append(flightNumbers, leg.Carrier+leg.FlightNumber)
		if leg.Aircraft != "" {
			aircraft = append(aircraft, leg.Aircraft)
		}
	}

	return &Observation{
		ID:            id,
		QueryID:       queryID,
		SourceID:      sourceID,
		RawPayload:    raw,
		PrimaryHash:   primaryHash,
		SecondaryHash: secondaryHash,
		Price:         c.Price,
		Currency:      c.Currency,
		Origin:        origin,
		Destination:   destination,
		Carriers:      carriers,
		FlightNumbers: flightNumbers,
		Aircraft:      aircraft,
		Stops:         len(c.Legs) - 1,
		FareBrand:     c.FareBrand,
		BookingRef:    c.BookingRef,
		Valid:         true,
		FetchedAt:     fetchedAt,
	}
}

// ValidateObservation validates an Observation instance
func ValidateObservation(o *Observation) error {
	if o == nil {
		return fmt.Errorf("observation cannot be nil")
	}
	if o.ID == "" {
		return fmt.Errorf("observation ID is required")
	}
	if o.QueryID == "" {
		return fmt.Errorf("observation QueryID is required")
	}
	if o.SourceID == "" {
		return fmt.Errorf("observation SourceID is required")
	}
	if o.PrimaryHash == "" || o.SecondaryHash == "" {
		return fmt.Errorf("observation canonical hashes are required")
	}
	if o.Price <= 0 {
		return fmt.Errorf("observation price must be positive")
	}
	if o.Stops < 0 {
		return fmt.Errorf("observation stop count cannot be negative")
	}
	return nil
}

// RankedObservation is an observation joined with the attribution of the
// source that produced it, as returned by the read boundary.
type RankedObservation struct {
	Observation
	SourceDomain  string
	SourceTrusted bool
}

// RouteStats summarizes the valid observations stored for one query.
type RouteStats struct {
	Count    int
	MinPrice float64
	MaxPrice float64
	AvgPrice float64
}
