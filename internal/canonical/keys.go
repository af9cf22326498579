// Package canonical builds the deterministic dedup fingerprints for
// candidate observations.
//
// Two tiers: the primary key identifies "the same offer" (route, carrier,
// flight numbers, schedule to the minute, price, leg count); the secondary
// key identifies "the same price point from the same carrier" (route,
// carrier, price) and additionally collapses near-duplicates that differ
// only in departure time, such as repeated scrape passes of one fare class.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
)

// missingToken stands in for an absent field so malformed duplicates still
// collapse together instead of raising.
const missingToken = "-"

// Primary returns the primary canonical key. Field order:
// route | first-leg carrier | joined flight numbers | depart (minute, UTC) |
// arrive (minute, UTC) | price (2 decimals) | leg count.
func Primary(c domain.Candidate) string {
	parts := []string{
		route(c),
		carrier(c),
		flightNumbers(c),
		departMinute(c),
		arriveMinute(c),
		price(c),
		strconv.Itoa(len(c.Legs)),
	}
	return digest(parts)
}

// Secondary returns the secondary canonical key. Field order:
// route | first-leg carrier | price (2 decimals).
func Secondary(c domain.Candidate) string {
	parts := []string{
		route(c),
		carrier(c),
		price(c),
	}
	return digest(parts)
}

func digest(parts []string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func route(c domain.Candidate) string {
	origin, destination := c.Route()
	if origin == "" {
		origin = missingToken
	}
	if destination == "" {
		destination = missingToken
	}
	return origin + "-" + destination
}

func carrier(c domain.Candidate) string {
	if len(c.Legs) == 0 || c.Legs[0].Carrier == "" {
		return missingToken
	}
	return c.Legs[0].Carrier
}

func flightNumbers(c domain.Candidate) string {
	if len(c.Legs) == 0 {
		return missingToken
	}
	numbers := make([]string, 0, len(c.Legs))
	for _, leg := range c.Legs {
		n := leg.Carrier + leg.FlightNumber
		if n == "" {
			n = missingToken
		}
		numbers = append(numbers, n)
	}
	return strings.Join(numbers, "+")
}

func departMinute(c domain.Candidate) string {
	if len(c.Legs) == 0 {
		return missingToken
	}
	return minute(c.Legs[0].DepartAt)
}

func arriveMinute(c domain.Candidate) string {
	if len(c.Legs) == 0 {
		return missingToken
	}
	return minute(c.Legs[len(c.Legs)-1].ArriveAt)
}

func minute(t time.Time) string {
	if t.IsZero() {
		return missingToken
	}
	return t.UTC().Truncate(time.Minute).Format("2006-01-02T15:04")
}

func price(c domain.Candidate) string {
	return strconv.FormatFloat(c.Price, 'f', 2, 64)
}
