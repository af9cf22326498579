package domain

import (
	"fmt"
	"strings"
	"time"
)

// preApprovedDomains are producers we operate or have vetted; anything else
// auto-registers as ad-hoc and earns trust through its success rate.
var preApprovedDomains = map[string]struct{}{
	"extension.farewatch.dev": {},
	"amadeus.com":             {},
	"skyscanner.net":          {},
}

// Source represents a domain or API that produced one or more observations.
type Source struct {
	ID          string
	Domain      string
	DisplayName string
	Trusted     bool
	SuccessRate float64
	Priority    int
	CreatedAt   time.Time
}

// NormalizeDomain canonicalizes a producer domain for lookup and storage.
func NormalizeDomain(domainName string) string {
	return strings.ToLower(strings.TrimSpace(domainName))
}

// NewSource creates a Source for a (possibly unseen) producer domain.
// The trust flag is derived from the pre-approved set.
func NewSource(id, domainName string, createdAt time.Time) *Source {
	d := NormalizeDomain(domainName)
	_, trusted := preApprovedDomains[d]
	return &Source{
		ID:          id,
		Domain:      d,
		DisplayName: displayNameFor(d),
		Trusted:     trusted,
		SuccessRate: 0,
		Priority:    0,
		CreatedAt:   createdAt,
	}
}

// ValidateSource validates a Source instance
func ValidateSource(s *Source) error {
	if s == nil {
		return fmt.Errorf("source cannot be nil")
	}
	if s.ID == "" {
		return fmt.Errorf("source ID is required")
	}
	if s.Domain == "" {
		return fmt.Errorf("source domain is required")
	}
	if s.SuccessRate < 0 || s.SuccessRate > 1 {
		return fmt.Errorf("source success rate out of range: %f", s.SuccessRate)
	}
	return nil
}

func displayNameFor(domainName string) string {
	host := domainName
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	if host == "" {
		return domainName
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
