package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "kiwi.com", NormalizeDomain("  Kiwi.COM "))
	assert.Equal(t, "", NormalizeDomain("   "))
}

func TestNewSource(t *testing.T) {
	now := time.Now()

	t.Run("pre-approved domain is trusted", func(t *testing.T) {
		s := NewSource("s1", "Amadeus.com", now)
		assert.Equal(t, "amadeus.com", s.Domain)
		assert.True(t, s.Trusted)
		assert.Equal(t, "Amadeus", s.DisplayName)
		assert.Zero(t, s.SuccessRate)
	})

	t.Run("unknown domain is ad-hoc", func(t *testing.T) {
		s := NewSource("s2", "random-scraper.io", now)
		assert.False(t, s.Trusted)
		assert.Equal(t, "Random-scraper", s.DisplayName)
	})

	t.Run("extension producer is trusted", func(t *testing.T) {
		s := NewSource("s3", "extension.farewatch.dev", now)
		assert.True(t, s.Trusted)
	})
}

func TestValidateSource(t *testing.T) {
	now := time.Now()

	t.Run("valid source", func(t *testing.T) {
		assert.NoError(t, ValidateSource(NewSource("s1", "kiwi.com", now)))
	})

	t.Run("missing ID", func(t *testing.T) {
		s := NewSource("", "kiwi.com", now)
		assert.Error(t, ValidateSource(s))
	})

	t.Run("missing domain", func(t *testing.T) {
		s := NewSource("s1", "", now)
		assert.Error(t, ValidateSource(s))
	})

	t.Run("success rate out of range", func(t *testing.T) {
		s := NewSource("s1", "kiwi.com", now)
		s.SuccessRate = 1.5
		assert.Error(t, ValidateSource(s))
	})

	t.Run("nil source", func(t *testing.T) {
		assert.Error(t, ValidateSource(nil))
	})
}
