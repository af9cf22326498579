package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSearchQuery(t *testing.T) {
	now := time.Now()
	depart := now.AddDate(0, 1, 0)
	q := NewSearchQuery("q1", "LHR", "AMS", &depart, nil, CabinEconomy, 2, "user1", now)

	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, "LHR", q.Origin)
	assert.Equal(t, "AMS", q.Destination)
	assert.Equal(t, QueryStatusActive, q.Status)
	assert.Equal(t, 2, q.Passengers)
}

func TestValidateSearchQuery(t *testing.T) {
	now := time.Now()

	valid := func() *SearchQuery {
		return &SearchQuery{
			ID:          "q1",
			Origin:      "LHR",
			Destination: "AMS",
			Cabin:       CabinEconomy,
			Passengers:  1,
			UserID:      "user1",
			Status:      QueryStatusActive,
			CreatedAt:   now,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*SearchQuery)
		wantErr bool
	}{
		{name: "valid query", mutate: func(q *SearchQuery) {}},
		{name: "missing ID", mutate: func(q *SearchQuery) { q.ID = "" }, wantErr: true},
		{name: "lowercase origin", mutate: func(q *SearchQuery) { q.Origin = "lhr" }, wantErr: true},
		{name: "short destination", mutate: func(q *SearchQuery) { q.Destination = "AM" }, wantErr: true},
		{name: "zero passengers", mutate: func(q *SearchQuery) { q.Passengers = 0 }, wantErr: true},
		{name: "bad cabin", mutate: func(q *SearchQuery) { q.Cabin = "steerage" }, wantErr: true},
		{name: "bad status", mutate: func(q *SearchQuery) { q.Status = "paused" }, wantErr: true},
		{
			name: "return before depart",
			mutate: func(q *SearchQuery) {
				depart := now.AddDate(0, 1, 0)
				ret := depart.AddDate(0, 0, -2)
				q.DepartDate = &depart
				q.ReturnDate = &ret
			},
			wantErr: true,
		},
		{
			name: "return after depart",
			mutate: func(q *SearchQuery) {
				depart := now.AddDate(0, 1, 0)
				ret := depart.AddDate(0, 0, 7)
				q.DepartDate = &depart
				q.ReturnDate = &ret
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid()
			tt.mutate(q)
			err := ValidateSearchQuery(q)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("nil query", func(t *testing.T) {
		assert.Error(t, ValidateSearchQuery(nil))
	})
}
