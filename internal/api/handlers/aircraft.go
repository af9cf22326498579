package handlers

import (
	"net/http"
	"sort"

	"github.com/farewatch/farewatch/internal/api"
	"github.com/farewatch/farewatch/internal/domain"
)

type AircraftHandler struct{}

func NewAircraftHandler() *AircraftHandler {
	return &AircraftHandler{}
}

// ListRare serves the rare-aircraft registry, rarest first.
func (h *AircraftHandler) ListRare(w http.ResponseWriter, r *http.Request) {
	entries := domain.RareAircraftRegistry()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rarity != entries[j].Rarity {
			return entries[i].Rarity > entries[j].Rarity
		}
		return entries[i].Model < entries[j].Model
	})

	api.Success(w, http.StatusOK, entries)
}
