package domain

// AircraftInfo describes one entry of the rare-aircraft registry.
type AircraftInfo struct {
	Model        string  `json:"model"`
	Manufacturer string  `json:"manufacturer"`
	Status       string  `json:"status"`
	Rarity       int     `json:"rarity"`
	MaxSpeedMach float64 `json:"max_speed_mach"`
}

// rareAircraft is the static registry of airframes enthusiasts track.
// Rarity is a 1-10 editorial score, not a measured quantity.
var rareAircraft = map[string]AircraftInfo{
	"Airbus A380":          {Model: "Airbus A380", Manufacturer: "Airbus", Status: "production_ended", Rarity: 9, MaxSpeedMach: 0.85},
	"Boeing 747-8":         {Model: "Boeing 747-8", Manufacturer: "Boeing", Status: "limited_production", Rarity: 8, MaxSpeedMach: 0.855},
	"Airbus A350-1000":     {Model: "Airbus A350-1000", Manufacturer: "Airbus", Status: "active", Rarity: 7, MaxSpeedMach: 0.89},
	"Boeing 787-10":        {Model: "Boeing 787-10", Manufacturer: "Boeing", Status: "active", Rarity: 6, MaxSpeedMach: 0.85},
	"Airbus A220-300":      {Model: "Airbus A220-300", Manufacturer: "Airbus", Status: "active", Rarity: 5, MaxSpeedMach: 0.82},
	"Embraer E-Jet E2":     {Model: "Embraer E-Jet E2", Manufacturer: "Embraer", Status: "active", Rarity: 6, MaxSpeedMach: 0.82},
	"Bombardier CRJ-1000":  {Model: "Bombardier CRJ-1000", Manufacturer: "Bombardier", Status: "limited", Rarity: 7, MaxSpeedMach: 0.85},
	"Boeing 737 MAX 10":    {Model: "Boeing 737 MAX 10", Manufacturer: "Boeing", Status: "active", Rarity: 4, MaxSpeedMach: 0.79},
	"ATR 72-600":           {Model: "ATR 72-600", Manufacturer: "ATR", Status: "active", Rarity: 3, MaxSpeedMach: 0.55},
}

// IsRareAircraft reports whether the model appears in the rare registry.
func IsRareAircraft(model string) bool {
	_, ok := rareAircraft[model]
	return ok
}

// RareAircraftModels returns the registry's model names.
func RareAircraftModels() []string {
	models := make([]string, 0, len(rareAircraft))
	for model := range rareAircraft {
		models = append(models, model)
	}
	return models
}

// RareAircraftRegistry returns all registry entries.
func RareAircraftRegistry() []AircraftInfo {
	entries := make([]AircraftInfo, 0, len(rareAircraft))
	for _, info := range rareAircraft {
		entries = append(entries, info)
	}
	return entries
}
