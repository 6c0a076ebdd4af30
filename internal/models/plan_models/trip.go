package plan_models

import (
	"time"

	"wayfarer/internal/models/request_models"
)

// PlaceRecord is a destination resolved through geocoding.
type PlaceRecord struct {
	Input         string  `json:"input"`
	CanonicalName string  `json:"canonical_name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Confident     bool    `json:"confident"`
}

// ValidatedTrip is the immutable result of request validation: the original
// request plus resolved places and derived trip length.
type ValidatedTrip struct {
	Request request_models.TripRequest
	Places  []PlaceRecord
	Start   time.Time
	End     time.Time
	Days    int
}

// Destinations returns the canonical place names in request order.
func (t *ValidatedTrip) Destinations() []string {
	names := make([]string, 0, len(t.Places))
	for _, p := range t.Places {
		names = append(names, p.CanonicalName)
	}
	return names
}
