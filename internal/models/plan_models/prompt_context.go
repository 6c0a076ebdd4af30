package plan_models

// PromptContext is the bounded payload handed to generation: the selected
// snippets, the serialized trip parameters, and any corrective notes
// appended by the repair loop. Serialized size never exceeds BudgetChars.
type PromptContext struct {
	Trip            *ValidatedTrip
	Selected        map[Topic][]FactSnippet
	Serialized      string
	BudgetChars     int
	CorrectiveNotes []string
}

// ItineraryDraft is the raw structured response attempt from the model.
// It may be malformed; only the normalizer decides.
type ItineraryDraft struct {
	Raw     string
	Payload string // cleaned JSON extracted from Raw
}

// Draft schema the model is asked to produce. Field presence and value
// ranges are checked by the normalizer, not here.
type DraftItinerary struct {
	Days            []DraftDay     `json:"days"`
	PackingList     []string       `json:"packing_checklist"`
	PrebookingItems []DraftPrebook `json:"prebooking_items"`
}

type DraftDay struct {
	Day           int             `json:"day"`
	Summary       string          `json:"summary"`
	Activities    []DraftActivity `json:"activities"`
	TransportLegs []DraftLeg      `json:"transport_legs"`
	Stay          string          `json:"stay"`
	Food          []string        `json:"food"`
}

type DraftActivity struct {
	Name          string   `json:"name"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	EstimatedCost *float64 `json:"estimated_cost"`
}

type DraftLeg struct {
	Mode            string   `json:"mode"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	DurationMinutes int      `json:"duration_minutes"`
	EstimatedCost   *float64 `json:"estimated_cost"`
}

type DraftPrebook struct {
	Attraction string   `json:"attraction"`
	Price      *float64 `json:"price"`
}
