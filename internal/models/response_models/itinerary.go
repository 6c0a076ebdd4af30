package response_models

// Cost is an amount in both the source and display currency, converted at
// the run's fixed rate.
type Cost struct {
	Source          float64 `json:"source"`
	SourceCurrency  string  `json:"source_currency"`
	Display         float64 `json:"display"`
	DisplayCurrency string  `json:"display_currency"`
}

type Activity struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Cost      Cost   `json:"cost"`
}

type TransportLeg struct {
	Mode            string `json:"mode"`
	From            string `json:"from"`
	To              string `json:"to"`
	DurationMinutes int    `json:"duration_minutes"`
	Cost            Cost   `json:"cost"`
}

type PrebookAlert struct {
	Attraction string `json:"attraction"`
	Price      Cost   `json:"price"`
}

type DayPlan struct {
	Day             int            `json:"day"`
	Date            string         `json:"date"`
	Summary         string         `json:"summary,omitempty"`
	Activities      []Activity     `json:"activities"`
	TransportLegs   []TransportLeg `json:"transport_legs,omitempty"`
	Stay            string         `json:"stay,omitempty"`
	Food            []string       `json:"food,omitempty"`
	DayTotal        Cost           `json:"day_total"`
	FeasibilityFlag string         `json:"feasibility_flag,omitempty"`
}

// Itinerary is the terminal artifact of a planning run. Day count always
// equals the requested trip length and every day carries at least one
// activity.
type Itinerary struct {
	RunID            string         `json:"run_id"`
	Destinations     []string       `json:"destinations"`
	StartDate        string         `json:"start_date"`
	EndDate          string         `json:"end_date"`
	GroupSize        int            `json:"group_size"`
	AgeBracket       string         `json:"age_bracket,omitempty"`
	BudgetLine       string         `json:"budget_line"`
	Days             []DayPlan      `json:"days"`
	PackingChecklist []string       `json:"packing_checklist"`
	PrebookAlerts    []PrebookAlert `json:"prebook_alerts,omitempty"`
	Total            Cost           `json:"total"`
	GeneratedAt      string         `json:"generated_at"`
}
