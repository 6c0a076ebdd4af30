package request_models

import "strconv"

// Supported budget tiers when no numeric budget is given.
const (
	BudgetTierBudget   = "budget"
	BudgetTierModerate = "moderate"
	BudgetTierLavish   = "lavish"
)

// TripRequest is the inbound payload from the UI shell. Dates are ISO
// calendar dates ("2006-01-02"). Either BudgetTier or a positive
// BudgetAmount with a currency must be present.
type TripRequest struct {
	Destinations []string `json:"destinations"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	GroupSize    int      `json:"group_size"`
	AgeBracket   string   `json:"age_bracket"`

	BudgetTier     string  `json:"budget_tier,omitempty"`
	BudgetAmount   float64 `json:"budget_amount,omitempty"`
	BudgetCurrency string  `json:"budget_currency,omitempty"`
}

// BudgetLine renders the budget constraint the way the generation prompt
// expects it. Whole units are enough for a budget hint.
func (r TripRequest) BudgetLine() string {
	if r.BudgetAmount > 0 {
		return "Approximate total budget: " + strconv.FormatInt(int64(r.BudgetAmount), 10) + " " + r.BudgetCurrency
	}
	return "Travel style: " + r.BudgetTier
}
