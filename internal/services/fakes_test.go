package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"wayfarer/internal/clients"
	"wayfarer/internal/models/plan_models"
	"wayfarer/internal/models/request_models"
	"wayfarer/pkg/utils"
)

func testConfig() utils.Config {
	return utils.Config{
		GenerationTimeoutSeconds: 1,
		GenerationAttempts:       3,
		RepairAttempts:           2,
		SourceTimeoutSeconds:     1,
		SearchResultsPerTopic:    6,
		SnippetsPerTopic:         3,
		RetrievalParallelism:     4,
		PageCacheTTLHours:        1,
		ContextBudgetChars:       12000,
		MaxTripDays:              60,
		SourceCurrency:           "INR",
		DisplayCurrency:          "USD",
		ExchangeRate:             83.0,
		TransitThresholdMinute:   360,
	}
}

func testTripRequest() request_models.TripRequest {
	return request_models.TripRequest{
		Destinations: []string{"Jaipur"},
		StartDate:    "2026-11-02",
		EndDate:      "2026-11-04",
		GroupSize:    2,
		AgeBracket:   "25-35",
		BudgetTier:   request_models.BudgetTierBudget,
	}
}

func testTrip() *plan_models.ValidatedTrip {
	start, _ := utils.ParseDate("2026-11-02")
	end, _ := utils.ParseDate("2026-11-04")
	return &plan_models.ValidatedTrip{
		Request: testTripRequest(),
		Places: []plan_models.PlaceRecord{
			{Input: "Jaipur", CanonicalName: "Jaipur, Rajasthan, India", Latitude: 26.9, Longitude: 75.8, Confident: true},
		},
		Start: start,
		End:   end,
		Days:  3,
	}
}

// validDraftJSON builds a schema-correct model response for n days.
func validDraftJSON(n int) string {
	days := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			days += ","
		}
		days += fmt.Sprintf(`{
			"day": %d,
			"summary": "Day %d around the old town",
			"activities": [
				{"name":"City Palace visit","start_time":"09:00","end_time":"11:30","estimated_cost":700},
				{"name":"Bazaar walk","start_time":"16:00","end_time":"18:00","estimated_cost":0}
			],
			"transport_legs": [
				{"mode":"auto-rickshaw","from":"hotel","to":"City Palace","duration_minutes":20,"estimated_cost":150}
			],
			"stay": "Guesthouse near Hawa Mahal",
			"food": ["Dal baati churma","Lassi at Lassiwala"]
		}`, i, i)
	}
	return fmt.Sprintf(`{
		"days": [%s],
		"packing_checklist": ["Sunscreen","Scarf for temples"],
		"prebooking_items": [{"attraction":"Amber Fort light show","price":500}]
	}`, days)
}

// ---- client fakes ----

type fakeGeocoder struct {
	places map[string]*plan_models.PlaceRecord
	calls  int
}

func (f *fakeGeocoder) Lookup(ctx context.Context, place string) (*plan_models.PlaceRecord, bool, error) {
	f.calls++
	p, ok := f.places[place]
	if !ok {
		return nil, false, nil
	}
	return p, true, nil
}

// fakeSearch is hit concurrently by the retriever, so the call counter
// is guarded.
type fakeSearch struct {
	mu      sync.Mutex
	results []clients.SearchResult
	err     error
	calls   int
}

func (f *fakeSearch) Search(ctx context.Context, query string, maxResults int) ([]clients.SearchResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > maxResults {
		return f.results[:maxResults], nil
	}
	return f.results, nil
}

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	if text, ok := f.pages[pageURL]; ok {
		return text, nil
	}
	return "", fmt.Errorf("fetch failed for %s", pageURL)
}

// ---- model client fakes ----

// scriptedModelClient returns its responses in order; an empty string
// entry means "fail with err" for that call.
type scriptedModelClient struct {
	responses []string
	err       error
	calls     int
}

func (f *scriptedModelClient) GenerateItineraryJSON(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.responses) && f.responses[i] != "" {
		return f.responses[i], nil
	}
	if f.err != nil {
		return "", f.err
	}
	return "", fmt.Errorf("no scripted response for call %d", i+1)
}

func (f *scriptedModelClient) Close() error { return nil }

// scriptedGenerator stands in for the whole generation service in planner
// tests.
type scriptedGenerator struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *scriptedGenerator) Generate(ctx context.Context, prompt string) (*plan_models.ItineraryDraft, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	if i < len(f.responses) {
		return &plan_models.ItineraryDraft{Raw: f.responses[i]}, nil
	}
	return &plan_models.ItineraryDraft{Raw: f.responses[len(f.responses)-1]}, nil
}

// ---- service fakes for the planner ----

type passthroughValidator struct {
	trip  *plan_models.ValidatedTrip
	err   error
	calls int
}

func (f *passthroughValidator) Validate(ctx context.Context, req request_models.TripRequest) (*plan_models.ValidatedTrip, error) {
	f.calls++
	return f.trip, f.err
}

type emptyRetriever struct {
	calls int
}

func (f *emptyRetriever) Retrieve(ctx context.Context, trip *plan_models.ValidatedTrip) (map[plan_models.Topic][]plan_models.FactSnippet, error) {
	f.calls++
	return map[plan_models.Topic][]plan_models.FactSnippet{}, nil
}

func newTestPlanner(gen GenerationServiceInterface, cfg utils.Config) (PlannerServiceInterface, *passthroughValidator, *emptyRetriever) {
	logger := zap.NewNop()
	validator := &passthroughValidator{trip: testTrip()}
	retriever := &emptyRetriever{}
	planner := NewPlannerService(
		validator,
		retriever,
		NewContextService(cfg, logger),
		gen,
		NewNormalizerService(cfg, logger),
		cfg,
		logger,
	)
	return planner, validator, retriever
}

var (
	_ clients.GeocodingClient         = (*fakeGeocoder)(nil)
	_ clients.SearchClient            = (*fakeSearch)(nil)
	_ clients.PageFetcher             = (*fakeFetcher)(nil)
	_ utils.GenerationClientInterface = (*scriptedModelClient)(nil)
	_ GenerationServiceInterface      = (*scriptedGenerator)(nil)
)
