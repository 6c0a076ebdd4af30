package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wayfarer/internal/models/plan_models"
	"wayfarer/pkg/utils"
)

const StageAssemble = "assemble"

// Reserved headroom so repair-loop corrections never push the payload past
// the model budget.
const correctionReserveChars = 600

// Per destination-day of trip, how many snippet characters a topic earns.
const topicCharsPerDestinationDay = 300

type ContextServiceInterface interface {
	Assemble(ctx context.Context, trip *plan_models.ValidatedTrip, snippets map[plan_models.Topic][]plan_models.FactSnippet) (*plan_models.PromptContext, error)
}

type ContextService struct {
	cfg    utils.Config
	logger *zap.Logger
}

func NewContextService(cfg utils.Config, logger *zap.Logger) ContextServiceInterface {
	return &ContextService{cfg: cfg, logger: logger}
}

// Assemble selects snippets into a payload that never exceeds the context
// budget. Per-topic allowance grows with trip length and destination
// count; when a topic is over its allowance the lowest-relevance snippets
// are dropped whole, never cut mid-snippet.
func (s *ContextService) Assemble(ctx context.Context, trip *plan_models.ValidatedTrip, snippets map[plan_models.Topic][]plan_models.FactSnippet) (*plan_models.PromptContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := s.serializeTrip(trip)
	schema := draftSchemaInstructions(trip.Days)

	available := s.cfg.ContextBudgetChars - correctionReserveChars - len(header) - len(schema)
	if available < 0 {
		return nil, utils.NewPipelineError(StageAssemble, utils.ErrItineraryUnproducible,
			"trip parameters alone exceed the model context budget")
	}

	topics := plan_models.AllTopics()
	desired := topicCharsPerDestinationDay * trip.Days * len(trip.Places)
	perTopic := available / len(topics)
	if desired < perTopic {
		perTopic = desired
	}

	selected := make(map[plan_models.Topic][]plan_models.FactSnippet, len(topics))
	var sections strings.Builder
	for _, topic := range topics {
		// Retriever output arrives ranked best-first.
		used := 0
		for _, sn := range snippets[topic] {
			block := snippetBlock(sn)
			if used+len(block) > perTopic {
				continue
			}
			selected[topic] = append(selected[topic], sn)
			used += len(block)
		}
		if len(selected[topic]) == 0 {
			continue
		}
		sections.WriteString(fmt.Sprintf("\n## %s\n", strings.ToUpper(string(topic))))
		for _, sn := range selected[topic] {
			sections.WriteString(snippetBlock(sn))
		}
	}

	serialized := header + sections.String() + schema
	if len(serialized) > s.cfg.ContextBudgetChars {
		return nil, utils.NewPipelineError(StageAssemble, utils.ErrItineraryUnproducible,
			"assembled context exceeds the model context budget")
	}

	s.logger.Debug("context assembled",
		zap.Int("chars", len(serialized)),
		zap.Int("budget", s.cfg.ContextBudgetChars))

	return &plan_models.PromptContext{
		Trip:        trip,
		Selected:    selected,
		Serialized:  serialized,
		BudgetChars: s.cfg.ContextBudgetChars,
	}, nil
}

func (s *ContextService) serializeTrip(trip *plan_models.ValidatedTrip) string {
	req := trip.Request
	var b strings.Builder
	b.WriteString("You are an expert travel planner. Create a realistic itinerary from the inputs and research below.\n\n")
	b.WriteString("TRIP PARAMETERS\n")
	fmt.Fprintf(&b, "- Destinations: %s\n", strings.Join(trip.Destinations(), "; "))
	fmt.Fprintf(&b, "- Dates: %s to %s (%d days)\n", req.StartDate, req.EndDate, trip.Days)
	fmt.Fprintf(&b, "- People: %d\n", req.GroupSize)
	if req.AgeBracket != "" {
		fmt.Fprintf(&b, "- Average age: %s\n", req.AgeBracket)
	}
	fmt.Fprintf(&b, "- %s\n", req.BudgetLine())
	fmt.Fprintf(&b, "- Price all costs in %s.\n", s.cfg.SourceCurrency)
	b.WriteString("\nRESEARCH (recent web snippets; may be partial or empty)\n")
	return b.String()
}

func snippetBlock(sn plan_models.FactSnippet) string {
	return fmt.Sprintf("---\nSource: %s (%s)\nExtract: %s\n", sn.Title, sn.SourceURL, sn.Text)
}

func draftSchemaInstructions(days int) string {
	return fmt.Sprintf(`
OUTPUT
Return JSON only, exactly this shape, no markdown and no commentary:
{
  "days": [
    {
      "day": 1,
      "summary": "string",
      "activities": [{"name":"string","start_time":"09:00","end_time":"11:00","estimated_cost":100}],
      "transport_legs": [{"mode":"string","from":"string","to":"string","duration_minutes":30,"estimated_cost":50}],
      "stay": "string",
      "food": ["string"]
    }
  ],
  "packing_checklist": ["string"],
  "prebooking_items": [{"attraction":"string","price":200}]
}

Hard constraints:
- Exactly %d entries in "days", numbered 1..%d with no gaps.
- Every day has at least one activity and at least one food suggestion.
- Times formatted HH:MM with start_time < end_time.
- estimated_cost and price are non-negative numbers, never strings.
`, days, days)
}
