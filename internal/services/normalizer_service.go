package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"wayfarer/internal/models/plan_models"
	"wayfarer/internal/models/response_models"
	"wayfarer/pkg/utils"
)

const StageNormalize = "normalize"

var timeRe = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Fallback checklist when the model returns none; the terminal artifact
// always carries a non-empty packing list.
var defaultPacking = []string{
	"Passport / ID and printed copies",
	"Phone, charger and power bank",
	"Local SIM or eSIM plan",
	"Weather-appropriate clothing",
	"Comfortable walking shoes",
	"Basic medication and first-aid",
}

type NormalizerServiceInterface interface {
	Normalize(ctx context.Context, trip *plan_models.ValidatedTrip, draft *plan_models.ItineraryDraft) (*response_models.Itinerary, error)
}

// NormalizerService is the trust boundary for model output: it parses the
// draft against the required schema, converts costs into both currencies
// and attaches feasibility flags.
type NormalizerService struct {
	cfg    utils.Config
	logger *zap.Logger
	now    func() time.Time
}

func NewNormalizerService(cfg utils.Config, logger *zap.Logger) NormalizerServiceInterface {
	return &NormalizerService{cfg: cfg, logger: logger, now: time.Now}
}

func (n *NormalizerService) Normalize(ctx context.Context, trip *plan_models.ValidatedTrip, draft *plan_models.ItineraryDraft) (*response_models.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schemaFail := func(detail string) error {
		return utils.NewPipelineError(StageNormalize, utils.ErrSchemaValidation, detail)
	}

	draft.Payload = CleanJSONPayload(draft.Raw)
	if !json.Valid([]byte(draft.Payload)) {
		return nil, schemaFail("response is not valid JSON")
	}

	var parsed plan_models.DraftItinerary
	if err := json.Unmarshal([]byte(draft.Payload), &parsed); err != nil {
		return nil, schemaFail(fmt.Sprintf("response does not match the itinerary schema: %v", err))
	}

	if len(parsed.Days) != trip.Days {
		return nil, schemaFail(fmt.Sprintf("expected exactly %d days, got %d", trip.Days, len(parsed.Days)))
	}

	itinerary := &response_models.Itinerary{
		Destinations: trip.Destinations(),
		StartDate:    trip.Request.StartDate,
		EndDate:      trip.Request.EndDate,
		GroupSize:    trip.Request.GroupSize,
		AgeBracket:   trip.Request.AgeBracket,
		BudgetLine:   trip.Request.BudgetLine(),
		GeneratedAt:  n.now().UTC().Format(time.RFC3339),
	}

	var totalSource float64
	for i, day := range parsed.Days {
		if day.Day != i+1 {
			return nil, schemaFail(fmt.Sprintf("days must be numbered 1..%d without gaps; position %d has day %d", trip.Days, i+1, day.Day))
		}
		if len(day.Activities) == 0 {
			return nil, schemaFail(fmt.Sprintf("day %d has no activities", day.Day))
		}
		if len(day.Food) == 0 {
			return nil, schemaFail(fmt.Sprintf("day %d has no food suggestions", day.Day))
		}

		plan := response_models.DayPlan{
			Day:     day.Day,
			Date:    utils.DayDate(trip.Start, day.Day),
			Summary: day.Summary,
			Stay:    day.Stay,
			Food:    day.Food,
		}

		var daySource float64
		for j, act := range day.Activities {
			if strings.TrimSpace(act.Name) == "" {
				return nil, schemaFail(fmt.Sprintf("day %d activity %d has no name", day.Day, j+1))
			}
			if !timeRe.MatchString(act.StartTime) || !timeRe.MatchString(act.EndTime) {
				return nil, schemaFail(fmt.Sprintf("day %d activity %q has malformed times (expected HH:MM)", day.Day, act.Name))
			}
			if act.StartTime >= act.EndTime {
				return nil, schemaFail(fmt.Sprintf("day %d activity %q ends before it starts", day.Day, act.Name))
			}
			cost, err := n.costOf(act.EstimatedCost)
			if err != nil {
				return nil, schemaFail(fmt.Sprintf("day %d activity %q: %v", day.Day, act.Name, err))
			}
			daySource += cost.Source
			plan.Activities = append(plan.Activities, response_models.Activity{
				Name:      act.Name,
				StartTime: act.StartTime,
				EndTime:   act.EndTime,
				Cost:      cost,
			})
		}

		transitMinutes := 0
		for _, leg := range day.TransportLegs {
			if leg.DurationMinutes < 0 {
				return nil, schemaFail(fmt.Sprintf("day %d transport leg %s has negative duration", day.Day, leg.Mode))
			}
			cost, err := n.costOf(leg.EstimatedCost)
			if err != nil {
				return nil, schemaFail(fmt.Sprintf("day %d transport leg %s: %v", day.Day, leg.Mode, err))
			}
			daySource += cost.Source
			transitMinutes += leg.DurationMinutes
			plan.TransportLegs = append(plan.TransportLegs, response_models.TransportLeg{
				Mode:            leg.Mode,
				From:            leg.From,
				To:              leg.To,
				DurationMinutes: leg.DurationMinutes,
				Cost:            cost,
			})
		}

		// Feasibility is advisory: an overloaded day is flagged, not
		// rejected.
		if transitMinutes > n.cfg.TransitThresholdMinute {
			plan.FeasibilityFlag = fmt.Sprintf(
				"%d minutes in transit looks implausible for a single day; consider splitting this leg", transitMinutes)
			n.logger.Info("feasibility flag raised",
				zap.Int("day", day.Day),
				zap.Int("transit_minutes", transitMinutes))
		}

		plan.DayTotal = n.convert(daySource)
		totalSource += daySource
		itinerary.Days = append(itinerary.Days, plan)
	}

	for _, item := range parsed.PrebookingItems {
		price, err := n.costOf(item.Price)
		if err != nil {
			return nil, schemaFail(fmt.Sprintf("prebooking item %q: %v", item.Attraction, err))
		}
		itinerary.PrebookAlerts = append(itinerary.PrebookAlerts, response_models.PrebookAlert{
			Attraction: item.Attraction,
			Price:      price,
		})
	}

	itinerary.PackingChecklist = parsed.PackingList
	if len(itinerary.PackingChecklist) == 0 {
		itinerary.PackingChecklist = defaultPacking
	}

	itinerary.Total = n.convert(totalSource)
	return itinerary, nil
}

func (n *NormalizerService) costOf(v *float64) (response_models.Cost, error) {
	if v == nil {
		return response_models.Cost{}, fmt.Errorf("estimated cost missing or non-numeric")
	}
	if *v < 0 {
		return response_models.Cost{}, fmt.Errorf("estimated cost is negative")
	}
	return n.convert(*v), nil
}

// convert prices an amount in both currencies at the run's fixed rate,
// rounded to two decimals.
func (n *NormalizerService) convert(source float64) response_models.Cost {
	display := source
	if n.cfg.ExchangeRate > 0 {
		display = math.Round(source/n.cfg.ExchangeRate*100) / 100
	}
	return response_models.Cost{
		Source:          math.Round(source*100) / 100,
		SourceCurrency:  n.cfg.SourceCurrency,
		Display:         display,
		DisplayCurrency: n.cfg.DisplayCurrency,
	}
}

// CleanJSONPayload strips markdown fences and lead-in prose, then isolates
// the outermost JSON value by brace matching.
func CleanJSONPayload(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```JSON", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")

	if objStart != -1 && (arrStart == -1 || objStart < arrStart) {
		if end := findMatching(response, objStart, '{', '}'); end != -1 {
			return strings.TrimSpace(response[objStart : end+1])
		}
	} else if arrStart != -1 {
		if end := findMatching(response, arrStart, '[', ']'); end != -1 {
			return strings.TrimSpace(response[arrStart : end+1])
		}
	}
	return response
}

func findMatching(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
