package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"wayfarer/internal/clients"
	"wayfarer/internal/models/plan_models"
	"wayfarer/internal/models/request_models"
	"wayfarer/pkg/utils"
)

const StageValidate = "validate"

// Destinations closer than this resolve to the same place.
const minDistinctKm = 1.0

type ValidatorServiceInterface interface {
	Validate(ctx context.Context, req request_models.TripRequest) (*plan_models.ValidatedTrip, error)
}

type ValidatorService struct {
	geocoder clients.GeocodingClient
	cfg      utils.Config
	logger   *zap.Logger
}

func NewValidatorService(geocoder clients.GeocodingClient, cfg utils.Config, logger *zap.Logger) ValidatorServiceInterface {
	return &ValidatorService{
		geocoder: geocoder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Validate checks the request against its invariants in a fixed order and
// fails with the first violated constraint. Local checks run before any
// geocoding call so malformed requests never touch the network.
func (v *ValidatorService) Validate(ctx context.Context, req request_models.TripRequest) (*plan_models.ValidatedTrip, error) {
	invalid := func(detail string) error {
		return utils.NewPipelineError(StageValidate, utils.ErrInvalidRequest, detail)
	}

	if len(req.Destinations) == 0 {
		return nil, invalid("at least one destination is required")
	}
	for _, d := range req.Destinations {
		if strings.TrimSpace(d) == "" {
			return nil, invalid("destination names must not be blank")
		}
	}

	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, invalid(fmt.Sprintf("start_date %q is not a valid date", req.StartDate))
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, invalid(fmt.Sprintf("end_date %q is not a valid date", req.EndDate))
	}
	if end.Before(start) {
		return nil, invalid("end_date must not be before start_date")
	}

	days := utils.TripDays(start, end)
	if days > v.cfg.MaxTripDays {
		return nil, invalid(fmt.Sprintf("trip length %d days exceeds the %d day limit", days, v.cfg.MaxTripDays))
	}

	if req.GroupSize < 1 {
		return nil, invalid("group_size must be at least 1")
	}

	if req.BudgetAmount > 0 {
		if strings.TrimSpace(req.BudgetCurrency) == "" {
			return nil, invalid("budget_currency is required with a numeric budget")
		}
	} else {
		switch req.BudgetTier {
		case request_models.BudgetTierBudget, request_models.BudgetTierModerate, request_models.BudgetTierLavish:
		default:
			return nil, invalid(fmt.Sprintf("budget_tier %q is not one of budget, moderate, lavish", req.BudgetTier))
		}
	}

	places := make([]plan_models.PlaceRecord, 0, len(req.Destinations))
	for _, d := range req.Destinations {
		place, found, err := v.geocoder.Lookup(ctx, d)
		if err != nil {
			v.logger.Warn("geocoding lookup failed", zap.String("place", d), zap.Error(err))
			return nil, invalid(fmt.Sprintf("could not resolve destination %q", d))
		}
		if !found {
			return nil, invalid(fmt.Sprintf("unknown destination %q", d))
		}
		places = append(places, *place)
	}

	for i := range places {
		for j := i + 1; j < len(places); j++ {
			if haversineKm(places[i], places[j]) < minDistinctKm {
				return nil, invalid(fmt.Sprintf(
					"destinations %q and %q resolve to the same place",
					places[i].Input, places[j].Input))
			}
		}
	}

	return &plan_models.ValidatedTrip{
		Request: req,
		Places:  places,
		Start:   start,
		End:     end,
		Days:    days,
	}, nil
}

func haversineKm(a, b plan_models.PlaceRecord) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
