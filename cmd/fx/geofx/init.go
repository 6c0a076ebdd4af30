package geofx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"wayfarer/internal/clients"
	"wayfarer/internal/services"
	"wayfarer/pkg/utils"
)

var Module = fx.Provide(ProvideGeocodingClient, ProvideValidatorService)

func ProvideGeocodingClient(cfg utils.Config) clients.GeocodingClient {
	return clients.NewNominatimClient(cfg.GeocoderBaseURL, cfg.SourceTimeout())
}

func ProvideValidatorService(geocoder clients.GeocodingClient, cfg utils.Config, logger *zap.Logger) services.ValidatorServiceInterface {
	return services.NewValidatorService(geocoder, cfg, logger)
}
