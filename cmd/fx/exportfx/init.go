package exportfx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"wayfarer/internal/services"
)

var Module = fx.Provide(ProvideExportService)

func ProvideExportService(logger *zap.Logger) services.ExportServiceInterface {
	return services.NewExportService(logger)
}
