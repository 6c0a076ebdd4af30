package plannerfx

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"wayfarer/internal/api/controllers"
	"wayfarer/internal/services"
	"wayfarer/pkg/utils"
)

var Module = fx.Provide(
	ProvideGenerationClient,
	ProvideGenerationService,
	ProvideContextService,
	ProvideNormalizerService,
	ProvidePlannerService,
	ProvidePlannerController,
)

// ProvideGenerationClient creates the provider-specific model client from
// config and closes it on shutdown (the Gemini client holds a gRPC
// connection). The credential is supplied by the environment; this core
// only passes it through.
func ProvideGenerationClient(lc fx.Lifecycle, cfg utils.Config, logger *zap.Logger) (utils.GenerationClientInterface, error) {
	var apiKey, model string
	switch cfg.GenerationProvider {
	case "openai":
		apiKey, model = cfg.OpenAIAPIKey, cfg.OpenAIModel
	default:
		apiKey, model = cfg.GeminiAPIKey, cfg.GeminiModel
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for generation provider %q", cfg.GenerationProvider)
	}

	logger.Info("initializing generation client",
		zap.String("provider", cfg.GenerationProvider),
		zap.String("model", model))

	client, err := utils.NewGenerationClient(cfg.GenerationProvider, apiKey, model)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func ProvideGenerationService(client utils.GenerationClientInterface, cfg utils.Config, logger *zap.Logger) services.GenerationServiceInterface {
	return services.NewGenerationService(client, cfg, logger)
}

func ProvideContextService(cfg utils.Config, logger *zap.Logger) services.ContextServiceInterface {
	return services.NewContextService(cfg, logger)
}

func ProvideNormalizerService(cfg utils.Config, logger *zap.Logger) services.NormalizerServiceInterface {
	return services.NewNormalizerService(cfg, logger)
}

func ProvidePlannerService(
	validator services.ValidatorServiceInterface,
	retriever services.RetrieverServiceInterface,
	assembler services.ContextServiceInterface,
	generator services.GenerationServiceInterface,
	normalizer services.NormalizerServiceInterface,
	cfg utils.Config,
	logger *zap.Logger,
) services.PlannerServiceInterface {
	return services.NewPlannerService(validator, retriever, assembler, generator, normalizer, cfg, logger)
}

func ProvidePlannerController(
	plannerService services.PlannerServiceInterface,
	exportService services.ExportServiceInterface,
) *controllers.PlannerController {
	return controllers.NewPlannerController(plannerService, exportService)
}
