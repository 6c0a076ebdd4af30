package retrievalfx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"wayfarer/internal/clients"
	"wayfarer/internal/services"
	"wayfarer/pkg/utils"
)

var Module = fx.Provide(ProvideSearchClient, ProvidePageFetcher, ProvideRetrieverService)

func ProvideSearchClient(cfg utils.Config) clients.SearchClient {
	return clients.NewDuckDuckGoClient(cfg.SearchBaseURL, cfg.SourceTimeout())
}

func ProvidePageFetcher(cfg utils.Config) clients.PageFetcher {
	return clients.NewCachingPageFetcher(cfg.SourceTimeout(), cfg.PageCacheTTL())
}

func ProvideRetrieverService(
	search clients.SearchClient,
	fetcher clients.PageFetcher,
	cfg utils.Config,
	logger *zap.Logger,
) services.RetrieverServiceInterface {
	return services.NewRetrieverService(search, fetcher, cfg, logger)
}
