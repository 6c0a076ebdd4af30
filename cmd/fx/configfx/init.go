package configfx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"wayfarer/pkg/utils"
)

var Module = fx.Provide(ProvideConfig, ProvideLogger)

func ProvideConfig() utils.Config {
	return utils.LoadConfig()
}

func ProvideLogger(cfg utils.Config) *zap.Logger {
	utils.InitializeLogger(cfg.IsProduction())
	return utils.GetLogger()
}
