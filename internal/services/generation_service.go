package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"wayfarer/internal/models/plan_models"
	"wayfarer/pkg/utils"
)

const StageGenerate = "generate"

type GenerationServiceInterface interface {
	Generate(ctx context.Context, prompt string) (*plan_models.ItineraryDraft, error)
}

// GenerationService serializes model calls per run and applies bounded
// retry-with-backoff around the provider client. Transient failures are
// retried; auth and quota failures surface immediately.
type GenerationService struct {
	client  utils.GenerationClientInterface
	cfg     utils.Config
	logger  *zap.Logger
	backoff time.Duration
}

func NewGenerationService(client utils.GenerationClientInterface, cfg utils.Config, logger *zap.Logger) GenerationServiceInterface {
	return &GenerationService{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		backoff: 500 * time.Millisecond,
	}
}

func (g *GenerationService) Generate(ctx context.Context, prompt string) (*plan_models.ItineraryDraft, error) {
	attempts := g.cfg.GenerationAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		callCtx, cancel := context.WithTimeout(ctx, g.cfg.GenerationTimeout())
		raw, err := g.client.GenerateItineraryJSON(callCtx, prompt)
		cancel()

		if err == nil {
			return &plan_models.ItineraryDraft{Raw: raw}, nil
		}

		if isFatalGeneration(err) {
			g.logger.Error("generation rejected", zap.Error(err))
			return nil, utils.NewPipelineError(StageGenerate, utils.ErrFatalGeneration,
				"the generation service rejected the credentials or quota")
		}

		lastErr = err
		g.logger.Warn("transient generation failure",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(utils.NewPipelineError(StageGenerate, utils.ErrTransientGeneration, err.Error())))

		if attempt < attempts {
			if err := sleepCtx(ctx, g.backoff*time.Duration(1<<(attempt-1))); err != nil {
				return nil, err
			}
		}
	}

	g.logger.Error("generation retries exhausted", zap.Error(lastErr))
	return nil, utils.NewPipelineError(StageGenerate, utils.ErrGenerationUnavailable,
		"the generation service did not respond after repeated attempts")
}

// isFatalGeneration reports whether err is an authentication or quota
// failure that retrying cannot fix.
func isFatalGeneration(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 401 || gerr.Code == 402 || gerr.Code == 403
	}

	var aerr *openai.APIError
	if errors.As(err, &aerr) {
		return aerr.HTTPStatusCode == 401 || aerr.HTTPStatusCode == 402 || aerr.HTTPStatusCode == 403
	}

	// Timeouts, rate limits and 5xx responses are all worth retrying.
	var nerr net.Error
	if errors.As(err, &nerr) {
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "quota exceeded")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
