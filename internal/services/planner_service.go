package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wayfarer/internal/models/request_models"
	"wayfarer/internal/models/response_models"
	"wayfarer/pkg/utils"
)

// RunState tracks a planning run through the pipeline.
type RunState string

const (
	StateDraft         RunState = "draft"
	StateRetrieved     RunState = "retrieved"
	StateAssembled     RunState = "assembled"
	StateGenerated     RunState = "generated"
	StateSchemaInvalid RunState = "schema_invalid"
	StateNormalized    RunState = "normalized"
)

type PlannerServiceInterface interface {
	PlanTrip(ctx context.Context, req request_models.TripRequest) (*response_models.Itinerary, error)
}

// PlannerService drives one run through
// draft -> retrieved -> assembled -> generated -> normalized, looping
// generated <-> schema_invalid a bounded number of times with corrective
// instructions before giving up.
type PlannerService struct {
	validator  ValidatorServiceInterface
	retriever  RetrieverServiceInterface
	assembler  ContextServiceInterface
	generator  GenerationServiceInterface
	normalizer NormalizerServiceInterface
	cfg        utils.Config
	logger     *zap.Logger
}

func NewPlannerService(
	validator ValidatorServiceInterface,
	retriever RetrieverServiceInterface,
	assembler ContextServiceInterface,
	generator GenerationServiceInterface,
	normalizer NormalizerServiceInterface,
	cfg utils.Config,
	logger *zap.Logger,
) PlannerServiceInterface {
	return &PlannerService{
		validator:  validator,
		retriever:  retriever,
		assembler:  assembler,
		generator:  generator,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
	}
}

func (p *PlannerService) PlanTrip(ctx context.Context, req request_models.TripRequest) (*response_models.Itinerary, error) {
	runID := uuid.New().String()
	log := p.logger.With(zap.String("run_id", runID))
	state := StateDraft

	trip, err := p.validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	snippets, err := p.retriever.Retrieve(ctx, trip)
	if err != nil {
		return nil, err
	}
	state = StateRetrieved
	log.Info("retrieval complete", zap.String("state", string(state)), zap.Int("topics", len(snippets)))

	promptCtx, err := p.assembler.Assemble(ctx, trip, snippets)
	if err != nil {
		return nil, err
	}
	state = StateAssembled
	log.Info("context assembled", zap.String("state", string(state)), zap.Int("chars", len(promptCtx.Serialized)))

	repairBudget := p.cfg.RepairAttempts
	if repairBudget < 0 {
		repairBudget = 0
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		draft, err := p.generator.Generate(ctx, promptWithCorrections(promptCtx.Serialized, promptCtx.CorrectiveNotes))
		if err != nil {
			return nil, err
		}
		state = StateGenerated
		log.Info("draft generated", zap.String("state", string(state)), zap.Int("attempt", attempt+1))

		itinerary, err := p.normalizer.Normalize(ctx, trip, draft)
		if err == nil {
			state = StateNormalized
			itinerary.RunID = runID
			log.Info("itinerary normalized", zap.String("state", string(state)))
			return itinerary, nil
		}

		if !errors.Is(err, utils.ErrSchemaValidation) {
			return nil, err
		}

		state = StateSchemaInvalid
		detail := utils.DetailOf(err)
		log.Warn("draft failed schema validation",
			zap.String("state", string(state)),
			zap.Int("repairs_used", attempt),
			zap.String("detail", detail))

		if attempt >= repairBudget {
			return nil, utils.NewPipelineError(StageNormalize, utils.ErrItineraryUnproducible,
				fmt.Sprintf("the model kept producing invalid itineraries (last problem: %s)", detail))
		}
		promptCtx.CorrectiveNotes = append(promptCtx.CorrectiveNotes, clipNote(detail))
	}
}

// Validation details can embed model-supplied text (activity names), so
// each note is clipped before it joins the prompt. Two clipped notes plus
// the lead-in stay inside the assembler's correction reserve.
const correctiveNoteMaxChars = 240

func clipNote(s string) string {
	if len(s) <= correctiveNoteMaxChars {
		return s
	}
	cut := correctiveNoteMaxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// promptWithCorrections appends repair-loop feedback to the assembled
// payload. The assembler reserves headroom for this section, so the
// context budget still holds.
func promptWithCorrections(base string, notes []string) string {
	if len(notes) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\nYour previous answer was rejected. Fix these problems and return the full corrected JSON:\n")
	for _, note := range notes {
		b.WriteString("- ")
		b.WriteString(note)
		b.WriteString("\n")
	}
	return b.String()
}
