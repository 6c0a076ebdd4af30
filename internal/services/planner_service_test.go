package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/pkg/utils"
)

func TestPlanTripHappyPath(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validDraftJSON(3)}}
	planner, _, retriever := newTestPlanner(gen, testConfig())

	itinerary, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.calls)
	assert.Equal(t, 1, gen.calls)
	assert.NotEmpty(t, itinerary.RunID)
	require.Len(t, itinerary.Days, 3)
	for _, day := range itinerary.Days {
		assert.NotEmpty(t, day.Activities)
		assert.NotEmpty(t, day.Food)
	}
	assert.NotEmpty(t, itinerary.PackingChecklist)
}

func TestPlanTripZeroSnippetsStillGenerates(t *testing.T) {
	// Retrieval degradation must not stop the pipeline: the test retriever
	// returns no snippets at all and generation still runs.
	gen := &scriptedGenerator{responses: []string{validDraftJSON(3)}}
	planner, _, _ := newTestPlanner(gen, testConfig())

	_, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestPlanTripInvalidRequestSkipsPipeline(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validDraftJSON(3)}}
	planner, validator, retriever := newTestPlanner(gen, testConfig())
	validator.trip = nil
	validator.err = utils.NewPipelineError(StageValidate, utils.ErrInvalidRequest, "end_date must not be before start_date")

	_, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Equal(t, 0, retriever.calls)
	assert.Equal(t, 0, gen.calls)
}

func TestPlanTripRepairLoopRecoversOnSecondAttempt(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"days":[]}`, // wrong day count
		validDraftJSON(3),
	}}
	planner, _, _ := newTestPlanner(gen, testConfig())

	itinerary, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Len(t, itinerary.Days, 3)

	// The second prompt carries the corrective instruction.
	require.Len(t, gen.prompts, 2)
	assert.NotContains(t, gen.prompts[0], "rejected")
	assert.Contains(t, gen.prompts[1], "rejected")
	assert.Contains(t, gen.prompts[1], "expected exactly 3 days")
}

func TestPlanTripClipsOversizedCorrectiveNotes(t *testing.T) {
	// A hostile draft can smuggle arbitrarily long text into the
	// validation detail via an activity name; the repaired prompt must
	// still fit the assembler's correction reserve.
	longName := strings.Repeat("palace ", 400)
	bad := strings.ReplaceAll(validDraftJSON(3), "City Palace visit", longName)
	bad = strings.ReplaceAll(bad, `"09:00"`, `"morning"`)

	gen := &scriptedGenerator{responses: []string{bad, validDraftJSON(3)}}
	planner, _, _ := newTestPlanner(gen, testConfig())

	_, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.NoError(t, err)
	require.Len(t, gen.prompts, 2)
	assert.LessOrEqual(t, len(gen.prompts[1])-len(gen.prompts[0]), correctionReserveChars)
}

func TestPlanTripRepairLoopIsBounded(t *testing.T) {
	cfg := testConfig()
	gen := &scriptedGenerator{responses: []string{`{"days":[]}`}}
	planner, _, _ := newTestPlanner(gen, cfg)

	_, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.ErrorIs(t, err, utils.ErrItineraryUnproducible)
	// Initial attempt plus exactly RepairAttempts repairs, then stop.
	assert.Equal(t, cfg.RepairAttempts+1, gen.calls)
}

func TestPlanTripGenerationUnavailablePropagates(t *testing.T) {
	gen := &scriptedGenerator{err: utils.NewPipelineError(StageGenerate, utils.ErrGenerationUnavailable, "no response after repeated attempts")}
	planner, _, _ := newTestPlanner(gen, testConfig())

	_, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.ErrorIs(t, err, utils.ErrGenerationUnavailable)
	assert.Equal(t, StageGenerate, utils.StageOf(err))
}

func TestPlanTripFatalGenerationPropagates(t *testing.T) {
	gen := &scriptedGenerator{err: utils.NewPipelineError(StageGenerate, utils.ErrFatalGeneration, "credentials rejected")}
	planner, _, _ := newTestPlanner(gen, testConfig())

	_, err := planner.PlanTrip(context.Background(), testTripRequest())
	require.ErrorIs(t, err, utils.ErrFatalGeneration)
	assert.Equal(t, 1, gen.calls)
}

func TestPlanTripHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{responses: []string{validDraftJSON(3)}}
	planner, _, _ := newTestPlanner(gen, testConfig())

	_, err := planner.PlanTrip(ctx, testTripRequest())
	require.ErrorIs(t, err, context.Canceled)
}
