package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wayfarer/internal/models/plan_models"
)

func TestAssembleWithZeroSnippets(t *testing.T) {
	s := NewContextService(testConfig(), zap.NewNop())

	promptCtx, err := s.Assemble(context.Background(), testTrip(), map[plan_models.Topic][]plan_models.FactSnippet{})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(promptCtx.Serialized), promptCtx.BudgetChars)
	assert.Contains(t, promptCtx.Serialized, "Jaipur")
	assert.Contains(t, promptCtx.Serialized, "3 days")
	assert.Contains(t, promptCtx.Serialized, `"days"`)
}

func TestAssembleRespectsBudget(t *testing.T) {
	cfg := testConfig()
	cfg.ContextBudgetChars = 3000
	s := NewContextService(cfg, zap.NewNop())

	big := strings.Repeat("attraction tickets and opening hours ", 200)
	snippets := map[plan_models.Topic][]plan_models.FactSnippet{
		plan_models.TopicAttraction: {
			{Topic: plan_models.TopicAttraction, SourceURL: "https://a.com", Title: "A", Text: big, Score: 0.9},
			{Topic: plan_models.TopicAttraction, SourceURL: "https://b.com", Title: "B", Text: big, Score: 0.5},
		},
	}

	promptCtx, err := s.Assemble(context.Background(), testTrip(), snippets)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(promptCtx.Serialized), cfg.ContextBudgetChars)
}

func TestAssembleDropsWholeSnippetsLowestRelevanceFirst(t *testing.T) {
	cfg := testConfig()
	s := NewContextService(cfg, zap.NewNop())

	// The first snippet nearly fills the topic allowance; the second,
	// lower-scored one must be dropped entirely, never cut.
	filler := strings.Repeat("transport fares and timings ", 28)
	snippets := map[plan_models.Topic][]plan_models.FactSnippet{
		plan_models.TopicTransport: {
			{Topic: plan_models.TopicTransport, SourceURL: "https://a.com", Title: "keep-me", Text: filler, Score: 0.9},
			{Topic: plan_models.TopicTransport, SourceURL: "https://b.com", Title: "drop-me", Text: filler + filler, Score: 0.2},
		},
	}

	promptCtx, err := s.Assemble(context.Background(), testTrip(), snippets)
	require.NoError(t, err)

	require.Len(t, promptCtx.Selected[plan_models.TopicTransport], 1)
	assert.Equal(t, "keep-me", promptCtx.Selected[plan_models.TopicTransport][0].Title)
	assert.Contains(t, promptCtx.Serialized, filler)
	assert.NotContains(t, promptCtx.Serialized, "drop-me")
}

func TestAssembleSnippetsNeverTruncatedMidText(t *testing.T) {
	s := NewContextService(testConfig(), zap.NewNop())

	snippets := map[plan_models.Topic][]plan_models.FactSnippet{
		plan_models.TopicFood: {
			{Topic: plan_models.TopicFood, SourceURL: "https://a.com", Title: "Food", Text: "dal baati churma at a local thali house", Score: 0.8},
		},
	}

	promptCtx, err := s.Assemble(context.Background(), testTrip(), snippets)
	require.NoError(t, err)

	for _, selected := range promptCtx.Selected {
		for _, sn := range selected {
			assert.Contains(t, promptCtx.Serialized, sn.Text)
		}
	}
}

func TestAssembleHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewContextService(testConfig(), zap.NewNop())
	_, err := s.Assemble(ctx, testTrip(), nil)
	require.ErrorIs(t, err, context.Canceled)
}
