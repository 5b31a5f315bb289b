package batch

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtnsim/internal/config"
)

func minimalConfigs() (*config.ModelConfig, *config.AgentsConfig) {
	mc := &config.ModelConfig{MaxSteps: 3, SpaceWidth: 100, SpaceHeight: 100, Seed: 1}
	ac := &config.AgentsConfig{
		Agents: []config.AgentConfig{
			{ID: "a1", Type: "simple", Pos: [2]float64{0, 0}},
		},
	}
	return mc, ac
}

func TestRunReturnsOneSummaryPerTrial(t *testing.T) {
	t.Parallel()

	mc, ac := minimalConfigs()
	summaries, err := Run(context.Background(), mc, ac, zerolog.Nop(), 4)

	require.NoError(t, err)
	assert.Len(t, summaries, 4)
}

func TestRunFailsOnUnknownAgentType(t *testing.T) {
	t.Parallel()

	mc, _ := minimalConfigs()
	ac := &config.AgentsConfig{Agents: []config.AgentConfig{{ID: "a1", Type: "not-a-real-type"}}}

	_, err := Run(context.Background(), mc, ac, zerolog.Nop(), 2)
	assert.Error(t, err)
}
