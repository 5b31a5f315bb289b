package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRouterNoGossipWithoutPeers(t *testing.T) {
	t.Parallel()

	a := &Agent{Router: NewRouterState("r1", 1000)}
	result := StepRouter(a, RouterStepContext{Now: 0})

	assert.Empty(t, result.GossipTo)
	assert.Empty(t, result.Egress)
}

func TestStepRouterGossipsToConnectedPeers(t *testing.T) {
	t.Parallel()

	a := &Agent{Router: NewRouterState("r1", 1000)}
	a.Router.Handshake.Mapping.ObserveBeacon("c1", "r1", 0, 1000)

	result := StepRouter(a, RouterStepContext{Now: 0, ConnectedRouterIDs: []string{"r2", "r3"}})

	require.Len(t, result.GossipTo, 2)
	require.Contains(t, result.GossipPayload.Map, "c1")
	assert.Contains(t, result.GossipPayload.Map["c1"], "r1")
}
