package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtnsim/internal/bundlemodel"
)

func payload(dropID, destClient string, creationTS, expirationTS int64) *bundlemodel.ClientPayload {
	return &bundlemodel.ClientPayload{
		DropID:       dropID,
		DestClient:   destClient,
		CreationTS:   creationTS,
		ExpirationTS: expirationTS,
	}
}

func TestHandshake2AdvertisesQueuedMetadata(t *testing.T) {
	t.Parallel()

	r := NewRouterSide("r1", 100)
	p := payload("drop1", "c1", 0, 500)
	r.QueueForClient(p)

	meta := r.Handshake2("c1")
	require.Len(t, meta, 1)
	assert.Equal(t, p.ID(), meta[0].PayloadID)
	assert.Equal(t, int64(500), meta[0].ExpirationTS)
}

func TestHandshake4ReturnsOnlyDesiredAndEmptiesQueue(t *testing.T) {
	t.Parallel()

	r := NewRouterSide("r1", 100)
	a := payload("dropA", "c1", 0, 500)
	b := payload("dropB", "c1", 0, 500)
	r.QueueForClient(a)
	r.QueueForClient(b)

	desired := map[string]bool{a.ID(): true}
	out := r.Handshake4("c1", desired)

	require.Len(t, out, 1)
	assert.Equal(t, a.ID(), out[0].ID())
	assert.Empty(t, r.Handshake2("c1"), "step 4 must empty the entire queue, desired or not")
}

func TestHandshake6QueuesAcceptedPayloads(t *testing.T) {
	t.Parallel()

	r := NewRouterSide("r1", 100)
	p := payload("dropA", "c2", 0, 500)

	r.Handshake6([]*bundlemodel.ClientPayload{p})

	meta := r.Handshake2("c2")
	require.Len(t, meta, 1)
	assert.Equal(t, p.ID(), meta[0].PayloadID)
}

func TestRefreshEgressKeepsUnmappedClientLocal(t *testing.T) {
	t.Parallel()

	r := NewRouterSide("r1", 100)
	r.QueueForClient(payload("dropA", "c1", 0, 500))

	egress := r.RefreshEgress(10)
	assert.Empty(t, egress)
	assert.Len(t, r.Handshake2("c1"), 1, "payload for an unmapped client must remain queued locally")
}

func TestRefreshEgressEmitsOnePerMappedRouter(t *testing.T) {
	t.Parallel()

	r := NewRouterSide("r1", 100)
	r.QueueForClient(payload("dropA", "c1", 0, 500))
	r.Mapping.ObserveBeacon("c1", "r2", 0, 1000)
	r.Mapping.ObserveBeacon("c1", "r3", 0, 1000)

	egress := r.RefreshEgress(10)
	require.Len(t, egress, 2)

	targets := map[string]bool{}
	for _, e := range egress {
		targets[e.DestRouterID] = true
	}
	assert.True(t, targets["r2"])
	assert.True(t, targets["r3"])
	assert.Empty(t, r.Handshake2("c1"), "payload is removed from local queue once egressed")
}

func TestRefreshEgressDropsExpiredPayload(t *testing.T) {
	t.Parallel()

	r := NewRouterSide("r1", 100)
	r.QueueForClient(payload("dropA", "c1", 0, 5))

	egress := r.RefreshEgress(10)
	assert.Empty(t, egress)
	assert.Empty(t, r.Handshake2("c1"))
}

func TestGossipRoundTrip(t *testing.T) {
	t.Parallel()

	sender := NewRouterSide("r1", 100)
	sender.Mapping.ObserveBeacon("c1", "r1", 0, 1000)

	receiver := NewRouterSide("r2", 100)
	receiver.MergeGossip(sender.BuildGossipPayload())

	assert.Equal(t, []string{"r1"}, receiver.Mapping.RoutersFor("c1"))
}
