package handshake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObserveBeaconThenRoutersFor(t *testing.T) {
	t.Parallel()

	m := NewClientMapping()
	m.ObserveBeacon("c1", "r1", 100, 50)

	routers := m.RoutersFor("c1")
	assert.Equal(t, []string{"r1"}, routers)
}

func TestObserveBeaconKeepsLatestExpiration(t *testing.T) {
	t.Parallel()

	m := NewClientMapping()
	m.ObserveBeacon("c1", "r1", 100, 10) // expires 110
	m.ObserveBeacon("c1", "r1", 50, 10)  // expires 60, older; must not regress

	m.Refresh(100)
	assert.Equal(t, []string{"r1"}, m.RoutersFor("c1"), "a later beacon must not shorten an already-later expiration")
}

func TestMergeIsMaxMerge(t *testing.T) {
	t.Parallel()

	a := NewClientMapping()
	a.ObserveBeacon("c1", "r1", 0, 10) // expires 10

	incoming := map[string]map[string]int64{
		"c1": {"r1": 100, "r2": 50},
	}
	a.Merge(incoming)

	a.Refresh(60)
	routers := a.RoutersFor("c1")
	assert.ElementsMatch(t, []string{"r1"}, routers, "r2 expired at 50 and must be dropped, r1's merged 100 must survive")
}

func TestRefreshDropsExpiredEntriesAndEmptyClients(t *testing.T) {
	t.Parallel()

	m := NewClientMapping()
	m.ObserveBeacon("c1", "r1", 0, 5) // expires 5

	m.Refresh(10)
	assert.Empty(t, m.RoutersFor("c1"))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	t.Parallel()

	m := NewClientMapping()
	m.ObserveBeacon("c1", "r1", 0, 100)

	snap := m.Snapshot()
	snap["c1"]["r1"] = 999999

	assert.NotEqual(t, int64(999999), m.entries["c1"]["r1"], "mutating the snapshot must not alias the live map")
}
