package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtnsim/internal/bundlemodel"
)

func bundle(id, dest string, expiration int64) bundlemodel.Bundle {
	return bundlemodel.NewBundle(id, dest, bundlemodel.Payload{Kind: bundlemodel.KindClientBeacon}, 0, expiration)
}

func TestStoreBundleDedup(t *testing.T) {
	t.Parallel()

	s := New()
	dup := s.StoreBundle("r2", bundle("b1", "r2", 100))
	require.False(t, dup)

	dup = s.StoreBundle("r2", bundle("b1", "r2", 100))
	require.True(t, dup)
	assert.Equal(t, 1, s.NumRepeatedReceives)
	assert.Len(t, s.GetAllBundlesForDest("r2"), 1)
}

func TestMarkSeenDoesNotQueue(t *testing.T) {
	t.Parallel()

	s := New()
	dup := s.MarkSeen("b1")
	require.False(t, dup)
	assert.True(t, s.Seen("b1"))
	assert.Empty(t, s.GetAllBundles())

	dup = s.MarkSeen("b1")
	assert.True(t, dup)
	assert.Equal(t, 1, s.NumRepeatedReceives)
}

func TestRefreshSweepsExpired(t *testing.T) {
	t.Parallel()

	s := New()
	s.StoreBundle("r1", bundle("expired", "r1", 10))
	s.StoreBundle("r1", bundle("alive", "r1", 50))

	s.Refresh(10)

	remaining := s.GetAllBundlesForDest("r1")
	require.Len(t, remaining, 1)
	assert.Equal(t, "alive", remaining[0].ID)
}

func TestRefreshRemovesEmptyDestKey(t *testing.T) {
	t.Parallel()

	s := New()
	s.StoreBundle("r1", bundle("only", "r1", 5))
	s.Refresh(5)

	assert.NotContains(t, s.GetAllBundleDestIDs(), "r1")
	assert.Equal(t, 0, s.Count())
}

func TestRemoveAllBundlesForDest(t *testing.T) {
	t.Parallel()

	s := New()
	s.StoreBundle("r1", bundle("a", "r1", 100))
	s.StoreBundle("r1", bundle("b", "r1", 100))

	removed := s.RemoveAllBundlesForDest("r1")
	assert.Len(t, removed, 2)
	assert.Empty(t, s.GetAllBundlesForDest("r1"))
	assert.NotContains(t, s.GetAllBundleDestIDs(), "r1")
}

func TestCountAcrossDestinations(t *testing.T) {
	t.Parallel()

	s := New()
	s.StoreBundle("r1", bundle("a", "r1", 100))
	s.StoreBundle("r2", bundle("b", "r2", 100))
	s.StoreBundle("r2", bundle("c", "r2", 100))

	assert.Equal(t, 3, s.Count())
}
