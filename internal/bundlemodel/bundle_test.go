package bundlemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundleExpired(t *testing.T) {
	t.Parallel()

	b := NewBundle("id", "dest", Payload{Kind: KindClientBeacon}, 10, 50)
	assert.False(t, b.Expired(59))
	assert.True(t, b.Expired(60))
}

func TestBundleIDEmbedsDestAndPayload(t *testing.T) {
	t.Parallel()

	id := BundleID("router2", "beacon:client1")
	assert.Equal(t, "router2:beacon:client1", id)
}

func TestPayloadIDPerKind(t *testing.T) {
	t.Parallel()

	client := &ClientPayload{DropID: "drop1", CreationTS: 5}
	beacon := &ClientBeaconPayload{ClientID: "c1"}

	testCases := []struct {
		name string
		p    Payload
		want string
	}{
		{"client payload", Payload{Kind: KindClientPayload, Client: client}, client.ID()},
		{"beacon", Payload{Kind: KindClientBeacon, Beacon: beacon}, "beacon:c1"},
		{"mapping", Payload{Kind: KindClientMappingDict}, "mapping"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.p.ID())
		})
	}
}

func TestClientPayloadIDDedupKey(t *testing.T) {
	t.Parallel()

	a := &ClientPayload{DropID: "drop1", CreationTS: 100}
	b := &ClientPayload{DropID: "drop1", CreationTS: 100}
	c := &ClientPayload{DropID: "drop1", CreationTS: 101}

	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestCloneMapIsDeepCopy(t *testing.T) {
	t.Parallel()

	original := &ClientMappingDictPayload{
		Map: map[string]map[string]int64{
			"client1": {"router1": 100},
		},
	}

	clone := original.CloneMap()
	clone["client1"]["router1"] = 999

	assert.Equal(t, int64(100), original.Map["client1"]["router1"], "mutating the clone must not alias the original")
}
