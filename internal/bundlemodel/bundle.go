// Package bundlemodel defines the DTN bundle envelope and the payload
// variants it carries.
package bundlemodel

import "fmt"

// Bundle is an immutable, uniquely identified routed container.
// Expiration is fixed at creation: CreationTS + lifespan.
type Bundle struct {
	ID            string
	DestID        string
	Payload       Payload
	CreationTS    int64
	ExpirationTS  int64
}

// Expired reports whether the bundle's lifetime has elapsed as of now.
func (b Bundle) Expired(now int64) bool {
	return now >= b.ExpirationTS
}

// NewBundle constructs a Bundle with ExpirationTS = creationTS + lifespan.
func NewBundle(id, destID string, payload Payload, creationTS, lifespan int64) Bundle {
	return Bundle{
		ID:           id,
		DestID:       destID,
		Payload:      payload,
		CreationTS:   creationTS,
		ExpirationTS: creationTS + lifespan,
	}
}

// BundleID deterministically embeds the destination and a payload
// identifier; dedup at delivery is strictly by bundle id.
func BundleID(destID, payloadID string) string {
	return fmt.Sprintf("%s:%s", destID, payloadID)
}

// Payload is the sum type of application-level data a Bundle may carry.
// Exactly one of the embedded fields is populated, selected by Kind.
type Payload struct {
	Kind    PayloadKind
	Client  *ClientPayload
	Beacon  *ClientBeaconPayload
	Mapping *ClientMappingDictPayload
}

// PayloadKind tags which variant of Payload is populated.
type PayloadKind int

const (
	KindClientPayload PayloadKind = iota
	KindClientBeacon
	KindClientMappingDict
)

// ID returns a stable identifier for the payload, used as the basis for
// bundle ids and to detect application-layer duplicates.
func (p Payload) ID() string {
	switch p.Kind {
	case KindClientPayload:
		return p.Client.ID()
	case KindClientBeacon:
		return fmt.Sprintf("beacon:%s", p.Beacon.ClientID)
	case KindClientMappingDict:
		return "mapping"
	default:
		return "unknown"
	}
}

// ClientPayload is application data moving from a source client to a
// destination client, originated from a picked-up ground drop.
type ClientPayload struct {
	DropID       string
	SourceClient string
	DestClient   string
	CreationTS   int64
	ExpirationTS int64

	// DeliveryTS and Latency are populated once the payload is delivered to
	// its destination client during the handshake's final step.
	DeliveryTS int64
	Delivered  bool
	Latency    int64
}

// ID identifies the payload for dedup: two payloads with equal
// (DropID, CreationTS) are duplicates.
func (c *ClientPayload) ID() string {
	return fmt.Sprintf("%s@%d", c.DropID, c.CreationTS)
}

// Expired reports whether the payload's lifetime has elapsed.
func (c *ClientPayload) Expired(now int64) bool {
	return now >= c.ExpirationTS
}

// ClientBeaconPayload is a client's low-cost announcement of its presence.
type ClientBeaconPayload struct {
	ClientID string
}

// ClientMappingDictPayload carries one router's learned client locations,
// gossiped to another router.
type ClientMappingDictPayload struct {
	// Map is client_id -> (router_id -> expiration_ts).
	Map map[string]map[string]int64
}

// CloneMap returns a deep copy of Map suitable for attaching to an
// outgoing bundle without aliasing the sender's live map.
func (m *ClientMappingDictPayload) CloneMap() map[string]map[string]int64 {
	clone := make(map[string]map[string]int64, len(m.Map))
	for client, routers := range m.Map {
		inner := make(map[string]int64, len(routers))
		for r, exp := range routers {
			inner[r] = exp
		}
		clone[client] = inner
	}
	return clone
}
