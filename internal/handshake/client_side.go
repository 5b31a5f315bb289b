package handshake

import "dtnsim/internal/bundlemodel"

// ClientSide holds the per-client bookkeeping needed to drive its end of
// the 6-step handshake with a connected router.
type ClientSide struct {
	AlreadyReceivedIDs map[string]bool
}

// NewClientSide returns an empty client handshake state.
func NewClientSide() *ClientSide {
	return &ClientSide{AlreadyReceivedIDs: make(map[string]bool)}
}

// Handshake3 computes the desired-ids set from a router's advertised
// metadata: every metadata entry not already in AlreadyReceivedIDs. This
// never early-terminates on an empty metadata set - the client always
// proceeds to steps 4/5, simply with an empty request, keeping the 6-step
// exchange uniform regardless of whether the router is currently holding
// anything.
func (c *ClientSide) Handshake3(metadata []Metadata) map[string]bool {
	desired := make(map[string]bool)
	for _, m := range metadata {
		if !c.AlreadyReceivedIDs[m.PayloadID] {
			desired[m.PayloadID] = true
		}
	}
	return desired
}

// ReceivePayloads records delivery-latency metrics for payloads received in
// handshake step 4, and marks them as received so future handshakes do not
// re-request them.
func (c *ClientSide) ReceivePayloads(now int64, payloads []*bundlemodel.ClientPayload) {
	for _, p := range payloads {
		c.AlreadyReceivedIDs[p.ID()] = true
		p.Delivered = true
		p.DeliveryTS = now
		p.Latency = now - p.CreationTS
	}
}
