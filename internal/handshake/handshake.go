package handshake

import "dtnsim/internal/bundlemodel"

// Metadata is the (payload_identifier, expiration_ts) pair a router
// advertises in handshake step 2.
type Metadata struct {
	PayloadID    string
	ExpirationTS int64
}

// RouterSide holds the per-client payload queues and client-router
// mapping a router maintains for the handshake.
type RouterSide struct {
	SelfRouterID             string
	Mapping                  *ClientMapping
	HostRouterMappingTimeout int64

	// outgoingByClient holds payloads destined for each client, whether
	// placed there by routed bundle delivery or accepted from a client in
	// handshake step 6, awaiting either local handoff (step 4) or egress as
	// bundles (RefreshEgress).
	outgoingByClient map[string][]*bundlemodel.ClientPayload
}

// NewRouterSide constructs a router's handshake-side state.
func NewRouterSide(selfRouterID string, hostRouterMappingTimeout int64) *RouterSide {
	return &RouterSide{
		SelfRouterID:             selfRouterID,
		Mapping:                  NewClientMapping(),
		HostRouterMappingTimeout: hostRouterMappingTimeout,
		outgoingByClient:         make(map[string][]*bundlemodel.ClientPayload),
	}
}

// QueueForClient enqueues a payload for future delivery to destClient,
// e.g. after it arrives via routed bundle dispatch or client-to-client
// relay.
func (r *RouterSide) QueueForClient(p *bundlemodel.ClientPayload) {
	r.outgoingByClient[p.DestClient] = append(r.outgoingByClient[p.DestClient], p)
}

// ObserveBeacon learns (or refreshes) that this router currently hosts
// clientID, per every beacon seen from steps 2 onward of the handshake.
func (r *RouterSide) ObserveBeacon(clientID string, now int64) {
	r.Mapping.ObserveBeacon(clientID, r.SelfRouterID, now, r.HostRouterMappingTimeout)
}

// Handshake2 returns the metadata set for payloads currently held for
// clientID: {(payload_identifier, expiration_ts)}.
func (r *RouterSide) Handshake2(clientID string) []Metadata {
	queue := r.outgoingByClient[clientID]
	meta := make([]Metadata, 0, len(queue))
	for _, p := range queue {
		meta = append(meta, Metadata{PayloadID: p.ID(), ExpirationTS: p.ExpirationTS})
	}
	return meta
}

// Handshake4 returns the payloads in clientID's queue whose id is present
// in desiredIDs, then empties the entire queue for clientID — including
// any payload the client did not request.
func (r *RouterSide) Handshake4(clientID string, desiredIDs map[string]bool) []*bundlemodel.ClientPayload {
	queue := r.outgoingByClient[clientID]
	delete(r.outgoingByClient, clientID)

	var out []*bundlemodel.ClientPayload
	for _, p := range queue {
		if desiredIDs[p.ID()] {
			out = append(out, p)
		}
	}
	return out
}

// Handshake6 absorbs payloads newly offered by a client into the router's
// outgoing queue for future routed transmission.
func (r *RouterSide) Handshake6(accepted []*bundlemodel.ClientPayload) {
	for _, p := range accepted {
		r.QueueForClient(p)
	}
}

// BuildGossipPayload returns a snapshot of this router's client-mapping
// dictionary, to carry in a ClientMappingDictPayload to another router.
func (r *RouterSide) BuildGossipPayload() bundlemodel.ClientMappingDictPayload {
	return bundlemodel.ClientMappingDictPayload{Map: r.Mapping.Snapshot()}
}

// MergeGossip applies an incoming mapping-dict payload via monotone merge.
func (r *RouterSide) MergeGossip(p bundlemodel.ClientMappingDictPayload) {
	r.Mapping.Merge(p.Map)
}

// EgressBundle is the intent RefreshEgress emits: a payload plus one router
// id currently mapped to host its destination client. RefreshEgress emits
// one EgressBundle per mapped router, and each becomes one Bundle.
type EgressBundle struct {
	DestRouterID string
	Payload      *bundlemodel.ClientPayload
}

// RefreshEgress drops expired payloads from every client's outgoing queue,
// then for every remaining payload looks up the destination client's
// current router mapping: if any entry exists, emits one EgressBundle per
// known router; otherwise the payload is kept locally (unmapped clients
// cannot yet be routed to).
func (r *RouterSide) RefreshEgress(now int64) []EgressBundle {
	r.Mapping.Refresh(now)

	var egress []EgressBundle
	for client, queue := range r.outgoingByClient {
		kept := queue[:0]
		for _, p := range queue {
			if p.Expired(now) {
				continue
			}
			routers := r.Mapping.RoutersFor(client)
			if len(routers) == 0 {
				kept = append(kept, p)
				continue
			}
			for _, routerID := range routers {
				egress = append(egress, EgressBundle{DestRouterID: routerID, Payload: p})
			}
		}
		if len(kept) == 0 {
			delete(r.outgoingByClient, client)
		} else {
			r.outgoingByClient[client] = kept
		}
	}
	return egress
}
