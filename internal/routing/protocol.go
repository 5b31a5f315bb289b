// Package routing implements the pluggable routing protocols: Contact-Graph
// Routing (CGR), Epidemic, and Spray-and-Wait. The core simulation consumes
// any of them behind the Protocol interface.
package routing

import "dtnsim/internal/bundlemodel"

// NeighborInfo is a radio-connected peer as seen by a routing protocol's
// Refresh call.
type NeighborInfo struct {
	ID       string
	IsRouter bool
}

// Shuffler abstracts the simulation's shared RNG for the one place routing
// needs randomness: Spray-and-Wait's neighbor shuffle.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// RefreshContext carries everything a protocol's Refresh needs from the
// engine for one tick: the current time and the set of currently
// radio-connected neighbors.
type RefreshContext struct {
	Now                int64
	ConnectedNeighbors []NeighborInfo
	RNG                Shuffler
}

// ForwardKind selects which entry point the receiving protocol instance
// should be invoked through, keeping the engine the sole mediator between
// two protocol instances: a protocol returns intent and the engine
// delivers it.
type ForwardKind int

const (
	// ForwardNormal delivers via HandleBundle (CGR hop, Epidemic flood).
	ForwardNormal ForwardKind = iota
	// ForwardSpray delivers via HandleBundleWait (Spray-and-Wait spraying).
	ForwardSpray
	// ForwardDestination delivers via HandleBundleDestination (Spray-and-Wait
	// waiting bundle reaching its final destination).
	ForwardDestination
)

// Forward is the intent a protocol's Refresh returns instead of calling
// directly into another node: "hand these bundles to this neighbor, via
// this entry point."
type Forward struct {
	To      string
	Kind    ForwardKind
	Bundles []bundlemodel.Bundle
}

// Dispatcher is invoked by a protocol when a bundle's destination is the
// local node: it unwraps the payload and routes it to the appropriate
// application-layer handler.
type Dispatcher interface {
	DispatchPayload(now int64, p bundlemodel.Payload)
}

// Protocol is the capability set every routing strategy implements.
type Protocol interface {
	// HandleBundle ingests a bundle arriving at this node (or injected
	// locally by the owning agent). If the bundle's destination is this
	// node, it is unwrapped and dispatched; otherwise it is stored (CGR,
	// Epidemic) or registered for spraying (Spray-and-Wait).
	HandleBundle(now int64, b bundlemodel.Bundle)

	// HandleBundleWait is Spray-and-Wait's entry point for a bundle that has
	// been sprayed to this node and is now held in "waiting" role. No-op on
	// protocols other than Spray-and-Wait.
	HandleBundleWait(now int64, b bundlemodel.Bundle)

	// HandleBundleDestination is Spray-and-Wait's entry point for final
	// delivery of a waiting bundle. No-op on other protocols.
	HandleBundleDestination(now int64, b bundlemodel.Bundle)

	// Refresh performs expiry sweeps and decides which stored/spraying/
	// waiting bundles to forward to which currently connected neighbors.
	Refresh(ctx RefreshContext) []Forward

	// Stats returns the counters surfaced on the agent state snapshot.
	Stats() Stats
}

// Stats are the per-protocol counters observable in the agent snapshot:
// all non-fatal conditions surface through counters rather than errors.
type Stats struct {
	NumRepeatedBundleReceives int
	NumBundleReachedDest      int
	NumInvariantViolations    int
}
