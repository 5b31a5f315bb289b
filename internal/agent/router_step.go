package agent

import (
	"dtnsim/internal/bundlemodel"
	"dtnsim/internal/handshake"
)

// RouterStepContext is the read-only per-tick context the engine supplies
// to a router's step.
type RouterStepContext struct {
	Now int64

	// ConnectedRouterIDs lists the ids of currently radio-connected peer
	// routers, for periodic map-gossip.
	ConnectedRouterIDs []string
}

// RouterStepResult is the set of engine-mediated intents produced by a
// router's step: egress bundles for the routing protocol to carry, and a
// gossip payload to hand to every connected peer router.
type RouterStepResult struct {
	Egress        []handshake.EgressBundle
	GossipTo      []string
	GossipPayload bundlemodel.ClientMappingDictPayload
}

// StepRouter advances a router's handshake-side bookkeeping for one tick:
// expire the client-router mapping and outgoing payload queues, compute
// egress bundles, and offer this router's mapping snapshot to every
// currently connected peer router.
func StepRouter(a *Agent, ctx RouterStepContext) RouterStepResult {
	egress := a.Router.Handshake.RefreshEgress(ctx.Now)

	result := RouterStepResult{Egress: egress}
	if len(ctx.ConnectedRouterIDs) > 0 {
		result.GossipTo = ctx.ConnectedRouterIDs
		result.GossipPayload = a.Router.Handshake.BuildGossipPayload()
	}
	return result
}
