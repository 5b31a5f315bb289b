package engine

import (
	"dtnsim/internal/agent"
	"dtnsim/internal/bundlemodel"
	"dtnsim/internal/movement"
)

// refreshPayloadHandlers drives the per-Kind behavior layered on top of
// radio and routing-protocol refresh: router gossip/egress, client
// connectivity state machine and handshakes.
func (s *Simulation) refreshPayloadHandlers(a *agent.Agent) {
	switch {
	case a.Router != nil:
		s.refreshRouter(a)
	case a.Client != nil:
		s.refreshClient(a)
	}
}

func (s *Simulation) refreshRouter(a *agent.Agent) {
	var connectedRouterIDs []string
	for _, n := range a.Neighbors {
		if !n.Connected {
			continue
		}
		if peer := s.agentByID(n.ID); peer != nil && peer.Kind == agent.KindRouter {
			connectedRouterIDs = append(connectedRouterIDs, n.ID)
		}
	}

	result := agent.StepRouter(a, agent.RouterStepContext{Now: s.now, ConnectedRouterIDs: connectedRouterIDs})

	for _, eg := range result.Egress {
		bundle := bundlemodel.NewBundle(
			bundlemodel.BundleID(eg.DestRouterID, eg.Payload.ID()),
			eg.DestRouterID,
			bundlemodel.Payload{Kind: bundlemodel.KindClientPayload, Client: eg.Payload},
			s.now, s.bundleLifespan,
		)
		if a.Protocol != nil {
			a.Protocol.HandleBundle(s.now, bundle)
		}
	}

	if len(result.GossipTo) == 0 {
		return
	}
	for _, id := range result.GossipTo {
		peer := s.agentByID(id)
		if peer == nil || peer.Router == nil {
			continue
		}
		peer.Router.Handshake.MergeGossip(result.GossipPayload)
	}
}

func (s *Simulation) refreshClient(a *agent.Agent) {
	result := agent.StepClient(a, agent.ClientStepContext{
		Now: s.now,
		IsRouter: func(id string) bool {
			peer := s.agentByID(id)
			return peer != nil && peer.Kind == agent.KindRouter
		},
	})

	for _, id := range result.BeaconTargets {
		if peer := s.agentByID(id); peer != nil && peer.Router != nil {
			peer.Router.Handshake.ObserveBeacon(a.ID, s.now)
		}
	}

	for _, id := range result.HandshakeStarts {
		s.performHandshake(a, id)
	}

	s.updatePursuit(a, result.PursuitTarget)
}

// performHandshake runs the full 6-step client/router exchange
// synchronously within a single tick, since both sides are already
// radio-connected and the engine mediates the call directly rather than
// through the bundle/protocol machinery.
func (s *Simulation) performHandshake(client *agent.Agent, routerID string) {
	router := s.agentByID(routerID)
	if router == nil || router.Router == nil {
		return
	}

	meta := router.Router.Handshake.Handshake2(client.ID)
	desired := client.Client.Handshake.Handshake3(meta)
	received := router.Router.Handshake.Handshake4(client.ID, desired)

	client.Client.Handshake.ReceivePayloads(s.now, received)
	for _, p := range received {
		s.results.DeliveredLatencies = append(s.results.DeliveredLatencies, p.Latency)
	}

	toSend := append([]*bundlemodel.ClientPayload(nil), client.Client.PayloadsToSend...)
	client.Client.PayloadsToSend = nil
	router.Router.Handshake.Handshake6(toSend)
}

// updatePursuit implements the RSSI-gradient localization special
// behavior: while a client is pursuing a detected but not-yet-connected
// router, it fits a position estimate from its recent radio history and
// steers a Fixed pattern toward it, falling back to its originally
// configured movement once pursuit ends.
func (s *Simulation) updatePursuit(a *agent.Agent, targetID string) {
	if a.Localization == nil {
		return
	}

	if targetID == "" {
		if a.Movement != a.BaseMovement {
			a.Movement = a.BaseMovement
		}
		return
	}

	if a.Localization.TargetID != targetID {
		a.Localization = agent.NewLocalization(targetID)
	}

	if !a.Localization.Fit(a.History, s.space) {
		return
	}

	if fixed, ok := a.Movement.Pattern.(*movement.Fixed); ok {
		fixed.Pos = a.Localization.Estimate
		return
	}
	a.Movement = movement.NewDriver(movement.NewFixed(a.Localization.Estimate), a.BaseMovement.Speed, a.BaseMovement.ModelSpeedLimit)
}
