package agent

import "dtnsim/internal/radio"

// ClientStepContext is the read-only per-tick context the engine supplies
// to a client's state-machine step. The agent's own most recent radio
// snapshot is already populated by the radio-refresh phase of the tick;
// IsRouter resolves a neighbor id to whether it is a router agent, a
// lookup the client cannot perform itself since agents never hold
// references to one another.
type ClientStepContext struct {
	Now      int64
	IsRouter func(id string) bool
}

// ClientStepResult is the set of engine-mediated intents produced by a
// client's step.
type ClientStepResult struct {
	// BeaconTargets are router ids that should receive a ClientBeaconPayload
	// via direct handler call this tick, not a routed bundle.
	BeaconTargets []string

	// HandshakeStarts are connected router ids with which to begin the
	// 6-step handshake this tick.
	HandshakeStarts []string

	// PursuitTarget is the router id the client should steer toward via
	// RSSI-gradient localization this tick, or "" if none.
	PursuitTarget string
}

// StepClient advances the client connectivity state machine by one tick.
func StepClient(a *Agent, ctx ClientStepContext) ClientStepResult {
	cs := a.Client
	var result ClientStepResult

	switch cs.Phase {
	case PhaseWorking:
		cs.WorkingStepsRemaining--
		if cs.WorkingStepsRemaining <= 0 {
			cs.Phase = PhaseConnectionEstablishment
		}

	case PhaseConnectionEstablishment:
		detectedRouters, connectedRouters := splitRouterNeighbors(a.Neighbors, ctx.IsRouter)

		for _, id := range detectedRouters {
			if !containsID(connectedRouters, id) {
				result.BeaconTargets = append(result.BeaconTargets, id)
			}
		}

		if cs.PursuitTargetID == "" && len(detectedRouters) > 0 {
			cs.PursuitTargetID = detectedRouters[0]
		}
		result.PursuitTarget = cs.PursuitTargetID

		if len(connectedRouters) > 0 {
			result.HandshakeStarts = connectedRouters
			cs.Phase = PhaseConnected
		}

	case PhaseConnected:
		cs.WorkingStepsRemaining = cs.ReconnectionInterval
		cs.PursuitTargetID = ""
		cs.Phase = PhaseWorking
	}

	return result
}

func splitRouterNeighbors(neighbors []radio.Neighbor, isRouter func(id string) bool) (detected, connected []string) {
	for _, n := range neighbors {
		if !isRouter(n.ID) {
			continue
		}
		detected = append(detected, n.ID)
		if n.Connected {
			connected = append(connected, n.ID)
		}
	}
	return detected, connected
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
