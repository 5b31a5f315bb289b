// Package agent defines the agent data model: a single tagged variant
// (router, client, epidemic, spray, simple) sharing common fields by
// composition, rather than a class hierarchy.
package agent

import (
	"dtnsim/internal/bundlemodel"
	"dtnsim/internal/geometry"
	"dtnsim/internal/handshake"
	"dtnsim/internal/movement"
	"dtnsim/internal/radio"
	"dtnsim/internal/routing"
)

// Kind tags which agent variant a given Agent is.
type Kind int

const (
	KindRouter Kind = iota
	KindClient
	KindEpidemic
	KindSpray
	KindSimple
)

func (k Kind) String() string {
	switch k {
	case KindRouter:
		return "router"
	case KindClient:
		return "client"
	case KindEpidemic:
		return "epidemic"
	case KindSpray:
		return "spray"
	case KindSimple:
		return "simple"
	default:
		return "unknown"
	}
}

// ParseKind maps the agents.json "type" string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "router":
		return KindRouter, true
	case "client":
		return KindClient, true
	case "epidemic":
		return KindEpidemic, true
	case "spray":
		return KindSpray, true
	case "simple":
		return KindSimple, true
	default:
		return 0, false
	}
}

// Agent is the engine's single heterogeneous representation of every
// simulated node. Only the fields relevant to Kind are populated; pos is
// mutated solely by the engine.
type Agent struct {
	ID          string
	Kind        Kind
	Pos         geometry.Position
	RadioParams radio.Params
	Movement    *movement.Driver
	BaseMovement *movement.Driver
	History     *History

	// Neighbors holds the result of the most recent radio refresh, exposed
	// on the agent snapshot.
	Neighbors []radio.Neighbor

	// Protocol is non-nil for Router, Epidemic, and Spray agents.
	Protocol routing.Protocol

	Router *RouterState
	Client *ClientState

	Localization *Localization

	// Counters for non-fatal movement conditions, observable through the
	// agent snapshot.
	NumOutOfBounds        int
	NumSpeedLimitExceeded int
}

// RouterState is the router-specific behavior: handshake/mapping state and
// contact-plan-capture participation.
type RouterState struct {
	Handshake *handshake.RouterSide
}

// Phase enumerates the client connectivity state machine's states.
type Phase int

const (
	PhaseWorking Phase = iota
	PhaseConnectionEstablishment
	PhaseConnected
)

// DefaultReconnectionInterval is the default number of WORKING ticks before
// a client attempts to reconnect to a router.
const DefaultReconnectionInterval = 100

// ClientState is the client-specific state machine and handshake
// bookkeeping.
type ClientState struct {
	Phase                 Phase
	WorkingStepsRemaining int
	ReconnectionInterval  int
	PursuitTargetID       string

	Handshake *handshake.ClientSide

	// PayloadsToSend holds payloads this client has picked up from ground
	// drops (or otherwise originated) awaiting handshake step 5.
	PayloadsToSend []*bundlemodel.ClientPayload
}

// NewRouterState constructs a fresh router-side handshake state for
// selfRouterID.
func NewRouterState(selfRouterID string, hostRouterMappingTimeout int64) *RouterState {
	return &RouterState{Handshake: handshake.NewRouterSide(selfRouterID, hostRouterMappingTimeout)}
}

// NewClientState constructs a client starting in the WORKING phase.
func NewClientState(reconnectionInterval int) *ClientState {
	if reconnectionInterval <= 0 {
		reconnectionInterval = DefaultReconnectionInterval
	}
	return &ClientState{
		Phase:                 PhaseWorking,
		WorkingStepsRemaining: reconnectionInterval,
		ReconnectionInterval:  reconnectionInterval,
		Handshake:             handshake.NewClientSide(),
	}
}

// RemoveBundle drops p from the client's send queue once it has been
// accepted by a router in handshake step 5.
func (c *ClientState) RemoveBundle(p *bundlemodel.ClientPayload) {
	kept := c.PayloadsToSend[:0]
	for _, q := range c.PayloadsToSend {
		if q != p {
			kept = append(kept, q)
		}
	}
	c.PayloadsToSend = kept
}
