package engine

import (
	"dtnsim/internal/agent"
	"dtnsim/internal/geometry"
	"dtnsim/internal/radio"
	"dtnsim/internal/routing"
)

// HistorySample mirrors one entry of an agent's bounded observation ring,
// shaped for serialization rather than internal use.
type HistorySample struct {
	Tick int64           `json:"tick"`
	Pos  geometry.Position `json:"pos"`
	Radio []radio.Neighbor `json:"radio_snapshot"`
}

// Snapshot is the per-agent state-snapshot document: id, position, radio
// view, recent history, routing protocol, agent type, and counters.
type Snapshot struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	Pos             geometry.Position `json:"pos"`
	Radio           []radio.Neighbor  `json:"radio"`
	History         []HistorySample   `json:"history"`
	RoutingProtocol string            `json:"routing_protocol,omitempty"`

	NumOutOfBounds        int `json:"num_out_of_bounds"`
	NumSpeedLimitExceeded int `json:"num_speed_limit_exceeded"`
	NumStored             int `json:"num_stored,omitempty"`
}

// Snapshots renders the current state of every agent for publication to a
// visualization client.
func (s *Simulation) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, snapshotOf(a))
	}
	return out
}

func snapshotOf(a *agent.Agent) Snapshot {
	snap := Snapshot{
		ID:                    a.ID,
		Type:                  a.Kind.String(),
		Pos:                   a.Pos,
		Radio:                 a.Neighbors,
		NumOutOfBounds:        a.NumOutOfBounds,
		NumSpeedLimitExceeded: a.NumSpeedLimitExceeded,
	}

	for _, h := range a.History.Recent(agent.HistoryCap) {
		snap.History = append(snap.History, HistorySample{Tick: h.Tick, Pos: h.Pos, Radio: h.RadioSnapshot})
	}

	if sc, ok := a.Protocol.(storedCounter); ok {
		snap.NumStored = sc.StoredCount()
	}
	snap.RoutingProtocol = protocolName(a.Protocol)

	return snap
}

func protocolName(p interface{}) string {
	switch p.(type) {
	case *routing.CGR:
		return "cgr"
	case *routing.Epidemic:
		return "epidemic"
	case *routing.SprayAndWait:
		return "spray_and_wait"
	default:
		return ""
	}
}
