package engine

import "dtnsim/internal/bundlemodel"

// agentDispatcher is the per-agent routing.Dispatcher implementation
// handed to each protocol instance at construction time, so a protocol
// never needs a reference back to the engine itself beyond its own id.
type agentDispatcher struct {
	sim     *Simulation
	agentID string
}

func (d *agentDispatcher) DispatchPayload(now int64, p bundlemodel.Payload) {
	d.sim.dispatchPayload(d.agentID, now, p)
}

// dispatchPayload hands a delivered payload to the recipient agent's
// router/client-level handling, once a protocol has determined the
// bundle carrying it has reached its destination.
func (s *Simulation) dispatchPayload(selfID string, now int64, p bundlemodel.Payload) {
	a := s.agentByID(selfID)
	if a == nil {
		return
	}
	switch p.Kind {
	case bundlemodel.KindClientMappingDict:
		if a.Router != nil {
			a.Router.Handshake.MergeGossip(*p.Mapping)
		}
	case bundlemodel.KindClientPayload:
		if a.Router != nil {
			a.Router.Handshake.QueueForClient(p.Client)
		} else if a.Client != nil {
			a.Client.Handshake.ReceivePayloads(now, []*bundlemodel.ClientPayload{p.Client})
			s.results.DeliveredLatencies = append(s.results.DeliveredLatencies, p.Client.Latency)
		}
	case bundlemodel.KindClientBeacon:
		if a.Router != nil {
			a.Router.Handshake.ObserveBeacon(p.Beacon.ClientID, now)
		}
	}
}
