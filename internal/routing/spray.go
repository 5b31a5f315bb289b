package routing

import "dtnsim/internal/bundlemodel"

// NumNodesToSpray is the default L parameter: the number of distinct nodes
// a spraying bundle is handed to before it is retired from the spraying
// map.
const NumNodesToSpray = 4

// SprayAndWait implements Spray-and-Wait: a bundle starts in "spraying"
// role at its originator, handed to up to NumNodesToSpray distinct
// neighbors (each of which then holds it in "waiting" role), and a waiting
// bundle is forwarded on only when the neighbor is the bundle's
// destination.
type SprayAndWait struct {
	SelfID      string
	Dispatcher  Dispatcher
	Correctness bool

	sprayMap map[string]map[string]bool // bundle id -> set of node ids sprayed
	spraying map[string]bundlemodel.Bundle
	waiting  map[string]bundlemodel.Bundle

	numRepeated    int
	numReachedDest int
	invariantViols int
}

// NewSprayAndWait constructs a Spray-and-Wait protocol instance for selfID.
func NewSprayAndWait(selfID string, dispatcher Dispatcher, correctness bool) *SprayAndWait {
	return &SprayAndWait{
		SelfID:      selfID,
		Dispatcher:  dispatcher,
		Correctness: correctness,
		sprayMap:    make(map[string]map[string]bool),
		spraying:    make(map[string]bundlemodel.Bundle),
		waiting:     make(map[string]bundlemodel.Bundle),
	}
}

// HandleBundle is the originator's entry point: the bundle begins life in
// spraying role with an empty sprayed-set.
func (s *SprayAndWait) HandleBundle(now int64, b bundlemodel.Bundle) {
	if b.DestID == s.SelfID {
		s.deliverToSelf(now, b)
		return
	}
	if _, exists := s.sprayMap[b.ID]; exists {
		s.numRepeated++
		return
	}
	s.sprayMap[b.ID] = make(map[string]bool)
	s.spraying[b.ID] = b
}

// HandleBundleWait is invoked on a node that has just been sprayed a copy:
// it now holds the bundle in waiting role.
func (s *SprayAndWait) HandleBundleWait(now int64, b bundlemodel.Bundle) {
	if b.DestID == s.SelfID {
		s.deliverToSelf(now, b)
		return
	}
	if _, exists := s.waiting[b.ID]; exists {
		s.numRepeated++
		return
	}
	s.waiting[b.ID] = b
}

// HandleBundleDestination delivers a waiting bundle that has reached its
// destination.
func (s *SprayAndWait) HandleBundleDestination(now int64, b bundlemodel.Bundle) {
	s.deliverToSelf(now, b)
}

func (s *SprayAndWait) deliverToSelf(now int64, b bundlemodel.Bundle) {
	s.numReachedDest++
	if s.Dispatcher != nil {
		s.Dispatcher.DispatchPayload(now, b.Payload)
	}
}

// Refresh expires spraying and waiting bundles, shuffles currently
// connected router-neighbors, sprays up to NumNodesToSpray distinct nodes
// per spraying bundle, and forwards waiting bundles only to their exact
// destination.
func (s *SprayAndWait) Refresh(ctx RefreshContext) []Forward {
	for id, b := range s.spraying {
		if b.Expired(ctx.Now) {
			delete(s.spraying, id)
			delete(s.sprayMap, id)
		}
	}
	for id, b := range s.waiting {
		if b.Expired(ctx.Now) {
			delete(s.waiting, id)
		}
	}

	routerNeighbors := make([]NeighborInfo, 0, len(ctx.ConnectedNeighbors))
	for _, n := range ctx.ConnectedNeighbors {
		if n.IsRouter {
			routerNeighbors = append(routerNeighbors, n)
		}
	}
	if ctx.RNG != nil {
		ctx.RNG.Shuffle(len(routerNeighbors), func(i, j int) {
			routerNeighbors[i], routerNeighbors[j] = routerNeighbors[j], routerNeighbors[i]
		})
	}

	sprayedByNeighbor := make(map[string][]bundlemodel.Bundle)
	deliveredByNeighbor := make(map[string][]bundlemodel.Bundle)

	for _, n := range routerNeighbors {
		for bid, b := range s.spraying {
			sprayed := s.sprayMap[bid]
			if sprayed[n.ID] {
				continue
			}
			sprayed[n.ID] = true
			sprayedByNeighbor[n.ID] = append(sprayedByNeighbor[n.ID], b)
			if len(sprayed) >= NumNodesToSpray {
				delete(s.spraying, bid)
				delete(s.sprayMap, bid)
			}
		}

		for bid, b := range s.waiting {
			if b.DestID != n.ID {
				continue
			}
			deliveredByNeighbor[n.ID] = append(deliveredByNeighbor[n.ID], b)
			delete(s.waiting, bid)
		}
	}

	var forwards []Forward
	for nid, bundles := range sprayedByNeighbor {
		forwards = append(forwards, Forward{To: nid, Kind: ForwardSpray, Bundles: bundles})
	}
	for nid, bundles := range deliveredByNeighbor {
		forwards = append(forwards, Forward{To: nid, Kind: ForwardDestination, Bundles: bundles})
	}

	return forwards
}

func (s *SprayAndWait) Stats() Stats {
	return Stats{
		NumRepeatedBundleReceives: s.numRepeated,
		NumBundleReachedDest:      s.numReachedDest,
		NumInvariantViolations:    s.invariantViols,
	}
}

// StoredCount returns the number of bundles currently spraying or waiting.
func (s *SprayAndWait) StoredCount() int { return len(s.spraying) + len(s.waiting) }
