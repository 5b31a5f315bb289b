package routing

import "dtnsim/internal/bundlemodel"

// Epidemic floods every bundle it holds to every currently connected
// router-neighbor; a recipient's own dedup set prevents infinite re-flood.
type Epidemic struct {
	SelfID      string
	Dispatcher  Dispatcher
	Correctness bool

	seen           map[string]bool
	currentBundles map[string]bundlemodel.Bundle

	numRepeated    int
	numReachedDest int
	invariantViols int
}

// NewEpidemic constructs an Epidemic protocol instance for selfID.
func NewEpidemic(selfID string, dispatcher Dispatcher, correctness bool) *Epidemic {
	return &Epidemic{
		SelfID:         selfID,
		Dispatcher:     dispatcher,
		Correctness:    correctness,
		seen:           make(map[string]bool),
		currentBundles: make(map[string]bundlemodel.Bundle),
	}
}

func (e *Epidemic) HandleBundle(now int64, b bundlemodel.Bundle) {
	if e.seen[b.ID] {
		e.numRepeated++
		if e.Correctness {
			e.invariantViols++
		}
		return
	}
	e.seen[b.ID] = true

	if b.DestID == e.SelfID {
		e.numReachedDest++
		if e.Dispatcher != nil {
			e.Dispatcher.DispatchPayload(now, b.Payload)
		}
		return
	}

	e.currentBundles[b.ID] = b
}

func (e *Epidemic) HandleBundleWait(now int64, b bundlemodel.Bundle)        {}
func (e *Epidemic) HandleBundleDestination(now int64, b bundlemodel.Bundle) {}

// Refresh expires bundles then floods every currently held bundle to every
// connected router-neighbor.
func (e *Epidemic) Refresh(ctx RefreshContext) []Forward {
	for id, b := range e.currentBundles {
		if b.Expired(ctx.Now) {
			delete(e.currentBundles, id)
		}
	}

	if len(e.currentBundles) == 0 {
		return nil
	}

	bundles := make([]bundlemodel.Bundle, 0, len(e.currentBundles))
	for _, b := range e.currentBundles {
		bundles = append(bundles, b)
	}

	var forwards []Forward
	for _, n := range ctx.ConnectedNeighbors {
		if !n.IsRouter {
			continue
		}
		forwards = append(forwards, Forward{To: n.ID, Kind: ForwardNormal, Bundles: bundles})
	}
	return forwards
}

func (e *Epidemic) Stats() Stats {
	return Stats{
		NumRepeatedBundleReceives: e.numRepeated,
		NumBundleReachedDest:      e.numReachedDest,
		NumInvariantViolations:    e.invariantViols,
	}
}

// StoredCount returns the number of bundles currently propagating.
func (e *Epidemic) StoredCount() int { return len(e.currentBundles) }
