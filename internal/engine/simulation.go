// Package engine implements the tick-driven simulation loop: the engine
// owns every agent and mediates all inter-agent communication through an
// arena/index pattern (agents hold only an id to query the engine, never
// a reference to one another).
package engine

import (
	"sort"

	"github.com/rs/zerolog"

	"dtnsim/internal/agent"
	"dtnsim/internal/bundlemodel"
	"dtnsim/internal/contactplan"
	"dtnsim/internal/geometry"
	"dtnsim/internal/radio"
	"dtnsim/internal/routing"
	"dtnsim/internal/simerr"
)

// DropPickupRange is the fixed radius within which a non-target client
// picks up an active data drop.
const DropPickupRange = 5.0

// Simulation is one independent run: its own agents, contact captures,
// RNG, and results. Batch mode constructs one Simulation per trial with
// no state shared between them.
type Simulation struct {
	Log zerolog.Logger

	space      geometry.Space
	rng        *geometry.RNG
	radioModel radio.Model
	obstacles  radio.ObstacleGrid

	maxSteps        int64
	bundleLifespan  int64
	payloadLifespan int64
	hostMapTimeout  int64
	correctness     bool
	captureContacts bool

	agents []*agent.Agent
	index  map[string]int

	dropSchedules []dataDropSpec
	activeDrops   []dataDrop

	now int64

	contacts    map[contactPairKey]map[int64]bool
	contactList []contactPairKey

	results Results
}

type contactPairKey struct {
	A, B string
}

// Results accumulates the raw per-run counters internal/metrics
// summarizes at the end of a run.
type Results struct {
	DeliveredLatencies      []int64
	NumPickedUpFromGround   int
	CumulativeStoredBundles int64
	MaxSteps                int64
	FinalTick               int64
}

// Now returns the current tick.
func (s *Simulation) Now() int64 { return s.now }

// Agents returns the engine's agent list in insertion order, read-only.
func (s *Simulation) Agents() []*agent.Agent {
	return s.agents
}

// Results returns a copy of the accumulated metrics counters.
func (s *Simulation) Results() Results {
	return s.results
}

// SubmitBundle injects a bundle directly at atAgentID's routing protocol,
// as if it had just been originated locally. Used by tests reproducing
// literal end-to-end scenarios.
func (s *Simulation) SubmitBundle(atAgentID string, b bundlemodel.Bundle) {
	a := s.agentByID(atAgentID)
	if a == nil || a.Protocol == nil {
		return
	}
	a.Protocol.HandleBundle(s.now, b)
}

// Done reports whether the run has reached max_steps.
func (s *Simulation) Done() bool {
	return s.now >= s.maxSteps
}

// Run advances the simulation to completion.
func (s *Simulation) Run() {
	for !s.Done() {
		s.Tick()
	}
}

// Tick advances the simulation by one discrete step, in this fixed order:
//  1. Materialize scheduled data drops.
//  2. If contact-plan capture is enabled, record connected router pairs.
//  3. For every agent in insertion order: radio refresh, protocol
//     refresh, payload-handler refresh, history append, movement step.
//  4. Update cumulative metrics.
//  5. (Caller's responsibility, via Done/Run) finalize once max_steps is
//     reached.
func (s *Simulation) Tick() {
	s.materializeDrops()

	if s.captureContacts {
		s.captureConnectedRouterPairs()
	}

	for _, a := range s.agents {
		s.stepAgent(a)
	}

	s.pickupDrops()
	s.updateCumulativeMetrics()

	s.now++
	s.results.FinalTick = s.now
}

func (s *Simulation) stepAgent(a *agent.Agent) {
	a.Neighbors = radio.GetNeighbors(a.Pos, a.RadioParams, s.candidatesExcept(a.ID), s.radioModel)

	s.refreshProtocol(a)
	s.refreshPayloadHandlers(a)

	a.History.Append(agent.Sample{
		Tick:          s.now,
		Pos:           a.Pos,
		RadioSnapshot: append([]radio.Neighbor(nil), a.Neighbors...),
	})

	s.stepMovement(a)
}

func (s *Simulation) candidatesExcept(id string) []radio.Candidate {
	out := make([]radio.Candidate, 0, len(s.agents)-1)
	for _, other := range s.agents {
		if other.ID == id {
			continue
		}
		out = append(out, radio.Candidate{ID: other.ID, Pos: other.Pos})
	}
	return out
}

func (s *Simulation) refreshProtocol(a *agent.Agent) {
	if a.Protocol == nil {
		return
	}
	connected := make([]routing.NeighborInfo, 0, len(a.Neighbors))
	for _, n := range a.Neighbors {
		if !n.Connected {
			continue
		}
		peer := s.agentByID(n.ID)
		connected = append(connected, routing.NeighborInfo{
			ID:       n.ID,
			IsRouter: peer != nil && peer.Kind == agent.KindRouter,
		})
	}

	forwards := a.Protocol.Refresh(routing.RefreshContext{
		Now:                s.now,
		ConnectedNeighbors: connected,
		RNG:                s.rng,
	})
	for _, f := range forwards {
		s.deliverForward(f)
	}
}

func (s *Simulation) deliverForward(f routing.Forward) {
	target := s.agentByID(f.To)
	if target == nil || target.Protocol == nil {
		return
	}
	for _, b := range f.Bundles {
		switch f.Kind {
		case routing.ForwardSpray:
			target.Protocol.HandleBundleWait(s.now, b)
		case routing.ForwardDestination:
			target.Protocol.HandleBundleDestination(s.now, b)
		default:
			target.Protocol.HandleBundle(s.now, b)
		}
	}
}

func (s *Simulation) stepMovement(a *agent.Agent) {
	next, err := a.Movement.Step(a.Pos, s.space, s.obstacles)
	switch err {
	case nil:
		a.Pos = next
	case simerr.ErrOutOfBounds:
		a.NumOutOfBounds++
		s.Log.Warn().Str("agent", a.ID).Msg("movement suppressed: out of bounds")
	case simerr.ErrSpeedLimitExceeded:
		a.NumSpeedLimitExceeded++
		s.Log.Warn().Str("agent", a.ID).Msg("movement suppressed: speed limit exceeded")
	}
}

func (s *Simulation) agentByID(id string) *agent.Agent {
	if i, ok := s.index[id]; ok {
		return s.agents[i]
	}
	return nil
}

func (s *Simulation) routerAgents() []*agent.Agent {
	var out []*agent.Agent
	for _, a := range s.agents {
		if a.Kind == agent.KindRouter {
			out = append(out, a)
		}
	}
	return out
}

type storedCounter interface {
	StoredCount() int
}

func (s *Simulation) updateCumulativeMetrics() {
	var sum int64
	for _, a := range s.agents {
		if sc, ok := a.Protocol.(storedCounter); ok {
			sum += int64(sc.StoredCount())
		}
	}
	s.results.CumulativeStoredBundles += sum
}

// captureConnectedRouterPairs records, for every ordered pair of routers
// connected at the start of this tick (before any agent has moved), that
// tick as belonging to their contact window.
func (s *Simulation) captureConnectedRouterPairs() {
	routers := s.routerAgents()
	for i, a := range routers {
		candidates := make([]radio.Candidate, 0, len(routers)-1)
		for j, b := range routers {
			if i == j {
				continue
			}
			candidates = append(candidates, radio.Candidate{ID: b.ID, Pos: b.Pos})
		}
		neighbors := radio.GetNeighbors(a.Pos, a.RadioParams, candidates, s.radioModel)
		for _, n := range neighbors {
			if !n.Connected {
				continue
			}
			key := contactPairKey{A: a.ID, B: n.ID}
			if s.contacts[key] == nil {
				s.contacts[key] = make(map[int64]bool)
				s.contactList = append(s.contactList, key)
			}
			s.contacts[key][s.now] = true
		}
	}
}

// defaultCapturedRate is the rate assigned to contacts synthesized from
// capture, since the radio model observes connectivity, not throughput.
const defaultCapturedRate = 100

// FinalizeContactPlan collapses each captured pair's tick-set into
// maximal contiguous ranges and emits a bidirectional contact plan. Only
// meaningful when make_contact_plan was enabled.
func (s *Simulation) FinalizeContactPlan() *contactplan.Plan {
	plan := contactplan.NewPlan()
	for _, key := range s.contactList {
		ticks := s.contacts[key]
		sorted := make([]int64, 0, len(ticks))
		for t := range ticks {
			sorted = append(sorted, t)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for _, rng := range collapseContiguous(sorted) {
			plan.AddContact(key.A, key.B, rng[0], rng[1], defaultCapturedRate, 0, 1.0)
			plan.AddContact(key.B, key.A, rng[0], rng[1], defaultCapturedRate, 0, 1.0)
		}
	}
	return plan
}

func collapseContiguous(sorted []int64) [][2]int64 {
	var ranges [][2]int64
	if len(sorted) == 0 {
		return ranges
	}
	start, prev := sorted[0], sorted[0]
	for _, t := range sorted[1:] {
		if t == prev+1 {
			prev = t
			continue
		}
		ranges = append(ranges, [2]int64{start, prev})
		start, prev = t, t
	}
	ranges = append(ranges, [2]int64{start, prev})
	return ranges
}
