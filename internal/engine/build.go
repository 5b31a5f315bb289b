package engine

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"dtnsim/internal/agent"
	"dtnsim/internal/config"
	"dtnsim/internal/contactplan"
	"dtnsim/internal/cpio"
	"dtnsim/internal/geometry"
	"dtnsim/internal/movement"
	"dtnsim/internal/radio"
	"dtnsim/internal/routing"
	"dtnsim/internal/simerr"
)

// NewSimulation builds a Simulation from a decoded model config and agents
// config, constructing every agent's movement driver, radio params, and
// routing protocol.
func NewSimulation(mc *config.ModelConfig, ac *config.AgentsConfig, log zerolog.Logger) (*Simulation, error) {
	rng := geometry.NewRNG(seedOrDefault(mc.Seed))
	space := geometry.NewSpace(mc.SpaceWidth, mc.SpaceHeight)

	sim := &Simulation{
		Log:             log,
		space:           space,
		rng:             rng,
		maxSteps:        mc.MaxSteps,
		bundleLifespan:  mc.BundleLifespan,
		payloadLifespan: mc.PayloadLifespan,
		hostMapTimeout:  mc.HostRouterMappingTimeout,
		correctness:     mc.Correctness,
		captureContacts: mc.MakeContactPlan,
		index:           make(map[string]int),
		contacts:        make(map[contactPairKey]map[int64]bool),
		results:         Results{MaxSteps: mc.MaxSteps},
	}
	sim.radioModel = buildRadioModel(mc, rng)

	for _, dd := range mc.DataDropSchedule {
		sim.dropSchedules = append(sim.dropSchedules, dataDropSpec{
			ID:       dd.DropID,
			Pos:      geometry.Position{X: dd.X, Y: dd.Y},
			TargetID: dd.TargetID,
			Schedule: dropSchedule{Time: dd.Time, RepeatEvery: dd.RepeatEvery, Until: dd.Until, HasUntil: dd.HasUntil},
		})
	}

	for _, acfg := range ac.Agents {
		built, err := sim.buildAgent(acfg, mc)
		if err != nil {
			return nil, err
		}
		sim.addAgent(built)
	}

	return sim, nil
}

func (s *Simulation) addAgent(a *agent.Agent) {
	s.index[a.ID] = len(s.agents)
	s.agents = append(s.agents, a)
}

func seedOrDefault(seed int64) int64 {
	if seed == 0 {
		return geometry.DefaultSeed
	}
	return seed
}

// buildRadioModel selects the channel model named by the model config's
// rssi_source, defaulting to path loss. real_data and shadowing sources
// are built with an empty Grid/ObstacleGrid, and nothing in dtnsim fills
// them in; an empty Grid yields 0 RSSI everywhere rather than failing the
// run.
func buildRadioModel(mc *config.ModelConfig, rng *geometry.RNG) radio.Model {
	switch radio.Source(mc.RSSISource) {
	case radio.SourceRealData:
		return &radio.RealDataModel{}
	case radio.SourceShadowing:
		return &radio.ShadowingModel{}
	default:
		return &radio.PathLossModel{NoiseStdev: mc.RSSINoiseStdev, RNG: rng}
	}
}

// buildMovementPattern constructs the Pattern named by cfg.Pattern, reading
// its pattern-specific options from the JSON-decoded options map. Unknown
// or absent patterns default to Fixed at startPos, matching a
// not-yet-mobile agent.
func buildMovementPattern(cfg config.MovementConfig, startPos geometry.Position) movement.Pattern {
	opts := cfg.Options
	switch cfg.Pattern {
	case "waypoints":
		return movement.NewWaypoints(optPositions(opts, "points"), optBool(opts, "bounce", false), optBool(opts, "repeat", false))
	case "circle":
		return movement.NewCircle(optPosition(opts, "center", startPos), optFloat(opts, "radius", 10), optFloat(opts, "angular_step", 0.1))
	case "spiral":
		return movement.NewSpiral(optPosition(opts, "center", startPos), optFloat(opts, "growth_rate", 1), optFloat(opts, "angular_step", 0.1))
	case "arc":
		return movement.NewArc(
			optPosition(opts, "p0", startPos),
			optPosition(opts, "p1", startPos),
			optPosition(opts, "p2", startPos),
			optFloat(opts, "step", 0.05),
		)
	case "spline":
		return movement.NewSpline(optPositions(opts, "points"), optFloat(opts, "step", cfg.Speed))
	default:
		return movement.NewFixed(startPos)
	}
}

func (s *Simulation) buildAgent(ac config.AgentConfig, mc *config.ModelConfig) (*agent.Agent, error) {
	kind, ok := agent.ParseKind(ac.Type)
	if !ok {
		return nil, errors.Wrapf(simerr.ErrUnknownAgentType, "agent %q: type %q", ac.ID, ac.Type)
	}

	pos := geometry.Position{X: ac.Pos[0], Y: ac.Pos[1]}
	driver := movement.NewDriver(buildMovementPattern(ac.Movement, pos), ac.Movement.Speed, mc.ModelSpeedLimit)

	a := &agent.Agent{
		ID:   ac.ID,
		Kind: kind,
		Pos:  pos,
		RadioParams: radio.Params{
			DetectThresh:  ac.Radio.DetectionThresh,
			ConnectThresh: ac.Radio.ConnectionThresh,
		},
		Movement:     driver,
		BaseMovement: driver,
		History:      agent.NewHistory(agent.HistoryCap),
	}

	dispatcher := &agentDispatcher{sim: s, agentID: ac.ID}

	switch kind {
	case agent.KindRouter:
		a.Router = agent.NewRouterState(ac.ID, mc.HostRouterMappingTimeout)
		proto, err := s.buildRoutingProtocol(mc.RoutingProtocol, ac, dispatcher)
		if err != nil {
			return nil, err
		}
		a.Protocol = proto
	case agent.KindEpidemic:
		a.Protocol = routing.NewEpidemic(ac.ID, dispatcher, mc.Correctness)
	case agent.KindSpray:
		a.Protocol = routing.NewSprayAndWait(ac.ID, dispatcher, mc.Correctness)
	case agent.KindClient:
		a.Client = agent.NewClientState(agent.DefaultReconnectionInterval)
	case agent.KindSimple:
		// movement-only: no routing, no handshake state.
	}

	if ac.SpecialBehavior.Type == "localization" {
		a.Localization = agent.NewLocalization("")
	}

	return a, nil
}

// buildRoutingProtocol picks the protocol a router-kind agent runs.
// routing_protocol selects among CGR/Epidemic/Spray for router agents;
// agents explicitly typed epidemic or spray (handled in buildAgent's
// switch) always run that protocol regardless of this setting, so mixed
// topologies (a CGR backbone alongside flooding relays) are representable.
func (s *Simulation) buildRoutingProtocol(protocol int, ac config.AgentConfig, dispatcher routing.Dispatcher) (routing.Protocol, error) {
	switch protocol {
	case 1:
		return routing.NewEpidemic(ac.ID, dispatcher, s.correctness), nil
	case 2:
		return routing.NewSprayAndWait(ac.ID, dispatcher, s.correctness), nil
	default:
		plan := contactplan.NewPlan()
		if ac.CPFile != "" {
			loaded, err := cpio.ReadJSONFile(ac.CPFile)
			if err != nil {
				s.Log.Warn().Err(err).Str("agent", ac.ID).Str("cp_file", ac.CPFile).Msg("failed to load contact plan, starting empty")
			} else {
				plan = loaded
			}
		}
		return routing.NewCGR(ac.ID, plan, dispatcher, s.correctness), nil
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func optFloat(opts map[string]interface{}, key string, def float64) float64 {
	if opts == nil {
		return def
	}
	if v, ok := toFloat(opts[key]); ok {
		return v
	}
	return def
}

func optBool(opts map[string]interface{}, key string, def bool) bool {
	if opts == nil {
		return def
	}
	if v, ok := opts[key].(bool); ok {
		return v
	}
	return def
}

func optPosition(opts map[string]interface{}, key string, def geometry.Position) geometry.Position {
	if opts == nil {
		return def
	}
	raw, ok := opts[key].([]interface{})
	if !ok || len(raw) < 2 {
		return def
	}
	x, xok := toFloat(raw[0])
	y, yok := toFloat(raw[1])
	if !xok || !yok {
		return def
	}
	return geometry.Position{X: x, Y: y}
}

func optPositions(opts map[string]interface{}, key string) []geometry.Position {
	if opts == nil {
		return nil
	}
	raw, ok := opts[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]geometry.Position, 0, len(raw))
	for _, entry := range raw {
		pair, ok := entry.([]interface{})
		if !ok || len(pair) < 2 {
			continue
		}
		x, xok := toFloat(pair[0])
		y, yok := toFloat(pair[1])
		if !xok || !yok {
			continue
		}
		out = append(out, geometry.Position{X: x, Y: y})
	}
	return out
}
