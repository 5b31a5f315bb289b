// Package config loads the two JSON configuration documents recognized at
// launch: the model config and the agents config, the latter deep-merging
// agent_defaults into each per-agent entry.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"dtnsim/internal/simerr"
)

// DataDropConfig is one entry of a model's data_drop_schedule.
type DataDropConfig struct {
	DropID      string  `mapstructure:"drop_id"`
	X           float64 `mapstructure:"x"`
	Y           float64 `mapstructure:"y"`
	TargetID    string  `mapstructure:"target_id"`
	Time        int64   `mapstructure:"time"`
	RepeatEvery int64   `mapstructure:"repeat_every"`
	Until       int64   `mapstructure:"until"`
	HasUntil    bool    `mapstructure:"-"`
}

// ModelConfig is the decoded contents of the model JSON document.
type ModelConfig struct {
	Title                    string           `mapstructure:"title"`
	ScenarioName             string           `mapstructure:"scenario_name"`
	MaxSteps                 int64            `mapstructure:"max_steps"`
	RSSINoiseStdev           float64          `mapstructure:"rssi_noise_stdev"`
	ModelSpeedLimit          float64          `mapstructure:"model_speed_limit"`
	HostRouterMappingTimeout int64            `mapstructure:"host_router_mapping_timeout"`
	PayloadLifespan          int64            `mapstructure:"payload_lifespan"`
	BundleLifespan           int64            `mapstructure:"bundle_lifespan"`
	RoutingProtocol          int              `mapstructure:"routing_protocol"`
	RSSISource               string           `mapstructure:"rssi_source"`
	DataDropSchedule         []DataDropConfig `mapstructure:"data_drop_schedule"`
	EnableWalls              bool             `mapstructure:"enable_walls"`
	LogMetrics               bool             `mapstructure:"log_metrics"`
	Correctness              bool             `mapstructure:"correctness"`
	MakeContactPlan          bool             `mapstructure:"make_contact_plan"`
	SpaceWidth               float64          `mapstructure:"space_width"`
	SpaceHeight              float64          `mapstructure:"space_height"`
	Seed                     int64            `mapstructure:"seed"`
}

// defaultedModelConfig supplies the values treated as optional, applied
// before required-key validation.
func defaultedModelConfig() ModelConfig {
	return ModelConfig{
		MaxSteps:                 1000,
		RSSISource:               "path_loss",
		RoutingProtocol:          0,
		HostRouterMappingTimeout: 200,
		PayloadLifespan:          500,
		BundleLifespan:           500,
		SpaceWidth:               1000,
		SpaceHeight:              1000,
	}
}

// LoadModelConfig reads and decodes the model JSON document at path,
// raising ConfigMissing if required keys are absent.
func LoadModelConfig(path string) (*ModelConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("json")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading model config %q", path)
	}

	cfg := defaultedModelConfig()
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding model config %q", path)
	}

	if cfg.Title == "" || cfg.ScenarioName == "" {
		return nil, errors.Wrapf(simerr.ErrConfigMissing, "model config %q missing title/scenario_name", path)
	}
	for i := range cfg.DataDropSchedule {
		cfg.DataDropSchedule[i].HasUntil = vp.IsSet(fmt.Sprintf("data_drop_schedule.%d.until", i))
	}
	return &cfg, nil
}

// RadioConfig is an agent's detect/connect threshold pair.
type RadioConfig struct {
	DetectionThresh  float64 `mapstructure:"detection_thresh"`
	ConnectionThresh float64 `mapstructure:"connection_thresh"`
}

// MovementConfig is an agent's declarative movement pattern plus its
// pattern-specific options (e.g. waypoints' point list, circle's radius).
type MovementConfig struct {
	Pattern string                 `mapstructure:"pattern"`
	Speed   float64                `mapstructure:"speed"`
	Options map[string]interface{} `mapstructure:"options"`
}

// SpecialBehaviorConfig names an optional agent behavior layered on top of
// its movement (currently only RSSI-gradient localization).
type SpecialBehaviorConfig struct {
	Type    string                 `mapstructure:"type"`
	Options map[string]interface{} `mapstructure:"options"`
}

// AgentConfig is one decoded entry of the agents JSON document's "agents"
// list, after agent_defaults has been deep-merged in.
type AgentConfig struct {
	ID              string                `mapstructure:"id"`
	Name            string                `mapstructure:"name"`
	Type            string                `mapstructure:"type"`
	Pos             [2]float64            `mapstructure:"pos"`
	Radio           RadioConfig           `mapstructure:"radio"`
	Movement        MovementConfig        `mapstructure:"movement"`
	SpecialBehavior SpecialBehaviorConfig `mapstructure:"special_behavior"`
	CPFile          string                `mapstructure:"cp_file"`
}

// AgentsConfig is the full decoded agents JSON document.
type AgentsConfig struct {
	Agents []AgentConfig
}

// LoadAgentsConfig reads the agents JSON document at path: agent_defaults
// is deep-merged under each per-agent map (per-agent values win) before
// decoding into AgentConfig via mapstructure.
func LoadAgentsConfig(path string) (*AgentsConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("json")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading agents config %q", path)
	}

	defaults, _ := vp.Get("agent_defaults").(map[string]interface{})
	rawAgents, _ := vp.Get("agents").([]interface{})
	if rawAgents == nil {
		return nil, errors.Wrapf(simerr.ErrConfigMissing, "agents config %q missing \"agents\" list", path)
	}

	out := &AgentsConfig{}
	for i, raw := range rawAgents {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("agents config %q: agents[%d] is not an object", path, i)
		}
		merged := deepMergeMaps(defaults, m)

		var agent AgentConfig
		if err := mapstructure.Decode(merged, &agent); err != nil {
			return nil, errors.Wrapf(err, "decoding agents config %q agents[%d]", path, i)
		}
		if agent.ID == "" {
			return nil, errors.Wrapf(simerr.ErrConfigMissing, "agents config %q agents[%d] missing id", path, i)
		}
		out.Agents = append(out.Agents, agent)
	}
	return out, nil
}

// deepMergeMaps returns a new map with override's keys layered on top of
// base's, recursing into nested maps so a per-agent entry only needs to
// specify the keys it overrides.
func deepMergeMaps(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		if baseVal, ok := merged[k]; ok {
			baseMap, baseIsMap := baseVal.(map[string]interface{})
			overrideMap, overrideIsMap := v.(map[string]interface{})
			if baseIsMap && overrideIsMap {
				merged[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		merged[k] = v
	}
	return merged
}
