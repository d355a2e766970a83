// Package config loads the engine's tunable parameters from an HCL file,
// following the teacher's ServerConfig pattern: a defaulted struct, an
// HCL loader that falls back to defaults when the file is absent, and a
// Validate pass.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// EngineConfig is the complete engine configuration.
type EngineConfig struct {
	Thresholds ThresholdOverrides `hcl:"thresholds,block"`
	Equity     EquitySettings     `hcl:"equity,block"`
	Vision     VisionSettings     `hcl:"vision,block"`
	Execution  ExecutionSettings  `hcl:"execution,block"`
	Opponent   OpponentSettings   `hcl:"opponent,block"`
}

// ThresholdOverrides lets operators retune the GTO engine's base
// thresholds per street without a rebuild. Zero means "use the built-in
// default for that street."
type ThresholdOverrides struct {
	PreflopFold int `hcl:"preflop_fold,optional"` // fixed-point, *1000
	FlopFold    int `hcl:"flop_fold,optional"`
	TurnFold    int `hcl:"turn_fold,optional"`
	RiverFold   int `hcl:"river_fold,optional"`
}

// EquitySettings configures the Monte-Carlo equity core.
type EquitySettings struct {
	SimsPLO5 int `hcl:"sims_plo5,optional"`
	SimsPLO6 int `hcl:"sims_plo6,optional"`
	Workers  int `hcl:"workers,optional"`
}

// VisionSettings configures the stability gate (C8).
type VisionSettings struct {
	StabilityRequired  int `hcl:"stability_required,optional"`
	MinCardsForAction  int `hcl:"min_cards_for_action,optional"`
	PerceptionTimeoutMs int `hcl:"perception_timeout_ms,optional"`
}

// ExecutionSettings configures the action execution contract (C7) and
// the orchestrator's cooldown handling (C9).
type ExecutionSettings struct {
	CooldownFloorMs   int `hcl:"cooldown_floor_ms,optional"`
	CooldownCeilingMs int `hcl:"cooldown_ceiling_ms,optional"`
	EasyMeanMs        int `hcl:"easy_mean_ms,optional"`
	MediumMeanMs      int `hcl:"medium_mean_ms,optional"`
	HardMeanMs        int `hcl:"hard_mean_ms,optional"`
}

// OpponentSettings configures the opponent store's trust gate (C6).
type OpponentSettings struct {
	MinTrustHands int `hcl:"min_trust_hands,optional"`
}

// Default returns the built-in configuration matching spec.md's stated
// defaults.
func Default() *EngineConfig {
	return &EngineConfig{
		Equity: EquitySettings{
			SimsPLO5: 5000,
			SimsPLO6: 3000,
			Workers:  4,
		},
		Vision: VisionSettings{
			StabilityRequired:   3,
			MinCardsForAction:   2,
			PerceptionTimeoutMs: 2000,
		},
		Execution: ExecutionSettings{
			CooldownFloorMs:   1500,
			CooldownCeilingMs: 5000,
			EasyMeanMs:        800,
			MediumMeanMs:      2200,
			HardMeanMs:        4500,
		},
		Opponent: OpponentSettings{
			MinTrustHands: 50,
		},
	}
}

// Load reads an HCL config file, falling back to Default() if filename
// does not exist, and fills any zero-valued field from the default.
func Load(filename string) (*EngineConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}

	cfg := &EngineConfig{}
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", filename, diags.Error())
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *EngineConfig) {
	d := Default()
	if cfg.Equity.SimsPLO5 == 0 {
		cfg.Equity.SimsPLO5 = d.Equity.SimsPLO5
	}
	if cfg.Equity.SimsPLO6 == 0 {
		cfg.Equity.SimsPLO6 = d.Equity.SimsPLO6
	}
	if cfg.Equity.Workers == 0 {
		cfg.Equity.Workers = d.Equity.Workers
	}
	if cfg.Vision.StabilityRequired == 0 {
		cfg.Vision.StabilityRequired = d.Vision.StabilityRequired
	}
	if cfg.Vision.MinCardsForAction == 0 {
		cfg.Vision.MinCardsForAction = d.Vision.MinCardsForAction
	}
	if cfg.Vision.PerceptionTimeoutMs == 0 {
		cfg.Vision.PerceptionTimeoutMs = d.Vision.PerceptionTimeoutMs
	}
	if cfg.Execution.CooldownFloorMs == 0 {
		cfg.Execution.CooldownFloorMs = d.Execution.CooldownFloorMs
	}
	if cfg.Execution.CooldownCeilingMs == 0 {
		cfg.Execution.CooldownCeilingMs = d.Execution.CooldownCeilingMs
	}
	if cfg.Execution.EasyMeanMs == 0 {
		cfg.Execution.EasyMeanMs = d.Execution.EasyMeanMs
	}
	if cfg.Execution.MediumMeanMs == 0 {
		cfg.Execution.MediumMeanMs = d.Execution.MediumMeanMs
	}
	if cfg.Execution.HardMeanMs == 0 {
		cfg.Execution.HardMeanMs = d.Execution.HardMeanMs
	}
	if cfg.Opponent.MinTrustHands == 0 {
		cfg.Opponent.MinTrustHands = d.Opponent.MinTrustHands
	}
}

// Validate checks the configuration is internally consistent.
func (c *EngineConfig) Validate() error {
	if c.Equity.SimsPLO5 <= 0 || c.Equity.SimsPLO6 <= 0 {
		return fmt.Errorf("config: sim counts must be positive")
	}
	if c.Vision.StabilityRequired < 1 {
		return fmt.Errorf("config: stability_required must be >= 1")
	}
	if c.Vision.MinCardsForAction < 1 {
		return fmt.Errorf("config: min_cards_for_action must be >= 1")
	}
	if c.Execution.CooldownCeilingMs < c.Execution.CooldownFloorMs {
		return fmt.Errorf("config: cooldown_ceiling_ms must be >= cooldown_floor_ms")
	}
	if c.Opponent.MinTrustHands < 1 {
		return fmt.Errorf("config: min_trust_hands must be >= 1")
	}
	return nil
}

// PerceptionTimeout returns the configured perception timeout as a
// Duration.
func (c *EngineConfig) PerceptionTimeout() time.Duration {
	return time.Duration(c.Vision.PerceptionTimeoutMs) * time.Millisecond
}

// CooldownFloor returns the configured cooldown floor as a Duration.
func (c *EngineConfig) CooldownFloor() time.Duration {
	return time.Duration(c.Execution.CooldownFloorMs) * time.Millisecond
}

// CooldownCeiling returns the configured cooldown ceiling as a Duration.
func (c *EngineConfig) CooldownCeiling() time.Duration {
	return time.Duration(c.Execution.CooldownCeilingMs) * time.Millisecond
}

// EasyMean, MediumMean and HardMean return the configured cognitive-delay
// means as Durations, for execution.Executor.WithMeanDelays.
func (c *EngineConfig) EasyMean() time.Duration {
	return time.Duration(c.Execution.EasyMeanMs) * time.Millisecond
}

func (c *EngineConfig) MediumMean() time.Duration {
	return time.Duration(c.Execution.MediumMeanMs) * time.Millisecond
}

func (c *EngineConfig) HardMean() time.Duration {
	return time.Duration(c.Execution.HardMeanMs) * time.Millisecond
}
