package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/engine.hcl")
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Equity.SimsPLO5)
	assert.Equal(t, 3000, cfg.Equity.SimsPLO6)
	assert.Equal(t, 50, cfg.Opponent.MinTrustHands)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromHCL(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/engine.hcl"
	contents := `
thresholds {
  preflop_fold = 280
}

equity {
  sims_plo5 = 8000
  workers   = 2
}

vision {
  stability_required = 4
}

execution {
  cooldown_floor_ms = 2000
}

opponent {
  min_trust_hands = 75
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Equity.SimsPLO5)
	assert.Equal(t, 2, cfg.Equity.Workers)
	assert.Equal(t, 4, cfg.Vision.StabilityRequired)
	assert.Equal(t, 2000, cfg.Execution.CooldownFloorMs)
	assert.Equal(t, 75, cfg.Opponent.MinTrustHands)
	// Untouched fields still fall back to defaults.
	assert.Equal(t, 3000, cfg.Equity.SimsPLO6)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsInconsistentCooldown(t *testing.T) {
	cfg := Default()
	cfg.Execution.CooldownFloorMs = 3000
	cfg.Execution.CooldownCeilingMs = 1000
	assert.Error(t, cfg.Validate())
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2000*time.Millisecond, cfg.PerceptionTimeout())
	assert.Equal(t, 1500*time.Millisecond, cfg.CooldownFloor())
	assert.Equal(t, 5000*time.Millisecond, cfg.CooldownCeiling())
}
