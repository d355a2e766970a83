package gto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/plo-sentinel/internal/deck"
)

func TestApplyThresholdOverridesRewritesFoldGate(t *testing.T) {
	original := baseThresholds[deck.Flop].Fold
	ApplyThresholdOverrides(0, 150, 0, 0) // flop_fold = 0.150
	defer ApplyThresholdOverrides(0, int(original*1000), 0, 0)

	assert.InDelta(t, 0.15, baseThresholds[deck.Flop].Fold, 0.0001)
}

func TestApplyThresholdOverridesIgnoresZero(t *testing.T) {
	before := baseThresholds[deck.River]
	ApplyThresholdOverrides(0, 0, 0, 0)
	assert.Equal(t, before, baseThresholds[deck.River])
}
