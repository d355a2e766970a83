// Package gto implements the mixed-strategy decision engine (spec.md
// §4.3): street-indexed equity thresholds modulated by position, table
// size, and SPR, with bounded noise to produce a genuine mixed strategy,
// and a bounded exploitative overlay driven by trusted opponent
// archetypes.
package gto

import "github.com/lox/plo-sentinel/internal/deck"

// Thresholds are the four equity cutoffs for one street: below fold is a
// fold, [fold,raise) calls (the pot-odds override exists for the
// symmetric case — a bet-facing hand below even the fold gate that still
// beats its price), [raise,allin) raises, and >= allin jams.
type Thresholds struct {
	Fold, Call, Raise, Allin float64
}

// baseThresholds is the immutable street-indexed table from spec.md §4.3.
var baseThresholds = map[deck.Street]Thresholds{
	deck.Preflop: {Fold: 0.30, Call: 0.35, Raise: 0.55, Allin: 0.75},
	deck.Flop:    {Fold: 0.28, Call: 0.33, Raise: 0.50, Allin: 0.70},
	deck.Turn:    {Fold: 0.30, Call: 0.35, Raise: 0.52, Allin: 0.68},
	deck.River:   {Fold: 0.33, Call: 0.38, Raise: 0.58, Allin: 0.72},
}

// ApplyThresholdOverrides rewrites the fold gate for any street the
// operator supplied a non-zero override for, expressed as fixed-point
// equity*1000 to keep the HCL config free of floats. Called once at
// startup before the loop begins reading baseThresholds concurrently.
func ApplyThresholdOverrides(preflop, flop, turn, river int) {
	if preflop > 0 {
		overrideFold(deck.Preflop, float64(preflop)/1000)
	}
	if flop > 0 {
		overrideFold(deck.Flop, float64(flop)/1000)
	}
	if turn > 0 {
		overrideFold(deck.Turn, float64(turn)/1000)
	}
	if river > 0 {
		overrideFold(deck.River, float64(river)/1000)
	}
}

func overrideFold(street deck.Street, fold float64) {
	t := baseThresholds[street]
	t.Fold = clamp01(fold)
	baseThresholds[street] = t
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// adjusted applies the position and multi-way shifts from spec.md §4.3
// additively to each threshold, then clamps to [0,1].
func adjusted(street deck.Street, inPosition bool, opponents int) Thresholds {
	t := baseThresholds[street]

	shift := 0.03 // out-of-position
	if inPosition {
		shift = -0.05
	}
	if opponents > 1 {
		shift += 0.04 * float64(opponents-1)
	}

	t.Fold = clamp01(t.Fold + shift)
	t.Call = clamp01(t.Call + shift)
	t.Raise = clamp01(t.Raise + shift)
	t.Allin = clamp01(t.Allin + shift)
	return t
}
