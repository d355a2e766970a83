package gto

import (
	"github.com/lox/plo-sentinel/internal/deck"
	"github.com/lox/plo-sentinel/internal/opponent"
)

// overlayShift is a pure function of (archetype, street, position) that
// nudges the call/raise thresholds to exploit a trusted tendency. It is
// parameterised rather than hard-coded so the magnitudes can be tuned
// without touching the call sites — spec.md §4.3 leaves the exact shift
// values to the implementer.
//
// Shifts are expressed the same way as the base adjustments: added to
// Call and Raise, then clamped to [0,1] by the caller. Positive values
// make the engine more conservative (harder to call/raise into this
// opponent); negative values make it looser.
func overlayShift(a opponent.Archetype, street deck.Street, pos deck.Position) (callShift, raiseShift float64) {
	switch a {
	case opponent.Whale, opponent.Fish:
		// Calling stations: widen value raises, tighten bluffs.
		return -0.02, -0.05
	case opponent.Nit:
		// Nits fold too much: steal wider, but don't overvalue thin calls.
		if pos == deck.BTN || pos == deck.CO {
			return 0.0, -0.04
		}
		return 0.01, 0.0
	case opponent.Lag:
		// Aggressive regs: tighten calling range against their raises.
		return 0.03, 0.02
	case opponent.Tag, opponent.Reg:
		return 0.0, 0.0
	default:
		return 0.0, 0.0
	}
}

// applyOverlay mutates Call/Raise within a copy of t using the trusted
// archetype, street and position, clamping the result to [0,1]. Never
// called for an untrusted profile.
func applyOverlay(t Thresholds, a opponent.Archetype, street deck.Street, pos deck.Position) Thresholds {
	callShift, raiseShift := overlayShift(a, street, pos)
	t.Call = clamp01(t.Call + callShift)
	t.Raise = clamp01(t.Raise + raiseShift)
	return t
}
