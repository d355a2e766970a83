package orchestrator

import (
	"github.com/lox/plo-sentinel/internal/gto"
	"github.com/lox/plo-sentinel/internal/vision"
)

// DefaultTargetFinder implements TargetFinder against the button class ids
// from spec.md §3: fold=52, check=53 (doubled as the call button — the
// host UI relabels the same control, it does not add a distinct class),
// raise=54-58 by sizing bucket, allin=59.
func DefaultTargetFinder(frame []vision.Detection, action gto.Action, raiseAmount int) (Target, bool) {
	classID, ok := buttonClassFor(action, raiseAmount)
	if !ok {
		return Target{}, false
	}
	for _, d := range frame {
		if d.ClassID == classID {
			return Target{CX: d.CX, CY: d.CY, HW: d.W / 2, HH: d.H / 2}, true
		}
	}
	// Raise sizing buckets fall back to any raise-class button when the
	// exact size detection is missing but a raise control exists. This
	// must not apply to Allin: tapping a raise-sizing button instead of
	// the all-in button would execute a different action than decided,
	// per spec.md §4.8 ("No button found for the decided action: abort
	// to WAITING — do not substitute").
	if action == gto.Raise {
		for _, d := range frame {
			if d.ClassID >= vision.RaiseButtonMin && d.ClassID <= vision.RaiseButtonMax {
				return Target{CX: d.CX, CY: d.CY, HW: d.W / 2, HH: d.H / 2}, true
			}
		}
	}
	return Target{}, false
}

func buttonClassFor(action gto.Action, raiseAmount int) (int, bool) {
	switch action {
	case gto.Fold:
		return vision.FoldButton, true
	case gto.Check, gto.Call:
		return vision.CheckButton, true
	case gto.Allin:
		return vision.AllinButton, true
	case gto.Raise:
		return raiseSizeBucket(raiseAmount), true
	default:
		return 0, false
	}
}

// raiseSizeBucket maps a raise amount onto one of the 5 sizing classes.
// Without the pot reference at this layer it always returns the mid
// bucket; raiseAmount is not consulted. When that button is absent,
// DefaultTargetFinder's fallback loop takes the first raise-class button
// in frame order.
func raiseSizeBucket(raiseAmount int) int {
	return vision.RaiseButtonMin + 2
}
