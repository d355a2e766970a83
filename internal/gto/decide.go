package gto

import (
	"fmt"
	"math/rand"

	"github.com/lox/plo-sentinel/internal/deck"
	"github.com/lox/plo-sentinel/internal/opponent"
)

// Action is an enumerated decision outcome — spec.md §9 calls out
// replacing dynamic dicts/strings with a flat enumerated record, the way
// the teacher models Street and Suit.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	Allin
)

func (a Action) String() string {
	switch a {
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case Allin:
		return "allin"
	default:
		return "fold"
	}
}

// GameState is the built-during-CALCULATING record from spec.md §3.
type GameState struct {
	HeroCards  []deck.Card
	Board      []deck.Card
	Dead       []deck.Card
	Variant    deck.Variant
	Street     deck.Street
	Pot        int // rational units, BB*100
	HeroStack  int
	BetFacing  int
	Position   deck.Position
	Opponents  int
	InPosition bool
}

// Frequencies describes the mixed strategy's weight on each action. They
// need not sum to 1 — spec.md §3 only requires them non-negative.
type Frequencies struct {
	Fold, Check, Call, Raise, Allin float64
}

// Decision is the engine's output, per spec.md §3.
type Decision struct {
	Action      Action
	RaiseAmount int
	Equity      float64
	EV          float64
	Frequencies Frequencies
	Confidence  float64
	Reasoning   string
}

// OpponentLookup resolves a trusted profile for a seat, or ok=false if
// none is trusted yet. The GTO engine treats an untrusted/unknown
// opponent as absent, per spec.md §4.4's trust-gate requirement.
type OpponentLookup func() (opponent.Profile, bool)

// Decide implements spec.md §4.3's contract: decide(game_state,
// opponent_profiles) -> Decision. rng supplies both the mixed-strategy
// noise and is the single source of randomness, so tests can seed it for
// reproducibility (spec.md §9).
func Decide(gs GameState, lookup OpponentLookup, equity float64, rng *rand.Rand) Decision {
	t := adjusted(gs.Street, gs.InPosition, max(1, gs.Opponents))

	if lookup != nil {
		if profile, ok := lookup(); ok && profile.Trusted {
			t = applyOverlay(t, profile.Archetype, gs.Street, gs.Position)
		}
	}

	pot := gs.Pot
	if pot < 1 {
		pot = 1
	}
	spr := float64(gs.HeroStack) / float64(pot)

	// SPR commitment override: bypasses noise entirely.
	if spr < 2.0 && equity >= 0.40 {
		return Decision{
			Action:      Allin,
			RaiseAmount: gs.HeroStack,
			Equity:      equity,
			EV:          equity*float64(pot+gs.HeroStack) - float64(gs.HeroStack),
			Confidence:  min(0.95, equity),
			Frequencies: Frequencies{Allin: 1},
			Reasoning:   fmt.Sprintf("equity %.0f%% with SPR %.2f < 2.0: commit override", equity*100, spr),
		}
	}

	noise := rng.Float64()*0.06 - 0.03
	effective := clamp01(equity + noise)

	action := classify(effective, t)

	potOdds := 0.0
	if gs.BetFacing > 0 {
		potOdds = float64(gs.BetFacing) / float64(pot+gs.BetFacing)
	}
	if action == Fold && gs.BetFacing > 0 && equity >= potOdds {
		action = Call
	}

	if gs.BetFacing == 0 {
		if action == Fold || action == Call {
			action = Check
		}
	}

	raiseAmount := 0
	if action == Raise || action == Allin {
		raiseAmount = sizeRaise(gs, spr, equity)
		if action == Allin {
			raiseAmount = gs.HeroStack
		}
	}

	freqs := mixedFrequencies(equity, t)
	confidence := distanceConfidence(effective, t)

	return Decision{
		Action:      action,
		RaiseAmount: raiseAmount,
		Equity:      equity,
		EV:          equity*float64(pot) - float64(gs.BetFacing)*(1-equity),
		Frequencies: freqs,
		Confidence:  confidence,
		Reasoning:   reasoning(gs.Street, action, equity, t),
	}
}

func classify(effective float64, t Thresholds) Action {
	switch {
	case effective >= t.Allin:
		return Allin
	case effective >= t.Raise:
		return Raise
	case effective >= t.Call:
		return Call
	case effective >= t.Fold:
		return Call // between fold and call thresholds: still calling range
	default:
		return Fold
	}
}

// sizeRaise implements spec.md §4.3's sizing table.
func sizeRaise(gs GameState, spr, equity float64) int {
	if gs.Street == deck.Preflop {
		return gs.Pot
	}
	switch {
	case spr < 3 || equity > 0.70:
		return gs.Pot
	case equity > 0.55:
		return gs.Pot * 2 / 3
	default:
		return gs.Pot / 2
	}
}

// mixedFrequencies gives each action a non-negative weight describing how
// often it would be chosen across many noise draws at this equity, purely
// as a diagnostic for callers — the actual action taken is `action` above.
// The weights follow classify alone: they leave out the pot-odds upgrade
// and the collapse to check when no bet is facing, so Check stays zero.
func mixedFrequencies(equity float64, t Thresholds) Frequencies {
	width := 0.03
	return Frequencies{
		Fold:  sigmoidBand(equity, t.Fold, width, false),
		Call:  sigmoidBand(equity, t.Fold, width, true) - sigmoidBand(equity, t.Raise, width, true),
		Raise: sigmoidBand(equity, t.Raise, width, true) - sigmoidBand(equity, t.Allin, width, true),
		Allin: sigmoidBand(equity, t.Allin, width, true),
	}
}

// sigmoidBand approximates P(equity+noise >= threshold) for noise ~
// U(-width,width) as a clamped linear ramp, used only to report
// frequencies, not to drive the decision.
func sigmoidBand(equity, threshold, width float64, above bool) float64 {
	p := (equity - threshold + width) / (2 * width)
	p = clamp01(p)
	if above {
		return p
	}
	return 1 - p
}

func distanceConfidence(effective float64, t Thresholds) float64 {
	dists := []float64{
		abs(effective - t.Fold),
		abs(effective - t.Call),
		abs(effective - t.Raise),
		abs(effective - t.Allin),
	}
	min := dists[0]
	for _, d := range dists[1:] {
		if d < min {
			min = d
		}
	}
	// Far from any gate -> confident; right on a gate -> ~0.5.
	return clamp01(0.5 + min*4)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func reasoning(street deck.Street, action Action, equity float64, t Thresholds) string {
	gate := "fold"
	switch action {
	case Check:
		gate = "check (no bet facing)"
	case Call:
		gate = fmt.Sprintf("call gate %.2f", t.Call)
	case Raise:
		gate = fmt.Sprintf("raise gate %.2f", t.Raise)
	case Allin:
		gate = fmt.Sprintf("allin gate %.2f", t.Allin)
	default:
		gate = fmt.Sprintf("fold gate %.2f", t.Fold)
	}
	return fmt.Sprintf("%s equity %.1f%%, %s", street, equity*100, gate)
}
