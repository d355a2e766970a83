// Package equity implements the Monte Carlo equity core (spec.md §4.2):
// parallel sampling of runouts and villain hands, enforcing that villains
// always share the hero's Omaha cardinality (PLO5 vs PLO5, PLO6 vs PLO6).
//
// Grounded in the teacher's internal/evaluator/equity.go: a bitset deck
// representation, a worker-result reduction type, and an errgroup-based
// parallel split over simulation count.
package equity

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/plo-sentinel/internal/deck"
	"github.com/lox/plo-sentinel/internal/evaluator"
)

// DefaultSims returns the spec-mandated default simulation count for a
// variant: PLO5 gets more because each PLO6 simulation costs ~1.5x.
func DefaultSims(v deck.Variant) int {
	if v == deck.PLO6 {
		return 3000
	}
	return 5000
}

// Request describes one equity query.
type Request struct {
	Hero      []deck.Card
	Board     []deck.Card
	Dead      []deck.Card
	Sims      int
	// Workers caps the number of parallel simulation batches. <= 0 picks
	// min(4, cores/2), the spec.md §4.2 default.
	Workers   int
	Opponents int
	Variant   deck.Variant
}

// Result is the outcome of an equity query. Equity = WinRate + 0.5*TieRate.
type Result struct {
	WinRate          float64
	TieRate          float64
	Equity           float64
	SimsCompleted    int
	ElapsedUs        int64
	InsufficientDeck bool
}

type workerResult struct {
	wins, ties, runs int
}

// cardSet is a 52-bit set keyed by deck.Card.Code(), used to build the
// available-deck slice without repeated linear scans.
type cardSet uint64

func newCardSet(groups ...[]deck.Card) cardSet {
	var cs cardSet
	for _, g := range groups {
		for _, c := range g {
			cs |= 1 << uint(c.Code())
		}
	}
	return cs
}

func (cs cardSet) contains(c deck.Card) bool {
	return cs&(1<<uint(c.Code())) != 0
}

// Compute runs the Monte Carlo equity estimate described in spec.md §4.2.
// It validates disjointness up front, builds the available deck once, and
// splits `sims` additively across min(4, cores/2) workers, each owning its
// own deck-buffer copy and RNG seed — no shared mutable state, matching
// the Worker domain model in spec.md §5.
func Compute(ctx context.Context, req Request) (Result, error) {
	if req.Opponents < 1 {
		return Result{}, fmt.Errorf("equity: opponents must be >= 1, got %d", req.Opponents)
	}
	if len(req.Hero) != 5 && len(req.Hero) != 6 {
		return Result{}, fmt.Errorf("equity: hero must hold 5 or 6 cards, got %d", len(req.Hero))
	}
	switch len(req.Board) {
	case 0, 3, 4, 5:
	default:
		return Result{}, fmt.Errorf("equity: board must hold 0, 3, 4 or 5 cards, got %d", len(req.Board))
	}
	if err := deck.ValidateDisjoint(req.Hero, req.Board, req.Dead); err != nil {
		return Result{}, err
	}

	variant, _ := deck.VariantForHand(len(req.Hero))
	sims := req.Sims
	if sims <= 0 {
		sims = DefaultSims(variant)
	}
	villainSize := len(req.Hero)

	blocked := newCardSet(req.Hero, req.Board, req.Dead)
	available := make([]deck.Card, 0, 52-len(req.Hero)-len(req.Board)-len(req.Dead))
	for _, c := range deck.FullDeck() {
		if !blocked.contains(c) {
			available = append(available, c)
		}
	}

	needed := (5 - len(req.Board)) + villainSize*req.Opponents
	if needed > len(available) {
		return Result{InsufficientDeck: true}, nil
	}

	workers := req.Workers
	if workers <= 0 {
		workers = min(4, max(1, runtime.NumCPU()/2))
	}
	if workers > sims {
		workers = sims
	}
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	results := make([]workerResult, workers)
	g, _ := errgroup.WithContext(ctx)
	base := int64(1)
	for w := 0; w < workers; w++ {
		w := w
		share := sims / workers
		if w < sims%workers {
			share++
		}
		g.Go(func() error {
			seed := base + int64(w)*2654435761
			rng := rand.New(rand.NewSource(seed))
			deckBuf := make([]deck.Card, len(available))
			copy(deckBuf, available)
			results[w] = simulateBatch(deckBuf, req.Hero, req.Board, villainSize, req.Opponents, share, rng)
			return nil
		})
	}
	_ = g.Wait()

	var wins, ties, runs int
	for _, r := range results {
		wins += r.wins
		ties += r.ties
		runs += r.runs
	}

	elapsed := time.Since(start)
	if runs == 0 {
		return Result{InsufficientDeck: true}, nil
	}
	winRate := float64(wins) / float64(runs)
	tieRate := float64(ties) / float64(runs)
	return Result{
		WinRate:       winRate,
		TieRate:       tieRate,
		Equity:        winRate + 0.5*tieRate,
		SimsCompleted: runs,
		ElapsedUs:     elapsed.Microseconds(),
	}, nil
}

// simulateBatch runs `sims` independent trials using a partial
// Fisher-Yates shuffle of only the minimum slice needed per trial, as
// required by spec.md §4.2 step 1.
func simulateBatch(deckBuf []deck.Card, hero, board []deck.Card, villainSize, opponents, sims int, rng *rand.Rand) workerResult {
	needed := (5 - len(board)) + villainSize*opponents
	var res workerResult
	heroFull := make([]deck.Card, 0, 6)
	villainFull := make([]deck.Card, 0, 6)

	for i := 0; i < sims; i++ {
		partialShuffle(deckBuf, needed, rng)

		cursor := 0
		fullBoard := make([]deck.Card, 0, 5)
		fullBoard = append(fullBoard, board...)
		for len(fullBoard) < 5 {
			fullBoard = append(fullBoard, deckBuf[cursor])
			cursor++
		}

		heroFull = heroFull[:0]
		heroFull = append(heroFull, hero...)
		heroRank := bestRank(heroFull, fullBoard)

		bestVillain := evaluator.HandRank(1 << 30)
		for v := 0; v < opponents; v++ {
			villainFull = villainFull[:0]
			for k := 0; k < villainSize; k++ {
				villainFull = append(villainFull, deckBuf[cursor])
				cursor++
			}
			r := bestRank(villainFull, fullBoard)
			if r < bestVillain {
				bestVillain = r
			}
		}

		res.runs++
		switch {
		case heroRank < bestVillain:
			res.wins++
		case heroRank == bestVillain:
			res.ties++
		}
	}
	return res
}

// bestRank evaluates a hand (5 or 6 cards) against a full 5-card board
// under the Omaha rule.
func bestRank(hand, board []deck.Card) evaluator.HandRank {
	best := evaluator.HandRank(1 << 30)
	combos2(hand, func(a, b deck.Card) {
		combos3(board, func(x, y, z deck.Card) {
			five := [5]deck.Card{a, b, x, y, z}
			if r := evaluator.Evaluate5(five); r < best {
				best = r
			}
		})
	})
	return best
}

func combos2(cards []deck.Card, fn func(a, b deck.Card)) {
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			fn(cards[i], cards[j])
		}
	}
}

func combos3(cards []deck.Card, fn func(a, b, c deck.Card)) {
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			for k := j + 1; k < len(cards); k++ {
				fn(cards[i], cards[j], cards[k])
			}
		}
	}
}

// partialShuffle performs a Fisher-Yates shuffle limited to the first n
// positions of deckBuf — only the cards actually dealt this trial are
// randomised, per spec.md §4.2.
func partialShuffle(deckBuf []deck.Card, n int, rng *rand.Rand) {
	if n > len(deckBuf) {
		n = len(deckBuf)
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(deckBuf)-i)
		deckBuf[i], deckBuf[j] = deckBuf[j], deckBuf[i]
	}
}
