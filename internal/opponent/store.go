// Package opponent implements the variant-isolated opponent store
// (spec.md §4.4): per-player statistics kept in separate rows per
// (player_id, variant), gated behind a trust threshold before the GTO
// engine is allowed to use them. Rows live in memory only; nothing is
// written to disk, so the store starts empty on every process start.
//
// Grounded in the teacher's internal/server/statistics package: a
// mutex-guarded aggregate struct whose percentages are derived on every
// read rather than stored, plus monotonic counters fed by one intake
// function per hand.
package opponent

import (
	"fmt"
	"sync"
)

// MinTrustHands is the default trust gate threshold.
const MinTrustHands = 50

// Archetype is assigned only once a profile is trusted.
type Archetype int

const (
	Unknown Archetype = iota
	Whale
	Fish
	Nit
	Lag
	Tag
	Reg
)

func (a Archetype) String() string {
	switch a {
	case Whale:
		return "whale"
	case Fish:
		return "fish"
	case Nit:
		return "nit"
	case Lag:
		return "lag"
	case Tag:
		return "tag"
	case Reg:
		return "reg"
	default:
		return "unknown"
	}
}

// Variant mirrors deck.Variant without importing it, keeping this package
// free of a dependency on card-specific types; the orchestrator converts.
type Variant int

const (
	PLO5 Variant = iota
	PLO6
)

// rowKey identifies one persistent statistics row. The same player under
// PLO5 and PLO6 is two distinct rows, per spec.md §4.4 — never merged.
type rowKey struct {
	PlayerID string
	Variant  Variant
}

// counters holds every monotonic counter named in spec.md §3. They are
// only ever incremented, never overwritten in place.
type counters struct {
	HandsPlayed      int64
	VPIPCount        int64
	PFRCount         int64
	ThreeBetCount    int64
	ThreeBetOpp      int64
	CBetCount        int64
	CBetOpp          int64
	FoldToCBetCount  int64
	FoldToCBetOpp    int64
	WTSDCount        int64
	WTSDOpp          int64
	WSDCount         int64
	TotalBets        int64
	TotalRaises      int64
	TotalCalls       int64
	BetSizeSum       int64
	BetSizeCount     int64
}

type row struct {
	mu       sync.Mutex
	counters counters
	screen   string
}

// Store holds every player row, protected at the structural level by an
// RWMutex; individual counter updates are then serialized per-row so
// concurrent readers never block on a writer longer than one counter
// update, per spec.md §4.4's concurrency note.
type Store struct {
	mu            sync.RWMutex
	rows          map[rowKey]*row
	minTrustHands int64
}

// NewStore constructs an empty opponent store, trust-gated at
// MinTrustHands.
func NewStore() *Store {
	return &Store{rows: make(map[rowKey]*row), minTrustHands: MinTrustHands}
}

// WithMinTrustHands overrides the trust gate threshold, per an operator's
// engine.hcl opponent block.
func (s *Store) WithMinTrustHands(hands int) *Store {
	s.minTrustHands = int64(hands)
	return s
}

func (s *Store) rowFor(playerID string, variant Variant) *row {
	key := rowKey{playerID, variant}
	s.mu.RLock()
	r, ok := s.rows[key]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rows[key]; ok {
		return r
	}
	r = &row{}
	s.rows[key] = r
	return r
}

// HandSummary is the per-hand intake shape named in spec.md §6's Opponent
// intake port.
type HandSummary struct {
	ScreenName      string
	Voluntary       bool
	RaisedPreflop   bool
	Had3BetOpp      bool
	Did3Bet         bool
	HadCBetOpp      bool
	DidCBet         bool
	FacedCBet       bool
	FoldedToCBet    bool
	SawRiver        bool
	WentToShowdown  bool
	WonAtShowdown   bool
	PostflopActions []PostflopAction
}

// PostflopAction is one bet/raise/call observed postflop.
type PostflopAction struct {
	Type     string // "bet", "raise", "call"
	PotRatio float64
}

// delta is the full set of counter increments implied by a HandSummary,
// computed before anything touches the row. Building this first and only
// then applying it atomically is what gives ProcessHand its
// all-or-nothing transaction semantics: a summary that fails to translate
// into a delta (spec.md §7 StoreTransactional) leaves counters untouched.
type delta struct {
	handsPlayed, vpip, pfr                     int64
	threeBetOpp, threeBet                      int64
	cbetOpp, cbet                              int64
	foldToCBetOpp, foldToCBet                  int64
	wtsdOpp, wtsd, wsd                         int64
	bets, raises, calls, betSizeSum, betSizeCt int64
}

func buildDelta(summary HandSummary) delta {
	d := delta{handsPlayed: 1}
	if summary.Voluntary {
		d.vpip = 1
	}
	if summary.RaisedPreflop {
		d.pfr = 1
	}
	if summary.Had3BetOpp {
		d.threeBetOpp = 1
		if summary.Did3Bet {
			d.threeBet = 1
		}
	}
	if summary.HadCBetOpp {
		d.cbetOpp = 1
		if summary.DidCBet {
			d.cbet = 1
		}
	}
	if summary.FacedCBet {
		d.foldToCBetOpp = 1
		if summary.FoldedToCBet {
			d.foldToCBet = 1
		}
	}
	if summary.SawRiver {
		d.wtsdOpp = 1
		if summary.WentToShowdown {
			d.wtsd = 1
			if summary.WonAtShowdown {
				d.wsd = 1
			}
		}
	}
	for _, a := range summary.PostflopActions {
		switch a.Type {
		case "bet":
			d.bets++
		case "raise":
			d.raises++
		case "call":
			d.calls++
		default:
			continue
		}
		if a.Type == "bet" || a.Type == "raise" {
			d.betSizeSum += int64(a.PotRatio * 100)
			d.betSizeCt++
		}
	}
	return d
}

func (d delta) apply(c *counters) {
	c.HandsPlayed += d.handsPlayed
	c.VPIPCount += d.vpip
	c.PFRCount += d.pfr
	c.ThreeBetOpp += d.threeBetOpp
	c.ThreeBetCount += d.threeBet
	c.CBetOpp += d.cbetOpp
	c.CBetCount += d.cbet
	c.FoldToCBetOpp += d.foldToCBetOpp
	c.FoldToCBetCount += d.foldToCBet
	c.WTSDOpp += d.wtsdOpp
	c.WTSDCount += d.wtsd
	c.WSDCount += d.wsd
	c.TotalBets += d.bets
	c.TotalRaises += d.raises
	c.TotalCalls += d.calls
	c.BetSizeSum += d.betSizeSum
	c.BetSizeCount += d.betSizeCt
}

// ProcessHand applies one hand summary as a single atomic transaction: the
// delta is computed in full, then applied under the row's lock. Partial
// failure (an unrecognised PostflopAction type is simply ignored above,
// not an error) never leaves the row half-updated.
func (s *Store) ProcessHand(playerID string, variant Variant, summary HandSummary) error {
	if playerID == "" {
		return fmt.Errorf("opponent: playerID must not be empty")
	}
	d := buildDelta(summary)

	r := s.rowFor(playerID, variant)
	r.mu.Lock()
	defer r.mu.Unlock()
	if summary.ScreenName != "" {
		r.screen = summary.ScreenName
	}
	d.apply(&r.counters)
	return nil
}
