package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/plo-sentinel/internal/deck"
	"github.com/lox/plo-sentinel/internal/equity"
	"github.com/lox/plo-sentinel/internal/execution"
	"github.com/lox/plo-sentinel/internal/gto"
	"github.com/lox/plo-sentinel/internal/opponent"
	"github.com/lox/plo-sentinel/internal/vision"
)

// Config parameterises the orchestrator's timing, per spec.md §4.7/§4.8.
type Config struct {
	PerceptionTimeout time.Duration
	CooldownCeiling   time.Duration
	WaitingFPS        int
	PerceptionFPS     int
	CooldownFPS       int
	HeroYThreshold    float64 // fraction of frame height; cards below are hero's
	Gate              vision.Config
	// SimsPLO5/SimsPLO6 override equity.DefaultSims per variant; <= 0
	// keeps the package default. EquityWorkers overrides the worker
	// count passed to equity.Compute; <= 0 keeps its own default.
	SimsPLO5      int
	SimsPLO6      int
	EquityWorkers int
}

// DefaultConfig matches spec.md §4.6/§4.7's stated defaults.
func DefaultConfig() Config {
	return Config{
		PerceptionTimeout: 2000 * time.Millisecond,
		CooldownCeiling:   5000 * time.Millisecond,
		WaitingFPS:        5,
		PerceptionFPS:     30,
		CooldownFPS:       10,
		HeroYThreshold:    0.5,
		Gate:              vision.DefaultConfig(),
	}
}

// TableContext supplies the fields CALCULATING needs that vision alone
// cannot provide (pot/stack OCR and seat assignment are external
// collaborators per spec.md §1); the supervisor refreshes it every cycle.
type TableContext struct {
	Pot        int
	HeroStack  int
	BetFacing  int
	Position   deck.Position
	Opponents  int
	InPosition bool
	Dead       []deck.Card
	// OpponentIDs, indexed by seat, used to look up trusted profiles.
	// Only OpponentIDs[0] (the primary villain) is consulted today —
	// multiway overlay blending across several profiles is future work.
	OpponentIDs []string
}

// TableContextPort supplies a fresh TableContext once per CALCULATING
// entry.
type TableContextPort interface {
	Read() (TableContext, error)
}

// Loop is the C9 game loop state machine: single-threaded, cooperative,
// and the only place the 5+STOPPED states are allowed to change, per
// spec.md §4.9's "orchestrator domain" description.
type Loop struct {
	vision   VisionPort
	table    TableContextPort
	store    *opponent.Store
	executor *execution.Executor
	finder   TargetFinder
	clock    quartz.Clock
	cfg      Config
	rng      *rand.Rand
	log      zerolog.Logger

	// diagMu guards every field below that a diagnostic consumer
	// (Snapshot, State, Stats, Stop) can read or write from a goroutine
	// other than the one running Run — state, stats, lastDecision and
	// stopRequested are all written from inside Run's single goroutine
	// but polled from the telemetry/TUI goroutine, so every access to
	// them, including Run's own, goes through this mutex.
	diagMu        sync.Mutex
	state         State
	stats         Stats
	stopRequested bool
	lastDecision  gto.Decision

	pendingDecision gto.Decision
	pendingTarget   Target
	lastExecResult  execution.Result
}

// Snapshot is a point-in-time read of the loop for diagnostic consumers
// (the TUI dashboard, telemetry polling) — never read by the loop itself.
type Snapshot struct {
	State        State
	Stats        Stats
	LastDecision gto.Decision
}

// Snapshot returns the current state, running counters, and the most
// recently computed decision (zero value before the first CALCULATING
// completes).
func (l *Loop) Snapshot() Snapshot {
	l.diagMu.Lock()
	defer l.diagMu.Unlock()
	return Snapshot{State: l.state, Stats: l.stats, LastDecision: l.lastDecision}
}

// getState returns the current state under diagMu.
func (l *Loop) getState() State {
	l.diagMu.Lock()
	defer l.diagMu.Unlock()
	return l.state
}

// setState transitions to s under diagMu.
func (l *Loop) setState(s State) {
	l.diagMu.Lock()
	l.state = s
	l.diagMu.Unlock()
}

// isStopRequested reports whether Stop has been called.
func (l *Loop) isStopRequested() bool {
	l.diagMu.Lock()
	defer l.diagMu.Unlock()
	return l.stopRequested
}

// setLastDecision records the most recently computed decision.
func (l *Loop) setLastDecision(d gto.Decision) {
	l.diagMu.Lock()
	l.lastDecision = d
	l.diagMu.Unlock()
}

// bumpStat applies f to the running counters under diagMu.
func (l *Loop) bumpStat(f func(*Stats)) {
	l.diagMu.Lock()
	f(&l.stats)
	l.diagMu.Unlock()
}

// NewLoop wires C4-C8 behind the state machine. finder may be nil to use
// DefaultTargetFinder.
func NewLoop(visionPort VisionPort, table TableContextPort, store *opponent.Store, executor *execution.Executor, clock quartz.Clock, cfg Config, rng *rand.Rand, log zerolog.Logger) *Loop {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Loop{
		vision:   visionPort,
		table:    table,
		store:    store,
		executor: executor,
		finder:   DefaultTargetFinder,
		clock:    clock,
		cfg:      cfg,
		rng:      rng,
		log:      log,
		state:    Waiting,
	}
}

// State reports the current state (tests and the dashboard poll this).
func (l *Loop) State() State { return l.getState() }

// Stats returns a copy of the running event counters.
func (l *Loop) Stats() Stats {
	l.diagMu.Lock()
	defer l.diagMu.Unlock()
	return l.stats
}

// Stop requests a cooperative shutdown. If called mid-EXECUTING, the
// in-flight tap is allowed to finish and the loop transitions directly
// to STOPPED, bypassing COOLDOWN, per spec.md §4.9's cancellation rule.
func (l *Loop) Stop() {
	l.diagMu.Lock()
	l.stopRequested = true
	l.diagMu.Unlock()
}

// Run drives the state machine until STOPPED or ctx is cancelled. It
// returns nil on a clean stop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			l.setState(Stopped)
			return nil
		}
		if l.isStopRequested() && l.getState() != Executing {
			l.setState(Stopped)
			return nil
		}

		switch l.getState() {
		case Waiting:
			l.runWaiting(ctx)
		case Perception:
			l.runPerception(ctx)
		case Calculating:
			l.runCalculating(ctx)
		case Executing:
			l.runExecuting(ctx)
		case Cooldown:
			l.runCooldown(ctx)
		case Stopped:
			return nil
		}
	}
}

func hasActionButton(frame []vision.Detection) bool {
	for _, d := range frame {
		if d.IsButton() {
			return true
		}
	}
	return false
}

func (l *Loop) runWaiting(ctx context.Context) {
	l.vision.SetRate(l.cfg.WaitingFPS)
	l.vision.Resume()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-l.vision.Frames():
			if !ok {
				l.bumpStat(func(s *Stats) { s.PeripheralCrash++ })
				l.setState(Stopped)
				return
			}
			if hasActionButton(frame) {
				l.setState(Perception)
				return
			}
		}
		if l.isStopRequested() {
			return
		}
	}
}

func (l *Loop) runPerception(ctx context.Context) {
	l.vision.SetRate(l.cfg.PerceptionFPS)
	gate := vision.NewGate(l.cfg.Gate)
	deadline := l.clock.After(l.cfg.PerceptionTimeout)

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			l.bumpStat(func(s *Stats) { s.PerceptionTimeout++ })
			l.setState(Waiting)
			return
		case frame, ok := <-l.vision.Frames():
			if !ok {
				l.bumpStat(func(s *Stats) { s.PeripheralCrash++ })
				l.setState(Stopped)
				return
			}
			if !hasActionButton(frame) {
				l.setState(Waiting)
				return
			}
			if gate.Feed(frame) {
				l.vision.Pause()
				l.calculating(ctx, frame)
				return
			}
		}
	}
}

// calculating runs CALCULATING synchronously against the frozen frame and
// sets the next state. Splitting it from runCalculating lets Perception
// hand off the exact frame that fired stability without a channel hop
// that could race a poisoned post-freeze frame into the decision.
func (l *Loop) calculating(ctx context.Context, frozen []vision.Detection) {
	l.setState(Calculating)
	l.drainFrames() // anything queued between Pause() and now is dropped

	tc, err := l.table.Read()
	if err != nil {
		l.log.Warn().Err(err).Msg("table context read failed")
		l.setState(Waiting)
		return
	}

	gs, err := buildGameState(frozen, tc, l.cfg.HeroYThreshold)
	if err != nil {
		l.log.Warn().Err(err).Msg("inconsistent frozen-frame inference")
		l.setState(Waiting)
		return
	}

	eq, confidencePenalty := l.computeEquity(ctx, gs)

	lookup := l.lookupFor(tc, gs.Variant)
	decision := gto.Decide(gs, lookup, eq, l.rng)
	if confidencePenalty {
		decision.Confidence *= 0.5
	}

	l.setLastDecision(decision)

	target, ok := l.finder(frozen, decision.Action, decision.RaiseAmount)
	if !ok {
		l.bumpStat(func(s *Stats) { s.NoTargetButton++ })
		l.setState(Waiting)
		return
	}

	l.pendingDecision = decision
	l.pendingTarget = target
	l.bumpStat(func(s *Stats) { s.Cycles++ })
	l.setState(Executing)
}

func (l *Loop) computeEquity(ctx context.Context, gs gto.GameState) (float64, bool) {
	req := equity.Request{
		Hero:      gs.HeroCards,
		Board:     gs.Board,
		Dead:      gs.Dead,
		Opponents: max(1, gs.Opponents),
		Variant:   gs.Variant,
	}
	req.Sims = equity.DefaultSims(gs.Variant)
	if gs.Variant == deck.PLO6 {
		if l.cfg.SimsPLO6 > 0 {
			req.Sims = l.cfg.SimsPLO6
		}
	} else if l.cfg.SimsPLO5 > 0 {
		req.Sims = l.cfg.SimsPLO5
	}
	req.Workers = l.cfg.EquityWorkers
	res, err := equity.Compute(ctx, req)
	if err != nil || res.InsufficientDeck {
		return 0.5, true
	}
	return res.Equity, false
}

func (l *Loop) lookupFor(tc TableContext, variant deck.Variant) gto.OpponentLookup {
	if l.store == nil || len(tc.OpponentIDs) == 0 || tc.OpponentIDs[0] == "" {
		return nil
	}
	ov := opponent.PLO5
	if variant == deck.PLO6 {
		ov = opponent.PLO6
	}
	playerID := tc.OpponentIDs[0]
	return func() (opponent.Profile, bool) {
		p := l.store.Profile(playerID, ov)
		return p, p.Trusted
	}
}

func (l *Loop) runCalculating(ctx context.Context) {
	// calculating() above always resolves the state before returning to
	// Run's dispatch loop; this branch only exists to satisfy the
	// switch — Perception transitions here by calling calculating
	// directly so the frozen frame never travels through a channel.
	l.setState(Waiting)
}

func (l *Loop) runExecuting(ctx context.Context) {
	difficulty := execution.DifficultyForConfidence(l.pendingDecision.Confidence)
	bbox := execution.BBox{CX: l.pendingTarget.CX, CY: l.pendingTarget.CY, HW: l.pendingTarget.HW, HH: l.pendingTarget.HH}
	result := l.executor.ExecuteAction(bbox, difficulty)

	if result.Dropped {
		l.bumpStat(func(s *Stats) { s.ExecutorLocked++ })
		l.setState(Waiting)
		return
	}
	l.bumpStat(func(s *Stats) { s.Executed++ })
	l.lastExecResult = result

	if l.isStopRequested() {
		l.setState(Stopped)
		return
	}
	l.setState(Cooldown)
}

func (l *Loop) runCooldown(ctx context.Context) {
	l.vision.SetRate(l.cfg.CooldownFPS)
	l.vision.Resume()
	ceiling := l.clock.After(l.cfg.CooldownCeiling)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ceiling:
			l.setState(Waiting)
			return
		case frame, ok := <-l.vision.Frames():
			if !ok {
				l.bumpStat(func(s *Stats) { s.PeripheralCrash++ })
				l.setState(Stopped)
				return
			}
			if !hasActionButton(frame) {
				l.setState(Waiting)
				return
			}
		}
	}
}

// drainFrames discards any frame already buffered in the channel at the
// moment vision is paused, counting each as dropped, per spec.md §8
// scenario 5's frames_dropped accounting.
func (l *Loop) drainFrames() {
	for {
		select {
		case _, ok := <-l.vision.Frames():
			if !ok {
				return
			}
			l.bumpStat(func(s *Stats) { s.FramesDropped++ })
		default:
			return
		}
	}
}

// buildGameState infers hero/board partition, variant and street from a
// frozen frame plus the externally supplied table context, per spec.md
// §4.7's "street & hero/board inference" rule: cards below HeroYThreshold
// (as a fraction of the normalised frame) belong to hero; the rest are
// community cards.
func buildGameState(frame []vision.Detection, tc TableContext, heroYThreshold float64) (gto.GameState, error) {
	var heroCodes, boardCodes []int
	for _, d := range frame {
		if !d.IsCard() {
			continue
		}
		if d.CY >= heroYThreshold {
			heroCodes = append(heroCodes, d.ClassID)
		} else {
			boardCodes = append(boardCodes, d.ClassID)
		}
	}

	hero, err := codesToCards(heroCodes)
	if err != nil {
		return gto.GameState{}, err
	}
	board, err := codesToCards(boardCodes)
	if err != nil {
		return gto.GameState{}, err
	}

	variant, err := deck.VariantForHand(len(hero))
	if err != nil {
		return gto.GameState{}, fmt.Errorf("orchestrator: %w", err)
	}
	street, err := deck.StreetForBoard(len(board))
	if err != nil {
		return gto.GameState{}, fmt.Errorf("orchestrator: %w", err)
	}
	if err := deck.ValidateDisjoint(hero, board, tc.Dead); err != nil {
		return gto.GameState{}, err
	}

	return gto.GameState{
		HeroCards:  hero,
		Board:      board,
		Dead:       tc.Dead,
		Variant:    variant,
		Street:     street,
		Pot:        tc.Pot,
		HeroStack:  tc.HeroStack,
		BetFacing:  tc.BetFacing,
		Position:   tc.Position,
		Opponents:  tc.Opponents,
		InPosition: tc.InPosition,
	}, nil
}

func codesToCards(codes []int) ([]deck.Card, error) {
	cards := make([]deck.Card, 0, len(codes))
	for _, c := range codes {
		card, err := deck.FromCode(c)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}
