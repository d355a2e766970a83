// Package execution implements the action execution contract (spec.md
// §4.5): a zero-queue, mutex-guarded "drop-if-locked" tap interface. The
// core consumes this contract; it never implements input injection
// itself — humanised timing and actual tap delivery are a pluggable
// peripheral (spec.md §1's externalized collaborators).
package execution

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
)

// Difficulty selects the cognitive-delay distribution's mean, per
// spec.md §4.5.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DefaultEasyMean, DefaultMediumMean and DefaultHardMean are the
// Poisson means from spec.md §4.5, used unless an operator overrides
// them via Executor.WithMeanDelays.
const (
	DefaultEasyMean   = 800 * time.Millisecond
	DefaultMediumMean = 2200 * time.Millisecond
	DefaultHardMean   = 4500 * time.Millisecond
)

// DifficultyForConfidence maps a Decision's confidence to an executor
// difficulty, per spec.md §4.5.
func DifficultyForConfidence(confidence float64) Difficulty {
	switch {
	case confidence >= 0.8:
		return Easy
	case confidence >= 0.5:
		return Medium
	default:
		return Hard
	}
}

// BBox is a target region in pixel coordinates, with a centre and
// half-extents.
type BBox struct {
	CX, CY float64
	HW, HH float64
}

// Result is returned by ExecuteAction. Dropped results populate only
// Reason; a caller must check Dropped before reading the other fields.
type Result struct {
	Dropped         bool
	Reason          string
	TapX, TapY      float64
	CognitiveDelay  time.Duration
	Cooldown        time.Duration
	Total           time.Duration
}

// DefaultCooldownFloor is the post-action cooldown floor from spec.md §4.5.
const DefaultCooldownFloor = 1500 * time.Millisecond

// Executor is the zero-queue tap contract. At most one action is in
// flight across the process: a second caller observing the lock already
// held gets Dropped immediately rather than enqueued, per spec.md §4.5
// and §8's "Zero queue" testable property.
type Executor struct {
	locked        atomic.Bool
	clock         quartz.Clock
	cooldownFloor time.Duration
	easyMean      time.Duration
	mediumMean    time.Duration
	hardMean      time.Duration
	rng           *rand.Rand
}

// NewExecutor builds an Executor. clock is injectable so tests can use
// quartz.NewMock() to assert the cooldown floor deterministically, the
// same pattern the teacher's internal/testing package uses against the
// game server.
func NewExecutor(clock quartz.Clock, rng *rand.Rand) *Executor {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Executor{
		clock:         clock,
		cooldownFloor: DefaultCooldownFloor,
		easyMean:      DefaultEasyMean,
		mediumMean:    DefaultMediumMean,
		hardMean:      DefaultHardMean,
		rng:           rng,
	}
}

// WithCooldownFloor overrides the default 1500ms floor, per an
// operator's engine.hcl execution block (or a test's tighter floor).
func (e *Executor) WithCooldownFloor(d time.Duration) *Executor {
	e.cooldownFloor = d
	return e
}

// WithMeanDelays overrides the default Easy/Medium/Hard cognitive-delay
// means, per an operator's engine.hcl execution block.
func (e *Executor) WithMeanDelays(easy, medium, hard time.Duration) *Executor {
	e.easyMean = easy
	e.mediumMean = medium
	e.hardMean = hard
	return e
}

// meanDelay returns the configured Poisson mean (in seconds) for a
// difficulty level.
func (e *Executor) meanDelay(d Difficulty) float64 {
	switch d {
	case Medium:
		return e.mediumMean.Seconds()
	case Hard:
		return e.hardMean.Seconds()
	default:
		return e.easyMean.Seconds()
	}
}

// ExecuteAction attempts to acquire the zero-queue lock and, on success,
// sleeps a cognitive delay, computes a Gaussian tap inside bbox, then
// holds the cooldown floor before releasing the lock. On failure to
// acquire, it returns {Dropped: true} immediately without blocking.
func (e *Executor) ExecuteAction(bbox BBox, difficulty Difficulty) Result {
	if !e.locked.CompareAndSwap(false, true) {
		return Result{Dropped: true, Reason: "executor locked"}
	}
	defer e.locked.Store(false)

	start := e.clock.Now()
	delay := poissonDuration(e.rng, e.meanDelay(difficulty))
	<-e.clock.After(delay)

	tapX := clampToBBox(bbox.CX+e.rng.NormFloat64()*bbox.HW/2, bbox.CX-bbox.HW, bbox.CX+bbox.HW)
	tapY := clampToBBox(bbox.CY+e.rng.NormFloat64()*bbox.HH/2, bbox.CY-bbox.HH, bbox.CY+bbox.HH)

	<-e.clock.After(e.cooldownFloor)

	return Result{
		TapX:           tapX,
		TapY:           tapY,
		CognitiveDelay: delay,
		Cooldown:       e.cooldownFloor,
		Total:          e.clock.Now().Sub(start),
	}
}

func clampToBBox(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// poissonDuration draws from a Poisson distribution with the given mean
// (in seconds) using Knuth's algorithm, then returns it as a Duration.
// math/rand has no built-in Poisson sampler, unlike the Gaussian
// (NormFloat64) used for tap placement above.
func poissonDuration(rng *rand.Rand, meanSeconds float64) time.Duration {
	l := math.Exp(-meanSeconds)
	k := 0
	p := 1.0
	for {
		k++
		p *= rng.Float64()
		if p <= l {
			break
		}
	}
	seconds := float64(k - 1)
	return time.Duration(seconds * float64(time.Second))
}
