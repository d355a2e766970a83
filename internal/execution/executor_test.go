package execution

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteActionZeroQueue(t *testing.T) {
	e := NewExecutor(quartz.NewReal(), rand.New(rand.NewSource(1))).WithCooldownFloor(1 * time.Millisecond)
	bbox := BBox{CX: 100, CY: 100, HW: 20, HH: 10}

	var successes, drops int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res := e.ExecuteAction(bbox, Easy)
			if res.Dropped {
				atomic.AddInt32(&drops, 1)
			} else {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes, "exactly one overlapping call should succeed")
	assert.Equal(t, int32(7), drops, "every other overlapping call must be dropped, never queued")
}

func TestExecuteActionReleasesLockForNextCall(t *testing.T) {
	e := NewExecutor(quartz.NewReal(), rand.New(rand.NewSource(2))).WithCooldownFloor(1 * time.Millisecond)
	bbox := BBox{CX: 50, CY: 50, HW: 10, HH: 10}

	first := e.ExecuteAction(bbox, Easy)
	require.False(t, first.Dropped)

	second := e.ExecuteAction(bbox, Easy)
	assert.False(t, second.Dropped, "the lock must be released once the prior action completes")
}

func TestExecuteActionTapInsideBBox(t *testing.T) {
	e := NewExecutor(quartz.NewReal(), rand.New(rand.NewSource(3))).WithCooldownFloor(0)
	bbox := BBox{CX: 200, CY: 150, HW: 30, HH: 15}

	for i := 0; i < 20; i++ {
		res := e.ExecuteAction(bbox, Easy)
		require.False(t, res.Dropped)
		assert.GreaterOrEqual(t, res.TapX, bbox.CX-bbox.HW)
		assert.LessOrEqual(t, res.TapX, bbox.CX+bbox.HW)
		assert.GreaterOrEqual(t, res.TapY, bbox.CY-bbox.HH)
		assert.LessOrEqual(t, res.TapY, bbox.CY+bbox.HH)
	}
}

func TestDifficultyForConfidence(t *testing.T) {
	assert.Equal(t, Easy, DifficultyForConfidence(0.9))
	assert.Equal(t, Medium, DifficultyForConfidence(0.6))
	assert.Equal(t, Hard, DifficultyForConfidence(0.2))
}

func TestExecuteActionReportsConfiguredCooldown(t *testing.T) {
	e := NewExecutor(quartz.NewReal(), rand.New(rand.NewSource(4))).WithCooldownFloor(50 * time.Millisecond)
	bbox := BBox{CX: 0, CY: 0, HW: 5, HH: 5}

	res := e.ExecuteAction(bbox, Easy)
	require.False(t, res.Dropped)
	assert.Equal(t, 50*time.Millisecond, res.Cooldown)
	assert.GreaterOrEqual(t, res.Total, res.Cooldown, "reported total must cover at least the cooldown hold")
}
