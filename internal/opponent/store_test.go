package opponent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessHandMonotonicCounters(t *testing.T) {
	s := NewStore()
	err := s.ProcessHand("p1", PLO5, HandSummary{Voluntary: true, RaisedPreflop: true})
	require.NoError(t, err)
	err = s.ProcessHand("p1", PLO5, HandSummary{Voluntary: false})
	require.NoError(t, err)

	p := s.Profile("p1", PLO5)
	assert.Equal(t, int64(2), p.HandsPlayed)
	assert.InDelta(t, 0.5, p.VPIP, 0.001)
}

func TestProcessHandRejectsEmptyPlayerID(t *testing.T) {
	s := NewStore()
	err := s.ProcessHand("", PLO5, HandSummary{})
	assert.Error(t, err)
}

func TestVariantIsolation(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.ProcessHand("p1", PLO5, HandSummary{Voluntary: true}))
	require.NoError(t, s.ProcessHand("p1", PLO6, HandSummary{Voluntary: false}))

	plo5 := s.Profile("p1", PLO5)
	plo6 := s.Profile("p1", PLO6)
	assert.Equal(t, int64(1), plo5.HandsPlayed)
	assert.Equal(t, int64(1), plo6.HandsPlayed)
	assert.Equal(t, 1.0, plo5.VPIP)
	assert.Equal(t, 0.0, plo6.VPIP)
}

func TestTrustGate(t *testing.T) {
	s := NewStore()
	for i := 0; i < MinTrustHands-1; i++ {
		require.NoError(t, s.ProcessHand("p1", PLO5, HandSummary{Voluntary: true, RaisedPreflop: true}))
	}
	p := s.Profile("p1", PLO5)
	assert.False(t, p.Trusted)
	assert.Equal(t, Unknown, p.Archetype)

	require.NoError(t, s.ProcessHand("p1", PLO5, HandSummary{Voluntary: true, RaisedPreflop: true}))
	p = s.Profile("p1", PLO5)
	assert.True(t, p.Trusted)
	assert.NotEqual(t, Unknown, p.Archetype) // loose+aggressive over 50 hands classifies
}

func TestProcessHandConcurrentWritesAreSerialized(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.ProcessHand("p1", PLO5, HandSummary{Voluntary: true})
		}()
	}
	wg.Wait()

	p := s.Profile("p1", PLO5)
	assert.Equal(t, int64(100), p.HandsPlayed)
}

func TestArchetypeClassification(t *testing.T) {
	s := NewStore()
	for i := 0; i < MinTrustHands; i++ {
		require.NoError(t, s.ProcessHand("nit", PLO5, HandSummary{Voluntary: false, RaisedPreflop: false}))
	}
	p := s.Profile("nit", PLO5)
	assert.Equal(t, Nit, p.Archetype)
}
