package orchestrator

import "github.com/lox/plo-sentinel/internal/vision"

// MockVision is a VisionPort driven entirely by test code: frames handed
// to Push are delivered on Frames() unless the port is paused, in which
// case they are dropped, mirroring a real capture peripheral's pause
// semantics (spec.md §4.7 invariant 2).
type MockVision struct {
	ch     chan []vision.Detection
	paused bool
	rate   int
}

// NewMockVision builds a MockVision with a generously buffered channel so
// Push never blocks a test goroutine.
func NewMockVision() *MockVision {
	return &MockVision{ch: make(chan []vision.Detection, 64)}
}

func (m *MockVision) Frames() <-chan []vision.Detection { return m.ch }
func (m *MockVision) SetRate(fps int)                    { m.rate = fps }
func (m *MockVision) Pause()                             { m.paused = true }
func (m *MockVision) Resume()                            { m.paused = false }

// Push delivers a frame unless the port is currently paused, in which
// case it is silently dropped.
func (m *MockVision) Push(frame []vision.Detection) {
	if m.paused {
		return
	}
	m.ch <- frame
}

// Rate reports the last rate requested via SetRate, for assertions.
func (m *MockVision) Rate() int { return m.rate }
