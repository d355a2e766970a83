package orchestrator

import (
	"github.com/lox/plo-sentinel/internal/gto"
	"github.com/lox/plo-sentinel/internal/vision"
)

// VisionPort is the pluggable screen-capture/detection peripheral from
// spec.md §1 and §6. The orchestrator owns its rate and pause state; the
// port itself is responsible for dropping frames while paused rather than
// buffering them, per spec.md §4.7 invariant 2.
type VisionPort interface {
	// Frames delivers detection vectors as they are produced. The
	// channel is never closed by a well-behaved port while running.
	Frames() <-chan []vision.Detection
	// SetRate requests a capture rate in frames per second.
	SetRate(fps int)
	// Pause suspends delivery; frames produced while paused are
	// dropped at the source, not queued.
	Pause()
	// Resume lifts a prior Pause.
	Resume()
}

// TargetFinder maps a decided action to a tap-target bounding box by
// looking it up in the frozen frame's button detections. It returns
// ok=false if no matching button detection exists, per spec.md §4.8's
// NoTargetButton failure.
type TargetFinder func(frame []vision.Detection, action gto.Action, raiseAmount int) (bbox Target, ok bool)

// Target is a tap region derived from a button Detection.
type Target struct {
	CX, CY float64
	HW, HH float64
}
