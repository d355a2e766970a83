// Package telemetry exposes the orchestrator's running snapshot over
// plain HTTP/JSON for diagnostic consumers — today just the TUI
// dashboard. It is deliberately separate from the vision/intake
// WebSocket ports: those carry high-frequency perception data, this
// carries a slow, human-facing status poll.
package telemetry

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lox/plo-sentinel/internal/orchestrator"
)

// Snapshot is the wire shape of one orchestrator.Snapshot.
type Snapshot struct {
	State       string  `json:"state"`
	Cycles      int64   `json:"cycles"`
	Executed    int64   `json:"executed"`
	Dropped     int64   `json:"frames_dropped"`
	Timeouts    int64   `json:"perception_timeout"`
	NoTarget    int64   `json:"no_target_button"`
	Locked      int64   `json:"executor_locked"`
	Crashed     int64   `json:"peripheral_crash"`
	Action      string  `json:"action"`
	RaiseAmount int     `json:"raise_amount"`
	Equity      float64 `json:"equity"`
	EV          float64 `json:"ev"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
	FoldFreq    float64 `json:"fold_freq"`
	CheckFreq   float64 `json:"check_freq"`
	CallFreq    float64 `json:"call_freq"`
	RaiseFreq   float64 `json:"raise_freq"`
	AllinFreq   float64 `json:"allin_freq"`
}

func toWire(s orchestrator.Snapshot) Snapshot {
	d := s.LastDecision
	return Snapshot{
		State:       s.State.String(),
		Cycles:      s.Stats.Cycles,
		Executed:    s.Stats.Executed,
		Dropped:     s.Stats.FramesDropped,
		Timeouts:    s.Stats.PerceptionTimeout,
		NoTarget:    s.Stats.NoTargetButton,
		Locked:      s.Stats.ExecutorLocked,
		Crashed:     s.Stats.PeripheralCrash,
		Action:      d.Action.String(),
		RaiseAmount: d.RaiseAmount,
		Equity:      d.Equity,
		EV:          d.EV,
		Confidence:  d.Confidence,
		Reasoning:   d.Reasoning,
		FoldFreq:    d.Frequencies.Fold,
		CheckFreq:   d.Frequencies.Check,
		CallFreq:    d.Frequencies.Call,
		RaiseFreq:   d.Frequencies.Raise,
		AllinFreq:   d.Frequencies.Allin,
	}
}

// Handler serves the loop's latest Snapshot as JSON on every request.
func Handler(loop *orchestrator.Loop) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toWire(loop.Snapshot()))
	})
}

// Client polls a telemetry endpoint.
type Client struct {
	Addr string
}

// Fetch performs one GET and decodes the snapshot.
func (c Client) Fetch() (Snapshot, error) {
	resp, err := http.Get(c.Addr)
	if err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("telemetry: status %s", resp.Status)
	}
	var s Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: decode: %w", err)
	}
	return s, nil
}
