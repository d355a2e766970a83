package wsvision

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/plo-sentinel/internal/opponent"
)

// handSummaryMessage is the wire shape of one observed showdown/fold
// summary, fed to the opponent store's intake port (spec.md §6).
type handSummaryMessage struct {
	PlayerID string              `json:"player_id"`
	Variant  string              `json:"variant"` // "plo5" | "plo6"
	Summary  opponent.HandSummary `json:"summary"`
}

// IntakeClient connects to the hand-history peripheral and feeds every
// observed hand into the opponent store as it arrives.
type IntakeClient struct {
	serverURL string
	store     *opponent.Store
	log       zerolog.Logger
}

// NewIntakeClient builds an IntakeClient writing into store.
func NewIntakeClient(serverURL string, store *opponent.Store, log zerolog.Logger) *IntakeClient {
	return &IntakeClient{serverURL: serverURL, store: store, log: log}
}

// Run dials the peripheral and processes messages until the connection
// closes or returns an error. It is meant to run in its own goroutine,
// restarted by the supervisor on failure (spec.md §4.8's PeripheralCrash
// handling).
func (c *IntakeClient) Run() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("wsvision: invalid intake url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("wsvision: intake dial: %w", err)
	}
	defer conn.Close()

	for {
		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				return fmt.Errorf("wsvision: intake socket error: %w", err)
			}
			return nil
		}

		var msg handSummaryMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Warn().Err(err).Msg("malformed hand summary, skipping")
			continue
		}

		variant := opponent.PLO5
		if msg.Variant == "plo6" {
			variant = opponent.PLO6
		}
		if err := c.store.ProcessHand(msg.PlayerID, variant, msg.Summary); err != nil {
			c.log.Warn().Err(err).Str("player_id", msg.PlayerID).Msg("failed to process hand summary")
		}
	}
}
