// Package wsvision adapts the external vision peripheral (spec.md §1's
// screen-capture/ML card detection collaborator) to a gorilla/websocket
// feed, implementing orchestrator.VisionPort with pause/resume drop
// semantics.
//
// Grounded in the teacher's sdk/ws_client.go: a dialer, a reader
// goroutine dispatching into channels, and a stop channel for teardown.
package wsvision

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/plo-sentinel/internal/vision"
)

// frameMessage is the wire shape the vision peripheral sends: one
// detection vector per frame plus a monotonically increasing sequence
// number, which the client decodes but does not use.
type frameMessage struct {
	Seq        int64               `json:"seq"`
	Detections []vision.Detection  `json:"detections"`
}

// rateMessage requests a capture rate change from the peripheral.
type rateMessage struct {
	FPS int `json:"fps"`
}

// Client is a VisionPort backed by a WebSocket connection to the capture
// peripheral. Pause/Resume are purely local: while paused, frames are
// still read off the socket but dropped rather than forwarded,
// exactly matching spec.md §4.7 invariant 2's "drop, don't buffer" rule.
type Client struct {
	serverURL string
	log       zerolog.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	paused    bool

	out      chan []vision.Detection
	stopChan chan struct{}
}

// NewClient builds a disconnected Client. Connect must be called before
// Frames() produces anything.
func NewClient(serverURL string, log zerolog.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		log:       log,
		out:       make(chan []vision.Detection, 8),
		stopChan:  make(chan struct{}),
	}
}

// Connect dials the vision peripheral and starts the reader goroutine.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("wsvision: invalid url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "ws"
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("wsvision: dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// Disconnect tears down the connection and reader goroutine.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	c.connected = false
	close(c.stopChan)
	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return c.conn.Close()
	}
	return nil
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		var msg frameMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error().Err(err).Msg("vision socket error")
			}
			return
		}

		c.mu.RLock()
		paused := c.paused
		c.mu.RUnlock()
		if paused {
			continue // drop at the source, never buffer
		}

		select {
		case c.out <- msg.Detections:
		default:
			c.log.Warn().Msg("vision consumer not keeping up, dropping frame")
		}
	}
}

// Frames implements orchestrator.VisionPort.
func (c *Client) Frames() <-chan []vision.Detection { return c.out }

// SetRate implements orchestrator.VisionPort by forwarding a rate request
// to the peripheral over the same socket.
func (c *Client) SetRate(fps int) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return
	}
	raw, _ := json.Marshal(rateMessage{FPS: fps})
	_ = conn.WriteMessage(websocket.TextMessage, raw)
}

// Pause implements orchestrator.VisionPort.
func (c *Client) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume implements orchestrator.VisionPort.
func (c *Client) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// IsConnected reports whether the socket is currently live.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
