package wsvision

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/plo-sentinel/internal/opponent"
	"github.com/lox/plo-sentinel/internal/vision"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func newFrameServer(t *testing.T, frames [][]vision.Detection) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for seq, f := range frames {
			msg := frameMessage{Seq: int64(seq), Detections: f}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
		// Keep the socket open so readLoop's ReadJSON blocks rather than
		// erroring, until the test tears the server down.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(ts *httptest.Server) string {
	return "http" + strings.TrimPrefix(ts.URL, "http")
}

func TestClientReceivesFrames(t *testing.T) {
	frames := [][]vision.Detection{
		{{ClassID: 1, CX: 0.1, CY: 0.1}},
		{{ClassID: 2, CX: 0.2, CY: 0.2}},
	}
	ts := newFrameServer(t, frames)
	defer ts.Close()

	c := NewClient(wsURL(ts), zerolog.Nop())
	require.NoError(t, c.Connect())
	defer c.Disconnect()

	for i := 0; i < len(frames); i++ {
		select {
		case got := <-c.Frames():
			assert.Equal(t, frames[i][0].ClassID, got[0].ClassID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}
}

func TestClientDropsFramesWhilePaused(t *testing.T) {
	frames := [][]vision.Detection{
		{{ClassID: 1}},
		{{ClassID: 2}},
		{{ClassID: 3}},
	}
	ts := newFrameServer(t, frames)
	defer ts.Close()

	c := NewClient(wsURL(ts), zerolog.Nop())
	c.Pause()
	require.NoError(t, c.Connect())
	defer c.Disconnect()

	select {
	case got := <-c.Frames():
		t.Fatalf("expected no frames while paused, got %v", got)
	case <-time.After(200 * time.Millisecond):
	}

	c.Resume()
}

func TestClientIsConnected(t *testing.T) {
	ts := newFrameServer(t, nil)
	defer ts.Close()

	c := NewClient(wsURL(ts), zerolog.Nop())
	assert.False(t, c.IsConnected())
	require.NoError(t, c.Connect())
	assert.True(t, c.IsConnected())
	require.NoError(t, c.Disconnect())
}

func TestIntakeClientProcessesHandSummary(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		raw, _ := json.Marshal(handSummaryMessage{
			PlayerID: "villain-1",
			Variant:  "plo6",
		})
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
	}))
	defer ts.Close()

	store := opponent.NewStore()
	ic := NewIntakeClient(wsURL(ts), store, zerolog.Nop())
	assert.NoError(t, ic.Run())
	assert.Equal(t, int64(1), store.Profile("villain-1", opponent.PLO6).HandsPlayed)
}
