package presence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

// fakeGateway plays the presence gateway over a real websocket
type fakeGateway struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	heartbeatMs int64

	accepted atomic.Int32
	open     atomic.Int32
	maxOpen  atomic.Int32

	received chan frame
	conns    chan *websocket.Conn
}

type frame struct {
	Op   Opcode              `json:"op"`
	Data jsoniter.RawMessage `json:"d"`
}

func newFakeGateway(t *testing.T, heartbeatMs int64) *fakeGateway {
	t.Helper()

	g := &fakeGateway{
		heartbeatMs: heartbeatMs,
		received:    make(chan frame, 1024),
		conns:       make(chan *websocket.Conn, 16),
	}

	g.srv = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.srv.Close)

	return g
}

func (g *fakeGateway) URL() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http")
}

func (g *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	g.accepted.Add(1)

	n := g.open.Add(1)
	defer g.open.Add(-1)

	for {
		m := g.maxOpen.Load()
		if n <= m || g.maxOpen.CompareAndSwap(m, n) {
			break
		}
	}

	if g.heartbeatMs > 0 {
		_ = ws.WriteJSON(map[string]any{
			"op": 1,
			"d":  map[string]any{"heartbeat_interval": g.heartbeatMs},
		})
	}

	g.conns <- ws

	for {
		_, b, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if json.Unmarshal(b, &f) == nil {
			select {
			case g.received <- f:
			default:
			}
		}
	}
}

func (g *fakeGateway) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()

	select {
	case ws := <-g.conns:
		return ws
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a gateway connection")
	}

	return nil
}

func (g *fakeGateway) nextFrame(t *testing.T, op Opcode) frame {
	t.Helper()

	deadline := time.After(5 * time.Second)

	for {
		select {
		case f := <-g.received:
			if f.Op == op {
				return f
			}
		case <-deadline:
			t.Fatalf("timed out waiting for op %s", op)
		}
	}
}

func presenceJSON(id string, status Status, activities ...string) map[string]any {
	acts := make([]map[string]any, len(activities))
	for i, name := range activities {
		acts[i] = map[string]any{"id": name, "name": name, "type": 0}
	}

	return map[string]any{
		"discord_user": map[string]any{
			"id":       id,
			"username": "user" + id,
			"avatar":   "hash" + id,
		},
		"discord_status":       string(status),
		"listening_to_spotify": false,
		"activities":           acts,
	}
}

func sendEvent(t *testing.T, ws *websocket.Conn, typ EventType, d any) {
	t.Helper()

	if err := ws.WriteJSON(map[string]any{"op": 0, "t": string(typ), "d": d}); err != nil {
		t.Fatalf("failed to write event: %v", err)
	}
}

// countingMetrics records the calls the client makes
type countingMetrics struct {
	noopMetrics

	connected  atomic.Int32
	reconnects atomic.Int32
	malformed  atomic.Int32
	updates    atomic.Int32
}

func (m *countingMetrics) GatewayConnected() { m.connected.Add(1) }
func (m *countingMetrics) GatewayReconnectScheduled() { m.reconnects.Add(1) }
func (m *countingMetrics) GatewayMalformedMessage() { m.malformed.Add(1) }
func (m *countingMetrics) PresenceUpdated() { m.updates.Add(1) }

// recordingDialer wraps every connection so writes can be observed
type recordingDialer struct {
	inner Dialer

	mx    sync.Mutex
	conns []*recordingConn
	dials atomic.Int32
	err   error
}

func (d *recordingDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.dials.Add(1)

	if d.err != nil {
		return nil, d.err
	}

	conn, err := d.inner.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	rc := &recordingConn{Conn: conn}

	d.mx.Lock()
	d.conns = append(d.conns, rc)
	d.mx.Unlock()

	return rc, nil
}

func (d *recordingDialer) textWrites() int {
	d.mx.Lock()
	defer d.mx.Unlock()

	n := 0
	for _, c := range d.conns {
		n += int(c.text.Load())
	}

	return n
}

type recordingConn struct {
	Conn

	text atomic.Int32
}

func (c *recordingConn) WriteMessage(messageType int, data []byte) error {
	if messageType == websocket.TextMessage {
		c.text.Add(1)
	}

	return c.Conn.WriteMessage(messageType, data)
}
