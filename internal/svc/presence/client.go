package presence

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/seventv/common/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultGatewayURL     = "wss://api.lanyard.rest/socket"
	DefaultRestURL        = "https://api.lanyard.rest/v1"
	DefaultReconnectDelay = 5 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	DefaultFetchTimeout   = 10 * time.Second
)

var ErrClientClosed = errors.New("presence client is closed")

type ConnectionState uint8

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}

	return "disconnected"
}

type Instance interface {
	// Subscribe starts (or retargets) the gateway session for the given user ids
	Subscribe(ids []string)
	// Disconnect ends the session. No heartbeat or reconnect happens once it returns
	Disconnect()
	Close() error

	State() ConnectionState
	TrackedIDs() []string
	Get(id string) (Record, bool)
	Snapshot() map[string]Record

	// Listen returns a channel of notifications that is closed when ctx ends or the client closes
	Listen(ctx context.Context) <-chan Notification

	FetchPresence(ctx context.Context, id string) (*Record, bool)
	FetchAll(ctx context.Context, ids []string) map[string]Record
}

type Options struct {
	GatewayURL     string
	RestURL        string
	ReconnectDelay time.Duration
	WriteTimeout   time.Duration
	FetchTimeout   time.Duration
	ListenerBuffer int

	Dialer     Dialer
	HTTPClient *http.Client
	Metrics    Metrics
}

// Client keeps a best-effort live map of presences for a fixed set of user ids.
//
// Every transport connection is tagged with a generation; timers, reads and
// dial results belonging to an older generation are discarded.
type Client struct {
	opt       Options
	log       *zap.SugaredLogger
	store     *Store
	listeners *listeners
	metrics   Metrics

	mx         sync.Mutex
	ids        []string
	active     bool
	closed     bool
	state      ConnectionState
	gen        uint64
	conn       Conn
	cancelDial context.CancelFunc
	hbStop     chan struct{}
	reconnect  *time.Timer

	wg sync.WaitGroup
}

func New(opt Options) *Client {
	if opt.GatewayURL == "" {
		opt.GatewayURL = DefaultGatewayURL
	}
	if opt.RestURL == "" {
		opt.RestURL = DefaultRestURL
	}
	if opt.ReconnectDelay <= 0 {
		opt.ReconnectDelay = DefaultReconnectDelay
	}
	if opt.WriteTimeout <= 0 {
		opt.WriteTimeout = DefaultWriteTimeout
	}
	if opt.FetchTimeout <= 0 {
		opt.FetchTimeout = DefaultFetchTimeout
	}
	if opt.Dialer == nil {
		opt.Dialer = WebsocketDialer{}
	}
	if opt.HTTPClient == nil {
		opt.HTTPClient = http.DefaultClient
	}
	if opt.Metrics == nil {
		opt.Metrics = noopMetrics{}
	}

	return &Client{
		opt:       opt,
		log:       zap.S().Named("presence"),
		store:     NewStore(),
		listeners: newListeners(opt.ListenerBuffer),
		metrics:   opt.Metrics,
	}
}

func (c *Client) Subscribe(ids []string) {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.closed {
		return
	}

	c.ids = append([]string{}, ids...)
	c.active = true

	switch c.state {
	case StateDisconnected:
		if c.reconnect != nil {
			c.reconnect.Stop()
			c.reconnect = nil
		}

		c.connectLocked()
	case StateConnecting:
		// the new ids go out once the transport opens
	case StateConnected:
		c.sendSubscribeLocked()
	}
}

func (c *Client) Disconnect() {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.active = false
	c.teardownLocked()
}

func (c *Client) Close() error {
	c.mx.Lock()
	if c.closed {
		c.mx.Unlock()
		return ErrClientClosed
	}

	c.closed = true
	c.active = false
	c.teardownLocked()
	c.mx.Unlock()

	c.wg.Wait()
	c.listeners.close()

	return nil
}

// teardownLocked cancels every timer, invalidates in-flight work and closes the transport
func (c *Client) teardownLocked() {
	c.gen++

	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}

	c.stopHeartbeatLocked()

	if c.cancelDial != nil {
		c.cancelDial()
		c.cancelDial = nil
	}

	if c.conn != nil {
		if err := multierr.Combine(
			c.conn.SetWriteDeadline(time.Now().Add(time.Second)),
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")),
			c.conn.Close(),
		); err != nil {
			c.log.Debugw("gateway session did not close cleanly",
				"error", err,
			)
		}

		c.conn = nil
	}

	if c.state != StateDisconnected {
		c.setStateLocked(StateDisconnected)
		c.metrics.GatewayDisconnected()
		c.listeners.emit(Notification{Kind: NotifyDisconnect})
	}
}

func (c *Client) State() ConnectionState {
	c.mx.Lock()
	defer c.mx.Unlock()

	return c.state
}

func (c *Client) TrackedIDs() []string {
	c.mx.Lock()
	defer c.mx.Unlock()

	return append([]string{}, c.ids...)
}

func (c *Client) tracked(id string) bool {
	c.mx.Lock()
	defer c.mx.Unlock()

	return utils.Contains(c.ids, id)
}

func (c *Client) Get(id string) (Record, bool) {
	return c.store.Get(id)
}

func (c *Client) Snapshot() map[string]Record {
	return c.store.Snapshot()
}

func (c *Client) Listen(ctx context.Context) <-chan Notification {
	return c.listeners.listen(ctx)
}

func (c *Client) setStateLocked(s ConnectionState) {
	c.state = s
	c.metrics.GatewayStateChanged(s.String())
}

func (c *Client) connectLocked() {
	c.gen++
	gen := c.gen

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelDial = cancel
	c.setStateLocked(StateConnecting)

	c.wg.Add(1)
	go c.run(ctx, gen)
}

func (c *Client) run(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	conn, err := c.opt.Dialer.Dial(ctx, c.opt.GatewayURL)

	c.mx.Lock()
	if gen != c.gen {
		c.mx.Unlock()

		if conn != nil {
			_ = conn.Close()
		}

		return
	}

	c.cancelDial = nil

	if err != nil {
		c.log.Warnw("failed to connect to the presence gateway",
			"url", c.opt.GatewayURL,
			"error", err,
		)
		c.handleCloseLocked()
		c.mx.Unlock()

		return
	}

	c.conn = conn
	c.setStateLocked(StateConnected)
	c.metrics.GatewayConnected()
	c.listeners.emit(Notification{Kind: NotifyConnect})
	c.sendSubscribeLocked()
	c.mx.Unlock()

	c.log.Infow("connected to the presence gateway",
		"url", c.opt.GatewayURL,
	)

	c.read(conn, gen)
}

func (c *Client) read(conn Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mx.Lock()
			if gen == c.gen {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.log.Warnw("presence gateway connection lost",
						"error", err,
					)
				}

				c.handleCloseLocked()
			}
			c.mx.Unlock()

			return
		}

		msg, err := Decode(data)
		if err != nil {
			c.metrics.GatewayMalformedMessage()
			c.log.Errorw("failed to parse presence gateway message",
				"error", err,
			)

			continue
		}

		c.mx.Lock()
		if gen != c.gen {
			c.mx.Unlock()
			return
		}

		c.dispatchLocked(msg, gen)
		c.mx.Unlock()
	}
}

func (c *Client) dispatchLocked(msg Inbound, gen uint64) {
	switch m := msg.(type) {
	case Hello:
		c.metrics.GatewayMessage(OpcodeHello.String())
		c.startHeartbeatLocked(m.HeartbeatInterval, gen)
	case Event:
		c.metrics.GatewayMessage(OpcodeEvent.String())

		switch m.Type {
		case EventTypeInitState, EventTypePresenceUpdate:
			for _, rec := range m.Records {
				c.store.Put(rec)
				c.metrics.PresenceUpdated()
				c.listeners.emit(Notification{
					Kind:   NotifyPresenceUpdate,
					UserID: rec.UserID(),
					Record: rec.Clone(),
				})
			}
		default:
			c.log.Debugw("ignoring presence gateway event",
				"type", m.Type,
			)
		}
	case Unknown:
		c.metrics.GatewayMessage(m.Op.String())
	}
}

// handleCloseLocked moves the session to Disconnected after a transport failure
func (c *Client) handleCloseLocked() {
	c.gen++
	c.stopHeartbeatLocked()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	c.setStateLocked(StateDisconnected)
	c.metrics.GatewayDisconnected()
	c.listeners.emit(Notification{Kind: NotifyDisconnect})

	if c.active && !c.closed {
		c.scheduleReconnectLocked()
	}
}

func (c *Client) scheduleReconnectLocked() {
	if c.reconnect != nil {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(c.opt.ReconnectDelay, func() {
		c.mx.Lock()
		defer c.mx.Unlock()

		if c.reconnect != t {
			return
		}

		c.reconnect = nil

		if !c.active || c.closed || c.state != StateDisconnected {
			return
		}

		c.connectLocked()
	})

	c.reconnect = t
	c.metrics.GatewayReconnectScheduled()

	c.log.Infow("scheduled presence gateway reconnect",
		"delay", c.opt.ReconnectDelay.String(),
	)
}

func (c *Client) startHeartbeatLocked(interval time.Duration, gen uint64) {
	c.stopHeartbeatLocked()

	if interval <= 0 {
		return
	}

	stop := make(chan struct{})
	c.hbStop = stop

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-stop:
				return
			case <-t.C:
				c.mx.Lock()
				if gen != c.gen || c.hbStop != stop || c.conn == nil {
					c.mx.Unlock()
					return
				}

				b, _ := encodeHeartbeat()
				err := c.writeLocked(b)
				c.mx.Unlock()

				if err != nil {
					c.log.Warnw("failed to send presence gateway heartbeat",
						"error", err,
					)
				}
			}
		}
	}()
}

func (c *Client) stopHeartbeatLocked() {
	if c.hbStop != nil {
		close(c.hbStop)
		c.hbStop = nil
	}
}

func (c *Client) sendSubscribeLocked() {
	if c.conn == nil {
		return
	}

	b, err := encodeInitialize(c.ids)
	if err != nil {
		c.log.Errorw("failed to encode presence subscription",
			"error", err,
		)

		return
	}

	if err := c.writeLocked(b); err != nil {
		c.log.Warnw("failed to send presence subscription",
			"error", err,
		)
	}
}

func (c *Client) writeLocked(b []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opt.WriteTimeout)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.TextMessage, b)
}
