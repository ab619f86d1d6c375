package evonic

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/evonic/internal/logging"
)

const (
	// DefaultHTTPPort serves the bootstrap document
	DefaultHTTPPort = 80

	// DefaultWebSocketPort serves the event/control channel
	DefaultWebSocketPort = 81

	// DefaultRequestTimeout bounds every HTTP request
	DefaultRequestTimeout = 8 * time.Second

	// BootstrapPath is the full state document fetched on connect
	BootstrapPath = "/modules.json"

	// Time allowed to write a message to the device
	writeWait = 10 * time.Second
)

// State is the lifecycle state of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
)

// String returns a human-readable name for the state
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Client manages the HTTP bootstrap and WebSocket channel of one fire.
//
// Listen is expected to run in its own goroutine while commands are issued from
// others. WebSocket writes are serialized internally and snapshot merges are
// serialized with each other; the callback passed to Listen runs outside that lock.
type Client struct {
	host           string
	httpBaseURL    string
	wsURL          string
	requestTimeout time.Duration

	httpClient     *http.Client
	ownsHTTPClient bool
	dialer         *websocket.Dialer
	logger         *zap.Logger

	// mu protects state and conn
	mu    sync.Mutex
	state State
	conn  *websocket.Conn

	// writeMu serializes WebSocket writers
	writeMu sync.Mutex

	// snapMu serializes merges into snapshot
	snapMu   sync.Mutex
	snapshot *Snapshot
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient borrows an existing HTTP session. The Client never closes it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.ownsHTTPClient = false
	}
}

// WithDialer borrows an existing WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestTimeout bounds HTTP requests. Non-positive values keep the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithHTTPBaseURL overrides http://<host>:80 (e.g. to target a test server).
func WithHTTPBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.httpBaseURL = baseURL
	}
}

// WithWebSocketURL overrides ws://<host>:81/.
func WithWebSocketURL(wsURL string) Option {
	return func(c *Client) {
		c.wsURL = wsURL
	}
}

// NewClient creates a client for the fire at host (an IP address or hostname).
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host:           host,
		httpBaseURL:    (&url.URL{Scheme: "http", Host: net.JoinHostPort(host, strconv.Itoa(DefaultHTTPPort))}).String(),
		wsURL:          (&url.URL{Scheme: "ws", Host: net.JoinHostPort(host, strconv.Itoa(DefaultWebSocketPort)), Path: "/"}).String(),
		requestTimeout: DefaultRequestTimeout,
		logger:         zap.NewNop(),
		state:          StateDisconnected,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
		c.ownsHTTPClient = true
	}
	if c.dialer == nil {
		d := *websocket.DefaultDialer
		c.dialer = &d
	}
	c.logger = c.logger.With(logging.Host(host))

	return c
}

// Host returns the device address this client talks to.
func (c *Client) Host() string {
	return c.host
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the WebSocket is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.state == StateConnected
}

// Snapshot returns the device snapshot, or nil before the first payload.
// The pointer is stable for the lifetime of the Client.
func (c *Client) Snapshot() *Snapshot {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot
}

// SnapshotCopy returns a deep copy of the snapshot taken while no update is
// being merged, or nil before the first payload. Use it from goroutines other
// than the one running Listen.
func (c *Client) SnapshotCopy() *Snapshot {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snapshot.Clone()
}

// Connect bootstraps the snapshot over HTTP and opens the WebSocket.
// It is a no-op when already connected and never retries.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateConnected:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		c.mu.Unlock()
		return NewPreconditionError("connect already in progress")
	case StateClosed:
		c.mu.Unlock()
		return NewPreconditionError("client is closed")
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := c.open(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if c.state == StateConnecting {
			c.state = StateDisconnected
		}
		c.logger.Warn("Connect failed", zap.Error(err))
		return err
	}
	if c.state == StateClosed {
		_ = conn.Close()
		return NewPreconditionError("client closed while connecting")
	}

	c.conn = conn
	c.state = StateConnected
	c.logger.Info("Connected to fire", zap.String("websocket", c.wsURL))
	return nil
}

// open performs the bootstrap request and WebSocket handshake.
func (c *Client) open(ctx context.Context) (*websocket.Conn, error) {
	if _, err := c.Request(ctx, BootstrapPath, http.MethodGet, nil); err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		// Handshake failures, timeouts included, are connection errors.
		e := NewConnectionError(c.host, "error occurred while opening the WebSocket", err)
		if resp != nil {
			e.StatusCode = resp.StatusCode
		}
		return nil, e
	}
	return conn, nil
}

// Disconnect closes the WebSocket and moves the client to StateClosed.
// It is a no-op when not connected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil || c.state != StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.conn = nil
	c.state = StateClosed
	c.mu.Unlock()

	// WriteControl may run concurrently with other writers
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))

	if err := conn.Close(); err != nil {
		return NewConnectionError(c.host, "failed to close WebSocket", err)
	}
	c.logger.Info("Disconnected from fire")
	return nil
}

// Close disconnects and, when the client created its own HTTP session,
// releases it. Close is idempotent.
func (c *Client) Close() error {
	err := c.Disconnect()

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()

	if c.ownsHTTPClient {
		c.httpClient.CloseIdleConnections()
	}
	return err
}

// dropConn forgets a socket that failed underneath the client.
func (c *Client) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	_ = conn.Close()
	c.conn = nil
	if c.state == StateConnected {
		c.state = StateDisconnected
	}
}

// merge applies u to the snapshot, creating it on first use.
func (c *Client) merge(u *Update) *Snapshot {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	c.snapshot = ApplyUpdate(c.snapshot, u)
	return c.snapshot
}

// mergeBootstrap merges a full state document. The device's own
// available_effects list wins over the catalog derived from its model code.
func (c *Client) mergeBootstrap(u *Update) {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	c.snapshot = ApplyUpdate(c.snapshot, u)
	if !u.Effects.Set || u.Effects.Value == nil {
		c.snapshot.Effects = EffectsFor(c.snapshot.Info.ConfigCode())
	}
}
