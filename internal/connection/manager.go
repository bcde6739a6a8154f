// Package connection owns the single WebSocket transport for one table
// session and its life cycle: open, retry, close, teardown.
//
// The manager is a state machine over Idle, Connecting, Open, Closed,
// Errored, and Terminated. All transitions happen on one internal loop that
// consumes tagged transport events in arrival order, so inbound frames are
// delivered FIFO within a connection's lifetime. Abnormal closes are retried
// with a fixed delay up to a cap; intentional closes (1000/1001) and
// teardown are final.
package connection

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Status is the externally visible connection state.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusOpen
	StatusClosed
	StatusErrored
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusErrored:
		return "errored"
	case StatusTerminated:
		return "terminated"
	}
	return "unknown"
}

// Default retry policy. Both values are observed behavior of the table
// server's reference client and are configurable, not invariants.
const (
	DefaultRetryDelay = 3 * time.Second
	DefaultMaxRetries = 5
)

// Time allowed to write a frame to the peer.
const writeWait = 10 * time.Second

var (
	// ErrNotConnected is returned by Send while the transport is not open.
	ErrNotConnected = errors.New("not connected")

	// ErrConnectionLost is surfaced once the retry budget is exhausted.
	// Recovery requires constructing a new session.
	ErrConnectionLost = errors.New("connection lost")

	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("connection manager already started")

	// ErrTerminated is returned by Start after Teardown. A torn-down
	// manager never dials again.
	ErrTerminated = errors.New("connection manager terminated")
)

// Config parameterizes a Manager.
type Config struct {
	// URL is the per-room WebSocket endpoint.
	URL string

	// RequestHeader is sent with the opening handshake.
	RequestHeader http.Header

	// Jar supplies the session cookie for the handshake.
	Jar http.CookieJar

	// RetryDelay is the fixed wait between reconnect attempts.
	// Defaults to DefaultRetryDelay.
	RetryDelay time.Duration

	// MaxRetries caps automatic reconnect attempts. Defaults to
	// DefaultMaxRetries.
	MaxRetries int

	// HandshakeTimeout bounds the opening handshake. Defaults to 10s.
	HandshakeTimeout time.Duration
}

// Change is a status transition notification for the view layer. It is a
// hint to re-read the manager; transitions may be coalesced.
type Change struct {
	Status  Status
	Attempt int
	Err     error
}

// Internal loop events. Each carries the connection it originated from so
// the loop can discard events from a superseded transport.
type event interface{}

type dialed struct {
	conn *websocket.Conn
	err  error
}

type frameRead struct {
	conn *websocket.Conn
	data []byte
}

type connClosed struct {
	conn *websocket.Conn
	code int
	err  error
}

// Manager drives one transport handle through its life cycle.
type Manager struct {
	cfg    Config
	dialer *websocket.Dialer

	mu      sync.Mutex
	status  Status
	attempt int
	lastErr error
	conn    *websocket.Conn
	started bool
	stopped bool

	events  chan event
	frames  chan []byte
	changes chan Change
	stop    chan struct{}
	done    chan struct{}

	stopOnce sync.Once
}

// NewManager builds a manager in the Idle state. Nothing is dialed until
// Start.
func NewManager(cfg Config) *Manager {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	return &Manager{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
			Jar:              cfg.Jar,
		},
		status:  StatusIdle,
		events:  make(chan event, 16),
		frames:  make(chan []byte, 256),
		changes: make(chan Change, 16),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start opens the transport and begins the event loop. It may be called
// once per manager; a session that navigates to a new room constructs a new
// manager.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrTerminated
	}
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	m.setStatus(StatusConnecting, nil)
	go m.run()
	return nil
}

// Frames delivers inbound frames in arrival order. The channel is closed
// once the manager reaches Terminated.
func (m *Manager) Frames() <-chan []byte { return m.frames }

// Changes notifies the view layer of status transitions. Notifications may
// be dropped under pressure; Status, Attempt, and Err always hold the
// current truth.
func (m *Manager) Changes() <-chan Change { return m.changes }

// Done is closed when the event loop has fully stopped.
func (m *Manager) Done() <-chan struct{} { return m.done }

// Status returns the current connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Attempt returns the current reconnect attempt count.
func (m *Manager) Attempt() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt
}

// Err returns the most recent transport error, if any.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Send writes one text frame. Frames are never queued: while the transport
// is not open the action is dropped with ErrNotConnected.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusOpen || m.conn == nil {
		return ErrNotConnected
	}
	m.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Teardown forces an intentional shutdown: the transport is closed with the
// normal close code and the attempt counter is saturated so a pending retry
// timer can never reopen a transport for a session that no longer exists.
// Safe to call from any goroutine, any number of times.
func (m *Manager) Teardown() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.stopped = true
		m.attempt = m.cfg.MaxRetries
		started := m.started
		m.mu.Unlock()
		close(m.stop)
		if !started {
			// Loop never ran; finalize here.
			m.setStatus(StatusTerminated, nil)
			close(m.frames)
			close(m.done)
		}
	})
}

// run is the single event loop. All state transitions happen here.
func (m *Manager) run() {
	defer close(m.done)

	m.dial()

	var retry <-chan time.Time
	for {
		select {
		case <-m.stop:
			m.terminate()
			return

		case <-retry:
			retry = nil
			if m.stopping() {
				m.terminate()
				return
			}
			m.setStatus(StatusConnecting, nil)
			m.dial()

		case ev := <-m.events:
			switch ev := ev.(type) {
			case dialed:
				if ev.err != nil {
					if m.stopping() {
						m.terminate()
						return
					}
					// Open failure is handled like an abnormal close.
					log.Printf("[CONN] dial %s failed: %v", m.cfg.URL, ev.err)
					m.setStatus(StatusErrored, ev.err)
					var terminated bool
					retry, terminated = m.scheduleRetry()
					if terminated {
						m.exhaust()
						return
					}
					continue
				}
				if m.stopping() {
					ev.conn.Close()
					m.terminate()
					return
				}
				m.mu.Lock()
				m.conn = ev.conn
				m.attempt = 0
				m.lastErr = nil
				m.mu.Unlock()
				m.setStatus(StatusOpen, nil)
				log.Printf("[CONN] open %s", m.cfg.URL)
				go m.readLoop(ev.conn)

			case frameRead:
				if !m.isCurrent(ev.conn) {
					continue
				}
				select {
				case m.frames <- ev.data:
				case <-m.stop:
					m.terminate()
					return
				}

			case connClosed:
				ev.conn.Close()
				if !m.isCurrent(ev.conn) {
					continue
				}
				m.mu.Lock()
				m.conn = nil
				m.mu.Unlock()

				if intentionalClose(ev.code) {
					log.Printf("[CONN] closed intentionally (code %d)", ev.code)
					m.setStatus(StatusClosed, nil)
					continue
				}

				// Transport errors precede closes on this transport:
				// surface Errored for display, then settle on the close.
				log.Printf("[CONN] closed abnormally (code %d): %v", ev.code, ev.err)
				m.setStatus(StatusErrored, ev.err)
				m.setStatus(StatusClosed, nil)
				var terminated bool
				retry, terminated = m.scheduleRetry()
				if terminated {
					m.exhaust()
					return
				}
			}
		}
	}
}

// dial opens the transport asynchronously and reports the result as a loop
// event.
func (m *Manager) dial() {
	go func() {
		conn, resp, err := m.dialer.Dial(m.cfg.URL, m.cfg.RequestHeader)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		select {
		case m.events <- dialed{conn: conn, err: err}:
		case <-m.done:
			if conn != nil {
				conn.Close()
			}
		}
	}()
}

// readLoop pumps frames from one connection into the event loop until the
// connection dies, then reports the close.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				code = ce.Code
			}
			select {
			case m.events <- connClosed{conn: conn, code: code, err: err}:
			case <-m.done:
			}
			return
		}
		select {
		case m.events <- frameRead{conn: conn, data: data}:
		case <-m.done:
			return
		}
	}
}

// scheduleRetry arms the fixed-delay reconnect timer, or reports that the
// retry budget is spent.
func (m *Manager) scheduleRetry() (<-chan time.Time, bool) {
	m.mu.Lock()
	if m.attempt >= m.cfg.MaxRetries {
		m.mu.Unlock()
		return nil, true
	}
	m.attempt++
	attempt := m.attempt
	m.mu.Unlock()
	log.Printf("[CONN] retry %d/%d in %s", attempt, m.cfg.MaxRetries, m.cfg.RetryDelay)
	return time.After(m.cfg.RetryDelay), false
}

// exhaust finalizes the manager after the retry budget is spent.
func (m *Manager) exhaust() {
	m.setStatus(StatusTerminated, ErrConnectionLost)
	close(m.frames)
}

// terminate finalizes the manager on teardown: intentional close, no retry.
func (m *Manager) terminate() {
	m.mu.Lock()
	m.attempt = m.cfg.MaxRetries
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, msg)
		conn.Close()
	}
	m.setStatus(StatusTerminated, nil)
	close(m.frames)
}

// stopping reports whether teardown has been requested.
func (m *Manager) stopping() bool {
	select {
	case <-m.stop:
		return true
	default:
		return false
	}
}

func (m *Manager) isCurrent(conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn == conn
}

func (m *Manager) setStatus(s Status, err error) {
	m.mu.Lock()
	m.status = s
	if err != nil {
		m.lastErr = err
	}
	ch := Change{Status: s, Attempt: m.attempt, Err: m.lastErr}
	m.mu.Unlock()

	select {
	case m.changes <- ch:
	default:
	}
}

// intentionalClose reports whether a close code signifies deliberate
// shutdown. Everything else triggers the retry policy.
func intentionalClose(code int) bool {
	return code == websocket.CloseNormalClosure || code == websocket.CloseGoingAway
}
