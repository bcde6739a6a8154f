// Package session owns one player's view of one table.
//
// A Session runs a single event loop: inbound frames from the connection
// manager, status changes, and user commands are all processed on one
// goroutine in arrival order, so no handler ever interleaves another.
// Inbound snapshots replace the held table state wholesale; the private hand
// arrives on its own event and survives snapshot replacement until the next
// deal. After every committed mutation the session publishes an immutable
// view for the renderer to pull.
package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"poker-platform/client/internal/api"
	"poker-platform/client/internal/connection"
	"poker-platform/client/internal/game"
	"poker-platform/client/internal/protocol"
)

// ErrSessionClosed is returned by commands issued after the loop stopped.
var ErrSessionClosed = errors.New("session closed")

// Transport is the slice of the connection manager the session needs.
// *connection.Manager satisfies it.
type Transport interface {
	Frames() <-chan []byte
	Changes() <-chan connection.Change
	Status() connection.Status
	Attempt() int
	Err() error
	Send(data []byte) error
	Teardown()
}

// ChatEntry is one line of the append-only chat log.
type ChatEntry struct {
	ID         string
	Text       string
	ReceivedAt time.Time
}

// View is an immutable copy of the session state, safe to read from any
// goroutine. The renderer derives everything it shows from here.
type View struct {
	Room        api.RoomSummary
	Projector   game.Projector
	HasSnapshot bool
	Hand        []string
	Chat        []ChatEntry // oldest first
	Connection  connection.Status
	Attempt     int
	Fatal       error // set once the connection is irrecoverably lost
}

// Config assembles a session.
type Config struct {
	Username string
	Room     api.RoomSummary
	Conn     Transport
}

type command struct {
	chat   string
	action *protocol.Action
	reply  chan error
}

// Session glues the connection, the router, the projector, and the action
// gateway together for one table.
type Session struct {
	id       string
	username string
	room     api.RoomSummary
	tr       Transport

	// Loop-owned state. Only the Run goroutine touches these.
	snapshot    protocol.TableSnapshot
	hasSnapshot bool
	hand        []string
	chat        []ChatEntry
	connStatus  connection.Status
	connAttempt int
	fatal       error

	commands chan command
	done     chan struct{}

	views *viewBox
}

// New builds a session for an admitted identity. Nothing runs until Run.
func New(cfg Config) *Session {
	s := &Session{
		id:         uuid.NewString(),
		username:   cfg.Username,
		room:       cfg.Room,
		tr:         cfg.Conn,
		connStatus: cfg.Conn.Status(),
		commands:   make(chan command),
		done:       make(chan struct{}),
		views:      newViewBox(),
	}
	s.publish()
	return s
}

// ID identifies this session instance in logs.
func (s *Session) ID() string { return s.id }

// CurrentView returns the most recently published view.
func (s *Session) CurrentView() View { return s.views.current() }

// Updates signals that a new view is available. Coalescing is fine: the
// renderer always pulls the latest view.
func (s *Session) Updates() <-chan struct{} { return s.views.updates() }

// Done is closed when the loop has exited and all session state has been
// discarded.
func (s *Session) Done() <-chan struct{} { return s.done }

// SendChat transmits a chat line, or drops it with an error while the
// connection is not open.
func (s *Session) SendChat(text string) error {
	return s.submit(command{chat: text})
}

// SendAction runs the gateway's pre-flight validation and transmits the
// action. Validation failures and not-connected drops are reported to the
// caller; authority-side rejections are not observable here.
func (s *Session) SendAction(a protocol.Action) error {
	return s.submit(command{action: &a})
}

func (s *Session) submit(cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case s.commands <- cmd:
		return <-cmd.reply
	case <-s.done:
		return ErrSessionClosed
	}
}

// Run drives the event loop until the context is cancelled or the
// connection reaches a final state. On exit the transport is torn down and
// all buffered state is discarded, never flushed.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer s.tr.Teardown()

	log.Printf("[SESSION %s] started for %s in room %s", s.id, s.username, s.room.ID)

	frames := s.tr.Frames()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[SESSION %s] teardown", s.id)
			return

		case data, ok := <-frames:
			if !ok {
				// Connection reached a final state. Surface it and keep
				// serving the view until the caller tears down.
				s.connStatus = s.tr.Status()
				s.connAttempt = s.tr.Attempt()
				if errors.Is(s.tr.Err(), connection.ErrConnectionLost) {
					s.fatal = connection.ErrConnectionLost
					log.Printf("[SESSION %s] connection lost, manual reload required", s.id)
				}
				s.publish()
				frames = nil
				continue
			}
			s.route(data)
			s.publish()

		case ch := <-s.tr.Changes():
			s.connStatus = ch.Status
			s.connAttempt = ch.Attempt
			if ch.Status == connection.StatusTerminated && errors.Is(ch.Err, connection.ErrConnectionLost) {
				s.fatal = connection.ErrConnectionLost
			}
			s.publish()

		case cmd := <-s.commands:
			cmd.reply <- s.handleCommand(cmd)
		}
	}
}

// route decodes one inbound frame and dispatches it. A frame that cannot be
// decoded is never discarded: it degrades to plain chat text.
func (s *Session) route(data []byte) {
	ev, err := protocol.DecodeInbound(data)
	if err != nil {
		s.appendChat(string(data))
		return
	}

	switch ev := ev.(type) {
	case protocol.ChatReceived:
		s.appendChat(ev.Text)

	case protocol.StateUpdated:
		// Wholesale replacement; nothing from the prior snapshot survives.
		s.snapshot = ev.Snapshot
		s.hasSnapshot = true

	case protocol.HandDealt:
		// The private hand lives outside the snapshot so it survives
		// snapshot replacement until the next deal.
		s.hand = ev.Cards
	}
}

func (s *Session) appendChat(text string) {
	s.chat = append(s.chat, ChatEntry{
		ID:         uuid.NewString(),
		Text:       text,
		ReceivedAt: time.Now(),
	})
}

// handleCommand is the outbound half: gateway validation, then
// transmission. Actions are never queued for later delivery.
func (s *Session) handleCommand(cmd command) error {
	var data []byte
	var err error

	switch {
	case cmd.action != nil:
		if err := s.validateAction(*cmd.action); err != nil {
			return err
		}
		data, err = protocol.EncodeAction(*cmd.action)
	default:
		data, err = protocol.EncodeChat(cmd.chat)
	}
	if err != nil {
		return err
	}

	// Change notifications may be coalesced, so the cached status can lag.
	// The transport itself always knows whether it is open.
	if s.tr.Status() != connection.StatusOpen {
		return connection.ErrNotConnected
	}
	return s.tr.Send(data)
}

// publish commits the current state as an immutable view and pokes the
// renderer.
func (s *Session) publish() {
	v := View{
		Room: s.room,
		Projector: game.Projector{
			Username: s.username,
			Snapshot: s.snapshot,
		},
		HasSnapshot: s.hasSnapshot,
		Hand:        append([]string(nil), s.hand...),
		Chat:        append([]ChatEntry(nil), s.chat...),
		Connection:  s.connStatus,
		Attempt:     s.connAttempt,
		Fatal:       s.fatal,
	}
	s.views.publish(v)
}
