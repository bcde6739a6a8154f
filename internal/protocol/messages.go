// Package protocol defines the wire format shared with the table server.
//
// Every frame on the real-time channel is a UTF-8 JSON object with a "type"
// discriminator and a "payload". Player actions are tagged a second time on
// an "action" field inside the payload. Snapshot fields use the server's
// snake_case keys.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame type discriminators.
const (
	TypeChatMessage     = "ChatMessage"
	TypeGameStateUpdate = "GameStateUpdate"
	TypeDealHand        = "DealHand"
	TypePlayerAction    = "PlayerAction"
)

// Table status values reported by the server.
const (
	StatusWaiting  = "Waiting"
	StatusPreFlop  = "Pre-flop"
	StatusFlop     = "Flop"
	StatusTurn     = "Turn"
	StatusRiver    = "River"
	StatusShowdown = "Showdown"
)

// ErrMalformedFrame is returned when an inbound frame cannot be decoded as a
// known message. Callers are expected to degrade, not fail: the raw bytes are
// still meaningful as plain chat text.
var ErrMalformedFrame = errors.New("malformed frame")

// Envelope is the outer shape of every frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PlayerView is one seat as reported by the server. Hand is empty unless the
// server chose to reveal it.
type PlayerView struct {
	Username   string   `json:"username"`
	Stack      int      `json:"stack"`
	Hand       []string `json:"hand"`
	IsActive   bool     `json:"is_active"`
	CurrentBet int      `json:"current_bet"`
}

// TableSnapshot is a complete authoritative description of the table at one
// instant. Each snapshot supersedes all prior ones; clients replace, never
// merge.
type TableSnapshot struct {
	Players             []PlayerView `json:"players"`
	CommunityCards      []string     `json:"community_cards"`
	Pot                 int          `json:"pot"`
	CurrentTurnUsername *string      `json:"current_turn_username"`
	Status              string       `json:"status"`
	CurrentBet          int          `json:"current_bet"`
	DealerIndex         int          `json:"dealer_index"`
	WinnerMessage       *string      `json:"winner_message,omitempty"`
}

// DealHandPayload carries a player's private hole cards.
type DealHandPayload struct {
	Cards []string `json:"cards"`
}

// InboundEvent is a decoded server-to-client frame.
type InboundEvent interface {
	inboundEvent()
}

// ChatReceived is a chat line from another player or the server.
type ChatReceived struct {
	Text string
}

// StateUpdated carries a full table snapshot.
type StateUpdated struct {
	Snapshot TableSnapshot
}

// HandDealt carries the local player's new private hand.
type HandDealt struct {
	Cards []string
}

func (ChatReceived) inboundEvent() {}
func (StateUpdated) inboundEvent() {}
func (HandDealt) inboundEvent()    {}

// DecodeInbound parses a raw frame into a typed event. Any failure, whether
// invalid JSON, a missing or unknown type, or a payload of the wrong shape,
// is reported as ErrMalformedFrame.
func DecodeInbound(data []byte) (InboundEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch env.Type {
	case TypeChatMessage:
		var text string
		if err := json.Unmarshal(env.Payload, &text); err != nil {
			return nil, fmt.Errorf("%w: chat payload: %v", ErrMalformedFrame, err)
		}
		return ChatReceived{Text: text}, nil

	case TypeGameStateUpdate:
		var snap TableSnapshot
		if err := json.Unmarshal(env.Payload, &snap); err != nil {
			return nil, fmt.Errorf("%w: snapshot payload: %v", ErrMalformedFrame, err)
		}
		return StateUpdated{Snapshot: snap}, nil

	case TypeDealHand:
		var deal DealHandPayload
		if err := json.Unmarshal(env.Payload, &deal); err != nil {
			return nil, fmt.Errorf("%w: deal payload: %v", ErrMalformedFrame, err)
		}
		return HandDealt{Cards: deal.Cards}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type discriminator", ErrMalformedFrame)

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, env.Type)
	}
}
