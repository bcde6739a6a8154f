package protocol

import (
	"encoding/json"
	"fmt"
)

// ActionKind identifies a player action. The server matches these strings
// case-sensitively.
type ActionKind string

const (
	ActionStartGame ActionKind = "StartGame"
	ActionNextHand  ActionKind = "NextHand"
	ActionFold      ActionKind = "Fold"
	ActionCall      ActionKind = "Call"
	ActionBet       ActionKind = "Bet"
)

// Action is a player-initiated table action. Amount is meaningful only for
// ActionBet and is omitted from the wire form otherwise.
type Action struct {
	Kind   ActionKind
	Amount int
}

// MarshalJSON produces the internally tagged payload form, e.g.
// {"action":"Bet","amount":40} or {"action":"Fold"}.
func (a Action) MarshalJSON() ([]byte, error) {
	if a.Kind == ActionBet {
		return json.Marshal(struct {
			Action ActionKind `json:"action"`
			Amount int        `json:"amount"`
		}{a.Kind, a.Amount})
	}
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
	}{a.Kind})
}

// EncodeAction wraps an action in a PlayerAction frame ready for the wire.
func EncodeAction(a Action) ([]byte, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	return json.Marshal(Envelope{Type: TypePlayerAction, Payload: payload})
}

// EncodeChat wraps a chat line in a ChatMessage frame.
func EncodeChat(text string) ([]byte, error) {
	payload, err := json.Marshal(text)
	if err != nil {
		return nil, fmt.Errorf("encode chat: %w", err)
	}
	return json.Marshal(Envelope{Type: TypeChatMessage, Payload: payload})
}
