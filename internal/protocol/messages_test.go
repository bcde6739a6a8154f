package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeInbound_Chat(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"type":"ChatMessage","payload":"hello table"}`))
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}
	chat, ok := ev.(ChatReceived)
	if !ok {
		t.Fatalf("DecodeInbound() = %T, want ChatReceived", ev)
	}
	if chat.Text != "hello table" {
		t.Errorf("chat text = %q, want %q", chat.Text, "hello table")
	}
}

func TestDecodeInbound_StateUpdate(t *testing.T) {
	raw := []byte(`{
		"type": "GameStateUpdate",
		"payload": {
			"players": [
				{"username":"alice","stack":990,"hand":[],"is_active":true,"current_bet":10},
				{"username":"bob","stack":980,"hand":[],"is_active":true,"current_bet":20}
			],
			"community_cards": ["AH","KD","2S"],
			"pot": 30,
			"current_turn_username": "alice",
			"status": "Flop",
			"current_bet": 20,
			"dealer_index": 1
		}
	}`)

	ev, err := DecodeInbound(raw)
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}
	upd, ok := ev.(StateUpdated)
	if !ok {
		t.Fatalf("DecodeInbound() = %T, want StateUpdated", ev)
	}

	snap := upd.Snapshot
	if len(snap.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(snap.Players))
	}
	if snap.Players[0].Username != "alice" || snap.Players[0].Stack != 990 {
		t.Errorf("player 0 = %+v", snap.Players[0])
	}
	if snap.CurrentTurnUsername == nil || *snap.CurrentTurnUsername != "alice" {
		t.Errorf("current_turn_username = %v, want alice", snap.CurrentTurnUsername)
	}
	if snap.Status != StatusFlop || snap.Pot != 30 || snap.DealerIndex != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.WinnerMessage != nil {
		t.Errorf("winner_message = %v, want nil", snap.WinnerMessage)
	}
}

func TestDecodeInbound_DealHand(t *testing.T) {
	ev, err := DecodeInbound([]byte(`{"type":"DealHand","payload":{"cards":["AS","AD"]}}`))
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}
	deal, ok := ev.(HandDealt)
	if !ok {
		t.Fatalf("DecodeInbound() = %T, want HandDealt", ev)
	}
	if len(deal.Cards) != 2 || deal.Cards[0] != "AS" || deal.Cards[1] != "AD" {
		t.Errorf("cards = %v, want [AS AD]", deal.Cards)
	}
}

func TestDecodeInbound_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"Plain text", "hello"},
		{"Empty", ""},
		{"JSON null", "null"},
		{"Missing type", `{"payload":"x"}`},
		{"Unknown type", `{"type":"Mystery","payload":{}}`},
		{"Missing payload", `{"type":"ChatMessage"}`},
		{"Wrong payload shape", `{"type":"GameStateUpdate","payload":"not a snapshot"}`},
		{"Deal payload wrong shape", `{"type":"DealHand","payload":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeInbound([]byte(tt.raw))
			if err == nil {
				t.Fatalf("DecodeInbound(%q) = %v, want error", tt.raw, ev)
			}
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("error = %v, want ErrMalformedFrame", err)
			}
		})
	}
}

func TestEncodeAction_Wire(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"Fold", Action{Kind: ActionFold}, `{"type":"PlayerAction","payload":{"action":"Fold"}}`},
		{"Call", Action{Kind: ActionCall}, `{"type":"PlayerAction","payload":{"action":"Call"}}`},
		{"StartGame", Action{Kind: ActionStartGame}, `{"type":"PlayerAction","payload":{"action":"StartGame"}}`},
		{"NextHand", Action{Kind: ActionNextHand}, `{"type":"PlayerAction","payload":{"action":"NextHand"}}`},
		{"Bet carries amount", Action{Kind: ActionBet, Amount: 40}, `{"type":"PlayerAction","payload":{"action":"Bet","amount":40}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeAction(tt.action)
			if err != nil {
				t.Fatalf("EncodeAction() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("EncodeAction() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestEncodeChat_RoundTrip(t *testing.T) {
	data, err := EncodeChat(`nice "hand", bob`)
	if err != nil {
		t.Fatalf("EncodeChat() error = %v", err)
	}

	ev, err := DecodeInbound(data)
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}
	chat, ok := ev.(ChatReceived)
	if !ok {
		t.Fatalf("DecodeInbound() = %T, want ChatReceived", ev)
	}
	if chat.Text != `nice "hand", bob` {
		t.Errorf("chat text = %q", chat.Text)
	}
}

func TestTableSnapshot_OptionalFields(t *testing.T) {
	// A Waiting-state snapshot has no turn and no winner message.
	raw := []byte(`{"players":[],"community_cards":[],"pot":0,"current_turn_username":null,"status":"Waiting","current_bet":0,"dealer_index":0}`)
	var snap TableSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.CurrentTurnUsername != nil {
		t.Errorf("current_turn_username = %v, want nil", snap.CurrentTurnUsername)
	}

	// winner_message is omitted on the wire when absent.
	out, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(out, &asMap); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if _, present := asMap["winner_message"]; present {
		t.Error("winner_message should be omitted when nil")
	}
}
