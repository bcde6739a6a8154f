package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid simple", "alice", false},
		{"Valid with numbers", "player123", false},
		{"Valid with underscore", "cool_player", false},
		{"Valid with hyphen", "cool-player", false},
		{"Empty", "", true},
		{"Too short", "ab", true},
		{"Too long", strings.Repeat("a", 21), true},
		{"Spaces", "cool player", true},
		{"Special characters", "player@home", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Sup3rSecret", false},
		{"Empty", "", true},
		{"Too short", "Ab1", true},
		{"No uppercase", "sup3rsecret", true},
		{"No lowercase", "SUP3RSECRET", true},
		{"No number", "SuperSecret", true},
		{"Too long", "Ab1" + strings.Repeat("x", 128), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChatMessage(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{"Plain", "nice hand", "nice hand", nil},
		{"Trims whitespace", "  gg  ", "gg", nil},
		{"Strips null bytes", "g\x00g", "gg", nil},
		{"Empty", "", "", ErrEmptyMessage},
		{"Whitespace only", "   ", "", ErrEmptyMessage},
		{"Too long", strings.Repeat("a", 501), "", ErrStringTooLong},
		{"At the limit", strings.Repeat("a", 500), strings.Repeat("a", 500), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateChatMessage(tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ValidateChatMessage(%q) error = %v, want %v", tt.text, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateChatMessage(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ValidateChatMessage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	tests := []struct {
		name     string
		roomName string
		wantErr  bool
	}{
		{"Valid", "Friday Night", false},
		{"Empty", "", true},
		{"Whitespace only", "   ", true},
		{"Too long", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoomName(tt.roomName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRoomName(%q) error = %v, wantErr %v", tt.roomName, err, tt.wantErr)
			}
		})
	}
}
