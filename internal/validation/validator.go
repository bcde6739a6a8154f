// Package validation pre-checks user input before it is sent to the server.
// These checks are advisory: the server enforces its own rules and may
// reject input the client considered fine.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrInvalidUsername = errors.New("invalid username format")
	ErrWeakPassword    = errors.New("password too weak")
	ErrStringTooLong   = errors.New("string exceeds maximum length")
	ErrStringTooShort  = errors.New("string below minimum length")
	ErrEmptyMessage    = errors.New("message is empty")
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// Chat lines are bounded so a single paste cannot flood the table.
const maxChatLength = 500

// ValidateUsername validates username format before registration or login.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("%w: username must be >= 3 characters", ErrStringTooShort)
	}
	if len(username) > 20 {
		return fmt.Errorf("%w: username must be <= 20 characters", ErrStringTooLong)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters, numbers, underscore, and hyphen", ErrInvalidUsername)
	}
	return nil
}

// ValidatePassword validates password strength before registration.
func ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrWeakPassword)
	}
	if len(password) > 128 {
		return fmt.Errorf("%w: password must be <= 128 characters", ErrStringTooLong)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: password must contain at least one uppercase letter, one lowercase letter, and one number", ErrWeakPassword)
	}
	return nil
}

// ValidateChatMessage bounds and trims an outgoing chat line. Returns the
// sanitized text.
func ValidateChatMessage(text string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(text, "\x00", ""))
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	if len(trimmed) > maxChatLength {
		return "", fmt.Errorf("%w: chat message must be <= %d characters", ErrStringTooLong, maxChatLength)
	}
	return trimmed, nil
}

// ValidateRoomName validates a room name before directory creation.
func ValidateRoomName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("room name is required")
	}
	if len(trimmed) > 100 {
		return fmt.Errorf("%w: room name must be <= 100 characters", ErrStringTooLong)
	}
	return nil
}
