package session

import (
	"errors"
	"fmt"

	"poker-platform/client/internal/protocol"
)

// ErrBetBelowMinimum is the gateway's inline rejection of an undersized
// bet. The bound is a minimum-raise convention checked for convenience
// only; the authority validates every action again and may reject for
// reasons the client cannot know.
var ErrBetBelowMinimum = errors.New("bet below minimum raise")

// validateAction is the pre-flight, advisory gate in front of the
// connection. Only bets carry a local rule; everything else passes through
// and lives or dies by the next snapshot.
func (s *Session) validateAction(a protocol.Action) error {
	if a.Kind != protocol.ActionBet {
		return nil
	}
	min := 2 * s.snapshot.CurrentBet
	if a.Amount < min {
		return fmt.Errorf("%w: bet %d, minimum %d", ErrBetBelowMinimum, a.Amount, min)
	}
	return nil
}
