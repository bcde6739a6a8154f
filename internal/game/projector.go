// Package game derives presentation facts from authoritative table
// snapshots. Nothing here mutates or caches: every derivation is computed
// from scratch against whichever snapshot is current, so wholesale snapshot
// replacement is always safe.
package game

import "poker-platform/client/internal/protocol"

// Projector exposes pure derivations over one snapshot plus the local
// username. A zero Projector (no snapshot seen yet) derives nothing.
type Projector struct {
	Username string
	Snapshot protocol.TableSnapshot
}

// SelfPlayer returns the seat whose username matches the local player, or
// false when the local player is not seated (spectating).
func (p Projector) SelfPlayer() (protocol.PlayerView, bool) {
	for _, pl := range p.Snapshot.Players {
		if pl.Username == p.Username {
			return pl, true
		}
	}
	return protocol.PlayerView{}, false
}

// IsSelfTurn reports whether it is the local player's turn to act. It is
// false whenever the local player is absent from the table or the server has
// not named a current turn.
func (p Projector) IsSelfTurn() bool {
	if p.Snapshot.CurrentTurnUsername == nil {
		return false
	}
	if _, seated := p.SelfPlayer(); !seated {
		return false
	}
	return *p.Snapshot.CurrentTurnUsername == p.Username
}

// FacingBet returns the amount the local player must match and whether a
// call is required. When the player already matches the table bet the
// affordable action is a check (a Call with nothing further implied).
func (p Projector) FacingBet() (amount int, mustCall bool) {
	self, seated := p.SelfPlayer()
	if !seated {
		return 0, false
	}
	if self.CurrentBet < p.Snapshot.CurrentBet {
		return p.Snapshot.CurrentBet, true
	}
	return 0, false
}

// HandVisible reports whether a seat's hand may be rendered. Hands are only
// meaningful at showdown; outside it the field is treated as hidden even if
// the server populated it.
func (p Projector) HandVisible(pl protocol.PlayerView) bool {
	return p.Snapshot.Status == protocol.StatusShowdown && len(pl.Hand) > 0
}

// SeatRoles returns the dealer, small blind, and big blind seat indices for
// a table of n players. Blinds wrap modulo the player count; with a single
// player all three roles land on the same seat. n < 1 yields no roles.
func SeatRoles(dealerIndex, n int) (dealer, smallBlind, bigBlind int) {
	if n < 1 {
		return -1, -1, -1
	}
	dealer = ((dealerIndex % n) + n) % n
	smallBlind = (dealer + 1) % n
	bigBlind = (dealer + 2) % n
	return dealer, smallBlind, bigBlind
}
