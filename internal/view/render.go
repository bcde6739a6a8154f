// Package view renders a session's published view to the terminal. It is a
// pull model: the renderer reads a complete View after each update signal
// and redraws everything; no view state survives between draws.
package view

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"poker-platform/client/internal/connection"
	"poker-platform/client/internal/game"
	"poker-platform/client/internal/protocol"
	"poker-platform/client/internal/session"
)

// Number of chat lines shown, most recent first.
const chatLines = 8

// StatusIndicator maps a connection state to the label shown next to the
// room name.
func StatusIndicator(st connection.Status) string {
	switch st {
	case connection.StatusConnecting:
		return pterm.FgYellow.Sprint("Connecting…")
	case connection.StatusOpen:
		return pterm.FgGreen.Sprint("Connected")
	case connection.StatusClosed:
		return pterm.FgLightRed.Sprint("Disconnected")
	case connection.StatusErrored:
		return pterm.FgRed.Sprint("Error")
	case connection.StatusTerminated:
		return pterm.FgRed.Sprint("Connection lost")
	}
	return pterm.FgGray.Sprint("Idle")
}

// Render draws a complete frame for the given view.
func Render(v session.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  [%s]\n", pterm.Bold.Sprint(v.Room.Name), StatusIndicator(v.Connection))

	if v.Fatal != nil {
		b.WriteString(pterm.Error.Sprintln("Connection lost. Restart the client to rejoin the table."))
	}

	if v.HasSnapshot {
		b.WriteString(renderTable(v))
	} else {
		b.WriteString(pterm.FgGray.Sprintln("Waiting for table state…"))
	}

	fmt.Fprintf(&b, "Your hand: %s\n", PrettyCards(v.Hand))

	if v.HasSnapshot {
		b.WriteString(renderTurnHint(v.Projector))
	}

	b.WriteString(renderChat(v.Chat))
	return b.String()
}

func renderTable(v session.View) string {
	snap := v.Projector.Snapshot
	dealer, smallBlind, bigBlind := game.SeatRoles(snap.DealerIndex, len(snap.Players))

	data := pterm.TableData{{"", "Player", "Stack", "Bet", "Cards", ""}}
	for i, pl := range snap.Players {
		// Roles can share a seat at short-handed tables.
		var roles []string
		if i == dealer {
			roles = append(roles, "D")
		}
		if i == smallBlind {
			roles = append(roles, "SB")
		}
		if i == bigBlind {
			roles = append(roles, "BB")
		}
		marker := strings.Join(roles, "/")

		name := pl.Username
		if snap.CurrentTurnUsername != nil && *snap.CurrentTurnUsername == pl.Username {
			name = pterm.FgLightCyan.Sprint("→ " + name)
		}

		cards := HiddenCards(2)
		if v.Projector.HandVisible(pl) {
			cards = PrettyCards(pl.Hand)
		} else if !pl.IsActive {
			cards = "-"
		}

		note := ""
		if !pl.IsActive && snap.Status != protocol.StatusWaiting {
			note = pterm.FgGray.Sprint("folded")
		}

		data = append(data, []string{
			marker,
			name,
			fmt.Sprintf("%d", pl.Stack),
			fmt.Sprintf("%d", pl.CurrentBet),
			cards,
			note,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		table = fmt.Sprintf("%v", data)
	}

	var b strings.Builder
	b.WriteString(table)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Board: %s   Pot: %d   Bet: %d   Stage: %s\n",
		PrettyCards(snap.CommunityCards), snap.Pot, snap.CurrentBet, snap.Status)
	if snap.WinnerMessage != nil && *snap.WinnerMessage != "" {
		b.WriteString(pterm.FgLightYellow.Sprintln(*snap.WinnerMessage))
	}
	return b.String()
}

func renderTurnHint(p game.Projector) string {
	if !p.IsSelfTurn() {
		return ""
	}
	if amount, mustCall := p.FacingBet(); mustCall {
		return pterm.FgLightGreen.Sprintfln("Your turn: /call (%d), /bet <amount>, /fold", amount)
	}
	return pterm.FgLightGreen.Sprintln("Your turn: /check, /bet <amount>, /fold")
}

func renderChat(chat []session.ChatEntry) string {
	if len(chat) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(pterm.FgGray.Sprintln("--- chat ---"))
	// Append-only log, rendered most recent first.
	shown := 0
	for i := len(chat) - 1; i >= 0 && shown < chatLines; i-- {
		fmt.Fprintf(&b, "%s %s\n", pterm.FgGray.Sprint(chat[i].ReceivedAt.Format("15:04:05")), chat[i].Text)
		shown++
	}
	return b.String()
}
