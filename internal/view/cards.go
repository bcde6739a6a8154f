package view

import (
	"strings"

	"github.com/pterm/pterm"
)

// Card codes are rank then suit letter: "AS", "TD", "2H". Unknown codes are
// rendered verbatim so a server change never blanks the table.
var suitSymbols = map[byte]string{
	'H': "♥",
	'D': "♦",
	'C': "♣",
	'S': "♠",
}

var redSuits = map[byte]bool{'H': true, 'D': true}

// PrettyCard renders one card code with its suit symbol, colored for red
// suits.
func PrettyCard(code string) string {
	if len(code) != 2 {
		return code
	}
	rank := string(code[0])
	suit := code[1]
	symbol, ok := suitSymbols[suit]
	if !ok {
		return code
	}
	if redSuits[suit] {
		return pterm.FgRed.Sprint(rank + symbol)
	}
	return rank + symbol
}

// PrettyCards renders a card sequence space separated.
func PrettyCards(codes []string) string {
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = PrettyCard(c)
	}
	return strings.Join(parts, " ")
}

// HiddenCards renders n face-down cards.
func HiddenCards(n int) string {
	if n == 0 {
		return "-"
	}
	return strings.TrimSpace(strings.Repeat("▮ ", n))
}
