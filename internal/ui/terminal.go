package ui

import (
	"os"

	"golang.org/x/term"
)

// ShouldUseColor returns true when ANSI colors should be used on stdout.
func ShouldUseColor() bool {
	return colorChoice(os.Getenv, term.IsTerminal(int(os.Stdout.Fd())))
}

// colorChoice decides whether to color output given an environment lookup
// and whether stdout is a terminal. Precedence: NO_COLOR wins over
// CLICOLOR_FORCE, which wins over CLICOLOR and TERM, which win over TTY
// detection.
func colorChoice(get func(string) string, tty bool) bool {
	// https://no-color.org: any non-empty value disables color.
	if get("NO_COLOR") != "" {
		return false
	}
	if get("CLICOLOR_FORCE") == "1" {
		return true
	}
	if get("CLICOLOR") == "0" {
		return false
	}
	if get("TERM") == "dumb" {
		return false
	}
	return tty
}
