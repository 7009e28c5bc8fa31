package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorGood   = 114 // green
	colorWarn   = 215 // orange
	colorBad    = 203 // red
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderStatus colors a session or goal status string: green for healthy
// states, orange for maintenance, red for abandoned or archived.
func RenderStatus(status string) string {
	switch status {
	case "in_progress", "active", "completed":
		return render(colorGood, status)
	case "maintenance":
		return render(colorWarn, status)
	case "abandoned", "archived":
		return render(colorBad, status)
	default:
		return status
	}
}

// RenderOutcome colors an outcome value: green for correct, orange for
// prompted, red for incorrect.
func RenderOutcome(outcome string) string {
	switch outcome {
	case "correct":
		return render(colorGood, outcome)
	case "verbal_prompt":
		return render(colorWarn, outcome)
	case "incorrect":
		return render(colorBad, outcome)
	default:
		return RenderMuted(outcome)
	}
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
