package ui

import "testing"

func TestColorChoice(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		tty  bool
		want bool
	}{
		{"tty defaults to color", nil, true, true},
		{"pipe defaults to no color", nil, false, false},
		{"NO_COLOR disables", map[string]string{"NO_COLOR": "1"}, true, false},
		{"NO_COLOR beats CLICOLOR_FORCE", map[string]string{"NO_COLOR": "x", "CLICOLOR_FORCE": "1"}, true, false},
		{"CLICOLOR_FORCE colors a pipe", map[string]string{"CLICOLOR_FORCE": "1"}, false, true},
		{"CLICOLOR=0 disables on tty", map[string]string{"CLICOLOR": "0"}, true, false},
		{"dumb terminal disables", map[string]string{"TERM": "dumb"}, true, false},
		{"CLICOLOR_FORCE beats dumb terminal", map[string]string{"CLICOLOR_FORCE": "1", "TERM": "dumb"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			get := func(k string) string { return tt.env[k] }
			if got := colorChoice(get, tt.tty); got != tt.want {
				t.Errorf("colorChoice = %v, want %v", got, tt.want)
			}
		})
	}
}
