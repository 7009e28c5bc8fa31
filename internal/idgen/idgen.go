// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// ID prefixes for each entity kind.
const (
	PrefixSession = "sn-"
	PrefixRecord  = "pr-"
	PrefixGoal    = "gl-"
	PrefixStep    = "st-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// NewSessionID returns a new unique session ID.
func NewSessionID() (string, error) {
	return GenerateWithPrefix(PrefixSession)
}

// NewRecordID returns a new unique progress record ID.
func NewRecordID() (string, error) {
	return GenerateWithPrefix(PrefixRecord)
}

// NewGoalID returns a new unique goal ID.
func NewGoalID() (string, error) {
	return GenerateWithPrefix(PrefixGoal)
}

// NewStepID returns a new unique goal step ID.
func NewStepID() (string, error) {
	return GenerateWithPrefix(PrefixStep)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
