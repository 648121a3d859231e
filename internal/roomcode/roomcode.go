// Package roomcode generates and validates the short codes players type to
// join a room.
package roomcode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet omits I, O, 0 and 1 so codes survive being read aloud. Its length
// is 32, so a random byte maps onto it without bias.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length is the number of characters in a code.
const Length = 5

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator creates room codes. A nil RandSource uses crypto/rand.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator with optional RandSource
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate returns a random code using crypto/rand.
func Generate() (string, error) {
	return NewGenerator(nil).Generate()
}

// Generate returns a new random code.
func (g *Generator) Generate() (string, error) {
	var buf [Length]byte
	if g.randSource != nil {
		for i := range buf {
			buf[i] = Alphabet[g.randSource.IntN(len(Alphabet))]
		}
		return string(buf[:]), nil
	}

	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf[:]), nil
}

// Normalize trims and upper-cases user input.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that code is a well-formed, normalized room code.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, char := range code {
		if !strings.ContainsRune(Alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
