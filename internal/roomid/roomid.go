package roomid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Length is the fixed room id length.
const Length = 6

// Alphabet excludes easily confused characters (0/O, 1/I/L) so ids can be
// read out loud at a table.
const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// RandSource abstracts randomness for deterministic tests.
type RandSource interface {
	IntN(n int) int
}

// Generator produces room ids with configurable randomness.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource uses crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new 6-character room id.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new 6-character room id using the generator's source.
func (g *Generator) Generate() string {
	var sb strings.Builder
	sb.Grow(Length)
	if g.randSource != nil {
		for i := 0; i < Length; i++ {
			sb.WriteByte(alphabet[g.randSource.IntN(len(alphabet))])
		}
		return sb.String()
	}

	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		panic("roomid: crypto source unavailable: " + err.Error())
	}
	for _, b := range buf {
		sb.WriteByte(alphabet[int(b)%len(alphabet)])
	}
	return sb.String()
}

// Validate checks that an id is exactly six characters from the alphabet.
// Lowercase input is accepted and treated as its uppercase form.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("room id must be exactly %d characters, got %d", Length, len(id))
	}
	for i, ch := range strings.ToUpper(id) {
		if !strings.ContainsRune(alphabet, ch) {
			return fmt.Errorf("invalid character %c at position %d", ch, i)
		}
	}
	return nil
}

// Normalize returns the canonical uppercase form of an id.
func Normalize(id string) string {
	return strings.ToUpper(id)
}
