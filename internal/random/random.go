// Package random generates the short identifiers used for links.
package random

import (
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the 62-character set identifiers are drawn from:
// digits, uppercase and lowercase latin letters.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// maxAttempts bounds the retry-until-unique loop. With the recommended
// length of 6 the keyspace holds 62^6 combinations, so hitting the
// ceiling means the keyspace is effectively spent.
const maxAttempts = 10000

var (
	// ErrInvalidLength is returned when the requested length is not a positive integer.
	ErrInvalidLength = errors.New("length must be a positive integer")
	// ErrKeyspaceExhausted is returned when no unused identifier could be
	// found within the attempt ceiling.
	ErrKeyspaceExhausted = errors.New("keyspace exhausted")
)

// Generate returns a string of exactly length characters drawn uniformly
// at random from Alphabet that is not a key of existing. A nil existing
// map is treated as empty.
func Generate(existing map[string]struct{}, length int) (string, error) {
	const op = "random.Generate"

	if length < 1 {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidLength)
	}

	for i := 0; i < maxAttempts; i++ {
		s, err := gonanoid.Generate(Alphabet, length)
		if err != nil {
			return "", fmt.Errorf("%s: failed to draw random string: %w", op, err)
		}

		if _, taken := existing[s]; taken {
			continue
		}

		return s, nil
	}

	return "", fmt.Errorf("%s: %w", op, ErrKeyspaceExhausted)
}
