// Package auth implements credential hashing and the session identity
// carried by each request.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor used when none is configured.
const DefaultCost = 10

// ErrHashingFailure is returned when the underlying hashing primitive
// fails. It is distinct from a password mismatch, which is reported as
// a plain false from VerifyPassword.
var ErrHashingFailure = errors.New("password hashing failure")

// HashPassword produces a salted bcrypt hash of password suitable for storage.
func HashPassword(password string, cost int) (string, error) {
	const op = "auth.HashPassword"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrHashingFailure, err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether password matches storedHash. The
// comparison is constant time. A mismatch is (false, nil); an error is
// only returned when bcrypt itself fails, e.g. on a malformed hash.
func VerifyPassword(password, storedHash string) (bool, error) {
	const op = "auth.VerifyPassword"

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w: %v", op, ErrHashingFailure, err)
	}
}
