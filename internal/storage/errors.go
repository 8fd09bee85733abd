// Package storage defines the sentinel errors shared by the storage backends.
package storage

import "errors"

var (
	// ErrAccountExists is returned when an attempt is made to register
	// an account with an email that is already taken.
	ErrAccountExists = errors.New("account exists")
	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrShortCodeExists is returned when an attempt is made to create
	// a new shortened URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when an attempt is made to retrieve
	// a URL using a short code that doesn't exist.
	ErrURLNotFound = errors.New("url not found")
)
