package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller passes malformed input.
	// It marks a programming error, never a retryable condition.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidEmail is returned when a string fails the email shape check.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidCredentials is returned when an email/password pair doesn't
	// match a stored account. Deliberately silent about which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMaxRetriesExceeded is returned when the maximum number of retries
	// for generating a short code is exceeded.
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

	// ErrUnauthorized is the base refusal for operations on links.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotLoggedIn refuses an operation that needs an authenticated caller.
	ErrNotLoggedIn = fmt.Errorf("%w: log in to your account to use TinyApp", ErrUnauthorized)
	// ErrNotOwned refuses an operation on a link registered to another account.
	ErrNotOwned = fmt.Errorf("%w: the link is not registered to this account", ErrUnauthorized)
)
