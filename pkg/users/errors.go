package users

import "errors"

var (
	// ErrServiceUnreachable is returned when the user service cannot be
	// reached at the transport level. Callers may retry later.
	ErrServiceUnreachable = errors.New("user service unreachable")

	// ErrBadResponse is returned when the user service is reachable but
	// answered with a body that could not be decoded.
	ErrBadResponse = errors.New("user service returned a malformed response")
)
