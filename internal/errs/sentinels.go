// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrUnauthorized indicates the session token was rejected by the API.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBusy indicates a mutation is already in flight for this view.
	ErrBusy = errors.New("request already in flight")
)
