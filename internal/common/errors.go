// Package common defines shared constants, helpers and sentinel errors used
// across IdeaBoard components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrConfiguration reports a missing or unusable database endpoint/token.
	ErrConfiguration = errors.New("configuration error")

	// ErrNetwork reports that every request attempt against the remote
	// database failed.
	ErrNetwork = errors.New("network error")

	// ErrValidation reports an empty or malformed required field.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized is returned for unknown users and credential
	// mismatches alike.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrNoSession is returned by operations that need a logged-in user.
	ErrNoSession = errors.New("not logged in")

	// ErrIntegrity reports that a post-write verification found empty or
	// missing data.
	ErrIntegrity = errors.New("integrity error")
)
