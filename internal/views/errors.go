package views

import "errors"

var (
	// ErrInvalidID indicates an identifier that does not parse as a UUID.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrMissingUsername indicates a blank channel username.
	ErrMissingUsername = errors.New("username is required")
	// ErrCallerRequired indicates a composer that only works for
	// authenticated callers was invoked anonymously.
	ErrCallerRequired = errors.New("caller identity required")
	// ErrMissingOwner indicates a video, comment, or tweet whose owner row is
	// absent. Referential integrity should make this impossible, so callers
	// treat it as an internal failure rather than a not-found condition.
	ErrMissingOwner = errors.New("owner record missing")
)
