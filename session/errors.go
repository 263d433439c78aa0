package session

import "errors"

var (
	// ErrAlreadyRunning is returned by Configure when the session already
	// holds a transport handle. A session configures exactly once.
	ErrAlreadyRunning = errors.New("client already running")
	// ErrInvalidHandle wraps a transport that failed to produce a usable
	// handle. It signals a broken environment rather than a bad request.
	ErrInvalidHandle = errors.New("transport handle is not valid")
	// ErrNotConfigured is returned by Execute before Configure has run.
	ErrNotConfigured = errors.New("session not configured")
	// ErrExecuted is returned when a session is executed or modified after
	// it has already run.
	ErrExecuted = errors.New("session already executed")
	// ErrInvalidMethod rejects a method outside the supported set.
	ErrInvalidMethod = errors.New("invalid method")
	// ErrInvalidOption wraps a transport option the handle refused.
	ErrInvalidOption = errors.New("invalid transport option")
)
