// Package oneshot exposes the session builder.
package oneshot

import (
	"github.com/adamwoolhether/oneshot/session"
)

// NewSession instantiates a new *session.Session with the provided options.
// If not specified, a transport.Client with default settings is used.
func NewSession(opts ...session.Option) (*session.Session, error) {
	return session.New(opts...)
}
