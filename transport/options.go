package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/adamwoolhether/oneshot/transport/throttle"
)

// ClientOption is a functional option for configuring a [Client] via [New].
type ClientOption func(*clientOptions) error

type clientOptions struct {
	base      *http.Transport
	logger    *slog.Logger
	throttle  *throttleConfig
	userAgent string
}

type throttleConfig struct {
	rps   int
	burst int
}

// WithHTTPTransport sets the shared [http.Transport] HTTP handles use. Handles
// needing private settings (fresh connections, proxies, TLS overrides)
// work on a clone of it.
func WithHTTPTransport(t *http.Transport) ClientOption {
	return func(o *clientOptions) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		o.base = t
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) error {
		o.logger = logger
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting across every handle opened
// by the [Client], with the given transfers per second and burst capacity.
func WithThrottle(rps, burst int) ClientOption {
	return func(o *clientOptions) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		o.throttle = &throttleConfig{rps: rps, burst: burst}
		return nil
	}
}

// WithUserAgent sets the User-Agent sent by HTTP handles that don't set
// OptUserAgent or a User-Agent header themselves.
func WithUserAgent(ua string) ClientOption {
	return func(o *clientOptions) error {
		o.userAgent = ua
		return nil
	}
}
