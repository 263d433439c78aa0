package session

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/oneshot/ordered"
	"github.com/adamwoolhether/oneshot/transport"
)

// Option configures a Session at construction.
type Option func(*options) error

type options struct {
	transport transport.Transport
	logger    *slog.Logger
	tracer    trace.Tracer
	id        uuid.UUID
}

// WithTransport sets the transport the session opens its handle from.
// Defaults to a [transport.Client] sharing the session's logger.
func WithTransport(t transport.Transport) Option {
	return func(opts *options) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}

		opts.transport = t

		return nil
	}
}

// WithLogger sets the logger used for debug dumps and failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}

		opts.logger = logger

		return nil
	}
}

// WithTracer sets the tracer that spans Execute. Defaults to the tracer of
// the global otel provider, which is a no-op until one is registered.
func WithTracer(tracer trace.Tracer) Option {
	return func(opts *options) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}

		opts.tracer = tracer

		return nil
	}
}

// WithID overrides the random session ID.
func WithID(id uuid.UUID) Option {
	return func(opts *options) error {
		if id == uuid.Nil {
			return errors.New("id cannot be nil uuid")
		}

		opts.id = id

		return nil
	}
}

// ConfigureOption adjusts how Configure builds the request URI.
type ConfigureOption func(*configureOptions)

type configureOptions struct {
	query     *ordered.Map[string, string]
	urlEncode bool
	useCache  bool
}

// WithQuery appends params to the URI in insertion order.
func WithQuery(params *ordered.Map[string, string]) ConfigureOption {
	return func(opts *configureOptions) {
		opts.query = params
	}
}

// WithURLEncoding percent-encodes query values.
func WithURLEncoding() ConfigureOption {
	return func(opts *configureOptions) {
		opts.urlEncode = true
	}
}

// WithCache lets the transfer reuse pooled connections and omits the
// no-cache request header.
func WithCache() ConfigureOption {
	return func(opts *configureOptions) {
		opts.useCache = true
	}
}
