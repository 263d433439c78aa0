package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/oneshot/ordered"
	"github.com/adamwoolhether/oneshot/transport"
)

const tracerName = "github.com/adamwoolhether/oneshot/session"

type state int

const (
	stateIdle state = iota
	stateConfigured
	stateRunning
	stateDone
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateConfigured:
		return "configured"
	case stateRunning:
		return "running"
	case stateDone:
		return "done"
	}

	return "unknown"
}

// Session describes one request and, once executed, its response.
// A Session is single-use and not safe for concurrent use.
type Session struct {
	id        uuid.UUID
	transport transport.Transport
	logger    *slog.Logger
	tracer    trace.Tracer

	state  state
	handle transport.Handle

	uri           string
	method        Method
	headers       []string
	customOptions *ordered.Map[transport.Option, any]
	postFields    string
	timeout       time.Duration
	useCache      bool
	sslVerifyHost *bool
	sslVerifyPeer *bool
	cert          *string

	response response
}

type response struct {
	rawHeaders string
	headers    Headers
	body       []byte
	hasBody    bool
	code       int
	err        error
	info       transport.Info
}

// New constructs an idle Session.
func New(optFns ...Option) (*Session, error) {
	opts := options{
		logger: slog.Default(),
	}

	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying session option: %w", err)
		}
	}

	if opts.transport == nil {
		client, err := transport.New(transport.WithLogger(opts.logger))
		if err != nil {
			return nil, fmt.Errorf("creating transport: %w", err)
		}
		opts.transport = client
	}

	if opts.tracer == nil {
		opts.tracer = otel.Tracer(tracerName)
	}

	if opts.id == uuid.Nil {
		opts.id = uuid.New()
	}

	return &Session{
		id:            opts.id,
		transport:     opts.transport,
		logger:        opts.logger,
		tracer:        opts.tracer,
		customOptions: ordered.New[transport.Option, any](),
	}, nil
}

// Configure builds the final URI and acquires the transport handle the
// session will execute with. It succeeds at most once per session.
func (s *Session) Configure(uri string, optFns ...ConfigureOption) error {
	switch s.state {
	case stateConfigured, stateRunning:
		return ErrAlreadyRunning
	case stateDone:
		return ErrExecuted
	}

	var opts configureOptions
	for _, opt := range optFns {
		opt(&opts)
	}

	s.useCache = opts.useCache
	s.uri = BuildURI(uri, opts.query, opts.urlEncode)

	h, err := s.transport.Open(s.uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHandle, err)
	}
	if h == nil {
		return fmt.Errorf("%w: transport returned no handle", ErrInvalidHandle)
	}

	w := optionWriter{h: h}
	w.set(transport.OptFailOnError, true)
	w.set(transport.OptFollowLocation, true)
	w.set(transport.OptReturnTransfer, true)
	if w.err != nil {
		s.closeHandle(h)
		return fmt.Errorf("%w: %w", ErrInvalidHandle, w.err)
	}

	s.handle = h
	s.state = stateConfigured

	s.logger.Debug("session configured", "session", s.id, "uri", s.uri)

	return nil
}

// Execute performs the single transfer of the session. Transfer failures
// do not surface here: they are kept on the session and read with Err,
// TransportError and Info. Execute returns an error only when the session
// is not in a state to run, or when the transport rejects an option.
func (s *Session) Execute(ctx context.Context) error {
	switch s.state {
	case stateIdle:
		return ErrNotConfigured
	case stateRunning, stateDone:
		return ErrExecuted
	}

	h := s.handle
	s.state = stateRunning
	defer s.release(h)

	ctx, span := s.tracer.Start(ctx, "session.execute", trace.WithAttributes(
		attribute.String("session.id", s.id.String()),
		attribute.String("url.full", s.uri),
		attribute.String("http.request.method", string(s.effectiveMethod())),
	))
	defer span.End()

	if err := s.applyOptions(h); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	raw, err := h.Perform(ctx)
	if err != nil {
		s.response.err = err
		s.logger.Warn("transfer failed", "session", s.id, "uri", s.uri, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	info := h.Info()
	s.decompose(raw, info)

	span.SetAttributes(attribute.Int("http.response.status_code", info.HTTPCode))

	return nil
}

// applyOptions writes the session's configuration to h. The order is
// observable: custom options may override anything written before them,
// except OptFreshConnect, OptPostFields and OptTimeout which are written
// last.
func (s *Session) applyOptions(h transport.Handle) error {
	w := optionWriter{h: h}

	if s.sslVerifyHost != nil {
		mode := transport.VerifyHostOff
		if *s.sslVerifyHost {
			mode = transport.VerifyHostStrict
		}
		w.set(transport.OptSSLVerifyHost, mode)
	}
	if s.sslVerifyPeer != nil {
		w.set(transport.OptSSLVerifyPeer, *s.sslVerifyPeer)
	}
	if s.cert != nil {
		w.set(transport.OptCAInfo, *s.cert)
	}

	w.set(transport.OptHeader, true)
	w.set(transport.OptReturnTransfer, true)

	if !s.useCache {
		s.headers = append(s.headers, "Cache-Control: no-cache")
		w.set(transport.OptFreshConnect, true)
	}

	w.set(transport.OptHTTPHeader, s.headers)

	if s.method == MethodPost {
		w.set(transport.OptPost, true)
	} else {
		w.set(transport.OptCustomRequest, string(s.effectiveMethod()))
	}

	for opt, value := range s.customOptions.All() {
		w.set(opt, value)
	}

	w.set(transport.OptFreshConnect, s.useCache)
	w.set(transport.OptPostFields, s.postFields)
	w.set(transport.OptTimeout, s.timeout)

	return w.err
}

// decompose splits the raw transfer result into headers and body.
func (s *Session) decompose(raw []byte, info transport.Info) {
	size := min(max(info.HeaderSize, 0), len(raw))

	s.response.rawHeaders = string(raw[:size])
	s.response.headers = ParseHeaders(s.response.rawHeaders)
	if raw != nil {
		s.response.body = raw[size:]
		s.response.hasBody = true
	}
	s.response.code = info.HTTPCode
	s.response.info = info
}

func (s *Session) release(h transport.Handle) {
	s.closeHandle(h)
	s.handle = nil
	s.state = stateDone
}

func (s *Session) closeHandle(h transport.Handle) {
	if err := h.Close(); err != nil {
		s.logger.Error("failed to close transport handle", "session", s.id, "error", err)
	}
}

func (s *Session) effectiveMethod() Method {
	if s.method == "" {
		return MethodGet
	}

	return s.method
}

// optionWriter stops at the first rejected option.
type optionWriter struct {
	h   transport.Handle
	err error
}

func (w *optionWriter) set(opt transport.Option, value any) {
	if w.err != nil {
		return
	}

	w.err = w.h.SetOption(opt, value)
}
