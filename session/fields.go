package session

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/adamwoolhether/oneshot/ordered"
	"github.com/adamwoolhether/oneshot/transport"
)

func (s *Session) mutable() error {
	if s.state >= stateRunning {
		return ErrExecuted
	}

	return nil
}

// SetMethod sets the request verb. An empty method means GET.
func (s *Session) SetMethod(m Method) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if m != "" && !m.valid() {
		return ErrInvalidMethod
	}

	s.method = m

	return nil
}

// SetHeaders replaces the request header lines. Each line has the form
// "Name: Value".
func (s *Session) SetHeaders(headers []string) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.headers = slices.Clone(headers)

	return nil
}

// AddHeader appends one "Name: Value" line.
func (s *Session) AddHeader(line string) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.headers = append(s.headers, line)

	return nil
}

// SetCustomOptions replaces the raw transport options applied after the
// session's own.
func (s *Session) SetCustomOptions(opts *ordered.Map[transport.Option, any]) error {
	if err := s.mutable(); err != nil {
		return err
	}

	if opts == nil {
		s.customOptions = ordered.New[transport.Option, any]()
		return nil
	}
	s.customOptions = opts.Clone()

	return nil
}

// SetCustomOption sets one raw transport option.
func (s *Session) SetCustomOption(opt transport.Option, value any) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.customOptions.Set(opt, value)

	return nil
}

// SetPostFields sets the request body. It is sent as given.
func (s *Session) SetPostFields(body string) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.postFields = body

	return nil
}

// SetTimeout bounds the whole transfer. Zero disables the bound.
func (s *Session) SetTimeout(d time.Duration) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if d < 0 {
		return errors.New("timeout cannot be negative")
	}

	s.timeout = d

	return nil
}

// SetUseCache allows cached responses. When off, Execute adds a no-cache
// request header.
func (s *Session) SetUseCache(useCache bool) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.useCache = useCache

	return nil
}

// SetSSLVerifyHost toggles checking the server certificate against the
// host name.
func (s *Session) SetSSLVerifyHost(verify bool) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.sslVerifyHost = &verify

	return nil
}

// SetSSLVerifyPeer toggles verifying the server certificate chain.
func (s *Session) SetSSLVerifyPeer(verify bool) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.sslVerifyPeer = &verify

	return nil
}

// SetCert sets the path of the CA bundle used to verify the server.
func (s *Session) SetCert(path string) error {
	if err := s.mutable(); err != nil {
		return err
	}

	s.cert = &path

	return nil
}

// ID returns the identifier assigned at creation.
func (s *Session) ID() uuid.UUID { return s.id }

// URI returns the URI built by Configure, query included.
func (s *Session) URI() string { return s.uri }

// Method returns the configured method, which is "" when unset.
func (s *Session) Method() Method { return s.method }

// Headers returns the request header lines. After execution it includes
// the no-cache line added when caching was off.
func (s *Session) Headers() []string { return slices.Clone(s.headers) }

// CustomOptions returns a copy of the raw transport options in insertion order.
func (s *Session) CustomOptions() *ordered.Map[transport.Option, any] {
	return s.customOptions.Clone()
}

// PostFields returns the raw request body.
func (s *Session) PostFields() string { return s.postFields }

// Timeout returns the whole-transfer timeout, zero meaning none.
func (s *Session) Timeout() time.Duration { return s.timeout }

// UseCache reports whether cached responses are allowed.
func (s *Session) UseCache() bool { return s.useCache }

// SSLVerifyHost reports the host verification setting and whether it was
// set at all.
func (s *Session) SSLVerifyHost() (bool, bool) { return derefOK(s.sslVerifyHost) }

// SSLVerifyPeer reports the peer verification setting and whether it was
// set at all.
func (s *Session) SSLVerifyPeer() (bool, bool) { return derefOK(s.sslVerifyPeer) }

// Cert reports the CA bundle path and whether it was set at all.
func (s *Session) Cert() (string, bool) { return derefOK(s.cert) }

// Executed reports whether the session has run.
func (s *Session) Executed() bool { return s.state == stateDone }

// ResponseHeaders returns the parsed response headers. It is nil before
// execution and empty when nothing was received.
func (s *Session) ResponseHeaders() Headers { return s.response.headers }

// RawHeaders returns the response header block as received, status
// lines included.
func (s *Session) RawHeaders() string { return s.response.rawHeaders }

// Body returns the response body. ok is false when the transfer produced
// no result, which is distinct from an empty body.
func (s *Session) Body() (body []byte, ok bool) {
	return s.response.body, s.response.hasBody
}

// HTTPCode returns the last response code. ok is false before execution.
func (s *Session) HTTPCode() (code int, ok bool) {
	return s.response.code, s.Executed()
}

// Err returns the transfer error, if any.
func (s *Session) Err() error { return s.response.err }

// TransportError returns the transfer error message, or "" when the
// transfer succeeded.
func (s *Session) TransportError() string {
	if s.response.err == nil {
		return ""
	}

	return s.response.err.Error()
}

// Info returns the transfer diagnostics. ok is false before execution.
func (s *Session) Info() (info transport.Info, ok bool) {
	return s.response.info, s.Executed()
}

func derefOK[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}

	return *p, true
}
