package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/adamwoolhether/oneshot/transport/throttle"
)

// Transport acquires handles, one per transfer.
type Transport interface {
	Open(uri string) (Handle, error)
}

// Handle is a single transfer context. Options are applied with SetOption,
// the transfer runs once with Perform, and the outcome is read with Info
// before the handle is released with Close.
//
// Perform returns the raw result (header block followed by the body) and
// the transfer error, if any. A failed transfer returns a nil result.
type Handle interface {
	SetOption(opt Option, value any) error
	Perform(ctx context.Context) ([]byte, error)
	Info() Info
	Close() error
}

// Client is the default Transport. HTTP and HTTPS transfers run on
// net/http, FTP and FTPS transfers on github.com/jlaffaye/ftp.
type Client struct {
	base      *http.Transport
	logger    *slog.Logger
	limiter   *throttle.Limiter
	userAgent string
}

// New builds a *Client with the provided options.
func New(optFns ...ClientOption) (*Client, error) {
	c := &Client{
		logger: slog.Default(),
	}

	var opts clientOptions
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying transport option: %w", err)
		}
	}

	if opts.logger != nil {
		c.logger = opts.logger
	}

	switch {
	case opts.base != nil:
		c.base = opts.base
	default:
		dt, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			return nil, errors.New("http.DefaultTransport is not an *http.Transport")
		}
		c.base = dt.Clone()
	}

	if opts.throttle != nil {
		l, err := throttle.New(opts.throttle.rps, opts.throttle.burst, func() *slog.Logger { return c.logger })
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		c.limiter = l
	}

	c.userAgent = opts.userAgent

	return c, nil
}

// Open acquires a handle for uri. The scheme picks the protocol: ftp and
// ftps go to the FTP implementation, everything else is handed to net/http,
// which reports unsupported schemes as a transfer error.
func (c *Client) Open(uri string) (Handle, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	h := newHandle(c)
	h.url = uri
	h.ftp = isFTP(u)

	return h, nil
}

// CloseIdleConnections closes idle connections kept by the shared base transport.
func (c *Client) CloseIdleConnections() {
	c.base.CloseIdleConnections()
}

func isFTP(u *url.URL) bool {
	switch strings.ToLower(u.Scheme) {
	case "ftp", "ftps":
		return true
	}

	return false
}
