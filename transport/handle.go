package transport

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// defaultMaxRedirs bounds redirect hops when OptMaxRedirs is unset.
const defaultMaxRedirs = 50

// settings holds the option values of one handle.
type settings struct {
	url            string
	failOnError    bool
	followLocation bool
	maxRedirs      int
	returnTransfer bool
	header         bool
	verifyHost     *HostVerification
	verifyPeer     *bool
	caInfo         string
	httpHeader     []string
	post           bool
	customRequest  string
	freshConnect   bool
	postFields     string
	timeout        time.Duration
	connectTimeout time.Duration
	userAgent      string
	userPwd        string
	proxy          string
}

func (s *settings) set(opt Option, value any) error {
	if err := checkValue(opt, value); err != nil {
		return err
	}

	switch opt {
	case OptURL:
		s.url = value.(string)
	case OptFailOnError:
		s.failOnError = value.(bool)
	case OptFollowLocation:
		s.followLocation = value.(bool)
	case OptMaxRedirs:
		s.maxRedirs = value.(int)
	case OptReturnTransfer:
		s.returnTransfer = value.(bool)
	case OptHeader:
		s.header = value.(bool)
	case OptSSLVerifyHost:
		hv := value.(HostVerification)
		s.verifyHost = &hv
	case OptSSLVerifyPeer:
		b := value.(bool)
		s.verifyPeer = &b
	case OptCAInfo:
		s.caInfo = value.(string)
	case OptHTTPHeader:
		s.httpHeader = append([]string(nil), value.([]string)...)
	case OptPost:
		s.post = value.(bool)
	case OptCustomRequest:
		s.customRequest = value.(string)
	case OptFreshConnect:
		s.freshConnect = value.(bool)
	case OptPostFields:
		s.postFields = value.(string)
	case OptTimeout:
		s.timeout = value.(time.Duration)
	case OptConnectTimeout:
		s.connectTimeout = value.(time.Duration)
	case OptUserAgent:
		s.userAgent = value.(string)
	case OptUserPwd:
		s.userPwd = value.(string)
	case OptProxy:
		s.proxy = value.(string)
	}

	return nil
}

// method resolves the request verb: post mode wins, then the custom request,
// then GET.
func (s *settings) method() string {
	switch {
	case s.post:
		return "POST"
	case s.customRequest != "":
		return s.customRequest
	}

	return "GET"
}

// handle is the Handle implementation returned by [Client.Open].
type handle struct {
	settings

	client    *Client
	ftp       bool
	performed bool
	closed    bool
	cleanup   []func()

	mu   sync.Mutex // guards info, written from httptrace callbacks.
	info Info
}

func newHandle(c *Client) *handle {
	return &handle{
		client:   c,
		settings: settings{maxRedirs: -1},
	}
}

func (h *handle) SetOption(opt Option, value any) error {
	if h.closed {
		return ErrHandleClosed
	}
	if h.performed {
		return ErrAlreadyPerformed
	}

	if err := h.set(opt, value); err != nil {
		return fmt.Errorf("set %s: %w", opt, err)
	}

	return nil
}

func (h *handle) Perform(ctx context.Context) ([]byte, error) {
	if h.closed {
		return nil, ErrHandleClosed
	}
	if h.performed {
		return nil, ErrAlreadyPerformed
	}
	h.performed = true

	start := time.Now()
	defer func() {
		h.mu.Lock()
		h.info.TotalTime = time.Since(start)
		h.mu.Unlock()
	}()

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if h.ftp {
		return h.performFTP(ctx, start)
	}

	return h.performHTTP(ctx, start)
}

func (h *handle) Info() Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.info
}

// Close releases resources private to the handle. It is safe to call twice.
func (h *handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	for _, fn := range h.cleanup {
		fn()
	}
	h.cleanup = nil

	return nil
}

func (h *handle) updateInfo(fn func(*Info)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fn(&h.info)
}
