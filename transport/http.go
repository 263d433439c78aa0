package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strconv"
	"strings"
	"time"
)

func (h *handle) performHTTP(ctx context.Context, start time.Time) ([]byte, error) {
	req, err := h.newHTTPRequest(ctx)
	if err != nil {
		return nil, transferErr(err, "%v", err)
	}

	rt, err := h.roundTripper()
	if err != nil {
		if errors.Is(err, ErrCABundle) {
			return nil, transferErr(err, "error setting certificate file: %s", h.caInfo)
		}
		return nil, transferErr(err, "%v", err)
	}

	rec := &headerRecorder{next: rt}
	hc := &http.Client{
		Transport:     rec,
		CheckRedirect: h.checkRedirect,
	}

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), h.clientTrace(start)))

	h.updateInfo(func(i *Info) {
		i.URL = h.url
		i.Scheme = strings.ToUpper(req.URL.Scheme)
		i.RequestSize = requestSize(req)
	})

	resp, err := hc.Do(req)
	h.updateInfo(func(i *Info) {
		i.HeaderSize = rec.buf.Len()
		if rec.hops > 1 {
			i.RedirectCount = rec.hops - 1
		}
		if rec.last != nil {
			i.HTTPCode = rec.last.StatusCode
		}
	})
	if err != nil {
		return nil, h.httpTransferErr(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			h.client.logger.Error("failed to close response body", "error", err)
		}
	}()

	h.updateInfo(func(i *Info) {
		i.URL = resp.Request.URL.String()
		i.HTTPCode = resp.StatusCode
		i.ContentType = resp.Header.Get("Content-Type")
		i.HTTPVersion = resp.Proto
		i.SizeUpload = int64(len(h.postFields))
	})

	if h.failOnError && resp.StatusCode >= http.StatusBadRequest {
		return nil, transferErr(ErrHTTPStatus, "The requested URL returned error: %d", resp.StatusCode)
	}

	var body []byte
	if h.returnTransfer {
		body, err = io.ReadAll(resp.Body)
	} else {
		_, err = io.Copy(io.Discard, resp.Body)
	}
	if err != nil {
		return nil, transferErr(err, "Failure when receiving data from the peer: %v", err)
	}

	h.updateInfo(func(i *Info) {
		i.SizeDownload = int64(len(body))
	})

	result := make([]byte, 0, rec.buf.Len()+len(body))
	if h.header {
		result = append(result, rec.buf.Bytes()...)
	}
	result = append(result, body...)

	return result, nil
}

func (h *handle) newHTTPRequest(ctx context.Context) (*http.Request, error) {
	method := h.method()

	var body io.Reader
	hasBody := h.post || h.postFields != ""
	if hasBody {
		body = strings.NewReader(h.postFields)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.url, body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	if hasBody {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	switch {
	case h.userAgent != "":
		req.Header.Set("User-Agent", h.userAgent)
	case h.client.userAgent != "":
		req.Header.Set("User-Agent", h.client.userAgent)
	}

	if h.userPwd != "" {
		user, pass, _ := strings.Cut(h.userPwd, ":")
		req.SetBasicAuth(user, pass)
	}

	replaced := make(map[string]bool)
	for _, line := range h.httpHeader {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			h.client.logger.Debug("skipping malformed header line", "line", line)
			continue
		}

		name = http.CanonicalHeaderKey(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}

		// "Name:" removes a header the client would otherwise send.
		if value == "" {
			if name == "User-Agent" {
				req.Header["User-Agent"] = []string{""}
				continue
			}
			req.Header.Del(name)
			continue
		}

		if name == "Host" {
			req.Host = value
			continue
		}

		// Caller lines replace the defaults set above, then accumulate.
		if !replaced[name] {
			req.Header.Del(name)
			replaced[name] = true
		}
		req.Header.Add(name, value)
	}

	return req, nil
}

func (h *handle) checkRedirect(_ *http.Request, via []*http.Request) error {
	if !h.followLocation {
		return http.ErrUseLastResponse
	}

	limit := h.maxRedirs
	if limit < 0 {
		limit = defaultMaxRedirs
	}
	if len(via) > limit {
		return fmt.Errorf("%w: %d", ErrTooManyRedirects, limit)
	}

	return nil
}

// roundTripper returns the shared base transport, or a private clone when
// the handle needs settings that must not leak into other transfers.
func (h *handle) roundTripper() (http.RoundTripper, error) {
	var rt http.RoundTripper = h.client.base

	private := h.freshConnect ||
		h.proxy != "" ||
		h.connectTimeout > 0 ||
		h.verifyPeer != nil ||
		h.verifyHost != nil ||
		h.caInfo != ""

	if private {
		t := h.client.base.Clone()

		if h.freshConnect {
			t.DisableKeepAlives = true
		}

		if h.proxy != "" {
			proxyURL, err := url.Parse(h.proxy)
			if err != nil {
				return nil, fmt.Errorf("%w: proxy: %w", ErrInvalidOptionValue, err)
			}
			t.Proxy = http.ProxyURL(proxyURL)
		}

		if h.connectTimeout > 0 {
			dialer := &net.Dialer{
				Timeout:   h.connectTimeout,
				KeepAlive: 30 * time.Second,
			}
			t.DialContext = dialer.DialContext
		}

		tlsConf, err := h.tlsConfig(t.TLSClientConfig)
		if err != nil {
			return nil, err
		}
		t.TLSClientConfig = tlsConf

		h.cleanup = append(h.cleanup, t.CloseIdleConnections)
		rt = t
	}

	if h.client.limiter != nil {
		rt = h.client.limiter.RoundTripper(rt)
	}

	return rt, nil
}

func (h *handle) clientTrace(start time.Time) *httptrace.ClientTrace {
	since := func() time.Duration { return time.Since(start) }

	return &httptrace.ClientTrace{
		DNSDone: func(httptrace.DNSDoneInfo) {
			d := since()
			h.updateInfo(func(i *Info) { i.NameLookupTime = d })
		},
		ConnectDone: func(_, _ string, err error) {
			if err != nil {
				return
			}
			d := since()
			h.updateInfo(func(i *Info) { i.ConnectTime = d })
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err != nil {
				return
			}
			d := since()
			h.updateInfo(func(i *Info) { i.AppConnectTime = d })
		},
		GotConn: func(ci httptrace.GotConnInfo) {
			d := since()
			host, port := splitAddr(ci.Conn.RemoteAddr())
			h.updateInfo(func(i *Info) {
				i.PreTransferTime = d
				i.PrimaryIP = host
				i.PrimaryPort = port
			})
		},
		GotFirstResponseByte: func() {
			d := since()
			h.updateInfo(func(i *Info) { i.StartTransferTime = d })
		},
	}
}

// httpTransferErr maps a net/http client error onto curl-style wording.
func (h *handle) httpTransferErr(err error) error {
	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}

	var (
		dnsErr      *net.DNSError
		opErr       *net.OpError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		certErr     x509.CertificateInvalidError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded) && h.timeout > 0:
		return transferErr(err, "Operation timed out after %d milliseconds", h.timeout.Milliseconds())
	case errors.Is(err, ErrTooManyRedirects):
		limit := h.maxRedirs
		if limit < 0 {
			limit = defaultMaxRedirs
		}
		return transferErr(err, "Maximum (%d) redirects followed", limit)
	case errors.As(err, &dnsErr):
		return transferErr(err, "Could not resolve host: %s", dnsErr.Name)
	case errors.As(err, &unknownAuth), errors.As(err, &hostErr), errors.As(err, &certErr):
		return transferErr(err, "SSL certificate problem: %v", cause)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return transferErr(err, "Failed to connect to %s: %v", opErr.Addr, opErr.Err)
	}

	return transferErr(err, "%v", cause)
}

// headerRecorder is an http.RoundTripper capturing the header block of
// every response, redirect hops included, in the order they arrive.
type headerRecorder struct {
	next http.RoundTripper
	buf  bytes.Buffer
	hops int
	last *http.Response
}

func (r *headerRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	writeHeaderBlock(&r.buf, resp)
	r.hops++
	r.last = resp

	return resp, nil
}

// writeHeaderBlock renders the status line and headers of resp followed by
// the blank separator line, the way they appear on the wire.
func writeHeaderBlock(buf *bytes.Buffer, resp *http.Response) {
	buf.WriteString(statusLine(resp))
	buf.WriteString("\r\n")
	_ = resp.Header.Write(buf)
	buf.WriteString("\r\n")
}

func statusLine(resp *http.Response) string {
	if resp.ProtoMajor >= 2 {
		return fmt.Sprintf("HTTP/%d %d", resp.ProtoMajor, resp.StatusCode)
	}

	status := resp.Status
	if status == "" {
		status = strconv.Itoa(resp.StatusCode)
	}

	return fmt.Sprintf("HTTP/%d.%d %s", resp.ProtoMajor, resp.ProtoMinor, status)
}

// requestSize approximates the bytes of the request line and headers.
func requestSize(req *http.Request) int {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s HTTP/1.1\r\n", req.Method, req.URL.RequestURI())
	_ = req.Header.Write(&buf)
	buf.WriteString("\r\n")

	return buf.Len()
}

func splitAddr(addr net.Addr) (string, int) {
	if addr == nil {
		return "", 0
	}

	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), 0
	}
	port, _ := strconv.Atoi(portStr)

	return host, port
}
