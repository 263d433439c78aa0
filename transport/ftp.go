package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
)

func (h *handle) performFTP(ctx context.Context, start time.Time) ([]byte, error) {
	u, err := url.Parse(h.url)
	if err != nil {
		return nil, transferErr(err, "URL using bad/illegal format: %v", err)
	}

	scheme := strings.ToLower(u.Scheme)
	h.updateInfo(func(i *Info) {
		i.URL = h.url
		i.Scheme = strings.ToUpper(scheme)
	})

	if err := h.client.limiter.Wait(ctx, u.Host); err != nil {
		return nil, transferErr(err, "%v", err)
	}

	addr := u.Host
	if u.Port() == "" {
		port := "21"
		if scheme == "ftps" {
			port = "990"
		}
		addr = net.JoinHostPort(u.Hostname(), port)
	}

	d := &ftpDialer{
		ctx:    ctx,
		dialer: net.Dialer{Timeout: h.connectTimeout},
	}
	defer d.release()

	var dialOpts []ftp.DialOption
	if scheme == "ftps" {
		tlsConf, err := h.tlsConfig(nil)
		if err != nil {
			return nil, transferErr(err, "error setting certificate file: %s", h.caInfo)
		}
		if tlsConf.ServerName == "" {
			tlsConf.ServerName = u.Hostname()
		}
		d.tls = tlsConf
		// The dialer wraps every connection itself; the option only makes
		// the client request a protected data channel.
		dialOpts = append(dialOpts, ftp.DialWithTLS(tlsConf))
	}
	dialOpts = append(dialOpts, ftp.DialWithDialFunc(d.dial))

	conn, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		return nil, h.ftpTransferErr(ctx, err, "Failed to connect to %s: %v", addr, err)
	}
	defer func() {
		if err := conn.Quit(); err != nil && ctx.Err() == nil {
			h.client.logger.Error("failed to quit ftp session", "addr", addr, "error", err)
		}
	}()

	connected := time.Since(start)
	host, port, _ := net.SplitHostPort(addr)
	h.updateInfo(func(i *Info) {
		i.ConnectTime = connected
		i.PrimaryIP = host
		i.PrimaryPort, _ = strconv.Atoi(port)
	})

	user, pass := h.ftpCredentials(u)
	if err := conn.Login(user, pass); err != nil {
		return nil, h.ftpTransferErr(ctx, err, "Access denied: %v", err)
	}

	preTransfer := time.Since(start)
	h.updateInfo(func(i *Info) { i.PreTransferTime = preTransfer })

	path := u.Path
	if path == "" {
		path = "/"
	}

	method := strings.ToUpper(h.method())
	switch {
	case strings.HasSuffix(path, "/"):
		return h.ftpList(ctx, conn, path)
	case method == "DELETE":
		if err := conn.Delete(path); err != nil {
			return nil, h.ftpTransferErr(ctx, err, "Could not delete %s: %v", path, err)
		}
		h.updateInfo(func(i *Info) { i.HTTPCode = ftp.StatusRequestedFileActionOK })
		return []byte{}, nil
	case method == "POST" || method == "PUT":
		if err := conn.Stor(path, strings.NewReader(h.postFields)); err != nil {
			return nil, h.ftpTransferErr(ctx, err, "Failed FTP upload: %v", err)
		}
		h.updateInfo(func(i *Info) {
			i.HTTPCode = ftp.StatusClosingDataConnection
			i.SizeUpload = int64(len(h.postFields))
		})
		return []byte{}, nil
	case method == "HEAD":
		header, err := h.ftpHeaderBlock(conn, path)
		if err != nil {
			return nil, h.ftpTransferErr(ctx, err, "Could not get size of %s: %v", path, err)
		}
		h.updateInfo(func(i *Info) { i.HTTPCode = ftp.StatusFile })
		return header, nil
	case method == "GET":
		return h.ftpRetrieve(ctx, conn, path, start)
	}

	return nil, transferErr(ErrFTPMethod, "Unsupported FTP operation: %s", method)
}

func (h *handle) ftpRetrieve(ctx context.Context, conn *ftp.ServerConn, path string, start time.Time) ([]byte, error) {
	var header []byte
	if h.header {
		// The size is optional; servers without SIZE just get no header block.
		header, _ = h.ftpHeaderBlock(conn, path)
	}

	resp, err := conn.Retr(path)
	if err != nil {
		return nil, h.ftpTransferErr(ctx, err, "RETR response: %v", err)
	}

	firstByte := time.Since(start)
	h.updateInfo(func(i *Info) { i.StartTransferTime = firstByte })

	body, err := io.ReadAll(resp)
	if cerr := resp.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return nil, h.ftpTransferErr(ctx, err, "Failure when receiving data from the peer: %v", err)
	}

	h.updateInfo(func(i *Info) {
		i.HTTPCode = ftp.StatusClosingDataConnection
		i.SizeDownload = int64(len(body))
	})

	if !h.returnTransfer {
		return header, nil
	}

	return append(header, body...), nil
}

func (h *handle) ftpList(ctx context.Context, conn *ftp.ServerConn, path string) ([]byte, error) {
	names, err := conn.NameList(path)
	if err != nil {
		return nil, h.ftpTransferErr(ctx, err, "Could not list %s: %v", path, err)
	}

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString("\n")
	}

	h.updateInfo(func(i *Info) {
		i.HTTPCode = ftp.StatusClosingDataConnection
		i.SizeDownload = int64(b.Len())
	})

	return []byte(b.String()), nil
}

// ftpHeaderBlock renders the pseudo headers curl reports for an FTP file
// and records their length as the header size.
func (h *handle) ftpHeaderBlock(conn *ftp.ServerConn, path string) ([]byte, error) {
	size, err := conn.FileSize(path)
	if err != nil {
		return nil, err
	}

	header := []byte(fmt.Sprintf("Content-Length: %d\r\nAccept-ranges: bytes\r\n", size))
	h.updateInfo(func(i *Info) { i.HeaderSize = len(header) })

	return header, nil
}

// ftpCredentials prefers URL userinfo, then OptUserPwd, then anonymous login.
func (h *handle) ftpCredentials(u *url.URL) (string, string) {
	if u.User != nil {
		pass, _ := u.User.Password()
		return u.User.Username(), pass
	}

	if h.userPwd != "" {
		user, pass, _ := strings.Cut(h.userPwd, ":")
		return user, pass
	}

	return "anonymous", "anonymous"
}

func (h *handle) ftpTransferErr(ctx context.Context, err error, format string, args ...any) error {
	var netErr net.Error
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
	if timedOut && h.timeout > 0 {
		return transferErr(err, "Operation timed out after %d milliseconds", h.timeout.Milliseconds())
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		h.updateInfo(func(i *Info) { i.HTTPCode = protoErr.Code })
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return transferErr(fmt.Errorf("%w: %w", ctxErr, err), format, args...)
	}

	return transferErr(err, format, args...)
}

// ftpDialer opens the control and data connections of one FTP transfer.
// Every connection carries the deadline of ctx and is closed when ctx is
// done, so no command or data read outlives the transfer timeout.
type ftpDialer struct {
	ctx    context.Context
	dialer net.Dialer
	tls    *tls.Config

	mu    sync.Mutex
	stops []func() bool
}

func (d *ftpDialer) dial(network, addr string) (net.Conn, error) {
	conn, err := d.dialer.DialContext(d.ctx, network, addr)
	if err != nil {
		return nil, err
	}

	if deadline, ok := d.ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if d.tls != nil {
		conn = tls.Client(conn, d.tls)
	}

	stop := context.AfterFunc(d.ctx, func() { conn.Close() })

	d.mu.Lock()
	d.stops = append(d.stops, stop)
	d.mu.Unlock()

	return conn, nil
}

// release detaches the close callbacks once the transfer is over.
func (d *ftpDialer) release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, stop := range d.stops {
		stop()
	}
	d.stops = nil
}
