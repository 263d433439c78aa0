package session_test

import (
	"context"
	"errors"
	"sync"

	"github.com/adamwoolhether/oneshot/transport"
)

type setCall struct {
	Opt   transport.Option
	Value any
}

type fakeHandle struct {
	mu     sync.Mutex
	calls  []setCall
	reject transport.Option
	raw    []byte
	err    error
	info   transport.Info
	closed int
}

func (h *fakeHandle) SetOption(opt transport.Option, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if opt == h.reject {
		return transport.ErrInvalidOptionValue
	}
	h.calls = append(h.calls, setCall{Opt: opt, Value: value})

	return nil
}

func (h *fakeHandle) Perform(context.Context) ([]byte, error) {
	return h.raw, h.err
}

func (h *fakeHandle) Info() transport.Info { return h.info }

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed++

	return nil
}

// last returns the value of the final write of opt.
func (h *fakeHandle) last(opt transport.Option) (any, bool) {
	for i := len(h.calls) - 1; i >= 0; i-- {
		if h.calls[i].Opt == opt {
			return h.calls[i].Value, true
		}
	}

	return nil, false
}

type fakeTransport struct {
	handle *fakeHandle
	err    error
	nilOK  bool
	uris   []string
}

func (f *fakeTransport) Open(uri string) (transport.Handle, error) {
	f.uris = append(f.uris, uri)

	switch {
	case f.err != nil:
		return nil, f.err
	case f.nilOK:
		return nil, nil
	}

	return f.handle, nil
}

var errOpen = errors.New("no transport available")
