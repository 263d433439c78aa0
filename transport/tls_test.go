package transport_test

import (
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamwoolhether/oneshot/transport"
)

func writeCABundle(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ca.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ts.Certificate().Raw})
	if err := os.WriteFile(path, block, 0o600); err != nil {
		t.Fatalf("writing ca bundle: %v", err)
	}

	return path
}

func TestHTTP_TLSVerification(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "secure")
	}))
	defer ts.Close()

	caPath := writeCABundle(t, ts)
	// The test certificate covers 127.0.0.1 and example.com, not localhost.
	localhostURL := strings.Replace(ts.URL, "127.0.0.1", "localhost", 1)

	testCases := []struct {
		name    string
		url     string
		opts    map[transport.Option]any
		wantErr bool
	}{
		{
			name:    "untrusted by default",
			url:     ts.URL,
			wantErr: true,
		},
		{
			name: "peer verification off",
			url:  ts.URL,
			opts: map[transport.Option]any{
				transport.OptSSLVerifyPeer: false,
			},
		},
		{
			name: "trusted via ca bundle",
			url:  ts.URL,
			opts: map[transport.Option]any{
				transport.OptCAInfo: caPath,
			},
		},
		{
			name: "trusted chain with host mismatch",
			url:  localhostURL,
			opts: map[transport.Option]any{
				transport.OptCAInfo: caPath,
			},
			wantErr: true,
		},
		{
			name: "host verification off tolerates host mismatch",
			url:  localhostURL,
			opts: map[transport.Option]any{
				transport.OptCAInfo:        caPath,
				transport.OptSSLVerifyHost: transport.VerifyHostOff,
			},
		},
		{
			name: "host verification off still checks the chain",
			url:  localhostURL,
			opts: map[transport.Option]any{
				transport.OptSSLVerifyHost: transport.VerifyHostOff,
				transport.OptSSLVerifyPeer: true,
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := open(t, newClient(t), tc.url, defaults(tc.opts))

			raw, err := h.Perform(t.Context())
			if tc.wantErr {
				if err == nil {
					t.Fatal("exp tls failure")
				}
				if !strings.HasPrefix(err.Error(), "SSL certificate problem") {
					t.Errorf("exp certificate problem message, got %q", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("exp success, got: %v", err)
			}
			if body := string(raw[h.Info().HeaderSize:]); body != "secure" {
				t.Errorf("unexpected body %q", body)
			}
			if h.Info().AppConnectTime <= 0 {
				t.Errorf("exp tls handshake time to be recorded")
			}
		})
	}
}

func TestHTTP_CABundleErrors(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "bogus.pem")
	if err := os.WriteFile(bogus, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{bogus, filepath.Join(t.TempDir(), "missing.pem")} {
		h := open(t, newClient(t), "https://127.0.0.1:1", defaults(map[transport.Option]any{
			transport.OptCAInfo: path,
		}))

		_, err := h.Perform(t.Context())
		if !errors.Is(err, transport.ErrCABundle) {
			t.Errorf("%s: exp ErrCABundle, got: %v", path, err)
		}
	}
}
