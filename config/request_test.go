package config_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/oneshot/config"
	"github.com/adamwoolhether/oneshot/ordered"
	"github.com/adamwoolhether/oneshot/session"
	"github.com/adamwoolhether/oneshot/transport"
)

const fullRequest = `
uri: https://api.example.com/search
method: post
query:
  zeta: last
  alpha: 1
url_encode: true
use_cache: true
headers:
  - "Accept: application/json"
  - "X-Trace: abc"
body: "a=1&b=2"
timeout: 1m30s
ssl_verify_host: false
ssl_verify_peer: true
options:
  max_redirs: 5
  user_agent: oneshot/1.0
  connect_timeout: 2s
  ssl_verify_host: strict
  http_header:
    - "X-Extra: 1"
  fresh_connect: true
`

func TestParse_Full(t *testing.T) {
	req, err := config.Parse(strings.NewReader(fullRequest))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if req.URI != "https://api.example.com/search" || req.Method != "post" || req.Body != "a=1&b=2" {
		t.Errorf("unexpected scalars: %+v", req)
	}
	if !req.URLEncode || !req.UseCache {
		t.Errorf("flags not decoded: url_encode=%v use_cache=%v", req.URLEncode, req.UseCache)
	}
	if time.Duration(req.Timeout) != 90*time.Second {
		t.Errorf("timeout = %v", time.Duration(req.Timeout))
	}
	if req.SSLVerifyHost == nil || *req.SSLVerifyHost {
		t.Errorf("ssl_verify_host = %v", req.SSLVerifyHost)
	}
	if req.SSLVerifyPeer == nil || !*req.SSLVerifyPeer {
		t.Errorf("ssl_verify_peer = %v", req.SSLVerifyPeer)
	}
	if diff := cmp.Diff([]string{"Accept: application/json", "X-Trace: abc"}, req.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"zeta", "alpha"}, req.Query.Map().Keys()); diff != "" {
		t.Errorf("query order mismatch (-want +got):\n%s", diff)
	}
	if v, _ := req.Query.Map().Get("alpha"); v != "1" {
		t.Errorf("query alpha = %q", v)
	}

	opts := req.Options.Map()
	expKeys := []transport.Option{
		transport.OptMaxRedirs,
		transport.OptUserAgent,
		transport.OptConnectTimeout,
		transport.OptSSLVerifyHost,
		transport.OptHTTPHeader,
		transport.OptFreshConnect,
	}
	if diff := cmp.Diff(expKeys, opts.Keys()); diff != "" {
		t.Errorf("option order mismatch (-want +got):\n%s", diff)
	}

	expVals := map[transport.Option]any{
		transport.OptMaxRedirs:      5,
		transport.OptUserAgent:      "oneshot/1.0",
		transport.OptConnectTimeout: 2 * time.Second,
		transport.OptSSLVerifyHost:  transport.VerifyHostStrict,
		transport.OptHTTPHeader:     []string{"X-Extra: 1"},
		transport.OptFreshConnect:   true,
	}
	for opt, exp := range expVals {
		got, _ := opts.Get(opt)
		if diff := cmp.Diff(exp, got); diff != "" {
			t.Errorf("option %s mismatch (-want +got):\n%s", opt, diff)
		}
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		exp  []string
	}{
		{name: "missing uri", yaml: "method: GET\n", exp: []string{"uri"}},
		{name: "bad uri", yaml: "uri: not a url\n", exp: []string{"uri"}},
		{name: "bad method", yaml: "uri: http://x.test\nmethod: BREW\n", exp: []string{"method"}},
		{name: "header without colon", yaml: "uri: http://x.test\nheaders: [\"Accept: */*\", \"broken\"]\n", exp: []string{"headers[1]"}},
		{name: "missing cert", yaml: "uri: http://x.test\ncert: /definitely/not/here.pem\n", exp: []string{"cert"}},
		{name: "negative timeout", yaml: "uri: http://x.test\ntimeout: -1s\n", exp: []string{"timeout"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse(strings.NewReader(tc.yaml))

			var fe config.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("exp FieldErrors, got %v", err)
			}
			if diff := cmp.Diff(tc.exp, fe.Fields()); diff != "" {
				t.Errorf("failing fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_DecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		expErr error
		expMsg string
	}{
		{name: "empty", yaml: "", expMsg: "empty request file"},
		{name: "unknown key", yaml: "uri: http://x.test\nverb: GET\n", expMsg: "field verb not found"},
		{name: "bad timeout", yaml: "uri: http://x.test\ntimeout: soon\n", expMsg: "invalid duration"},
		{name: "unknown option", yaml: "uri: http://x.test\noptions:\n  warp_speed: 9\n", expErr: transport.ErrUnknownOption},
		{name: "bad option value", yaml: "uri: http://x.test\noptions:\n  max_redirs: many\n", expErr: transport.ErrInvalidOptionValue},
		{name: "non scalar option", yaml: "uri: http://x.test\noptions:\n  user_agent: [a, b]\n", expErr: transport.ErrInvalidOptionValue},
		{name: "query not a mapping", yaml: "uri: http://x.test\nquery: [a, b]\n", expMsg: "query must be a mapping"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse(strings.NewReader(tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.expErr != nil && !errors.Is(err, tc.expErr) {
				t.Errorf("exp %v, got %v", tc.expErr, err)
			}
			if tc.expMsg != "" && !strings.Contains(err.Error(), tc.expMsg) {
				t.Errorf("exp message containing %q, got %q", tc.expMsg, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yaml")
	if err := os.WriteFile(path, []byte("uri: http://x.test/a\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	req, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.URI != "http://x.test/a" {
		t.Errorf("uri = %q", req.URI)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("exp ErrNotExist, got %v", err)
	}
}

func TestApply(t *testing.T) {
	type seen struct {
		Method, URI, Body, Accept, Cache, Agent string
	}
	var got seen
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = seen{
			Method: r.Method,
			URI:    r.URL.RequestURI(),
			Body:   string(b),
			Accept: r.Header.Get("Accept"),
			Cache:  r.Header.Get("Cache-Control"),
			Agent:  r.UserAgent(),
		}
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	req := config.Request{
		URI:       ts.URL + "/things",
		Query:     config.NewQuery(ordered.P("name", "a b"), ordered.P("n", "1")),
		URLEncode: true,
		UseCache:  true,
		Method:    "put",
		Headers:   []string{"Accept: text/plain"},
		Body:      "payload",
		Timeout:   config.Duration(5 * time.Second),
	}

	var opts config.Options
	if err := yaml.Unmarshal([]byte("user_agent: applied/1\n"), &opts); err != nil {
		t.Fatalf("options: %v", err)
	}
	req.Options = opts

	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	s, err := session.New(session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if err := req.Apply(s); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if s.Method() != session.MethodPut || s.Timeout() != 5*time.Second || !s.UseCache() {
		t.Errorf("session not configured: method=%s timeout=%s cache=%v", s.Method(), s.Timeout(), s.UseCache())
	}

	if err := s.Execute(t.Context()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if msg := s.TransportError(); msg != "" {
		t.Fatalf("transport error: %s", msg)
	}

	exp := seen{
		Method: http.MethodPut,
		URI:    "/things?name=a%20b&n=1",
		Body:   "payload",
		Accept: "text/plain",
		Agent:  "applied/1",
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestRequest_MarshalKeepsOrder(t *testing.T) {
	req := config.Request{
		URI:     "http://x.test",
		Query:   config.NewQuery(ordered.P("b", "2"), ordered.P("a", "1")),
		Timeout: config.Duration(3 * time.Second),
	}

	out, err := yaml.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	back, err := config.Parse(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("parse marshalled request: %v\n%s", err, out)
	}

	if diff := cmp.Diff([]string{"b", "a"}, back.Query.Map().Keys()); diff != "" {
		t.Errorf("query order mismatch (-want +got):\n%s", diff)
	}
	if time.Duration(back.Timeout) != 3*time.Second {
		t.Errorf("timeout = %v", time.Duration(back.Timeout))
	}
}
