package session_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/adamwoolhether/oneshot/ordered"
	"github.com/adamwoolhether/oneshot/session"
)

func ExampleSession() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Query", r.URL.RawQuery)
		fmt.Fprint(w, "hello")
	}))
	defer ts.Close()

	s, err := session.New(session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		fmt.Println(err)
		return
	}

	query := ordered.New(ordered.P("greeting", "hi there"))
	if err := s.Configure(ts.URL, session.WithQuery(query), session.WithURLEncoding()); err != nil {
		fmt.Println(err)
		return
	}
	if err := s.Execute(context.Background()); err != nil {
		fmt.Println(err)
		return
	}

	code, _ := s.HTTPCode()
	body, _ := s.Body()
	fmt.Println(code, s.ResponseHeaders().First("X-Query"), string(body))
	// Output: 200 greeting=hi%20there hello
}

func ExampleParseHeaders() {
	h := session.ParseHeaders("HTTP/1.1 200 OK\r\nVary: Accept\r\nVary: Origin\r\n")

	fmt.Println(h.First(session.StatusKey))
	fmt.Println(h.Values("Vary"))
	// Output:
	// HTTP/1.1 200 OK
	// [Accept Origin]
}
