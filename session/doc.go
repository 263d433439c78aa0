// Package session implements a single-use request client.
//
// A Session is configured once with a URI and optional query parameters,
// adjusted through its setters, and executed once. Execution applies the
// session's settings to a [transport.Handle] in a fixed order, performs one
// transfer and splits the result into parsed headers and a body. Transfer
// failures are kept as data on the session:
//
//	s, err := session.New()
//	if err != nil {
//		return err
//	}
//
//	query := ordered.New(ordered.P("q", "golang"))
//	if err := s.Configure("https://example.com/search", session.WithQuery(query), session.WithURLEncoding()); err != nil {
//		return err
//	}
//	if err := s.Execute(ctx); err != nil {
//		return err
//	}
//
//	if msg := s.TransportError(); msg != "" {
//		return errors.New(msg)
//	}
//	body, _ := s.Body()
//
// A second Configure or Execute on the same session fails with
// [ErrAlreadyRunning] or [ErrExecuted].
package session
