// Package throttle rate-limits outbound transfers using a token-bucket
// algorithm from [golang.org/x/time/rate].
//
// # Usage
//
// One [Limiter] is shared by every transfer it should pace. HTTP traffic
// goes through [Limiter.RoundTripper]; other protocols call [Limiter.Wait]
// directly before dialing:
//
//	l, err := throttle.New(
//		10, // transfers per second
//		5,  // burst capacity
//		func() *slog.Logger { return slog.Default() },
//	)
//	httpClient := &http.Client{Transport: l.RoundTripper(http.DefaultTransport)}
//
// When the rate limit is exceeded, transfers block until a token becomes
// available or the context is cancelled.
package throttle
