package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Limiter paces transfers with a token bucket limiter.
type Limiter struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	logFn   func() *slog.Logger
}

// New returns a Limiter allowing rps transfers per second with the given burst.
// logFn lazily resolves the logger at wait time, making option ordering
// irrelevant. A nil-returning logFn disables the exhaustion logs.
func New(rps, burst int, logFn func() *slog.Logger) (*Limiter, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}

	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	l := &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		logFn:   logFn,
	}

	return l, nil
}

// Wait blocks until a token is available for a transfer to target,
// or the context ends.
func (l *Limiter) Wait(ctx context.Context, target string) error {
	if l == nil || l.limiter == nil {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	var waited time.Duration
	logger := l.logFn()
	if logger != nil && l.limiter.Tokens() < 1 {
		logger.Info("throttle tokens exhausted", "rate", l.rps, "burst", l.burst, "target", target)

		defer func() {
			logger.Info("throttle wait complete", "waited", waited.String(), "rate", l.rps, "burst", l.burst)
		}()
	}

	start := time.Now()

	err := l.limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return nil
}

// RoundTripper wraps next so every request first waits on l.
func (l *Limiter) RoundTripper(next http.RoundTripper) http.RoundTripper {
	return roundTripper{limiter: l, next: next}
}

type roundTripper struct {
	limiter *Limiter
	next    http.RoundTripper
}

func (rt roundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := rt.limiter.Wait(r.Context(), r.URL.Host); err != nil {
		return nil, err
	}

	return rt.next.RoundTrip(r)
}
