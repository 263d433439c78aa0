package session

import (
	"context"
	"log/slog"
)

// Debug logs the full session state at debug level.
func (s *Session) Debug(ctx context.Context) {
	s.logger.DebugContext(ctx, "session state", "session", s)
}

// LogValue implements slog.LogValuer.
func (s *Session) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", s.id.String()),
		slog.String("state", s.state.String()),
		slog.String("uri", s.uri),
		slog.String("method", string(s.effectiveMethod())),
		slog.Any("headers", s.headers),
		slog.String("post_fields", s.postFields),
		slog.Duration("timeout", s.timeout),
		slog.Bool("use_cache", s.useCache),
	}

	if v, ok := s.SSLVerifyHost(); ok {
		attrs = append(attrs, slog.Bool("ssl_verify_host", v))
	}
	if v, ok := s.SSLVerifyPeer(); ok {
		attrs = append(attrs, slog.Bool("ssl_verify_peer", v))
	}
	if v, ok := s.Cert(); ok {
		attrs = append(attrs, slog.String("cert", v))
	}

	if s.customOptions.Len() > 0 {
		custom := make([]any, 0, s.customOptions.Len())
		for opt, value := range s.customOptions.All() {
			custom = append(custom, slog.Any(opt.String(), value))
		}
		attrs = append(attrs, slog.Group("custom_options", custom...))
	}

	if s.state == stateDone {
		attrs = append(attrs, slog.Group("response",
			slog.Int("http_code", s.response.code),
			slog.Any("headers", s.response.headers),
			slog.Int("body_size", len(s.response.body)),
			slog.Bool("has_body", s.response.hasBody),
			slog.String("transport_error", s.TransportError()),
			slog.Any("info", s.response.info.Map()),
		))
	}

	return slog.GroupValue(attrs...)
}
