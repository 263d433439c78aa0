package session

import "strings"

// StatusKey holds the status line of the response in parsed headers.
const StatusKey = "Status"

// HeaderValue is either a [Single] value, for a header seen once, or
// [Multiple] values, for a header seen more than once.
type HeaderValue interface {
	// Values returns the value(s) in occurrence order.
	Values() []string
	isHeaderValue()
}

// Single is the value of a header that occurred once.
type Single string

func (s Single) Values() []string { return []string{string(s)} }
func (Single) isHeaderValue()     {}

// Multiple holds every value of a header that occurred more than once.
type Multiple []string

func (m Multiple) Values() []string { return append([]string(nil), m...) }
func (Multiple) isHeaderValue()     {}

// Headers maps header names, compared case-sensitively, to their values.
type Headers map[string]HeaderValue

// Get returns the value stored under key.
func (h Headers) Get(key string) (HeaderValue, bool) {
	v, ok := h[key]
	return v, ok
}

// Values returns every value stored under key, or nil.
func (h Headers) Values(key string) []string {
	v, ok := h[key]
	if !ok {
		return nil
	}

	return v.Values()
}

// First returns the first value stored under key, or "".
func (h Headers) First(key string) string {
	if vals := h.Values(key); len(vals) > 0 {
		return vals[0]
	}

	return ""
}

func (h Headers) add(key, value string) {
	switch existing := h[key].(type) {
	case Single:
		h[key] = Multiple{string(existing), value}
	case Multiple:
		h[key] = append(existing, value)
	default:
		h[key] = Single(value)
	}
}

// ParseHeaders parses a raw header block.
//
// Lines starting with "HTTP/" are status lines and overwrite [StatusKey],
// so with several hops the last status wins. Other lines are split on the
// first colon; lines without one are ignored. A name seen twice turns its
// [Single] value into [Multiple].
func ParseHeaders(raw string) Headers {
	headers := make(Headers)

	for line := range strings.SplitSeq(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "HTTP/") {
			headers[StatusKey] = Single(line)
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		headers.add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	return headers
}
