package session

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is the request verb of a session.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodHead    Method = http.MethodHead
	MethodDelete  Method = http.MethodDelete
	MethodPatch   Method = http.MethodPatch
	MethodOptions Method = http.MethodOptions
)

var methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodHead,
	MethodDelete,
	MethodPatch,
	MethodOptions,
}

// ParseMethod resolves s, case-insensitively, to a supported Method.
func ParseMethod(s string) (Method, error) {
	upper := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range methods {
		if m == upper {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
}

func (m Method) valid() bool {
	for _, known := range methods {
		if m == known {
			return true
		}
	}

	return false
}
