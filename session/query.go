package session

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/adamwoolhether/oneshot/ordered"
)

// BuildURI appends params to uri in insertion order. The first parameter is
// joined with "?" unless uri already carries a query, in which case every
// parameter is joined with "&". Names are written as given. When encode is
// set, values are converted to UTF-8 and percent-encoded per RFC 3986.
func BuildURI(uri string, params *ordered.Map[string, string], encode bool) string {
	if params.Len() == 0 {
		return uri
	}

	var b strings.Builder
	b.WriteString(uri)

	sep := firstSeparator(uri)
	for name, value := range params.All() {
		if encode {
			value = rawURLEncode(toUTF8(value))
		}

		b.WriteString(sep)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(value)

		sep = "&"
	}

	return b.String()
}

// firstSeparator picks what joins the first parameter onto uri. A URI
// ending in a bare "?" already opened an empty query.
func firstSeparator(uri string) string {
	u, err := url.Parse(uri)
	switch {
	case err != nil:
		before, _, _ := strings.Cut(uri, "#")
		switch {
		case strings.HasSuffix(before, "?"):
			return ""
		case strings.Contains(before, "?"):
			return "&"
		}
		return "?"
	case u.RawQuery != "":
		return "&"
	case u.ForceQuery:
		return ""
	}

	return "?"
}

// rawURLEncode percent-encodes everything but RFC 3986 unreserved
// characters, so a space becomes %20 rather than +.
func rawURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// toUTF8 returns s unchanged when it is valid UTF-8 and otherwise reads it
// as ISO-8859-1.
func toUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return strings.ToValidUTF8(s, string(utf8.RuneError))
	}

	return out
}
