// Package pathkey canonicalizes URLs and URL templates into comparable path
// keys, and defines the (method, path) identity used to match endpoints
// against collection items.
//
// Normalization keeps the trailing slash: "/a/" and "/a" are distinct keys.
//
// Format suffixes are stripped repeatedly, not once: "/a.json.xml" and
// "/a.json" both normalize to "/a". Stripping a single suffix would let
// Normalize(Normalize(p)) differ from Normalize(p).
package pathkey

import (
	"net/url"
	"strings"
)

// FormatSuffixes are the Rails format extensions removed from the end of a path.
var FormatSuffixes = []string{".json", ".xml", ".html", ".csv", ".pdf", ".txt"}

// Key identifies one logical endpoint.
type Key struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// New builds a key from a method and a raw path or URL. An empty method
// means GET.
func New(method, rawPath string) Key {
	return Key{Method: NormalizeMethod(method), Path: Normalize(rawPath)}
}

// String renders the key as "METHOD /path".
func (k Key) String() string {
	return k.Method + " " + k.Path
}

// NormalizeMethod upper-cases method and defaults it to GET.
func NormalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "GET"
	}
	return method
}

// Normalize returns the comparable path for a raw path, URL template or full
// URL. Full URLs keep only their path; anything else loses everything from the
// first '?'. A trailing format suffix is then removed.
func Normalize(raw string) string {
	var p string
	if strings.HasPrefix(raw, "http") {
		p = urlPath(raw)
	} else {
		p, _, _ = strings.Cut(raw, "?")
	}
	return StripFormat(p)
}

// FromSegments joins a Postman path segment list into a normalized path.
func FromSegments(segments []string) string {
	return StripFormat("/" + strings.Join(segments, "/"))
}

// StripFormat removes a known format suffix from the end of p. Stacked
// suffixes ("/a.json.xml") are removed until none is left, which keeps
// Normalize idempotent.
func StripFormat(p string) string {
	for {
		stripped := false
		for _, ext := range FormatSuffixes {
			if strings.HasSuffix(p, ext) {
				p = strings.TrimSuffix(p, ext)
				stripped = true
				break
			}
		}
		if !stripped {
			return p
		}
	}
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		p, _, _ := strings.Cut(raw, "?")
		return p
	}
	switch {
	case u.Opaque != "":
		return u.Opaque
	case u.RawPath != "":
		// keeps template braces such as {id} as written
		return u.RawPath
	case strings.ContainsAny(u.Path, "?#"):
		// an encoded '?' must not turn into a query separator on the next pass
		return u.EscapedPath()
	default:
		return u.Path
	}
}
