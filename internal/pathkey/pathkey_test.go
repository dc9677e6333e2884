package pathkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain path", "/users", "/users"},
		{"json suffix", "/users.json", "/users"},
		{"xml suffix", "/reports/1.xml", "/reports/1"},
		{"query string", "/users?active=true", "/users"},
		{"query and suffix", "/users.csv?page=2", "/users"},
		{"full url", "https://api.example.com/v1/users.json?x=1", "/v1/users"},
		{"full url with template", "http://localhost:3000/users/{id}", "/users/{id}"},
		{"rails template", "/users/:id.json", "/users/:id"},
		{"suffix not final", "/users.json/edit", "/users.json/edit"},
		{"unknown suffix", "/users.yaml", "/users.yaml"},
		{"trailing slash kept", "/a/", "/a/"},
		{"empty", "", ""},
		{"stacked suffixes", "/a.json.xml", "/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"/users.json",
		"/users?active=true",
		"https://example.com/a%3Fb.json",
		"http://example.com/a%20b",
		"http:opaque?x",
		"httpbin/anything.txt",
		"http%zz",
		"/a/",
		"",
		"?only=query",
		"/x.pdf.pdf",
		"https://host",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTrailingSlashDistinct(t *testing.T) {
	assert.NotEqual(t, Normalize("/a/"), Normalize("/a"))
}

func TestFromSegments(t *testing.T) {
	assert.Equal(t, "/api/users", FromSegments([]string{"api", "users.json"}))
	assert.Equal(t, "/", FromSegments(nil))
	assert.Equal(t, "/a/", FromSegments([]string{"a", ""}))
}

func TestKey(t *testing.T) {
	k := New("get", "/widgets.json?page=1")
	assert.Equal(t, Key{Method: "GET", Path: "/widgets"}, k)
	assert.Equal(t, "GET /widgets", k.String())

	assert.Equal(t, "GET", New("", "/x").Method)
}
