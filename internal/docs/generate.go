// Package docs produces the descriptive text attached to a collection and
// its requests, and renders endpoint sets as standalone documentation.
package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"postman-sync/internal/merge"
	"postman-sync/internal/pathkey"
	"postman-sync/internal/types"
)

// TimestampLayout is used for every "generated on" line.
const TimestampLayout = "2006-01-02 15:04:05"

// Content types of a request body.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// BodyParameters returns the parameters that make up the request body and
// their content type. Form parameters take precedence over JSON body
// parameters when an endpoint declares both.
func BodyParameters(ep types.Endpoint) ([]types.Parameter, string) {
	if form := ep.ByLocation(types.LocationForm); len(form) > 0 {
		return form, ContentTypeForm
	}
	if body := ep.ByLocation(types.LocationBody); len(body) > 0 {
		return body, ContentTypeJSON
	}
	return nil, ""
}

// RequestDocumentation renders the per-request documentation block, wrapped
// in the request sentinel markers.
func RequestDocumentation(ep types.Endpoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", ep.Method, pathkey.Normalize(ep.Path))

	if ep.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", ep.Description)
	}
	if ep.Controller != "" && ep.Action != "" {
		fmt.Fprintf(&b, "**Controller:** `%s#%s`\n\n", ep.Controller, ep.Action)
	}

	if query := ep.ByLocation(types.LocationQuery); len(query) > 0 {
		b.WriteString("## Query Parameters\n\n")
		for _, p := range query {
			fmt.Fprintf(&b, "- **%s** (%s, %s): %s\n", p.Name, p.TypeOrDefault(), requiredWord(p), p.Description)
		}
		b.WriteString("\n")
	}
	if path := ep.ByLocation(types.LocationPath); len(path) > 0 {
		b.WriteString("## Path Parameters\n\n")
		for _, p := range path {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", p.Name, p.TypeOrDefault(), p.Description)
		}
		b.WriteString("\n")
	}
	if headers := ep.ByLocation(types.LocationHeader); len(headers) > 0 {
		b.WriteString("## Headers\n\n")
		for _, p := range headers {
			fmt.Fprintf(&b, "- **%s**: %s\n", p.Name, p.Description)
		}
		b.WriteString("\n")
	}
	if body, contentType := BodyParameters(ep); len(body) > 0 {
		b.WriteString("## Request Body\n\n")
		fmt.Fprintf(&b, "**Content-Type:** `%s`\n\n", contentType)
		for _, p := range body {
			fmt.Fprintf(&b, "- **%s** (%s, %s): %s\n", p.Name, p.TypeOrDefault(), requiredWord(p), p.Description)
		}
		b.WriteString("\n")
	}

	if len(ep.Responses) > 0 {
		b.WriteString("## Responses\n\n")
		for _, r := range ep.Responses {
			fmt.Fprintf(&b, "### %d - %s\n\n", r.StatusOrDefault(), r.Description)
			if r.HasExample() {
				fmt.Fprintf(&b, "```json\n%s\n```\n\n", IndentJSON(r.Example))
			}
		}
	}

	return merge.RequestMarkers.Wrap(b.String())
}

// CollectionDescription renders the collection-level overview, wrapped in
// the collection sentinel markers.
func CollectionDescription(set types.EndpointSet, generatedAt time.Time) string {
	if len(set.Endpoints) == 0 {
		return "API Documentation - No endpoints available"
	}

	var b strings.Builder
	b.WriteString("# API Collection Documentation\n\n")
	fmt.Fprintf(&b, "This collection contains %d API endpoint(s):\n\n", len(set.Endpoints))
	for _, ep := range set.Endpoints {
		fmt.Fprintf(&b, "- **%s %s**", ep.Method, pathkey.Normalize(ep.Path))
		if ep.Description != "" {
			fmt.Fprintf(&b, " - %s", FirstSentence(ep.Description))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n*Auto-generated on %s*\n", generatedAt.Format(TimestampLayout))

	return merge.CollectionMarkers.Wrap(b.String())
}

// FirstSentence returns s up to and including its first period.
func FirstSentence(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i+1]
	}
	return s
}

// IndentJSON renders v as JSON indented by two spaces without HTML escaping.
func IndentJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func requiredWord(p types.Parameter) string {
	if p.Required {
		return "Required"
	}
	return "Optional"
}
