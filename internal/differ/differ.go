// Package differ decides whether a regenerated collection item differs from
// the stored one in a way worth reporting.
//
// Only the shape of a request is compared: header keys, query keys, body
// presence and mode. Values and body content are not. Descriptions are
// compared exactly.
package differ

import (
	"unicode/utf8"

	"postman-sync/internal/postman"
)

// Axis names a compared part of an item.
type Axis string

const (
	AxisHeaders     Axis = "headers"
	AxisURL         Axis = "url"
	AxisBody        Axis = "body"
	AxisDescription Axis = "description"
)

// Action names what an update does to an axis.
type Action string

const (
	ActionHeadersUpdated       Action = "headers_updated"
	ActionURLParametersUpdated Action = "url_parameters_updated"
	ActionRequestBodyUpdated   Action = "request_body_updated"
	ActionDocumentationUpdated Action = "documentation_updated"
)

// Change records one differing axis. Existing and New hold the header counts
// for AxisHeaders and the description lengths in characters for
// AxisDescription; they are zero for the other axes.
type Change struct {
	Axis     Axis   `json:"axis"`
	Action   Action `json:"action"`
	Existing int    `json:"existing,omitempty"`
	New      int    `json:"new,omitempty"`
}

// Result is the outcome of comparing two items.
type Result struct {
	HasChanges    bool     `json:"has_changes"`
	Request       []Change `json:"request_changes,omitempty"`
	Documentation []Change `json:"documentation_changes,omitempty"`
}

// Axis returns the change recorded for a, if any.
func (r Result) Axis(a Axis) (Change, bool) {
	for _, c := range r.Request {
		if c.Axis == a {
			return c, true
		}
	}
	for _, c := range r.Documentation {
		if c.Axis == a {
			return c, true
		}
	}
	return Change{}, false
}

// Diff compares a stored item with its regenerated candidate. Every axis is
// checked; any difference makes HasChanges true.
func Diff(existing, fresh postman.Item) Result {
	oldReq, newReq := request(existing), request(fresh)
	var r Result

	if HeadersDiffer(oldReq.Header, newReq.Header) {
		r.Request = append(r.Request, Change{
			Axis:     AxisHeaders,
			Action:   ActionHeadersUpdated,
			Existing: len(oldReq.Header),
			New:      len(newReq.Header),
		})
	}

	if QueryDiffers(query(oldReq.URL), query(newReq.URL)) {
		r.Request = append(r.Request, Change{Axis: AxisURL, Action: ActionURLParametersUpdated})
	}

	if BodyDiffers(oldReq.Body, newReq.Body) {
		r.Request = append(r.Request, Change{Axis: AxisBody, Action: ActionRequestBodyUpdated})
	}

	if oldReq.Description != newReq.Description {
		r.Documentation = append(r.Documentation, Change{
			Axis:     AxisDescription,
			Action:   ActionDocumentationUpdated,
			Existing: utf8.RuneCountInString(string(oldReq.Description)),
			New:      utf8.RuneCountInString(string(newReq.Description)),
		})
	}

	r.HasChanges = len(r.Request) > 0 || len(r.Documentation) > 0
	return r
}

// HeadersDiffer reports whether the header lists differ in length or in
// their set of keys. Order and values are ignored.
func HeadersDiffer(existing, fresh postman.Headers) bool {
	if len(existing) != len(fresh) {
		return true
	}
	return !sameKeys(existing.Keys(), fresh.Keys())
}

// QueryDiffers reports whether the query lists differ in length or in their
// set of keys.
func QueryDiffers(existing, fresh []postman.Param) bool {
	if len(existing) != len(fresh) {
		return true
	}
	return !sameKeys(paramKeys(existing), paramKeys(fresh))
}

// BodyDiffers reports whether exactly one body is present, or both are and
// their modes differ.
func BodyDiffers(existing, fresh *postman.Body) bool {
	oldEmpty, newEmpty := existing.IsEmpty(), fresh.IsEmpty()
	switch {
	case oldEmpty && newEmpty:
		return false
	case oldEmpty || newEmpty:
		return true
	default:
		return existing.Mode != fresh.Mode
	}
}

func request(it postman.Item) postman.Request {
	if it.Request == nil {
		return postman.Request{}
	}
	return *it.Request
}

func query(u *postman.URL) []postman.Param {
	if u == nil {
		return nil
	}
	return u.Query
}

func paramKeys(params []postman.Param) []string {
	keys := make([]string, len(params))
	for i, p := range params {
		keys[i] = p.Key
	}
	return keys
}

func sameKeys(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, k := range b {
		if _, ok := set[k]; !ok {
			return false
		}
		other[k] = struct{}{}
	}
	return len(set) == len(other)
}
