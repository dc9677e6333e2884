package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Method is an HTTP method an endpoint can declare.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists the accepted methods in rendering order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// ParamType is the declared type of a parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

// Location says where a parameter travels in the request.
type Location string

const (
	LocationQuery  Location = "query"
	LocationPath   Location = "path"
	LocationHeader Location = "header"
	LocationBody   Location = "body"
	LocationForm   Location = "form"
)

// Endpoint describes one HTTP operation derived from the application source
type Endpoint struct {
	Method      Method            `json:"method"`
	Path        string            `json:"path"`
	Controller  string            `json:"controller,omitempty"`
	Action      string            `json:"action,omitempty"`
	Description string            `json:"description,omitempty"`
	Parameters  []Parameter       `json:"parameters,omitempty"`
	Responses   []ResponseExample `json:"responses,omitempty"`
}

// Parameter represents an API parameter. Names are not unique; duplicates
// are kept in order.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Location    Location  `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Default     any       `json:"default,omitzero"`
}

// ResponseExample documents one possible response.
type ResponseExample struct {
	Status      int    `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
	Example     any    `json:"example,omitzero"`
}

// EndpointSet is the document exchanged with the analysis step.
type EndpointSet struct {
	Endpoints []Endpoint `json:"endpoints"`
}

// TypeOrDefault returns the declared type, or "string" when none was given.
func (p Parameter) TypeOrDefault() ParamType {
	if p.Type == "" {
		return TypeString
	}
	return p.Type
}

// HasDefault reports whether a default value was declared.
func (p Parameter) HasDefault() bool {
	return p.Default != nil
}

// DefaultString renders the declared default as a request value. Strings are
// used verbatim, other values as compact JSON, a missing default as "".
func (p Parameter) DefaultString() string {
	switch v := p.Default.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// StatusOrDefault returns the status code, or 200 when none was given.
func (r ResponseExample) StatusOrDefault() int {
	if r.Status == 0 {
		return 200
	}
	return r.Status
}

// HasExample reports whether the example carries content. Empty objects,
// arrays and strings count as no example.
func (r ResponseExample) HasExample() bool {
	switch v := r.Example.(type) {
	case nil:
		return false
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return true
	}
}

// ByLocation returns the parameters declared at loc, in order.
func (e Endpoint) ByLocation(loc Location) []Parameter {
	var out []Parameter
	for _, p := range e.Parameters {
		if p.Location == loc {
			out = append(out, p)
		}
	}
	return out
}

// IsKnown reports whether m is one of the accepted methods.
func (m Method) IsKnown() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMethod upper-cases s and defaults it to GET.
func ParseMethod(s string) Method {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return MethodGet
	}
	return Method(s)
}
