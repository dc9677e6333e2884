package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	syncerrors "postman-sync/internal/errors"
)

const inputSource = "API data"

// DecodeEndpointSet turns any accepted representation of endpoint data into
// its canonical parsed form. It accepts a JSON string or bytes, an already
// decoded JSON value (map or slice) and EndpointSet values. Both the
// {"endpoints": [...]} document and a bare array of endpoints are accepted.
//
// Methods are upper-cased and default to GET; a method outside the accepted
// set is reported as malformed input.
func DecodeEndpointSet(input any) (EndpointSet, error) {
	var set EndpointSet

	switch v := input.(type) {
	case EndpointSet:
		set = cloneSet(v)
	case *EndpointSet:
		if v == nil {
			return EndpointSet{}, syncerrors.NewMalformedInputError(inputSource, "no data provided", nil)
		}
		set = cloneSet(*v)
	case string:
		return DecodeEndpointSet([]byte(v))
	case json.RawMessage:
		return DecodeEndpointSet([]byte(v))
	case []byte:
		parsed, err := decodeBytes(v)
		if err != nil {
			return EndpointSet{}, err
		}
		set = parsed
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return EndpointSet{}, syncerrors.NewMalformedInputError(inputSource, "cannot encode value", err)
		}
		return DecodeEndpointSet(b)
	case nil:
		return EndpointSet{}, syncerrors.NewMalformedInputError(inputSource, "no data provided", nil)
	default:
		return EndpointSet{}, syncerrors.NewMalformedInputError(inputSource,
			fmt.Sprintf("must be a JSON string or object, got %T", input), nil)
	}

	if err := normalize(&set); err != nil {
		return EndpointSet{}, err
	}
	return set, nil
}

func decodeBytes(b []byte) (EndpointSet, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return EndpointSet{}, syncerrors.NewMalformedInputError(inputSource, "empty document", nil)
	}

	if trimmed[0] == '[' {
		var endpoints []Endpoint
		if err := json.Unmarshal(trimmed, &endpoints); err != nil {
			return EndpointSet{}, syncerrors.NewMalformedInputError(inputSource, "invalid JSON", err)
		}
		return EndpointSet{Endpoints: endpoints}, nil
	}

	var set EndpointSet
	if err := json.Unmarshal(trimmed, &set); err != nil {
		return EndpointSet{}, syncerrors.NewMalformedInputError(inputSource, "invalid JSON", err)
	}
	return set, nil
}

func normalize(set *EndpointSet) error {
	for i := range set.Endpoints {
		ep := &set.Endpoints[i]
		ep.Method = ParseMethod(string(ep.Method))
		if !ep.Method.IsKnown() {
			return syncerrors.NewMalformedInputError(inputSource,
				fmt.Sprintf("endpoint %d (%s): unsupported method %q", i, ep.Path, ep.Method), nil)
		}
		for j := range ep.Parameters {
			p := &ep.Parameters[j]
			p.Type = ParamType(strings.ToLower(string(p.Type)))
			p.Location = Location(strings.ToLower(string(p.Location)))
		}
	}
	return nil
}

func cloneSet(s EndpointSet) EndpointSet {
	out := EndpointSet{Endpoints: make([]Endpoint, len(s.Endpoints))}
	for i, ep := range s.Endpoints {
		ep.Parameters = append([]Parameter(nil), ep.Parameters...)
		ep.Responses = append([]ResponseExample(nil), ep.Responses...)
		out.Endpoints[i] = ep
	}
	return out
}
