package postman

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"postman-sync/internal/docs"
	"postman-sync/internal/pathkey"
	"postman-sync/internal/types"
)

// Body modes written by Encode.
const (
	ModeRaw        = "raw"
	ModeURLEncoded = "urlencoded"
)

// Encode converts an endpoint into a collection item. With
// includeDocumentation the request description is the generated
// documentation block, otherwise the endpoint description.
func Encode(ep types.Endpoint, includeDocumentation bool) Item {
	method := pathkey.NormalizeMethod(string(ep.Method))
	cleanPath := pathkey.Normalize(ep.Path)

	headers := Headers{}
	for _, p := range ep.ByLocation(types.LocationHeader) {
		headers = append(headers, Header{Key: p.Name, Value: "", Description: Description(p.Description)})
	}
	bodyParams, contentType := docs.BodyParameters(ep)
	if len(bodyParams) > 0 {
		headers = append(headers, Header{Key: "Content-Type", Value: contentType})
	}

	url := &URL{Raw: cleanPath, Path: pathSegments(cleanPath)}
	for _, p := range ep.ByLocation(types.LocationQuery) {
		url.Query = append(url.Query, Param{
			Key:         p.Name,
			Value:       p.DefaultString(),
			Description: Description(p.Description),
		})
	}

	req := &Request{
		Method: method,
		Header: headers,
		URL:    url,
	}

	if includeDocumentation {
		req.Description = Description(docs.RequestDocumentation(ep))
	} else if ep.Description != "" {
		req.Description = Description(ep.Description)
	}

	switch contentType {
	case docs.ContentTypeForm:
		body := &Body{Mode: ModeURLEncoded, URLEncoded: []Param{}}
		for _, p := range bodyParams {
			body.URLEncoded = append(body.URLEncoded, Param{
				Key:         p.Name,
				Value:       p.DefaultString(),
				Description: Description(p.Description),
			})
		}
		req.Body = body
	case docs.ContentTypeJSON:
		req.Body = &Body{
			Mode: ModeRaw,
			Raw:  jsonBody(bodyParams),
			Options: map[string]any{
				"raw": map[string]any{"language": "json"},
			},
		}
	}

	return Item{
		Name:    method + " " + cleanPath,
		Request: req,
	}
}

// DecodeKey returns the endpoint key of a request item. The path comes from
// the URL segment list when there is one, otherwise from the raw URL.
func DecodeKey(it Item) pathkey.Key {
	if it.Request == nil {
		return pathkey.Key{Method: pathkey.NormalizeMethod(""), Path: ""}
	}
	return pathkey.Key{
		Method: pathkey.NormalizeMethod(it.Request.Method),
		Path:   URLPath(it.Request.URL),
	}
}

// URLPath returns the normalized path of a request URL.
func URLPath(u *URL) string {
	switch {
	case u == nil:
		return ""
	case u.Path != nil:
		return pathkey.FromSegments(u.Path)
	default:
		return pathkey.Normalize(u.Raw)
	}
}

// pathSegments splits an absolute path into URL segments, keeping empty
// segments so a trailing slash survives DecodeKey. Relative or empty paths
// have no segments and are matched through the raw URL.
func pathSegments(p string) []string {
	if !strings.HasPrefix(p, "/") {
		return nil
	}
	return strings.Split(p[1:], "/")
}

// jsonBody renders the example JSON body. Keys keep parameter order; a
// repeated name keeps its first position and its last value.
func jsonBody(params []types.Parameter) string {
	var names []string
	values := make(map[string]any, len(params))
	for _, p := range params {
		if _, seen := values[p.Name]; !seen {
			names = append(names, p.Name)
		}
		values[p.Name] = exampleValue(p)
	}

	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			compact.WriteByte(',')
		}
		compact.Write(marshalValue(name))
		compact.WriteByte(':')
		compact.Write(marshalValue(values[name]))
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return compact.String()
	}
	return out.String()
}

func exampleValue(p types.Parameter) any {
	if p.HasDefault() {
		return p.Default
	}
	switch p.TypeOrDefault() {
	case types.TypeInteger:
		return 0
	case types.TypeBoolean:
		return false
	case types.TypeArray:
		return []any{}
	case types.TypeObject:
		return map[string]any{}
	default:
		return ""
	}
}

func marshalValue(v any) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		b, _ := json.Marshal(fmt.Sprint(v))
		return b
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
