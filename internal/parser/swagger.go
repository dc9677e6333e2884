package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/types"
)

// SwaggerParser derives endpoint descriptors from a Swagger/OpenAPI document
type SwaggerParser struct {
	client *http.Client
	logger zerolog.Logger
}

// NewSwaggerParser creates a new instance of SwaggerParser
func NewSwaggerParser(logger zerolog.Logger) *SwaggerParser {
	return &SwaggerParser{
		client: &http.Client{},
		logger: logger.With().Str("component", "openapi").Logger(),
	}
}

// CandidateURLs lists the locations probed under a base URL, in order.
func CandidateURLs(baseURL string) []string {
	base := strings.TrimSuffix(baseURL, "/")
	return []string{
		base + "/swagger/v1/swagger.json",
		base + "/swagger.json",
		base + "/v1/swagger.json",
		base + "/api/swagger.json",
		base + "/api/v1/swagger.json",
		base + "/api-docs",
		base + "/openapi.json",
		base + "/swagger/v1/swagger",
		base + "/swagger",
	}
}

// ParseURL fetches the document from the first candidate location under
// baseURL that serves one.
func (p *SwaggerParser) ParseURL(ctx context.Context, baseURL string) (types.EndpointSet, error) {
	var lastErr error
	for _, url := range CandidateURLs(baseURL) {
		p.logger.Debug().Str("url", url).Msg("trying to fetch OpenAPI documentation")
		doc, err := p.fetchOpenAPIDoc(ctx, url)
		if err == nil {
			p.logger.Info().Str("url", url).Msg("fetched OpenAPI documentation")
			return Extract(doc), nil
		}
		if ctx.Err() != nil {
			return types.EndpointSet{}, ctx.Err()
		}
		lastErr = err
	}
	return types.EndpointSet{}, syncerrors.NewCollaboratorError(
		"fetch OpenAPI documentation", 0, "no known location served a document", lastErr)
}

// ParseFile reads a JSON or YAML OpenAPI document from disk.
func (p *SwaggerParser) ParseFile(path string) (types.EndpointSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.EndpointSet{}, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}
	return ParseData(data)
}

// ParseData parses a JSON or YAML OpenAPI document.
func ParseData(data []byte) (types.EndpointSet, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return types.EndpointSet{}, syncerrors.NewMalformedInputError("OpenAPI document", "failed to parse", err)
	}
	return Extract(doc), nil
}

func (p *SwaggerParser) fetchOpenAPIDoc(ctx context.Context, url string) (*openapi3.T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := openapi3.NewLoader().LoadFromData(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %w", err)
	}
	return doc, nil
}

// Extract converts every operation of doc into an endpoint. Endpoints are
// sorted by path, then by method in GET, POST, PUT, PATCH, DELETE order.
// Templated segments ("{id}") become Rails style (":id").
func Extract(doc *openapi3.T) types.EndpointSet {
	set := types.EndpointSet{Endpoints: []types.Endpoint{}}
	if doc == nil || doc.Paths == nil {
		return set
	}

	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		for _, method := range types.Methods {
			op := item.GetOperation(string(method))
			if op == nil {
				continue
			}
			set.Endpoints = append(set.Endpoints, endpoint(method, railsPath(path), item, op))
		}
	}
	return set
}

func endpoint(method types.Method, path string, item *openapi3.PathItem, op *openapi3.Operation) types.Endpoint {
	ep := types.Endpoint{
		Method:      method,
		Path:        path,
		Action:      op.OperationID,
		Description: op.Description,
	}
	if ep.Description == "" {
		ep.Description = op.Summary
	}
	if len(op.Tags) > 0 {
		ep.Controller = op.Tags[0]
	}

	// operation parameters override path-level ones with the same name and location
	params := append(openapi3.Parameters{}, item.Parameters...)
	params = append(params, op.Parameters...)
	seen := make(map[string]int)
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		param, ok := parameter(ref.Value)
		if !ok {
			continue
		}
		id := string(param.Location) + "\x00" + param.Name
		if i, dup := seen[id]; dup {
			ep.Parameters[i] = param
			continue
		}
		seen[id] = len(ep.Parameters)
		ep.Parameters = append(ep.Parameters, param)
	}

	ep.Parameters = append(ep.Parameters, bodyParameters(op)...)
	ep.Responses = responses(op)
	return ep
}

func parameter(p *openapi3.Parameter) (types.Parameter, bool) {
	var loc types.Location
	switch p.In {
	case openapi3.ParameterInQuery:
		loc = types.LocationQuery
	case openapi3.ParameterInPath:
		loc = types.LocationPath
	case openapi3.ParameterInHeader:
		loc = types.LocationHeader
	default:
		return types.Parameter{}, false
	}

	param := types.Parameter{
		Name:        p.Name,
		Required:    p.Required,
		Location:    loc,
		Description: p.Description,
		Type:        types.TypeString,
	}
	if p.Schema != nil && p.Schema.Value != nil {
		param.Type = paramType(p.Schema.Value)
		param.Default = p.Schema.Value.Default
	}
	return param, true
}

func bodyParameters(op *openapi3.Operation) []types.Parameter {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}

	var (
		media *openapi3.MediaType
		loc   types.Location
	)
	content := op.RequestBody.Value.Content
	switch {
	case content.Get("application/json") != nil:
		media, loc = content.Get("application/json"), types.LocationBody
	case content.Get("application/x-www-form-urlencoded") != nil:
		media, loc = content.Get("application/x-www-form-urlencoded"), types.LocationForm
	case content.Get("multipart/form-data") != nil:
		media, loc = content.Get("multipart/form-data"), types.LocationForm
	default:
		return nil
	}
	if media.Schema == nil || media.Schema.Value == nil {
		return nil
	}

	schema := media.Schema.Value
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]types.Parameter, 0, len(names))
	for _, name := range names {
		param := types.Parameter{
			Name:     name,
			Required: required[name],
			Location: loc,
			Type:     types.TypeString,
		}
		if prop := schema.Properties[name]; prop != nil && prop.Value != nil {
			param.Type = paramType(prop.Value)
			param.Description = prop.Value.Description
			param.Default = prop.Value.Default
		}
		params = append(params, param)
	}
	return params
}

func responses(op *openapi3.Operation) []types.ResponseExample {
	if op.Responses == nil {
		return nil
	}

	var out []types.ResponseExample
	for code, ref := range op.Responses.Map() {
		status, err := strconv.Atoi(code)
		if err != nil || ref == nil || ref.Value == nil {
			continue
		}
		r := types.ResponseExample{Status: status}
		if ref.Value.Description != nil {
			r.Description = *ref.Value.Description
		}
		if media := ref.Value.Content.Get("application/json"); media != nil {
			r.Example = example(media)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out
}

func example(media *openapi3.MediaType) any {
	if media.Example != nil {
		return media.Example
	}
	names := make([]string, 0, len(media.Examples))
	for name := range media.Examples {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ex := media.Examples[name]; ex != nil && ex.Value != nil && ex.Value.Value != nil {
			return ex.Value.Value
		}
	}
	if media.Schema != nil && media.Schema.Value != nil {
		return media.Schema.Value.Example
	}
	return nil
}

func paramType(s *openapi3.Schema) types.ParamType {
	switch {
	case s.Type == nil:
		return types.TypeString
	case s.Type.Is("integer"), s.Type.Is("number"):
		return types.TypeInteger
	case s.Type.Is("boolean"):
		return types.TypeBoolean
	case s.Type.Is("array"):
		return types.TypeArray
	case s.Type.Is("object"):
		return types.TypeObject
	default:
		return types.TypeString
	}
}

func railsPath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		if len(s) > 2 && strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			segments[i] = ":" + s[1:len(s)-1]
		}
	}
	return strings.Join(segments, "/")
}
