package docs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"postman-sync/internal/pathkey"
	"postman-sync/internal/types"
)

const defaultTitle = "API Documentation"

// OpenAPI converts an endpoint set into an OpenAPI 3 document. Rails style
// path tokens (":id") become OpenAPI templates ("{id}").
func OpenAPI(set types.EndpointSet, title string) *openapi3.T {
	if title == "" {
		title = defaultTitle
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}

	for _, ep := range set.Endpoints {
		path := templatePath(pathkey.Normalize(ep.Path))
		item := doc.Paths.Value(path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(path, item)
		}
		item.SetOperation(string(ep.Method), operation(ep))
	}

	return doc
}

// OpenAPIJSON renders the OpenAPI document as indented JSON.
func OpenAPIJSON(set types.EndpointSet, title string) (string, error) {
	b, err := json.MarshalIndent(OpenAPI(set, title), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}
	return string(b), nil
}

// OpenAPIYAML renders the OpenAPI document as YAML, keeping the key order of
// the JSON encoding.
func OpenAPIYAML(set types.EndpointSet, title string) (string, error) {
	b, err := json.Marshal(OpenAPI(set, title))
	if err != nil {
		return "", fmt.Errorf("failed to marshal OpenAPI document: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return "", fmt.Errorf("failed to convert OpenAPI document: %w", err)
	}
	blockStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return "", fmt.Errorf("failed to encode OpenAPI YAML: %w", err)
	}
	return string(out), nil
}

// blockStyle clears the flow and quoting styles the JSON input left on the
// node tree.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func templatePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

func operation(ep types.Endpoint) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Description = ep.Description
	op.Summary = FirstSentence(ep.Description)
	if ep.Controller != "" {
		op.Tags = []string{ep.Controller}
	}
	if ep.Controller != "" && ep.Action != "" {
		op.OperationID = ep.Controller + "#" + ep.Action
	}

	for _, p := range ep.Parameters {
		var param *openapi3.Parameter
		switch p.Location {
		case types.LocationQuery:
			param = openapi3.NewQueryParameter(p.Name)
		case types.LocationPath:
			param = openapi3.NewPathParameter(p.Name)
		case types.LocationHeader:
			param = openapi3.NewHeaderParameter(p.Name)
		default:
			continue
		}
		if p.Location != types.LocationPath {
			param.Required = p.Required
		}
		param.Description = p.Description
		param.Schema = openapi3.NewSchemaRef("", schemaFor(p))
		op.AddParameter(param)
	}

	if body, contentType := BodyParameters(ep); len(body) > 0 {
		obj := openapi3.NewObjectSchema()
		for _, p := range body {
			obj.WithPropertyRef(p.Name, openapi3.NewSchemaRef("", schemaFor(p)))
			if p.Required {
				obj.Required = append(obj.Required, p.Name)
			}
		}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithContent(openapi3.NewContentWithSchema(obj, []string{contentType})),
		}
	}

	op.Responses = &openapi3.Responses{}
	if len(ep.Responses) == 0 {
		op.Responses.Set("200", &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Success"),
		})
	}
	for _, r := range ep.Responses {
		resp := openapi3.NewResponse().WithDescription(r.Description)
		if r.HasExample() {
			resp.Content = openapi3.Content{
				ContentTypeJSON: &openapi3.MediaType{Example: r.Example},
			}
		}
		op.Responses.Set(strconv.Itoa(r.StatusOrDefault()), &openapi3.ResponseRef{Value: resp})
	}

	return op
}

func schemaFor(p types.Parameter) *openapi3.Schema {
	var s *openapi3.Schema
	switch p.TypeOrDefault() {
	case types.TypeInteger:
		s = openapi3.NewIntegerSchema()
	case types.TypeBoolean:
		s = openapi3.NewBoolSchema()
	case types.TypeArray:
		s = openapi3.NewArraySchema()
	case types.TypeObject:
		s = openapi3.NewObjectSchema()
	default:
		s = openapi3.NewStringSchema()
	}
	if p.HasDefault() {
		s.Default = p.Default
	}
	return s
}
