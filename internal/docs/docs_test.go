package docs

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/merge"
	"postman-sync/internal/types"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func widgetEndpoint() types.Endpoint {
	return types.Endpoint{
		Method:      types.MethodPost,
		Path:        "/widgets/:id.json",
		Controller:  "WidgetsController",
		Action:      "update",
		Description: "Updates a widget. Requires ownership.",
		Parameters: []types.Parameter{
			{Name: "verbose", Type: types.TypeBoolean, Location: types.LocationQuery, Description: "Verbose output"},
			{Name: "id", Type: types.TypeInteger, Required: true, Location: types.LocationPath, Description: "Widget id"},
			{Name: "X-Token", Location: types.LocationHeader, Description: "Auth token"},
			{Name: "name", Required: true, Location: types.LocationBody, Description: "Widget name"},
		},
		Responses: []types.ResponseExample{
			{Status: 200, Description: "Updated", Example: map[string]any{"id": 1.0, "name": "<w>"}},
			{Status: 404, Description: "Not found"},
		},
	}
}

func TestRequestDocumentation(t *testing.T) {
	want := merge.RequestMarkers.Start + "\n" +
		"# POST /widgets/:id\n\n" +
		"Updates a widget. Requires ownership.\n\n" +
		"**Controller:** `WidgetsController#update`\n\n" +
		"## Query Parameters\n\n" +
		"- **verbose** (boolean, Optional): Verbose output\n\n" +
		"## Path Parameters\n\n" +
		"- **id** (integer): Widget id\n\n" +
		"## Headers\n\n" +
		"- **X-Token**: Auth token\n\n" +
		"## Request Body\n\n" +
		"**Content-Type:** `application/json`\n\n" +
		"- **name** (string, Required): Widget name\n\n" +
		"## Responses\n\n" +
		"### 200 - Updated\n\n" +
		"```json\n{\n  \"id\": 1,\n  \"name\": \"<w>\"\n}\n```\n\n" +
		"### 404 - Not found\n\n" +
		merge.RequestMarkers.End

	assert.Equal(t, want, RequestDocumentation(widgetEndpoint()))
}

func TestRequestDocumentationMinimal(t *testing.T) {
	ep := types.Endpoint{Method: types.MethodGet, Path: "/ping"}
	want := merge.RequestMarkers.Start + "\n# GET /ping\n\n" + merge.RequestMarkers.End
	assert.Equal(t, want, RequestDocumentation(ep))
}

func TestRequestDocumentationPrefersForm(t *testing.T) {
	ep := types.Endpoint{
		Method: types.MethodPost,
		Path:   "/login",
		Parameters: []types.Parameter{
			{Name: "json_field", Location: types.LocationBody},
			{Name: "user", Location: types.LocationForm},
		},
	}
	doc := RequestDocumentation(ep)
	assert.Contains(t, doc, "**Content-Type:** `application/x-www-form-urlencoded`")
	assert.Contains(t, doc, "- **user** (string, Optional)")
	assert.NotContains(t, doc, "json_field")
}

func TestCollectionDescription(t *testing.T) {
	set := types.EndpointSet{Endpoints: []types.Endpoint{
		widgetEndpoint(),
		{Method: types.MethodGet, Path: "/ping"},
	}}

	want := merge.CollectionMarkers.Start + "\n" +
		"# API Collection Documentation\n\n" +
		"This collection contains 2 API endpoint(s):\n\n" +
		"- **POST /widgets/:id** - Updates a widget.\n" +
		"- **GET /ping**\n" +
		"\n*Auto-generated on 2024-03-01 09:30:00*\n" +
		merge.CollectionMarkers.End

	assert.Equal(t, want, CollectionDescription(set, fixedTime))
}

func TestCollectionDescriptionEmpty(t *testing.T) {
	assert.Equal(t, "API Documentation - No endpoints available", CollectionDescription(types.EndpointSet{}, fixedTime))
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "One.", FirstSentence("One. Two."))
	assert.Equal(t, "no period", FirstSentence("no period"))
	assert.Equal(t, "", FirstSentence(""))
}

func TestIndentJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": \"<b>\",\n  \"z\": 1\n}", IndentJSON(map[string]any{"z": 1, "a": "<b>"}))
}

func TestRenderMarkdownDetailed(t *testing.T) {
	set := types.EndpointSet{Endpoints: []types.Endpoint{widgetEndpoint()}}

	out, err := Render(set, Options{GeneratedAt: fixedTime})
	require.NoError(t, err)

	assert.Contains(t, out, "# API Documentation")
	assert.Contains(t, out, "## 1. POST /widgets/:id")
	assert.Contains(t, out, "**Controller:** `WidgetsController#update`")
	assert.Contains(t, out, "#### Query Parameters")
	assert.Contains(t, out, "#### Request Body")
	assert.Contains(t, out, "`verbose`")
	assert.Contains(t, out, "✅ Yes")
	assert.Contains(t, out, "#### ✅ 200 - Updated")
	assert.Contains(t, out, "#### ❌ 404 - Not found")
	assert.Contains(t, out, "```json")
	assert.Contains(t, out, "*Generated on 2024-03-01 09:30:00*")
}

func TestRenderMarkdownCompact(t *testing.T) {
	set := types.EndpointSet{Endpoints: []types.Endpoint{
		{Method: types.MethodDelete, Path: "/widgets/:id", Description: "Removes"},
		widgetEndpoint(),
		{Method: types.MethodGet, Path: "/widgets"},
	}}

	out, err := Render(set, Options{Style: StyleCompact, GeneratedAt: fixedTime})
	require.NoError(t, err)

	assert.Contains(t, out, "# API Endpoints")
	assert.Contains(t, out, "**/widgets/:id** - Removes")
	assert.Contains(t, out, "(`WidgetsController#update`)")

	get := strings.Index(out, "## GET Endpoints")
	post := strings.Index(out, "## POST Endpoints")
	del := strings.Index(out, "## DELETE Endpoints")
	assert.True(t, get >= 0 && get < post && post < del, "methods are grouped in GET, POST, DELETE order")
	assert.NotContains(t, out, "## PUT Endpoints")
}

func TestRenderEmptySet(t *testing.T) {
	for _, style := range []Style{StyleDetailed, StyleCompact} {
		out, err := Render(types.EndpointSet{}, Options{Style: style})
		require.NoError(t, err)
		assert.Equal(t, "# API Documentation\n\nNo endpoints found in the provided data.\n", out)
	}
}

func TestRenderJSON(t *testing.T) {
	set := types.EndpointSet{Endpoints: []types.Endpoint{{Method: types.MethodGet, Path: "/ping"}}}
	out, err := Render(set, Options{Format: FormatJSON})
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoints":[{"method":"GET","path":"/ping"}]}`, out)
}

func TestRenderUnsupportedOptions(t *testing.T) {
	_, err := Render(types.EndpointSet{}, Options{Format: "pdf"})
	require.Error(t, err)
	assert.True(t, syncerrors.IsUnsupportedOption(err))
	assert.Contains(t, err.Error(), "format_type")

	_, err = Render(types.EndpointSet{}, Options{Style: "fancy"})
	require.Error(t, err)
	assert.True(t, syncerrors.IsUnsupportedOption(err))
	assert.Contains(t, err.Error(), "template_style")
}

func TestOpenAPI(t *testing.T) {
	set := types.EndpointSet{Endpoints: []types.Endpoint{
		widgetEndpoint(),
		{Method: types.MethodGet, Path: "/widgets/:id"},
	}}

	doc := OpenAPI(set, "")
	assert.Equal(t, defaultTitle, doc.Info.Title)

	item := doc.Paths.Value("/widgets/{id}")
	require.NotNil(t, item)
	require.NotNil(t, item.Post)
	require.NotNil(t, item.Get)

	post := item.Post
	assert.Equal(t, "WidgetsController#update", post.OperationID)
	assert.Equal(t, "Updates a widget.", post.Summary)
	require.Len(t, post.Parameters, 3)
	assert.Equal(t, "verbose", post.Parameters[0].Value.Name)
	assert.Equal(t, "query", post.Parameters[0].Value.In)
	assert.True(t, post.Parameters[1].Value.Required)

	require.NotNil(t, post.RequestBody)
	media := post.RequestBody.Value.Content.Get(ContentTypeJSON)
	require.NotNil(t, media)
	assert.Equal(t, []string{"name"}, media.Schema.Value.Required)

	assert.NotNil(t, post.Responses.Value("200"))
	assert.NotNil(t, post.Responses.Value("404"))
	assert.NotNil(t, item.Get.Responses.Value("200"))
}

func TestOpenAPIJSONAndYAML(t *testing.T) {
	set := types.EndpointSet{Endpoints: []types.Endpoint{widgetEndpoint()}}

	out, err := Render(set, Options{Format: FormatOpenAPI, Title: "Widgets"})
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "3.0.3", parsed["openapi"])
	assert.Contains(t, parsed["paths"], "/widgets/{id}")

	out, err = Render(set, Options{Format: FormatOpenAPIYAML, Title: "Widgets"})
	require.NoError(t, err)
	assert.Contains(t, out, "openapi: 3.0.3")
	assert.Contains(t, out, "title: Widgets")
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Contains(t, fromYAML["paths"], "/widgets/{id}")
}

