package postman

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postman-sync/internal/docs"
	"postman-sync/internal/pathkey"
	"postman-sync/internal/types"
)

func TestEncodeQueryOnly(t *testing.T) {
	ep := types.Endpoint{
		Method: types.MethodGet,
		Path:   "/widgets",
		Parameters: []types.Parameter{
			{Name: "page", Type: types.TypeInteger, Location: types.LocationQuery, Default: 2.0},
			{Name: "q", Location: types.LocationQuery, Description: "Search"},
		},
		Description: "Lists widgets.",
	}

	item := Encode(ep, false)
	assert.Equal(t, "GET /widgets", item.Name)
	require.NotNil(t, item.Request)
	assert.Equal(t, "GET", item.Request.Method)
	assert.Empty(t, item.Request.Header)
	assert.Nil(t, item.Request.Body)
	assert.Equal(t, Description("Lists widgets."), item.Request.Description)

	require.NotNil(t, item.Request.URL)
	assert.Equal(t, "/widgets", item.Request.URL.Raw)
	assert.Equal(t, []string{"widgets"}, item.Request.URL.Path)
	assert.Equal(t, []Param{
		{Key: "page", Value: "2"},
		{Key: "q", Value: "", Description: "Search"},
	}, item.Request.URL.Query)
}

func TestEncodeJSONBody(t *testing.T) {
	ep := types.Endpoint{
		Method: types.MethodPost,
		Path:   "/widgets.json?x=1",
		Parameters: []types.Parameter{
			{Name: "X-Token", Location: types.LocationHeader, Description: "Auth"},
			{Name: "name", Location: types.LocationBody},
			{Name: "count", Type: types.TypeInteger, Location: types.LocationBody},
			{Name: "active", Type: types.TypeBoolean, Location: types.LocationBody},
			{Name: "tags", Type: types.TypeArray, Location: types.LocationBody},
			{Name: "meta", Type: types.TypeObject, Location: types.LocationBody},
			{Name: "label", Location: types.LocationBody, Default: "<none>"},
			{Name: "count", Type: types.TypeInteger, Location: types.LocationBody, Default: 5.0},
		},
	}

	item := Encode(ep, false)
	assert.Equal(t, "POST /widgets", item.Name)
	assert.Equal(t, Headers{
		{Key: "X-Token", Value: "", Description: "Auth"},
		{Key: "Content-Type", Value: docs.ContentTypeJSON},
	}, item.Request.Header)

	body := item.Request.Body
	require.NotNil(t, body)
	assert.Equal(t, ModeRaw, body.Mode)
	assert.Equal(t, "{\n  \"name\": \"\",\n  \"count\": 5,\n  \"active\": false,\n  \"tags\": [],\n  \"meta\": {},\n  \"label\": \"<none>\"\n}", body.Raw)
	assert.Equal(t, map[string]any{"raw": map[string]any{"language": "json"}}, body.Options)
}

func TestEncodeFormWinsOverBody(t *testing.T) {
	ep := types.Endpoint{
		Method: types.MethodPost,
		Path:   "/login",
		Parameters: []types.Parameter{
			{Name: "json_field", Location: types.LocationBody},
			{Name: "user", Location: types.LocationForm, Description: "Login"},
			{Name: "remember", Type: types.TypeBoolean, Location: types.LocationForm, Default: true},
		},
	}

	item := Encode(ep, false)
	assert.Equal(t, Headers{{Key: "Content-Type", Value: docs.ContentTypeForm}}, item.Request.Header)
	require.NotNil(t, item.Request.Body)
	assert.Equal(t, ModeURLEncoded, item.Request.Body.Mode)
	assert.Equal(t, []Param{
		{Key: "user", Value: "", Description: "Login"},
		{Key: "remember", Value: "true"},
	}, item.Request.Body.URLEncoded)
}

func TestEncodeDocumentation(t *testing.T) {
	ep := types.Endpoint{Method: types.MethodGet, Path: "/widgets", Description: "Lists widgets."}

	withDocs := Encode(ep, true)
	assert.Equal(t, Description(docs.RequestDocumentation(ep)), withDocs.Request.Description)

	bare := Encode(types.Endpoint{Method: types.MethodGet, Path: "/widgets"}, false)
	assert.Empty(t, bare.Request.Description)
}

func TestDecodeKeyRoundTrip(t *testing.T) {
	paths := []string{
		"/widgets",
		"/widgets/:id.json",
		"/widgets/{id}?expand=true",
		"/a/",
		"/",
		"",
		"widgets",
		"/a//b",
		"https://api.example.com/v1/users.xml?x=1",
		"http://host",
		"/reports.csv.json",
	}
	methods := []types.Method{types.MethodGet, types.MethodPatch, "delete", ""}

	for _, p := range paths {
		for _, m := range methods {
			ep := types.Endpoint{Method: m, Path: p}
			item := Encode(ep, false)
			assert.Equal(t, pathkey.New(string(m), p), DecodeKey(item), "%s %q", m, p)

			// the key also survives the trip through JSON
			b, err := json.Marshal(item)
			require.NoError(t, err)
			var decoded Item
			require.NoError(t, json.Unmarshal(b, &decoded))
			assert.Equal(t, DecodeKey(item), DecodeKey(decoded), "%s %q", m, p)
		}
	}
}

func TestDecodeKey(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want pathkey.Key
	}{
		{"segments win over raw", Item{Request: &Request{Method: "post", URL: &URL{Raw: "/other", Path: []string{"users.json"}}}}, pathkey.Key{Method: "POST", Path: "/users"}},
		{"raw full url", Item{Request: &Request{URL: &URL{Raw: "{{base}}/users?page=1"}}}, pathkey.Key{Method: "GET", Path: "{{base}}/users"}},
		{"raw absolute", Item{Request: &Request{Method: "GET", URL: &URL{Raw: "https://x.io/users.json"}}}, pathkey.Key{Method: "GET", Path: "/users"}},
		{"no url", Item{Request: &Request{Method: "PUT"}}, pathkey.Key{Method: "PUT", Path: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeKey(tt.item))
		})
	}
}

const fetched = `{
  "collection": {
    "info": {
      "_postman_id": "abc",
      "name": "Shop",
      "description": {"content": "Team notes", "type": "text/markdown"},
      "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json",
      "updatedAt": "2024-01-01"
    },
    "item": [
      {
        "name": "Users",
        "item": [
          {
            "id": "1",
            "name": "List users",
            "event": [{"listen": "test"}],
            "request": {
              "method": "GET",
              "auth": {"type": "bearer"},
              "header": "Accept: application/json\nX-Trace: 1",
              "url": {
                "raw": "{{base}}/users?page=1",
                "host": ["{{base}}"],
                "path": [{"type": "string", "value": "users"}],
                "query": [{"key": "page", "value": "1"}]
              }
            },
            "response": []
          }
        ]
      },
      {"name": "Ping", "request": "https://api.example.com/ping"},
      {"name": "Empty folder", "item": []}
    ],
    "variable": [{"key": "base", "value": "http://localhost"}]
  }
}`

func TestCollectionDecode(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(fetched), &env))

	c := env.Collection
	assert.Equal(t, "Shop", c.Info.Name)
	assert.Equal(t, Description("Team notes"), c.Info.Description)
	assert.Contains(t, c.Info.Extra, "updatedAt")
	assert.Contains(t, c.Extra, "variable")

	require.Len(t, c.Item, 3)
	folder := c.Item[0]
	assert.True(t, folder.IsFolder())
	require.Len(t, folder.Items, 1)

	users := folder.Items[0]
	assert.False(t, users.IsFolder())
	assert.Contains(t, users.Extra, "id")
	assert.Contains(t, users.Extra, "event")
	assert.Contains(t, users.Request.Extra, "auth")
	assert.Equal(t, []string{"Accept", "X-Trace"}, users.Request.Header.Keys())
	assert.Equal(t, []string{"users"}, users.Request.URL.Path)
	assert.Contains(t, users.Request.URL.Extra, "host")
	assert.Equal(t, pathkey.Key{Method: "GET", Path: "/users"}, DecodeKey(users))

	ping := c.Item[1]
	assert.Equal(t, pathkey.Key{Method: "GET", Path: "/ping"}, DecodeKey(ping))

	assert.True(t, c.Item[2].IsFolder())
}

func TestCollectionRoundTripKeepsUnmodeledFields(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(fetched), &env))

	b, err := json.Marshal(env)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(b, &generic))
	collection := generic["collection"].(map[string]any)
	assert.Contains(t, collection, "variable")
	assert.Equal(t, "2024-01-01", collection["info"].(map[string]any)["updatedAt"])

	items := collection["item"].([]any)
	users := items[0].(map[string]any)["item"].([]any)[0].(map[string]any)
	assert.Equal(t, "1", users["id"])
	assert.Contains(t, users, "event")
	assert.Contains(t, users, "response")
	request := users["request"].(map[string]any)
	assert.Contains(t, request, "auth")
	assert.Contains(t, request["url"], "host")

	empty := items[2].(map[string]any)
	assert.Equal(t, []any{}, empty["item"])
}

func TestRequestRoundTripKeepsNestedForms(t *testing.T) {
	const stored = `{
		"method": "GET",
		"header": [{"key": "A", "value": "b", "type": "text", "description": {"content": "auth", "type": "text/plain"}}],
		"url": {
			"raw": "{{base}}/a?q=1",
			"path": [{"type": "string", "value": "a"}, "b"],
			"query": [{"key": "q", "value": "1", "disabled": false, "equals": true}]
		},
		"body": {"mode": "urlencoded", "urlencoded": [{"key": "f", "value": "", "disabled": false, "type": "text"}]},
		"description": {"content": "hi", "type": "text/markdown", "version": 2}
	}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(stored), &req))
	assert.Equal(t, Description("hi"), req.Description)
	assert.Equal(t, Description("auth"), req.Header[0].Description)
	assert.Equal(t, []string{"a", "b"}, req.URL.Path)

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, stored, string(b))
}

func TestEditedDescriptionKeepsObjectForm(t *testing.T) {
	var info Info
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Shop","description":{"content":"old","type":"text/markdown"}}`), &info))

	info.Description = "new"
	b, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Shop","description":{"content":"new","type":"text/markdown"}}`, string(b))
}

func TestStringDescriptionStaysString(t *testing.T) {
	var h Header
	require.NoError(t, json.Unmarshal([]byte(`{"key":"A","value":"b","description":"plain"}`), &h))
	assert.Nil(t, h.DescriptionMeta)

	b, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"A","value":"b","description":"plain"}`, string(b))
}

func TestEditedPathDropsSegmentObjects(t *testing.T) {
	var u URL
	require.NoError(t, json.Unmarshal([]byte(`{"raw":"/a","path":[{"type":"string","value":"a"}]}`), &u))

	u.Path = append(u.Path, "b")
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw":"/a","path":["a","b"]}`, string(b))
}

func TestBodyIsEmpty(t *testing.T) {
	var nilBody *Body
	assert.True(t, nilBody.IsEmpty())
	assert.True(t, (&Body{}).IsEmpty())
	assert.False(t, (&Body{Mode: ModeRaw}).IsEmpty())
	assert.False(t, (&Body{Extra: Extra{"formdata": json.RawMessage(`[]`)}}).IsEmpty())
}

func TestEncodedItemJSON(t *testing.T) {
	item := Encode(types.Endpoint{Method: types.MethodGet, Path: "/"}, false)
	b, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"GET /","request":{"method":"GET","header":[],"url":{"raw":"/","path":[""]}}}`, string(b))
}
