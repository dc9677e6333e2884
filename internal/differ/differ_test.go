package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postman-sync/internal/postman"
	"postman-sync/internal/types"
)

func widgets() types.Endpoint {
	return types.Endpoint{
		Method:      types.MethodGet,
		Path:        "/widgets",
		Description: "Lists widgets.",
		Parameters: []types.Parameter{
			{Name: "page", Type: types.TypeInteger, Location: types.LocationQuery},
		},
	}
}

func TestDiffIdenticalItems(t *testing.T) {
	for _, docs := range []bool{false, true} {
		r := Diff(postman.Encode(widgets(), docs), postman.Encode(widgets(), docs))
		assert.False(t, r.HasChanges)
		assert.Empty(t, r.Request)
		assert.Empty(t, r.Documentation)
	}
}

func TestDiffAddedQueryParameter(t *testing.T) {
	ep := widgets()
	existing := postman.Encode(ep, false)
	ep.Parameters = append(ep.Parameters, types.Parameter{Name: "per_page", Location: types.LocationQuery})

	r := Diff(existing, postman.Encode(ep, false))
	assert.True(t, r.HasChanges)
	change, ok := r.Axis(AxisURL)
	require.True(t, ok)
	assert.Equal(t, ActionURLParametersUpdated, change.Action)

	_, ok = r.Axis(AxisHeaders)
	assert.False(t, ok)
}

func TestDiffIgnoresValuesAndOrder(t *testing.T) {
	existing := postman.Item{Request: &postman.Request{
		Header: postman.Headers{{Key: "A", Value: "1"}, {Key: "B"}},
		URL:    &postman.URL{Query: []postman.Param{{Key: "x", Value: "1"}, {Key: "y"}}},
		Body:   &postman.Body{Mode: postman.ModeRaw, Raw: `{"a":1}`},
	}}
	fresh := postman.Item{Request: &postman.Request{
		Header: postman.Headers{{Key: "B", Value: "2"}, {Key: "A"}},
		URL:    &postman.URL{Query: []postman.Param{{Key: "y", Value: "9"}, {Key: "x"}}},
		Body:   &postman.Body{Mode: postman.ModeRaw, Raw: `{"b":2}`},
	}}

	assert.False(t, Diff(existing, fresh).HasChanges)
}

func TestDiffHeaders(t *testing.T) {
	tests := []struct {
		name     string
		existing postman.Headers
		fresh    postman.Headers
		differ   bool
	}{
		{"both empty", nil, postman.Headers{}, false},
		{"count differs", postman.Headers{{Key: "A"}}, postman.Headers{{Key: "A"}, {Key: "B"}}, true},
		{"key differs", postman.Headers{{Key: "A"}}, postman.Headers{{Key: "B"}}, true},
		{"duplicate keys same count", postman.Headers{{Key: "A"}, {Key: "A"}}, postman.Headers{{Key: "A"}, {Key: "B"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.differ, HeadersDiffer(tt.existing, tt.fresh))
		})
	}

	r := Diff(
		postman.Item{Request: &postman.Request{Header: postman.Headers{{Key: "A"}}}},
		postman.Item{Request: &postman.Request{Header: postman.Headers{{Key: "A"}, {Key: "Content-Type"}}}},
	)
	change, ok := r.Axis(AxisHeaders)
	require.True(t, ok)
	assert.Equal(t, Change{Axis: AxisHeaders, Action: ActionHeadersUpdated, Existing: 1, New: 2}, change)
}

func TestDiffBody(t *testing.T) {
	raw := &postman.Body{Mode: postman.ModeRaw}
	form := &postman.Body{Mode: postman.ModeURLEncoded}

	assert.False(t, BodyDiffers(nil, nil))
	assert.False(t, BodyDiffers(nil, &postman.Body{}))
	assert.True(t, BodyDiffers(nil, raw))
	assert.True(t, BodyDiffers(raw, nil))
	assert.True(t, BodyDiffers(raw, form))
	assert.False(t, BodyDiffers(raw, &postman.Body{Mode: postman.ModeRaw, Raw: "{}"}))
}

func TestDiffDescriptionLengths(t *testing.T) {
	r := Diff(
		postman.Item{Request: &postman.Request{Description: "héllo"}},
		postman.Item{Request: &postman.Request{Description: "héllo wörld"}},
	)
	assert.True(t, r.HasChanges)
	assert.Empty(t, r.Request)
	change, ok := r.Axis(AxisDescription)
	require.True(t, ok)
	assert.Equal(t, ActionDocumentationUpdated, change.Action)
	assert.Equal(t, 5, change.Existing)
	assert.Equal(t, 11, change.New)
}

func TestDiffAxesAreIndependent(t *testing.T) {
	existing := postman.Item{Request: &postman.Request{Description: "old"}}
	fresh := postman.Encode(types.Endpoint{
		Method: types.MethodPost,
		Path:   "/widgets",
		Parameters: []types.Parameter{
			{Name: "q", Location: types.LocationQuery},
			{Name: "name", Location: types.LocationBody},
		},
	}, true)

	r := Diff(existing, fresh)
	assert.True(t, r.HasChanges)
	require.Len(t, r.Request, 3)
	assert.Equal(t, AxisHeaders, r.Request[0].Axis)
	assert.Equal(t, AxisURL, r.Request[1].Axis)
	assert.Equal(t, AxisBody, r.Request[2].Axis)
	require.Len(t, r.Documentation, 1)
}
