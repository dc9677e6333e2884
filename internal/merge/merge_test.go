package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testMarkers = Markers{Start: "MARK_START", End: "MARK_END"}

func TestGenerated(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		fresh    string
		want     string
	}{
		{"empty existing", "", "NEWGEN", "NEWGEN"},
		{"empty fresh", "kept", "", "kept"},
		{"identical", "same", "same", "same"},
		{"only generated block", "MARK_START\nOLDGEN\nMARK_END", "NEWGEN", "NEWGEN"},
		{"manual before", "Manual note.\n\nMARK_START\nOLDGEN\nMARK_END", "NEWGEN", "Manual note.\n\nNEWGEN"},
		{"manual after", "MARK_START\nOLDGEN\nMARK_END\n\n  Footer.  ", "NEWGEN", "NEWGEN\n\nFooter."},
		{
			"manual before and after",
			"Intro\nMARK_START\nOLDGEN\nMARK_END\nOutro",
			"MARK_START\nNEWGEN\nMARK_END",
			"Intro\n\nMARK_START\nNEWGEN\nMARK_END\n\nOutro",
		},
		{"unmarked manual text", "Do not touch.", "NEWGEN", "Do not touch.\n\n---\n\nNEWGEN"},
		{"start marker only", "MARK_START but no end", "NEWGEN", "MARK_START but no end\n\n---\n\nNEWGEN"},
		{"end before start", "MARK_END x MARK_START y", "NEWGEN", "MARK_END x\n\nNEWGEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generated(tt.existing, tt.fresh, testMarkers))
		})
	}
}

func TestGeneratedIsStableAcrossRuns(t *testing.T) {
	fresh := RequestMarkers.Wrap("# GET /widgets\n\n")
	first := Generated("Do not touch.", fresh, RequestMarkers)
	second := Generated(first, fresh, RequestMarkers)
	assert.Equal(t, first, second)
}

func TestLegacyCollection(t *testing.T) {
	fresh := CollectionMarkers.Wrap("# API Collection Documentation\n")

	legacy := []string{
		"# API Collection Documentation\n\nold",
		"Intro. This collection contains 3 API endpoint(s)",
		"*Auto-generated on 2024-01-01 10:00:00*",
	}
	for _, existing := range legacy {
		assert.Equal(t, fresh, Generated(existing, fresh, CollectionMarkers), existing)
	}

	assert.Equal(t, "Team notes"+Separator+fresh, Generated("Team notes", fresh, CollectionMarkers))
}

func TestLegacyRequest(t *testing.T) {
	fresh := RequestMarkers.Wrap("# GET /x\n\n")

	legacy := []string{
		"# GET /x\n\nold docs",
		"# POST /x",
		"# PUT /x",
		"# DELETE /x",
		"notes\n## Query Parameters\n",
		"## Request Body",
		"## Responses",
		"**Controller:** `UsersController#index`",
	}
	for _, existing := range legacy {
		assert.Equal(t, fresh, Generated(existing, fresh, RequestMarkers), existing)
	}

	// PATCH was never a legacy heading
	assert.Equal(t, "# PATCH /x"+Separator+fresh, Generated("# PATCH /x", fresh, RequestMarkers))
}

func TestMarkerClassesAreIndependent(t *testing.T) {
	existing := CollectionMarkers.Wrap("old collection text\n")
	fresh := RequestMarkers.Wrap("request text\n")
	assert.Equal(t, existing+Separator+fresh, Generated(existing, fresh, RequestMarkers))
}
