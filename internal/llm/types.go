package llm

import (
	"context"

	"postman-sync/internal/types"
)

// SourceFile is a controller handed to the model.
type SourceFile struct {
	Path string `json:"path"`
	Code string `json:"code"`
}

// AnalysisRequest carries the Rails sources an endpoint analysis reads.
type AnalysisRequest struct {
	// Routes is the content of config/routes.rb. Optional but strongly
	// recommended: without it paths and methods are guessed.
	Routes      string       `json:"routes,omitempty"`
	Controllers []SourceFile `json:"controllers"`
}

// Analyzer derives endpoint descriptors from Rails sources.
type Analyzer interface {
	// AnalyzeEndpoints returns the endpoints the controllers expose
	AnalyzeEndpoints(ctx context.Context, req AnalysisRequest) (types.EndpointSet, error)
}

// completer sends a single prompt to a model and returns its reply.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}
