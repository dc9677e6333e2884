// Package llm derives endpoint descriptors from Rails sources with a chat
// model.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/types"
)

// BaseClient builds prompts and parses replies; the provider client behind
// it only moves text.
type BaseClient struct {
	config    *Config
	logger    zerolog.Logger
	completer completer
}

// NewBaseClient creates a new base LLM client
func NewBaseClient(config *Config, logger zerolog.Logger) *BaseClient {
	return &BaseClient{
		config: config,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

// AnalyzeEndpoints implements the Analyzer interface
func (c *BaseClient) AnalyzeEndpoints(ctx context.Context, req AnalysisRequest) (types.EndpointSet, error) {
	if len(req.Controllers) == 0 {
		return types.EndpointSet{}, syncerrors.NewMalformedInputError("analysis request", "no controller source given", nil)
	}
	if c.completer == nil {
		return types.EndpointSet{}, fmt.Errorf("no LLM provider configured")
	}

	logger := c.logger.With().Int("controllers", len(req.Controllers)).Bool("routes", req.Routes != "").Logger()
	logger.Debug().Msg("requesting endpoint analysis")

	response, err := c.completer.complete(ctx, BuildPrompt(req))
	if err != nil {
		logger.Error().Err(err).Msg("endpoint analysis failed")
		return types.EndpointSet{}, syncerrors.NewCollaboratorError("analyze endpoints", 0, "", err)
	}

	set, err := ParseResponse(response)
	if err != nil {
		logger.Error().Err(err).Str("response", truncate(response, 200)).Msg("unusable analysis response")
		return types.EndpointSet{}, err
	}

	logger.Info().Int("endpoints", len(set.Endpoints)).Msg("endpoint analysis complete")
	return set, nil
}

// BuildPrompt renders the analysis prompt.
func BuildPrompt(req AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Analyze the following Rails application code and extract its API endpoints.\n\n")

	if req.Routes != "" {
		b.WriteString("Use the exact HTTP methods and paths defined in config/routes.rb:\n\n")
		fmt.Fprintf(&b, "```ruby\n%s\n```\n\n", strings.TrimRight(req.Routes, "\n"))
	} else {
		b.WriteString("No routes.rb was provided; infer paths from Rails resource conventions.\n\n")
	}

	for _, f := range req.Controllers {
		fmt.Fprintf(&b, "Controller %s:\n\n```ruby\n%s\n```\n\n", f.Path, strings.TrimRight(f.Code, "\n"))
	}

	b.WriteString("Describe each action's parameters with their location, type and whether they are required, ")
	b.WriteString("and give example responses for success and error cases.\n\n")
	b.WriteString("Respond with JSON matching this structure:\n\n")
	b.WriteString(Template())
	b.WriteString("\n")
	return b.String()
}

// ParseResponse decodes a model reply into an endpoint set. A surrounding
// Markdown code fence is tolerated.
func ParseResponse(response string) (types.EndpointSet, error) {
	body := strings.TrimSpace(response)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```")
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			// drop the info string ("json")
			body = body[nl+1:]
		}
		body = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(body), "```"))
	}
	if body == "" {
		return types.EndpointSet{}, syncerrors.NewMalformedInputError("analysis response", "empty reply", nil)
	}
	return types.DecodeEndpointSet(body)
}

// Template is the JSON skeleton an endpoint analysis must fill in.
func Template() string {
	skeleton := types.EndpointSet{
		Endpoints: []types.Endpoint{{
			Method:      "GET|POST|PUT|DELETE|PATCH",
			Path:        "/api/exact/path/from/routes.rb",
			Controller:  "Exact::Controller::Name",
			Action:      "exact_action_name",
			Description: "What this endpoint does based on controller code",
			Parameters: []types.Parameter{{
				Name:        "param_name",
				Type:        "string|integer|boolean|array|object",
				Required:    true,
				Location:    "query|body|path|header",
				Description: "Parameter description from controller code",
			}},
			Responses: []types.ResponseExample{
				{Status: 200, Description: "Success response description", Example: map[string]any{"key": "value"}},
				{Status: 422, Description: "Error response description", Example: map[string]any{"error": "validation failed"}},
			},
		}},
	}
	b, _ := json.MarshalIndent(skeleton, "", "  ")
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
