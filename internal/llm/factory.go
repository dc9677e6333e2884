package llm

import (
	"github.com/rs/zerolog"

	syncerrors "postman-sync/internal/errors"
)

// NewClient creates a new LLM client based on the provider
func NewClient(config *Config, logger zerolog.Logger) (Analyzer, error) {
	switch config.Provider {
	case "openai":
		logger.Debug().Str("model", config.Model).Msg("creating OpenAI client")
		return NewOpenAIClient(config, logger), nil
	default:
		return nil, syncerrors.NewUnsupportedOptionError("llm provider", config.Provider, "openai")
	}
}
