package config

import (
	syncerrors "postman-sync/internal/errors"
)

// LLMConfig holds configuration for the endpoint analysis model
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // e.g., "openai"
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`    // e.g., "gpt-4"
	BaseURL     string  `yaml:"base_url"` // Optional, for custom endpoints
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Validate checks the fields an analysis call needs
func (c LLMConfig) Validate() error {
	if c.Provider == "" {
		return syncerrors.NewMalformedInputError("llm config", "provider is required", nil)
	}
	if c.APIKey == "" {
		return syncerrors.NewMissingCredentialError(
			"Set it in the environment, a .env file or the llm section of the config file", "OPENAI_API_KEY")
	}
	if c.Model == "" {
		return syncerrors.NewMalformedInputError("llm config", "model is required", nil)
	}
	return nil
}
