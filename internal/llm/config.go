package llm

import "postman-sync/internal/config"

// Config represents the configuration for LLM integration
type Config struct {
	// Provider specifies which LLM provider to use (e.g., "openai")
	Provider string `json:"provider"`

	// APIKey is the API key for the LLM provider
	APIKey string `json:"-"`

	// Model specifies which model to use (e.g., "gpt-4")
	Model string `json:"model"`

	// BaseURL overrides the provider endpoint, for proxies and compatible servers
	BaseURL string `json:"base_url,omitempty"`

	// Temperature controls the randomness of the output (0.0 to 1.0)
	Temperature float64 `json:"temperature"`

	// MaxTokens limits the length of the generated response
	MaxTokens int `json:"max_tokens"`
}

// NewDefaultConfig returns a default configuration
func NewDefaultConfig() *Config {
	return &Config{
		Provider:    "openai",
		Model:       "gpt-4",
		Temperature: 0.2,
		MaxTokens:   4000,
	}
}

// FromSettings builds a Config from the loaded application settings,
// keeping the defaults for anything left unset.
func FromSettings(s config.LLMConfig) *Config {
	c := NewDefaultConfig()
	if s.Provider != "" {
		c.Provider = s.Provider
	}
	if s.Model != "" {
		c.Model = s.Model
	}
	if s.Temperature > 0 {
		c.Temperature = s.Temperature
	}
	if s.MaxTokens > 0 {
		c.MaxTokens = s.MaxTokens
	}
	c.APIKey = s.APIKey
	c.BaseURL = s.BaseURL
	return c
}
