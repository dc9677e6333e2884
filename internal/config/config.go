package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	syncerrors "postman-sync/internal/errors"
)

// DefaultPath is read when no config file is named and it exists.
const DefaultPath = "postman-sync.yaml"

// DefaultPostmanBaseURL is the public Postman API.
const DefaultPostmanBaseURL = "https://api.getpostman.com"

// Config holds the application configuration
type Config struct {
	Postman   PostmanConfig   `yaml:"postman"`
	Rails     RailsConfig     `yaml:"rails"`
	Sync      SyncConfig      `yaml:"sync"`
	LLM       LLMConfig       `yaml:"llm"`
	History   HistoryConfig   `yaml:"history"`
	Reporting ReportingConfig `yaml:"reporting"`
}

// PostmanConfig holds the collection and the credentials to reach it
type PostmanConfig struct {
	CollectionUID string      `yaml:"collection_uid"`
	APIKey        string      `yaml:"api_key"`
	BaseURL       string      `yaml:"base_url"`
	Timeout       int         `yaml:"timeout"`
	Retry         RetryConfig `yaml:"retry"`
}

// RetryConfig holds retry configuration. One attempt means no retry.
type RetryConfig struct {
	Attempts int `yaml:"attempts"`
	Delay    int `yaml:"delay"`
}

// RailsConfig locates the Rails application being documented
type RailsConfig struct {
	ProjectPath string `yaml:"project_path"`
}

// SyncConfig holds the reconciliation policy
type SyncConfig struct {
	IncludeDocumentation bool `yaml:"include_documentation"`
	PreserveExistingDocs bool `yaml:"preserve_existing_docs"`
}

// HistoryConfig holds the optional run log database
type HistoryConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ReportingConfig holds reporting configuration
type ReportingConfig struct {
	Format    []string `yaml:"format"`
	OutputDir string   `yaml:"output_dir"`
}

// Default returns the configuration used before any file or environment
// variable is applied.
func Default() *Config {
	return &Config{
		Postman: PostmanConfig{
			BaseURL: DefaultPostmanBaseURL,
			Timeout: 30,
			Retry:   RetryConfig{Attempts: 1, Delay: 1},
		},
		Sync: SyncConfig{
			IncludeDocumentation: true,
			PreserveExistingDocs: true,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4",
		},
		Reporting: ReportingConfig{
			Format: []string{"json"},
		},
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (or DefaultPath when path is empty and the file exists), a .env file in
// the working directory and the environment, in that order.
func Load(path string) (*Config, error) {
	config := Default()

	configPath := path
	if configPath == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			configPath = DefaultPath
		}
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, syncerrors.NewMalformedInputError("config file", filepath.Base(configPath), err)
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	config.applyEnv()

	// Set default values if not specified
	if config.Postman.BaseURL == "" {
		config.Postman.BaseURL = DefaultPostmanBaseURL
	}
	if config.Postman.Timeout <= 0 {
		config.Postman.Timeout = 30
	}
	if config.Postman.Retry.Attempts <= 0 {
		config.Postman.Retry.Attempts = 1
	}
	if len(config.Reporting.Format) == 0 {
		config.Reporting.Format = []string{"json"}
	}

	return config, nil
}

func (c *Config) applyEnv() {
	setString(&c.Postman.CollectionUID, "POSTMAN_COLLECTION_UID")
	setString(&c.Postman.APIKey, "POSTMAN_API_KEY")
	setString(&c.Postman.BaseURL, "POSTMAN_API_BASE_URL")
	setString(&c.Rails.ProjectPath, "RAILS_PROJECT_PATH")
	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.Model, "OPENAI_MODEL")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&c.History.Driver, "SYNC_HISTORY_DRIVER")
	setString(&c.History.DSN, "SYNC_HISTORY_DSN")
	setString(&c.Reporting.OutputDir, "SYNC_REPORT_DIR")

	if v, err := strconv.Atoi(os.Getenv("POSTMAN_RETRY_ATTEMPTS")); err == nil {
		c.Postman.Retry.Attempts = v
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// RequirePostman reports the Postman settings that are missing.
func (c *Config) RequirePostman() error {
	var missing []string
	if c.Postman.CollectionUID == "" {
		missing = append(missing, "POSTMAN_COLLECTION_UID")
	}
	if c.Postman.APIKey == "" {
		missing = append(missing, "POSTMAN_API_KEY")
	}
	if len(missing) > 0 {
		return syncerrors.NewMissingCredentialError(
			"Set them in the environment, a .env file or the postman section of the config file", missing...)
	}
	return nil
}

// RequireRails reports a missing Rails project path.
func (c *Config) RequireRails() error {
	if c.Rails.ProjectPath == "" {
		return syncerrors.NewMissingCredentialError(
			"Set it in the environment, a .env file or the rails section of the config file", "RAILS_PROJECT_PATH")
	}
	return nil
}

// RequestTimeout is the Postman request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Postman.Timeout) * time.Second
}

// RetryDelay is the pause between Postman attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Postman.Retry.Delay) * time.Second
}
