// Package client talks to the Postman collections API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	syncerrors "postman-sync/internal/errors"
	"postman-sync/internal/postman"
)

// Config holds configuration for the Postman client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retry   RetryConfig
}

// RetryConfig holds configuration for retry behavior. Only network errors,
// 429 and 5xx responses are retried.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Client is a Postman API client
type Client struct {
	config Config
	http   *http.Client
	logger zerolog.Logger
}

// New creates a Postman client
func New(config Config, logger zerolog.Logger) *Client {
	if config.Retry.Attempts < 1 {
		config.Retry.Attempts = 1
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("component", "postman").Logger(),
	}
}

// ConnectionStatus is the outcome of probing a collection.
type ConnectionStatus struct {
	StatusCode     int
	CollectionName string
}

// FetchCollection downloads the collection with the given UID.
func (c *Client) FetchCollection(ctx context.Context, uid string) (*postman.Envelope, error) {
	body, err := c.do(ctx, "fetch collection", http.MethodGet, uid, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Collection *postman.Collection `json:"collection"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, syncerrors.NewMalformedInputError("collection", "response is not a Postman collection", err)
	}
	if resp.Collection == nil {
		return nil, syncerrors.NewMalformedInputError("collection", "response has no collection", nil)
	}
	c.logger.Debug().Str("collection", uid).Int("items", len(resp.Collection.Item)).Msg("fetched collection")
	return &postman.Envelope{Collection: *resp.Collection}, nil
}

// UpdateCollection replaces the collection with the given UID.
func (c *Client) UpdateCollection(ctx context.Context, uid string, env *postman.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}
	if _, err := c.do(ctx, "update collection", http.MethodPut, uid, payload); err != nil {
		return err
	}
	c.logger.Info().Str("collection", uid).Int("items", len(env.Collection.Item)).Msg("updated collection")
	return nil
}

// CheckConnection probes the collection once, without retries. Any HTTP
// response is reported through the status; only transport failures are
// errors.
func (c *Client) CheckConnection(ctx context.Context, uid string) (ConnectionStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, uid, nil)
	if err != nil {
		return ConnectionStatus{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ConnectionStatus{}, syncerrors.NewCollaboratorError("check connection", 0, "", err)
	}
	defer resp.Body.Close()

	status := ConnectionStatus{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusOK {
		var env struct {
			Collection struct {
				Info struct {
					Name string `json:"name"`
				} `json:"info"`
			} `json:"collection"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			status.CollectionName = env.Collection.Info.Name
		}
		if status.CollectionName == "" {
			status.CollectionName = "Unknown"
		}
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, operation, method, uid string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.config.Retry.Attempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn().Err(lastErr).Int("attempt", attempt+1).Msg("retrying " + operation)
			select {
			case <-ctx.Done():
				return nil, syncerrors.NewCollaboratorError(operation, 0, "", ctx.Err())
			case <-time.After(c.config.Retry.Delay):
			}
		}

		body, retry, err := c.once(ctx, operation, method, uid, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, operation, method, uid string, payload []byte) ([]byte, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, uid, reader)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, syncerrors.NewCollaboratorError(operation, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, syncerrors.NewCollaboratorError(operation, resp.StatusCode, "", fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, syncerrors.NewCollaboratorError(operation, resp.StatusCode, errorMessage(body), nil)
	}
	return body, false, nil
}

func (c *Client) newRequest(ctx context.Context, method, uid string, body io.Reader) (*http.Request, error) {
	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/collections/" + url.PathEscape(uid)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

const maxErrorBody = 500

// errorMessage extracts the message of a Postman error response, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		if parsed.Error.Name != "" {
			return parsed.Error.Name + ": " + parsed.Error.Message
		}
		return parsed.Error.Message
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}
