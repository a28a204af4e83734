package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"mistral-chat/internal/models"
)

// MistralConfig carries everything the service needs to reach the completion
// API. It is filled from config.Config at startup.
type MistralConfig struct {
	APIKey      string
	URL         string
	Model       string
	Temperature float64
	MaxTokens   int
}

type MistralService struct {
	cfg    MistralConfig
	client *http.Client
	log    logr.Logger
}

// NewMistralService builds the proxy service. A nil client falls back to
// http.DefaultClient; no request timeout is applied on top of the transport.
func NewMistralService(cfg MistralConfig, client *http.Client, logger logr.Logger) *MistralService {
	if client == nil {
		client = http.DefaultClient
	}
	return &MistralService{
		cfg:    cfg,
		client: client,
		log:    logger.WithName("mistral"),
	}
}

// Complete forwards messages to the completion API and returns the raw JSON
// response body on success.
func (s *MistralService) Complete(ctx context.Context, messages []models.Message) (json.RawMessage, error) {
	if s.cfg.APIKey == "" {
		return nil, &ConfigError{Message: "MISTRAL_API_KEY is not configured"}
	}

	payload, err := json.Marshal(models.CompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody any
		if err := json.Unmarshal(raw, &errBody); err != nil {
			errBody = map[string]any{}
		}
		statusText := statusText(resp)
		s.log.Error(nil, "Mistral API error",
			"status", resp.StatusCode,
			"statusText", statusText,
			"body", errBody,
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, StatusText: statusText}
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("completion response is not valid JSON")
	}

	return json.RawMessage(raw), nil
}

// statusText returns the reason phrase the upstream sent, e.g. "Unauthorized".
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// Error types

type ConfigError struct{ Message string }

func (e *ConfigError) Error() string { return e.Message }

type UpstreamError struct {
	StatusCode int
	StatusText string
}

func (e *UpstreamError) Error() string { return "API call failed: " + e.StatusText }
