package chatview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mistral-chat/internal/models"
)

// ProxyError is a non-2xx answer from the chat endpoint. Detail carries the
// most specific message the endpoint returned, if any.
type ProxyError struct {
	StatusCode int
	Detail     string
}

func (e *ProxyError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("chat request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("chat request failed with status %d: %s", e.StatusCode, e.Detail)
}

var errNoChoices = errors.New("completion response has no choices")

// ProxyClient posts conversations to the chat endpoint.
type ProxyClient struct {
	endpoint string
	client   *http.Client
}

func NewProxyClient(endpoint string, client *http.Client) *ProxyClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &ProxyClient{endpoint: endpoint, client: client}
}

// Complete sends the whole conversation and returns the assistant's text.
// The response body is read once and then parsed according to the status.
func (c *ProxyClient) Complete(ctx context.Context, messages []models.Message) (string, error) {
	payload, err := json.Marshal(models.ChatRequest{Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProxyError{StatusCode: resp.StatusCode, Detail: failureDetail(raw)}
	}

	var cr models.CompletionResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errNoChoices
	}
	return cr.Choices[0].Message.Content, nil
}

// failureDetail prefers details over error; a body that is not JSON yields "".
func failureDetail(raw []byte) string {
	var body models.ProxyErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Details != "" {
		return body.Details
	}
	return body.Error
}
