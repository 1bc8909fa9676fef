package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// OpenAITransport submits prompts to an OpenAI-compatible chat-completions
// endpoint (OpenAI, DeepSeek, Qwen and friends all speak this shape).
type OpenAITransport struct {
	BaseURL    string // e.g. https://api.openai.com/v1
	APIKey     string
	Model      string
	MaxRetries int // retries on 429/5xx; 0 means the default of 2
	httpClient *http.Client
}

func NewOpenAITransport(baseURL, apiKey, model string) *OpenAITransport {
	return &OpenAITransport{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// SubmitQuery sends the rendered prompt as a single user message and returns
// the assistant's text content.
func (t *OpenAITransport) SubmitQuery(ctx context.Context, query string) (string, error) {
	if t.APIKey == "" {
		return "", fmt.Errorf("openai transport not configured: missing API key")
	}

	payload := map[string]any{
		"model": t.Model,
		"messages": []map[string]string{
			{"role": "user", "content": query},
		},
		"temperature": 0.2,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	maxRetries := t.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(), bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+t.APIKey)

		resp, err := t.client().Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("llm api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
			log.Printf("LLM request retryable failure (attempt %d/%d): %v", attempt+1, maxRetries+1, lastErr)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("llm api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
		}

		content := gjson.GetBytes(respBody, "choices.0.message.content")
		if !content.Exists() {
			return "", fmt.Errorf("llm response has no choices[0].message.content")
		}
		return content.String(), nil
	}
	return "", fmt.Errorf("llm request failed after %d attempts: %w", maxRetries+1, lastErr)
}

func (t *OpenAITransport) endpoint() string {
	url := strings.TrimRight(t.BaseURL, "/")
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	// Tolerate configs that already include the full path.
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

func (t *OpenAITransport) client() *http.Client {
	if t.httpClient != nil {
		return t.httpClient
	}
	return http.DefaultClient
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
