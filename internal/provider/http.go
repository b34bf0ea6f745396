package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPBackend talks to a LibreTranslate-compatible JSON API.
type HTTPBackend struct {
	url    string
	apiKey string
	client *http.Client
}

type httpTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type httpTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// NewHTTPBackend creates a backend posting to url. A nil client uses http.DefaultClient;
// per-call deadlines come from the request context.
func NewHTTPBackend(url, apiKey string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{url: url, apiKey: apiKey, client: client}
}

// Translate translates one text.
func (b *HTTPBackend) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	body, err := json.Marshal(httpTranslateRequest{
		Q:      text,
		Source: "auto",
		Target: targetLanguage,
		Format: "text",
		APIKey: b.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", ErrRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", statusError(resp.StatusCode, string(msg))
	}

	var out httpTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRejected, out.Error)
	}

	return out.TranslatedText, nil
}
