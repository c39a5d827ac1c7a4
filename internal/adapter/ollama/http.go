package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/guillermoBallester/asksql/internal/core/domain"
)

const defaultTimeout = 120 * time.Second

type HTTPConfig struct {
	URL     string
	Timeout time.Duration
}

// HTTPGenerator calls Ollama's /api/generate endpoint with streaming off.
type HTTPGenerator struct {
	url    string
	client *http.Client
}

func NewHTTPGenerator(cfg HTTPConfig) (*HTTPGenerator, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, fmt.Errorf("generation endpoint URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPGenerator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("%w: marshal generate payload: %w", domain.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build generate request: %w", domain.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request generation: %w", domain.ErrGeneration, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read generate response: %w", domain.ErrGeneration, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: generate failed status=%d body=%s", domain.ErrGeneration, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode generate response: %w", domain.ErrGeneration, err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrGeneration, parsed.Error)
	}
	return strings.TrimSpace(strings.ToValidUTF8(parsed.Response, "�")), nil
}
