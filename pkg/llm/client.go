package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/session"
)

// Client speaks the OpenAI-compatible chat completions wire format. Ollama
// serves the same format under <base>/v1, so the only provider differences
// are the base URL and the auth header.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(ref ModelRef, cfg *config.LLM, s *session.Session) (*Client, error) {
	client := &Client{
		model:      ref.Name,
		httpClient: s.Client,
	}

	switch ref.Provider {
	case ProviderOllama:
		client.baseURL = strings.TrimSuffix(cfg.OllamaBaseURL, "/") + "/v1"
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai model %q requires OPENAI_API_KEY", ref.Name)
		}
		client.baseURL = strings.TrimSuffix(cfg.OpenAIBaseURL, "/") + "/v1"
		client.apiKey = cfg.OpenAIAPIKey
	default:
		return nil, fmt.Errorf("unknown provider: %s", ref.Provider)
	}

	return client, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("chat API returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat API returned no choices")
	}

	return &chatResp, nil
}
