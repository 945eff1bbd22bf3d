package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIEngine talks to an OpenAI compatible chat completions API
type OpenAIEngine struct {
	apiKey   string
	model    string
	base     string
	maxChars int
	client   *http.Client
}

// NewOpenAIEngine creates an engine for the API rooted at base
func NewOpenAIEngine(base, apiKey, model string, client *http.Client) *OpenAIEngine {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIEngine{
		apiKey:   apiKey,
		model:    model,
		base:     strings.TrimRight(base, "/"),
		maxChars: 12000,
		client:   client,
	}
}

func (e *OpenAIEngine) Name() string {
	return fmt.Sprintf("openai (%s)", e.model)
}

// Available reports whether an API key is configured. No request is made.
func (e *OpenAIEngine) Available(context.Context) bool {
	return strings.TrimSpace(e.apiKey) != ""
}

func (e *OpenAIEngine) Invoke(ctx context.Context, inv Invocation) (EngineOutput, error) {
	payload := map[string]any{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a precise writing assistant."},
			{"role": "user", "content": buildPrompt(inv, e.maxChars)},
		},
		"temperature": 0.2,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return EngineOutput{}, err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", e.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return EngineOutput{}, err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return EngineOutput{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return EngineOutput{}, err
	}
	if resp.StatusCode >= 400 {
		return EngineOutput{}, fmt.Errorf("openai API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage json.RawMessage `json:"usage"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return EngineOutput{}, err
	}
	if len(parsed.Choices) == 0 {
		return EngineOutput{}, fmt.Errorf("openai API returned no choices")
	}

	var raw string
	if len(parsed.Usage) > 0 {
		raw = string(parsed.Usage)
	}
	return EngineOutput{Text: strings.TrimSpace(parsed.Choices[0].Message.Content), Raw: raw}, nil
}
