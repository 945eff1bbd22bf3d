package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaEngine talks to a local Ollama server
type OllamaEngine struct {
	host         string
	model        string
	maxChars     int
	probeTimeout time.Duration
	client       *http.Client
}

// NewOllamaEngine creates an engine for the Ollama server at host
func NewOllamaEngine(host, model string, client *http.Client) *OllamaEngine {
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaEngine{
		host:         strings.TrimRight(host, "/"),
		model:        model,
		maxChars:     12000,
		probeTimeout: 2 * time.Second,
		client:       client,
	}
}

func (e *OllamaEngine) Name() string {
	return fmt.Sprintf("ollama (%s)", e.model)
}

// Available probes GET /api/tags within the probe timeout.
func (e *OllamaEngine) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		LogDebug("ollama probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < 400
}

func (e *OllamaEngine) Invoke(ctx context.Context, inv Invocation) (EngineOutput, error) {
	payload := map[string]any{
		"model":  e.model,
		"prompt": buildPrompt(inv, e.maxChars),
		"stream": false,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return EngineOutput{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return EngineOutput{}, err
	}
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
		return EngineOutput{}, fmt.Errorf("ollama API error: %s (%s)", resp.Status, string(body))
	}

	var parsed struct {
		Response        string `json:"response"`
		Done            bool   `json:"done"`
		PromptEvalCount int    `json:"prompt_eval_count"`
		EvalCount       int    `json:"eval_count"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return EngineOutput{}, err
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return EngineOutput{}, fmt.Errorf("ollama returned an empty response")
	}

	raw, _ := json.Marshal(map[string]any{
		"model":         e.model,
		"input_tokens":  parsed.PromptEvalCount,
		"output_tokens": parsed.EvalCount,
	})
	return EngineOutput{Text: strings.TrimSpace(parsed.Response), Raw: string(raw)}, nil
}
