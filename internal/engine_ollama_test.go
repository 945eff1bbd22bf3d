package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaEngineInvoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if payload.Model != "ministral-3:latest" {
			t.Errorf("expected model ministral-3:latest, got %s", payload.Model)
		}
		if !strings.Contains(payload.Prompt, "into the language with code \"de\"") {
			t.Errorf("prompt missing target language: %s", payload.Prompt)
		}
		if payload.Stream {
			t.Error("expected streaming to be disabled")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"  Hallo Welt \n","done":true,"prompt_eval_count":12,"eval_count":3}`))
	}))
	defer server.Close()

	engine := NewOllamaEngine(server.URL, "ministral-3:latest", server.Client())
	out, err := engine.Invoke(context.Background(), Invocation{Operation: OperationTranslate, Text: "Hello world", TargetLanguage: "de"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out.Text != "Hallo Welt" {
		t.Errorf("Invoke() text = %q, want %q", out.Text, "Hallo Welt")
	}
	if !strings.Contains(out.Raw, `"output_tokens":3`) {
		t.Errorf("Invoke() raw = %q, want token counts", out.Raw)
	}
}

func TestOllamaEngineInvoke_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"model not found"}`},
		{"empty response", http.StatusOK, `{"response":"","done":true}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			engine := NewOllamaEngine(server.URL, "m", server.Client())
			if _, err := engine.Invoke(context.Background(), Invocation{Operation: OperationSummarize, Text: "x", SentenceLimit: 1}); err == nil {
				t.Error("Invoke() should fail")
			}
		})
	}
}

func TestOllamaEngineAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))

	engine := NewOllamaEngine(server.URL+"/", "m", server.Client())
	if !engine.Available(context.Background()) {
		t.Error("Available() should be true while the server answers /api/tags")
	}

	server.Close()
	if engine.Available(context.Background()) {
		t.Error("Available() should be false once the server is gone")
	}
}
