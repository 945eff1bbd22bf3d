package internal

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestEngineToneFor(t *testing.T) {
	tests := map[Tone]EngineTone{
		ToneFormal:       EngineToneFormal,
		ToneCasual:       EngineToneCasual,
		ToneProfessional: EngineToneProfessional,
		ToneConcise:      EngineToneConcise,
		"":               EngineToneFormal,
	}
	for in, want := range tests {
		if got := EngineToneFor(in); got != want {
			t.Errorf("EngineToneFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClipText(t *testing.T) {
	if got := clipText("  hello  ", 10); got != "hello" {
		t.Errorf("clipText() = %q, want hello", got)
	}
	if got := clipText("héllo wörld", 5); got != "héllo" {
		t.Errorf("clipText() should clip on runes, got %q", got)
	}
	if got := clipText("abc", 0); got != "abc" {
		t.Errorf("clipText() with no limit = %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		inv  Invocation
		want string
	}{
		{Invocation{Operation: OperationSummarize, Text: "body", SentenceLimit: 3}, "at most 3 sentences"},
		{Invocation{Operation: OperationTranslate, Text: "body", TargetLanguage: "fr"}, `code "fr"`},
		{Invocation{Operation: OperationRewrite, Text: "body", Tone: EngineToneCasual}, "casual tone"},
	}
	for _, tt := range tests {
		got := buildPrompt(tt.inv, 100)
		if !strings.Contains(got, tt.want) || !strings.HasSuffix(got, "body") {
			t.Errorf("buildPrompt(%s) = %q, want mention of %q", tt.inv.Operation, got, tt.want)
		}
	}
}

func TestSimulatedEngine(t *testing.T) {
	engine := NewSimulatedEngine(0, nil)
	text := strings.Repeat("中", 50)

	tests := []struct {
		inv  Invocation
		want string
		key  string
	}{
		{Invocation{Operation: OperationSummarize, Text: text, SentenceLimit: 5}, "50 characters", "input_tokens"},
		{Invocation{Operation: OperationTranslate, Text: text, TargetLanguage: "fr"}, "translated text to fr", "target_lang"},
		{Invocation{Operation: OperationRewrite, Text: text, Tone: EngineToneConcise}, "concise tone", "tone"},
	}

	for _, tt := range tests {
		t.Run(string(tt.inv.Operation), func(t *testing.T) {
			out, err := engine.Invoke(context.Background(), tt.inv)
			if err != nil {
				t.Fatalf("Invoke() error = %v", err)
			}
			if !strings.Contains(out.Text, tt.want) {
				t.Errorf("Invoke() text = %q, want %q", out.Text, tt.want)
			}
			var raw map[string]interface{}
			if err := json.Unmarshal([]byte(out.Raw), &raw); err != nil {
				t.Fatalf("raw diagnostics should be JSON: %v", err)
			}
			if _, ok := raw[tt.key]; !ok {
				t.Errorf("raw diagnostics missing %q: %s", tt.key, out.Raw)
			}
		})
	}
}

func TestSimulatedEngine_RuneCount(t *testing.T) {
	out, err := NewSimulatedEngine(0, nil).Invoke(context.Background(), Invocation{Operation: OperationSummarize, Text: "日本語です", SentenceLimit: 1})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(out.Text, "5 characters") {
		t.Errorf("Invoke() should count runes, got %q", out.Text)
	}
}

func TestSimulatedEngine_Delay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	engine := NewSimulatedEngine(500*time.Millisecond, clock)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Invoke(context.Background(), Invocation{Operation: OperationSummarize, Text: "x", SentenceLimit: 1})
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("engine never waited on the clock: %v", err)
	}

	select {
	case <-done:
		t.Fatal("Invoke() returned before the delay elapsed")
	default:
	}

	clock.Advance(500 * time.Millisecond)
	if err := <-done; err != nil {
		t.Errorf("Invoke() error = %v", err)
	}
}

func TestSimulatedEngine_Cancelled(t *testing.T) {
	engine := NewSimulatedEngine(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Invoke(ctx, Invocation{Operation: OperationSummarize, Text: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Invoke() error = %v, want context.Canceled", err)
	}
}

func TestNewEngine(t *testing.T) {
	cfg := EngineConfig{
		OllamaHost:    "http://localhost:11434/",
		OllamaModel:   "m",
		OpenAIBaseURL: "https://api.example.com/v1",
		OpenAIModel:   "gpt",
		Timeout:       time.Second,
		ProbeTimeout:  time.Second,
		MaxInputChars: 100,
	}

	cfg.Provider = "ollama"
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine(ollama) error = %v", err)
	}
	if ollama, ok := e.(*OllamaEngine); !ok || ollama.host != "http://localhost:11434" {
		t.Errorf("NewEngine(ollama) = %#v", e)
	}

	cfg.Provider = "openai"
	e, err = NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine(openai) error = %v", err)
	}
	if _, ok := e.(*OpenAIEngine); !ok {
		t.Errorf("NewEngine(openai) = %T", e)
	}

	cfg.Provider = "simulated"
	e, err = NewEngine(cfg)
	if err != nil || e != nil {
		t.Errorf("NewEngine(simulated) = %v, %v; want nil primary", e, err)
	}

	cfg.Provider = "bogus"
	if _, err := NewEngine(cfg); err == nil {
		t.Error("NewEngine(bogus) should fail")
	}
}

func TestNewGatewayFromConfig_SimulatedOnly(t *testing.T) {
	gw, err := NewGatewayFromConfig(EngineConfig{Provider: "simulated"})
	if err != nil {
		t.Fatalf("NewGatewayFromConfig() error = %v", err)
	}
	engine, err := gw.ActiveEngine(context.Background())
	if err != nil {
		t.Fatalf("ActiveEngine() error = %v", err)
	}
	if engine.Name() != "simulated" {
		t.Errorf("ActiveEngine() = %s, want simulated", engine.Name())
	}
}
