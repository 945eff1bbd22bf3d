package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
)

// EngineTone is the tone vocabulary understood by engines
type EngineTone string

const (
	EngineToneFormal       EngineTone = "formal"
	EngineToneCasual       EngineTone = "casual"
	EngineToneProfessional EngineTone = "professional"
	EngineToneConcise      EngineTone = "concise"
)

// EngineToneFor maps an internal tone onto the engine vocabulary. Every Tone
// has a mapping; unknown values fall back to formal.
func EngineToneFor(t Tone) EngineTone {
	switch t {
	case ToneCasual:
		return EngineToneCasual
	case ToneProfessional:
		return EngineToneProfessional
	case ToneConcise:
		return EngineToneConcise
	default:
		return EngineToneFormal
	}
}

// Invocation is a validated request in engine terms
type Invocation struct {
	Operation      Operation
	Text           string
	SentenceLimit  int
	TargetLanguage string
	Tone           EngineTone
}

// EngineOutput is what an engine hands back for one invocation
type EngineOutput struct {
	Text string
	Raw  string // optional diagnostics
}

// Engine performs the actual text transformation.
type Engine interface {
	Name() string
	// Available reports whether the engine can serve requests right now.
	Available(ctx context.Context) bool
	Invoke(ctx context.Context, inv Invocation) (EngineOutput, error)
}

// NewEngine builds the primary engine named by cfg.Provider. The simulated
// provider yields a nil primary so the gateway goes straight to the fallback.
func NewEngine(cfg EngineConfig) (Engine, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return &OllamaEngine{
			host:         strings.TrimRight(cfg.OllamaHost, "/"),
			model:        cfg.OllamaModel,
			maxChars:     cfg.MaxInputChars,
			probeTimeout: cfg.ProbeTimeout,
			client:       client,
		}, nil
	case "openai":
		return &OpenAIEngine{
			apiKey:   cfg.OpenAIKey,
			model:    cfg.OpenAIModel,
			base:     strings.TrimRight(cfg.OpenAIBaseURL, "/"),
			maxChars: cfg.MaxInputChars,
			client:   client,
		}, nil
	case "simulated":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q", cfg.Provider)
	}
}

// NewGatewayFromConfig wires the configured primary engine and, when enabled,
// the simulated fallback.
func NewGatewayFromConfig(cfg EngineConfig) (*Gateway, error) {
	primary, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	var fallback Engine
	if cfg.Fallback || primary == nil {
		fallback = NewSimulatedEngine(cfg.SimulatedDelay, nil)
	}
	return NewGateway(primary, fallback, nil), nil
}

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func buildPrompt(inv Invocation, maxChars int) string {
	content := clipText(inv.Text, maxChars)
	switch inv.Operation {
	case OperationSummarize:
		return fmt.Sprintf("Summarize the following text in at most %d sentences. "+
			"Reply with the summary only.\n\nText:\n%s", inv.SentenceLimit, content)
	case OperationTranslate:
		return fmt.Sprintf("Translate the following text into the language with code %q. "+
			"Reply with the translation only.\n\nText:\n%s", inv.TargetLanguage, content)
	default:
		return fmt.Sprintf("Rewrite the following text in a %s tone, keeping its meaning. "+
			"Reply with the rewritten text only.\n\nText:\n%s", inv.Tone, content)
	}
}

// SimulatedEngine is a deterministic engine used when no real engine is
// reachable. Its output embeds the input size so results stay traceable.
type SimulatedEngine struct {
	delay time.Duration
	clock clockwork.Clock
}

// NewSimulatedEngine creates a simulated engine that waits delay before
// answering. A nil clock means the real clock.
func NewSimulatedEngine(delay time.Duration, clock clockwork.Clock) *SimulatedEngine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SimulatedEngine{delay: delay, clock: clock}
}

func (e *SimulatedEngine) Name() string {
	return "simulated"
}

func (e *SimulatedEngine) Available(context.Context) bool {
	return true
}

func (e *SimulatedEngine) Invoke(ctx context.Context, inv Invocation) (EngineOutput, error) {
	if e.delay > 0 {
		select {
		case <-ctx.Done():
			return EngineOutput{}, ctx.Err()
		case <-e.clock.After(e.delay):
		}
	}

	count := utf8.RuneCountInString(inv.Text)
	var text string
	diag := map[string]interface{}{}
	switch inv.Operation {
	case OperationSummarize:
		text = fmt.Sprintf("This is an automatically generated summary. The original text has %d characters and was condensed to at most %d sentences.", count, inv.SentenceLimit)
		diag["input_tokens"] = count / 4
		diag["output_tokens"] = 30
		diag["model"] = "fliey-summarizer-1.0"
		diag["truncated"] = false
	case OperationTranslate:
		text = fmt.Sprintf("This is a translated text to %s. The original text has %d characters.", inv.TargetLanguage, count)
		diag["target_lang"] = inv.TargetLanguage
		diag["confidence"] = 0.92
		diag["model"] = "fliey-translator-1.0"
	case OperationRewrite:
		text = fmt.Sprintf("This text was rewritten in a %s tone. The original text has %d characters; its core content is preserved.", inv.Tone, count)
		diag["tone"] = string(inv.Tone)
		diag["modified_level"] = "medium"
		diag["model"] = "fliey-rewriter-1.0"
	default:
		return EngineOutput{}, fmt.Errorf("unsupported operation %q", inv.Operation)
	}

	raw, err := json.Marshal(diag)
	if err != nil {
		return EngineOutput{}, err
	}
	return EngineOutput{Text: text, Raw: string(raw)}, nil
}
