package internal

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
)

// Gateway validates requests, picks an engine and shapes the response.
// It holds no mutable state and is safe for concurrent use.
type Gateway struct {
	primary  Engine
	fallback Engine
	clock    clockwork.Clock
}

// ProcessResult is the completion value delivered by ProcessAsync
type ProcessResult struct {
	Response *Response
	Err      error
}

// NewGateway creates a gateway. primary is the real engine and may be nil;
// fallback is used when primary is missing or unavailable and may also be nil.
func NewGateway(primary, fallback Engine, clock clockwork.Clock) *Gateway {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Gateway{primary: primary, fallback: fallback, clock: clock}
}

// Process runs req to completion.
func (g *Gateway) Process(ctx context.Context, req Request) (*Response, error) {
	norm, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	engine, err := g.resolve(ctx)
	if err != nil {
		return nil, err
	}

	inv := Invocation{
		Operation:      norm.Operation,
		Text:           norm.Text,
		SentenceLimit:  norm.SentenceLimit,
		TargetLanguage: norm.TargetLanguage,
		Tone:           EngineToneFor(norm.Tone),
	}

	start := g.clock.Now()
	out, err := engine.Invoke(ctx, inv)
	elapsed := g.clock.Since(start)
	if err != nil {
		return nil, &EngineError{Engine: engine.Name(), Operation: norm.Operation, Err: err}
	}

	Logger().Debug("operation complete",
		"engine", engine.Name(),
		"operation", string(norm.Operation),
		"elapsed", elapsed)

	return &Response{
		Text:           out.Text,
		Operation:      norm.Operation,
		ElapsedSeconds: elapsed.Seconds(),
		RawDiagnostics: out.Raw,
		Formatted:      formatMarkdown(norm, out.Text),
	}, nil
}

// ProcessAsync runs Process on its own goroutine and delivers exactly one
// result on the returned channel.
func (g *Gateway) ProcessAsync(ctx context.Context, req Request) <-chan ProcessResult {
	ch := make(chan ProcessResult, 1)
	go func() {
		defer close(ch)
		resp, err := g.Process(ctx, req)
		ch <- ProcessResult{Response: resp, Err: err}
	}()
	return ch
}

// ActiveEngine reports which engine a request would be routed to right now.
func (g *Gateway) ActiveEngine(ctx context.Context) (Engine, error) {
	return g.resolve(ctx)
}

func (g *Gateway) resolve(ctx context.Context) (Engine, error) {
	if g.primary != nil && g.primary.Available(ctx) {
		return g.primary, nil
	}
	if g.fallback != nil {
		if g.primary != nil {
			LogDebug("engine %s unavailable, using %s", g.primary.Name(), g.fallback.Name())
		}
		return g.fallback, nil
	}
	if g.primary != nil {
		return nil, fmt.Errorf("%w: %s is not reachable", ErrCapabilityUnavailable, g.primary.Name())
	}
	return nil, fmt.Errorf("%w: no engine configured", ErrCapabilityUnavailable)
}

func formatMarkdown(req Request, text string) string {
	switch req.Operation {
	case OperationSummarize:
		return "## Summary\n\n" + text
	case OperationTranslate:
		return fmt.Sprintf("## Translation (%s)\n\n%s", req.TargetLanguage, text)
	case OperationRewrite:
		return fmt.Sprintf("## Rewrite (tone: %s)\n\n%s", req.Tone.Description(), text)
	default:
		return text
	}
}
