package internal

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

// Source names recorded in history for inputs that are not files
const (
	SourceTextFragment    = "Text fragment"
	SourceSharedExtension = "Shared extension"
)

// WorkflowState is the coarse progress of a workflow run
type WorkflowState string

const (
	StateIdle       WorkflowState = "idle"
	StateParsing    WorkflowState = "parsing"
	StateProcessing WorkflowState = "processing"
	StateComplete   WorkflowState = "complete"
	StateError      WorkflowState = "error"
)

// StateFunc observes state transitions. err is set only for StateError.
type StateFunc func(state WorkflowState, err error)

// ProcessOptions selects the operation and its parameters for a run
type ProcessOptions struct {
	Operation      Operation
	SentenceLimit  int
	TargetLanguage string
	Tone           Tone
}

func (o ProcessOptions) request(text string) Request {
	return Request{
		Text:           text,
		Operation:      o.Operation,
		SentenceLimit:  o.SentenceLimit,
		TargetLanguage: o.TargetLanguage,
		Tone:           o.Tone,
	}
}

type stateTracker struct {
	mu      sync.Mutex
	state   WorkflowState
	lastErr error
	notify  StateFunc
}

func (s *stateTracker) set(state WorkflowState, err error) {
	s.mu.Lock()
	s.state = state
	s.lastErr = err
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		notify(state, err)
	}
}

func (s *stateTracker) fail(err error) error {
	s.set(StateError, err)
	return err
}

// State returns the current state and the error that caused StateError
func (s *stateTracker) State() (WorkflowState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		return StateIdle, nil
	}
	return s.state, s.lastErr
}

// OnStateChange installs fn as the transition observer
func (s *stateTracker) OnStateChange(fn StateFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// App is the main application flow: extract, process, record in history.
// History may be nil, in which case nothing is recorded.
type App struct {
	stateTracker
	extractor *Extractor
	gateway   *Gateway
	history   *HistoryStore
	bridge    *ResultBridge
}

// NewApp wires the main flow together
func NewApp(extractor *Extractor, gateway *Gateway, history *HistoryStore, bridge *ResultBridge) *App {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &App{extractor: extractor, gateway: gateway, history: history, bridge: bridge}
}

// ImportFile extracts path, runs the operation and records the result under
// the file's base name
func (a *App) ImportFile(ctx context.Context, path string, opts ProcessOptions) (*Response, error) {
	a.set(StateParsing, nil)
	text, err := a.extractor.ExtractText(ctx, path)
	if err != nil {
		return nil, a.fail(err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, a.fail(&ExtractionError{Path: path, Reason: "no text found"})
	}
	return a.run(ctx, opts.request(text), filepath.Base(path))
}

// ProcessText runs the operation on a pasted fragment
func (a *App) ProcessText(ctx context.Context, text string, opts ProcessOptions) (*Response, error) {
	return a.run(ctx, opts.request(text), SourceTextFragment)
}

func (a *App) run(ctx context.Context, req Request, source string) (*Response, error) {
	a.set(StateProcessing, nil)
	resp, err := a.gateway.Process(ctx, req)
	if err != nil {
		return nil, a.fail(err)
	}
	if err := a.record(ctx, resp, source); err != nil {
		return resp, a.fail(err)
	}
	a.set(StateComplete, nil)
	return resp, nil
}

func (a *App) record(ctx context.Context, resp *Response, source string) error {
	if a.history == nil {
		return nil
	}
	_, _, err := a.history.Insert(ctx, resp, source)
	return err
}

// SyncShared moves a pending bridge result into history. The pending flag is
// cleared only after the history write succeeds, so a failed write leaves the
// result for the next sync.
func (a *App) SyncShared(ctx context.Context) (*Response, bool, error) {
	if a.bridge == nil {
		return nil, false, nil
	}
	resp, ok := a.bridge.Load(ctx, false)
	if !ok {
		return nil, false, nil
	}
	if err := a.record(ctx, resp, SourceSharedExtension); err != nil {
		return nil, false, err
	}
	if err := a.bridge.MarkAsRead(ctx); err != nil {
		return resp, true, err
	}
	LogInfo("Imported shared %s result", resp.Operation)
	return resp, true, nil
}

// ShareExtension is the share-sheet flow: process the shared content and hand
// the result to the main app through the bridge
type ShareExtension struct {
	stateTracker
	extractor *Extractor
	gateway   *Gateway
	bridge    *ResultBridge
}

// NewShareExtension creates the share flow
func NewShareExtension(extractor *Extractor, gateway *Gateway, bridge *ResultBridge) *ShareExtension {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &ShareExtension{extractor: extractor, gateway: gateway, bridge: bridge}
}

// ProcessText processes shared text and saves the result to the bridge
func (s *ShareExtension) ProcessText(ctx context.Context, text string, opts ProcessOptions) (*Response, error) {
	return s.run(ctx, opts.request(text))
}

// ProcessFile processes a shared file and saves the result to the bridge
func (s *ShareExtension) ProcessFile(ctx context.Context, path string, opts ProcessOptions) (*Response, error) {
	s.set(StateParsing, nil)
	text, err := s.extractor.ExtractText(ctx, path)
	if err != nil {
		return nil, s.fail(err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, s.fail(&ExtractionError{Path: path, Reason: "no text found"})
	}
	return s.run(ctx, opts.request(text))
}

func (s *ShareExtension) run(ctx context.Context, req Request) (*Response, error) {
	s.set(StateProcessing, nil)
	resp, err := s.gateway.Process(ctx, req)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := s.bridge.Save(ctx, resp); err != nil {
		return resp, s.fail(err)
	}
	s.set(StateComplete, nil)
	return resp, nil
}
