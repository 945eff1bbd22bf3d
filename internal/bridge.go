package internal

import (
	"context"
	"encoding/json"
)

// Bridge keys inside the shared namespace
const (
	BridgeResultKey  = "latestResult"
	BridgePendingKey = "hasSharedResult"
)

var (
	flagTrue  = []byte("true")
	flagFalse = []byte("false")
)

// ResultBridge is a single-slot mailbox between the share extension and the
// main app. The payload and the pending flag are written separately, so a
// reader can observe the flag before a new payload lands and get the previous
// (still well-formed) result. Last write wins.
type ResultBridge struct {
	store KVStore
}

// NewResultBridge creates a bridge over store
func NewResultBridge(store KVStore) *ResultBridge {
	return &ResultBridge{store: store}
}

// Save stores resp as the latest result and marks it pending. Errors match
// ErrStorageUnavailable when the medium cannot be reached and
// ErrEncodingFailure when resp cannot be encoded.
func (b *ResultBridge) Save(ctx context.Context, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return &EncodingError{Key: BridgeResultKey, Err: err}
	}
	if err := b.store.Set(ctx, BridgeResultKey, data); err != nil {
		return err
	}
	if err := b.store.Set(ctx, BridgePendingKey, flagTrue); err != nil {
		return err
	}
	LogDebug("Saved %s result to bridge (%d bytes)", resp.Operation, len(data))
	return nil
}

// Load returns the pending result, if any. A payload that cannot be decoded
// clears the pending flag and is reported as absent. With autoConsume a
// successful load clears the flag too.
func (b *ResultBridge) Load(ctx context.Context, autoConsume bool) (*Response, bool) {
	if !b.HasResult(ctx) {
		return nil, false
	}

	data, ok, err := b.store.Get(ctx, BridgeResultKey)
	if err != nil {
		LogWarn("Failed to read bridge payload: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		LogWarn("Discarding undecodable bridge payload: %v", &EncodingError{Key: BridgeResultKey, Err: err})
		b.clearFlag(ctx)
		return nil, false
	}

	if autoConsume {
		b.clearFlag(ctx)
	}
	return &resp, true
}

// HasResult reports whether a result is pending
func (b *ResultBridge) HasResult(ctx context.Context) bool {
	flag, ok, err := b.store.Get(ctx, BridgePendingKey)
	if err != nil {
		LogWarn("Failed to read bridge flag: %v", err)
		return false
	}
	return ok && string(flag) == string(flagTrue)
}

// MarkAsRead clears the pending flag and leaves the payload in place
func (b *ResultBridge) MarkAsRead(ctx context.Context) error {
	return b.store.Set(ctx, BridgePendingKey, flagFalse)
}

// Clear removes the payload and clears the pending flag
func (b *ResultBridge) Clear(ctx context.Context) error {
	if err := b.store.Delete(ctx, BridgeResultKey); err != nil {
		return err
	}
	return b.store.Set(ctx, BridgePendingKey, flagFalse)
}

// Peek returns the stored payload regardless of the pending flag, without
// consuming it.
func (b *ResultBridge) Peek(ctx context.Context) (*Response, bool, error) {
	data, ok, err := b.store.Get(ctx, BridgeResultKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, &EncodingError{Key: BridgeResultKey, Err: err}
	}
	return &resp, true, nil
}

func (b *ResultBridge) clearFlag(ctx context.Context) {
	if err := b.MarkAsRead(ctx); err != nil {
		LogWarn("Failed to clear bridge flag: %v", err)
	}
}
