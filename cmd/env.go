package cmd

import (
	"context"

	"github.com/iksnae/fliey/internal"
)

// openGateway builds the gateway from the engine section of the config
func openGateway() (*internal.Gateway, error) {
	return internal.NewGatewayFromConfig(cfg.Engine)
}

// openHistory opens the configured history store. Entries older than the
// retention period are purged as the store loads.
func openHistory(ctx context.Context) (*internal.HistoryStore, func(), error) {
	return openHistoryWithRetention(ctx, cfg.History.RetentionDays)
}

func openHistoryWithRetention(ctx context.Context, retentionDays int) (*internal.HistoryStore, func(), error) {
	repo, closeRepo, err := internal.NewHistoryRepository(cfg.History)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := closeRepo(); err != nil {
			internal.LogWarn("Failed to close history: %v", err)
		}
	}

	store, err := internal.OpenHistoryStore(ctx, repo, internal.HistoryOptions{
		DedupWindow:   cfg.History.DedupWindow,
		PreviewLength: cfg.History.PreviewLength,
		RetentionDays: retentionDays,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return store, cleanup, nil
}

// openBridge opens the configured bridge medium
func openBridge() (*internal.ResultBridge, func(), error) {
	store, err := internal.NewKVStore(cfg.Bridge)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			internal.LogWarn("Failed to close bridge: %v", err)
		}
	}
	return internal.NewResultBridge(store), cleanup, nil
}
