package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/cts/internal/attendee"
	"github.com/roach88/cts/internal/config"
	"github.com/roach88/cts/internal/database"
	"github.com/roach88/cts/internal/logo"
)

// openStore creates the attendee store the config asks for. The plain
// "memory" adapter uses the seeded in-process store; every other adapter
// goes through the database layer and is seeded on first use.
func openStore(ctx context.Context, db config.Database) (attendee.Store, func() error, error) {
	if db.Adapter == "memory" {
		slog.Debug("using in-memory attendee store", "collection", db.Collection)
		return attendee.NewRegistry(nil).Instance(db.Collection), func() error { return nil }, nil
	}

	adapter, err := database.Init(db.Adapter, db.Collection, database.Options{Path: db.Path})
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	slog.Info("opening database", "adapter", db.Adapter, "collection", db.Collection, "path", db.Path)
	if err := adapter.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if db.Cache {
		if err := adapter.EnableFeature(database.FeatureCache, database.ConflictSkip); err != nil {
			adapter.Close()
			return nil, nil, err
		}
	}

	store := attendee.NewAdapterStore(adapter)
	if err := attendee.SeedDefaults(ctx, store); err != nil {
		adapter.Close()
		return nil, nil, err
	}
	return store, adapter.Close, nil
}

// logoOptions converts the logo config.
func logoOptions(l config.Logo) logo.Options {
	return logo.Options{
		Text:       l.Text,
		Background: l.Background,
		Colors:     l.Colors,
		Zoom:       l.Zoom,
		Ratio:      l.Ratio,
		Animation:  l.Animation,
	}
}
