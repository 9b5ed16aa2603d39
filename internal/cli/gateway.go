package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harun/rentdesk/internal/config"
	"github.com/harun/rentdesk/internal/observability"
	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/domaintools"
	"github.com/harun/rentdesk/pkg/propertystore"
)

// gateway is the assembled tool stack shared by serve and the tools
// subcommands.
type gateway struct {
	store    *propertystore.Store
	catalog  *aitools.Catalog
	executor *aitools.Executor
	registry *aitools.Registry
}

// buildGateway opens the store, seeds the demo company when configured and
// wires catalog, executor and registry. modes decides the live mode.
func buildGateway(ctx context.Context, cfg *config.Config, modes aitools.ModeProvider, log zerolog.Logger) (*gateway, error) {
	store, err := propertystore.Open(propertystore.Config{
		Path:   cfg.Database.Path,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open property store: %w", err)
	}

	if cfg.Company.Seed {
		if err := store.Seed(ctx, cfg.Company.ID); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed company %s: %w", cfg.Company.ID, err)
		}
	}

	catalog, err := domaintools.NewCatalog(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to build tool catalog: %w", err)
	}

	if cfg.Audit.File != "" {
		if err := observability.InitAuditLogger(cfg.Audit.File); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	executor, err := aitools.NewExecutor(aitools.ExecutorConfig{
		Catalog: catalog,
		Modes:   modes,
		Audit:   aitools.AuditLog{},
		Logger:  log,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	registry, err := aitools.NewRegistry(aitools.RegistryConfig{
		Catalog:  catalog,
		Executor: executor,
		MaxTools: cfg.AI.MaxTools,
		Logger:   log,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &gateway{
		store:    store,
		catalog:  catalog,
		executor: executor,
		registry: registry,
	}, nil
}

func (g *gateway) Close() error {
	if err := observability.GetAuditLogger().Close(); err != nil {
		return err
	}
	return g.store.Close()
}
