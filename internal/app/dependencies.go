package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/confirmflow/internal/confirm"
	"github.com/nfrund/confirmflow/internal/config"
	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/nfrund/confirmflow/internal/email"
	"github.com/nfrund/confirmflow/internal/i18n"
	"github.com/nfrund/confirmflow/internal/pubsub"
	"github.com/nfrund/confirmflow/internal/storage"
	"github.com/nfrund/confirmflow/internal/verification"
	"github.com/spf13/afero"
)

// Dependencies holds the core services shared by the HTTP server and the CLI.
// It is built once by the entrypoint and passed down explicitly.
type Dependencies struct {
	Bus       *pubsub.Bus
	Store     storage.KV
	Service   *verification.Service
	Verifier  domain.Verifier
	Issuer    CodeIssuer
	Catalog   *i18n.Catalog
	Overrides confirm.Overrides

	closers []func() error
}

// CodeIssuer sends a fresh confirmation code to an address.
type CodeIssuer interface {
	Issue(ctx context.Context, email string) error
}

// Options tweak how Build assembles the dependencies.
type Options struct {
	// Fs is used to read the form overrides file. Defaults to the OS filesystem.
	Fs afero.Fs
}

// Build wires the code store, email sender, verification service, traced
// event bus, translation catalog and form overrides from cfg.
func Build(ctx context.Context, cfg config.Provider, opts Options) (Dependencies, error) {
	var deps Dependencies

	store, err := newStore(ctx, cfg, &deps)
	if err != nil {
		return Dependencies{}, err
	}

	sender, err := email.NewEmailService(cfg)
	if err != nil {
		_ = deps.Close()
		return Dependencies{}, fmt.Errorf("email: %w", err)
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	overrides, err := confirm.LoadOverrides(fs, cfg.GetFormOverridesFile())
	if err != nil {
		_ = deps.Close()
		return Dependencies{}, err
	}

	service := verification.NewService(store, sender, verification.Options{
		CodeTTL:        cfg.GetCodeTTL(),
		ResendInterval: cfg.GetResendInterval(),
		MaxAttempts:    cfg.GetCodeMaxAttempts(),
	})

	tracer, shutdownTracing, err := pubsub.SetupTracing(ctx, pubsub.TracingConfig{
		Enabled:     cfg.GetTracingEnabled(),
		ServiceName: cfg.GetTracingServiceName(),
		ZipkinURL:   cfg.GetZipkinURL(),
	})
	if err != nil {
		_ = deps.Close()
		return Dependencies{}, err
	}
	deps.closers = append(deps.closers, func() error {
		return shutdownTracing(context.Background())
	})

	bus := pubsub.NewBus(pubsub.WithTracer(tracer))
	deps.closers = append(deps.closers, bus.Close)

	deps.Bus = bus
	deps.Store = store
	deps.Service = service
	deps.Verifier = service
	deps.Issuer = service
	deps.Catalog = i18n.NewCatalog(cfg.GetDefaultLanguage())
	deps.Overrides = overrides
	return deps, nil
}

func newStore(ctx context.Context, cfg config.Provider, deps *Dependencies) (storage.KV, error) {
	switch cfg.GetCodeStore() {
	case "redis":
		rdb, err := storage.DialRedis(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, rdb.Close)
		slog.Info("Using redis code store")
		return storage.NewRedisKV(rdb, "confirmflow:"), nil
	case "", "memory":
		slog.Info("Using in-memory code store")
		return storage.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown code store %q", cfg.GetCodeStore())
	}
}

// Close releases the bus and any store connections in reverse order of
// creation.
func (d *Dependencies) Close() error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.closers = nil
	return firstErr
}
