package cmd

import (
	"context"
	"fmt"

	"datasync/core/config"
	"datasync/core/database"
	"datasync/core/logger"
	"datasync/core/model"
	"datasync/core/provider"
	"datasync/core/storage"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// session is a configured provider together with what it needs to be torn down.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	provider *provider.Provider
	endpoint string
	closers  []func()
}

// openSession loads configuration and builds the provider it describes.
// endpoint overrides the configured endpoint when not empty.
func openSession(ctx context.Context, endpoint string) (*session, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	s, err := newSession(ctx, cfg, logg)
	if err != nil {
		_ = logg.Sync()
		return nil, err
	}
	if endpoint != "" {
		s.endpoint = endpoint
	}
	return s, nil
}

func newSession(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*session, error) {
	s := &session{
		cfg:      cfg,
		log:      logg.With(zap.String("provider", cfg.Provider.Name), zap.String("source", cfg.Provider.Source)),
		endpoint: cfg.Provider.Endpoint,
	}

	fetcher, err := s.fetcher(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	constructor, err := s.constructor()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.provider = provider.New(
		provider.WithOrigin(cfg.Provider.Origin),
		provider.WithFetcher(fetcher),
		provider.WithConstructor(constructor),
		provider.WithKeyFunc(provider.FieldKey(cfg.Provider.KeyField)),
		provider.WithLogger(s.log),
		provider.WithTracer(otel.Tracer("datasync/provider")),
	)
	return s, nil
}

// fetcher returns the fetch capability for the configured source.
func (s *session) fetcher(ctx context.Context) (provider.Fetcher, error) {
	switch s.cfg.Provider.Source {
	case provider.SourceStorage:
		client, err := storage.NewClient(s.cfg.Storage)
		if err != nil {
			return nil, err
		}
		f := storage.NewFetcher(client, s.cfg.Storage.Bucket)
		if err := f.Check(ctx); err != nil {
			return nil, err
		}
		s.log.Info("Using object storage source", zap.String("bucket", s.cfg.Storage.Bucket))
		return f, nil

	case provider.SourceDatabase:
		db, err := database.Connect(s.cfg.Database)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			s.closers = append(s.closers, func() { _ = sqlDB.Close() })
		}
		s.log.Info("Using database source", zap.String("driver", s.cfg.Database.Driver), zap.String("database", s.cfg.Database.Name))
		return database.NewFetcher(db, s.cfg.Database.KeyColumn), nil

	case provider.SourceHTTP:
		return provider.NewHTTPFetcher(nil, s.cfg.Provider.Timeout()), nil

	default:
		return nil, fmt.Errorf("invalid provider source %q", s.cfg.Provider.Source)
	}
}

// constructor returns the model constructor when a model is configured, and
// plain decoded values otherwise.
func (s *session) constructor() (provider.Constructor, error) {
	ref := s.cfg.Provider.Model
	if ref == "" {
		return provider.Plain, nil
	}
	if s.cfg.Provider.SchemaFile == "" {
		return nil, fmt.Errorf("model %s needs a schema file", ref)
	}

	reg := model.NewRegistry()
	if _, err := model.LoadSchemaFile(s.cfg.Provider.SchemaFile, reg); err != nil {
		return nil, err
	}
	if _, err := reg.Resolve(ref); err != nil {
		return nil, err
	}
	for _, missing := range reg.Unresolved() {
		s.log.Warn("Unresolved model reference", zap.String("reference", missing))
	}
	return provider.ModelConstructor(reg, ref), nil
}

// Close stops the provider and releases its source.
func (s *session) Close() {
	if s.provider != nil {
		s.provider.Cancel()
	}
	for _, fn := range s.closers {
		fn()
	}
	_ = s.log.Sync()
}
