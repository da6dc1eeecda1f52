// Package backend picks the data store the service runs on.
package backend

import (
	"context"
	"fmt"

	"tourops/internal/config"
	"tourops/internal/repository"
	"tourops/internal/repository/local"
	"tourops/internal/repository/remote"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// Option tunes Open.
type Option func(*options)

type options struct {
	sqlLog gormlogger.Interface
}

// WithSQLLogger routes the statements of the chosen backend to l.
func WithSQLLogger(l gormlogger.Interface) Option {
	return func(o *options) { o.sqlLog = l }
}

// Swapped in tests.
var (
	openRemote = func(ctx context.Context, cfg config.RemoteConfig, l gormlogger.Interface) (repository.DataStore, error) {
		return remote.Open(ctx, cfg, l)
	}
	openLocal = func(path string, l gormlogger.Interface) (repository.DataStore, error) {
		return local.Open(path, l)
	}
)

// Open returns the remote store when it is configured and reachable, and the
// local store otherwise. A failed remote is logged and never returned as an
// error; only a local store that cannot be opened fails the call.
func Open(ctx context.Context, cfg config.StorageConfig, log *zap.Logger, opts ...Option) (repository.DataStore, error) {
	o := options{sqlLog: gormlogger.Discard}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Remote.Configured() {
		ds, err := openRemote(ctx, cfg.Remote, o.sqlLog)
		if err == nil {
			log.Info("storage backend selected", zap.String("backend", string(ds.Backend())))
			return ds, nil
		}
		log.Warn("falling back to local storage",
			zap.Error(fmt.Errorf("%w: %v", repository.ErrBackendUnavailable, err)),
			zap.String("path", cfg.Local.Path))
	}

	ds, err := openLocal(cfg.Local.Path, o.sqlLog)
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", cfg.Local.Path, err)
	}
	log.Info("storage backend selected",
		zap.String("backend", string(ds.Backend())),
		zap.String("path", cfg.Local.Path))
	return ds, nil
}
