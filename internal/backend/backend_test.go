package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"tourops/internal/config"
	"tourops/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func stubRemote(t *testing.T, fn func(context.Context, config.RemoteConfig, gormlogger.Interface) (repository.DataStore, error)) {
	t.Helper()
	prev := openRemote
	openRemote = fn
	t.Cleanup(func() { openRemote = prev })
}

func localConfig(t *testing.T) config.StorageConfig {
	return config.StorageConfig{
		Local: config.LocalConfig{Path: filepath.Join(t.TempDir(), "tourops.db")},
	}
}

func TestOpen_LocalWhenRemoteNotConfigured(t *testing.T) {
	called := false
	stubRemote(t, func(context.Context, config.RemoteConfig, gormlogger.Interface) (repository.DataStore, error) {
		called = true
		return nil, errors.New("unexpected")
	})

	ds, err := Open(context.Background(), localConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer ds.Close()

	assert.False(t, called)
	assert.Equal(t, repository.BackendLocal, ds.Backend())
}

func TestOpen_FallsBackWhenRemoteFails(t *testing.T) {
	stubRemote(t, func(context.Context, config.RemoteConfig, gormlogger.Interface) (repository.DataStore, error) {
		return nil, fmt.Errorf("ping postgres: %w", errors.New("connection refused"))
	})
	core, logs := observer.New(zapcore.InfoLevel)

	cfg := localConfig(t)
	cfg.Remote = config.RemoteConfig{Host: "db.internal", Port: 5432, User: "tourops"}

	ds, err := Open(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)
	defer ds.Close()
	assert.Equal(t, repository.BackendLocal, ds.Backend())

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	logged, ok := warns[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, logged, repository.ErrBackendUnavailable.Error())
	assert.Contains(t, logged, "connection refused")

	// the fallback store is usable
	_, err = ds.Guides().List(context.Background(), repository.ListQuery{})
	assert.NoError(t, err)
}

func TestOpen_UsesRemoteWhenReachable(t *testing.T) {
	stubRemote(t, func(_ context.Context, cfg config.RemoteConfig, _ gormlogger.Interface) (repository.DataStore, error) {
		assert.Equal(t, "postgres://u:p@h/db", cfg.DSN)
		return fakeStore{}, nil
	})

	cfg := localConfig(t)
	cfg.Remote.DSN = "postgres://u:p@h/db"
	ds, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, repository.BackendRemote, ds.Backend())
}

func TestOpen_LocalFailureIsAnError(t *testing.T) {
	prev := openLocal
	openLocal = func(string, gormlogger.Interface) (repository.DataStore, error) {
		return nil, errors.New("disk full")
	}
	t.Cleanup(func() { openLocal = prev })

	cfg := config.StorageConfig{Local: config.LocalConfig{Path: "/nonexistent/" + uuid.NewString()}}
	_, err := Open(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

// fakeStore only answers Backend.
type fakeStore struct {
	repository.DataStore
}

func (fakeStore) Backend() repository.Backend { return repository.BackendRemote }
