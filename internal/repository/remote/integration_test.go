//go:build integration

package remote

import (
	"context"
	"testing"
	"time"

	"tourops/internal/config"
	"tourops/internal/repository"
	"tourops/internal/repository/repotest"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) config.RemoteConfig {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tourops_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return config.RemoteConfig{
		DSN:            dsn,
		MaxOpenConns:   5,
		MaxIdleConns:   2,
		ConnectTimeout: 10 * time.Second,
	}
}

func TestPostgres_Contract(t *testing.T) {
	cfg := startPostgres(t)
	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	repotest.Run(t, func(t *testing.T) repository.DataStore {
		require.NoError(t, s.ClearAllData(context.Background()))
		return s
	})
}
