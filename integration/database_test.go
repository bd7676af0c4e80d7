//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestLocscopeWithMySQL tests the locscope CLI with a MySQL backend.
func TestLocscopeWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "locscope",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/locscope?parseTime=true", host, port.Port())
	exerciseBackend(t, "mysql", connStr)
}

// TestLocscopeWithPostgres tests the locscope CLI with a PostgreSQL backend.
func TestLocscopeWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseBackend(t, "postgresql", connStr)
}

// exerciseBackend runs the persistence commands against one database for both stores.
func exerciseBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	env := []string{
		"LOCSCOPE_CACHE_BACKEND=" + backend,
		"LOCSCOPE_CACHE_DB_CONNECT=" + connStr,
		"LOCSCOPE_HISTORY_BACKEND=" + backend,
		"LOCSCOPE_HISTORY_DB_CONNECT=" + connStr,
	}

	_, err := runLocscope(t, env, "history", "migrate")
	require.NoError(t, err)

	_, err = runLocscope(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runLocscope(t, env, "history", "clear")
	require.NoError(t, err)

	// The second run is served from the ingest cache.
	for range 2 {
		_, err = runLocscope(t, env, "stats", fixturePath)
		require.NoError(t, err)
	}

	out, err := runLocscope(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 1")

	out, err = runLocscope(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Loads: 2")
}
