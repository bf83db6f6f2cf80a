// Package infratest starts disposable backing services for integration tests.
package infratest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/infra"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "rythu"
	postgresPassword = "rythu"
	postgresDB       = "rythu"
)

// PostgresURL starts a PostgreSQL container and returns its connection url.
// The test is skipped under -short or when no container runtime is reachable.
func PostgresURL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDB)
}

// MigratedPool starts PostgreSQL, applies the schema and returns a pool that
// is closed when the test ends.
func MigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := PostgresURL(t)
	ctx := context.Background()

	if err := infra.RunMigrations(ctx, url); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	pool, err := infra.NewPostgresPool(ctx, url)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
