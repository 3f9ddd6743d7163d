// Package testutil provides databases and containers for tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"workorder/internal/repository"
	"workorder/pkg/database"

	"github.com/go-redis/redis/v8"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// NewSQLiteDB opens a migrated SQLite database in a temp dir.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "workorder_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repository.CreateTableIfNotExists(context.Background(), db, repository.SQLite); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

func newPool(t *testing.T) *dockertest.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	pool.MaxWait = 90 * time.Second
	return pool
}

func run(t *testing.T, pool *dockertest.Pool, opts *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()
	resource, err := pool.RunWithOptions(opts, func(cfg *docker.HostConfig) {
		cfg.AutoRemove = true
		cfg.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("could not start %s: %v", opts.Repository, err)
	}
	_ = resource.Expire(180)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	return resource
}

// StartPostgres runs a PostgreSQL container and returns a migrated database.
// The test is skipped when Docker is unavailable.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()
	pool := newPool(t)
	resource := run(t, pool, &dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=workorder",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=workorder_test",
		},
	})

	dsn := fmt.Sprintf("host=localhost port=%s user=workorder password=secret dbname=workorder_test sslmode=disable",
		resource.GetPort("5432/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = database.OpenPostgres(dsn)
		return err
	}); err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repository.CreateTableIfNotExists(context.Background(), db, repository.Postgres); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

// StartRedis runs a Redis container and returns a connected client.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()
	pool := newPool(t)
	resource := run(t, pool, &dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"})

	client := redis.NewClient(&redis.Options{Addr: "localhost:" + resource.GetPort("6379/tcp")})
	if err := pool.Retry(func() error {
		return client.Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
