//go:build integration

package itutil

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	yaml "gopkg.in/yaml.v3"

	"github.com/example/container-harness/harness"
	"github.com/example/container-harness/internal/harnesscfg"
)

// RequireDocker skips unless RUN_IT is set and a Docker daemon answers.
func RequireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_IT") == "" {
		t.Skip("integration test; set RUN_IT=1 to run")
	}
	harness.SkipIfNoDocker(t, nil)
}

// WriteConfig writes a harness config to a temp file and returns its path.
func WriteConfig(t *testing.T, cfg harnesscfg.Config) string {
	t.Helper()
	b, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal cfg: %v", err)
	}
	p := filepath.Join(t.TempDir(), "harness.yaml")
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	return p
}

// PostgresPool opens a pool on dsn and closes it when t finishes.
func PostgresPool(t *testing.T, dsn string) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("pg pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// RedisClient connects to addr and closes the client when t finishes.
func RedisClient(t *testing.T, addr string) *redis.Client {
	t.Helper()
	r := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// WaitHTTPReady polls the given URL until it returns 200 or times out.
func WaitHTTPReady(t *testing.T, url string, deadline time.Duration) {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("ready timeout for %s", url)
}
