//go:build integration

package it

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/example/container-harness/container"
	"github.com/example/container-harness/factory"
	"github.com/example/container-harness/harness"
	"github.com/example/container-harness/internal/harnesscfg"
	"github.com/example/container-harness/property"
	itutil "github.com/example/container-harness/tests/itutil"
)

type storageFixture struct {
	DB    testcontainers.Container `container:"db,shared"`
	Cache testcontainers.Container `container:"cache,shared"`
}

func storageDecl() harness.Declarations {
	return harness.Declarations{
		Containers: []container.Declaration{
			factory.Postgres(factory.PostgresSource{Name: "db", Database: "orders"}),
			factory.Redis(factory.RedisSource{Name: "cache", LogLevel: "verbose"}),
		},
		Properties: []property.Template{
			{Container: "db", Property: "db.url", Value: "postgres://test:test@${host}:${port:5432}/orders?sslmode=disable"},
			{Container: "cache", Property: "cache.addr", Value: "${host}:${port:6379}"},
		},
	}
}

func TestPostgresAndRedisThroughPublishedProperties(t *testing.T) {
	itutil.RequireDocker(t)
	opts, _, err := harness.LoadConfig(itutil.WriteConfig(t, harnesscfg.Config{
		Logging: harnesscfg.LoggingConfig{Level: "debug"},
	}))
	require.NoError(t, err)

	var fx storageFixture
	run := harness.New(t.Name(), storageDecl(), opts...)
	t.Cleanup(func() { run.Close(context.Background()) })
	require.NoError(t, run.Enter(context.Background(), &fx))
	require.NotNil(t, fx.DB)
	require.NotNil(t, fx.Cache)

	dsn, ok := run.Properties().Get("db.url")
	require.True(t, ok)
	pool := itutil.PostgresPool(t, dsn)
	_, err = pool.Exec(context.Background(), "CREATE TABLE orders (id BIGINT PRIMARY KEY)")
	require.NoError(t, err)
	_, err = pool.Exec(context.Background(), "INSERT INTO orders VALUES (1), (2)")
	require.NoError(t, err)
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT count(*) FROM orders").Scan(&n))
	assert.Equal(t, 2, n)

	addr, ok := run.Properties().Get("cache.addr")
	require.True(t, ok)
	r := itutil.RedisClient(t, addr)
	require.NoError(t, r.Set(context.Background(), "k", "v", time.Minute).Err())
	v, err := r.Get(context.Background(), "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestRunContainersSharedAcrossTests(t *testing.T) {
	itutil.RequireDocker(t)
	cache := factory.Redis(factory.RedisSource{Name: "cache"})
	run := harness.Run(t, harness.Declarations{
		Containers: []container.Declaration{cache},
		Properties: []property.Template{{Container: "cache", Property: "cache.addr", Value: "${host}:${port:6379}"}},
	})
	first, ok := harness.Get[testcontainers.Container](run, "cache")
	require.True(t, ok)

	for _, name := range []string{"first", "second"} {
		t.Run(name, func(t *testing.T) {
			s := harness.Enter(t, run, harness.Declarations{Containers: []container.Declaration{cache}}, nil)
			again, ok := harness.Get[testcontainers.Container](s, "cache")
			require.True(t, ok)
			assert.Same(t, first, again)
			assert.Equal(t, 1, run.Registry().Len())
		})
	}
}

type webFixture struct {
	Web testcontainers.Container `container:"web"`
}

func TestDockerfileContainerWaitsForHealthCheck(t *testing.T) {
	itutil.RequireDocker(t)
	run := harness.Run(t, harness.Declarations{})
	var fx webFixture
	harness.Enter(t, run, harness.Declarations{
		Containers: []container.Declaration{factory.Dockerfile(factory.DockerfileSource{
			Name:         "web",
			Context:      "testdata/web",
			ExposedPorts: []int{80},
		})},
		Properties: []property.Template{{Container: "web", Property: "web.url", Value: "http://${host}:${port:80}/"}},
	}, &fx)
	require.NotNil(t, fx.Web)

	url, ok := run.Properties().Get("web.url")
	require.True(t, ok)
	itutil.WaitHTTPReady(t, url, 10*time.Second)
}
