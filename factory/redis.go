package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	redismod "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/example/container-harness/container"
)

const (
	DefaultRedisImage = "docker.io/redis:7-alpine"
	redisPort         = "6379"
)

// RedisSource declares a Redis container.
type RedisSource struct {
	Name  string
	Image string
	// LogLevel is one of debug, verbose, notice, warning. Empty keeps the image default.
	LogLevel     string
	ReadyTimeout time.Duration
}

// RedisFactory creates a Redis container and checks readiness with PING.
type RedisFactory struct {
	container.Configurable[RedisSource]
}

func (f *RedisFactory) ContainerName() (string, error) {
	src, err := f.Source()
	if err != nil {
		return "", err
	}
	return src.Name, nil
}

func (f *RedisFactory) CreateContainer(ctx context.Context) (container.Container, error) {
	req, err := f.request()
	if err != nil {
		return nil, err
	}
	return create(ctx, req)
}

func (f *RedisFactory) request() (testcontainers.GenericContainerRequest, error) {
	src, err := f.Source()
	if err != nil {
		return testcontainers.GenericContainerRequest{}, err
	}
	image := src.Image
	if image == "" {
		image = DefaultRedisImage
	}
	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{redisPort + "/tcp"},
			Cmd:          []string{"redis-server"},
			WaitingFor:   wait.ForLog("* Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: false,
	}
	if src.LogLevel != "" {
		if err := redismod.WithLogLevel(redismod.LogLevel(src.LogLevel)).Customize(&req); err != nil {
			return req, fmt.Errorf("customize redis request: %w", err)
		}
	}
	return req, nil
}

// WaitReady pings the server until it answers.
func (f *RedisFactory) WaitReady(ctx context.Context, c container.Container) error {
	src, err := f.Source()
	if err != nil {
		return err
	}
	host, port, err := mappedAddr(ctx, c, redisPort)
	if err != nil {
		return err
	}
	timeout := src.ReadyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        host + ":" + port,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
	defer client.Close()
	return poll(ctx, timeout, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// Redis declares a Redis container.
func Redis(src RedisSource) container.Declaration {
	return container.Declaration{
		New:    func() container.Factory { return &RedisFactory{} },
		Source: src,
	}
}
