// Package factory provides ready-made container factories: images built from a
// Dockerfile, Postgres and Redis.
package factory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/example/container-harness/container"
)

// DockerfileSource declares a container built from a local Dockerfile.
type DockerfileSource struct {
	Name string
	// Context is the build context directory. Defaults to Name.
	Context string
	// Dockerfile is relative to Context. Defaults to "Dockerfile".
	Dockerfile   string
	ExposedPorts []int
	Env          map[string]string
	// StartupTimeout bounds the wait for the image's HEALTHCHECK.
	StartupTimeout time.Duration
}

// DockerfileFactory builds an image and waits for its Docker health check.
type DockerfileFactory struct {
	container.Configurable[DockerfileSource]
}

func (f *DockerfileFactory) ContainerName() (string, error) {
	src, err := f.Source()
	if err != nil {
		return "", err
	}
	return src.Name, nil
}

func (f *DockerfileFactory) CreateContainer(ctx context.Context) (container.Container, error) {
	req, err := f.request()
	if err != nil {
		return nil, err
	}
	return create(ctx, req)
}

func (f *DockerfileFactory) request() (testcontainers.GenericContainerRequest, error) {
	src, err := f.Source()
	if err != nil {
		return testcontainers.GenericContainerRequest{}, err
	}
	buildContext := src.Context
	if buildContext == "" {
		buildContext = src.Name
	}
	dockerfile := src.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}
	timeout := src.StartupTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			FromDockerfile: testcontainers.FromDockerfile{
				Context:    buildContext,
				Dockerfile: dockerfile,
			},
			ExposedPorts: tcpPorts(src.ExposedPorts),
			Env:          src.Env,
			WaitingFor:   wait.ForHealthCheck().WithStartupTimeout(timeout),
		},
		Started: false,
	}, nil
}

// Dockerfile declares a container built from src.
func Dockerfile(src DockerfileSource) container.Declaration {
	return container.Declaration{
		New:    func() container.Factory { return &DockerfileFactory{} },
		Source: src,
	}
}

// create builds an unstarted container. A handle returned together with an error is
// removed before the error is reported.
func create(ctx context.Context, req testcontainers.GenericContainerRequest) (container.Container, error) {
	c, err := testcontainers.GenericContainer(ctx, req)
	if err != nil {
		if c != nil {
			_ = c.Terminate(context.WithoutCancel(ctx))
		}
		return nil, err
	}
	return c, nil
}

func tcpPorts(ports []int) []string {
	out := make([]string, 0, len(ports))
	for _, p := range ports {
		out = append(out, strconv.Itoa(p)+"/tcp")
	}
	return out
}

func mappedAddr(ctx context.Context, c container.Container, port string) (string, string, error) {
	hp, ok := c.(container.HostProvider)
	if !ok {
		return "", "", fmt.Errorf("%T exposes no host", c)
	}
	pm, ok := c.(container.PortMapper)
	if !ok {
		return "", "", fmt.Errorf("%T exposes no ports", c)
	}
	host, err := hp.Host(ctx)
	if err != nil {
		return "", "", fmt.Errorf("host: %w", err)
	}
	mapped, err := pm.MappedPort(ctx, natPort(port))
	if err != nil {
		return "", "", fmt.Errorf("mapped port %s: %w", port, err)
	}
	return host, mapped.Port(), nil
}
