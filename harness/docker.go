package harness

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// Probe reports whether a container runtime is reachable. An error means the probe
// itself failed, which is distinct from an unavailable runtime.
type Probe interface {
	Available(ctx context.Context) (bool, error)
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) (bool, error)

func (f ProbeFunc) Available(ctx context.Context) (bool, error) { return f(ctx) }

// DockerProbe asks the testcontainers Docker provider for a health check.
type DockerProbe struct {
	Timeout time.Duration
}

func (p DockerProbe) Available(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		// no docker host could be determined
		return false, nil
	}
	defer provider.Close()
	if err := provider.Health(cctx); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	return true, nil
}
