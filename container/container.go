// Package container holds the container registry and the factory protocol used to
// provision test containers declaratively.
//
// A test scope declares which containers it needs as a list of Declarations. Each
// declaration names a factory constructor and, optionally, the source value the
// factory is configured from. Provision resolves every declaration to a configured
// Factory and creates + starts the containers that are not registered yet, so a
// container name is started at most once per Registry.
package container

import (
	"context"

	"github.com/docker/go-connections/nat"
)

// Container is a provisioned container handle. testcontainers.Container satisfies it.
type Container interface {
	Start(ctx context.Context) error
	Terminate(ctx context.Context) error
}

// HostProvider exposes the externally reachable address of a container.
type HostProvider interface {
	Host(ctx context.Context) (string, error)
}

// PortMapper maps a container-internal exposed port to the host port.
type PortMapper interface {
	MappedPort(ctx context.Context, port nat.Port) (nat.Port, error)
}
