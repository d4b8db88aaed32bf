package container

import (
	"context"
	"fmt"

	"github.com/example/container-harness/internal/logging"
	"github.com/example/container-harness/internal/metrics"
)

// Provision resolves every declaration, then creates and starts the containers whose
// names are not registered yet. Resolution errors surface before anything is created.
func Provision(ctx context.Context, reg *Registry, decls []Declaration) error {
	factories := make([]Factory, 0, len(decls))
	for _, d := range decls {
		f, err := Resolve(d)
		if err != nil {
			return err
		}
		factories = append(factories, f)
	}
	events := logging.NewEventLogger()
	reg.provisioning.Lock()
	defer reg.provisioning.Unlock()
	for _, f := range factories {
		name, err := f.ContainerName()
		if err != nil {
			return fmt.Errorf("container name from %T: %w", f, err)
		}
		if reg.Contains(name) {
			continue
		}
		c, err := startContainer(ctx, name, f, events)
		if err != nil {
			metrics.ContainerStartFailures.Inc()
			events.Container("start", "", name, "failed", err.Error())
			return fmt.Errorf("provision %s: %w", name, err)
		}
		if err := reg.Put(name, c); err != nil {
			discard(ctx, name, c, events)
			return err
		}
		metrics.ContainersStarted.Inc()
		events.Container("start", "", name, "success", "")
	}
	return nil
}

func startContainer(ctx context.Context, name string, f Factory, events *logging.EventLogger) (Container, error) {
	c, err := f.CreateContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("create: %T returned no container", f)
	}
	if err := c.Start(ctx); err != nil {
		discard(ctx, name, c, events)
		return nil, fmt.Errorf("start: %w", err)
	}
	if rc, ok := f.(ReadinessChecker); ok {
		if err := rc.WaitReady(ctx, c); err != nil {
			discard(ctx, name, c, events)
			return nil, fmt.Errorf("ready: %w", err)
		}
	}
	return c, nil
}

// discard terminates a container that never made it into a registry.
func discard(ctx context.Context, name string, c Container, events *logging.EventLogger) {
	defer func() {
		if p := recover(); p != nil {
			events.Container("discard", "", name, "failed", fmt.Sprintf("panic: %v", p))
		}
	}()
	if err := c.Terminate(ctx); err != nil {
		events.Container("discard", "", name, "failed", err.Error())
	}
}
