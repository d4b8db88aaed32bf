package container

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/container-harness/internal/logging"
	"github.com/example/container-harness/internal/metrics"
)

const defaultTerminateTimeout = 30 * time.Second

// Registry is the keyed store of named containers of one test run. It owns teardown.
type Registry struct {
	mu               sync.Mutex
	containers       map[string]Container
	closed           bool
	terminateTimeout time.Duration
	events           *logging.EventLogger

	// provisioning serializes check, start and put across concurrent Provision calls.
	provisioning sync.Mutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTerminateTimeout bounds each Terminate call made by CloseAll.
func WithTerminateTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.terminateTimeout = d
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		containers:       map[string]Container{},
		terminateTimeout: defaultTerminateTimeout,
		events:           logging.NewEventLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.containers[name]
	return ok
}

func (r *Registry) Get(name string) (Container, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.containers[name]
	return c, ok
}

// Put registers a started container. A name can be registered once.
func (r *Registry) Put(name string, c Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("put %s: %w", name, ErrRegistryClosed)
	}
	if _, ok := r.containers[name]; ok {
		return fmt.Errorf("put %s: %w", name, ErrDuplicateContainer)
	}
	r.containers[name] = c
	metrics.ContainersRegistered.Inc()
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.containers)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.containers))
	for name := range r.containers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CloseAll terminates every registered container exactly once. A failing entry is
// logged with its name and does not stop the remaining ones. Later calls are no-ops.
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := r.containers
	r.containers = map[string]Container{}
	r.mu.Unlock()

	for name, c := range entries {
		r.terminate(ctx, name, c)
		metrics.ContainersRegistered.Dec()
	}
}

func (r *Registry) terminate(ctx context.Context, name string, c Container) {
	defer func() {
		if p := recover(); p != nil {
			metrics.ContainerStopFailures.Inc()
			r.events.Container("terminate", "", name, "failed", fmt.Sprintf("panic: %v", p))
		}
	}()
	cctx, cancel := context.WithTimeout(ctx, r.terminateTimeout)
	defer cancel()
	if err := c.Terminate(cctx); err != nil {
		metrics.ContainerStopFailures.Inc()
		r.events.Container("terminate", "", name, "failed", err.Error())
		return
	}
	r.events.Container("terminate", "", name, "success", "")
}
