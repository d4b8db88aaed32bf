package harness

import (
	"context"
	"time"
)

// TB is the subset of testing.TB the helpers need. *testing.T satisfies it.
type TB interface {
	Helper()
	Name() string
	Cleanup(func())
	Fatalf(format string, args ...any)
	Skip(args ...any)
}

const teardownTimeout = 2 * time.Minute

// SkipIfNoDocker skips t when the probe reports no container runtime. A failing
// probe fails the test with the probe's error. A nil probe means DockerProbe.
func SkipIfNoDocker(t TB, probe Probe) {
	t.Helper()
	if probe == nil {
		probe = DockerProbe{}
	}
	ok, err := probe.Available(context.Background())
	if err != nil {
		t.Fatalf("docker probe: %v", err)
		return
	}
	if !ok {
		t.Skip("Docker is not available")
	}
}

// Run opens a root scope named after t, enters it and closes it when t finishes.
func Run(t TB, decl Declarations, opts ...Option) *Scope {
	t.Helper()
	s := New(t.Name(), decl, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		s.Close(ctx)
	})
	if err := s.Enter(context.Background(), nil); err != nil {
		t.Fatalf("enter %s: %v", s.Name(), err)
	}
	return s
}

// Enter opens a test-level child of parent named after t and enters it with target.
// parent may be the run itself or a suite below it.
func Enter(t TB, parent *Scope, decl Declarations, target any) *Scope {
	t.Helper()
	s := parent.Test(t.Name(), decl)
	if err := s.Enter(context.Background(), target); err != nil {
		t.Fatalf("enter %s: %v", s.Name(), err)
	}
	return s
}
