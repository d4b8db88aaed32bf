package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/example/container-harness/container"
	"github.com/example/container-harness/internal/logging"
	"github.com/example/container-harness/property"
)

// Level is the depth class of a scope.
type Level int

const (
	LevelRun Level = iota
	LevelSuite
	LevelTest
)

func (l Level) String() string {
	switch l {
	case LevelRun:
		return "run"
	case LevelSuite:
		return "suite"
	default:
		return "test"
	}
}

// Declarations are the container, resolver and property requests of one scope.
type Declarations struct {
	Containers []container.Declaration
	Resolvers  []property.Resolver
	Properties []property.Template
}

// resolvers lists the resolvers this node contributes. Declaring containers makes
// the default host and port resolvers available.
func (d Declarations) resolvers() []property.Resolver {
	if len(d.Containers) == 0 {
		return d.Resolvers
	}
	return append(property.DefaultResolvers(), d.Resolvers...)
}

// Scope is one node of a run.
type Scope struct {
	id     ulid.ULID
	name   string
	level  Level
	parent *Scope
	decl   Declarations
	run    *runState
}

type runState struct {
	mu       sync.Mutex
	registry *container.Registry
	props    *property.Properties
	sink     property.Sink
	closed   bool
	opts     options
	events   *logging.EventLogger
}

// New opens the root scope of a run.
func New(name string, decl Declarations, opts ...Option) *Scope {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	props := property.NewProperties()
	sinks := []property.Sink{props}
	if o.exportEnv {
		sinks = append(sinks, property.EnvSink{})
	}
	sinks = append(sinks, o.sinks...)
	s := &Scope{
		id:    ulid.Make(),
		name:  name,
		level: LevelRun,
		decl:  decl,
		run: &runState{
			props:  props,
			sink:   property.Tee(sinks...),
			opts:   o,
			events: logging.NewEventLogger(),
		},
	}
	s.run.events.Scope("open", s.name, s.id.String())
	return s
}

// Child opens a nested scope one level below s.
func (s *Scope) Child(name string, decl Declarations) *Scope {
	level := s.level + 1
	if level > LevelTest {
		level = LevelTest
	}
	return s.child(name, decl, level)
}

// Test opens a test-level scope below s regardless of the depth of s, so that
// instance fields are injected on entry.
func (s *Scope) Test(name string, decl Declarations) *Scope {
	return s.child(name, decl, LevelTest)
}

func (s *Scope) child(name string, decl Declarations, level Level) *Scope {
	c := &Scope{
		id:     ulid.Make(),
		name:   name,
		level:  level,
		parent: s,
		decl:   decl,
		run:    s.run,
	}
	s.run.events.Scope("open", c.name, c.id.String(), logging.F("level", level.String()))
	return c
}

func (s *Scope) ID() string   { return s.id.String() }
func (s *Scope) Name() string { return s.name }
func (s *Scope) Level() Level { return s.level }

// Registry returns the run's registry, creating it on first use.
func (s *Scope) Registry() *container.Registry {
	r := s.run
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registry == nil {
		r.registry = container.NewRegistry(container.WithTerminateTimeout(r.opts.terminateTimeout))
	}
	return r.registry
}

// Properties is the property set published for the run.
func (s *Scope) Properties() *property.Properties { return s.run.props }

// Lookup returns the named container of the run.
func (s *Scope) Lookup(name string) (container.Container, bool) {
	return s.Registry().Get(name)
}

// Provision creates and starts the containers declared on this scope that the run
// does not hold yet.
func (s *Scope) Provision(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(s.decl.Containers) == 0 {
		return nil
	}
	if s.run.opts.startupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.run.opts.startupTimeout)
		defer cancel()
	}
	if err := container.Provision(ctx, s.Registry(), s.decl.Containers); err != nil {
		return fmt.Errorf("scope %s: %w", s.name, err)
	}
	s.run.events.Scope("provision", s.name, s.id.String(), logging.F("declared", len(s.decl.Containers)))
	return nil
}

// Publish resolves this scope's property templates with the resolvers visible
// from here up to the root.
func (s *Scope) Publish(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(s.decl.Properties) == 0 {
		return nil
	}
	var chain [][]property.Resolver
	for n := s; n != nil; n = n.parent {
		chain = append(chain, n.decl.resolvers())
	}
	resolvers := property.Gather(chain...)
	if err := property.Map(ctx, s.Registry(), s.decl.Properties, resolvers, s.run.sink); err != nil {
		return fmt.Errorf("scope %s: %w", s.name, err)
	}
	s.run.events.Scope("publish", s.name, s.id.String(), logging.F("properties", len(s.decl.Properties)))
	return nil
}

// Enter provisions, injects into target (when non-nil) and publishes, in that order.
func (s *Scope) Enter(ctx context.Context, target any) error {
	if err := s.Provision(ctx); err != nil {
		return err
	}
	if target != nil {
		if err := s.Inject(target); err != nil {
			return err
		}
	}
	return s.Publish(ctx)
}

// Close tears the run down when called on the root scope: every container is
// terminated and the property set is discarded. On nested scopes it does nothing.
func (s *Scope) Close(ctx context.Context) {
	if s.parent != nil {
		return
	}
	r := s.run
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	reg := r.registry
	r.mu.Unlock()

	n := 0
	if reg != nil {
		n = reg.Len()
		reg.CloseAll(ctx)
	}
	r.props.Reset()
	r.events.Scope("close", s.name, s.id.String(), logging.F("containers", n))
}

func (s *Scope) checkOpen() error {
	s.run.mu.Lock()
	defer s.run.mu.Unlock()
	if s.run.closed {
		return fmt.Errorf("scope %s: %w", s.name, container.ErrRegistryClosed)
	}
	return nil
}

// options

type options struct {
	exportEnv        bool
	sinks            []property.Sink
	terminateTimeout time.Duration
	startupTimeout   time.Duration
}

func defaultOptions() options {
	return options{
		terminateTimeout: 30 * time.Second,
	}
}

// Option configures a run.
type Option func(*options)

// WithSink publishes properties to sink in addition to the run's property set.
func WithSink(sink property.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, sink) }
}

// WithEnvExport mirrors published properties into the process environment.
func WithEnvExport() Option {
	return func(o *options) { o.exportEnv = true }
}

// WithTerminateTimeout bounds each container termination at teardown.
func WithTerminateTimeout(d time.Duration) Option {
	return func(o *options) { o.terminateTimeout = d }
}

// WithStartupTimeout bounds the provisioning of one scope.
func WithStartupTimeout(d time.Duration) Option {
	return func(o *options) { o.startupTimeout = d }
}
