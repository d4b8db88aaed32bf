package container

import (
	"context"
	"fmt"
	"reflect"
)

// Factory creates one named container. The name must be stable and unique within a run.
type Factory interface {
	ContainerName() (string, error)
	// CreateContainer builds the container without starting it.
	CreateContainer(ctx context.Context) (Container, error)
}

// SourceConsumer is implemented by factories configured from a declaration source.
// Accept is called exactly once, before any Factory method.
type SourceConsumer interface {
	SourceType() reflect.Type
	Accept(source any) error
}

// ReadinessChecker is implemented by factories that verify a started container.
type ReadinessChecker interface {
	WaitReady(ctx context.Context, c Container) error
}

// Declaration requests a container from a factory, optionally parametrized by Source.
type Declaration struct {
	New    func() Factory
	Source any
}

// Configurable implements SourceConsumer for a source of type S. Embed it in a factory.
type Configurable[S any] struct {
	source *S
}

func (c *Configurable[S]) SourceType() reflect.Type { return reflect.TypeOf((*S)(nil)).Elem() }

func (c *Configurable[S]) Accept(source any) error {
	s, ok := source.(S)
	if !ok {
		return fmt.Errorf("%w: want %s, got %T", ErrSourceMismatch, reflect.TypeOf((*S)(nil)).Elem(), source)
	}
	c.source = &s
	return nil
}

// Source returns the accepted source or ErrNotConfigured.
func (c *Configurable[S]) Source() (S, error) {
	if c.source == nil {
		var zero S
		return zero, ErrNotConfigured
	}
	return *c.source, nil
}

// Resolve instantiates the declared factory and configures it from the source.
func Resolve(d Declaration) (Factory, error) {
	if d.New == nil {
		return nil, fmt.Errorf("declaration without factory constructor")
	}
	f := d.New()
	consumer, ok := f.(SourceConsumer)
	if !ok {
		return f, nil
	}
	expected := consumer.SourceType()
	if d.Source == nil {
		return nil, fmt.Errorf("%w: %T accepts %s but was declared without one", ErrMissingSource, f, expected)
	}
	if actual := reflect.TypeOf(d.Source); actual != expected {
		return nil, fmt.Errorf("%w: %T accepts %s but is declared with %s", ErrSourceMismatch, f, expected, actual)
	}
	if err := consumer.Accept(d.Source); err != nil {
		return nil, fmt.Errorf("configure %T: %w", f, err)
	}
	return f, nil
}
