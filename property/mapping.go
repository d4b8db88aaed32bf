package property

import (
	"context"
	"fmt"

	"github.com/example/container-harness/container"
	"github.com/example/container-harness/internal/logging"
	"github.com/example/container-harness/internal/metrics"
)

// Template maps metadata of one container into one property.
type Template struct {
	Container string `yaml:"container"`
	Property  string `yaml:"property"`
	Value     string `yaml:"value"`
}

// Lookup finds registered containers by name. *container.Registry implements it.
type Lookup interface {
	Get(name string) (container.Container, bool)
}

// Map resolves every template and writes the results to sink. All referenced
// containers are checked first, so a missing one publishes nothing.
func Map(ctx context.Context, containers Lookup, templates []Template, resolvers []Resolver, sink Sink) error {
	targets := make([]container.Container, len(templates))
	for i, tpl := range templates {
		c, ok := containers.Get(tpl.Container)
		if !ok {
			return fmt.Errorf("set property '%s': %w: %s", tpl.Property, container.ErrContainerNotFound, tpl.Container)
		}
		targets[i] = c
	}
	events := logging.NewEventLogger()
	for i, tpl := range templates {
		applicable := supported(resolvers, targets[i])
		value := Apply(ctx, tpl.Value, targets[i], applicable)
		if err := sink.Set(tpl.Property, value); err != nil {
			return fmt.Errorf("set property '%s': %w", tpl.Property, err)
		}
		metrics.PropertiesPublished.Inc()
		events.Property("", tpl.Container, tpl.Property, len(applicable))
	}
	return nil
}

func supported(resolvers []Resolver, c container.Container) []Resolver {
	out := make([]Resolver, 0, len(resolvers))
	for _, r := range resolvers {
		if r.Supports(c) {
			out = append(out, r)
		}
	}
	return out
}
