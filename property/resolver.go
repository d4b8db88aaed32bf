// Package property maps container metadata into named property values.
//
// A Template such as
//
//	Template{Container: "pg", Property: "DATABASE_URL", Value: "postgres://${host}:${port:5432}/app"}
//
// is resolved against the registered container "pg" by every applicable Resolver,
// left to right, and the result is written to a Sink. Placeholders no resolver
// understands are left verbatim.
package property

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strconv"

	"github.com/docker/go-connections/nat"

	"github.com/example/container-harness/container"
)

// Resolver substitutes one placeholder pattern with container metadata.
type Resolver interface {
	// Pattern matches the placeholder. Capture groups are handed to the replacer.
	Pattern() *regexp.Regexp
	// Supports reports whether the resolver applies to the container's runtime type.
	Supports(c container.Container) bool
	// Resolve returns the replacer for one container. A false result keeps the match.
	Resolve(ctx context.Context, c container.Container) func(groups []string) (string, bool)
}

var (
	hostPattern = regexp.MustCompile(`\$\{host}`)
	portPattern = regexp.MustCompile(`\$\{port:([0-9]{1,5})}`)
)

// HostResolver replaces ${host} with the container's reachable address.
type HostResolver struct{}

func (HostResolver) Pattern() *regexp.Regexp { return hostPattern }

func (HostResolver) Supports(c container.Container) bool {
	_, ok := c.(container.HostProvider)
	return ok
}

func (HostResolver) Resolve(ctx context.Context, c container.Container) func([]string) (string, bool) {
	hp := c.(container.HostProvider)
	return func([]string) (string, bool) {
		host, err := hp.Host(ctx)
		if err != nil {
			return "", false
		}
		return host, true
	}
}

// PortResolver replaces ${port:N} with the host port mapped to exposed port N.
// Ports that are not mapped stay unresolved.
type PortResolver struct{}

func (PortResolver) Pattern() *regexp.Regexp { return portPattern }

func (PortResolver) Supports(c container.Container) bool {
	_, ok := c.(container.PortMapper)
	return ok
}

func (PortResolver) Resolve(ctx context.Context, c container.Container) func([]string) (string, bool) {
	pm := c.(container.PortMapper)
	return func(groups []string) (string, bool) {
		n, err := strconv.Atoi(groups[1])
		if err != nil {
			return "", false
		}
		mapped, err := pm.MappedPort(ctx, nat.Port(fmt.Sprintf("%d/tcp", n)))
		if err != nil {
			return "", false
		}
		return mapped.Port(), true
	}
}

// DefaultResolvers are implicitly available wherever containers are declared.
func DefaultResolvers() []Resolver {
	return []Resolver{HostResolver{}, PortResolver{}}
}

// Func builds a named resolver restricted to containers assignable to T.
func Func[T any](name, expr string, fn func(ctx context.Context, c T, groups []string) (string, bool)) Resolver {
	return &typedResolver[T]{name: name, re: regexp.MustCompile(expr), fn: fn}
}

type typedResolver[T any] struct {
	name string
	re   *regexp.Regexp
	fn   func(context.Context, T, []string) (string, bool)
}

func (r *typedResolver[T]) Name() string { return r.name }

func (r *typedResolver[T]) Pattern() *regexp.Regexp { return r.re }

func (r *typedResolver[T]) Supports(c container.Container) bool {
	_, ok := any(c).(T)
	return ok
}

func (r *typedResolver[T]) Resolve(ctx context.Context, c container.Container) func([]string) (string, bool) {
	typed := any(c).(T)
	return func(groups []string) (string, bool) {
		return r.fn(ctx, typed, groups)
	}
}

// Gather merges resolver lists, keeping the first resolver of each identity.
func Gather(chain ...[]Resolver) []Resolver {
	seen := map[string]bool{}
	var out []Resolver
	for _, list := range chain {
		for _, r := range list {
			if r == nil {
				continue
			}
			key := identity(r)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}

func identity(r Resolver) string {
	key := reflect.TypeOf(r).String()
	if n, ok := r.(interface{ Name() string }); ok {
		key += "#" + n.Name()
	}
	return key
}

// Apply runs every applicable resolver over value, each on the previous result.
func Apply(ctx context.Context, value string, c container.Container, resolvers []Resolver) string {
	for _, r := range resolvers {
		if !r.Supports(c) {
			continue
		}
		re := r.Pattern()
		replace := r.Resolve(ctx, c)
		value = re.ReplaceAllStringFunc(value, func(match string) string {
			out, ok := replace(re.FindStringSubmatch(match))
			if !ok {
				return match
			}
			return out
		})
	}
	return value
}
