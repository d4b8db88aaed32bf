package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/example/container-harness/container"
)

const tagName = "container"

// Inject fills the container-tagged fields of target, a pointer to a struct.
// Run and suite scopes fill `shared` fields, test scopes fill the others.
func (s *Scope) Inject(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("inject: target must be a non-nil pointer to a struct, got %T", target)
	}
	if err := s.injectStruct(v.Elem(), s.level != LevelTest); err != nil {
		return err
	}
	s.run.events.Scope("inject", s.name, s.id.String())
	return nil
}

func (s *Scope) injectStruct(v reflect.Value, shared bool) error {
	t := v.Type()
	// embedded structs first, like fields of a base type
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		if _, tagged := sf.Tag.Lookup(tagName); tagged {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if fv.Kind() != reflect.Struct {
			continue
		}
		if err := s.injectStruct(fv, shared); err != nil {
			return err
		}
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(tagName)
		if !ok {
			continue
		}
		name, isShared := parseTag(tag)
		if isShared != shared {
			continue
		}
		if err := s.injectField(t, sf, v.Field(i), name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scope) injectField(owner reflect.Type, sf reflect.StructField, fv reflect.Value, name string) error {
	field := owner.String() + "." + sf.Name
	if name == "" {
		return fmt.Errorf("set field %s: empty container name", field)
	}
	if !sf.IsExported() || !fv.CanSet() {
		return fmt.Errorf("set field %s: field is not settable", field)
	}
	c, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("set field %s: %w: %s", field, container.ErrContainerNotFound, name)
	}
	cv := reflect.ValueOf(c)
	if !cv.Type().AssignableTo(sf.Type) {
		return fmt.Errorf("insert container of type %s into field %s: %w", cv.Type(), field, container.ErrIncompatibleType)
	}
	fv.Set(cv)
	return nil
}

func parseTag(tag string) (name string, shared bool) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "shared" {
			shared = true
		}
	}
	return name, shared
}

// Parameter describes a value requested by a test function.
type Parameter struct {
	// Name is the parameter's own name, the lookup key without a Marker.
	Name string
	// Marker names the container explicitly.
	Marker string
	Type   reflect.Type
}

// ResolveParam returns the container for p when one is registered under its key
// and assignable to p.Type. Otherwise the parameter is left to other resolvers.
func (s *Scope) ResolveParam(p Parameter) (container.Container, bool) {
	key := p.Marker
	if key == "" {
		key = p.Name
	}
	c, ok := s.Lookup(key)
	if !ok {
		return nil, false
	}
	if p.Type != nil && !reflect.TypeOf(c).AssignableTo(p.Type) {
		return nil, false
	}
	return c, true
}

// Param resolves a typed parameter. marker wins over name when set.
func Param[T any](s *Scope, marker, name string) (T, bool) {
	var zero T
	c, ok := s.ResolveParam(Parameter{Name: name, Marker: marker, Type: reflect.TypeOf((*T)(nil)).Elem()})
	if !ok {
		return zero, false
	}
	return c.(T), true
}

// Get is Param without a marker.
func Get[T any](s *Scope, name string) (T, bool) {
	return Param[T](s, "", name)
}
