package property

import (
	"os"
	"sort"
	"sync"
)

// Sink receives published property values. Later writes win.
type Sink interface {
	Set(key, value string) error
}

// Properties is an in-memory property set handed to the system under test.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewProperties() *Properties {
	return &Properties{values: map[string]string{}}
}

func (p *Properties) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (p *Properties) Get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Snapshot returns a copy of all values.
func (p *Properties) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Environ renders the values as sorted KEY=VALUE pairs.
func (p *Properties) Environ() []string {
	snap := p.Snapshot()
	out := make([]string, 0, len(snap))
	for k, v := range snap {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Reset discards every value.
func (p *Properties) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = map[string]string{}
}

// EnvSink writes properties into the process environment.
type EnvSink struct{}

func (EnvSink) Set(key, value string) error { return os.Setenv(key, value) }

// Tee fans every write out to all sinks, stopping at the first error.
func Tee(sinks ...Sink) Sink { return tee(sinks) }

type tee []Sink

func (t tee) Set(key, value string) error {
	for _, s := range t {
		if err := s.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
