// Package manifest reads container declarations and property templates from YAML.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/container-harness/container"
	"github.com/example/container-harness/factory"
	"github.com/example/container-harness/harness"
	"github.com/example/container-harness/property"
)

const (
	KindDockerfile = "dockerfile"
	KindPostgres   = "postgres"
	KindRedis      = "redis"
)

type ContainerSpec struct {
	Kind         string            `yaml:"kind"`
	Name         string            `yaml:"name"`
	Image        string            `yaml:"image"`
	Context      string            `yaml:"context"`
	Dockerfile   string            `yaml:"dockerfile"`
	ExposedPorts []int             `yaml:"exposed_ports"`
	Env          map[string]string `yaml:"env"`
	Database     string            `yaml:"database"`
	Username     string            `yaml:"username"`
	Password     string            `yaml:"password"`
	InitScripts  []string          `yaml:"init_scripts"`
	LogLevel     string            `yaml:"log_level"`
}

type Manifest struct {
	Containers []ContainerSpec     `yaml:"containers"`
	Properties []property.Template `yaml:"properties"`
}

func Load(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks kinds, names and that every template refers to a declared container.
func (m Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Containers))
	for i, c := range m.Containers {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("containers[%d]: empty name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("containers[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		switch c.Kind {
		case KindDockerfile, KindPostgres, KindRedis:
		default:
			return fmt.Errorf("containers[%d]: unknown kind %q", i, c.Kind)
		}
	}
	for i, p := range m.Properties {
		if p.Property == "" {
			return fmt.Errorf("properties[%d]: empty property", i)
		}
		if !seen[p.Container] {
			return fmt.Errorf("properties[%d]: container %q is not declared", i, p.Container)
		}
	}
	return nil
}

// Declarations converts the manifest into run-level harness declarations.
func (m Manifest) Declarations() (harness.Declarations, error) {
	if err := m.Validate(); err != nil {
		return harness.Declarations{}, err
	}
	decls := make([]container.Declaration, 0, len(m.Containers))
	for _, c := range m.Containers {
		decls = append(decls, c.declaration())
	}
	return harness.Declarations{
		Containers: decls,
		Properties: m.Properties,
	}, nil
}

func (c ContainerSpec) declaration() container.Declaration {
	switch c.Kind {
	case KindPostgres:
		return factory.Postgres(factory.PostgresSource{
			Name:        c.Name,
			Image:       c.Image,
			Database:    c.Database,
			Username:    c.Username,
			Password:    c.Password,
			InitScripts: c.InitScripts,
		})
	case KindRedis:
		return factory.Redis(factory.RedisSource{
			Name:     c.Name,
			Image:    c.Image,
			LogLevel: c.LogLevel,
		})
	default:
		return factory.Dockerfile(factory.DockerfileSource{
			Name:         c.Name,
			Context:      c.Context,
			Dockerfile:   c.Dockerfile,
			ExposedPorts: c.ExposedPorts,
			Env:          c.Env,
		})
	}
}
