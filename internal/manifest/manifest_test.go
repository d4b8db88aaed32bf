package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/container-harness/container"
	"github.com/example/container-harness/property"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const sample = `
containers:
  - kind: postgres
    name: db
    database: orders
  - kind: redis
    name: cache
  - kind: dockerfile
    name: api
    context: ./api
    exposed_ports: [8080]
properties:
  - container: db
    property: db.url
    value: postgres://test:test@${host}:${port:5432}/orders
  - container: cache
    property: cache.addr
    value: ${host}:${port:6379}
`

func TestLoadValid(t *testing.T) {
	m, err := Load(write(t, sample))
	require.NoError(t, err)
	require.Len(t, m.Containers, 3)
	assert.Equal(t, KindPostgres, m.Containers[0].Kind)
	assert.Equal(t, []int{8080}, m.Containers[2].ExposedPorts)
	assert.Equal(t, property.Template{Container: "cache", Property: "cache.addr", Value: "${host}:${port:6379}"}, m.Properties[1])
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown kind":   "containers:\n  - kind: mysql\n    name: db\n",
		"empty name":     "containers:\n  - kind: redis\n",
		"duplicate name": "containers:\n  - kind: redis\n    name: a\n  - kind: postgres\n    name: a\n",
		"undeclared ref": "containers:\n  - kind: redis\n    name: a\nproperties:\n  - container: b\n    property: x\n    value: y\n",
		"empty property": "containers:\n  - kind: redis\n    name: a\nproperties:\n  - container: a\n    value: y\n",
		"malformed yaml": "containers: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeclarations(t *testing.T) {
	m, err := Load(write(t, sample))
	require.NoError(t, err)
	decl, err := m.Declarations()
	require.NoError(t, err)
	require.Len(t, decl.Containers, 3)
	assert.Len(t, decl.Properties, 2)

	var names []string
	for _, d := range decl.Containers {
		f, err := container.Resolve(d)
		require.NoError(t, err)
		name, err := f.ContainerName()
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"db", "cache", "api"}, names)
}
