package harness

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/container-harness/container"
	"github.com/example/container-harness/internal/testutil"
	"github.com/example/container-harness/property"
)

// fleet hands out one fake container per name and remembers them.
type fleet struct {
	mu         sync.Mutex
	containers map[string]*testutil.FakeContainer
}

func newFleet() *fleet { return &fleet{containers: map[string]*testutil.FakeContainer{}} }

func (f *fleet) get(name string) *testutil.FakeContainer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.containers[name]
}

func (f *fleet) create(name string) *testutil.FakeContainer {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := testutil.NewFakeContainer(name+".local", map[int]int{5432: 40000 + len(f.containers)})
	f.containers[name] = c
	return c
}

type fakeSource struct {
	Name  string
	fleet *fleet
}

type fakeFactory struct {
	container.Configurable[fakeSource]
}

func (f *fakeFactory) ContainerName() (string, error) {
	src, err := f.Source()
	return src.Name, err
}

func (f *fakeFactory) CreateContainer(context.Context) (container.Container, error) {
	src, err := f.Source()
	if err != nil {
		return nil, err
	}
	return src.fleet.create(src.Name), nil
}

func (f *fleet) decl(name string) container.Declaration {
	return container.Declaration{
		New:    func() container.Factory { return &fakeFactory{} },
		Source: fakeSource{Name: name, fleet: f},
	}
}

var dummyResolver = property.Func[container.Container]("dummy", `\$\{dummyKey}`,
	func(context.Context, container.Container, []string) (string, bool) { return "dummyValue", true })

type fakeTB struct {
	name     string
	cleanups []func()
	fatal    string
	skipped  string
}

func (f *fakeTB) Helper()           {}
func (f *fakeTB) Name() string      { return f.name }
func (f *fakeTB) Cleanup(fn func()) { f.cleanups = append(f.cleanups, fn) }
func (f *fakeTB) Skip(args ...any)  { f.skipped = fmt.Sprint(args...) }
func (f *fakeTB) Fatalf(format string, args ...any) {
	f.fatal = fmt.Sprintf(format, args...)
}

func (f *fakeTB) finish() {
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		f.cleanups[i]()
	}
}
