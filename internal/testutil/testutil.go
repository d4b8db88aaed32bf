// Package testutil provides in-memory container doubles for tests that must not
// reach a Docker daemon.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/docker/go-connections/nat"
)

// FakeContainer records lifecycle calls and serves canned host and port metadata.
type FakeContainer struct {
	HostName string
	// Ports maps container-internal ports to host ports.
	Ports map[int]int

	StartErr         error
	TerminateErr     error
	PanicOnTerminate bool

	mu         sync.Mutex
	starts     int
	terminates int
}

func NewFakeContainer(host string, ports map[int]int) *FakeContainer {
	return &FakeContainer{HostName: host, Ports: ports}
}

func (c *FakeContainer) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	return c.StartErr
}

func (c *FakeContainer) Terminate(context.Context) error {
	c.mu.Lock()
	c.terminates++
	c.mu.Unlock()
	if c.PanicOnTerminate {
		panic("terminate exploded")
	}
	return c.TerminateErr
}

func (c *FakeContainer) Host(context.Context) (string, error) {
	if c.HostName == "" {
		return "", fmt.Errorf("no host")
	}
	return c.HostName, nil
}

func (c *FakeContainer) MappedPort(_ context.Context, port nat.Port) (nat.Port, error) {
	mapped, ok := c.Ports[port.Int()]
	if !ok {
		return "", fmt.Errorf("port %s is not mapped", port)
	}
	return nat.Port(fmt.Sprintf("%d/tcp", mapped)), nil
}

func (c *FakeContainer) Starts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts
}

func (c *FakeContainer) Terminates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminates
}

// PlainContainer has a lifecycle but exposes no host or port metadata.
type PlainContainer struct {
	Started    int
	Terminated int
}

func (c *PlainContainer) Start(context.Context) error {
	c.Started++
	return nil
}

func (c *PlainContainer) Terminate(context.Context) error {
	c.Terminated++
	return nil
}
