package factory

import (
	"context"
	"time"

	"github.com/docker/go-connections/nat"
)

const pollInterval = 150 * time.Millisecond

func natPort(port string) nat.Port { return nat.Port(port + "/tcp") }

// poll calls check until it succeeds, ctx ends or the deadline passes, returning
// the last check error in the latter cases.
func poll(ctx context.Context, deadline time.Duration, check func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	var last error
	for {
		attempt, cancelAttempt := context.WithTimeout(ctx, 2*time.Second)
		last = check(attempt)
		cancelAttempt()
		if last == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return last
		case <-time.After(pollInterval):
		}
	}
}
