package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

const (
	portPrefix     = "SIMU_BRIDGE_PORT="
	portFilePrefix = "SIMU_BRIDGE_PORT_FILE="
)

// ErrNoPort is returned when the bridge output ends without announcing a port.
var ErrNoPort = errors.New("bridge exited without announcing a port")

// Announcement is what a starting bridge prints on stdout.
type Announcement struct {
	Port     int
	PortFile string
}

// ReadPort scans bridge output until the port line appears and returns as
// soon as it does. The bridge prints its port-file line, if any, before the
// port line. Lines before the announcement, such as test-runner chatter, are
// skipped.
func ReadPort(ctx context.Context, r io.Reader) (Announcement, error) {
	type result struct {
		a   Announcement
		err error
	}
	done := make(chan result, 1)
	go func() {
		var a Announcement
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			switch {
			case strings.HasPrefix(line, portFilePrefix):
				a.PortFile = strings.TrimPrefix(line, portFilePrefix)
			case strings.HasPrefix(line, portPrefix):
				port, err := parsePort(strings.TrimPrefix(line, portPrefix))
				if err != nil {
					done <- result{err: err}
					return
				}
				a.Port = port
				done <- result{a: a}
				return
			}
		}
		if err := sc.Err(); err != nil {
			done <- result{err: err}
			return
		}
		done <- result{err: ErrNoPort}
	}()

	select {
	case res := <-done:
		return res.a, res.err
	case <-ctx.Done():
		return Announcement{}, ctx.Err()
	}
}

// ReadPortFile reads the port written by a running bridge.
func ReadPortFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read port file: %w", err)
	}
	return parsePort(strings.TrimSpace(string(data)))
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid bridge port %q", s)
	}
	return port, nil
}

// WaitHealthy polls /health with exponential backoff until the bridge answers,
// maxElapsed passes, or ctx is done.
func WaitHealthy(ctx context.Context, c *Client, maxElapsed time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = maxElapsed

	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return c.Health(reqCtx)
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("bridge at %s not healthy: %w", c.BaseURL(), err)
	}
	return nil
}
