package cmd

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"testing"
	"time"

	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/mj1618/simu-bridge/internal/server"
)

// TestBridgeHelperProcess is not a real test. launch tests re-run the test
// binary with SIMU_BRIDGE_HELPER=1 to get a child process that hosts a bridge.
func TestBridgeHelperProcess(t *testing.T) {
	if os.Getenv("SIMU_BRIDGE_HELPER") != "1" {
		return
	}
	c, _ := startBridge(t)
	u, err := url.Parse(c.BaseURL())
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	if err := server.Announce(os.Stdout, port, ""); err != nil {
		t.Fatal(err)
	}
	select {}
}

func helperCommand(ctx context.Context, pattern string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run="+pattern)
	cmd.Env = append(os.Environ(), "SIMU_BRIDGE_HELPER=1")
	return cmd
}

func TestLaunchBridge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := launchBridge(ctx, helperCommand(ctx, "^TestBridgeHelperProcess$"), 10*time.Second, io.Discard)
	if err != nil {
		t.Fatalf("launchBridge: %v", err)
	}
	defer b.stop()

	if b.result.Port <= 0 {
		t.Fatalf("port: got %d", b.result.Port)
	}
	if b.result.BaseURL != client.New(b.result.Port).BaseURL() {
		t.Errorf("baseUrl: got %q", b.result.BaseURL)
	}
	if err := b.client.Health(ctx); err != nil {
		t.Errorf("health: %v", err)
	}
}

func TestLaunchBridge_ChildExitsWithoutPort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Matches no test, so the child exits without announcing.
	_, err := launchBridge(ctx, helperCommand(ctx, "^$"), 10*time.Second, io.Discard)
	if !errors.Is(err, client.ErrNoPort) {
		t.Fatalf("got %v, want ErrNoPort", err)
	}
}

func TestLaunchBridge_StartFails(t *testing.T) {
	child := exec.Command("/nonexistent/simu-bridge-host")
	if _, err := launchBridge(context.Background(), child, time.Second, io.Discard); err == nil {
		t.Fatal("expected start error")
	}
}
