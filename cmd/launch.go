package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/mj1618/simu-bridge/internal/output"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch -- <command> [args...]",
	Short: "Start a bridge process and wait until it is ready",
	Long: `Run a command that hosts the bridge (for example the UI test runner, or
"simu-bridge serve"), read its announced port from stdout, and wait for
/health to answer. With --attach the bridge is then attached to an app.

The bridge's own output is forwarded to stderr; stdout carries only the
launch result. The command stays in the foreground until the bridge exits
or is interrupted.

Examples:
  simu-bridge launch -- simu-bridge serve --fixture examples/fixture.yaml
  simu-bridge launch --attach com.example.todo --timeout 2m -- xcodebuild test-without-building ...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().Duration("timeout", 30*time.Second, "How long to wait for the bridge to announce its port and become healthy")
	launchCmd.Flags().String("attach", "", "Attach to this bundle identifier once the bridge is healthy")
}

type launchResult struct {
	Port     int    `yaml:"port"               json:"port"`
	PortFile string `yaml:"portFile,omitempty" json:"portFile,omitempty"`
	BaseURL  string `yaml:"baseUrl"            json:"baseUrl"`
	Attached string `yaml:"attached,omitempty" json:"attached,omitempty"`
}

// launchedBridge is a running bridge child process.
type launchedBridge struct {
	cmd     *exec.Cmd
	client  *client.Client
	result  launchResult
	drained chan struct{}
}

// launchBridge starts child and returns once its bridge is announced and
// healthy. The rest of the child's stdout is copied to logOut. On failure
// the child is killed.
func launchBridge(ctx context.Context, child *exec.Cmd, timeout time.Duration, logOut io.Writer) (*launchedBridge, error) {
	stdout, err := child.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := child.Start(); err != nil {
		return nil, fmt.Errorf("start bridge: %w", err)
	}
	fail := func(err error) (*launchedBridge, error) {
		_ = child.Process.Kill()
		_ = child.Wait()
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	a, err := client.ReadPort(startCtx, stdout)
	if err != nil {
		return fail(fmt.Errorf("bridge did not announce a port: %w", err))
	}

	b := &launchedBridge{
		cmd:     child,
		client:  client.New(a.Port),
		drained: make(chan struct{}),
		result:  launchResult{Port: a.Port, PortFile: a.PortFile},
	}
	b.result.BaseURL = b.client.BaseURL()
	// Keep draining so the child never blocks on a full pipe.
	go func() {
		defer close(b.drained)
		_, _ = io.Copy(logOut, stdout)
	}()

	if err := client.WaitHealthy(startCtx, b.client, timeout); err != nil {
		_ = child.Process.Kill()
		<-b.drained
		_ = child.Wait()
		return nil, err
	}
	return b, nil
}

// wait blocks until the child exits.
func (b *launchedBridge) wait() error {
	<-b.drained
	return b.cmd.Wait()
}

// stop kills the child and reaps it.
func (b *launchedBridge) stop() {
	_ = b.cmd.Process.Kill()
	_ = b.wait()
}

func runLaunch(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	bundleID, _ := cmd.Flags().GetString("attach")

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	child := exec.CommandContext(ctx, args[0], args[1:]...)
	child.Stderr = os.Stderr
	b, err := launchBridge(ctx, child, timeout, os.Stderr)
	if err != nil {
		return err
	}

	if bundleID != "" {
		if err := b.client.Attach(ctx, bundleID); err != nil {
			b.stop()
			return fmt.Errorf("attach %s: %w", bundleID, err)
		}
		b.result.Attached = bundleID
	}
	if err := output.Print(b.result); err != nil {
		b.stop()
		return err
	}

	if err := b.wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("bridge exited: %w", err)
	}
	return nil
}
