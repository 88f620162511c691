package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/config"
	"github.com/mj1618/simu-bridge/internal/logging"
	"github.com/mj1618/simu-bridge/internal/mainthread"
	"github.com/mj1618/simu-bridge/internal/platform"
	_ "github.com/mj1618/simu-bridge/internal/platform/fixture"
	"github.com/mj1618/simu-bridge/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the automation bridge",
	Long: `Start the automation bridge inside the current process. Requests arrive on
a loopback TCP port and every UI operation runs on the main thread, one at a
time. Once listening, the bridge writes its port to the port file and prints:

  SIMU_BRIDGE_PORT=<port>
  SIMU_BRIDGE_PORT_FILE=<path>

Configuration is read from --config (YAML), then SIMU_BRIDGE_* environment
variables, then flags.

Examples:
  simu-bridge serve --fixture examples/fixture.yaml
  simu-bridge serve --port 8100 --log-format json
  SIMU_BRIDGE_MAX_WAIT=10s simu-bridge serve --config bridge.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().String("host", "", "Listen address (default 127.0.0.1)")
	cmd.Flags().Int("port", 0, "Listen port (0 = OS-assigned)")
	cmd.Flags().String("port-file", "", "File to write the bound port to")
	cmd.Flags().String("fixture", "", "Serve the app hierarchy described in this YAML file")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().String("log-format", "", "Log format: text, json")
}

// serveConfig loads the config file and environment, then applies any flags
// the user set.
func serveConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("port-file") {
		cfg.PortFile, _ = flags.GetString("port-file")
	}
	if flags.Changed("fixture") {
		cfg.Fixture, _ = flags.GetString("fixture")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	automation, err := platform.NewProvider(cfg.Fixture)
	if err != nil {
		return err
	}

	executor := mainthread.New(mainthread.DefaultQueueSize, log)
	engine := bridge.NewEngine(bridge.NewSession(automation), bridge.Options{
		Budget:       bridge.Budget{MaxDepth: cfg.Tree.MaxDepth, ChildCap: cfg.Tree.ChildCap},
		Find:         bridge.FindLimits{UpperBound: cfg.Find.UpperBound, ResultCap: cfg.Find.ResultCap},
		MaxWait:      cfg.MaxWait,
		PollInterval: cfg.PollInterval,
		Logger:       log,
	})
	srv := server.New(engine, executor, server.Options{
		HandoffTimeout: cfg.HandoffTimeout,
		Logger:         log,
	})

	ln, err := server.Listen(cfg.Addr(), srv, server.ListenerOptions{
		ReadLimit:   cfg.ReadLimit,
		ReadTimeout: cfg.ReadTimeout,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	if err := server.Announce(os.Stdout, ln.Port(), cfg.PortFile); err != nil {
		ln.Close()
		return err
	}
	defer func() {
		if err := server.RemovePortFile(cfg.PortFile); err != nil {
			log.Warn("remove port file", "error", err)
		}
	}()
	log.Info("bridge listening", "addr", ln.Addr().String(), "port_file", cfg.PortFile)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- ln.Serve(ctx)
		stop()
	}()

	// The automation context owns this goroutine, which main locked to the
	// process main thread.
	runErr := executor.Run(ctx)
	if err := <-serveErr; err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	log.Info("bridge stopped")
	return nil
}
