package cmd

import (
	"context"
	"fmt"
	"math"
	"os/signal"
	"syscall"

	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/mj1618/simu-bridge/internal/config"
	"github.com/mj1618/simu-bridge/internal/output"
	"github.com/spf13/cobra"
)

// StringParam extracts a string parameter from an MCP argument map.
func StringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

// FloatParam extracts a numeric parameter from an MCP argument map.
func FloatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return def
}

// BoolParam extracts a boolean parameter from an MCP argument map.
func BoolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// addBridgeFlags adds the flags that locate a running bridge.
func addBridgeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("port", 0, "Bridge port (default: read from --port-file)")
	cmd.Flags().String("port-file", config.Default().PortFile, "File the bridge wrote its port to")
}

// bridgeClient returns a client for the bridge selected by --port or --port-file.
func bridgeClient(cmd *cobra.Command) (*client.Client, error) {
	port, _ := cmd.Flags().GetInt("port")
	if port > 0 {
		return client.New(port), nil
	}
	portFile, _ := cmd.Flags().GetString("port-file")
	port, err := client.ReadPortFile(portFile)
	if err != nil {
		return nil, fmt.Errorf("no bridge port (use --port or start the bridge): %w", err)
	}
	return client.New(port), nil
}

// addTargetFlags adds element-selection flags. withPoint adds --x/--y.
func addTargetFlags(cmd *cobra.Command, withPoint bool) {
	cmd.Flags().String("id", "", "Element accessibility identifier (exact match)")
	cmd.Flags().String("label", "", "Element label (exact match, used when --id is unset or misses)")
	if withPoint {
		cmd.Flags().Float64("x", math.NaN(), "X in app points (with --y, bypasses --id/--label)")
		cmd.Flags().Float64("y", math.NaN(), "Y in app points (with --x, bypasses --id/--label)")
	}
}

// targetFromFlags builds a client target from the flags added by addTargetFlags.
func targetFromFlags(cmd *cobra.Command) client.Target {
	var t client.Target
	t.Identifier, _ = cmd.Flags().GetString("id")
	t.Label, _ = cmd.Flags().GetString("label")
	if cmd.Flags().Lookup("x") != nil && cmd.Flags().Changed("x") && cmd.Flags().Changed("y") {
		x, _ := cmd.Flags().GetFloat64("x")
		y, _ := cmd.Flags().GetFloat64("y")
		t.X, t.Y = &x, &y
	}
	return t
}

// targetFromParams builds a client target from MCP tool arguments.
func targetFromParams(params map[string]interface{}) client.Target {
	t := client.Target{
		Identifier:  StringParam(params, "identifier", ""),
		Label:       StringParam(params, "label", ""),
		ElementType: StringParam(params, "elementType", ""),
	}
	x, xok := params["x"].(float64)
	y, yok := params["y"].(float64)
	if xok && yok {
		t.X, t.Y = &x, &y
	}
	return t
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// runGesture runs fn against the bridge and prints its result.
func runGesture[T any](cmd *cobra.Command, fn func(context.Context, *client.Client) (T, error)) error {
	c, err := bridgeClient(cmd)
	if err != nil {
		return err
	}
	res, err := fn(cmd.Context(), c)
	if err != nil {
		return err
	}
	return output.Print(res)
}
