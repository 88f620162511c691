package cmd

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/mj1618/simu-bridge/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the bridge as ui_* tools",
	Long: `Start a Model Context Protocol (MCP) server whose tools forward to a running
bridge. AI agents can drive the app directly without shell overhead.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport (for remote agents)

Without --port the bridge port is re-read from --port-file on every call, so
the MCP server survives bridge restarts.

Examples:
  simu-bridge mcp
  simu-bridge mcp --port 8100
  simu-bridge mcp --transport streamable-http --listen :8080`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addBridgeFlags(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	mcpCmd.Flags().String("listen", ":8080", "Listen address for streamable-http transport")
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Listen    string
}

// mcpServer wraps the MCP server with a way to reach the bridge.
type mcpServer struct {
	connect func() (*client.Client, error)
	mcp     *mcpserver.MCPServer
}

// newMCPServer creates an MCP server with all ui_* tools.
func newMCPServer(connect func() (*client.Client, error)) *mcpServer {
	s := &mcpServer{
		connect: connect,
		mcp:     mcpserver.NewMCPServer("simu-bridge", version.Version),
	}
	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(cfg.Listen)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	listen, _ := cmd.Flags().GetString("listen")
	srv := newMCPServer(func() (*client.Client, error) { return bridgeClient(cmd) })
	return srv.serve(MCPConfig{Transport: transport, Listen: listen})
}

// targetOptions are the element-selection arguments shared by most tools.
func targetOptions(withPoint bool) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithString("identifier", mcp.Description("Accessibility identifier (exact match)")),
		mcp.WithString("label", mcp.Description("Label (exact match, used when identifier is unset or misses)")),
	}
	if withPoint {
		opts = append(opts,
			mcp.WithNumber("x", mcp.Description("X in app points; with y, bypasses identifier/label")),
			mcp.WithNumber("y", mcp.Description("Y in app points; with x, bypasses identifier/label")),
		)
	}
	return opts
}

func newTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

type toolDef struct {
	tool    mcp.Tool
	handler mcpserver.ToolHandlerFunc
}

func (s *mcpServer) registerTools() {
	for _, t := range s.tools() {
		s.mcp.AddTool(t.tool, t.handler)
	}
}

func (s *mcpServer) tools() []toolDef {
	return []toolDef{
		{
			newTool("ui_attach", "Attach the bridge to a running app by bundle identifier",
				mcp.WithString("bundleId", mcp.Description("Bundle identifier, e.g. com.example.app"), mcp.Required()),
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				id := StringParam(p, "bundleId", "")
				if err := c.Attach(ctx, id); err != nil {
					return nil, err
				}
				return statusResult{Status: "attached", BundleID: id}, nil
			}),
		},
		{
			newTool("ui_tree", "Read the attached app's UI hierarchy (depth-limited; capped child lists end with a _truncated count)"),
			s.tool(func(ctx context.Context, c *client.Client, _ map[string]interface{}) (interface{}, error) {
				return c.Tree(ctx)
			}),
		},
		{
			newTool("ui_find", "Find elements; filters are ANDed and exact",
				append(targetOptions(false),
					mcp.WithString("elementType", mcp.Description("Element type, e.g. button, staticText")))...,
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Find(ctx, targetFromParams(p))
			}),
		},
		{
			newTool("ui_tap", "Tap an element by identifier or label, or a point by x/y", targetOptions(true)...),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Tap(ctx, targetFromParams(p))
			}),
		},
		{
			newTool("ui_long_press", "Press and hold an element",
				append(targetOptions(false),
					mcp.WithNumber("duration", mcp.Description("Hold time in seconds (default: 1)")))...,
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.LongPress(ctx, targetFromParams(p), FloatParam(p, "duration", bridge.DefaultLongPress))
			}),
		},
		{
			newTool("ui_swipe", "Swipe an element, or the whole app when no element is given",
				append(targetOptions(false),
					mcp.WithString("direction", mcp.Description("up, down, left, right"), mcp.Required()))...,
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Swipe(ctx, targetFromParams(p), StringParam(p, "direction", ""))
			}),
		},
		{
			newTool("ui_scroll", "Scroll in a direction; the same gesture as ui_swipe",
				append(targetOptions(false),
					mcp.WithString("direction", mcp.Description("up, down, left, right"), mcp.Required()))...,
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Scroll(ctx, targetFromParams(p), StringParam(p, "direction", ""))
			}),
		},
		{
			newTool("ui_type", "Type text into an element (tapped first) or the focused field",
				append(targetOptions(false),
					mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()))...,
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Type(ctx, targetFromParams(p), StringParam(p, "text", ""))
			}),
		},
		{
			newTool("ui_clear", "Delete the contents of a text field", targetOptions(false)...),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Clear(ctx, targetFromParams(p))
			}),
		},
		{
			newTool("ui_wait", "Wait for an element to exist, or to disappear with exists=false",
				mcp.WithString("identifier", mcp.Description("Accessibility identifier"), mcp.Required()),
				mcp.WithNumber("timeout", mcp.Description("Max seconds to wait (default: 5)")),
				mcp.WithBoolean("exists", mcp.Description("Wait for existence (default) or absence")),
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Wait(ctx,
					StringParam(p, "identifier", ""),
					FloatParam(p, "timeout", bridge.DefaultWaitTimeout),
					BoolParam(p, "exists", true))
			}),
		},
		{
			newTool("ui_exists", "Report whether an element exists", targetOptions(false)...),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				exists, err := c.Exists(ctx, targetFromParams(p))
				return bridge.ExistsResult{Exists: exists}, err
			}),
		},
		{
			newTool("ui_info", "Show an element's details, including hittability", targetOptions(false)...),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Info(ctx, targetFromParams(p))
			}),
		},
		{
			newTool("ui_drag", "Press at one point and drag to another (app points)",
				mcp.WithNumber("fromX", mcp.Required()),
				mcp.WithNumber("fromY", mcp.Required()),
				mcp.WithNumber("toX", mcp.Required()),
				mcp.WithNumber("toY", mcp.Required()),
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Drag(ctx,
					FloatParam(p, "fromX", 0), FloatParam(p, "fromY", 0),
					FloatParam(p, "toX", 0), FloatParam(p, "toY", 0))
			}),
		},
		{
			newTool("ui_pinch", "Pinch an element, or the whole app when no element is given",
				append(targetOptions(false),
					mcp.WithNumber("scale", mcp.Description("> 1 zooms in, < 1 zooms out (default: 2)")),
					mcp.WithNumber("velocity", mcp.Description("Scale factor per second (default: 1)")))...,
			),
			s.tool(func(ctx context.Context, c *client.Client, p map[string]interface{}) (interface{}, error) {
				return c.Pinch(ctx, targetFromParams(p),
					FloatParam(p, "scale", bridge.DefaultPinchScale),
					FloatParam(p, "velocity", bridge.DefaultPinchSpeed))
			}),
		},
	}
}

// tool adapts a bridge call into an MCP handler. Results are returned as YAML;
// bridge and transport errors become tool errors.
func (s *mcpServer) tool(fn func(context.Context, *client.Client, map[string]interface{}) (interface{}, error)) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		c, err := s.connect()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, err := fn(ctx, c, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := yaml.Marshal(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}
