package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/mj1618/simu-bridge/internal/mainthread"
	"github.com/mj1618/simu-bridge/internal/platform/fixture"
	"github.com/mj1618/simu-bridge/internal/server"
)

const mcpFixture = `
apps:
  - bundleIdentifier: com.example.app
    children:
      - type: textField
        identifier: username
        label: Username
        frame: {x: 20, y: 100, width: 350, height: 44}
      - type: button
        identifier: login
        label: Log In
        frame: {x: 20, y: 200, width: 350, height: 44}
`

// startBridge runs a fixture-backed bridge on a loopback port.
func startBridge(t *testing.T) (*client.Client, *fixture.Automation) {
	t.Helper()
	a, err := fixture.Parse([]byte(mcpFixture))
	if err != nil {
		t.Fatal(err)
	}
	exec := mainthread.New(0, nil)
	engine := bridge.NewEngine(bridge.NewSession(a), bridge.Options{PollInterval: 5 * time.Millisecond})
	l, err := server.Listen("127.0.0.1:0", server.New(engine, exec, server.Options{}), server.ListenerOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	execDone := make(chan struct{})
	serveDone := make(chan struct{})
	go func() {
		defer close(execDone)
		_ = exec.Run(ctx)
	}()
	go func() {
		defer close(serveDone)
		_ = l.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-serveDone
		<-execDone
	})
	return client.New(l.Port()), a
}

func callTool(t *testing.T, s *mcpServer, name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	for _, def := range s.tools() {
		if def.tool.Name != name {
			continue
		}
		var req mcp.CallToolRequest
		req.Params.Name = name
		req.Params.Arguments = args
		res, err := def.handler(context.Background(), req)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		text, ok := res.Content[0].(mcp.TextContent)
		if !ok {
			t.Fatalf("%s: unexpected content %T", name, res.Content[0])
		}
		return text.Text, res.IsError
	}
	t.Fatalf("tool %q not registered", name)
	return "", false
}

func TestMCPServer_RegistersUITools(t *testing.T) {
	s := newMCPServer(func() (*client.Client, error) { return nil, errors.New("unused") })
	want := []string{
		"ui_attach", "ui_tree", "ui_find", "ui_tap", "ui_long_press", "ui_swipe", "ui_type",
		"ui_clear", "ui_scroll", "ui_wait", "ui_exists", "ui_info", "ui_drag", "ui_pinch",
	}
	registered := s.mcp.ListTools()
	if len(registered) != len(want) {
		t.Errorf("registered %d tools, want %d", len(registered), len(want))
	}
	for _, name := range want {
		if _, ok := registered[name]; !ok {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestMCPServer_ForwardsToBridge(t *testing.T) {
	c, a := startBridge(t)
	s := newMCPServer(func() (*client.Client, error) { return c, nil })

	if text, isErr := callTool(t, s, "ui_attach", map[string]interface{}{"bundleId": "com.example.app"}); isErr {
		t.Fatalf("ui_attach: %s", text)
	}

	text, isErr := callTool(t, s, "ui_type", map[string]interface{}{"identifier": "username", "text": "bob"})
	if isErr || !strings.Contains(text, "success: true") {
		t.Fatalf("ui_type: %s", text)
	}
	if v, _ := a.ValueOf("username"); v != "bob" {
		t.Errorf("username value: got %q, want bob", v)
	}

	text, isErr = callTool(t, s, "ui_find", map[string]interface{}{"elementType": "button"})
	if isErr || !strings.Contains(text, "identifier: login") {
		t.Errorf("ui_find: %s", text)
	}

	text, isErr = callTool(t, s, "ui_exists", map[string]interface{}{"identifier": "nope"})
	if isErr || !strings.Contains(text, "exists: false") {
		t.Errorf("ui_exists: %s", text)
	}
}

func TestMCPServer_BridgeErrorsAreToolErrors(t *testing.T) {
	c, _ := startBridge(t)
	s := newMCPServer(func() (*client.Client, error) { return c, nil })

	text, isErr := callTool(t, s, "ui_tap", map[string]interface{}{"identifier": "login"})
	if !isErr {
		t.Fatalf("expected tool error before attach, got %s", text)
	}
	if !strings.Contains(text, "element not found") {
		t.Errorf("error text: %q", text)
	}

	text, isErr = callTool(t, s, "ui_attach", map[string]interface{}{"bundleId": "com.nope"})
	if !isErr {
		t.Errorf("expected tool error for unknown app, got %s", text)
	}
}

func TestMCPServer_NoBridge(t *testing.T) {
	s := newMCPServer(func() (*client.Client, error) { return nil, errors.New("no bridge port") })
	text, isErr := callTool(t, s, "ui_tree", nil)
	if !isErr || !strings.Contains(text, "no bridge port") {
		t.Errorf("got %q (isError=%v)", text, isErr)
	}
}
