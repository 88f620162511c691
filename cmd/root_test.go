package cmd

import (
	"testing"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{
		"serve", "launch", "mcp", "diff", "health", "attach", "tree", "find", "tap", "longpress",
		"swipe", "scroll", "type", "clear", "wait", "exists", "info", "drag", "pinch",
	}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"format", "pretty"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag --%s", name)
		}
	}
}

func TestClientCommands_HaveBridgeFlags(t *testing.T) {
	for _, c := range []string{"health", "attach", "tree", "find", "tap", "swipe", "type", "wait", "drag", "pinch", "info", "mcp"} {
		cmd, _, err := rootCmd.Find([]string{c})
		if err != nil {
			t.Fatalf("find %s: %v", c, err)
		}
		for _, flag := range []string{"port", "port-file"} {
			if cmd.Flags().Lookup(flag) == nil {
				t.Errorf("%s: missing --%s", c, flag)
			}
		}
	}
}

func TestTapCommand_AcceptsPoint(t *testing.T) {
	for _, flag := range []string{"id", "label", "x", "y"} {
		if tapCmd.Flags().Lookup(flag) == nil {
			t.Errorf("tap: missing --%s", flag)
		}
	}
	if longPressCmd.Flags().Lookup("x") != nil {
		t.Error("longpress should not accept --x")
	}
}
