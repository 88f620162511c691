package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestParamHelpers(t *testing.T) {
	params := map[string]interface{}{
		"s": "hello",
		"f": 2.5,
		"b": true,
		"n": "not a number",
	}
	if got := StringParam(params, "s", ""); got != "hello" {
		t.Errorf("StringParam: got %q", got)
	}
	if got := StringParam(params, "f", "def"); got != "def" {
		t.Errorf("StringParam of number: got %q, want default", got)
	}
	if got := FloatParam(params, "f", 0); got != 2.5 {
		t.Errorf("FloatParam: got %v", got)
	}
	if got := FloatParam(params, "n", 7); got != 7 {
		t.Errorf("FloatParam of string: got %v, want default", got)
	}
	if got := BoolParam(params, "b", false); !got {
		t.Error("BoolParam: got false")
	}
	if got := BoolParam(params, "missing", true); !got {
		t.Error("BoolParam default: got false")
	}
}

func newTargetCmd(withPoint bool) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addBridgeFlags(cmd)
	addTargetFlags(cmd, withPoint)
	return cmd
}

func TestTargetFromFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantID    string
		wantLabel string
		wantPoint bool
	}{
		{"identifier", []string{"--id", "login"}, "login", "", false},
		{"label", []string{"--label", "Log In"}, "", "Log In", false},
		{"point", []string{"--x", "10", "--y", "20"}, "", "", true},
		{"x without y", []string{"--x", "10"}, "", "", false},
		{"zero point", []string{"--x", "0", "--y", "0"}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTargetCmd(true)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			got := targetFromFlags(cmd)
			if got.Identifier != tt.wantID || got.Label != tt.wantLabel {
				t.Errorf("got %+v", got)
			}
			if (got.X != nil) != tt.wantPoint {
				t.Errorf("point set: got %v, want %v", got.X != nil, tt.wantPoint)
			}
		})
	}
}

func TestTargetFromFlags_NoPointFlags(t *testing.T) {
	cmd := newTargetCmd(false)
	if err := cmd.Flags().Parse([]string{"--id", "a"}); err != nil {
		t.Fatal(err)
	}
	if got := targetFromFlags(cmd); got.X != nil || got.Identifier != "a" {
		t.Errorf("got %+v", got)
	}
}

func TestTargetFromParams(t *testing.T) {
	got := targetFromParams(map[string]interface{}{
		"identifier":  "row-1",
		"elementType": "cell",
		"x":           float64(5),
	})
	if got.Identifier != "row-1" || got.ElementType != "cell" {
		t.Errorf("got %+v", got)
	}
	if got.X != nil {
		t.Error("x without y should not produce a point")
	}

	got = targetFromParams(map[string]interface{}{"x": float64(5), "y": float64(6)})
	if got.X == nil || *got.X != 5 || *got.Y != 6 {
		t.Errorf("point: got %+v", got)
	}
}

func TestBridgeClient(t *testing.T) {
	t.Run("explicit port", func(t *testing.T) {
		cmd := newTargetCmd(false)
		if err := cmd.Flags().Parse([]string{"--port", "8100"}); err != nil {
			t.Fatal(err)
		}
		c, err := bridgeClient(cmd)
		if err != nil {
			t.Fatal(err)
		}
		if c.BaseURL() != "http://127.0.0.1:8100" {
			t.Errorf("base URL: got %q", c.BaseURL())
		}
	})

	t.Run("port file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "port")
		if err := os.WriteFile(path, []byte("9123\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cmd := newTargetCmd(false)
		if err := cmd.Flags().Parse([]string{"--port-file", path}); err != nil {
			t.Fatal(err)
		}
		c, err := bridgeClient(cmd)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(c.BaseURL(), ":9123") {
			t.Errorf("base URL: got %q", c.BaseURL())
		}
	})

	t.Run("missing port file", func(t *testing.T) {
		cmd := newTargetCmd(false)
		if err := cmd.Flags().Parse([]string{"--port-file", filepath.Join(t.TempDir(), "nope")}); err != nil {
			t.Fatal(err)
		}
		if _, err := bridgeClient(cmd); err == nil {
			t.Error("expected error without a port")
		}
	})
}
