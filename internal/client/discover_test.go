package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mj1618/simu-bridge/internal/server"
)

func TestReadPort(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    Announcement
		wantErr bool
	}{
		{
			name:   "port and file",
			output: "Test Suite started\nSIMU_BRIDGE_PORT_FILE=/tmp/simu-bridge-port\nSIMU_BRIDGE_PORT=50123\n",
			want:   Announcement{Port: 50123, PortFile: "/tmp/simu-bridge-port"},
		},
		{
			name:   "port only",
			output: "noise\nSIMU_BRIDGE_PORT=8080\n",
			want:   Announcement{Port: 8080},
		},
		{
			name:   "trailing whitespace",
			output: "  SIMU_BRIDGE_PORT=9000\r\n",
			want:   Announcement{Port: 9000},
		},
		{name: "no port", output: "build failed\n", wantErr: true},
		{name: "bad port", output: "SIMU_BRIDGE_PORT=abc\n", wantErr: true},
		{name: "out of range", output: "SIMU_BRIDGE_PORT=70000\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadPort(context.Background(), strings.NewReader(tt.output))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadPort_ReturnsWhileOutputStaysOpen(t *testing.T) {
	for _, portFile := range []string{"", filepath.Join(t.TempDir(), "port")} {
		r, w := io.Pipe()
		go func() {
			// The bridge keeps stdout open after announcing.
			_ = server.Announce(w, 4321, portFile)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		got, err := ReadPort(ctx, r)
		cancel()
		w.Close()
		if err != nil {
			t.Fatalf("port file %q: %v", portFile, err)
		}
		if got != (Announcement{Port: 4321, PortFile: portFile}) {
			t.Errorf("got %+v", got)
		}
	}
}

func TestReadPort_NoAnnouncement(t *testing.T) {
	_, err := ReadPort(context.Background(), strings.NewReader(""))
	if !errors.Is(err, ErrNoPort) {
		t.Errorf("err = %v, want ErrNoPort", err)
	}
}

func TestReadPort_ContextCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := ReadPort(ctx, r); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}
}

func TestReadPortFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "port")
	if err := os.WriteFile(good, []byte("50123\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if port, err := ReadPortFile(good); err != nil || port != 50123 {
		t.Errorf("ReadPortFile = %d, %v", port, err)
	}
	if _, err := ReadPortFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWaitHealthy_RetriesUntilUp(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":"starting"}`, http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	if err := WaitHealthy(context.Background(), NewWithBaseURL(ts.URL), 10*time.Second); err != nil {
		t.Fatalf("WaitHealthy: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestWaitHealthy_GivesUp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	start := time.Now()
	err := WaitHealthy(context.Background(), NewWithBaseURL(ts.URL), 300*time.Millisecond)
	if err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("gave up after %v", time.Since(start))
	}
}
