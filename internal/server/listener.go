package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

const (
	DefaultReadLimit   = 64 * 1024
	DefaultReadTimeout = 10 * time.Second
	writeTimeout       = 10 * time.Second
)

// Dispatcher turns a parsed request into a response.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) Response
}

// ListenerOptions configures a Listener.
type ListenerOptions struct {
	ReadLimit   int
	ReadTimeout time.Duration
	Logger      *slog.Logger
}

// Listener accepts connections and serves one request on each.
type Listener struct {
	ln          net.Listener
	dispatcher  Dispatcher
	readLimit   int
	readTimeout time.Duration
	log         *slog.Logger
	wg          sync.WaitGroup
}

// Listen binds addr. Use port 0 for an OS-assigned port.
func Listen(addr string, d Dispatcher, opts ListenerOptions) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	l := &Listener{
		ln:          ln,
		dispatcher:  d,
		readLimit:   opts.ReadLimit,
		readTimeout: opts.ReadTimeout,
		log:         opts.Logger,
	}
	if l.readLimit <= 0 {
		l.readLimit = DefaultReadLimit
	}
	if l.readTimeout <= 0 {
		l.readTimeout = DefaultReadTimeout
	}
	if l.log == nil {
		l.log = slog.New(slog.DiscardHandler)
	}
	l.log = l.log.With("component", "listener")
	return l, nil
}

// Port returns the bound TCP port.
func (l *Listener) Port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Serve accepts connections until ctx is done or the listener is closed, then
// waits for in-flight connections to finish.
func (l *Listener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { l.ln.Close() })
	defer stop()
	defer l.wg.Wait()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				l.log.Warn("accept timeout", "error", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handleConn(ctx, conn)
		}()
	}
}

// Close stops accepting connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	start := time.Now()
	log := l.log.With("request_id", uuid.NewString(), "remote", conn.RemoteAddr().String())

	// One read, as the peer sends the whole request in a single write.
	// Anything past the limit is dropped.
	buf := make([]byte, l.readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(l.readTimeout))
	n, err := conn.Read(buf)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			log.Debug("read failed", "error", err)
		}
		return
	}

	req, err := ParseRequest(buf[:n])
	if err != nil {
		log.Debug("dropping connection", "error", err)
		return
	}

	resp := l.dispatcher.Dispatch(ctx, req)

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write(resp.Bytes()); err != nil {
		log.Debug("write failed", "error", err)
	}
	log.Info("request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.Status,
		"duration", time.Since(start))
}

// Announce writes port to portFile atomically, then prints the file path and
// the port to w for the process that launched the bridge. The port line is
// always printed last, so a reader can stop at it.
func Announce(w io.Writer, port int, portFile string) error {
	if portFile != "" {
		if err := renameio.WriteFile(portFile, []byte(fmt.Sprintf("%d", port)), 0o644); err != nil {
			return fmt.Errorf("write port file: %w", err)
		}
		if _, err := fmt.Fprintf(w, "SIMU_BRIDGE_PORT_FILE=%s\n", portFile); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "SIMU_BRIDGE_PORT=%d\n", port)
	return err
}

// RemovePortFile deletes a port file written by Announce, ignoring absence.
func RemovePortFile(portFile string) error {
	if portFile == "" {
		return nil
	}
	if err := os.Remove(portFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
