// Package server exposes the bridge over a minimal HTTP/1.1 transport: one
// request per TCP connection, every request handled on the automation context.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/mainthread"
)

// DefaultHandoffTimeout bounds the wait for the automation context.
const DefaultHandoffTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	HandoffTimeout time.Duration
	Logger         *slog.Logger
}

// Server routes bridge requests onto the automation context.
type Server struct {
	engine   *bridge.Engine
	executor *mainthread.Executor
	router   *Router
	handoff  time.Duration
	log      *slog.Logger
}

// New builds a server whose handlers drive engine on executor.
func New(engine *bridge.Engine, executor *mainthread.Executor, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:   engine,
		executor: executor,
		handoff:  opts.HandoffTimeout,
		log:      log.With("component", "server"),
	}
	if s.handoff <= 0 {
		s.handoff = DefaultHandoffTimeout
	}
	s.router = NewRouter(s.log)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Handle("GET", "/health", s.handleHealth)
	r.Handle("POST", "/attach", s.handleAttach)
	r.Handle("GET", "/ui/tree", s.handleTree)
	r.Handle("POST", "/ui/find", s.handleFind)
	r.Handle("POST", "/ui/tap", s.handleTap)
	r.Handle("POST", "/ui/longPress", s.handleLongPress)
	r.Handle("POST", "/ui/swipe", s.handleSwipe)
	r.Handle("POST", "/ui/type", s.handleType)
	r.Handle("POST", "/ui/clear", s.handleClear)
	r.Handle("POST", "/ui/scroll", s.handleScroll)
	r.Handle("POST", "/ui/wait", s.handleWait)
	r.Handle("POST", "/ui/exists", s.handleExists)
	r.Handle("POST", "/ui/info", s.handleInfo)
	r.Handle("POST", "/ui/drag", s.handleDrag)
	r.Handle("POST", "/ui/pinch", s.handlePinch)
}

// Router returns the route table.
func (s *Server) Router() *Router { return s.router }

// Dispatch runs req through the router on the automation context. Handoff
// failures are reported as 503 (executor stopped) or 504 (deadline passed).
func (s *Server) Dispatch(ctx context.Context, req Request) Response {
	ctx, cancel := context.WithTimeout(ctx, s.handoff)
	defer cancel()

	resp, err := mainthread.Call(ctx, s.executor, func() Response {
		return s.router.Serve(ctx, req)
	})
	var panicErr *mainthread.PanicError
	switch {
	case err == nil:
		return resp
	case errors.Is(err, mainthread.ErrStopped):
		return encode(http.StatusServiceUnavailable, errorBody(err.Error()))
	case errors.Is(err, mainthread.ErrTimeout):
		s.log.Warn("automation context handoff timed out", "method", req.Method, "path", req.Path, "timeout", s.handoff)
		return encode(http.StatusGatewayTimeout, errorBody(err.Error()))
	case errors.As(err, &panicErr):
		return encode(http.StatusInternalServerError, errorBody("internal error"))
	default:
		return encode(http.StatusServiceUnavailable, errorBody(err.Error()))
	}
}

// result renders an operation outcome. Operation errors are reported with
// status 200.
func result(v interface{}, err error) (int, interface{}) {
	if err != nil {
		return http.StatusOK, errorBody(err.Error())
	}
	return http.StatusOK, v
}

func (s *Server) handleHealth(_ context.Context, _ bridge.Params) (int, interface{}) {
	return http.StatusOK, map[string]string{"status": "ok"}
}

func (s *Server) handleAttach(_ context.Context, p bridge.Params) (int, interface{}) {
	bundleID, ok := p.String("bundleIdentifier")
	if !ok {
		return http.StatusBadRequest, errorBody(bridge.ErrMissingBundleID.Error())
	}
	if err := s.engine.Attach(bundleID); err != nil {
		return http.StatusBadRequest, errorBody(err.Error())
	}
	return http.StatusOK, map[string]bool{"success": true}
}

func (s *Server) handleTree(_ context.Context, _ bridge.Params) (int, interface{}) {
	return http.StatusOK, s.engine.Tree()
}

func (s *Server) handleFind(_ context.Context, p bridge.Params) (int, interface{}) {
	return http.StatusOK, s.engine.Find(bridge.QueryFrom(p))
}

func (s *Server) handleTap(_ context.Context, p bridge.Params) (int, interface{}) {
	return result(s.engine.Tap(bridge.QueryFrom(p)))
}

func (s *Server) handleLongPress(_ context.Context, p bridge.Params) (int, interface{}) {
	return result(s.engine.LongPress(bridge.QueryFrom(p), p.FloatOr("duration", bridge.DefaultLongPress)))
}

func (s *Server) handleSwipe(_ context.Context, p bridge.Params) (int, interface{}) {
	direction, _ := p.String("direction")
	return result(s.engine.Swipe(bridge.QueryFrom(p), direction))
}

func (s *Server) handleScroll(_ context.Context, p bridge.Params) (int, interface{}) {
	direction, _ := p.String("direction")
	return result(s.engine.Scroll(bridge.QueryFrom(p), direction))
}

func (s *Server) handleType(_ context.Context, p bridge.Params) (int, interface{}) {
	text, ok := p.String("text")
	if !ok {
		return result(nil, bridge.ErrMissingText)
	}
	return result(s.engine.Type(bridge.QueryFrom(p), text))
}

func (s *Server) handleClear(_ context.Context, p bridge.Params) (int, interface{}) {
	return result(s.engine.Clear(bridge.QueryFrom(p)))
}

func (s *Server) handleWait(ctx context.Context, p bridge.Params) (int, interface{}) {
	identifier, _ := p.String("identifier")
	timeout := p.FloatOr("timeout", bridge.DefaultWaitTimeout)
	return result(s.engine.Wait(ctx, identifier, timeout, p.BoolOr("exists", true)))
}

func (s *Server) handleExists(_ context.Context, p bridge.Params) (int, interface{}) {
	return http.StatusOK, s.engine.Exists(bridge.QueryFrom(p))
}

func (s *Server) handleInfo(_ context.Context, p bridge.Params) (int, interface{}) {
	return result(s.engine.Info(bridge.QueryFrom(p)))
}

func (s *Server) handleDrag(_ context.Context, p bridge.Params) (int, interface{}) {
	if _, ok := s.engine.Session().App(); !ok {
		return result(nil, bridge.ErrNoApp)
	}
	fromX, ok1 := p.Float("fromX")
	fromY, ok2 := p.Float("fromY")
	toX, ok3 := p.Float("toX")
	toY, ok4 := p.Float("toY")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return result(nil, bridge.ErrMissingCoordinates)
	}
	return result(s.engine.Drag(fromX, fromY, toX, toY))
}

func (s *Server) handlePinch(_ context.Context, p bridge.Params) (int, interface{}) {
	scale := p.FloatOr("scale", bridge.DefaultPinchScale)
	velocity := p.FloatOr("velocity", bridge.DefaultPinchSpeed)
	return result(s.engine.Pinch(bridge.QueryFrom(p), scale, velocity))
}
