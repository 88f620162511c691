package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mj1618/simu-bridge/internal/bridge"
)

// HandlerFunc handles one route. The returned value is encoded as JSON.
type HandlerFunc func(ctx context.Context, p bridge.Params) (int, interface{})

type routeKey struct {
	method string
	path   string
}

// Router dispatches requests on exact (method, path) matches.
type Router struct {
	routes map[routeKey]HandlerFunc
	log    *slog.Logger
}

// NewRouter returns an empty router.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Router{routes: make(map[routeKey]HandlerFunc), log: log}
}

// Handle registers h for method and path, replacing any existing handler.
func (r *Router) Handle(method, path string, h HandlerFunc) {
	r.routes[routeKey{method, path}] = h
}

// Serve runs the matching handler and encodes its result. It never panics.
func (r *Router) Serve(ctx context.Context, req Request) (resp Response) {
	h, ok := r.routes[routeKey{req.Method, req.Path}]
	if !ok {
		return encode(http.StatusNotFound, errorBody("not found"))
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked",
				"method", req.Method, "path", req.Path,
				"panic", rec, "stack", string(debug.Stack()))
			resp = encode(http.StatusInternalServerError, errorBody("internal error"))
		}
	}()

	status, v := h(ctx, decodeParams(req.Body))
	return encode(status, v)
}

// decodeParams decodes a JSON object body. Absent or undecodable bodies, and
// bodies that are not objects, yield empty params.
func decodeParams(body []byte) bridge.Params {
	p := bridge.Params{}
	if len(body) == 0 {
		return p
	}
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return bridge.Params{}
	}
	return p
}

func encode(status int, v interface{}) Response {
	b, err := json.Marshal(v)
	if err != nil {
		return Response{Status: status, Body: []byte(`{"error":"serialization failed"}`)}
	}
	return Response{Status: status, Body: b}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errorResponse {
	return errorResponse{Error: msg}
}
