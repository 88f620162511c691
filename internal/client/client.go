// Package client talks to a running bridge over its local HTTP port.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/model"
)

// StatusError is a non-200 bridge response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bridge returned %d: %s", e.Status, e.Message)
}

// OperationError is a 200 response carrying {"error": ...}: the request was
// valid but the app state prevented the operation.
type OperationError struct {
	Message string
}

func (e *OperationError) Error() string { return e.Message }

// Target selects an element. X and Y, when both set, select a point instead.
type Target struct {
	Identifier  string   `json:"identifier,omitempty"`
	Label       string   `json:"label,omitempty"`
	ElementType string   `json:"elementType,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
}

// Client is an HTTP client for the bridge.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the bridge listening on localhost:port.
func New(port int) *Client {
	return NewWithBaseURL(fmt.Sprintf("http://127.0.0.1:%d", port))
}

// NewWithBaseURL returns a client for the bridge at baseURL.
func NewWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				// The bridge closes every connection after one response.
				DisableKeepAlives: true,
			},
		},
	}
}

// BaseURL returns the bridge URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Health checks that the bridge is serving.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", out.Status)
	}
	return nil
}

// Attach attaches the bridge to a running application.
func (c *Client) Attach(ctx context.Context, bundleID string) error {
	return c.do(ctx, http.MethodPost, "/attach", map[string]string{"bundleIdentifier": bundleID}, nil)
}

// Tree returns the serialized hierarchy of the attached app.
func (c *Client) Tree(ctx context.Context) ([]model.Node, error) {
	var out []model.Node
	err := c.do(ctx, http.MethodGet, "/ui/tree", nil, &out)
	return out, err
}

// Find returns elements matching every field set in t.
func (c *Client) Find(ctx context.Context, t Target) ([]model.Node, error) {
	var out []model.Node
	err := c.do(ctx, http.MethodPost, "/ui/find", t, &out)
	return out, err
}

func (c *Client) Tap(ctx context.Context, t Target) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/tap", t)
}

func (c *Client) LongPress(ctx context.Context, t Target, duration float64) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/longPress", struct {
		Target
		Duration float64 `json:"duration"`
	}{t, duration})
}

func (c *Client) Swipe(ctx context.Context, t Target, direction string) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/swipe", withDirection(t, direction))
}

func (c *Client) Scroll(ctx context.Context, t Target, direction string) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/scroll", withDirection(t, direction))
}

func (c *Client) Type(ctx context.Context, t Target, text string) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/type", struct {
		Target
		Text string `json:"text"`
	}{t, text})
}

func (c *Client) Clear(ctx context.Context, t Target) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/clear", t)
}

// Wait blocks until identifier exists (or is gone when exists is false), for
// at most timeout seconds on the bridge side.
func (c *Client) Wait(ctx context.Context, identifier string, timeout float64, exists bool) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/wait", map[string]interface{}{
		"identifier": identifier,
		"timeout":    timeout,
		"exists":     exists,
	})
}

func (c *Client) Exists(ctx context.Context, t Target) (bool, error) {
	var out bridge.ExistsResult
	err := c.do(ctx, http.MethodPost, "/ui/exists", t, &out)
	return out.Exists, err
}

func (c *Client) Info(ctx context.Context, t Target) (bridge.Info, error) {
	var out bridge.Info
	err := c.do(ctx, http.MethodPost, "/ui/info", t, &out)
	return out, err
}

func (c *Client) Drag(ctx context.Context, fromX, fromY, toX, toY float64) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/drag", map[string]float64{
		"fromX": fromX, "fromY": fromY, "toX": toX, "toY": toY,
	})
}

func (c *Client) Pinch(ctx context.Context, t Target, scale, velocity float64) (bridge.Result, error) {
	return c.gesture(ctx, "/ui/pinch", struct {
		Target
		Scale    float64 `json:"scale"`
		Velocity float64 `json:"velocity"`
	}{t, scale, velocity})
}

func withDirection(t Target, direction string) interface{} {
	return struct {
		Target
		Direction string `json:"direction"`
	}{t, direction}
}

func (c *Client) gesture(ctx context.Context, path string, body interface{}) (bridge.Result, error) {
	var out bridge.Result
	err := c.do(ctx, http.MethodPost, path, body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	return parseResponse(resp, out)
}

func parseResponse(resp *http.Response, out interface{}) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var errBody struct {
		Error *string `json:"error"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &errBody); err != nil {
			return fmt.Errorf("failed to parse response: %w (body: %s)", err, string(data))
		}
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(trimmed)
		if errBody.Error != nil {
			msg = *errBody.Error
		}
		return &StatusError{Status: resp.StatusCode, Message: msg}
	}
	if errBody.Error != nil {
		return &OperationError{Message: *errBody.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to parse response: %w (body: %s)", err, string(data))
	}
	return nil
}
