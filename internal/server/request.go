package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrMalformed marks a request that cannot be decoded as text. The connection
// is closed without a response.
var ErrMalformed = errors.New("malformed request")

// Request is a parsed HTTP request. Headers are not retained.
type Request struct {
	Method string
	Path   string
	Body   []byte // nil when the request has no body
}

// ParseRequest splits raw request bytes into method, path and body.
//
// The head and body are separated at the first blank line. A request line
// with fewer than two space-separated parts yields the zero Request, which
// matches no route.
func ParseRequest(raw []byte) (Request, error) {
	if !utf8.Valid(raw) {
		return Request{}, ErrMalformed
	}

	head, body, _ := bytes.Cut(raw, []byte("\r\n\r\n"))
	if len(body) == 0 {
		body = nil
	}

	line, _, _ := strings.Cut(string(head), "\r\n")
	parts := strings.Split(line, " ")
	if len(parts) < 2 {
		return Request{}, nil
	}
	return Request{Method: parts[0], Path: parts[1], Body: body}, nil
}

// Response is a status code and a JSON body.
type Response struct {
	Status int
	Body   []byte
}

// Bytes renders r as a complete HTTP/1.1 response. Every response closes the
// connection.
func (r Response) Bytes() []byte {
	text := http.StatusText(r.Status)
	if text == "" {
		text = "Unknown"
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", r.Status, text)
	b.WriteString("Content-Type: application/json\r\n")
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(r.Body))
	b.WriteString("Connection: close\r\n\r\n")
	b.Write(r.Body)
	return b.Bytes()
}
