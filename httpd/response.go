package httpd

import "github.com/indigo-web/utils/uf"

// Response is an immutable response value produced by a handler.
// Content-Length and Connection are computed at serialization time
// and cannot be set here; Body is written verbatim.
type Response struct {
	StatusCode int
	Header     Header
	Body       []byte
}

// NewResponse returns an empty-bodied response with the given status.
func NewResponse(status int) *Response {
	return &Response{StatusCode: status, Header: Header{}}
}

// Text returns a 200 response with a text/plain body.
func Text(body string) *Response {
	r := NewResponse(200)
	r.Header.Set("Content-Type", "text/plain")
	r.Body = uf.S2B(body)
	return r
}

// NotFound is the uniform lookup-miss response: unknown routes,
// missing path segments and unreadable files all answer with it, so
// nothing about the server's internals leaks to the client.
func NotFound() *Response {
	return NewResponse(404)
}

// Created acknowledges a successful write with an empty body.
func Created() *Response {
	return NewResponse(201)
}

// InternalError signals a server-side fault without detail.
func InternalError() *Response {
	return NewResponse(500)
}
