package httpd

import (
	"context"
	"strings"
)

// Request is a fully parsed HTTP request. The server constructs it
// only after the request line, every header and the complete body
// (as declared by Content-Length) have been read, so handlers never
// observe a partial request. Fields are read-only after construction.
type Request struct {
	Method string
	Target string
	Proto  string
	Header Header
	Body   []byte

	segments []string
	ctx      context.Context
}

// NewRequest builds a request value for the given method and target.
// The body may be nil. Intended for registering-time tests and for
// driving handlers directly; the server builds requests from the wire.
func NewRequest(method, target string, header Header, body []byte) *Request {
	if header == nil {
		header = Header{}
	}
	return &Request{
		Method:   method,
		Target:   target,
		Proto:    "HTTP/1.1",
		Header:   header,
		Body:     body,
		segments: splitSegments(target),
	}
}

// Segment returns the i-th non-empty path segment, or "" when the
// path has no such segment.
func (r *Request) Segment(i int) string {
	if i < 0 || i >= len(r.segments) {
		return ""
	}
	return r.segments[i]
}

// Segments returns the non-empty path segments in order.
func (r *Request) Segments() []string {
	return r.segments
}

// Context returns the request's context, never nil.
func (r *Request) Context() context.Context {
	if r == nil || r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context replaced.
func WithContext(r *Request, ctx context.Context) *Request {
	if r == nil {
		return nil
	}
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// splitSegments breaks a request target into its non-empty path
// segments. Segments are kept raw: no percent-decoding.
func splitSegments(target string) []string {
	var segs []string
	for _, s := range strings.Split(target, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
