package httpd

// Echo reflects the second path segment back to the client:
// GET /echo/abc answers 200 text/plain with body "abc". The segment
// is returned raw, without percent-decoding. This is the only
// handler whose output is gzip-compressed when the client asks
// for it.
type Echo struct{}

func (Echo) Serve(r *Request) *Response {
	seg := r.Segment(1)
	if seg == "" {
		return NotFound()
	}
	resp := Text(seg)
	if acceptsGzip(r.Header) {
		resp = gzipped(resp)
	}
	return resp
}
