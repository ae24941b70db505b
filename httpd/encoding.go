package httpd

import (
	"bytes"
	"compress/gzip"
	"strings"
)

// acceptsGzip reports whether the request advertises gzip support.
// Deliberately a substring match, not quality-value parsing: clients
// that want gzip send the token verbatim.
func acceptsGzip(h Header) bool {
	return strings.Contains(h.Get("Accept-Encoding"), "gzip")
}

// gzipped returns a copy of resp with the body compressed and
// Content-Encoding set. Content-Length is computed at serialization
// time, so it always reflects the compressed size. Writing to an
// in-memory buffer cannot fail.
func gzipped(resp *Response) *Response {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(resp.Body)
	_ = zw.Close()

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.clone(),
		Body:       buf.Bytes(),
	}
	out.Header.Set("Content-Encoding", "gzip")
	return out
}
