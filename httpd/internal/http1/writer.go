package http1

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// WriteResponse serializes one complete response: status line,
// headers, blank line, body. The writer owns Content-Length (always
// present, always the exact body size) and Connection (always
// "close": one request per connection). Header names are emitted
// canonicalized and in sorted order, so equal responses serialize to
// equal bytes.
func WriteResponse(bw *bufio.Writer, status int, reason string, hdr map[string]string, body []byte) error {
	if reason == "" {
		reason = defaultReason(status)
	}
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, reason); err != nil {
		return err
	}

	type headerLine struct{ key, val string }
	lines := make([]headerLine, 0, len(hdr)+2)
	for k, v := range hdr {
		if reservedHeader(k) {
			continue
		}
		lines = append(lines, headerLine{canonicalKey(k), sanitizeValue(v)})
	}
	lines = append(lines,
		headerLine{"Content-Length", strconv.Itoa(len(body))},
		headerLine{"Connection", "close"},
	)
	sort.Slice(lines, func(i, j int) bool { return lines[i].key < lines[j].key })
	for _, l := range lines {
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", l.key, l.val); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprint(bw, "\r\n"); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := bw.Write(body); err != nil {
			return err
		}
	}
	return nil
}

// reservedHeader reports whether the writer itself emits the header,
// so a handler-supplied copy must be dropped instead of duplicated.
func reservedHeader(k string) bool {
	return strcomp.EqualFold(k, "content-length") || strcomp.EqualFold(k, "connection")
}

// canonicalKey renders a header name in Canonical-Dash form.
func canonicalKey(s string) string {
	b := []byte(strings.ToLower(s))
	upper := true
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			if upper {
				b[i] = c - 'a' + 'A'
			}
			upper = false
			continue
		}
		upper = c == '-'
	}
	return uf.B2S(b)
}

// sanitizeValue strips CR, LF and control bytes (except HTAB) so an
// echoed value cannot inject extra header lines.
func sanitizeValue(v string) string {
	clean := true
	for i := 0; i < len(v); i++ {
		if dirtyByte(v[i]) {
			clean = false
			break
		}
	}
	if clean {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if !dirtyByte(v[i]) {
			b.WriteByte(v[i])
		}
	}
	return b.String()
}

func dirtyByte(c byte) bool {
	if c == '\r' || c == '\n' || c == 0x7f {
		return true
	}
	return c < 0x20 && c != '\t'
}

func defaultReason(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 400:
		return "Bad Request"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	default:
		return ""
	}
}
