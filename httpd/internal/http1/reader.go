// Package http1 implements the wire-level HTTP/1.1 format: parsing
// one request from a byte stream and serializing one response onto it.
package http1

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/uf"
)

var (
	// ErrNoRequest means the connection carried no request at all:
	// the peer closed the stream or sent an empty first line.
	ErrNoRequest = errors.New("http1: no request on connection")
	// ErrBadRequestLine means the request line did not split into
	// method, target and version.
	ErrBadRequestLine = errors.New("http1: malformed request line")
	// ErrHeaderTooLarge means a single line exceeded the configured cap.
	ErrHeaderTooLarge = errors.New("http1: header line too large")
)

// ParsedRequest is the wire-level representation handed to the server.
// Header keys are lowercased; duplicate headers keep the last value.
// Body holds exactly the declared Content-Length bytes, or fewer if
// the stream ended early.
type ParsedRequest struct {
	Method string
	Target string
	Proto  string
	Header map[string]string
	Body   []byte
}

type Reader struct {
	BR             *bufio.Reader
	MaxHeaderBytes int
}

// ReadRequest parses one complete request: request line, headers up
// to the blank line, then the body when Content-Length declares one.
func (r *Reader) ReadRequest() (*ParsedRequest, error) {
	line, err := r.readLine()
	if err != nil {
		if errors.Is(err, ErrHeaderTooLarge) {
			return nil, err
		}
		return nil, ErrNoRequest
	}
	if line == "" {
		return nil, ErrNoRequest
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrBadRequestLine
	}
	hdr, err := r.readHeaders()
	if err != nil {
		return nil, err
	}
	body, err := r.readBody(hdr)
	if err != nil {
		return nil, err
	}
	return &ParsedRequest{
		Method: parts[0],
		Target: parts[1],
		Proto:  parts[2],
		Header: hdr,
		Body:   body,
	}, nil
}

func (r *Reader) readHeaders() (map[string]string, error) {
	h := make(map[string]string)
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			// A line without a colon (or with an empty name) is
			// tolerated rather than failing the whole request.
			continue
		}
		k := strings.ToLower(strings.TrimSpace(line[:i]))
		v := strings.TrimSpace(line[i+1:])
		if k == "" {
			continue
		}
		h[k] = v // last occurrence wins
	}
	return h, nil
}

// readBody reads the declared Content-Length. An absent or
// unparsable declaration means no body; a stream that ends early
// yields the bytes that did arrive instead of blocking forever.
func (r *Reader) readBody(h map[string]string) ([]byte, error) {
	v, ok := h["content-length"]
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return nil, nil
	}
	body := make([]byte, n)
	read, err := io.ReadFull(r.BR, body)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return body[:read], nil
		}
		return nil, err
	}
	return body, nil
}

// readLine consumes bytes up to LF, dropping CRs.
func (r *Reader) readLine() (string, error) {
	var buf []byte
	for {
		b, err := r.BR.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			break
		}
		if b != '\r' {
			buf = append(buf, b)
		}
		if r.MaxHeaderBytes > 0 && len(buf) > r.MaxHeaderBytes {
			return "", ErrHeaderTooLarge
		}
	}
	return uf.B2S(buf), nil
}
