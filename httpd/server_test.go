package httpd

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dchest/uniuri"
	"github.com/stretchr/testify/require"

	"dqx0.com/go/httpfs/internal/obs"
)

func startServer(t *testing.T, cfg func(*Server)) (*Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := NewMux()
	mux.Handle("echo", Echo{})
	mux.Handle("user-agent", UserAgent{})
	mux.Handle("files", &FileServer{Root: t.TempDir()})

	s := &Server{Handler: mux}
	if cfg != nil {
		cfg(s)
	}
	go func() { _ = s.Serve(ln) }()
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, ln.Addr().String()
}

// roundTrip writes one raw request and returns everything the server
// sent before closing the connection.
func roundTrip(t *testing.T, addr, raw string) []byte {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte(raw))
	require.NoError(t, err)
	out, err := io.ReadAll(c)
	require.NoError(t, err)
	return out
}

// parseResponse splits a serialized response into its status line,
// headers and body.
func parseResponse(t *testing.T, raw []byte) (string, Header, []byte) {
	t.Helper()
	i := bytes.Index(raw, []byte("\r\n\r\n"))
	require.GreaterOrEqual(t, i, 0, "no header terminator in %q", raw)
	head, body := string(raw[:i]), raw[i+4:]
	lines := strings.Split(head, "\r\n")
	hdr := Header{}
	for _, line := range lines[1:] {
		k, v, ok := strings.Cut(line, ":")
		require.True(t, ok, "bad header line %q", line)
		hdr.Set(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return lines[0], hdr, body
}

func TestServer_RootOK(t *testing.T) {
	_, addr := startServer(t, nil)
	status, hdr, body := parseResponse(t, roundTrip(t, addr, "GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
	require.Equal(t, "0", hdr.Get("Content-Length"))
	require.Empty(t, body)
}

func TestServer_Echo(t *testing.T) {
	_, addr := startServer(t, nil)
	payload := uniuri.NewLen(24)
	status, hdr, body := parseResponse(t, roundTrip(t, addr,
		"GET /echo/"+payload+" HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
	require.Equal(t, "text/plain", hdr.Get("Content-Type"))
	require.Equal(t, fmt.Sprint(len(payload)), hdr.Get("Content-Length"))
	require.Equal(t, payload, string(body))
}

func TestServer_Echo_Idempotent(t *testing.T) {
	_, addr := startServer(t, nil)
	raw := "GET /echo/abc HTTP/1.1\r\nHost: x\r\n\r\n"
	first := roundTrip(t, addr, raw)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, roundTrip(t, addr, raw))
	}
}

func TestServer_Echo_Gzip(t *testing.T) {
	_, addr := startServer(t, nil)
	payload := uniuri.NewLen(48)
	status, hdr, body := parseResponse(t, roundTrip(t, addr,
		"GET /echo/"+payload+" HTTP/1.1\r\nHost: x\r\nAccept-Encoding: gzip\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
	require.Equal(t, "gzip", hdr.Get("Content-Encoding"))
	// Content-Length is the compressed size, never the original.
	require.Equal(t, fmt.Sprint(len(body)), hdr.Get("Content-Length"))

	zr, err := gzip.NewReader(bytes.NewReader(body))
	require.NoError(t, err)
	dec, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, payload, string(dec))
}

func TestServer_UserAgent(t *testing.T) {
	_, addr := startServer(t, nil)
	status, _, body := parseResponse(t, roundTrip(t, addr,
		"GET /user-agent HTTP/1.1\r\nHost: x\r\nUser-Agent: test-client/1.0\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
	require.Equal(t, "test-client/1.0", string(body))
}

func TestServer_UnknownRoute404(t *testing.T) {
	_, addr := startServer(t, nil)
	status, _, _ := parseResponse(t, roundTrip(t, addr, "GET /unknown/path HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 404 Not Found", status)
}

func TestServer_Files_RoundTripOverWire(t *testing.T) {
	_, addr := startServer(t, nil)
	body := "wire payload " + uniuri.New()

	status, _, _ := parseResponse(t, roundTrip(t, addr, fmt.Sprintf(
		"POST /files/wire.txt HTTP/1.1\r\nHost: x\r\nContent-Length: %d\r\n\r\n%s", len(body), body)))
	require.Equal(t, "HTTP/1.1 201 Created", status)

	status, hdr, got := parseResponse(t, roundTrip(t, addr,
		"GET /files/wire.txt HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
	require.Equal(t, "application/octet-stream", hdr.Get("Content-Type"))
	require.Equal(t, body, string(got))
}

func TestServer_Files_PostWithoutBody(t *testing.T) {
	_, addr := startServer(t, nil)
	status, _, _ := parseResponse(t, roundTrip(t, addr,
		"POST /files/zero.txt HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 201 Created", status)

	status, _, got := parseResponse(t, roundTrip(t, addr,
		"GET /files/zero.txt HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
	require.Empty(t, got)
}

func TestServer_MalformedRequestClosedSilently(t *testing.T) {
	_, addr := startServer(t, nil)
	out := roundTrip(t, addr, "GARBAGE\r\n\r\n")
	require.Empty(t, out)
}

func TestServer_EmptyConnectionIgnored(t *testing.T) {
	_, addr := startServer(t, nil)
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// The server must keep serving after a client that sent nothing.
	status, _, _ := parseResponse(t, roundTrip(t, addr, "GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
}

func TestServer_ConnectionClosesAfterResponse(t *testing.T) {
	_, addr := startServer(t, nil)
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	// io.ReadAll only returns once the server closes its side.
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = io.ReadAll(c)
	require.NoError(t, err)
}

func TestServer_ConcurrentConnections(t *testing.T) {
	_, addr := startServer(t, nil)
	const n = 16
	bodies := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := fmt.Sprintf("conn-%d", i)
			c, err := net.Dial("tcp", addr)
			if err != nil {
				return
			}
			defer c.Close()
			if _, err := c.Write([]byte("GET /echo/" + payload + " HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
				return
			}
			out, err := io.ReadAll(c)
			if err != nil {
				return
			}
			if j := bytes.Index(out, []byte("\r\n\r\n")); j >= 0 {
				bodies[i] = string(out[j+4:])
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.Equal(t, fmt.Sprintf("conn-%d", i), bodies[i])
	}
}

func TestServer_NilHandlerDefaults(t *testing.T) {
	_, addr := startServer(t, func(s *Server) { s.Handler = nil })
	status, _, _ := parseResponse(t, roundTrip(t, addr, "GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 200 OK", status)
	status, _, _ = parseResponse(t, roundTrip(t, addr, "GET /echo/x HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.Equal(t, "HTTP/1.1 404 Not Found", status)
}

func TestServer_MetricsEmitted(t *testing.T) {
	meter := obs.NewMemMeter()
	_, addr := startServer(t, func(s *Server) { s.Meter = meter })
	roundTrip(t, addr, "GET /echo/m HTTP/1.1\r\nHost: x\r\n\r\n")

	got := meter.CounterValue("httpfs_requests_total",
		obs.Label{Key: "method", Value: "GET"},
		obs.Label{Key: "status", Value: "200"})
	require.Equal(t, float64(1), got)
	require.Equal(t, 1, meter.HistogramCount("httpfs_request_duration_seconds"))
}

func TestServer_ShutdownStopsServe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &Server{}
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestServer_RequestIDInContext(t *testing.T) {
	var mu sync.Mutex
	var ids []string
	mux := NewMux()
	mux.HandleFunc("id", func(r *Request) *Response {
		id, _ := RequestIDFrom(r.Context())
		mu.Lock()
		ids = append(ids, id)
		mu.Unlock()
		return Text(id)
	})
	_, addr := startServer(t, func(s *Server) { s.Handler = mux })
	roundTrip(t, addr, "GET /id HTTP/1.1\r\nHost: x\r\n\r\n")
	roundTrip(t, addr, "GET /id HTTP/1.1\r\nHost: x\r\n\r\n")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ids, 2)
	require.NotEmpty(t, ids[0])
	require.NotEmpty(t, ids[1])
	require.NotEqual(t, ids[0], ids[1])
}
