package httpd

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/dchest/uniuri"

	"dqx0.com/go/httpfs/httpd/internal/http1"
	"dqx0.com/go/httpfs/internal/obs"
)

// Server accepts TCP connections and serves exactly one HTTP/1.1
// request per connection. Each accepted connection is handled to
// completion on its own goroutine; the only state shared between
// connections is the immutable Handler and the observability hooks.
type Server struct {
	// Addr is the listen address; ":4221" when empty.
	Addr string
	// Handler dispatches parsed requests. A nil Handler behaves like
	// an empty Mux: 200 on the root target, 404 everywhere else.
	Handler Handler
	// MaxHeaderBytes caps a single request or header line; 8 KiB
	// when zero.
	MaxHeaderBytes int

	Logger obs.Logger
	Meter  obs.Meter

	mu    sync.Mutex
	ln    net.Listener
	conns sync.WaitGroup
}

// ListenAndServe binds Addr and serves until the listener fails.
// A bind failure is returned to the caller; it is fatal by contract.
// net.Listen enables SO_REUSEADDR on Unix, so a quick restart does
// not fail with "address already in use".
func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = ":4221"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on l. Transient accept errors are logged
// and the loop continues; a closed listener ends the loop with nil.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.ln = l
	s.mu.Unlock()
	defer l.Close()
	for {
		c, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logf(obs.Warn, "accept failed: %v", err)
			s.count("httpfs_accept_errors_total", 1)
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.serveConn(c)
		}()
	}
}

// Shutdown closes the listener and waits for in-flight connections
// to finish, or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	s.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) serveConn(c net.Conn) {
	defer c.Close()
	start := time.Now()
	id := uniuri.NewLen(16)

	rr := &http1.Reader{BR: bufio.NewReader(c), MaxHeaderBytes: s.headerLimit()}
	pr, err := rr.ReadRequest()
	if err != nil {
		// Malformed or absent request: close without responding, so
		// the client sees the connection drop rather than a guessed
		// status for a request we could not read.
		if !errors.Is(err, http1.ErrNoRequest) {
			s.logf(obs.Debug, "conn %s: unparsable request: %v", id, err)
		}
		return
	}

	r := NewRequest(pr.Method, pr.Target, Header(pr.Header), pr.Body)
	r.Proto = pr.Proto
	r = WithContext(r, WithRequestID(context.Background(), id))

	h := s.Handler
	if h == nil {
		h = NewMux()
	}
	resp := h.Serve(r)
	if resp == nil {
		resp = NotFound()
	}

	bw := bufio.NewWriter(c)
	if err := http1.WriteResponse(bw, resp.StatusCode, "", resp.Header, resp.Body); err != nil {
		s.logf(obs.Warn, "conn %s: write response: %v", id, err)
		return
	}
	if err := bw.Flush(); err != nil {
		s.logf(obs.Warn, "conn %s: flush response: %v", id, err)
		return
	}

	s.logf(obs.Info, "conn %s: %s %s -> %d (%d bytes)", id, r.Method, r.Target, resp.StatusCode, len(resp.Body))
	s.count("httpfs_requests_total", 1,
		obs.Label{Key: "method", Value: r.Method},
		obs.Label{Key: "status", Value: strconv.Itoa(resp.StatusCode)})
	s.histogram("httpfs_request_duration_seconds", time.Since(start).Seconds())
}

func (s *Server) headerLimit() int {
	if s.MaxHeaderBytes <= 0 {
		return 8 << 10
	}
	return s.MaxHeaderBytes
}

func (s *Server) logf(level obs.Level, format string, args ...interface{}) {
	lg := s.Logger
	if lg == nil {
		lg = obs.NopLogger{}
	}
	lg.Logf(level, format, args...)
}

func (s *Server) count(name string, v float64, labels ...obs.Label) {
	m := s.Meter
	if m == nil {
		return
	}
	m.Counter(name, v, labels...)
}

func (s *Server) histogram(name string, v float64, labels ...obs.Label) {
	m := s.Meter
	if m == nil {
		return
	}
	m.Histogram(name, v, labels...)
}
