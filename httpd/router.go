package httpd

// Mux routes a request by its first path segment. Routes are
// registered once at startup and the table is never mutated
// afterwards, which makes concurrent lookups safe without locking.
type Mux struct {
	routes map[string]Handler
}

func NewMux() *Mux {
	return &Mux{routes: make(map[string]Handler)}
}

// Handle registers h for the given first path segment, e.g.
// Handle("echo", …) serves /echo and everything below it.
// Not safe to call once the server is accepting connections.
func (m *Mux) Handle(segment string, h Handler) {
	m.routes[segment] = h
}

// HandleFunc registers a plain function for the given segment.
func (m *Mux) HandleFunc(segment string, f HandlerFunc) {
	m.Handle(segment, f)
}

// Serve dispatches the request. The bare root target answers 200
// with an empty body before any table lookup; everything without a
// registered route answers 404.
func (m *Mux) Serve(r *Request) *Response {
	if r.Target == "" || r.Target == "/" {
		return NewResponse(200)
	}
	seg := r.Segment(0)
	if seg == "" {
		return NotFound()
	}
	h, ok := m.routes[seg]
	if !ok {
		return NotFound()
	}
	return h.Serve(r)
}
