package httpd

// Handler turns a parsed request into a response. Implementations
// must be safe for concurrent use: one is invoked from every
// connection goroutine.
type Handler interface {
	Serve(r *Request) *Response
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(*Request) *Response

func (f HandlerFunc) Serve(r *Request) *Response {
	return f(r)
}
