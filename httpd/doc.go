// Package httpd implements a deliberately small HTTP/1.1 server:
// one fully parsed request per TCP connection, routing on the first
// path segment, and a single buffered response write before the
// connection is closed.
//
// The server owns the wire format. Handlers are pure request→response
// functions; Content-Length, Connection and header serialization are
// applied centrally so a handler cannot produce a malformed response.
//
// Quick start:
//
//	mux := httpd.NewMux()
//	mux.Handle("echo", httpd.Echo{})
//	mux.Handle("user-agent", httpd.UserAgent{})
//	mux.Handle("files", &httpd.FileServer{Root: "/tmp/data"})
//	s := &httpd.Server{Addr: ":4221", Handler: mux}
//	if err := s.ListenAndServe(); err != nil { log.Fatal(err) }
package httpd
