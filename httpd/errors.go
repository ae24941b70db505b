package httpd

import "dqx0.com/go/httpfs/httpd/internal/http1"

// Parse failures surfaced by the wire reader. The server never
// answers them; the connection is simply closed.
var (
	ErrNoRequest      = http1.ErrNoRequest
	ErrBadRequestLine = http1.ErrBadRequestLine
	ErrHeaderTooLarge = http1.ErrHeaderTooLarge
)
