package httpd

// UserAgent reflects the User-Agent request header. An absent header
// is not an error; the response body is simply empty.
type UserAgent struct{}

func (UserAgent) Serve(r *Request) *Response {
	return Text(r.Header.Get("User-Agent"))
}
