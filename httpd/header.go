package httpd

import "strings"

// Header maps lowercased header names to their values. Lookups are
// case-insensitive; when a request carries the same header twice, the
// last occurrence wins.
type Header map[string]string

func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[strings.ToLower(key)]
}

func (h Header) Has(key string) bool {
	if h == nil {
		return false
	}
	_, ok := h[strings.ToLower(key)]
	return ok
}

func (h Header) Set(key, value string) {
	if h == nil {
		return
	}
	h[strings.ToLower(key)] = value
}

func (h Header) Del(key string) {
	if h == nil {
		return
	}
	delete(h, strings.ToLower(key))
}

// clone copies h so a derived response can adjust headers without
// mutating the original.
func (h Header) clone() Header {
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
