package httpd

import (
	"os"
	"path/filepath"
	"strings"

	"dqx0.com/go/httpfs/internal/obs"
)

// FileServer serves and stores files beneath Root. GET reads the
// named file in full and answers application/octet-stream; POST
// writes the request body to the named file, creating missing parent
// directories and overwriting an existing file. Concurrent POSTs to
// the same name race at the filesystem level: last writer wins.
type FileServer struct {
	Root string
	// Log receives write-failure details that must not reach the
	// client. Nil means no logging.
	Log obs.Logger
}

func (fs *FileServer) Serve(r *Request) *Response {
	segs := r.Segments()
	if len(segs) < 2 {
		return NotFound()
	}
	name, ok := fs.resolve(segs[1:])
	if !ok {
		return NotFound()
	}
	if r.Method == "POST" {
		return fs.store(name, r.Body)
	}
	return fs.read(name)
}

func (fs *FileServer) read(name string) *Response {
	data, err := os.ReadFile(name)
	if err != nil {
		// Not found, permission denied, directory: all the same 404.
		return NotFound()
	}
	resp := NewResponse(200)
	resp.Header.Set("Content-Type", "application/octet-stream")
	resp.Body = data
	return resp
}

func (fs *FileServer) store(name string, body []byte) *Response {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		fs.logf(obs.Error, "mkdir for %s: %v", name, err)
		return InternalError()
	}
	if err := os.WriteFile(name, body, 0o644); err != nil {
		fs.logf(obs.Error, "write %s: %v", name, err)
		return InternalError()
	}
	return Created()
}

// resolve joins the path segments after the route into a filename
// under Root. A cleaned path that climbs out of Root is rejected;
// the caller answers 404, the same signal as any other miss.
func (fs *FileServer) resolve(segs []string) (string, bool) {
	rel := filepath.Clean(filepath.Join(segs...))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(fs.Root, rel), true
}

func (fs *FileServer) logf(level obs.Level, format string, args ...interface{}) {
	lg := fs.Log
	if lg == nil {
		return
	}
	lg.Logf(level, format, args...)
}
