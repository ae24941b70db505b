// Command httpfs runs the file-serving HTTP server.
//
// Usage:
//
//	httpfs -addr :4221 -directory /tmp/data
//	httpfs -config /etc/httpfs.json
package main

import (
	"flag"
	"log"

	"dqx0.com/go/httpfs/httpd"
	"dqx0.com/go/httpfs/internal/config"
	"dqx0.com/go/httpfs/internal/obs"
)

func main() {
	var (
		addr      = flag.String("addr", "", "listen address (host:port)")
		directory = flag.String("directory", "", "root directory for the /files routes")
		cfgPath   = flag.String("config", "", "optional JSON config file")
		verbose   = flag.Bool("v", false, "log at debug level")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.LoadFile(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *directory != "" {
		cfg.Directory = *directory
	}

	min := obs.Info
	if *verbose {
		min = obs.Debug
	}
	logger := obs.NewStdLogger("httpfs ", min)

	mux := httpd.NewMux()
	mux.Handle("echo", httpd.Echo{})
	mux.Handle("user-agent", httpd.UserAgent{})
	mux.Handle("files", &httpd.FileServer{Root: cfg.Directory, Log: logger})

	s := &httpd.Server{Addr: cfg.Addr, Handler: mux, Logger: logger}
	logger.Logf(obs.Info, "listening on %s, serving %s", cfg.Addr, cfg.Directory)
	if err := s.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
