// Package server binds the TCP listener and wires the request pipeline:
// router → header-injecting gateway, with the static responder as the
// catch-all route.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gastownhall/coi-serve/internal/headers"
	"github.com/gastownhall/coi-serve/internal/livereload"
	"github.com/gastownhall/coi-serve/internal/static"
)

// shutdownTimeout bounds graceful shutdown on Stop.
const shutdownTimeout = 5 * time.Second

// Config carries the serve settings resolved from the command line.
type Config struct {
	Port       int
	Dir        string
	Banner     string
	LiveReload bool
}

// Server owns the listener and the request pipeline. One instance serves all
// connections.
type Server struct {
	cfg     Config
	httpSrv *http.Server
	ln      net.Listener
	hub     *livereload.Hub
	watcher *livereload.Watcher
}

// New assembles the pipeline. Every route, the live-reload endpoint and the
// static catch-all alike, sits behind the headers gateway so no response
// bypasses header injection. The header set is built once here and shared by
// all requests.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg}

	r := mux.NewRouter()
	if cfg.LiveReload {
		s.hub = livereload.NewHub([]string{"localhost:*", "127.0.0.1:*"})
		r.Handle("/livereload", s.hub)
	}
	r.PathPrefix("/").Handler(static.NewResponder(cfg.Dir))

	s.httpSrv = &http.Server{
		Handler: headers.Gateway(headers.Default(), r),
	}
	return s
}

// Start binds the listener and begins serving. A bind failure is returned
// here, before any connection is accepted; serving proceeds on a goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("bind port %d: %w", s.cfg.Port, err)
	}
	s.ln = ln

	if s.hub != nil {
		w, err := livereload.NewWatcher(s.cfg.Dir, s.hub)
		if err != nil {
			ln.Close()
			return fmt.Errorf("watch %s: %w", s.cfg.Dir, err)
		}
		s.watcher = w
	}

	if s.cfg.Banner != "" {
		log.Print(s.cfg.Banner)
	}
	log.Printf("serving %s on http://localhost:%d", s.cfg.Dir, portOf(ln))

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()
	return nil
}

// Stop refuses new connections and shuts down gracefully. In-flight requests
// are single bounded file reads, so the shutdown timeout is generous.
func (s *Server) Stop() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.hub != nil {
		s.hub.CloseAll()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.httpSrv.Shutdown(ctx)
}

// Addr returns the bound listen address. Empty before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func portOf(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
