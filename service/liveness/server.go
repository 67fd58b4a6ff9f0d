// Package liveness serves the plain-text health endpoint used by the hosting
// platform to keep the bot process alive.
package liveness

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// DefaultAddr is the default listen address
	DefaultAddr = ":3000"
	// Body is the liveness response body
	Body = "Bot is running"
)

// Handler returns a router answering every method and path with Body
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(Body))
	})
	return r
}

// Server represents the liveness HTTP server
type Server struct {
	server *http.Server
}

// Run serves until ctx is done, then shuts the server down
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	log.Printf("liveness: listening on %v", listener.Addr())
	done := make(chan error, 1)
	go func() { done <- s.server.Serve(listener) }()
	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-done
		return nil
	}
}

// New creates a liveness server
func New(addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{server: &http.Server{Addr: addr, Handler: Handler(), ReadHeaderTimeout: 5 * time.Second}}
}
