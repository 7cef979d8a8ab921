// Package server provides the HTTP view of the execution environment.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/mbrock/hostenv/internal/environment"
	"github.com/mbrock/hostenv/internal/view"
)

// Server serves the environment label as HTML and JSON.
type Server struct {
	detector *environment.Detector
	title    string
	mux      *http.ServeMux
	server   *http.Server
}

// New creates a server reading from detector.
func New(detector *environment.Detector, title string) *Server {
	s := &Server{
		detector: detector,
		title:    title,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	s.server = &http.Server{Handler: s.mux}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /environment", s.handleEnvironment)
	s.mux.HandleFunc("GET /sources", s.handleSources)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve starts the server on the given listener and tells systemd it is
// ready when running as a notify service.
func (s *Server) Serve(ln net.Listener) error {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		slog.Debug("sd_notify failed", "error", err)
	}
	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		slog.Debug("sd_notify failed", "error", err)
	}
	return s.server.Shutdown(ctx)
}

// GetListener returns a listener based on environment.
// Supports systemd socket activation, then a unix socket, then TCP.
func GetListener(socketPath, defaultAddr string) (net.Listener, error) {
	listeners, err := activation.Listeners()
	if err != nil {
		return nil, fmt.Errorf("socket activation: %w", err)
	}
	for _, ln := range listeners {
		if ln != nil {
			slog.Info("using socket activation", "addr", ln.Addr())
			return ln, nil
		}
	}

	if socketPath != "" {
		if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
			return nil, fmt.Errorf("creating socket dir: %w", err)
		}
		os.Remove(socketPath) // clean up stale socket
		return net.Listen("unix", socketPath)
	}
	return net.Listen("tcp", defaultAddr)
}

// Handlers

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Page(s.title, s.detector.Detect()).Render(r.Context(), w); err != nil {
		slog.Warn("rendering page", "error", err)
	}
}

// EnvironmentResponse is the body of GET /environment.
type EnvironmentResponse struct {
	Environment environment.Environment `json:"environment"`
	Label       string                  `json:"label"`
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	env := s.detector.Detect()
	writeJSON(w, EnvironmentResponse{Environment: env, Label: view.Label(env)})
}

// handleSources re-probes every source; it never touches the cached value.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, environment.Explain(s.detector.Sources()...))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}
