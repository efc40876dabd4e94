// Package server assembles the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/hrygo/todoassist/internal/profile"
	"github.com/hrygo/todoassist/plugin/ai/intent"
	"github.com/hrygo/todoassist/plugin/ai/timeout"
	apiv1 "github.com/hrygo/todoassist/server/router/api/v1"
	"github.com/hrygo/todoassist/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates the server. upstream may be nil.
func NewServer(_ context.Context, profile *profile.Profile, store *store.Store, upstream intent.Interpreter) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = true
	echoServer.HideBanner = true
	echoServer.HidePort = true
	s.echoServer = echoServer

	apiv1.NewAPIV1Service(profile, store, upstream).Register(echoServer)

	// Serve HTTP/1.1 and cleartext HTTP/2 on the same port.
	s.httpServer = &http.Server{
		Handler:           h2c.NewHandler(echoServer, &http2.Server{}),
		ReadHeaderTimeout: timeout.ReadHeaderTimeout,
	}
	return s, nil
}

// Handler exposes the root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves until the server is shut down.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s.listener = listener
	slog.Info("server listening", "address", listener.Addr().String(), "mode", s.Profile.Mode, "version", s.Profile.Version)

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown http server: %w", err))
	}
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	slog.Info("todoassist stopped properly")
	return errors.Join(errs...)
}
