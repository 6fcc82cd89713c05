package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	defaultReadTimeout     = 60 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// Server wraps http.Server with signal-driven graceful shutdown.
type Server struct {
	*http.Server

	// OnShutdown hooks run after the listener stops accepting, before exit.
	OnShutdown []func()
}

// NewServer creates a Server with sane timeouts and the given handler.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
	}
}

// ListenAndServe serves until SIGTERM or SIGINT, then drains in-flight requests.
func (srv *Server) ListenAndServe() error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		Sugar.Infof("received %s, graceful shutting down HTTP server", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Sugar.Errorf("HTTP server shutdown error: %v", err)
		return err
	}

	for _, hook := range srv.OnShutdown {
		hook()
	}

	Sugar.Info("HTTP server shutdown success")
	return nil
}

// GraceServer starts an HTTP server with graceful shutdown and the given stop hooks.
func GraceServer(addr string, handler http.Handler, onShutdown ...func()) error {
	srv := NewServer(addr, handler)
	srv.OnShutdown = onShutdown
	return srv.ListenAndServe()
}
