package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbrock/hostenv/internal/dirs"
	"github.com/mbrock/hostenv/internal/platform"
	"github.com/mbrock/hostenv/internal/server"
)

func cmdServe() {
	socketPath := cfg.Socket
	if unixFlag && socketPath == "" {
		socketPath = dirs.SocketPath()
	}

	ln, err := server.GetListener(socketPath, cfg.Listen)
	if err != nil {
		fatal("getting listener: %v", err)
	}

	// Classify before accepting requests so the first one is not slowed down.
	env := platform.Detect()
	srv := server.New(platform.Process(), cfg.Title)

	// Handle SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}()

	slog.Info("hostenv serving", "addr", ln.Addr().String(), "environment", env.String())
	fmt.Fprintf(os.Stderr, "hostenv listening on %s\n", ln.Addr())

	if err := srv.Serve(ln); err != nil {
		fatal("http server: %v", err)
	}
}
