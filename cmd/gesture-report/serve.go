package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/gesture.report/internal/api"
	"github.com/banshee-data/gesture.report/internal/db"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/sqlite"
	"github.com/banshee-data/gesture.report/internal/monitoring"
	"github.com/banshee-data/gesture.report/internal/timeutil"
)

func (a *app) handleServe(args []string) error {
	fs := a.newFlagSet("serve")
	listen := fs.String("listen", ":8080", "HTTP listen address")
	dbPath := fs.String("db", defaultDBPath, "Path to the SQLite weight database")
	project := fs.String("project", "mocap", "Default project for API requests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *listen == "" {
		return fmt.Errorf("listen address is required")
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	mux, err := newServeMux(database, *project)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serveUntilDone(ctx, *listen, mux)
}

// newServeMux mounts the weight API and the database admin routes.
func newServeMux(database *db.DB, project string) (*http.ServeMux, error) {
	store := sqlite.NewWeightTableStore(database.DB, timeutil.RealClock{})
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewServer(store, project).ServeMux())
	if err := database.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// serveUntilDone runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func serveUntilDone(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:    addr,
		Handler: api.LoggingMiddleware(h),
	}

	var wg sync.WaitGroup
	errc := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitoring.Logf("[serve] listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		wg.Wait()
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	monitoring.Logf("[serve] shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("[serve] HTTP server shutdown error: %v", err)
	}
	wg.Wait()
	monitoring.Logf("[serve] graceful shutdown complete")
	return nil
}
