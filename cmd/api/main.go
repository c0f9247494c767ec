package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"planreview-backend/internal/bootstrap"
	"planreview-backend/internal/shared/config"
	"planreview-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	// The API server runs the worker pool in-process so a single
	// binary serves a full deployment. A dedicated worker deployment
	// sets WORKER_COUNT=0 here and scales cmd/worker instead.
	if cfg.WorkerCount > 0 {
		go app.Pool.Run(ctx)
	}

	r := server.NewRouter(app)
	addr := server.Addr(cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("Starting API server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
