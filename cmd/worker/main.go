package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"planreview-backend/internal/bootstrap"
	"planreview-backend/internal/shared/config"
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

	if app.DB == nil {
		log.Fatal("worker requires DATABASE_URL: in-memory mode has no shared job table")
	}

	log.Printf("worker started count=%d poll=%s", app.Pool.Count, app.Pool.Poll)
	app.Pool.Run(ctx)
	log.Printf("worker stopped")
}
