// Command worker drains the cleanup queue, retrying blob deletions whose
// metadata side already succeeded.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/blobstore"
	"github.com/dmitrijs2005/assetvault/internal/server/cleanup"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	if cfg.RedisAddr == "" {
		log.Fatalf("redis address is not configured")
	}
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	store, err := blobstore.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{cleanup.Queue: 1},
	})
	mux := cleanup.NewHandler(store, logger).Mux()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	logger.Info(ctx, "cleanup worker started", "redis", cfg.RedisAddr, "concurrency", cfg.WorkerConcurrency)
	if err := server.Run(mux); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
