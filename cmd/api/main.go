package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/rnechat/rne-assistant/internal/adapters/http"
	"github.com/rnechat/rne-assistant/internal/bootstrap"
	"github.com/rnechat/rne-assistant/internal/config"
	"github.com/rnechat/rne-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("rne-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if err := app.LoadIndexes(ctx); err != nil {
		log.Fatalf("load indexes: %v", err)
	}

	go func() {
		if err := app.WatchIndexRebuilds(ctx); err != nil && ctx.Err() == nil {
			logger.Error("index rebuild watcher stopped", "error", err)
		}
	}()

	router := httpadapter.NewRouter(
		app.Chat,
		app.Retriever,
		app.Corpus,
		app.Metrics,
		cfg.TopK,
		cfg.RateLimitRPS,
		cfg.RateLimitBurst,
	).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
