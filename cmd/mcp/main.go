// Command mcp serves the retrieval engine over the Model Context Protocol on
// stdio, restoring indices from the snapshots written by the indexer.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/rnechat/rne-assistant/internal/adapters/mcp"
	"github.com/rnechat/rne-assistant/internal/bootstrap"
	"github.com/rnechat/rne-assistant/internal/config"
	"github.com/rnechat/rne-assistant/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("rne-mcp", cfg.LogLevel)

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

	server := mcpadapter.NewServer(app.Retriever, app.Corpus, version, logger)
	if err := server.ServeStdio(); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
