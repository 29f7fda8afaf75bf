// Command indexer rebuilds the retrieval corpus in one shot: it normalizes
// the raw RNE data, replaces the Postgres corpus, builds both indices, writes
// their snapshots and announces the new version so serving replicas reload.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rnechat/rne-assistant/internal/bootstrap"
	"github.com/rnechat/rne-assistant/internal/config"
	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/infrastructure/embedding/ollama"
	"github.com/rnechat/rne-assistant/internal/infrastructure/index/lexical"
	"github.com/rnechat/rne-assistant/internal/infrastructure/index/semantic"
	"github.com/rnechat/rne-assistant/internal/infrastructure/ingest"
	"github.com/rnechat/rne-assistant/internal/infrastructure/language"
	"github.com/rnechat/rne-assistant/internal/infrastructure/queue/nats"
	"github.com/rnechat/rne-assistant/internal/infrastructure/repository/postgres"
	"github.com/rnechat/rne-assistant/internal/infrastructure/snapshot/localfs"
	"github.com/rnechat/rne-assistant/internal/infrastructure/textprep"
	"github.com/rnechat/rne-assistant/internal/observability/logging"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "path to the JSON corpus file (defaults to DATA_PATH)")
		pdfPaths   = flag.String("pdf", "", "comma-separated PDF files to ingest alongside the JSON corpus")
		excelPaths = flag.String("excel", "", "comma-separated Excel files to ingest alongside the JSON corpus")
	)
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewJSONLogger("rne-indexer", cfg.LogLevel)
	if *dataPath == "" {
		*dataPath = cfg.DataPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()
	corpus := postgres.NewCorpusRepository(db)
	if err := corpus.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	snapshots, err := localfs.New(cfg.SnapshotDir)
	if err != nil {
		log.Fatalf("init snapshot store: %v", err)
	}

	bus, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		log.Fatalf("init event bus: %v", err)
	}
	defer bus.Close()

	detector := language.NewDetector(domain.Language(cfg.DefaultLanguage))

	records, err := ingest.LoadJSONFile(*dataPath)
	if err != nil {
		log.Fatalf("load corpus data: %v", err)
	}
	for _, path := range splitPaths(*pdfPaths) {
		pdfRecords, err := ingest.PDFRecords(path, detector)
		if err != nil {
			log.Fatalf("ingest pdf %s: %v", path, err)
		}
		records = append(records, pdfRecords...)
	}
	for _, path := range splitPaths(*excelPaths) {
		excelRecords, err := ingest.ExcelRecords(path)
		if err != nil {
			log.Fatalf("ingest excel %s: %v", path, err)
		}
		records = append(records, excelRecords...)
	}

	docs, stats := ingest.NewNormalizer(logger).Normalize(records)
	logger.Info("corpus normalized",
		"records", stats.Records,
		"documents", stats.Documents,
		"skipped", stats.Skipped,
		"dropped_empty", stats.DroppedEmpty)

	if err := corpus.ReplaceAll(ctx, docs); err != nil {
		log.Fatalf("store corpus: %v", err)
	}
	counts, err := corpus.CountByLanguage(ctx)
	if err != nil {
		log.Fatalf("count corpus: %v", err)
	}
	logger.Info("corpus stored",
		"french", counts[domain.LanguageFrench],
		"arabic", counts[domain.LanguageArabic])

	semanticIndex := semantic.New(ollama.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel), cfg.EmbeddingDim)
	lexicalIndex := lexical.New(textprep.NewPreparer(), detector)
	if err := bootstrap.BuildIndexes(ctx, docs, semanticIndex, lexicalIndex); err != nil {
		log.Fatalf("build indexes: %v", err)
	}

	// Smoke query against the fresh build before publishing it.
	smoke := lexicalIndex.Search("création entreprise", 3, domain.LanguageFrench)
	if len(docs) > 0 && len(smoke) == 0 {
		logger.Warn("smoke query returned no results", "query", "création entreprise")
	} else {
		logger.Info("smoke query ok", "results", len(smoke))
	}

	semanticData, err := semanticIndex.Snapshot()
	if err != nil {
		log.Fatalf("snapshot semantic index: %v", err)
	}
	if err := snapshots.Save(bootstrap.SemanticSnapshotName, semanticData); err != nil {
		log.Fatalf("save semantic snapshot: %v", err)
	}
	lexicalData, err := lexicalIndex.Snapshot()
	if err != nil {
		log.Fatalf("snapshot lexical index: %v", err)
	}
	if err := snapshots.Save(bootstrap.LexicalSnapshotName, lexicalData); err != nil {
		log.Fatalf("save lexical snapshot: %v", err)
	}

	version := time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
	if err := bus.PublishIndexRebuilt(ctx, version); err != nil {
		log.Fatalf("announce rebuild: %v", err)
	}
	logger.Info("index rebuild published", "version", version, "semantic_size", semanticIndex.Size())
}

func splitPaths(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
