package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rnechat/rne-assistant/internal/config"
	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
	"github.com/rnechat/rne-assistant/internal/core/usecase"
	"github.com/rnechat/rne-assistant/internal/infrastructure/embedding/ollama"
	"github.com/rnechat/rne-assistant/internal/infrastructure/index/lexical"
	"github.com/rnechat/rne-assistant/internal/infrastructure/index/semantic"
	"github.com/rnechat/rne-assistant/internal/infrastructure/ingest"
	"github.com/rnechat/rne-assistant/internal/infrastructure/language"
	"github.com/rnechat/rne-assistant/internal/infrastructure/llm/groq"
	"github.com/rnechat/rne-assistant/internal/infrastructure/queue/nats"
	"github.com/rnechat/rne-assistant/internal/infrastructure/repository/postgres"
	"github.com/rnechat/rne-assistant/internal/infrastructure/resilience"
	"github.com/rnechat/rne-assistant/internal/infrastructure/snapshot/localfs"
	"github.com/rnechat/rne-assistant/internal/infrastructure/textprep"
	"github.com/rnechat/rne-assistant/internal/observability/metrics"
)

// Snapshot file names shared by the indexer (writer) and the API (reader).
const (
	SemanticSnapshotName = "semantic.json"
	LexicalSnapshotName  = "lexical.json"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Chat      ports.ChatRouter
	Retriever ports.DocumentSearcher
	Corpus    *postgres.CorpusRepository
	Bus       *nats.Bus
	Metrics   *metrics.HTTPServerMetrics

	semanticIndex *semantic.Index
	lexicalIndex  *lexical.Index
	snapshots     *localfs.Store

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	corpus := postgres.NewCorpusRepository(db)
	if err := corpus.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	snapshots, err := localfs.New(cfg.SnapshotDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init snapshot store: %w", err)
	}

	bus, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init event bus: %w", err)
	}

	detector := language.NewDetector(domain.Language(cfg.DefaultLanguage))
	preparer := textprep.NewPreparer()
	embedder := ollama.NewEmbedder(cfg.OllamaURL, cfg.OllamaEmbedModel)

	semanticIndex := semantic.New(embedder, cfg.EmbeddingDim)
	lexicalIndex := lexical.New(preparer, detector)
	retriever := usecase.NewHybridRetriever(semanticIndex, lexicalIndex, detector, cfg.SemanticWeight, cfg.LexicalWeight)

	llmExecutor := resilience.NewExecutor(resilience.Config{
		AttemptTimeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
	})
	groqClient := groq.New(cfg.GroqURL, cfg.GroqAPIKey, cfg.GroqModel, cfg.MaxContextLength)
	generator := groq.NewGenerator(groqClient, llmExecutor)
	segmenter := groq.NewSegmenter(groqClient, llmExecutor)

	clarify, err := usecase.NewClarificationTable(cfg.ClarificationPatternsPath)
	if err != nil {
		bus.Close()
		_ = db.Close()
		return nil, fmt.Errorf("load clarification patterns: %w", err)
	}

	chat := usecase.NewRouter(retriever, segmenter, generator, detector, clarify, cfg.TopK, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Chat:      chat,
		Retriever: retriever,
		Corpus:    corpus,
		Bus:       bus,
		Metrics:   metrics.NewHTTPServerMetrics("rne-api"),

		semanticIndex: semanticIndex,
		lexicalIndex:  lexicalIndex,
		snapshots:     snapshots,

		closeFn: func() {
			bus.Close()
			_ = db.Close()
		},
	}, nil
}

// LoadIndexes brings both retrieval indices online. Snapshots written by the
// indexer are preferred; when none exist yet the corpus is built in-process
// from the configured data file so a fresh deployment can still serve.
func (a *App) LoadIndexes(ctx context.Context) error {
	restored, err := a.restoreFromSnapshots()
	if err != nil {
		return err
	}
	if restored {
		a.Logger.Info("indexes restored from snapshots",
			"semantic_size", a.semanticIndex.Size(),
			"lexical_size", a.lexicalIndex.Size())
		return nil
	}

	a.Logger.Warn("no snapshots found, building indexes from data file", "path", a.Config.DataPath)
	records, err := ingest.LoadJSONFile(a.Config.DataPath)
	if err != nil {
		return fmt.Errorf("load corpus data: %w", err)
	}
	normalizer := ingest.NewNormalizer(a.Logger)
	docs, stats := normalizer.Normalize(records)
	a.Logger.Info("corpus normalized",
		"records", stats.Records,
		"documents", stats.Documents,
		"skipped", stats.Skipped,
		"dropped_empty", stats.DroppedEmpty)

	if err := a.Corpus.ReplaceAll(ctx, docs); err != nil {
		return fmt.Errorf("store corpus: %w", err)
	}
	return BuildIndexes(ctx, docs, a.semanticIndex, a.lexicalIndex)
}

func (a *App) restoreFromSnapshots() (bool, error) {
	semanticData, ok, err := a.snapshots.Load(SemanticSnapshotName)
	if err != nil {
		return false, fmt.Errorf("load semantic snapshot: %w", err)
	}
	if !ok {
		return false, nil
	}
	lexicalData, ok, err := a.snapshots.Load(LexicalSnapshotName)
	if err != nil {
		return false, fmt.Errorf("load lexical snapshot: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := a.semanticIndex.Restore(semanticData); err != nil {
		return false, fmt.Errorf("restore semantic index: %w", err)
	}
	if err := a.lexicalIndex.Restore(lexicalData); err != nil {
		return false, fmt.Errorf("restore lexical index: %w", err)
	}
	return true, nil
}

// WatchIndexRebuilds blocks on the event bus and hot-reloads both indices
// whenever the indexer announces a new snapshot version. Meant to run in its
// own goroutine for the lifetime of the process.
func (a *App) WatchIndexRebuilds(ctx context.Context) error {
	return a.Bus.SubscribeIndexRebuilt(ctx, func(_ context.Context, version string) error {
		restored, err := a.restoreFromSnapshots()
		if err != nil {
			return err
		}
		if !restored {
			return fmt.Errorf("rebuild %s announced but snapshots missing", version)
		}
		a.Logger.Info("indexes reloaded",
			"version", version,
			"semantic_size", a.semanticIndex.Size(),
			"lexical_size", a.lexicalIndex.Size())
		return nil
	})
}

// BuildIndexes populates both indices from the same document set so the two
// modalities always serve an identical corpus.
func BuildIndexes(ctx context.Context, docs []domain.Document, semanticIndex *semantic.Index, lexicalIndex *lexical.Index) error {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	if err := semanticIndex.Build(ctx, texts, docs); err != nil {
		return fmt.Errorf("build semantic index: %w", err)
	}
	lexicalIndex.Build(texts, docs)
	return nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
