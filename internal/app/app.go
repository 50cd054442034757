package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"threadqa/internal/config"
	"threadqa/internal/corpus"
	"threadqa/internal/handlers"
	"threadqa/internal/llm"
	"threadqa/internal/ocr"
	"threadqa/internal/rag"
	"threadqa/internal/storage"
	"threadqa/internal/vectorstore"
)

// App holds the wired question answering stack shared by every surface.
type App struct {
	Config    *config.Config
	Corpus    *corpus.Store
	Retriever *rag.Retriever
	Engine    rag.Engine
	Health    *handlers.HealthHandler

	db     *sql.DB
	qdrant *vectorstore.QdrantStore
}

// New opens the database, loads the corpus and wires the engine.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	a := &App{Config: cfg, db: db}

	store, err := LoadCorpus(ctx, storage.NewSubthreadRepo(db), cfg.CorpusPath)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var vs vectorstore.VectorStore
	if cfg.QdrantURL != "" {
		a.qdrant, err = vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		vs = a.qdrant

		store, err = HydrateEmbeddings(ctx, store, vs, cfg.QdrantCollection)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	a.Corpus = store

	var encoder rag.QueryEncoder
	if cfg.EmbeddingBaseURL != "" {
		embedder, err := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.AIAPIKey, cfg.EmbeddingModelName, embeddingSize(store), cfg.EmbeddingCacheSize)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to create embeddings client: %w", err)
		}
		encoder = embedder
		slog.Info("Query embedding enabled", "model", cfg.EmbeddingModelName, "cache_size", cfg.EmbeddingCacheSize)
	}

	a.Retriever = NewRetriever(cfg, store, encoder)

	policy, err := rag.ParseTruncationPolicy(cfg.ContextTruncation)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	builder := rag.NewContextBuilder(cfg.MaxContextChars, policy)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.AIAPIKey, cfg.LLMModelName,
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRateLimit(cfg.LLMRateLimit, 1),
	)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName, "timeout", cfg.LLMTimeout)

	extractor := ocr.NewTesseractExtractor(cfg.OCRLanguage)

	a.Engine = rag.NewEngine(a.Retriever, builder, llmClient, extractor, rag.EngineConfig{
		TopK:        cfg.TopK,
		Temperature: cfg.LLMTemperature,
		Model:       cfg.LLMModelName,
	})
	slog.Info("RAG engine initialized", "subthreads", store.Len(), "embedded", store.EmbeddedCount(), "top_k", cfg.TopK)

	a.Health = handlers.NewHealthHandler(store, vs, cfg.QdrantCollection)

	return a, nil
}

// Close releases the database and Qdrant connections.
func (a *App) Close() error {
	var errs []error
	if a.qdrant != nil {
		if err := a.qdrant.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Qdrant client: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadCorpus seeds repo from corpusPath when set, then builds the corpus
// store from every stored subthread in canonical order.
func LoadCorpus(ctx context.Context, repo storage.SubthreadStore, corpusPath string) (*corpus.Store, error) {
	if corpusPath != "" {
		if err := ImportCorpus(ctx, repo, corpusPath); err != nil {
			return nil, err
		}
	}

	records, err := repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subthreads: %w", err)
	}

	subthreads := make([]corpus.Subthread, 0, len(records))
	for _, rec := range records {
		subthreads = append(subthreads, corpus.Subthread{
			ID:        rec.ID,
			Title:     rec.Title,
			Text:      rec.Text,
			Source:    rec.Source,
			CreatedAt: rec.CreatedAt,
			Likes:     rec.Likes,
			Embedding: rec.Embedding,
		})
	}

	store, err := corpus.NewStore(subthreads)
	if err != nil {
		return nil, fmt.Errorf("failed to build corpus: %w", err)
	}
	if store.Len() == 0 {
		slog.Warn("Corpus is empty; every question will get the no-results answer")
	}
	return store, nil
}

// ImportCorpus replaces every stored subthread with the contents of the
// corpus file at path.
func ImportCorpus(ctx context.Context, repo storage.SubthreadStore, path string) error {
	subthreads, err := corpus.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load corpus file: %w", err)
	}

	records := make([]storage.SubthreadRecord, len(subthreads))
	for i, st := range subthreads {
		records[i] = storage.SubthreadRecord{
			ID:        st.ID,
			Position:  i,
			Title:     st.Title,
			Text:      st.Text,
			Source:    st.Source,
			CreatedAt: st.CreatedAt,
			Likes:     st.Likes,
			Embedding: st.Embedding,
		}
	}

	if err := repo.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}
	slog.Info("Corpus imported", "path", path, "subthreads", len(records))
	return nil
}

// HydrateEmbeddings attaches the vectors stored in collection to the
// matching subthreads.
func HydrateEmbeddings(ctx context.Context, store *corpus.Store, vs vectorstore.VectorStore, collection string) (*corpus.Store, error) {
	exists, err := vs.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check Qdrant collection: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("qdrant collection %q does not exist", collection)
	}

	if store.Len() == 0 {
		return store, nil
	}

	vectors, err := vs.FetchVectors(ctx, collection, store.IDs())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch embeddings: %w", err)
	}

	hydrated := store.WithEmbeddings(vectors)
	slog.Info("Embeddings hydrated", "collection", collection, "embedded", hydrated.EmbeddedCount(), "subthreads", hydrated.Len())
	return hydrated, nil
}

// NewRetriever uses the hybrid scorer when queries can be embedded and the
// corpus carries embeddings, lexical otherwise.
func NewRetriever(cfg *config.Config, store *corpus.Store, encoder rag.QueryEncoder) *rag.Retriever {
	var opts []rag.RetrieverOption
	if cfg.MinScore != nil {
		opts = append(opts, rag.WithMinScore(*cfg.MinScore))
	}

	var scorer rag.Scorer = rag.LexicalScorer{}
	if encoder != nil && store.EmbeddedCount() > 0 {
		scorer = rag.NewHybridScorer(cfg.HybridWeight)
		opts = append(opts, rag.WithQueryEncoder(encoder))
	}
	return rag.NewRetriever(store, scorer, opts...)
}

// embeddingSize returns the dimension of the first stored embedding, or 0.
func embeddingSize(store *corpus.Store) int {
	for _, st := range store.All() {
		if st.HasEmbedding() {
			return len(st.Embedding)
		}
	}
	return 0
}
