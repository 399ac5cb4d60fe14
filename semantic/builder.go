package semantic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/helixion/conceptmap/ai"
	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/vocab"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultBatchSize      = 64
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
	progressInterval      = 500
)

// Builder embeds vocabulary entries and produces a searchable index.
// Embedding runs in batches on a worker pool since the vocabulary can
// hold millions of entries.
type Builder struct {
	embedder       ai.Embedder
	poolSize       int
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	progressWriter io.Writer
	logger         *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuilderOption {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		b.poolSize = size
		return nil
	}
}

// WithBatchSize sets how many texts are embedded per API call.
// Default is 64.
func WithBatchSize(size int) BuilderOption {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		b.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
// Default is 3 attempts with a one second base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) BuilderOption {
	return func(b *Builder) error {
		if maxRetries < 1 {
			return ErrInvalidMaxAttempts
		}
		b.maxRetries = maxRetries
		b.retryBaseDelay = baseDelay
		return nil
	}
}

// WithProgressWriter enables progress reporting to the given writer,
// typically os.Stderr. Default is no reporting.
func WithProgressWriter(w io.Writer) BuilderOption {
	return func(b *Builder) error {
		b.progressWriter = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates an index builder using the given embedder.
func NewBuilder(embedder ai.Embedder, opts ...BuilderOption) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	b := &Builder{
		embedder:       embedder,
		poolSize:       poolSize,
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "semantic.builder")
	return b, nil
}

// Build embeds every search entry in the store (optionally narrowed to
// one domain) and returns the finished index. The first embedding
// failure aborts the build after in-flight batches drain.
func (b *Builder) Build(ctx context.Context, store vocab.Store, domainFilter string) (*Index, error) {
	var (
		ids   []core.EntryID
		texts []string
	)
	err := store.SearchEntries(ctx, domainFilter, func(e *core.SearchEntry) bool {
		// Embed the normalized text so stored vectors and query vectors
		// live in the same text form.
		text := e.NormalizedText
		if text == "" {
			text = e.Text
		}
		ids = append(ids, e.ID)
		texts = append(texts, text)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no entries to index", ErrUnavailable)
	}

	b.logger.Info("building semantic index", "entries", len(ids), "pool_size", b.poolSize, "batch_size", b.batchSize)
	start := time.Now()

	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var progress *ProgressTracker
	if b.progressWriter != nil {
		progress = NewProgressTracker(b.progressWriter, len(ids), progressInterval)
		progress.Start()
	}

	vectors := make([][]float32, len(ids))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		buildErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if buildErr == nil {
			buildErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return buildErr != nil
	}

	for offset := 0; offset < len(texts); offset += b.batchSize {
		end := offset + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batchStart, batchEnd := offset, end

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if failed() || ctx.Err() != nil {
				return
			}

			batch := texts[batchStart:batchEnd]
			var embeddings [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var err error
				embeddings, err = b.embedder.EmbedTexts(ctx, batch)
				return err
			}, b.maxRetries, b.retryBaseDelay)
			if err != nil {
				setErr(fmt.Errorf("failed to embed batch after %d attempts: %w", b.maxRetries, err))
				return
			}
			if len(embeddings) != len(batch) {
				setErr(fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings)))
				return
			}

			for i, vector := range embeddings {
				vectors[batchStart+i] = vector
			}
			if progress != nil {
				progress.Increment(len(batch))
			}
		})
		if submitErr != nil {
			setErr(submitErr)
			wg.Done()
			break
		}
	}

	wg.Wait()
	if progress != nil {
		progress.Finish()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if buildErr != nil {
		return nil, buildErr
	}

	index, err := NewIndex(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	for i, vector := range vectors {
		if err := index.Add(ids[i], vector); err != nil {
			return nil, err
		}
	}

	b.logger.Info("semantic index built", "entries", index.Len(), "dim", index.Dim(), "elapsed", time.Since(start))
	return index, nil
}
