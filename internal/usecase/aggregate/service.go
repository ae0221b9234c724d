package aggregate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bvm-labs/catalogchat/internal/domain/product"
	"github.com/bvm-labs/catalogchat/internal/metrics"
)

// Default scheduling parameters.
const (
	DefaultChunkSize    = 5
	DefaultBatchSize    = 3
	DefaultDelay        = time.Second
	DefaultChunkTimeout = 30 * time.Second
)

// SummarizeFunc produces prose for one chunk of product records.
type SummarizeFunc func(ctx context.Context, chunk product.Chunk) (string, error)

// Service runs the chunked, rate-limited aggregation pipeline: a result set
// is partitioned into chunks, chunks are summarized concurrently in fixed
// batches with a delay between batches, and the texts are reassembled in
// original chunk order. One chunk's failure never affects the others.
type Service struct {
	chunkSize    int
	batchSize    int
	delay        time.Duration
	chunkTimeout time.Duration
	sleep        func(time.Duration)
	logger       *zap.Logger
}

// New creates an aggregation service with default parameters.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		chunkSize:    DefaultChunkSize,
		batchSize:    DefaultBatchSize,
		delay:        DefaultDelay,
		chunkTimeout: DefaultChunkTimeout,
		sleep:        time.Sleep,
		logger:       logger,
	}
}

// WithChunkSize configures the maximum records per chunk.
func (s *Service) WithChunkSize(n int) *Service {
	if n > 0 {
		s.chunkSize = n
	}
	return s
}

// WithBatchSize configures the maximum chunks summarized concurrently.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithDelay configures the pause between batches.
func (s *Service) WithDelay(d time.Duration) *Service {
	if d >= 0 {
		s.delay = d
	}
	return s
}

// WithChunkTimeout configures the per-chunk summarize deadline. Zero
// disables it.
func (s *Service) WithChunkTimeout(d time.Duration) *Service {
	if d >= 0 {
		s.chunkTimeout = d
	}
	return s
}

// Aggregate summarizes every chunk of the result set and joins the texts,
// blank-line separated, in ascending chunk order regardless of completion
// order. An empty result set yields an empty string with zero summarize
// calls.
func (s *Service) Aggregate(ctx context.Context, rs product.ResultSet, summarize SummarizeFunc) string {
	chunks := product.Partition(rs, s.chunkSize)
	if len(chunks) == 0 {
		return ""
	}

	results := make([]product.ChunkResult, len(chunks))

	// Batches run strictly in sequence; chunks within a batch fan out
	// concurrently into their own result slots.
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		var wg sync.WaitGroup
		for _, chunk := range chunks[start:end] {
			wg.Add(1)
			go func(chunk product.Chunk) {
				defer wg.Done()
				results[chunk.Index] = s.summarizeChunk(ctx, chunk, summarize)
			}(chunk)
		}
		wg.Wait()

		// No delay after the final batch.
		if end < len(chunks) {
			s.sleep(s.delay)
		}
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return strings.Join(texts, "\n\n")
}

// summarizeChunk runs one summarize call with an optional deadline. A
// failure is contained: the chunk gets a placeholder naming its ordinal.
func (s *Service) summarizeChunk(ctx context.Context, chunk product.Chunk, summarize SummarizeFunc) product.ChunkResult {
	if s.chunkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.chunkTimeout)
		defer cancel()
	}

	text, err := summarize(ctx, chunk)
	if err != nil {
		metrics.ChatChunksTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("chunk summarize failed",
			zap.Int("chunk", chunk.Index),
			zap.Error(err),
		)
		return product.ChunkResult{
			Index:  chunk.Index,
			Text:   fmt.Sprintf("(Part %d of the results could not be summarized.)", chunk.Index+1),
			Failed: true,
		}
	}

	metrics.ChatChunksTotal.WithLabelValues("ok").Inc()
	return product.ChunkResult{Index: chunk.Index, Text: text}
}
