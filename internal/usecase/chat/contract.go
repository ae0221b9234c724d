package chat

import (
	"context"

	"github.com/bvm-labs/catalogchat/internal/domain/product"
	"github.com/bvm-labs/catalogchat/internal/usecase/aggregate"
	"github.com/bvm-labs/catalogchat/internal/usecase/intent"
)

// IntentResolver turns a user message into a validated, typed intent.
type IntentResolver interface {
	Resolve(ctx context.Context, message string) (intent.Intent, error)
}

// CatalogFetcher retrieves products from the catalog API.
type CatalogFetcher interface {
	FetchByID(ctx context.Context, id string) (product.ResultSet, error)
	FetchByFilter(ctx context.Context, encodedFilter string, pageSize int) (product.ResultSet, error)
}

// Summarizer is the summarization collaborator, invoked once per chunk.
type Summarizer interface {
	Summarize(ctx context.Context, instruction string, chunk product.Chunk) (string, error)
}

// Aggregator runs the chunked summarization pipeline.
type Aggregator interface {
	Aggregate(ctx context.Context, rs product.ResultSet, summarize aggregate.SummarizeFunc) string
}

// SessionStore is the synchronized append-only log of recently seen
// product identifiers.
type SessionStore interface {
	Append(ctx context.Context, ids ...string) error
	Recent(ctx context.Context, n int) ([]string, error)
}
