package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bvm-labs/catalogchat/internal/domain/product"
	"github.com/bvm-labs/catalogchat/internal/usecase/intent"
)

// Canned replies for terminal non-error outcomes.
const (
	replyNotIdentified = "I couldn't map that message to a product or a catalog filter. Try naming a product or an attribute like brand or color."
	replyNoMatches     = "No products matched your request."
	replyEmptyMessage  = "Please enter a message."
)

// defaultSummaryPrompt is the built-in instruction for the summarization
// collaborator. The user content is one chunk of product records as JSON.
const defaultSummaryPrompt = `You are a product catalog assistant.
Summarize the following products for a shopper: name each product with its
price and one distinguishing detail. Plain prose, no markdown.`

// recentEntries is how many session identifiers a history reply shows.
const recentEntries = 10

// Service orchestrates one chat request: interpret the message, fetch
// matching products, summarize them in chunks, and record what was seen.
type Service struct {
	intents       IntentResolver
	catalog       CatalogFetcher
	summarizer    Summarizer
	aggregator    Aggregator
	sessions      SessionStore
	pageSize      int
	summaryPrompt string
	logger        *zap.Logger
}

// New creates a chat service.
func New(
	intents IntentResolver, catalog CatalogFetcher,
	summarizer Summarizer, aggregator Aggregator,
	sessions SessionStore, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		intents:       intents,
		catalog:       catalog,
		summarizer:    summarizer,
		aggregator:    aggregator,
		sessions:      sessions,
		pageSize:      50,
		summaryPrompt: defaultSummaryPrompt,
		logger:        logger,
	}
}

// WithPageSize configures the per_page parameter of filter fetches.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// WithSummaryPrompt overrides the built-in summarization instruction.
func (s *Service) WithSummaryPrompt(prompt string) *Service {
	if prompt != "" {
		s.summaryPrompt = prompt
	}
	return s
}

// Reply answers one user message. Interpreter and fetch failures are
// terminal for the request and surface as errors; per-chunk summarization
// failures are contained inside the aggregation and never fail the request.
func (s *Service) Reply(ctx context.Context, message string) (string, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return replyEmptyMessage, nil
	}

	it, err := s.intents.Resolve(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("reply: %w", err)
	}

	var rs product.ResultSet
	switch it.Kind {
	case intent.KindLookup:
		rs, err = s.catalog.FetchByID(ctx, it.ID)
	case intent.KindSearch:
		rs, err = s.catalog.FetchByFilter(ctx, it.Filter, s.pageSize)
	default:
		return s.unresolvedReply(ctx, msg), nil
	}
	if err != nil {
		return "", fmt.Errorf("reply: %w", err)
	}

	if len(rs) == 0 {
		return replyNoMatches, nil
	}

	s.recordSeen(ctx, rs)

	return s.aggregator.Aggregate(ctx, rs, func(ctx context.Context, chunk product.Chunk) (string, error) {
		return s.summarizer.Summarize(ctx, s.summaryPrompt, chunk)
	}), nil
}

// unresolvedReply answers a message with no usable intent. A question about
// viewing history gets the recent identifier list, everything else the
// not-identified reply.
func (s *Service) unresolvedReply(ctx context.Context, msg string) string {
	if !isHistoryQuestion(msg) {
		return replyNotIdentified
	}
	ids, err := s.sessions.Recent(ctx, recentEntries)
	if err != nil {
		s.logger.Warn("session read failed", zap.Error(err))
		return replyNotIdentified
	}
	if len(ids) == 0 {
		return "You haven't looked at any products yet."
	}
	return "Recently viewed products: " + strings.Join(ids, ", ")
}

// recordSeen appends the fetched identifiers to session memory. A store
// failure is logged, never propagated.
func (s *Service) recordSeen(ctx context.Context, rs product.ResultSet) {
	ids := make([]string, 0, len(rs))
	for _, rec := range rs {
		if id := rec.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := s.sessions.Append(ctx, ids...); err != nil {
		s.logger.Warn("session append failed", zap.Error(err))
	}
}

func isHistoryQuestion(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range []string{"recently", "viewed", "looked at", "history"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
