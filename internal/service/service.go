// Package service orchestrates one search request end to end: moderation
// gate, query synthesis, Yelp search, result normalization. Each request is
// a single synchronous pass with no retries and no partial results.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dishpatch/dishpatch/internal/gemini"
	"github.com/dishpatch/dishpatch/internal/moderation"
	"github.com/dishpatch/dishpatch/internal/yelp"
)

// Per-call deadlines for the external collaborators. Each outbound call gets
// its own bounded context so one slow dependency cannot hold a request open
// indefinitely.
const (
	moderationTimeout = 30 * time.Second
	synthesisTimeout  = 60 * time.Second
	searchTimeout     = 90 * time.Second
)

// BlockedError reports a request stopped by the moderation gate before any
// paid call was made.
type BlockedError struct {
	Reason   string
	Category string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("image blocked by moderation (%s): %s", e.Category, e.Reason)
}

// ImageGate screens an image plus intent and renders a verdict.
type ImageGate interface {
	Check(ctx context.Context, imageData []byte, mimeType, userIntent string) moderation.Verdict
}

var _ ImageGate = (*moderation.Gate)(nil)

// ImageSearchInput carries one image-based search request.
type ImageSearchInput struct {
	ImageData []byte
	MIMEType  string
	UserQuery string
	Context   gemini.SearchContext
}

// CaptionSearchInput carries one caption-based search request.
type CaptionSearchInput struct {
	Caption   string
	UserQuery string
	Context   gemini.SearchContext
}

// SearchService runs the search pipeline against injected collaborators.
type SearchService struct {
	gate     ImageGate
	model    gemini.Client
	searcher yelp.Searcher
	log      *slog.Logger
}

// NewSearchService creates the pipeline service.
func NewSearchService(gate ImageGate, model gemini.Client, searcher yelp.Searcher, log *slog.Logger) *SearchService {
	return &SearchService{
		gate:     gate,
		model:    model,
		searcher: searcher,
		log:      log.With("component", "search_service"),
	}
}

// SearchByImage screens the image, synthesizes a query from it, and runs the
// search. A blocked verdict returns *BlockedError before any model or search
// spend happens.
func (s *SearchService) SearchByImage(ctx context.Context, in ImageSearchInput) (*yelp.SearchResult, error) {
	gateCtx, cancel := context.WithTimeout(ctx, moderationTimeout)
	defer cancel()

	verdict := s.gate.Check(gateCtx, in.ImageData, in.MIMEType, in.UserQuery)
	if !verdict.Allowed {
		s.log.WarnContext(ctx, "Request blocked by moderation gate",
			"category", verdict.Category,
			"reason", verdict.Reason)

		return nil, &BlockedError{Reason: verdict.Reason, Category: verdict.Category}
	}

	synthCtx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	query, err := s.model.SynthesizeImageQuery(synthCtx, in.ImageData, in.MIMEType, in.UserQuery, in.Context)
	if err != nil {
		return nil, fmt.Errorf("image query synthesis failed: %w", err)
	}

	return s.runSearch(ctx, query)
}

// SearchByCaption synthesizes a query from a text caption and runs the
// search. Captions carry no visual content, so the moderation gate is
// skipped.
func (s *SearchService) SearchByCaption(ctx context.Context, in CaptionSearchInput) (*yelp.SearchResult, error) {
	synthCtx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	query, err := s.model.SynthesizeCaptionQuery(synthCtx, in.Caption, in.UserQuery, in.Context)
	if err != nil {
		return nil, fmt.Errorf("caption query synthesis failed: %w", err)
	}

	return s.runSearch(ctx, query)
}

func (s *SearchService) runSearch(ctx context.Context, query string) (*yelp.SearchResult, error) {
	if query == "" {
		s.log.WarnContext(ctx, "Synthesized query is empty, searching anyway")
	} else {
		s.log.InfoContext(ctx, "Query synthesized", "query_length", len(query))
	}

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	raw, err := s.searcher.Search(searchCtx, query)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	result := yelp.Normalize(raw, query)
	s.log.InfoContext(ctx, "Search completed", "businesses", len(result.Businesses))

	return &result, nil
}
