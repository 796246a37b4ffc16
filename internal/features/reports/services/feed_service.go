package services

import (
	"context"
	"time"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/models"
)

// Clock returns the current time
type Clock func() time.Time

// FeedService resolves a FeedQuery into a compiled filter and hands it to the repository
type FeedService struct {
	repo   *Repository
	logger *core.Logger
	now    Clock
}

// NewFeedService creates a feed service. A nil clock uses time.Now.
func NewFeedService(repo *Repository, logger *core.Logger, now Clock) *FeedService {
	if now == nil {
		now = time.Now
	}
	return &FeedService{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

// ListReports returns the requested page. q.Page and q.PageSize must
// already be normalized.
func (s *FeedService) ListReports(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	window, normalized := ResolveWindow(q.Since)
	if normalized {
		s.logger.WithContext(ctx).Debug("Normalized parameter", "error", core.NewInvalidParameterError("since", q.Since))
	}

	filter := CompileFilter(FilterParams{
		Text:     q.Text,
		Severity: q.Severity,
		Platform: q.Platform,
		Window:   window,
	}, s.now())

	for _, param := range filter.Normalized {
		s.logger.WithContext(ctx).Debug("Normalized parameter", "error", core.NewInvalidParameterError(param, q.Severity))
	}

	return s.repo.FetchPage(ctx, filter, q.Page, q.PageSize)
}

// Platforms returns the platforms present in the store, or the known
// platforms when the store is empty
func (s *FeedService) Platforms(ctx context.Context) ([]string, error) {
	platforms, err := s.repo.Platforms(ctx)
	if err != nil {
		return nil, err
	}
	if len(platforms) == 0 {
		return append([]string{}, models.KnownPlatforms...), nil
	}
	return platforms, nil
}
