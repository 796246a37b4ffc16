package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/models"
	"bugdaily/internal/features/reports/services"
)

// FeedReader is what the handlers need from the feed service
type FeedReader interface {
	ListReports(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error)
	Platforms(ctx context.Context) ([]string, error)
}

// Handlers contains the report feed HTTP handlers
type Handlers struct {
	logger          *core.Logger
	feed            FeedReader
	defaultPageSize int
	maxPageSize     int
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, feed FeedReader, defaultPageSize, maxPageSize int) *Handlers {
	return &Handlers{
		logger:          logger,
		feed:            feed,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// ListReports serves GET /reports?q=&severity=&platform=&since=&page=&pageSize=
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	q := h.ParseQuery(r)

	page, err := h.feed.ListReports(r.Context(), q)
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Failed to list reports", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, page)
}

// ListPlatforms serves GET /reports/platforms
func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.feed.Platforms(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Failed to list platforms", "error", err)
		core.HandleError(w, err)
		return
	}

	writeJSON(w, models.PlatformList{Platforms: platforms})
}

// ParseQuery reads the feed parameters from the URL. Malformed page and
// pageSize values are normalized, never rejected.
func (h *Handlers) ParseQuery(r *http.Request) models.FeedQuery {
	values := r.URL.Query()
	get := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}

	page, pageNormalized := services.NormalizePage(get("page"))
	pageSize, sizeNormalized := services.NormalizePageSize(get("pageSize"), h.defaultPageSize, h.maxPageSize)

	logger := h.logger.WithContext(r.Context())
	if pageNormalized {
		logger.Debug("Normalized parameter", "error", core.NewInvalidParameterError("page", get("page")))
	}
	if sizeNormalized {
		logger.Debug("Normalized parameter", "error", core.NewInvalidParameterError("pageSize", get("pageSize")))
	}

	return models.FeedQuery{
		Text:     get("q"),
		Severity: get("severity"),
		Platform: get("platform"),
		Since:    get("since"),
		Page:     page,
		PageSize: pageSize,
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}
