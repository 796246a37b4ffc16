package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/models"
)

type fakeFeed struct {
	got       models.FeedQuery
	page      *models.FeedPage
	platforms []string
	err       error
}

func (f *fakeFeed) ListReports(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	f.got = q
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *fakeFeed) Platforms(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.platforms, nil
}

func newTestHandlers(feed FeedReader) *Handlers {
	logger := core.NewLoggerWithOptions(core.LoggerOptions{Writer: io.Discard})
	return NewHandlers(logger, feed, 40, 200)
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		url  string
		want models.FeedQuery
	}{
		{"/reports", models.FeedQuery{Page: 1, PageSize: 40}},
		{
			"/reports?q=+rce+&severity=critical&platform=HackerOne&since=7d&page=3&pageSize=10",
			models.FeedQuery{Text: "rce", Severity: "critical", Platform: "HackerOne", Since: "7d", Page: 3, PageSize: 10},
		},
		{"/reports?page=0&pageSize=500", models.FeedQuery{Page: 1, PageSize: 200}},
		{"/reports?page=abc&pageSize=xyz", models.FeedQuery{Page: 1, PageSize: 40}},
		{"/reports?pageSize=0", models.FeedQuery{Page: 1, PageSize: 1}},
	}

	h := newTestHandlers(&fakeFeed{})
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.url, nil)
		if got := h.ParseQuery(r); got != tt.want {
			t.Errorf("ParseQuery(%s) = %+v, want %+v", tt.url, got, tt.want)
		}
	}
}

func TestListReports(t *testing.T) {
	published := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	feed := &fakeFeed{page: &models.FeedPage{
		Page:     1,
		PageSize: 2,
		Total:    3,
		Items: []models.Report{
			{ID: "abc", Title: "RCE", Platform: "HackerOne", Severity: models.SeverityCritical, PublishedAt: published, URL: "https://h1.example/abc"},
		},
	}}
	h := newTestHandlers(feed)

	rec := httptest.NewRecorder()
	h.ListReports(rec, httptest.NewRequest(http.MethodGet, "/reports?severity=critical&pageSize=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if feed.got.Severity != "critical" || feed.got.PageSize != 2 {
		t.Errorf("service received %+v", feed.got)
	}

	var body struct {
		Page     int              `json:"page"`
		PageSize int              `json:"pageSize"`
		Total    int              `json:"total"`
		Items    []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Page != 1 || body.PageSize != 2 || body.Total != 3 || len(body.Items) != 1 {
		t.Fatalf("body = %+v", body)
	}

	item := body.Items[0]
	if item["id"] != "abc" || item["publishedAt"] != "2025-06-01T10:00:00Z" || item["severity"] != "critical" {
		t.Errorf("item = %v", item)
	}
	if v, ok := item["program"]; !ok || v != nil {
		t.Errorf("program should be present and null, got %v (present=%v)", v, ok)
	}
}

func TestListReportsStorageFailure(t *testing.T) {
	feed := &fakeFeed{err: core.NewStorageUnavailableError("failed to query reports", errors.New("connection refused"))}
	h := newTestHandlers(feed)

	rec := httptest.NewRecorder()
	h.ListReports(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body core.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error == nil || body.Error.Code != core.ErrCodeStorageUnavailable {
		t.Errorf("body = %+v", body)
	}
}

func TestListPlatforms(t *testing.T) {
	h := newTestHandlers(&fakeFeed{platforms: []string{"Bugcrowd", "HackerOne"}})

	rec := httptest.NewRecorder()
	h.ListPlatforms(rec, httptest.NewRequest(http.MethodGet, "/reports/platforms", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body models.PlatformList
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Platforms) != 2 || body.Platforms[0] != "Bugcrowd" {
		t.Errorf("platforms = %v", body.Platforms)
	}
}
