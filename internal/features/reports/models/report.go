package models

import (
	"time"
)

// Report is one publicly disclosed vulnerability write-up. Reports are
// written by the ingester and only ever read here.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	Severity    Severity  `json:"severity"`
	Program     *string   `json:"program"`
	Bounty      *float64  `json:"bounty"`
	Currency    *string   `json:"currency"`
	PublishedAt time.Time `json:"publishedAt"`
	URL         string    `json:"url"`
	Weakness    *string   `json:"weakness"`
}

// DefaultCurrency applies to a bounty stored without a currency
const DefaultCurrency = "USD"

// Known source platforms. The set is open: anything else is reported as is.
var KnownPlatforms = []string{"HackerOne", "Bugcrowd", "Intigriti", "YesWeHack", "Other"}

// FeedQuery is the per-request set of filters and pagination
type FeedQuery struct {
	Text     string `json:"q"`
	Severity string `json:"severity"`
	Platform string `json:"platform"`
	Since    string `json:"since"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// FeedPage is one page of matching reports. Total counts every match,
// ignoring pagination.
type FeedPage struct {
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	Total    int      `json:"total"`
	Items    []Report `json:"items"`
}

// PlatformList is the response body of the platforms endpoint
type PlatformList struct {
	Platforms []string `json:"platforms"`
}
