// Package feed drives the client side of the report feed: filters,
// debounced search, live refresh and incremental paging. The controller is
// a bubbletea model fragment, so every method must be called from the
// program's event loop. The tea.Cmds it returns do the blocking work.
package feed

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bugdaily/internal/core"
	"bugdaily/internal/features/reports/models"
)

// Fetcher loads one page of the feed
type Fetcher interface {
	FetchReports(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error)
}

// State is the lifecycle of the current fetch
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config holds the timings and the initial filters
type Config struct {
	Debounce        time.Duration
	RefreshInterval time.Duration
	PageSize        int

	Text     string
	Severity string
	Platform string
	Since    string
}

// DefaultConfig matches the web front-end: critical reports from the last
// 24 hours, 40 per page, refreshed every minute.
func DefaultConfig() Config {
	return Config{
		Debounce:        400 * time.Millisecond,
		RefreshInterval: 60 * time.Second,
		PageSize:        40,
		Severity:        "critical",
		Since:           "24h",
	}
}

type fetchMode int

const (
	modeReplace fetchMode = iota
	modeAppend
	modeRefresh
)

type fetchResultMsg struct {
	seq    uint64
	mode   fetchMode
	page   int
	result *models.FeedPage
	err    error
}

type debounceMsg struct {
	gen uint64
}

type refreshTickMsg struct{}

// Controller owns the feed state shown by a client
type Controller struct {
	fetcher Fetcher
	logger  *core.Logger
	cfg     Config

	ctx      context.Context
	cancel   context.CancelFunc
	disposed bool

	// committed filters, and the search text still waiting on the debounce
	text        string
	pendingText string
	severity    string
	platform    string
	since       string

	state   State
	settled State
	items   []models.Report
	total   int
	page    int
	err     error
	stale   bool

	// set when the last failure was a load-more, whose items still match the filters
	appendFailed bool

	seq         uint64
	inFlight    bool
	cancelFetch context.CancelFunc

	debounceGen    uint64
	cancelDebounce context.CancelFunc

	discarded int
}

// New creates a controller. Zero timings fall back to DefaultConfig.
func New(fetcher Fetcher, cfg Config, logger *core.Logger) *Controller {
	def := DefaultConfig()
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = def.RefreshInterval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Since == "" {
		cfg.Since = def.Since
	}

	if logger == nil {
		logger = core.NewLoggerWithOptions(core.LoggerOptions{Writer: io.Discard})
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		fetcher:     fetcher,
		logger:      logger,
		cfg:         cfg,
		ctx:         ctx,
		cancel:      cancel,
		text:        cfg.Text,
		pendingText: cfg.Text,
		severity:    cfg.Severity,
		platform:    cfg.Platform,
		since:       cfg.Since,
		items:       []models.Report{},
	}
}

// Init issues the first fetch and starts the live refresh timer
func (c *Controller) Init() tea.Cmd {
	if c.disposed {
		return nil
	}
	return tea.Batch(c.fetch(1, modeReplace), c.scheduleRefresh())
}

// SetText restarts the debounce timer. The text becomes a filter only when
// the timer fires without another call in between.
func (c *Controller) SetText(s string) tea.Cmd {
	if c.disposed {
		return nil
	}
	c.pendingText = s
	c.stopDebounce()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelDebounce = cancel
	gen := c.debounceGen
	d := c.cfg.Debounce

	return func() tea.Msg {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return debounceMsg{gen: gen}
		case <-ctx.Done():
			return nil
		}
	}
}

// SetSeverity changes the severity filter and reloads from page 1
func (c *Controller) SetSeverity(s string) tea.Cmd {
	if c.disposed {
		return nil
	}
	c.severity = s
	return c.filterChanged()
}

// SetPlatform changes the platform filter and reloads from page 1
func (c *Controller) SetPlatform(p string) tea.Cmd {
	if c.disposed {
		return nil
	}
	c.platform = p
	return c.filterChanged()
}

// SetSince changes the time window and reloads from page 1
func (c *Controller) SetSince(token string) tea.Cmd {
	if c.disposed {
		return nil
	}
	c.since = token
	return c.filterChanged()
}

// Refresh reloads page 1 with the current filters
func (c *Controller) Refresh() tea.Cmd {
	if c.disposed {
		return nil
	}
	return c.filterChanged()
}

// LoadMore appends the next page. It does nothing while a fetch is running
// or once every match is loaded.
func (c *Controller) LoadMore() tea.Cmd {
	if c.disposed || !c.HasMore() {
		return nil
	}
	return c.fetch(c.page+1, modeAppend)
}

// Update applies a message produced by one of the controller's commands.
// Messages it does not own are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if c.disposed {
		return nil
	}

	switch msg := msg.(type) {
	case debounceMsg:
		if msg.gen != c.debounceGen {
			return nil
		}
		return c.filterChanged()

	case refreshTickMsg:
		next := c.scheduleRefresh()
		if c.inFlight {
			return next
		}
		return tea.Batch(c.fetch(1, modeRefresh), next)

	case fetchResultMsg:
		c.applyResult(msg)
	}

	return nil
}

// Dispose stops every timer and in-flight fetch. The controller ignores all
// calls afterwards.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.cancel()
	c.inFlight = false
}

func (c *Controller) filterChanged() tea.Cmd {
	c.text = c.pendingText
	c.stopDebounce()
	return c.fetch(1, modeReplace)
}

func (c *Controller) stopDebounce() {
	if c.cancelDebounce != nil {
		c.cancelDebounce()
		c.cancelDebounce = nil
	}
	c.debounceGen++
}

func (c *Controller) fetch(page int, mode fetchMode) tea.Cmd {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}

	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelFetch = cancel
	c.inFlight = true
	if c.state != Loading {
		c.settled = c.state
	}
	c.state = Loading

	q := c.Query()
	q.Page = page
	fetcher := c.fetcher

	return func() tea.Msg {
		result, err := fetcher.FetchReports(ctx, q)
		return fetchResultMsg{seq: seq, mode: mode, page: page, result: result, err: err}
	}
}

func (c *Controller) applyResult(msg fetchResultMsg) {
	if msg.seq != c.seq {
		c.discarded++
		c.logger.Debug("Discarded stale feed response", "seq", msg.seq, "latest", c.seq)
		return
	}

	c.inFlight = false
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}

	if msg.err != nil {
		c.err = msg.err
		if msg.mode == modeRefresh {
			c.stale = true
			c.state = c.settled
			c.logger.Warn("Live refresh failed, showing previous results", "error", msg.err)
			return
		}
		c.state = Failed
		c.appendFailed = msg.mode == modeAppend
		c.logger.Warn("Feed fetch failed", "page", msg.page, "error", msg.err)
		return
	}

	c.err = nil
	c.appendFailed = false
	c.stale = false
	c.state = Loaded
	c.total = msg.result.Total
	c.page = msg.page

	if msg.mode == modeAppend {
		c.items = append(c.items, msg.result.Items...)
		return
	}
	c.items = append(make([]models.Report, 0, len(msg.result.Items)), msg.result.Items...)
}

func (c *Controller) scheduleRefresh() tea.Cmd {
	ctx := c.ctx
	d := c.cfg.RefreshInterval

	return func() tea.Msg {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return refreshTickMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Query returns the committed filters with the configured page size
func (c *Controller) Query() models.FeedQuery {
	return models.FeedQuery{
		Text:     c.text,
		Severity: c.severity,
		Platform: c.platform,
		Since:    c.since,
		Page:     c.page,
		PageSize: c.cfg.PageSize,
	}
}

// PendingText is the search text as typed, committed or not
func (c *Controller) PendingText() string { return c.pendingText }

func (c *Controller) State() State { return c.state }

// Items returns the loaded reports. Callers must not modify the slice.
func (c *Controller) Items() []models.Report { return c.items }

func (c *Controller) Total() int { return c.total }

func (c *Controller) Page() int { return c.page }

// Err is the error of the last failed fetch, nil after a success
func (c *Controller) Err() error { return c.err }

// Stale reports that the last live refresh failed and the items shown are
// from an earlier fetch.
func (c *Controller) Stale() bool { return c.stale }

// Discarded counts responses dropped because a newer fetch superseded them
func (c *Controller) Discarded() int { return c.discarded }

// HasMore reports whether LoadMore would fetch anything. A failed load-more
// can be retried; a failed filter change has to be refreshed first.
func (c *Controller) HasMore() bool {
	if c.inFlight || len(c.items) >= c.total {
		return false
	}
	return c.state == Loaded || (c.state == Failed && c.appendFailed)
}
