package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bugdaily/internal/core"
	"bugdaily/internal/feed"
	"bugdaily/internal/features/reports/models"
	"bugdaily/internal/features/reports/services"
)

// PlatformLister supplies the platform filter choices
type PlatformLister interface {
	Platforms(ctx context.Context) ([]string, error)
}

type mode int

const (
	modeNormal mode = iota
	modeSearch
)

type platformsLoadedMsg struct {
	platforms []string
}

// App is the terminal feed viewer
type App struct {
	ctrl      *feed.Controller
	platforms PlatformLister
	logger    *core.Logger
	now       func() time.Time

	mode   mode
	cursor int
	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model

	severities      []string
	platformChoices []string
	windows         []string
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Fetcher   feed.Fetcher
	Platforms PlatformLister
	Feed      feed.Config
	Logger    *core.Logger
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search title, program or weakness..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100
	ti.SetValue(opts.Feed.Text)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	severities := []string{""}
	for _, s := range models.Severities {
		severities = append(severities, string(s))
	}

	var windows []string
	for _, w := range services.Windows() {
		windows = append(windows, w.Token)
	}

	return &App{
		ctrl:            feed.New(opts.Fetcher, opts.Feed, opts.Logger),
		platforms:       opts.Platforms,
		logger:          opts.Logger,
		now:             time.Now,
		searchInput:     ti,
		spinner:         sp,
		severities:      severities,
		platformChoices: append([]string{""}, models.KnownPlatforms...),
		windows:         windows,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.ctrl.Init(), a.spinner.Tick, a.loadPlatformsCmd())
}

func (a *App) loadPlatformsCmd() tea.Cmd {
	if a.platforms == nil {
		return nil
	}
	lister := a.platforms
	logger := a.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		platforms, err := lister.Platforms(ctx)
		if err != nil || len(platforms) == 0 {
			if logger != nil {
				logger.Warn("Failed to load platforms, using the built-in list", "error", err)
			}
			return nil
		}
		return platformsLoadedMsg{platforms: platforms}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case platformsLoadedMsg:
		a.platformChoices = append([]string{""}, msg.platforms...)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	cmd := a.ctrl.Update(msg)
	if n := len(a.ctrl.Items()); a.cursor >= n {
		a.cursor = max(0, n-1)
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	if a.mode == modeSearch {
		return a.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		return a.quit()
	case "j", "down":
		if a.cursor < len(a.ctrl.Items())-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "s":
		next := cycle(a.severities, a.ctrl.Query().Severity)
		a.cursor = 0
		return a, a.ctrl.SetSeverity(next)
	case "p":
		next := cycle(a.platformChoices, a.ctrl.Query().Platform)
		a.cursor = 0
		return a, a.ctrl.SetPlatform(next)
	case "w":
		next := cycle(a.windows, a.ctrl.Query().Since)
		a.cursor = 0
		return a, a.ctrl.SetSince(next)
	case "r":
		a.cursor = 0
		return a, a.ctrl.Refresh()
	case "m":
		return a, a.ctrl.LoadMore()
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.Blur()
		if a.searchInput.Value() == "" {
			return a, nil
		}
		a.searchInput.SetValue("")
		return a, a.ctrl.SetText("")
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.cursor = 0
		if a.searchInput.Value() == a.ctrl.Query().Text {
			return a, nil
		}
		return a, a.ctrl.Refresh()
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Only re-query on actual value changes, not cursor moves etc.
	if after := a.searchInput.Value(); after != before {
		a.cursor = 0
		return a, tea.Batch(cmd, a.ctrl.SetText(after))
	}
	return a, cmd
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.ctrl.Dispose()
	return a, tea.Quit
}

// cycle returns the option after current, wrapping around. An unknown
// current value starts over at the first option.
func cycle(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (a *App) View() string {
	if a.width == 0 {
		return headerStyle.Render("bugdaily")
	}

	q := a.ctrl.Query()

	header := headerStyle.Render("BugDaily") + itemMetaStyle.Render("  public bounty write-ups")

	filters := strings.Join([]string{
		filterLabel("severity", q.Severity),
		filterLabel("platform", q.Platform),
		filterLabel("since", q.Since),
		filterLabel("search", a.ctrl.PendingText()),
	}, "   ")
	if a.mode == modeSearch {
		filters = a.searchInput.View()
	}

	contentHeight := a.height - 4
	if contentHeight < 3 {
		contentHeight = 3
	}
	list := renderList(a.ctrl.Items(), a.cursor, contentHeight, a.width-2, a.now())
	list = lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(list)

	return lipgloss.JoinVertical(lipgloss.Left, header, filters, list, a.renderStatusBar())
}

func (a *App) renderStatusBar() string {
	left := " " + countLabel(len(a.ctrl.Items()), a.ctrl.Total())

	switch {
	case a.ctrl.State() == feed.Loading:
		left = a.spinner.View() + left + " (loading...)"
	case a.ctrl.State() == feed.Failed:
		left += " " + offlineStyle.Render("offline: showing previous results")
	case a.ctrl.Stale():
		left += " " + offlineStyle.Render("stale: live refresh failed")
	}

	right := " / search  s severity  p platform  w window  r refresh  m more  q quit "
	if a.ctrl.HasMore() {
		right = fmt.Sprintf(" page %d ·", a.ctrl.Page()) + right
	}
	if a.mode == modeSearch {
		right = " esc clear  enter search "
	}

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(a.width).Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	app.ctrl.Dispose()
	return err
}
