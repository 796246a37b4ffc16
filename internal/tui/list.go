package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"bugdaily/internal/features/reports/models"
)

func formatBounty(r models.Report) string {
	if r.Bounty == nil {
		return ""
	}
	currency := models.DefaultCurrency
	if r.Currency != nil && *r.Currency != "" {
		currency = *r.Currency
	}
	return humanize.Commaf(*r.Bounty) + " " + currency
}

func relativeTime(t, now time.Time) string {
	if now.Sub(t) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderListItem(r models.Report, selected bool, width int, now time.Time) string {
	if width < 20 {
		width = 40
	}

	title := truncateStr(r.Title, width-14)
	if selected {
		title = itemSelectedStyle.Render("> " + title)
	} else {
		title = itemTitleStyle.Render("  " + title)
	}

	meta := []string{r.Platform}
	if r.Program != nil && *r.Program != "" {
		meta = append(meta, *r.Program)
	}
	if r.Weakness != nil && *r.Weakness != "" {
		meta = append(meta, *r.Weakness)
	}
	meta = append(meta, relativeTime(r.PublishedAt, now))

	line := "  " + itemMetaStyle.Render(strings.Join(meta, " · "))
	if bounty := formatBounty(r); bounty != "" {
		line += "  " + bountyStyle.Render(bounty)
	}

	return severityBadge(r.Severity) + " " + title + "\n" + line
}

func renderList(items []models.Report, cursor, height, width int, now time.Time) string {
	if len(items) == 0 {
		return itemMetaStyle.Render("  No results")
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	visible := height / 3
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(items) {
		end = len(items)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(items[i], i == cursor, width, now))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func filterLabel(label, value string) string {
	if value == "" {
		value = "all"
	}
	return filterLabelStyle.Render(label+" ") + filterValueStyle.Render(value)
}

func countLabel(shown, total int) string {
	return fmt.Sprintf("%s of %s reports", humanize.Comma(int64(shown)), humanize.Comma(int64(total)))
}
