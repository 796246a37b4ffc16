package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bugdaily/internal/features/reports/models"
)

// FilterParams are the user-supplied criteria, already trimmed
type FilterParams struct {
	Text     string
	Severity string
	Platform string
	Window   Window
}

// CompiledFilter is a parameterized predicate. Clauses[i] only ever refers
// to values through $N placeholders indexing into Args.
type CompiledFilter struct {
	Clauses []string
	Args    []any

	// Normalized names the parameters that were dropped or defaulted
	Normalized []string
}

// Where renders the WHERE clause, or an empty string when there is nothing to filter
func (f CompiledFilter) Where() string {
	if len(f.Clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.Clauses, " AND ")
}

// Placeholder returns the placeholder for the next argument appended after Args
func (f CompiledFilter) Placeholder(offset int) string {
	return "$" + strconv.Itoa(len(f.Args)+offset)
}

type filterBuilder struct {
	filter CompiledFilter
}

// add binds value to the next placeholder and formats it into template as %[1]s
func (b *filterBuilder) add(template string, value any) {
	b.filter.Args = append(b.filter.Args, value)
	placeholder := "$" + strconv.Itoa(len(b.filter.Args))
	b.filter.Clauses = append(b.filter.Clauses, fmt.Sprintf(template, placeholder))
}

// Both sides go through the store's lower() so the fold matches per driver
const textClause = `(lower(title) LIKE lower(CAST(%[1]s AS TEXT)) ESCAPE '\' OR lower(coalesce(program, '')) LIKE lower(CAST(%[1]s AS TEXT)) ESCAPE '\' OR lower(coalesce(weakness, '')) LIKE lower(CAST(%[1]s AS TEXT)) ESCAPE '\')`

// AllSeverities is the explicit "no severity filter" value
const AllSeverities = "all"

// CompileFilter turns params into a predicate relative to now. The time
// window clause is always present; the others only when their value is set.
func CompileFilter(params FilterParams, now time.Time) CompiledFilter {
	b := &filterBuilder{}

	cutoff := now.Add(-params.Window.Duration).UTC()
	b.add("published_at >= %[1]s", cutoff)

	if params.Severity != "" && params.Severity != AllSeverities {
		if sev, err := models.ParseSeverity(params.Severity); err == nil {
			b.add("severity = %[1]s", string(sev))
		} else {
			b.filter.Normalized = append(b.filter.Normalized, "severity")
		}
	}

	if params.Platform != "" {
		b.add("platform = %[1]s", params.Platform)
	}

	if params.Text != "" {
		b.add(textClause, "%"+escapeLike(params.Text)+"%")
	}

	return b.filter
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// NormalizePage parses a page number. Anything below 1 or non-numeric
// becomes 1.
func NormalizePage(raw string) (page int, normalized bool) {
	if raw == "" {
		return 1, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1, true
	}
	return n, false
}

// NormalizePageSize parses a page size. Non-numeric input falls back to def;
// numeric input is clamped to [1, max].
func NormalizePageSize(raw string, def, max int) (size int, normalized bool) {
	if raw == "" {
		return def, false
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return def, true
	case n < 1:
		return 1, true
	case n > max:
		return max, true
	}
	return n, false
}
