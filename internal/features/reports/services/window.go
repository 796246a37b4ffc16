package services

import (
	"time"
)

// Window is a pre-registered lookback period
type Window struct {
	Token    string
	Duration time.Duration
}

// DefaultWindowToken is used for any token outside the allow-list
const DefaultWindowToken = "24h"

var windows = []Window{
	{Token: "24h", Duration: 24 * time.Hour},
	{Token: "3d", Duration: 3 * 24 * time.Hour},
	{Token: "7d", Duration: 7 * 24 * time.Hour},
	{Token: "30d", Duration: 30 * 24 * time.Hour},
	{Token: "90d", Duration: 90 * 24 * time.Hour},
}

// Windows returns the allow-list in ascending order
func Windows() []Window {
	out := make([]Window, len(windows))
	copy(out, windows)
	return out
}

// ResolveWindow maps a token onto one of the registered windows. Unknown
// tokens resolve to the 24h window with normalized set to true.
func ResolveWindow(token string) (w Window, normalized bool) {
	for _, candidate := range windows {
		if candidate.Token == token {
			return candidate, false
		}
	}
	return windows[0], true
}
