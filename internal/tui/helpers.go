package tui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/bookshelf/internal/store"
	"github.com/naveenspark/bookshelf/pkg/client"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// formatTime renders a relative timestamp for comment and history lists.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// cleanText collapses newlines and runs of whitespace so free text fits on
// one list row.
func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// errorText turns an error into the one line shown to the user.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var rl *store.RateLimitError
	if errors.As(err, &rl) {
		return rl.Message
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized:
			return "log in first (press l)"
		case http.StatusForbidden:
			return "not allowed: " + httpErr.Message
		case http.StatusNotFound:
			return "not found"
		}
		return httpErr.Message
	}
	return "network error: " + err.Error()
}
