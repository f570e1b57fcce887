package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/loupe/internal/photos"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// formatExposure renders the exposure triangle, e.g. "35mm  f/2  1/250s  ISO 400".
// Missing values are skipped.
func formatExposure(p photos.Photo) string {
	var parts []string
	if p.FocalLength > 0 {
		parts = append(parts, trimFloat(p.FocalLength)+"mm")
	}
	if p.FNumber > 0 {
		parts = append(parts, "f/"+trimFloat(p.FNumber))
	}
	if exp := strings.TrimSpace(p.ExposureTime); exp != "" {
		if !strings.HasSuffix(exp, "s") {
			exp += "s"
		}
		parts = append(parts, exp)
	}
	if p.ISO > 0 {
		parts = append(parts, "ISO "+strconv.Itoa(p.ISO))
	}
	return strings.Join(parts, "  ")
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatDate renders a capture date, or "" for a zero time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}

// formatDateTime renders a timestamp, or "unknown" for a zero time.
func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// formatDimensions renders "6000×4000 (24.0 MP)".
func formatDimensions(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	mp := float64(w*h) / 1e6
	return fmt.Sprintf("%d×%d (%.1f MP)", w, h, mp)
}

// formatCount renders a loaded count with a "+" when more exist.
func formatCount(n int, more bool) string {
	noun := "photos"
	if n == 1 {
		noun = "photo"
	}
	if more {
		return fmt.Sprintf("%d+ %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// ternary returns a if cond is true, otherwise b.
func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
