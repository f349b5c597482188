package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatRatingStars formats a 1-5 rating as stars (e.g., "★★★★☆").
// Zero renders as "—".
func FormatRatingStars(rating int) string {
	if rating <= 0 {
		return "—"
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// FormatCreatedAt formats a Unix-millisecond timestamp as "Jan 02, 2006".
func FormatCreatedAt(ms int64) string {
	if ms <= 0 {
		return "Unknown"
	}
	return time.UnixMilli(ms).Format("Jan 02, 2006")
}

// FormatCreatedAtHuman formats a Unix-millisecond timestamp relative to now:
// "Today", "Yesterday", "3 days ago", "Jan 15", "Jan 15 '24".
func FormatCreatedAtHuman(ms int64, now time.Time) string {
	if ms <= 0 {
		return "Unknown"
	}
	t := time.UnixMilli(ms).In(now.Location())

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	days := int(today.Sub(day).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return humanize.RelTime(day, today, "ago", "from now")
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// FormatBytes renders a byte count ("5.2 MB").
func FormatBytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// ParseRatingInput parses a 1-5 rating. Empty input returns 0.
func ParseRatingInput(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5")
	}
	return n, nil
}

// ImageFileToDataURL reads an image file and encodes it as a base64 data URL.
func ImageFileToDataURL(path string) (string, error) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL returns the payload of a base64 data URL. A bare base64
// string without the data: prefix is accepted too.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, errors.New("malformed data URL")
		}
		if !strings.HasSuffix(s[:comma], ";base64") {
			return nil, errors.New("data URL is not base64 encoded")
		}
		s = s[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return data, nil
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// FirstLine returns s up to its first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
