package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRatingStars(t *testing.T) {
	assert.Equal(t, "—", FormatRatingStars(0))
	assert.Equal(t, "★☆☆☆☆", FormatRatingStars(1))
	assert.Equal(t, "★★★★☆", FormatRatingStars(4))
	assert.Equal(t, "★★★★★", FormatRatingStars(9))
}

func TestFormatCreatedAtHuman(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	ms := func(t time.Time) int64 { return t.UnixMilli() }

	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "unset", in: 0, want: "Unknown"},
		{name: "today", in: ms(now.Add(-2 * time.Hour)), want: "Today"},
		{name: "yesterday", in: ms(now.Add(-24 * time.Hour)), want: "Yesterday"},
		{name: "days ago", in: ms(now.Add(-3 * 24 * time.Hour)), want: "3 days ago"},
		{name: "this year", in: ms(time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)), want: "Jan 15"},
		{name: "older", in: ms(time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)), want: "Jan 15 '24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCreatedAtHuman(tt.in, now))
		})
	}
}

func TestParseRatingInput(t *testing.T) {
	n, err := ParseRatingInput(" 4 ")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = ParseRatingInput("")
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, bad := range []string{"0", "6", "five"} {
		_, err := ParseRatingInput(bad)
		assert.Error(t, err, bad)
	}
}

// 1x1 transparent PNG.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestImageFileToDataURL_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, tinyPNG, 0600))

	url, err := ImageFileToDataURL(path)
	require.NoError(t, err)
	assert.Regexp(t, `^data:image/png;base64,`, url)

	data, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, data)
}

func TestImageFileToDataURL_RejectsNonImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0600))

	_, err := ImageFileToDataURL(path)
	assert.Error(t, err)

	_, err = ImageFileToDataURL(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDecodeDataURL_Malformed(t *testing.T) {
	for _, in := range []string{"data:image/png;base64", "data:image/png,AAAA", "data:image/png;base64,@@@"} {
		_, err := DecodeDataURL(in)
		assert.Error(t, err, in)
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "Paris", TruncateString("Paris", 10))
	assert.Equal(t, "Swiss A...", TruncateString("Swiss Alps Tour", 10))
	assert.Equal(t, "Zü", TruncateString("Zürich", 2))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(-1))
	assert.Equal(t, "5.2 MB", FormatBytes(5*1024*1024))
}
