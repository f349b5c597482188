package ui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/qeesung/image2ascii/convert"

	"wanderlist/internal/util"
)

// TerminalCapabilities represents which graphics protocols the terminal supports.
type TerminalCapabilities struct {
	SupportsKitty  bool
	SupportsSixel  bool
	SupportsITerm2 bool
	NoColor        bool
}

// DetectTerminalCapabilities detects which graphics protocols the terminal supports.
func DetectTerminalCapabilities() TerminalCapabilities {
	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	return TerminalCapabilities{
		SupportsKitty:  strings.Contains(term, "kitty") || os.Getenv("KITTY_WINDOW_ID") != "",
		SupportsSixel:  detectSixelSupport(),
		SupportsITerm2: termProgram == "iTerm.app",
		NoColor:        os.Getenv("NO_COLOR") != "" || term == "dumb",
	}
}

// detectSixelSupport checks for common Sixel-capable terminals.
func detectSixelSupport() bool {
	term := os.Getenv("TERM")

	if strings.Contains(term, "xterm") && os.Getenv("XTERM_VERSION") != "" {
		return true
	}
	if strings.Contains(term, "mlterm") {
		return true
	}
	if os.Getenv("WEZTERM_EXECUTABLE") != "" {
		return true
	}
	if strings.Contains(term, "foot") {
		return true
	}
	return false
}

// RenderInlineImage decodes a base64 image payload (data URL or bare
// base64) and renders it for the terminal.
func RenderInlineImage(payload string, caps TerminalCapabilities, targetWidth, targetHeight int) (string, error) {
	data, err := util.DecodeDataURL(payload)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	return RenderImage(img, caps, targetWidth, targetHeight), nil
}

// RenderImage renders an image as ASCII art, the one protocol every
// terminal supports.
func RenderImage(img image.Image, caps TerminalCapabilities, targetWidth, targetHeight int) string {
	return convertToASCII(img, targetWidth, targetHeight, !caps.NoColor)
}

func convertToASCII(img image.Image, targetWidth, targetHeight int, colored bool) string {
	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.Colored = colored
	opts.FitScreen = false
	opts.Ratio = 0.5 // terminal cells are about twice as tall as wide

	return converter.Image2ASCIIString(img, &opts)
}
