package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	qrcode "github.com/skip2/go-qrcode"
)

// RenderQRCode writes a PNG QR code encoding url to path, replacing any
// previous file.
func RenderQRCode(url, path string, size int, dark, light color.Color) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create QR directory: %w", err)
		}
	}
	if err := qrcode.WriteColorFile(url, qrcode.Medium, size, light, dark, path); err != nil {
		return fmt.Errorf("write QR code: %w", err)
	}
	return nil
}

// ParseHexColor parses "#rrggbb" or "#rgb" (the "#" is optional) into an
// opaque color.
func ParseHexColor(s string) (color.Color, error) {
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
