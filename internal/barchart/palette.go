package barchart

import (
	"fmt"
	"image/color"
)

// Palette is cycled over groups, or over categories for simple charts.
var Palette = []string{"#ff0000", "#ffff00", "#80d41a", "#404893", "#800080"}

// paletteColor returns the i-th palette entry as a color, cycling.
func paletteColor(i int) color.Color {
	c, err := parseHex(Palette[i%len(Palette)])
	if err != nil {
		return color.Black
	}
	return c
}

func paletteHex(i int) string {
	return Palette[i%len(Palette)]
}

func parseHex(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
