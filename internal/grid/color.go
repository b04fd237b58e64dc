package grid

import (
	"fmt"
	"strconv"
)

// Color is an 8-bit-per-channel RGB display color.
type Color struct {
	R, G, B uint8
}

// ParseHex parses a "#RRGGBB" color string. Anything else (wrong length,
// missing '#', bad digits) yields black, matching the permissive behavior
// expected by gradient coloring.
func ParseHex(s string) Color {
	if len(s) != 7 || s[0] != '#' {
		return Color{}
	}
	r, err1 := strconv.ParseUint(s[1:3], 16, 8)
	g, err2 := strconv.ParseUint(s[3:5], 16, 8)
	b, err3 := strconv.ParseUint(s[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return Color{}
	}
	return Color{R: uint8(r), G: uint8(g), B: uint8(b)}
}

// Hex returns the "#RRGGBB" form of c.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
