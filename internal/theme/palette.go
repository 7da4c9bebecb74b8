package theme

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette holds the fixed decoration colours.
type Palette struct {
	ActiveBorder   colorful.Color
	InactiveBorder colorful.Color
	Minimize       colorful.Color
	Maximize       colorful.Color
	Close          colorful.Color
	Glyph          colorful.Color
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() Palette {
	return Palette{
		ActiveBorder:   mustHex("#444444"),
		InactiveBorder: mustHex("#666666"),
		Minimize:       mustHex("#2c3e50"),
		Maximize:       mustHex("#2c3e50"),
		Close:          mustHex("#c0392b"),
		Glyph:          mustHex("#f5f7fa"),
	}
}

// mustHex parses a palette constant.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ButtonShade selects the variant of a button colour.
type ButtonShade int

const (
	ShadeRegular ButtonShade = iota
	ShadeHovered
	ShadeDisabled
)

var (
	white = colorful.Color{R: 1, G: 1, B: 1}
	grey  = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
)

// Border returns the border colour for the activation state.
func (p Palette) Border(activated bool) uint32 {
	if activated {
		return argb(p.ActiveBorder)
	}
	return argb(p.InactiveBorder)
}

// Button returns the colour of b in the given shade. Hovered buttons are
// lightened and disabled ones washed out towards grey, both in Lab space.
func (p Palette) Button(b Button, shade ButtonShade) uint32 {
	var base colorful.Color
	switch b {
	case ButtonMinimize:
		base = p.Minimize
	case ButtonMaximize:
		base = p.Maximize
	default:
		base = p.Close
	}
	switch shade {
	case ShadeHovered:
		base = base.BlendLab(white, 0.25)
	case ShadeDisabled:
		base = base.BlendLab(grey, 0.7)
	}
	return argb(base.Clamped())
}

// GlyphColor returns the colour of button icons.
func (p Palette) GlyphColor() uint32 {
	return argb(p.Glyph)
}

func argb(c colorful.Color) uint32 {
	r, g, b := c.RGB255()
	return 0xFF<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
