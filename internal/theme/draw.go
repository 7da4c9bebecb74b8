package theme

import (
	"encoding/binary"
	"fmt"
	"image"
)

// Style is the frame state that affects decoration pixels.
type Style struct {
	Activated   bool
	Maximized   bool
	Maximizable bool
	Hover       Location
}

// DrawContents paints the decorations around content of size w x h into
// canvas, which holds ARGB8888 rows of (w+2*Border)*4 bytes. The content
// area is cleared to transparent; the content surface is drawn over it.
func DrawContents(canvas []byte, w, h int, st Style, p Palette) error {
	fw, fh := AddBorders(w, h)
	if need := PxCount(w, h) * 4; len(canvas) < need {
		return fmt.Errorf("canvas holds %d bytes, need %d", len(canvas), need)
	}
	c := pixmap{pix: canvas, stride: fw * 4, bounds: image.Rect(0, 0, fw, fh)}

	border := p.Border(st.Activated)
	for _, r := range BorderRects(w, h) {
		c.fill(r, border)
	}
	c.fill(image.Rect(Border, Title, Border+w, Title+h), 0)

	glyph := p.GlyphColor()
	for _, b := range [...]Button{ButtonMinimize, ButtonMaximize, ButtonClose} {
		r, ok := ButtonRect(b, w)
		if !ok {
			continue
		}
		c.fill(r, p.Button(b, buttonShade(b, st)))
		drawGlyph(c, b, r, st.Maximized, glyph)
	}
	return nil
}

func buttonShade(b Button, st Style) ButtonShade {
	if b == ButtonMaximize && !st.Maximizable {
		return ShadeDisabled
	}
	if st.Hover == ButtonLocation(b) {
		return ShadeHovered
	}
	return ShadeRegular
}

const glyphSize = 8

func drawGlyph(c pixmap, b Button, r image.Rectangle, maximized bool, color uint32) {
	x0 := r.Min.X + (r.Dx()-glyphSize)/2
	y0 := r.Min.Y + (r.Dy()-glyphSize)/2
	box := image.Rect(x0, y0, x0+glyphSize, y0+glyphSize)
	switch b {
	case ButtonMinimize:
		c.fill(image.Rect(box.Min.X, box.Max.Y-2, box.Max.X, box.Max.Y), color)
	case ButtonMaximize:
		if maximized {
			c.outline(image.Rect(box.Min.X+2, box.Min.Y, box.Max.X, box.Max.Y-2), color)
			c.outline(image.Rect(box.Min.X, box.Min.Y+2, box.Max.X-2, box.Max.Y), color)
			return
		}
		c.outline(box, color)
	case ButtonClose:
		for i := 0; i < glyphSize; i++ {
			c.set(box.Min.X+i, box.Min.Y+i, color)
			c.set(box.Max.X-1-i, box.Min.Y+i, color)
		}
	}
}

// pixmap is an ARGB8888 view over a byte slice in native byte order.
type pixmap struct {
	pix    []byte
	stride int
	bounds image.Rectangle
}

func (c pixmap) set(x, y int, color uint32) {
	if !image.Pt(x, y).In(c.bounds) {
		return
	}
	binary.NativeEndian.PutUint32(c.pix[y*c.stride+x*4:], color)
}

func (c pixmap) fill(r image.Rectangle, color uint32) {
	r = r.Intersect(c.bounds)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := c.pix[y*c.stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			binary.NativeEndian.PutUint32(row[x*4:], color)
		}
	}
}

func (c pixmap) outline(r image.Rectangle, color uint32) {
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), color)
	c.fill(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), color)
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), color)
	c.fill(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), color)
}
