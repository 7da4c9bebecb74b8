package theme

import "image"

// Decoration thickness in pixels.
const (
	Border = 8  // left, right and bottom margin
	Title  = 24 // top margin, including the top resize strip
)

// Button hit-box geometry inside the title bar.
const (
	ButtonWidth   = 24
	ButtonSpacing = 8
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// PxCount returns the number of pixels of the decorated rectangle around
// content of size w x h.
func PxCount(w, h int) int {
	return (w + 2*Border) * (h + Border + Title)
}

// AddBorders converts a content size into the decorated size.
func AddBorders(w, h int) (int, int) {
	return w + 2*Border, h + Border + Title
}

// SubtractBorders converts a decorated size into the content size. The
// result is not clamped and may be non-positive.
func SubtractBorders(w, h int) (int, int) {
	return w - 2*Border, h - Border - Title
}

// ContentOffset is where the content surface sits inside the decorations.
func ContentOffset() (int, int) {
	return Border, Title
}

// buttonOffset is the distance from the right content edge to the left edge
// of a button. It doubles as the minimum content width showing the button.
func buttonOffset(b Button) int {
	return ButtonWidth + int(ButtonClose-b)*(ButtonWidth+ButtonSpacing)
}

// ButtonRect returns the pixel rectangle of b in decorated coordinates for
// content width w. ok is false when the content is too narrow for b.
func ButtonRect(b Button, w int) (r image.Rectangle, ok bool) {
	off := buttonOffset(b)
	if w < off {
		return image.Rectangle{}, false
	}
	x := Border + w - off
	return image.Rect(x, Border, x+ButtonWidth, Title), true
}

// BorderSide indexes the four border strips of a frame.
type BorderSide int

const (
	SideTop BorderSide = iota
	SideRight
	SideBottom
	SideLeft
	sideCount
)

// BorderRects returns the four border strips of the decorated rectangle for
// content of size w x h, indexed by BorderSide. Top and bottom span the full
// width; left and right sit between them.
func BorderRects(w, h int) [sideCount]image.Rectangle {
	fw, fh := AddBorders(w, h)
	var r [sideCount]image.Rectangle
	r[SideTop] = image.Rect(0, 0, fw, Title)
	r[SideBottom] = image.Rect(0, Title+h, fw, fh)
	r[SideLeft] = image.Rect(0, Title, Border, Title+h)
	r[SideRight] = image.Rect(Border+w, Title, fw, Title+h)
	return r
}
