package theme

import "fmt"

// Button is one of the title bar buttons.
type Button int

const (
	ButtonMinimize Button = iota
	ButtonMaximize
	ButtonClose
)

func (b Button) String() string {
	switch b {
	case ButtonMinimize:
		return "minimize"
	case ButtonMaximize:
		return "maximize"
	case ButtonClose:
		return "close"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

// Location is the semantic zone of the decorated rectangle under the pointer.
type Location int

const (
	LocationNone Location = iota
	LocationTop
	LocationTopRight
	LocationRight
	LocationBottomRight
	LocationBottom
	LocationBottomLeft
	LocationLeft
	LocationTopLeft
	LocationTopBar
	LocationInside
	locationButton // first button location; ButtonLocation adds the Button
)

// ButtonLocation returns the location of button b.
func ButtonLocation(b Button) Location {
	return locationButton + Location(b)
}

// Button reports which button l designates, if any.
func (l Location) Button() (Button, bool) {
	if l < locationButton || l > locationButton+Location(ButtonClose) {
		return 0, false
	}
	return Button(l - locationButton), true
}

// IsButton reports whether l is one of the title bar buttons.
func (l Location) IsButton() bool {
	_, ok := l.Button()
	return ok
}

var locationNames = [...]string{
	LocationNone:        "none",
	LocationTop:         "top",
	LocationTopRight:    "top-right",
	LocationRight:       "right",
	LocationBottomRight: "bottom-right",
	LocationBottom:      "bottom",
	LocationBottomLeft:  "bottom-left",
	LocationLeft:        "left",
	LocationTopLeft:     "top-left",
	LocationTopBar:      "top-bar",
	LocationInside:      "inside",
}

func (l Location) String() string {
	if b, ok := l.Button(); ok {
		return "button-" + b.String()
	}
	if l >= 0 && int(l) < len(locationNames) {
		return locationNames[l]
	}
	return fmt.Sprintf("Location(%d)", int(l))
}

// ComputeLocation classifies a point of the decorated rectangle around
// content of size w x h.
//
// The top band runs down to y == Title inclusive. Columns left of Border and
// right of Border+w are corners or side edges. Inside the top band the resize
// strip is y <= Border plus the row touching the content; everything else is
// the bar, where buttons may override the bar but never an edge or corner.
func ComputeLocation(x, y float64, w, h int) Location {
	left := float64(Border)
	right := float64(Border + w)
	switch {
	case y <= Title:
		switch {
		case x < left:
			return LocationTopLeft
		case x >= right:
			return LocationTopRight
		case y <= Border || y >= Title:
			return LocationTop
		}
		return findButton(x-left, w)
	case y < float64(Title+h):
		switch {
		case x < left:
			return LocationLeft
		case x >= right:
			return LocationRight
		}
		return LocationInside
	default:
		switch {
		case x < left:
			return LocationBottomLeft
		case x >= right:
			return LocationBottomRight
		}
		return LocationBottom
	}
}

// findButton resolves a point of the bar, cx being relative to the left
// content edge.
func findButton(cx float64, w int) Location {
	for _, b := range [...]Button{ButtonClose, ButtonMaximize, ButtonMinimize} {
		off := buttonOffset(b)
		if w < off {
			continue
		}
		start := float64(w - off)
		if cx >= start && cx < start+ButtonWidth {
			return ButtonLocation(b)
		}
	}
	return LocationTopBar
}
