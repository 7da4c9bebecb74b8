package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xrect"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// surfaceEventMask is selected on every window backing a surface.
const surfaceEventMask = xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskFocusChange |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease

// CreateWindow creates an unmapped 1x1 window under the root window that
// listens for the surface event set.
func (c *Connection) CreateWindow() (*xwindow.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("generate window id: %w", err)
	}
	err = win.CreateChecked(c.Root, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwEventMask,
		0, surfaceEventMask)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	return win, nil
}

// Reparent moves child under parent at (x, y).
func (c *Connection) Reparent(child, parent xproto.Window, x, y int) error {
	return xproto.ReparentWindowChecked(c.XUtil.Conn(), child, parent, int16(x), int16(y)).Check()
}

// rowsPerRequest returns how many rows of stride bytes fit in one PutImage.
// The fixed part of the request is 28 bytes.
func rowsPerRequest(stride int) int {
	return max((xgbutil.MaxReqSize-28)/stride, 1)
}

// PutPixels draws width x height BGRA pixels, rows stride bytes apart, at
// the window origin. Large images are split into several requests.
func (c *Connection) PutPixels(win xproto.Window, pix []byte, width, height, stride int) error {
	rowBytes := width * 4
	if width <= 0 || height <= 0 || stride < rowBytes || len(pix) < stride*(height-1)+rowBytes {
		return fmt.Errorf("put pixels: invalid %dx%d image, stride %d, %d bytes", width, height, stride, len(pix))
	}

	depth := c.XUtil.Screen().RootDepth
	rows := rowsPerRequest(rowBytes)
	chunk := make([]byte, 0, rows*rowBytes)
	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		chunk = chunk[:0]
		for r := y; r < y+n; r++ {
			chunk = append(chunk, pix[r*stride:r*stride+rowBytes]...)
		}
		xproto.PutImage(c.XUtil.Conn(), xproto.ImageFormatZPixmap,
			xproto.Drawable(win), c.XUtil.GC(),
			uint16(width), uint16(n), 0, int16(y),
			0, depth, chunk)
	}
	return nil
}

// Geometry returns the window geometry relative to its parent.
func (c *Connection) Geometry(win xproto.Window) (xrect.Rect, error) {
	return xwindow.RawGeometry(c.XUtil, xproto.Drawable(win))
}

// RootGeometry returns the window geometry in root coordinates.
func (c *Connection) RootGeometry(win xproto.Window) (xrect.Rect, error) {
	geom, err := c.Geometry(win)
	if err != nil {
		return nil, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return nil, err
	}
	return xrect.New(int(translate.DstX), int(translate.DstY), geom.Width(), geom.Height()), nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry,
// through the window manager when it supports _NET_MOVERESIZE_WINDOW.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) {
	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
}

// FontCursor creates a cursor from the core cursor font.
func (c *Connection) FontCursor(glyph uint16) (xproto.Cursor, error) {
	return xcursor.CreateCursor(c.XUtil, glyph)
}

// SetWindowCursor shows cursor while the pointer is over win.
func (c *Connection) SetWindowCursor(win xproto.Window, cursor xproto.Cursor) {
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win, xproto.CwCursor, []uint32{uint32(cursor)})
}

// PointerPosition returns the pointer position in root coordinates.
func (c *Connection) PointerPosition() (int, int, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}
