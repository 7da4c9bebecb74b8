// Package pointer tracks the pointer over the decorations and turns clicks
// into window actions.
package pointer

import (
	"io"
	"log/slog"

	"github.com/1broseidon/csdframe/internal/meta"
	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/theme"
)

// Requester receives the window actions triggered by clicks.
type Requester interface {
	Resize(serial uint32, edge platform.ResizeEdge)
	Move(serial uint32)
	SetMinimized()
	SetMaximized()
	UnsetMaximized()
	RequestClose()
}

// CursorSetter changes the pointer image by cursor name. ChangeCursor reuses
// the serial of the last SetCursor.
type CursorSetter interface {
	SetCursor(name string, serial uint32)
	ChangeCursor(name string)
}

// Config wires a Controller.
type Config struct {
	Meta     *meta.Shared
	Surface  platform.SurfaceID // the decoration surface
	Requests Requester
	Cursor   CursorSetter // optional
	Logger   *slog.Logger
}

// Controller is the hover state machine of one frame.
type Controller struct {
	shared   *meta.Shared
	surface  platform.SurfaceID
	req      Requester
	cursor   CursorSetter
	logger   *slog.Logger
	location theme.Location
	x, y     float64
}

// New returns a controller with the pointer outside the frame.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		shared:   cfg.Meta,
		surface:  cfg.Surface,
		req:      cfg.Requests,
		cursor:   cfg.Cursor,
		logger:   logger,
		location: theme.LocationNone,
	}
}

// Location returns the current hover zone.
func (c *Controller) Location() theme.Location {
	return c.location
}

// HandleEvent processes a pointer event and reports whether the frame needs
// a repaint for hover feedback. Non-pointer events are ignored.
func (c *Controller) HandleEvent(ev platform.Event) (redraw bool) {
	switch ev := ev.(type) {
	case platform.PointerEnter:
		c.x, c.y = ev.X, ev.Y
		if ev.Surface == c.surface {
			serial := ev.Serial
			return c.update(&serial, true)
		}
		// A surface we do not manage, most likely the content.
		return c.clearHover()
	case platform.PointerLeave:
		return c.leave(ev.Serial)
	case platform.PointerMotion:
		if c.location == theme.LocationNone {
			return false
		}
		c.x, c.y = ev.X, ev.Y
		return c.update(nil, false)
	case platform.PointerButton:
		c.press(ev)
	}
	return false
}

func (c *Controller) leave(serial uint32) bool {
	redraw := c.clearHover()
	c.setCursor(theme.LocationNone, &serial)
	return redraw
}

// clearHover forgets the pointer location. A hovered button needs a repaint
// to drop its highlight.
func (c *Controller) clearHover() bool {
	redraw := false
	c.shared.Update(func(f *meta.Frame) {
		if f.PointerLocation.IsButton() {
			f.MarkDirty()
			redraw = true
		}
		f.PointerLocation = theme.LocationNone
	})
	c.location = theme.LocationNone
	return redraw
}

// update reclassifies the last coordinates. The cursor is set after the
// state lock is released.
func (c *Controller) update(serial *uint32, force bool) bool {
	var (
		next    theme.Location
		changed bool
		redraw  bool
	)
	c.shared.Update(func(f *meta.Frame) {
		if f.Decorated() {
			next = theme.ComputeLocation(c.x, c.y, f.Dimensions.Width, f.Dimensions.Height)
		} else {
			next = theme.LocationInside
		}
		if next == c.location && !force {
			return
		}
		changed = true
		if c.location.IsButton() || next.IsButton() {
			f.MarkDirty()
			redraw = true
		}
		f.PointerLocation = next
	})
	if changed {
		c.location = next
		c.setCursor(next, serial)
	}
	return redraw
}

func (c *Controller) setCursor(loc theme.Location, serial *uint32) {
	if c.cursor == nil {
		return
	}
	name := CursorName(loc)
	if serial != nil {
		c.cursor.SetCursor(name, *serial)
		return
	}
	c.cursor.ChangeCursor(name)
}

func (c *Controller) press(ev platform.PointerButton) {
	if ev.Button != platform.BtnLeft || ev.State != platform.ButtonPressed {
		return
	}
	loc := c.location
	if edge, ok := ResizeEdge(loc); ok {
		c.req.Resize(ev.Serial, edge)
		return
	}
	if loc == theme.LocationTopBar {
		c.req.Move(ev.Serial)
		return
	}
	b, ok := loc.Button()
	if !ok {
		return
	}
	c.logger.Debug("decoration button pressed", "button", b)
	switch b {
	case theme.ButtonMinimize:
		c.req.SetMinimized()
	case theme.ButtonMaximize:
		f := c.shared.Snapshot()
		if f.MaxSize != nil {
			// greyed out
			return
		}
		if f.Maximized {
			c.req.UnsetMaximized()
		} else {
			c.req.SetMaximized()
		}
	case theme.ButtonClose:
		c.req.RequestClose()
	}
}
