package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the root coordinate (x, y) is on m.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// Intersect returns the part of m inside the given rectangle. ok is false
// when they do not overlap.
func (m Monitor) Intersect(x, y, width, height int) (Monitor, bool) {
	x1, y1 := max(m.X, x), max(m.Y, y)
	x2, y2 := min(m.X+m.Width, x+width), min(m.Y+m.Height, y+height)
	if x2 <= x1 || y2 <= y1 {
		return m, false
	}
	out := m
	out.X, out.Y, out.Width, out.Height = x1, y1, x2-x1, y2-y1
	return out, true
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// disabled CRTC
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return monitors, nil
}

// MonitorByName returns the monitor driven by the named RandR output.
func (c *Connection) MonitorByName(name string) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	for _, m := range monitors {
		if m.Name == name {
			return m, nil
		}
	}
	return Monitor{}, fmt.Errorf("monitor %q not found", name)
}

// MonitorForWindow returns the monitor holding the center of win, falling
// back to the monitor under the pointer and then to the first monitor.
func (c *Connection) MonitorForWindow(win xproto.Window) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	if geom, err := c.RootGeometry(win); err == nil {
		cx, cy := geom.X()+geom.Width()/2, geom.Y()+geom.Height()/2
		for _, m := range monitors {
			if m.Contains(cx, cy) {
				return m, nil
			}
		}
	}
	if x, y, err := c.PointerPosition(); err == nil {
		for _, m := range monitors {
			if m.Contains(x, y) {
				return m, nil
			}
		}
	}
	return monitors[0], nil
}

// WorkArea shrinks m to the current desktop's work area, which excludes
// panels and docks. m is returned unchanged when the window manager does
// not publish one.
func (c *Connection) WorkArea(m Monitor) Monitor {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return m
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(areas) {
		desktop = int(current)
	}
	wa := areas[desktop]
	if usable, ok := m.Intersect(wa.X, wa.Y, int(wa.Width), int(wa.Height)); ok {
		return usable
	}
	return m
}
