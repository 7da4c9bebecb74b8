//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/csdframe/internal/x11"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xrect"
)

// XdgShell returns the modern shell. X has no configure handshake, so the
// backend synthesizes one: the first commit of a toplevel is answered with
// a configure sequence, and later window manager changes produce fresh
// sequences.
func (b *LinuxBackend) XdgShell() XdgShell {
	return xdgShell{b}
}

// LegacyShell returns the legacy shell for window managers that cannot
// report states or run interactive moves.
func (b *LinuxBackend) LegacyShell() LegacyShell {
	return legacyShell{b}
}

// x11Toplevel is the toplevel role state of a surface.
type x11Toplevel struct {
	b      *LinuxBackend
	s      *x11Surface
	modern bool

	configured bool
	activated  bool
	minW, minH int
	maxW, maxH int
	saved      xrect.Rect
}

func (b *LinuxBackend) newToplevel(surface Surface, modern bool) (*x11Toplevel, error) {
	s, ok := surface.(*x11Surface)
	if !ok {
		return nil, fmt.Errorf("foreign surface %T", surface)
	}
	if s.role != nil {
		return nil, fmt.Errorf("surface %d already has a role", s.win.Id)
	}
	if err := b.conn.ClaimDecorations(s.win.Id); err != nil {
		return nil, err
	}
	t := &x11Toplevel{b: b, s: s, modern: modern, activated: true}
	s.role = t
	return t, nil
}

func (t *x11Toplevel) detach() {
	if t.s.role == t {
		t.s.role = nil
	}
}

// committed runs on every commit. The first one of a modern toplevel gets
// the initial configure, queued so it is not delivered from inside Commit.
func (t *x11Toplevel) committed() {
	if !t.modern || t.configured {
		return
	}
	t.configured = true
	t.b.conn.Post(func() { t.sendConfigure(0, 0) })
}

func (t *x11Toplevel) sendConfigure(width, height int) {
	t.b.emit(XdgToplevelConfigure{Width: width, Height: height, States: t.states()})
	t.b.emit(XdgSurfaceConfigure{Serial: t.b.nextSerial()})
}

func (t *x11Toplevel) states() []uint32 {
	names, err := t.b.conn.States(t.s.win.Id)
	if err != nil {
		names = nil
	}
	return xdgStates(names, t.activated)
}

// configureNotify reports a window size the client did not commit itself.
func (t *x11Toplevel) configureNotify(width, height int) {
	if width == t.s.width && height == t.s.height {
		return
	}
	if t.modern {
		t.sendConfigure(width, height)
		return
	}
	t.b.emit(LegacyConfigure{Edges: EdgeNone, Width: width, Height: height})
}

func (t *x11Toplevel) stateChanged() {
	if t.modern && t.configured {
		t.sendConfigure(0, 0)
	}
}

func (t *x11Toplevel) focusChanged(activated bool) {
	if t.activated == activated {
		return
	}
	t.activated = activated
	t.stateChanged()
}

func (t *x11Toplevel) protocol(name string, timestamp uint32) {
	switch name {
	case x11.ProtocolPing:
		t.b.pinged = t.s.win.Id
		if t.modern {
			t.b.emit(XdgPing{Serial: timestamp})
		} else {
			t.b.emit(LegacyPing{Serial: timestamp})
		}
	case x11.ProtocolDelete:
		if t.modern {
			t.b.emit(XdgToplevelClose{})
			return
		}
		t.b.logger.Debug("legacy shell has no close event, ignoring WM_DELETE_WINDOW", "window", t.s.win.Id)
	}
}

func (t *x11Toplevel) setTitle(title string) {
	if err := t.b.conn.SetTitle(t.s.win.Id, title); err != nil {
		t.b.logger.Debug("set title failed", "error", err)
	}
}

func (t *x11Toplevel) setClass(class string) {
	if err := t.b.conn.SetClass(t.s.win.Id, class); err != nil {
		t.b.logger.Debug("set class failed", "error", err)
	}
}

func (t *x11Toplevel) move() {
	if err := t.b.conn.StartMoveResize(t.s.win.Id, ewmh.Move); err != nil {
		t.b.logger.Debug("interactive move failed", "error", err)
	}
}

func (t *x11Toplevel) resize(edge ResizeEdge) {
	dir, ok := moveResizeDirection(edge)
	if !ok {
		return
	}
	if err := t.b.conn.StartMoveResize(t.s.win.Id, dir); err != nil {
		t.b.logger.Debug("interactive resize failed", "edge", edge, "error", err)
	}
}

func (t *x11Toplevel) requestStates(add bool, first, second string) {
	if err := t.b.conn.RequestStates(t.s.win.Id, add, first, second); err != nil {
		t.b.logger.Debug("state request failed", "state", first, "add", add, "error", err)
	}
}

// saveGeometry remembers the regular placement before the legacy shell
// takes over the window's geometry. The first saved placement wins.
func (t *x11Toplevel) saveGeometry() {
	if t.saved != nil {
		return
	}
	geom, err := t.b.conn.RootGeometry(t.s.win.Id)
	if err != nil {
		t.b.logger.Debug("read geometry failed", "error", err)
		return
	}
	t.saved = geom
}

func (t *x11Toplevel) place(m x11.Monitor) {
	t.b.conn.MoveResizeWindow(t.s.win.Id, m.X, m.Y, m.Width, m.Height)
}

func (t *x11Toplevel) monitor(output Output) (x11.Monitor, bool) {
	if m, ok := output.(x11.Monitor); ok {
		return m, true
	}
	m, err := t.b.conn.MonitorForWindow(t.s.win.Id)
	if err != nil {
		t.b.logger.Debug("no monitor for window", "error", err)
		return x11.Monitor{}, false
	}
	return m, true
}

// moveResizeDirection maps a resize edge to its _NET_WM_MOVERESIZE direction.
func moveResizeDirection(edge ResizeEdge) (int, bool) {
	switch edge {
	case EdgeTop:
		return ewmh.SizeTop, true
	case EdgeBottom:
		return ewmh.SizeBottom, true
	case EdgeLeft:
		return ewmh.SizeLeft, true
	case EdgeRight:
		return ewmh.SizeRight, true
	case EdgeTopLeft:
		return ewmh.SizeTopLeft, true
	case EdgeTopRight:
		return ewmh.SizeTopRight, true
	case EdgeBottomLeft:
		return ewmh.SizeBottomLeft, true
	case EdgeBottomRight:
		return ewmh.SizeBottomRight, true
	}
	return 0, false
}

// xdgStates converts _NET_WM_STATE atoms to raw toplevel states. A window
// counts as maximized only when it is maximized both ways.
func xdgStates(names []string, activated bool) []uint32 {
	var vert, horz bool
	var out []uint32
	for _, name := range names {
		switch name {
		case x11.StateMaximizedVert:
			vert = true
		case x11.StateMaximizedHorz:
			horz = true
		case x11.StateFullscreen:
			out = append(out, XdgStateFullscreen)
		}
	}
	if vert && horz {
		out = append(out, XdgStateMaximized)
	}
	if activated {
		out = append(out, XdgStateActivated)
	}
	return out
}

type xdgShell struct {
	b *LinuxBackend
}

func (sh xdgShell) GetXdgSurface(surface Surface) (XdgSurface, error) {
	t, err := sh.b.newToplevel(surface, true)
	if err != nil {
		return nil, err
	}
	return &xdgSurface{t: t}, nil
}

func (sh xdgShell) Pong(serial uint32) {
	if sh.b.pinged == 0 {
		return
	}
	if err := sh.b.conn.Pong(sh.b.pinged, serial); err != nil {
		sh.b.logger.Debug("pong failed", "error", err)
	}
}

type xdgSurface struct {
	t *x11Toplevel
}

func (x *xdgSurface) GetToplevel() (XdgToplevel, error) {
	return &xdgToplevel{t: x.t}, nil
}

// AckConfigure is a no-op: the window manager never waits for clients.
func (x *xdgSurface) AckConfigure(serial uint32) {}

func (x *xdgSurface) Destroy() { x.t.detach() }

type xdgToplevel struct {
	t *x11Toplevel
}

func (x *xdgToplevel) SetTitle(title string)                         { x.t.setTitle(title) }
func (x *xdgToplevel) SetAppID(appID string)                         { x.t.setClass(appID) }
func (x *xdgToplevel) Move(seat Seat, serial uint32)                 { x.t.move() }
func (x *xdgToplevel) Resize(seat Seat, serial uint32, e ResizeEdge) { x.t.resize(e) }

func (x *xdgToplevel) SetMaxSize(width, height int) {
	x.t.maxW, x.t.maxH = width, height
	x.sizeHints()
}

func (x *xdgToplevel) SetMinSize(width, height int) {
	x.t.minW, x.t.minH = width, height
	x.sizeHints()
}

func (x *xdgToplevel) sizeHints() {
	t := x.t
	if err := t.b.conn.SetSizeHints(t.s.win.Id, t.minW, t.minH, t.maxW, t.maxH); err != nil {
		t.b.logger.Debug("set size hints failed", "error", err)
	}
}

func (x *xdgToplevel) SetMaximized() {
	x.t.requestStates(true, x11.StateMaximizedVert, x11.StateMaximizedHorz)
}

func (x *xdgToplevel) UnsetMaximized() {
	x.t.requestStates(false, x11.StateMaximizedVert, x11.StateMaximizedHorz)
}

func (x *xdgToplevel) SetFullscreen(output Output) {
	if m, ok := output.(x11.Monitor); ok {
		if err := x.t.b.conn.FullscreenOn(x.t.s.win.Id, m); err != nil {
			x.t.b.logger.Debug("fullscreen monitor request failed", "monitor", m.Name, "error", err)
		}
	}
	x.t.requestStates(true, x11.StateFullscreen, "")
}

func (x *xdgToplevel) UnsetFullscreen() {
	x.t.requestStates(false, x11.StateFullscreen, "")
}

func (x *xdgToplevel) SetMinimized() {
	if err := x.t.b.conn.Minimize(x.t.s.win.Id); err != nil {
		x.t.b.logger.Debug("minimize failed", "error", err)
	}
}

func (x *xdgToplevel) Destroy() { x.t.detach() }

type legacyShell struct {
	b *LinuxBackend
}

func (sh legacyShell) GetShellSurface(surface Surface) (LegacyShellSurface, error) {
	t, err := sh.b.newToplevel(surface, false)
	if err != nil {
		return nil, err
	}
	return &legacyShellSurface{t: t}, nil
}

// legacyShellSurface places the window itself for maximize and fullscreen
// since the legacy shell gets no state back from the window manager.
type legacyShellSurface struct {
	t *x11Toplevel
}

func (l *legacyShellSurface) Pong(serial uint32) {
	if err := l.t.b.conn.Pong(l.t.s.win.Id, serial); err != nil {
		l.t.b.logger.Debug("pong failed", "error", err)
	}
}

func (l *legacyShellSurface) Move(seat Seat, serial uint32)                 { l.t.move() }
func (l *legacyShellSurface) Resize(seat Seat, serial uint32, e ResizeEdge) { l.t.resize(e) }
func (l *legacyShellSurface) SetTitle(title string)                         { l.t.setTitle(title) }
func (l *legacyShellSurface) SetClass(class string)                         { l.t.setClass(class) }

// SetToplevel returns to the placement saved before the last maximize or
// fullscreen request.
func (l *legacyShellSurface) SetToplevel() {
	t := l.t
	if t.saved == nil {
		return
	}
	g := t.saved
	t.saved = nil
	t.b.conn.MoveResizeWindow(t.s.win.Id, g.X(), g.Y(), g.Width(), g.Height())
}

func (l *legacyShellSurface) SetMaximized(output Output) {
	m, ok := l.t.monitor(output)
	if !ok {
		return
	}
	l.t.saveGeometry()
	l.t.place(l.t.b.conn.WorkArea(m))
}

func (l *legacyShellSurface) SetFullscreen(output Output) {
	m, ok := l.t.monitor(output)
	if !ok {
		return
	}
	l.t.saveGeometry()
	l.t.place(m)
}
