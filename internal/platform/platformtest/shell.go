package platformtest

import "github.com/1broseidon/csdframe/internal/platform"

// LegacyShell is a recording wl_shell style global.
type LegacyShell struct {
	*Recorder
	Fail    bool
	Surface *LegacyShellSurface
}

// NewLegacyShell shares rec with other fakes so calls interleave in one log.
func NewLegacyShell(rec *Recorder) *LegacyShell {
	return &LegacyShell{Recorder: rec}
}

func (s *LegacyShell) GetShellSurface(surface platform.Surface) (platform.LegacyShellSurface, error) {
	if s.Fail {
		return nil, ErrInjected
	}
	s.Surface = &LegacyShellSurface{rec: s.Recorder}
	s.record("wl_shell.get_shell_surface %d", surface.ID())
	return s.Surface, nil
}

// LegacyShellSurface records role requests.
type LegacyShellSurface struct {
	rec       *Recorder
	Title     string
	Class     string
	LastEdges platform.ResizeEdge
}

func (s *LegacyShellSurface) Pong(serial uint32) { s.rec.record("shell_surface.pong %d", serial) }

func (s *LegacyShellSurface) Move(seat platform.Seat, serial uint32) {
	s.rec.record("shell_surface.move %d", serial)
}

func (s *LegacyShellSurface) Resize(seat platform.Seat, serial uint32, edges platform.ResizeEdge) {
	s.LastEdges = edges
	s.rec.record("shell_surface.resize %d %d", serial, edges)
}

func (s *LegacyShellSurface) SetToplevel() { s.rec.record("shell_surface.set_toplevel") }

func (s *LegacyShellSurface) SetFullscreen(output platform.Output) {
	s.rec.record("shell_surface.set_fullscreen")
}

func (s *LegacyShellSurface) SetMaximized(output platform.Output) {
	s.rec.record("shell_surface.set_maximized")
}

func (s *LegacyShellSurface) SetTitle(title string) {
	s.Title = title
	s.rec.record("shell_surface.set_title %s", title)
}

func (s *LegacyShellSurface) SetClass(class string) {
	s.Class = class
	s.rec.record("shell_surface.set_class %s", class)
}

// XdgShell is a recording xdg_wm_base style global.
type XdgShell struct {
	*Recorder
	Fail     bool
	Surface  *XdgSurface
	Toplevel *XdgToplevel
}

// NewXdgShell shares rec with other fakes so calls interleave in one log.
func NewXdgShell(rec *Recorder) *XdgShell {
	return &XdgShell{Recorder: rec}
}

func (s *XdgShell) GetXdgSurface(surface platform.Surface) (platform.XdgSurface, error) {
	if s.Fail {
		return nil, ErrInjected
	}
	s.Surface = &XdgSurface{shell: s}
	s.record("xdg_wm_base.get_xdg_surface %d", surface.ID())
	return s.Surface, nil
}

func (s *XdgShell) Pong(serial uint32) { s.record("xdg_wm_base.pong %d", serial) }

// XdgSurface records acks.
type XdgSurface struct {
	shell *XdgShell
}

func (s *XdgSurface) GetToplevel() (platform.XdgToplevel, error) {
	t := &XdgToplevel{rec: s.shell.Recorder}
	s.shell.Toplevel = t
	s.shell.record("xdg_surface.get_toplevel")
	return t, nil
}

func (s *XdgSurface) AckConfigure(serial uint32) {
	s.shell.record("xdg_surface.ack_configure %d", serial)
}

func (s *XdgSurface) Destroy() { s.shell.record("xdg_surface.destroy") }

// XdgToplevel records role requests.
type XdgToplevel struct {
	rec       *Recorder
	Title     string
	AppID     string
	MinSize   [2]int
	MaxSize   [2]int
	LastEdges platform.ResizeEdge
}

func (t *XdgToplevel) SetTitle(title string) {
	t.Title = title
	t.rec.record("toplevel.set_title %s", title)
}

func (t *XdgToplevel) SetAppID(appID string) {
	t.AppID = appID
	t.rec.record("toplevel.set_app_id %s", appID)
}

func (t *XdgToplevel) Move(seat platform.Seat, serial uint32) {
	t.rec.record("toplevel.move %d", serial)
}

func (t *XdgToplevel) Resize(seat platform.Seat, serial uint32, edges platform.ResizeEdge) {
	t.LastEdges = edges
	t.rec.record("toplevel.resize %d %d", serial, edges)
}

func (t *XdgToplevel) SetMaxSize(width, height int) {
	t.MaxSize = [2]int{width, height}
	t.rec.record("toplevel.set_max_size %d %d", width, height)
}

func (t *XdgToplevel) SetMinSize(width, height int) {
	t.MinSize = [2]int{width, height}
	t.rec.record("toplevel.set_min_size %d %d", width, height)
}

func (t *XdgToplevel) SetMaximized()   { t.rec.record("toplevel.set_maximized") }
func (t *XdgToplevel) UnsetMaximized() { t.rec.record("toplevel.unset_maximized") }

func (t *XdgToplevel) SetFullscreen(output platform.Output) {
	t.rec.record("toplevel.set_fullscreen")
}

func (t *XdgToplevel) UnsetFullscreen() { t.rec.record("toplevel.unset_fullscreen") }
func (t *XdgToplevel) SetMinimized()    { t.rec.record("toplevel.set_minimized") }
func (t *XdgToplevel) Destroy()         { t.rec.record("toplevel.destroy") }

// CursorLoader serves a theme holding the given cursor names.
type CursorLoader struct {
	Names []string
	Fail  bool
}

func (l *CursorLoader) LoadTheme(name string, size int, shm platform.Shm) (platform.CursorTheme, error) {
	if l.Fail {
		return nil, ErrInjected
	}
	t := CursorTheme{}
	for _, n := range l.Names {
		t[n] = &Cursor{Name: n, Size: size}
	}
	return t, nil
}

// CursorTheme maps names to cursors.
type CursorTheme map[string]*Cursor

func (t CursorTheme) Cursor(name string) (platform.Cursor, bool) {
	c, ok := t[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// Cursor is a single-frame cursor with its hotspot in the middle.
type Cursor struct {
	Name string
	Size int
}

func (c *Cursor) Image(frame int) (platform.Buffer, platform.CursorImage, bool) {
	if frame != 0 {
		return nil, platform.CursorImage{}, false
	}
	img := platform.CursorImage{Width: c.Size, Height: c.Size, HotspotX: c.Size / 2, HotspotY: c.Size / 2}
	return &Buffer{Width: c.Size, Height: c.Size, Stride: c.Size * 4, Label: c.Name}, img, true
}
