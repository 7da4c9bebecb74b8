//go:build linux

package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/csdframe/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
	"golang.org/x/sys/unix"
)

// LinuxBackend implements the host globals on top of an X11 connection.
// Every surface is an X window, sub-surfaces are child windows and buffers
// are pushed with PutImage on commit. Events are delivered on the event loop
// goroutine started by Run.
type LinuxBackend struct {
	conn    *x11.Connection
	logger  *slog.Logger
	handler func(Event)

	surfaces map[xproto.Window]*x11Surface
	cursors  map[uint16]xproto.Cursor
	entered  xproto.Window
	pinged   xproto.Window
	serial   uint32
}

var (
	_ Compositor    = (*LinuxBackend)(nil)
	_ Subcompositor = (*LinuxBackend)(nil)
	_ Shm           = (*LinuxBackend)(nil)
	_ Seat          = (*LinuxBackend)(nil)
	_ CursorLoader  = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LinuxBackend{
		conn:     conn,
		logger:   logger,
		surfaces: make(map[xproto.Window]*x11Surface),
		cursors:  make(map[uint16]xproto.Cursor),
	}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, logger), nil
}

// Connection returns the underlying X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	return b.conn
}

// SetEventHandler installs the sink for translated events. It must be set
// before Run.
func (b *LinuxBackend) SetEventHandler(fn func(Event)) {
	b.handler = fn
}

// Run dispatches events until ctx is done or Quit is called.
func (b *LinuxBackend) Run(ctx context.Context) error {
	return b.conn.Run(ctx)
}

// Quit stops Run.
func (b *LinuxBackend) Quit() {
	b.conn.Quit()
}

// Post runs fn on the event loop goroutine.
func (b *LinuxBackend) Post(fn func()) {
	b.conn.Post(fn)
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// PreferModernShell reports whether the window manager can drive the
// modern shell: interactive moves and state feedback through EWMH.
func (b *LinuxBackend) PreferModernShell() bool {
	return b.conn.SupportsMoveResize()
}

// Output resolves a monitor by RandR output name for fullscreen requests.
func (b *LinuxBackend) Output(name string) (Output, error) {
	return b.conn.MonitorByName(name)
}

func (b *LinuxBackend) emit(ev Event) {
	if b.handler != nil {
		b.handler(ev)
	}
}

func (b *LinuxBackend) nextSerial() uint32 {
	b.serial++
	return b.serial
}

// CreateSurface implements Compositor.
func (b *LinuxBackend) CreateSurface() (Surface, error) {
	win, err := b.conn.CreateWindow()
	if err != nil {
		return nil, err
	}
	s := &x11Surface{b: b, win: win, width: 1, height: 1}
	b.surfaces[win.Id] = s
	b.listen(s)
	return s, nil
}

// GetSubsurface implements Subcompositor.
func (b *LinuxBackend) GetSubsurface(child, parent Surface) (Subsurface, error) {
	c, ok := child.(*x11Surface)
	if !ok {
		return nil, fmt.Errorf("foreign child surface %T", child)
	}
	p, ok := parent.(*x11Surface)
	if !ok {
		return nil, fmt.Errorf("foreign parent surface %T", parent)
	}
	if err := b.conn.Reparent(c.win.Id, p.win.Id, 0, 0); err != nil {
		return nil, fmt.Errorf("reparent window: %w", err)
	}
	c.child = true
	c.mapIfReady()
	return &x11Subsurface{child: c}, nil
}

// CreatePool implements Shm. The pool maps its own duplicate of fd.
func (b *LinuxBackend) CreatePool(fd uintptr, size int) (Pool, error) {
	dup, err := unix.Dup(int(fd))
	if err != nil {
		return nil, fmt.Errorf("dup pool fd: %w", err)
	}
	data, err := unix.Mmap(dup, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(dup)
		return nil, fmt.Errorf("map pool: %w", err)
	}
	return &x11Pool{fd: dup, data: data}, nil
}

// GetPointer implements Seat. X has a single core pointer.
func (b *LinuxBackend) GetPointer() (Pointer, error) {
	return &x11Pointer{b: b}, nil
}

// LoadTheme implements CursorLoader with the core cursor font. X core
// cursors are not themed, so name and size only affect the reported
// image geometry.
func (b *LinuxBackend) LoadTheme(name string, size int, shm Shm) (CursorTheme, error) {
	b.logger.Debug("using core cursor font", "theme", name, "size", size)
	return fontCursorTheme{b: b, size: size}, nil
}

func (b *LinuxBackend) fontCursor(glyph uint16) (xproto.Cursor, error) {
	if c, ok := b.cursors[glyph]; ok {
		return c, nil
	}
	c, err := b.conn.FontCursor(glyph)
	if err != nil {
		return 0, err
	}
	b.cursors[glyph] = c
	return c, nil
}

// listen connects the xevent callbacks translating X events on s.
func (b *LinuxBackend) listen(s *x11Surface) {
	xu := b.conn.XUtil
	id := s.win.Id

	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			s.paint()
		}
	}).Connect(xu, id)

	xevent.EnterNotifyFun(func(_ *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		b.entered = id
		b.emit(PointerEnter{
			Serial:  uint32(ev.Time),
			Surface: SurfaceID(id),
			X:       float64(ev.EventX),
			Y:       float64(ev.EventY),
		})
	}).Connect(xu, id)

	xevent.LeaveNotifyFun(func(_ *xgbutil.XUtil, ev xevent.LeaveNotifyEvent) {
		if b.entered == id {
			b.entered = 0
		}
		b.emit(PointerLeave{Serial: uint32(ev.Time), Surface: SurfaceID(id)})
	}).Connect(xu, id)

	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		b.emit(PointerMotion{Time: uint32(ev.Time), X: float64(ev.EventX), Y: float64(ev.EventY)})
	}).Connect(xu, id)

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if btn, ok := linuxButton(ev.Detail); ok {
			b.emit(PointerButton{Serial: uint32(ev.Time), Time: uint32(ev.Time), Button: btn, State: ButtonPressed})
		}
	}).Connect(xu, id)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if btn, ok := linuxButton(ev.Detail); ok {
			b.emit(PointerButton{Serial: uint32(ev.Time), Time: uint32(ev.Time), Button: btn, State: ButtonReleased})
		}
	}).Connect(xu, id)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if s.role != nil {
			s.role.configureNotify(int(ev.Width), int(ev.Height))
		}
	}).Connect(xu, id)

	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if s.role != nil && b.conn.IsStateProperty(ev.Atom) {
			s.role.stateChanged()
		}
	}).Connect(xu, id)

	xevent.FocusInFun(func(_ *xgbutil.XUtil, ev xevent.FocusInEvent) {
		if s.role != nil && ev.Detail != xproto.NotifyDetailPointer {
			s.role.focusChanged(true)
		}
	}).Connect(xu, id)

	xevent.FocusOutFun(func(_ *xgbutil.XUtil, ev xevent.FocusOutEvent) {
		if s.role != nil && ev.Detail != xproto.NotifyDetailPointer {
			s.role.focusChanged(false)
		}
	}).Connect(xu, id)

	xevent.ClientMessageFun(func(_ *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if s.role == nil {
			return
		}
		if name, ts, ok := b.conn.Protocol(ev); ok {
			s.role.protocol(name, ts)
		}
	}).Connect(xu, id)
}

// linuxButton maps core pointer buttons to Linux input event codes.
// Wheel buttons are dropped.
func linuxButton(detail xproto.Button) (uint32, bool) {
	switch detail {
	case xproto.ButtonIndex1:
		return BtnLeft, true
	case xproto.ButtonIndex2:
		return BtnMiddle, true
	case xproto.ButtonIndex3:
		return BtnRight, true
	}
	return 0, false
}

// x11Surface is a surface backed by an X window.
type x11Surface struct {
	b   *LinuxBackend
	win *xwindow.Window

	attached  Buffer
	committed *x11Buffer
	width     int
	height    int
	mapped    bool
	child     bool
	role      *x11Toplevel
}

func (s *x11Surface) ID() SurfaceID { return SurfaceID(s.win.Id) }

func (s *x11Surface) Attach(buf Buffer, x, y int) {
	s.attached = buf
}

// Damage is a no-op: commits repaint the whole window.
func (s *x11Surface) Damage(x, y, width, height int) {}

func (s *x11Surface) Commit() {
	if s.role != nil {
		s.role.committed()
	}
	buf, ok := s.attached.(*x11Buffer)
	if !ok || buf.destroyed {
		return
	}
	if buf.width != s.width || buf.height != s.height {
		s.width, s.height = buf.width, buf.height
		s.win.Resize(buf.width, buf.height)
	}
	s.committed = buf
	s.paint()
	s.mapIfReady()
}

func (s *x11Surface) mapIfReady() {
	if s.mapped || s.committed == nil {
		return
	}
	if s.role == nil && !s.child {
		return
	}
	s.win.Map()
	s.mapped = true
}

func (s *x11Surface) paint() {
	buf := s.committed
	if buf == nil || buf.destroyed || buf.pool.data == nil {
		return
	}
	end := buf.offset + buf.stride*buf.height
	if end > len(buf.pool.data) {
		s.b.logger.Debug("buffer outside pool mapping", "window", s.win.Id, "end", end, "pool", len(buf.pool.data))
		return
	}
	err := s.b.conn.PutPixels(s.win.Id, buf.pool.data[buf.offset:end], buf.width, buf.height, buf.stride)
	if err != nil {
		s.b.logger.Debug("paint failed", "window", s.win.Id, "error", err)
	}
}

func (s *x11Surface) Destroy() {
	xevent.Detach(s.b.conn.XUtil, s.win.Id)
	s.win.Destroy()
	delete(s.b.surfaces, s.win.Id)
}

// x11Subsurface keeps a child window inside its parent.
type x11Subsurface struct {
	child *x11Surface
}

func (s *x11Subsurface) SetPosition(x, y int) {
	s.child.win.Move(x, y)
}

// SetDesync is a no-op: child windows always update on their own.
func (s *x11Subsurface) SetDesync() {}

func (s *x11Subsurface) Destroy() {
	c := s.child
	c.win.Unmap()
	c.mapped = false
	c.child = false
	if err := c.b.conn.Reparent(c.win.Id, c.b.conn.Root, 0, 0); err != nil {
		c.b.logger.Debug("reparent to root failed", "window", c.win.Id, "error", err)
	}
}

// x11Pool is the server side view of a client shm pool.
type x11Pool struct {
	fd   int
	data []byte
}

func (p *x11Pool) Resize(size int) error {
	data, err := unix.Mmap(p.fd, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("remap pool to %d bytes: %w", size, err)
	}
	_ = unix.Munmap(p.data)
	p.data = data
	return nil
}

func (p *x11Pool) CreateBuffer(offset, width, height, stride int, format Format) (Buffer, error) {
	if format != FormatARGB8888 {
		return nil, fmt.Errorf("unsupported format %d", format)
	}
	if offset < 0 || offset+stride*height > len(p.data) {
		return nil, fmt.Errorf("buffer [%d,%d) outside pool of %d bytes", offset, offset+stride*height, len(p.data))
	}
	return &x11Buffer{pool: p, offset: offset, width: width, height: height, stride: stride}, nil
}

func (p *x11Pool) Destroy() {
	if p.data != nil {
		_ = unix.Munmap(p.data)
		p.data = nil
	}
	_ = unix.Close(p.fd)
}

// x11Buffer is a region of a pool. ARGB8888 in native order is laid out
// as BGRA, which is what ZPixmap PutImage expects.
type x11Buffer struct {
	pool      *x11Pool
	offset    int
	width     int
	height    int
	stride    int
	destroyed bool
}

func (b *x11Buffer) Destroy() { b.destroyed = true }

// x11Pointer applies cursors to the window under the pointer.
type x11Pointer struct {
	b *LinuxBackend
}

func (p *x11Pointer) SetCursor(serial uint32, surface Surface, hotspotX, hotspotY int) {
	s, ok := surface.(*x11Surface)
	if !ok || p.b.entered == 0 {
		return
	}
	cb, ok := s.attached.(*cursorBuffer)
	if !ok {
		return
	}
	p.b.conn.SetWindowCursor(p.b.entered, cb.cursor)
}

// Release is a no-op: the core pointer is never released.
func (p *x11Pointer) Release() {}

var fontCursorGlyphs = map[string]uint16{
	"left_ptr":            xcursor.LeftPtr,
	"top_side":            xcursor.TopSide,
	"bottom_side":         xcursor.BottomSide,
	"left_side":           xcursor.LeftSide,
	"right_side":          xcursor.RightSide,
	"top_left_corner":     xcursor.TopLeftCorner,
	"top_right_corner":    xcursor.TopRightCorner,
	"bottom_left_corner":  xcursor.BottomLeftCorner,
	"bottom_right_corner": xcursor.BottomRightCorner,
}

type fontCursorTheme struct {
	b    *LinuxBackend
	size int
}

func (t fontCursorTheme) Cursor(name string) (Cursor, bool) {
	glyph, ok := fontCursorGlyphs[name]
	if !ok {
		return nil, false
	}
	return fontCursor{theme: t, glyph: glyph}, true
}

type fontCursor struct {
	theme fontCursorTheme
	glyph uint16
}

func (c fontCursor) Image(frame int) (Buffer, CursorImage, bool) {
	if frame != 0 {
		return nil, CursorImage{}, false
	}
	cursor, err := c.theme.b.fontCursor(c.glyph)
	if err != nil {
		c.theme.b.logger.Debug("create font cursor failed", "glyph", c.glyph, "error", err)
		return nil, CursorImage{}, false
	}
	size := c.theme.size
	img := CursorImage{Width: size, Height: size, HotspotX: size / 2, HotspotY: size / 2}
	return &cursorBuffer{cursor: cursor}, img, true
}

// cursorBuffer carries a server cursor through a cursor surface.
type cursorBuffer struct {
	cursor xproto.Cursor
}

func (*cursorBuffer) Destroy() {}
