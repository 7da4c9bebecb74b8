package platform

// SurfaceID is a platform-neutral surface identifier.
type SurfaceID uint32

// Format is a pixel format understood by shm pools.
type Format uint32

// FormatARGB8888 is 32-bit ARGB stored in native (little-endian) byte order.
const FormatARGB8888 Format = 0

// Linux input event codes for pointer buttons.
const (
	BtnLeft   uint32 = 0x110
	BtnRight  uint32 = 0x111
	BtnMiddle uint32 = 0x112
)

// ButtonState reports whether a pointer button went down or up.
type ButtonState uint32

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

// ResizeEdge identifies the edge or corner grabbed by an interactive resize.
// Values match the xdg_toplevel resize_edge enum.
type ResizeEdge uint32

const (
	EdgeNone        ResizeEdge = 0
	EdgeTop         ResizeEdge = 1
	EdgeBottom      ResizeEdge = 2
	EdgeLeft        ResizeEdge = 4
	EdgeTopLeft     ResizeEdge = 5
	EdgeBottomLeft  ResizeEdge = 6
	EdgeRight       ResizeEdge = 8
	EdgeTopRight    ResizeEdge = 9
	EdgeBottomRight ResizeEdge = 10
)

// Raw xdg_toplevel state values carried by XdgToplevelConfigure.
const (
	XdgStateMaximized  uint32 = 1
	XdgStateFullscreen uint32 = 2
	XdgStateResizing   uint32 = 3
	XdgStateActivated  uint32 = 4
)

// Buffer is a rectangular view into a shm pool.
type Buffer interface {
	Destroy()
}

// Surface is a server-side rectangle that displays attached buffers.
type Surface interface {
	ID() SurfaceID
	Attach(buf Buffer, x, y int)
	Damage(x, y, width, height int)
	Commit()
	Destroy()
}

// Subsurface places a child surface relative to its parent.
type Subsurface interface {
	SetPosition(x, y int)
	SetDesync()
	Destroy()
}

// Compositor creates surfaces.
type Compositor interface {
	CreateSurface() (Surface, error)
}

// Subcompositor turns surfaces into sub-surfaces of another surface.
type Subcompositor interface {
	GetSubsurface(child, parent Surface) (Subsurface, error)
}

// Pool is a shared-memory region from which buffers are carved.
type Pool interface {
	Resize(size int) error
	CreateBuffer(offset, width, height, stride int, format Format) (Buffer, error)
	Destroy()
}

// Shm creates pools over a file descriptor shared with the server.
type Shm interface {
	CreatePool(fd uintptr, size int) (Pool, error)
}

// Output is an opaque handle to a monitor, used for fullscreen requests.
type Output interface{}

// Pointer is the pointer device of a seat.
type Pointer interface {
	SetCursor(serial uint32, surface Surface, hotspotX, hotspotY int)
	Release()
}

// Seat groups the input devices handed to interactive move/resize requests.
type Seat interface {
	GetPointer() (Pointer, error)
}

// CursorImage describes one frame of a themed cursor.
type CursorImage struct {
	Width    int
	Height   int
	HotspotX int
	HotspotY int
}

// Cursor is a named cursor from a theme.
type Cursor interface {
	Image(frame int) (Buffer, CursorImage, bool)
}

// CursorTheme resolves cursor names.
type CursorTheme interface {
	Cursor(name string) (Cursor, bool)
}

// CursorLoader loads cursor themes.
type CursorLoader interface {
	LoadTheme(name string, size int, shm Shm) (CursorTheme, error)
}

// LegacyShell is the wl_shell style shell global.
type LegacyShell interface {
	GetShellSurface(surface Surface) (LegacyShellSurface, error)
}

// LegacyShellSurface is the wl_shell_surface style role object.
type LegacyShellSurface interface {
	Pong(serial uint32)
	Move(seat Seat, serial uint32)
	Resize(seat Seat, serial uint32, edges ResizeEdge)
	SetToplevel()
	SetFullscreen(output Output)
	SetMaximized(output Output)
	SetTitle(title string)
	SetClass(class string)
}

// XdgShell is the xdg_wm_base style shell global.
type XdgShell interface {
	GetXdgSurface(surface Surface) (XdgSurface, error)
	Pong(serial uint32)
}

// XdgSurface is the xdg_surface role object.
type XdgSurface interface {
	GetToplevel() (XdgToplevel, error)
	AckConfigure(serial uint32)
	Destroy()
}

// XdgToplevel is the xdg_toplevel role object. A zero size unsets a limit.
type XdgToplevel interface {
	SetTitle(title string)
	SetAppID(appID string)
	Move(seat Seat, serial uint32)
	Resize(seat Seat, serial uint32, edges ResizeEdge)
	SetMaxSize(width, height int)
	SetMinSize(width, height int)
	SetMaximized()
	UnsetMaximized()
	SetFullscreen(output Output)
	UnsetFullscreen()
	SetMinimized()
	Destroy()
}
