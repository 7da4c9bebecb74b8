package platform

// Event is an inbound protocol event. The set is closed: only the types in
// this file implement it.
type Event interface {
	event()
}

// PointerEnter is sent when the pointer enters a surface.
type PointerEnter struct {
	Serial  uint32
	Surface SurfaceID
	X, Y    float64
}

// PointerLeave is sent when the pointer leaves a surface.
type PointerLeave struct {
	Serial  uint32
	Surface SurfaceID
}

// PointerMotion carries surface-local coordinates of the focused surface.
type PointerMotion struct {
	Time uint32
	X, Y float64
}

// PointerButton is sent on press and release of a pointer button.
type PointerButton struct {
	Serial uint32
	Time   uint32
	Button uint32
	State  ButtonState
}

// LegacyPing must be answered with LegacyShellSurface.Pong.
type LegacyPing struct {
	Serial uint32
}

// LegacyConfigure suggests a new decorated size.
type LegacyConfigure struct {
	Edges  ResizeEdge
	Width  int
	Height int
}

// LegacyPopupDone ends a popup grab.
type LegacyPopupDone struct{}

// XdgPing must be answered with XdgShell.Pong.
type XdgPing struct {
	Serial uint32
}

// XdgSurfaceConfigure closes a configure sequence and must be acked.
type XdgSurfaceConfigure struct {
	Serial uint32
}

// XdgToplevelConfigure suggests a size and a state set. Zero width or height
// leaves the size to the client.
type XdgToplevelConfigure struct {
	Width  int
	Height int
	States []uint32
}

// XdgToplevelClose asks the client to close the window.
type XdgToplevelClose struct{}

func (PointerEnter) event()         {}
func (PointerLeave) event()         {}
func (PointerMotion) event()        {}
func (PointerButton) event()        {}
func (LegacyPing) event()           {}
func (LegacyConfigure) event()      {}
func (LegacyPopupDone) event()      {}
func (XdgPing) event()              {}
func (XdgSurfaceConfigure) event()  {}
func (XdgToplevelConfigure) event() {}
func (XdgToplevelClose) event()     {}
