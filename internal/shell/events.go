package shell

import "github.com/1broseidon/csdframe/internal/platform"

// Event is a normalized shell event.
type Event interface {
	shellEvent()
}

// Configure is a server suggestion. A zero Width or Height leaves the size
// to the client. States is nil on the legacy shell, which reports none;
// Edges is only set by the legacy shell.
type Configure struct {
	Width  int
	Height int
	States *States
	Edges  platform.ResizeEdge
}

// Close asks the client to close the window.
type Close struct{}

// Ack reports that a configure sequence was acknowledged.
type Ack struct {
	Serial uint32
}

func (Configure) shellEvent() {}
func (Close) shellEvent()     {}
func (Ack) shellEvent()       {}

// States is the window state set carried by a modern configure.
type States struct {
	Maximized  bool
	Fullscreen bool
	Resizing   bool
	Activated  bool
}

// ParseStates decodes raw xdg_toplevel states. Unknown values are ignored.
func ParseStates(raw []uint32) States {
	var st States
	for _, v := range raw {
		switch v {
		case platform.XdgStateMaximized:
			st.Maximized = true
		case platform.XdgStateFullscreen:
			st.Fullscreen = true
		case platform.XdgStateResizing:
			st.Resizing = true
		case platform.XdgStateActivated:
			st.Activated = true
		}
	}
	return st
}
