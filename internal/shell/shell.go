// Package shell hides the difference between the legacy and modern toplevel
// shell protocols behind one request set and one event shape.
package shell

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/theme"
)

// Variant names a shell protocol generation.
type Variant int

const (
	VariantLegacy Variant = iota
	VariantModern
)

func (v Variant) String() string {
	if v == VariantModern {
		return "modern"
	}
	return "legacy"
}

// Shell is the bound shell global.
type Shell struct {
	variant Variant
	legacy  platform.LegacyShell
	modern  platform.XdgShell
}

// Legacy wraps a wl_shell style global.
func Legacy(s platform.LegacyShell) Shell {
	return Shell{variant: VariantLegacy, legacy: s}
}

// Modern wraps an xdg_wm_base style global.
func Modern(s platform.XdgShell) Shell {
	return Shell{variant: VariantModern, modern: s}
}

// Variant returns the protocol generation.
func (s Shell) Variant() Variant { return s.variant }

// NeedsReadiness reports whether a surface must wait for the first
// configure acknowledgement before it may be painted.
func (s Shell) NeedsReadiness() bool {
	return s.variant == VariantModern
}

// Capabilities lists the optional features of a variant.
type Capabilities struct {
	Minimize      bool
	SizeHints     bool
	StateFeedback bool
}

// Capabilities of the variant.
func (s Shell) Capabilities() Capabilities {
	if s.variant == VariantModern {
		return Capabilities{Minimize: true, SizeHints: true, StateFeedback: true}
	}
	return Capabilities{}
}

// Surface is a toplevel role bound to a surface.
type Surface struct {
	shell    Shell
	seat     platform.Seat
	logger   *slog.Logger
	legacy   platform.LegacyShellSurface
	xdg      platform.XdgSurface
	toplevel platform.XdgToplevel
}

// NewSurface gives surface the toplevel role. seat is passed to interactive
// move and resize requests and may be nil.
func NewSurface(sh Shell, surface platform.Surface, seat platform.Seat, logger *slog.Logger) (*Surface, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Surface{shell: sh, seat: seat, logger: logger}

	switch sh.variant {
	case VariantModern:
		xdg, err := sh.modern.GetXdgSurface(surface)
		if err != nil {
			return nil, fmt.Errorf("get xdg surface: %w", err)
		}
		toplevel, err := xdg.GetToplevel()
		if err != nil {
			xdg.Destroy()
			return nil, fmt.Errorf("get toplevel: %w", err)
		}
		// The bare commit asks the server for the initial configure.
		surface.Commit()
		s.xdg, s.toplevel = xdg, toplevel
	default:
		ss, err := sh.legacy.GetShellSurface(surface)
		if err != nil {
			return nil, fmt.Errorf("get shell surface: %w", err)
		}
		ss.SetToplevel()
		s.legacy = ss
	}
	return s, nil
}

// Variant returns the protocol generation of the surface.
func (s *Surface) Variant() Variant { return s.shell.variant }

// HandleEvent consumes a raw shell event. Pings are answered here and never
// reported. ok is false when nothing needs the frame's attention.
func (s *Surface) HandleEvent(ev platform.Event) (out Event, ok bool) {
	switch ev := ev.(type) {
	case platform.LegacyPing:
		if s.legacy != nil {
			s.legacy.Pong(ev.Serial)
		}
	case platform.LegacyConfigure:
		if s.legacy != nil {
			return Configure{Width: ev.Width, Height: ev.Height, Edges: ev.Edges}, true
		}
	case platform.LegacyPopupDone:
		// no popups
	case platform.XdgPing:
		if s.shell.modern != nil {
			s.shell.modern.Pong(ev.Serial)
		}
	case platform.XdgSurfaceConfigure:
		if s.xdg != nil {
			s.xdg.AckConfigure(ev.Serial)
			return Ack{Serial: ev.Serial}, true
		}
	case platform.XdgToplevelConfigure:
		if s.toplevel != nil {
			st := ParseStates(ev.States)
			return Configure{Width: ev.Width, Height: ev.Height, States: &st}, true
		}
	case platform.XdgToplevelClose:
		if s.toplevel != nil {
			return Close{}, true
		}
	}
	return nil, false
}

func (s *Surface) unsupported(request string) {
	s.logger.Debug("shell request unsupported", "request", request, "variant", s.shell.variant)
}

// Resize starts an interactive resize from edge.
func (s *Surface) Resize(serial uint32, edge platform.ResizeEdge) {
	if s.toplevel != nil {
		s.toplevel.Resize(s.seat, serial, edge)
		return
	}
	s.legacy.Resize(s.seat, serial, edge)
}

// Move starts an interactive move.
func (s *Surface) Move(serial uint32) {
	if s.toplevel != nil {
		s.toplevel.Move(s.seat, serial)
		return
	}
	s.legacy.Move(s.seat, serial)
}

// SetTitle sets the window title.
func (s *Surface) SetTitle(title string) {
	if s.toplevel != nil {
		s.toplevel.SetTitle(title)
		return
	}
	s.legacy.SetTitle(title)
}

// SetAppID sets the application id, the window class on the legacy shell.
func (s *Surface) SetAppID(appID string) {
	if s.toplevel != nil {
		s.toplevel.SetAppID(appID)
		return
	}
	s.legacy.SetClass(appID)
}

// SetFullscreen asks for fullscreen on output, or on an output of the
// server's choice when output is nil.
func (s *Surface) SetFullscreen(output platform.Output) {
	if s.toplevel != nil {
		s.toplevel.SetFullscreen(output)
		return
	}
	s.legacy.SetFullscreen(output)
}

// UnsetFullscreen leaves fullscreen.
func (s *Surface) UnsetFullscreen() {
	if s.toplevel != nil {
		s.toplevel.UnsetFullscreen()
		return
	}
	s.legacy.SetToplevel()
}

// SetMaximized asks for the maximized state.
func (s *Surface) SetMaximized() {
	if s.toplevel != nil {
		s.toplevel.SetMaximized()
		return
	}
	s.legacy.SetMaximized(nil)
}

// UnsetMaximized leaves the maximized state.
func (s *Surface) UnsetMaximized() {
	if s.toplevel != nil {
		s.toplevel.UnsetMaximized()
		return
	}
	s.legacy.SetToplevel()
}

// SetMinimized asks to be minimized. No-op on the legacy shell.
func (s *Surface) SetMinimized() {
	if s.toplevel == nil {
		s.unsupported("set_minimized")
		return
	}
	s.toplevel.SetMinimized()
}

// SetMinSize sets the minimum decorated size; nil removes the limit.
// No-op on the legacy shell.
func (s *Surface) SetMinSize(size *theme.Size) {
	if s.toplevel == nil {
		s.unsupported("set_min_size")
		return
	}
	w, h := sizeOrZero(size)
	s.toplevel.SetMinSize(w, h)
}

// SetMaxSize sets the maximum decorated size; nil removes the limit.
// No-op on the legacy shell.
func (s *Surface) SetMaxSize(size *theme.Size) {
	if s.toplevel == nil {
		s.unsupported("set_max_size")
		return
	}
	w, h := sizeOrZero(size)
	s.toplevel.SetMaxSize(w, h)
}

// Destroy releases the role objects, toplevel first. The legacy shell
// surface has no destructor.
func (s *Surface) Destroy() {
	if s.toplevel != nil {
		s.toplevel.Destroy()
		s.xdg.Destroy()
		s.toplevel, s.xdg = nil, nil
	}
}

func sizeOrZero(size *theme.Size) (int, int) {
	if size == nil {
		return 0, 0
	}
	return size.Width, size.Height
}
