// Package frame draws client-side decorations around a content surface and
// keeps them in sync with the server's configure events.
package frame

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/csdframe/internal/meta"
	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/pointer"
	"github.com/1broseidon/csdframe/internal/shell"
	"github.com/1broseidon/csdframe/internal/shm"
	"github.com/1broseidon/csdframe/internal/theme"
)

var (
	// ErrInvalidSize is returned by New for a non-positive initial size.
	ErrInvalidSize = errors.New("frame size must be positive")
	// ErrResourceCreation is returned by New when the host refused a
	// surface, sub-surface, pool or shell role.
	ErrResourceCreation = errors.New("frame resource creation failed")
	// ErrResizeFailed is returned by Refresh when the pixel store could not
	// grow. The previous decorations stay on screen.
	ErrResizeFailed = errors.New("frame resize failed")
)

// initialPoolBytes sizes the pixel store before the first paint.
const initialPoolBytes = 100

// State is a requested window state.
type State int

const (
	StateRegular State = iota
	StateMinimized
	StateMaximized
	StateFullscreen
)

// Env holds the host globals a frame is built from. Seat and Cursors are
// optional: without a seat the decorations ignore the pointer, without
// Cursors the cursor image never changes.
type Env struct {
	Compositor    platform.Compositor
	Subcompositor platform.Subcompositor
	Shm           platform.Shm
	Shell         shell.Shell
	Seat          platform.Seat
	Cursors       platform.CursorLoader
	CursorTheme   string
	CursorSize    int
}

// ConfigureEvent is handed to the application after a server configure.
// Size is the new content size, nil when the client may keep its own.
// States is nil on shells without state feedback.
type ConfigureEvent struct {
	Size   *theme.Size
	States *shell.States
	Edges  platform.ResizeEdge
}

// Options tunes a frame. All callbacks are optional and run without any
// frame lock held.
type Options struct {
	Logger   *slog.Logger
	Decorate bool

	// OnConfigure receives reconciled configure events.
	OnConfigure func(ConfigureEvent)
	// OnClose is called when the server or the close button asks the
	// window to close.
	OnClose func()
	// OnRedraw is called when the frame became dirty from an event and
	// the application should call Refresh.
	OnRedraw func()
}

// Frame is a decorated toplevel wrapping an application content surface.
type Frame struct {
	logger  *slog.Logger
	opts    Options
	shared  *meta.Shared
	palette theme.Palette

	surface  platform.Surface
	contents platform.Subsurface
	shell    *shell.Surface
	caps     shell.Capabilities

	pointer    *pointer.Controller
	cursor     *pointer.ThemedPointer
	rawPointer platform.Pointer

	renderMu   sync.Mutex
	pixels     *shm.Buffer
	front      platform.Buffer
	frontOff   int
	frontLen   int
	displayed  theme.Size
	contentPos image.Point
	repaints   int
	closed     bool
}

// New decorates content, which keeps its own buffers and is placed as a
// sub-surface of the decoration surface. On error everything created so far
// is destroyed and content is left untouched.
func New(content platform.Surface, width, height int, env Env, opts Options) (f *Frame, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var undo []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}()
	fail := func(what string, cause error) error {
		return fmt.Errorf("%w: %s: %w", ErrResourceCreation, what, cause)
	}

	pixels, err := shm.Create(env.Shm, initialPoolBytes/shm.BytesPerPixel)
	if err != nil {
		return nil, fail("pixel store", err)
	}
	undo = append(undo, func() { _ = pixels.Close() })

	surface, err := env.Compositor.CreateSurface()
	if err != nil {
		return nil, fail("decoration surface", err)
	}
	undo = append(undo, surface.Destroy)

	contents, err := env.Subcompositor.GetSubsurface(content, surface)
	if err != nil {
		return nil, fail("content sub-surface", err)
	}
	undo = append(undo, contents.Destroy)
	contents.SetPosition(0, 0)
	contents.SetDesync()

	role, err := shell.NewSurface(env.Shell, surface, env.Seat, logger)
	if err != nil {
		return nil, fail("shell surface", err)
	}

	f = &Frame{
		logger:  logger,
		opts:    opts,
		palette: theme.DefaultPalette(),
		shared: meta.NewShared(meta.Frame{
			Dimensions: theme.Size{Width: width, Height: height},
			Decorate:   opts.Decorate,
			Activated:  true,
			Ready:      !env.Shell.NeedsReadiness(),
			NeedRedraw: true,
		}),
		surface:  surface,
		contents: contents,
		shell:    role,
		caps:     env.Shell.Capabilities(),
		pixels:   pixels,
	}
	f.attachPointer(env)

	logger.Debug("frame created",
		"width", width,
		"height", height,
		"shell", env.Shell.Variant(),
		"ready", !env.Shell.NeedsReadiness(),
	)

	if rerr := f.Refresh(); rerr != nil {
		logger.Warn("initial frame paint failed", "error", rerr)
	}
	return f, nil
}

// attachPointer hooks the seat pointer up to the hover state machine.
// Failures only cost pointer interaction and cursor shapes.
func (f *Frame) attachPointer(env Env) {
	if env.Seat == nil {
		return
	}
	p, err := env.Seat.GetPointer()
	if err != nil {
		f.logger.Warn("no pointer on seat, decorations will not react to input", "error", err)
		return
	}
	f.rawPointer = p

	cfg := pointer.Config{
		Meta:     f.shared,
		Surface:  f.surface.ID(),
		Requests: frameRequests{f},
		Logger:   f.logger,
	}
	if env.Cursors != nil {
		size := env.CursorSize
		if size <= 0 {
			size = 16
		}
		tp, err := pointer.LoadThemedPointer(p, env.Compositor, env.Cursors, env.Shm, env.CursorTheme, size, f.logger)
		if err != nil {
			f.logger.Debug("cursor theme unavailable", "theme", env.CursorTheme, "error", err)
		} else {
			f.cursor = tp
			cfg.Cursor = tp
		}
	}
	f.pointer = pointer.New(cfg)
}

// Surface returns the decoration surface, the toplevel of the window.
func (f *Frame) Surface() platform.Surface {
	return f.surface
}

// ContentOffset returns where the content sits inside the decoration surface.
func (f *Frame) ContentOffset() (int, int) {
	m := f.shared.Snapshot()
	if !m.Decorated() {
		return 0, 0
	}
	return theme.ContentOffset()
}

// Dimensions returns the current content size. After a failed repaint it
// is the size still on screen.
func (f *Frame) Dimensions() theme.Size {
	return f.shared.Snapshot().Dimensions
}

// Ready reports whether the server acknowledged the surface.
func (f *Frame) Ready() bool {
	return f.shared.Snapshot().Ready
}

// NeedsRefresh reports whether state changed since the last paint.
func (f *Frame) NeedsRefresh() bool {
	return f.shared.Snapshot().NeedRedraw
}

// Location returns the decoration zone under the pointer.
func (f *Frame) Location() theme.Location {
	return f.shared.Snapshot().PointerLocation
}

// Repaints counts the decoration buffers committed so far.
func (f *Frame) Repaints() int {
	f.renderMu.Lock()
	defer f.renderMu.Unlock()
	return f.repaints
}

// BufferCapacity returns the pixel store size in bytes.
func (f *Frame) BufferCapacity() int {
	f.renderMu.Lock()
	defer f.renderMu.Unlock()
	if f.pixels == nil {
		return 0
	}
	return f.pixels.Capacity()
}

// Resize records the new content size, at least 1x1. Call Refresh to repaint.
func (f *Frame) Resize(width, height int) {
	f.shared.Update(func(m *meta.Frame) {
		m.Dimensions = theme.Size{Width: max(width, 1), Height: max(height, 1)}
		m.Pending = nil
		m.MarkDirty()
	})
}

// SetDecorate turns the decorations on or off. Call Refresh afterwards.
func (f *Frame) SetDecorate(decorate bool) {
	f.shared.Update(func(m *meta.Frame) {
		if m.Decorate == decorate {
			return
		}
		m.Decorate = decorate
		m.MarkDirty()
	})
}

// SetTitle sets the window title.
func (f *Frame) SetTitle(title string) {
	f.shell.SetTitle(title)
}

// SetAppID sets the application id used by the server to group windows.
func (f *Frame) SetAppID(appID string) {
	f.shell.SetAppID(appID)
}

// SetState requests a window state.
func (f *Frame) SetState(st State) {
	f.setState(st, nil)
}

// SetFullscreenOn requests fullscreen on a given output.
func (f *Frame) SetFullscreenOn(output platform.Output) {
	f.setState(StateFullscreen, output)
}

func (f *Frame) setState(st State, output platform.Output) {
	switch st {
	case StateRegular:
		f.shell.UnsetFullscreen()
		f.shell.UnsetMaximized()
	case StateMinimized:
		f.shell.UnsetFullscreen()
		f.shell.SetMinimized()
	case StateMaximized:
		f.shell.UnsetFullscreen()
		f.shell.SetMaximized()
	case StateFullscreen:
		f.shell.SetFullscreen(output)
	}
	if !f.caps.StateFeedback && st != StateMinimized {
		// No configure will tell us the outcome.
		f.applyLocalState(st)
	}
}

// SetMinSize sets the minimum content size; nil removes it.
func (f *Frame) SetMinSize(size *theme.Size) {
	f.shell.SetMinSize(f.setLimit(size, func(m *meta.Frame, s *theme.Size) { m.MinSize = s }))
}

// SetMaxSize sets the maximum content size; nil removes it. A maximum size
// disables the maximize button.
func (f *Frame) SetMaxSize(size *theme.Size) {
	f.shell.SetMaxSize(f.setLimit(size, func(m *meta.Frame, s *theme.Size) { m.MaxSize = s }))
}

// setLimit stores a copy of size and returns the limit to send to the
// server, which counts the decorations.
func (f *Frame) setLimit(size *theme.Size, set func(*meta.Frame, *theme.Size)) *theme.Size {
	var stored *theme.Size
	if size != nil {
		s := *size
		stored = &s
	}
	decorated := false
	f.shared.Update(func(m *meta.Frame) {
		set(m, stored)
		decorated = m.Decorated()
		m.MarkDirty()
	})
	if stored == nil || !decorated {
		return stored
	}
	w, h := theme.AddBorders(stored.Width, stored.Height)
	return &theme.Size{Width: w, Height: h}
}

// Close tears the frame down. The content surface is left to its owner.
func (f *Frame) Close() {
	f.renderMu.Lock()
	defer f.renderMu.Unlock()
	if f.closed {
		return
	}
	f.closed = true

	f.shell.Destroy()
	f.surface.Destroy()
	f.contents.Destroy()
	if f.front != nil {
		f.front.Destroy()
		f.front = nil
	}
	if err := f.pixels.Close(); err != nil {
		f.logger.Debug("closing pixel store", "error", err)
	}
	switch {
	case f.cursor != nil:
		f.cursor.Release()
	case f.rawPointer != nil:
		f.rawPointer.Release()
	}
}

// frameRequests routes pointer actions to the shell.
type frameRequests struct {
	f *Frame
}

func (r frameRequests) Resize(serial uint32, edge platform.ResizeEdge) {
	r.f.shell.Resize(serial, edge)
}

func (r frameRequests) Move(serial uint32) { r.f.shell.Move(serial) }
func (r frameRequests) SetMinimized()      { r.f.shell.SetMinimized() }
func (r frameRequests) SetMaximized()      { r.f.SetState(StateMaximized) }
func (r frameRequests) UnsetMaximized()    { r.f.SetState(StateRegular) }
func (r frameRequests) RequestClose()      { r.f.deliverClose() }
