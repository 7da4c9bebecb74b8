// Package meta holds the frame state shared by configure handling and
// pointer handling.
package meta

import (
	"sync"

	"github.com/1broseidon/csdframe/internal/theme"
)

// Size is a content size in pixels.
type Size = theme.Size

// Frame is the mutable state of a decorated frame.
type Frame struct {
	Dimensions Size
	Decorate   bool
	Fullscreen bool
	Maximized  bool
	Activated  bool
	MinSize    *Size
	MaxSize    *Size
	OldSize    *Size
	// Pending is a content size whose repaint failed. Dimensions keep the
	// size on screen until a later repaint succeeds.
	Pending    *Size
	Ready      bool
	NeedRedraw bool

	PointerLocation theme.Location

	// Generation is bumped by MarkDirty so a repaint can tell whether the
	// state changed while it was drawing.
	Generation uint64
}

// Decorated reports whether borders are drawn. Fullscreen suppresses them.
func (f *Frame) Decorated() bool {
	return f.Decorate && !f.Fullscreen
}

// MarkDirty flags the frame for repaint.
func (f *Frame) MarkDirty() {
	f.NeedRedraw = true
	f.Generation++
}

// ClampToLimits turns a server-suggested decorated size into a content size
// honouring the size limits. Max is applied before min, so min wins when the
// two conflict. The result is at least 1x1.
func (f *Frame) ClampToLimits(s Size) Size {
	w, h := s.Width, s.Height
	if f.Decorated() {
		w, h = theme.SubtractBorders(w, h)
	}
	if f.MaxSize != nil {
		w = min(w, f.MaxSize.Width)
		h = min(h, f.MaxSize.Height)
	}
	if f.MinSize != nil {
		w = max(w, f.MinSize.Width)
		h = max(h, f.MinSize.Height)
	}
	return Size{Width: max(w, 1), Height: max(h, 1)}
}

// Style returns what the painter needs from the state.
func (f *Frame) Style() theme.Style {
	return theme.Style{
		Activated:   f.Activated,
		Maximized:   f.Maximized,
		Maximizable: f.MaxSize == nil,
		Hover:       f.PointerLocation,
	}
}

// Shared guards a Frame. Callers must not issue outbound requests or call
// back into the host while inside Update.
type Shared struct {
	mu sync.Mutex
	f  Frame
}

// NewShared wraps an initial state.
func NewShared(f Frame) *Shared {
	return &Shared{f: f}
}

// Update runs fn with exclusive access to the state.
func (s *Shared) Update(fn func(f *Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.f)
}

// Snapshot returns a copy of the state. Pointer fields share their targets,
// which are never mutated in place.
func (s *Shared) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f
}
