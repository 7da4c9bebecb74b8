package frame

import (
	"errors"
	"fmt"
	"image"

	"github.com/1broseidon/csdframe/internal/meta"
	"github.com/1broseidon/csdframe/internal/shm"
	"github.com/1broseidon/csdframe/internal/theme"
)

// Refresh repaints the decorations if anything changed since the last paint
// and the surface is ready. It is a no-op otherwise. A failed growth of the
// pixel store leaves the previous buffer attached, returns ErrResizeFailed
// and keeps the frame dirty so a later call can retry.
func (f *Frame) Refresh() error {
	f.renderMu.Lock()
	defer f.renderMu.Unlock()
	if f.closed {
		return nil
	}

	snap := f.shared.Snapshot()
	if !snap.NeedRedraw || !snap.Ready {
		return nil
	}
	size := snap.Dimensions
	if snap.Pending != nil {
		size = *snap.Pending
	}
	if err := f.paint(snap, size); err != nil {
		if errors.Is(err, ErrResizeFailed) {
			f.keepDisplayedSize(size)
		}
		return err
	}
	f.displayed = size
	f.shared.Update(func(m *meta.Frame) {
		if m.Pending != nil && *m.Pending == size {
			m.Dimensions = size
			m.Pending = nil
		}
		// State changed while painting: leave it dirty for the next call.
		if m.Generation == snap.Generation {
			m.NeedRedraw = false
		}
	})
	return nil
}

// keepDisplayedSize parks a size that could not be painted as pending and
// puts back the size of the buffer still on screen, so hit-testing matches
// what the user sees.
func (f *Frame) keepDisplayedSize(failed theme.Size) {
	if f.repaints == 0 {
		return
	}
	shown := f.displayed
	f.shared.Update(func(m *meta.Frame) {
		if m.Dimensions != failed {
			return
		}
		p := failed
		m.Pending = &p
		m.Dimensions = shown
	})
}

// paint draws the decorations for content size into a region of the pixel
// store that does not overlap the buffer currently on screen, attaches it
// and retires the old one.
func (f *Frame) paint(snap meta.Frame, size theme.Size) error {
	decorated := snap.Decorated()
	w, h := 1, 1
	if decorated {
		w, h = theme.AddBorders(size.Width, size.Height)
	}
	need := theme.PxCount(w, h) * shm.BytesPerPixel
	off := f.backOffset(need)

	if err := f.pixels.EnsureCapacity(off + need); err != nil {
		f.logger.Warn("decoration buffer growth failed",
			"width", w,
			"height", h,
			"capacity", f.pixels.Capacity(),
			"error", err,
		)
		return fmt.Errorf("%w: %dx%d: %w", ErrResizeFailed, w, h, err)
	}
	canvas, err := f.pixels.Canvas(off, need)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResizeFailed, err)
	}
	if decorated {
		if err := theme.DrawContents(canvas, w, h, snap.Style(), f.palette); err != nil {
			return fmt.Errorf("%w: %w", ErrResizeFailed, err)
		}
	} else {
		clear(canvas)
	}
	view, err := f.pixels.AllocateView(off, w, h, w*shm.BytesPerPixel)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrResizeFailed, err)
	}

	pos := image.Point{}
	if decorated {
		pos.X, pos.Y = theme.ContentOffset()
	}
	if pos != f.contentPos {
		f.contents.SetPosition(pos.X, pos.Y)
		f.contentPos = pos
	}

	f.surface.Attach(view, 0, 0)
	f.surface.Damage(0, 0, w, h)
	f.surface.Commit()

	if f.front != nil {
		f.front.Destroy()
	}
	f.front, f.frontOff, f.frontLen = view, off, need
	f.repaints++

	f.logger.Debug("decorations painted",
		"width", w,
		"height", h,
		"offset", off,
		"decorated", decorated,
	)
	return nil
}

// backOffset picks where the next frame goes: the start of the store when
// it fits in front of the displayed buffer, right behind it otherwise.
func (f *Frame) backOffset(need int) int {
	if f.front == nil || f.frontOff >= need {
		return 0
	}
	return f.frontOff + f.frontLen
}
