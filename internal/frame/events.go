package frame

import (
	"github.com/1broseidon/csdframe/internal/meta"
	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/shell"
	"github.com/1broseidon/csdframe/internal/theme"
)

// HandleEvent dispatches a host event to the frame. Pointer events drive
// hover and clicks, shell events drive configuration, readiness and close.
// Events for other objects are ignored.
func (f *Frame) HandleEvent(ev platform.Event) {
	switch ev.(type) {
	case platform.PointerEnter, platform.PointerLeave, platform.PointerMotion, platform.PointerButton:
		if f.pointer != nil && f.pointer.HandleEvent(ev) {
			f.notifyRedraw()
		}
		return
	}

	sev, ok := f.shell.HandleEvent(ev)
	if !ok {
		return
	}
	switch sev := sev.(type) {
	case shell.Configure:
		f.reconcile(sev)
	case shell.Ack:
		first := false
		f.shared.Update(func(m *meta.Frame) {
			if !m.Ready {
				m.Ready = true
				first = true
			}
		})
		if first {
			f.logger.Debug("frame ready", "serial", sev.Serial)
			f.notifyRedraw()
		}
	case shell.Close:
		f.deliverClose()
	}
}

// reconcile folds a server configure into the metadata and reports the
// outcome to the application.
func (f *Frame) reconcile(c shell.Configure) {
	var size *theme.Size
	f.shared.Update(func(m *meta.Frame) {
		wasMax, wasFull, wasAct := m.Maximized, m.Fullscreen, m.Activated
		if c.States != nil {
			m.Maximized = c.States.Maximized
			m.Fullscreen = c.States.Fullscreen
			m.Activated = c.States.Activated
		}
		changed := m.Maximized != wasMax || m.Fullscreen != wasFull || m.Activated != wasAct

		switch {
		case c.Width == 0 || c.Height == 0:
			// The client picks. Leaving maximized restores the saved size.
			if wasMax && !m.Maximized && m.OldSize != nil {
				s := *m.OldSize
				size = &s
			}
		default:
			s := m.ClampToLimits(theme.Size{Width: c.Width, Height: c.Height})
			size = &s
		}

		if !wasMax && m.Maximized {
			old := m.Dimensions
			m.OldSize = &old
		} else if wasMax && !m.Maximized {
			m.OldSize = nil
		}
		if size != nil && (*size != m.Dimensions || m.Pending != nil) {
			m.Dimensions = *size
			m.Pending = nil
			changed = true
		}
		if changed {
			m.MarkDirty()
		}
	})

	f.logger.Debug("configure",
		"width", c.Width,
		"height", c.Height,
		"states", c.States != nil,
		"resized", size != nil,
	)
	if f.opts.OnConfigure != nil {
		f.opts.OnConfigure(ConfigureEvent{Size: size, States: c.States, Edges: c.Edges})
	}
}

// applyLocalState mirrors a requested state on shells that never confirm
// it. The resulting configure goes through the normal reconciliation.
func (f *Frame) applyLocalState(st State) {
	activated := f.shared.Snapshot().Activated
	f.reconcile(shell.Configure{States: &shell.States{
		Maximized:  st == StateMaximized,
		Fullscreen: st == StateFullscreen,
		Activated:  activated,
	}})
}

func (f *Frame) notifyRedraw() {
	if f.opts.OnRedraw != nil {
		f.opts.OnRedraw()
	}
}

func (f *Frame) deliverClose() {
	f.logger.Debug("close requested")
	if f.opts.OnClose != nil {
		f.opts.OnClose()
	}
}
