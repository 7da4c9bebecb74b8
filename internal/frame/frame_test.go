package frame

import (
	"errors"
	"testing"

	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/platform/platformtest"
	"github.com/1broseidon/csdframe/internal/shell"
	"github.com/1broseidon/csdframe/internal/shm"
	"github.com/1broseidon/csdframe/internal/theme"
)

type harness struct {
	host    *platformtest.Host
	xdg     *platformtest.XdgShell
	legacy  *platformtest.LegacyShell
	content platform.Surface
	frame   *Frame

	redraws int
	closes  int
	configs []ConfigureEvent
}

func newHarness(t *testing.T, modern, decorate bool, w, h int) *harness {
	t.Helper()
	hs := &harness{host: platformtest.NewHost()}
	hs.content, _ = hs.host.CreateSurface()

	var sh shell.Shell
	if modern {
		hs.xdg = platformtest.NewXdgShell(hs.host.Recorder)
		sh = shell.Modern(hs.xdg)
	} else {
		hs.legacy = platformtest.NewLegacyShell(hs.host.Recorder)
		sh = shell.Legacy(hs.legacy)
	}

	f, err := New(hs.content, w, h, hs.env(sh), Options{
		Decorate:    decorate,
		OnConfigure: func(ev ConfigureEvent) { hs.configs = append(hs.configs, ev) },
		OnClose:     func() { hs.closes++ },
		OnRedraw:    func() { hs.redraws++ },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	hs.frame = f
	return hs
}

func (hs *harness) env(sh shell.Shell) Env {
	return Env{
		Compositor:    hs.host,
		Subcompositor: hs.host,
		Shm:           hs.host,
		Shell:         sh,
		Seat:          hs.host,
	}
}

// ready acknowledges the initial configure of a modern frame.
func (hs *harness) ready(t *testing.T) {
	t.Helper()
	hs.frame.HandleEvent(platform.XdgSurfaceConfigure{Serial: 1})
	if !hs.frame.Ready() {
		t.Fatal("frame not ready after ack")
	}
}

func (hs *harness) decoration() *platformtest.Surface {
	return hs.host.Surfaces[1]
}

func (hs *harness) attached(t *testing.T) *platformtest.Buffer {
	t.Helper()
	b, ok := hs.decoration().Attached.(*platformtest.Buffer)
	if !ok {
		t.Fatal("no buffer attached to the decoration surface")
	}
	return b
}

func (hs *harness) refresh(t *testing.T) {
	t.Helper()
	if err := hs.frame.Refresh(); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
}

func TestNew_InvalidSize(t *testing.T) {
	host := platformtest.NewHost()
	content, _ := host.CreateSurface()
	env := Env{Compositor: host, Subcompositor: host, Shm: host, Shell: shell.Legacy(platformtest.NewLegacyShell(host.Recorder))}
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if _, err := New(content, size[0], size[1], env, Options{}); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("New(%v) error = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestNew_ResourceFailuresCleanUp(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*platformtest.Host, *platformtest.XdgShell)
	}{
		{"pool", func(h *platformtest.Host, _ *platformtest.XdgShell) { h.FailPool = true }},
		{"surface", func(h *platformtest.Host, _ *platformtest.XdgShell) { h.FailSurface = true }},
		{"subsurface", func(h *platformtest.Host, _ *platformtest.XdgShell) { h.FailSubsurface = true }},
		{"shell", func(_ *platformtest.Host, xs *platformtest.XdgShell) { xs.Fail = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := platformtest.NewHost()
			content, _ := host.CreateSurface()
			xs := platformtest.NewXdgShell(host.Recorder)
			tt.setup(host, xs)

			_, err := New(content, 100, 100, Env{
				Compositor: host, Subcompositor: host, Shm: host, Shell: shell.Modern(xs),
			}, Options{})
			if !errors.Is(err, ErrResourceCreation) {
				t.Fatalf("New() error = %v, want ErrResourceCreation", err)
			}
			for _, p := range host.Pools {
				if !p.Destroyed {
					t.Fatal("pool leaked")
				}
			}
			for i, s := range host.Surfaces {
				if i == 0 && s.Destroyed {
					t.Fatal("content surface destroyed")
				}
				if i > 0 && !s.Destroyed {
					t.Fatalf("surface %d leaked", i)
				}
			}
			for _, ss := range host.Subsurfaces {
				if !ss.Destroyed {
					t.Fatal("sub-surface leaked")
				}
			}
		})
	}
}

func TestNew_SubsurfaceStartsAtOriginDesync(t *testing.T) {
	hs := newHarness(t, true, true, 100, 100)
	ss := hs.host.Subsurfaces[0]
	if !ss.Desync || ss.X != 0 || ss.Y != 0 {
		t.Fatalf("sub-surface = %+v, want desync at origin", *ss)
	}
}

func TestRefresh_WaitsForAck(t *testing.T) {
	hs := newHarness(t, true, true, 100, 100)
	hs.refresh(t)
	if hs.frame.Repaints() != 0 {
		t.Fatalf("painted %d times before the first ack", hs.frame.Repaints())
	}

	hs.ready(t)
	if hs.redraws != 1 {
		t.Fatalf("redraws = %d, want 1 after ack", hs.redraws)
	}
	hs.refresh(t)
	if hs.frame.Repaints() != 1 {
		t.Fatalf("repaints = %d, want 1", hs.frame.Repaints())
	}

	// A second ack is not a readiness transition.
	hs.frame.HandleEvent(platform.XdgSurfaceConfigure{Serial: 2})
	if hs.redraws != 1 {
		t.Fatalf("redraws = %d after second ack", hs.redraws)
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	hs := newHarness(t, false, true, 100, 100)
	if hs.frame.Repaints() != 1 {
		t.Fatalf("legacy frame repaints = %d, want 1 from New", hs.frame.Repaints())
	}
	hs.refresh(t)
	hs.refresh(t)
	if hs.frame.Repaints() != 1 || hs.frame.NeedsRefresh() {
		t.Fatalf("repaints = %d dirty = %v after clean refreshes", hs.frame.Repaints(), hs.frame.NeedsRefresh())
	}
}

func TestRefresh_DecoratedBufferAndContentOffset(t *testing.T) {
	hs := newHarness(t, false, true, 100, 100)
	b := hs.attached(t)
	if b.Width != 116 || b.Height != 132 || b.Stride != 116*4 {
		t.Fatalf("buffer = %dx%d stride %d, want 116x132", b.Width, b.Height, b.Stride)
	}
	if ss := hs.host.Subsurfaces[0]; ss.X != theme.Border || ss.Y != theme.Title {
		t.Fatalf("content at (%d,%d), want (%d,%d)", ss.X, ss.Y, theme.Border, theme.Title)
	}
	if x, y := hs.frame.ContentOffset(); x != theme.Border || y != theme.Title {
		t.Fatalf("ContentOffset() = (%d,%d)", x, y)
	}
}

func TestRefresh_UndecoratedUsesTransparentPixel(t *testing.T) {
	hs := newHarness(t, false, false, 100, 100)
	b := hs.attached(t)
	if b.Width != 1 || b.Height != 1 {
		t.Fatalf("buffer = %dx%d, want 1x1", b.Width, b.Height)
	}

	hs.frame.SetDecorate(true)
	hs.refresh(t)
	if ss := hs.host.Subsurfaces[0]; ss.X != theme.Border || ss.Y != theme.Title {
		t.Fatalf("content at (%d,%d) after decorating", ss.X, ss.Y)
	}

	hs.frame.SetDecorate(false)
	hs.refresh(t)
	if b := hs.attached(t); b.Width != 1 {
		t.Fatalf("buffer width = %d after undecorating, want 1", b.Width)
	}
	if ss := hs.host.Subsurfaces[0]; ss.X != 0 || ss.Y != 0 {
		t.Fatalf("content at (%d,%d) after undecorating, want origin", ss.X, ss.Y)
	}
}

func TestRefresh_DoubleBuffering(t *testing.T) {
	hs := newHarness(t, false, true, 100, 100)
	first := hs.attached(t)

	hs.frame.Resize(100, 100)
	hs.refresh(t)
	second := hs.attached(t)
	if second == first {
		t.Fatal("refresh reused the displayed buffer")
	}
	if !first.Destroyed || second.Destroyed {
		t.Fatalf("destroyed: first=%v second=%v", first.Destroyed, second.Destroyed)
	}
	n := 116 * 132 * 4
	if first.Offset < second.Offset+n && second.Offset < first.Offset+n {
		t.Fatalf("regions overlap: %d and %d, %d bytes each", first.Offset, second.Offset, n)
	}

	hs.frame.Resize(100, 100)
	hs.refresh(t)
	third := hs.attached(t)
	if third.Offset < second.Offset+n && second.Offset < third.Offset+n {
		t.Fatalf("regions overlap: %d and %d", second.Offset, third.Offset)
	}
}

func TestRefresh_CapacityNeverShrinks(t *testing.T) {
	hs := newHarness(t, false, true, 100, 100)
	hs.frame.Resize(400, 400)
	hs.refresh(t)
	want := theme.PxCount(416, 432) * shm.BytesPerPixel
	got := hs.frame.BufferCapacity()
	if got < want {
		t.Fatalf("capacity = %d, want >= %d", got, want)
	}

	hs.frame.Resize(50, 50)
	hs.refresh(t)
	if hs.frame.BufferCapacity() < got {
		t.Fatalf("capacity shrank from %d to %d", got, hs.frame.BufferCapacity())
	}
}

func TestRefresh_GrowthFailureKeepsPreviousBuffer(t *testing.T) {
	hs := newHarness(t, false, true, 100, 100)
	before := hs.attached(t)
	hs.host.Pools[0].FailResize = true

	hs.frame.Resize(2000, 2000)
	if err := hs.frame.Refresh(); !errors.Is(err, ErrResizeFailed) {
		t.Fatalf("Refresh() error = %v, want ErrResizeFailed", err)
	}
	if hs.attached(t) != before || before.Destroyed {
		t.Fatal("previous buffer was replaced or destroyed")
	}
	if !hs.frame.NeedsRefresh() {
		t.Fatal("frame should stay dirty after a failed refresh")
	}
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 100, Height: 100}) {
		t.Fatalf("Dimensions() = %+v after failed growth, want the displayed 100x100", d)
	}
	// (110, 60) is the right border of the 116x132 buffer still on screen.
	hs.frame.HandleEvent(platform.PointerEnter{Serial: 2, Surface: hs.frame.Surface().ID(), X: 110, Y: 60})
	if loc := hs.frame.Location(); loc != theme.LocationRight {
		t.Fatalf("Location() = %v on the displayed buffer, want right", loc)
	}

	hs.host.Pools[0].FailResize = false
	hs.refresh(t)
	if b := hs.attached(t); b.Width != 2016 {
		t.Fatalf("width = %d after retry, want 2016", b.Width)
	}
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 2000, Height: 2000}) {
		t.Fatalf("Dimensions() = %+v after retry, want 2000x2000", d)
	}
}

func TestRefresh_ResizeAfterFailureReplacesPending(t *testing.T) {
	hs := newHarness(t, false, true, 100, 100)
	hs.host.Pools[0].FailResize = true
	hs.frame.Resize(2000, 2000)
	if err := hs.frame.Refresh(); !errors.Is(err, ErrResizeFailed) {
		t.Fatalf("Refresh() error = %v, want ErrResizeFailed", err)
	}

	hs.host.Pools[0].FailResize = false
	hs.frame.Resize(120, 90)
	hs.refresh(t)
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 120, Height: 90}) {
		t.Fatalf("Dimensions() = %+v, want 120x90", d)
	}
	if b := hs.attached(t); b.Width != 136 || b.Height != 122 {
		t.Fatalf("buffer = %dx%d, want 136x122", b.Width, b.Height)
	}
}

func TestConfigure_ZeroSizeKeepsState(t *testing.T) {
	hs := newHarness(t, true, true, 300, 200)
	hs.ready(t)
	hs.refresh(t)

	hs.frame.HandleEvent(platform.XdgToplevelConfigure{States: []uint32{platform.XdgStateActivated}})
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 300, Height: 200}) {
		t.Fatalf("Dimensions() = %+v, want 300x200", d)
	}
	if hs.frame.NeedsRefresh() {
		t.Fatal("no-op configure marked the frame dirty")
	}
	if len(hs.configs) != 1 || hs.configs[0].Size != nil {
		t.Fatalf("configs = %+v, want one with nil size", hs.configs)
	}
}

func TestConfigure_ClampsToLimits(t *testing.T) {
	hs := newHarness(t, true, true, 300, 200)
	hs.ready(t)
	hs.frame.SetMinSize(&theme.Size{Width: 200, Height: 150})

	hs.frame.HandleEvent(platform.XdgToplevelConfigure{Width: 100, Height: 100, States: []uint32{platform.XdgStateActivated}})
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 200, Height: 150}) {
		t.Fatalf("Dimensions() = %+v, want min size 200x150", d)
	}
	if got := hs.configs[len(hs.configs)-1].Size; got == nil || *got != (theme.Size{Width: 200, Height: 150}) {
		t.Fatalf("reported size = %v", got)
	}
}

func TestConfigure_MaximizeRoundTripRestoresSize(t *testing.T) {
	hs := newHarness(t, true, true, 300, 200)
	hs.ready(t)

	hs.frame.HandleEvent(platform.XdgToplevelConfigure{
		Width: 800, Height: 600,
		States: []uint32{platform.XdgStateMaximized, platform.XdgStateActivated},
	})
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 784, Height: 568}) {
		t.Fatalf("maximized Dimensions() = %+v, want 784x568", d)
	}

	hs.frame.HandleEvent(platform.XdgToplevelConfigure{States: []uint32{platform.XdgStateActivated}})
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 300, Height: 200}) {
		t.Fatalf("restored Dimensions() = %+v, want 300x200", d)
	}
	last := hs.configs[len(hs.configs)-1]
	if last.Size == nil || *last.Size != (theme.Size{Width: 300, Height: 200}) {
		t.Fatalf("restore reported size %v", last.Size)
	}
	if last.States == nil || last.States.Maximized {
		t.Fatalf("restore states = %+v", last.States)
	}
}

func TestConfigure_FullscreenDropsBorders(t *testing.T) {
	hs := newHarness(t, true, true, 300, 200)
	hs.ready(t)
	hs.frame.HandleEvent(platform.XdgToplevelConfigure{
		Width: 1920, Height: 1080,
		States: []uint32{platform.XdgStateFullscreen},
	})
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 1920, Height: 1080}) {
		t.Fatalf("fullscreen Dimensions() = %+v", d)
	}
	hs.refresh(t)
	if b := hs.attached(t); b.Width != 1 {
		t.Fatalf("fullscreen buffer width = %d, want 1", b.Width)
	}
	if x, y := hs.frame.ContentOffset(); x != 0 || y != 0 {
		t.Fatalf("fullscreen ContentOffset() = (%d,%d)", x, y)
	}
}

func TestSetMinSize_AddsBordersWhenDecorated(t *testing.T) {
	hs := newHarness(t, true, true, 300, 200)
	hs.frame.SetMinSize(&theme.Size{Width: 100, Height: 100})
	if !hs.host.Has("toplevel.set_min_size 116 132") {
		t.Fatalf("calls = %v", hs.host.Calls())
	}
	hs.frame.SetMaxSize(nil)
	if !hs.host.Has("toplevel.set_max_size 0 0") {
		t.Fatalf("calls = %v", hs.host.Calls())
	}

	plain := newHarness(t, true, false, 300, 200)
	plain.frame.SetMaxSize(&theme.Size{Width: 640, Height: 480})
	if !plain.host.Has("toplevel.set_max_size 640 480") {
		t.Fatalf("calls = %v", plain.host.Calls())
	}
}

func TestSetState_LegacyAppliesLocally(t *testing.T) {
	hs := newHarness(t, false, true, 300, 200)
	hs.host.Reset()

	hs.frame.SetState(StateMaximized)
	if !hs.host.Has("shell_surface.set_maximized") {
		t.Fatalf("calls = %v", hs.host.Calls())
	}
	if !hs.frame.shared.Snapshot().Maximized {
		t.Fatal("legacy maximize not mirrored locally")
	}

	hs.frame.HandleEvent(platform.LegacyConfigure{Width: 1000, Height: 700})
	hs.frame.SetState(StateRegular)
	if d := hs.frame.Dimensions(); d != (theme.Size{Width: 300, Height: 200}) {
		t.Fatalf("Dimensions() = %+v after unmaximize, want 300x200", d)
	}

	hs.host.Reset()
	hs.frame.SetState(StateMinimized)
	if hs.host.Has("shell_surface.set_maximized") || hs.frame.shared.Snapshot().Maximized {
		t.Fatal("minimize changed the maximized state")
	}
}

func TestSetState_ModernWaitsForConfigure(t *testing.T) {
	hs := newHarness(t, true, true, 300, 200)
	hs.frame.SetState(StateFullscreen)
	if !hs.host.Has("toplevel.set_fullscreen") {
		t.Fatalf("calls = %v", hs.host.Calls())
	}
	if hs.frame.shared.Snapshot().Fullscreen {
		t.Fatal("modern fullscreen applied before the server confirmed it")
	}
}

func TestPointer_CloseButtonAndServerClose(t *testing.T) {
	hs := newHarness(t, true, true, 200, 100)
	hs.ready(t)
	deco := hs.frame.Surface().ID()

	hs.frame.HandleEvent(platform.PointerEnter{Serial: 3, Surface: deco, X: 8 + 200 - 10, Y: 16})
	if hs.frame.Location() != theme.ButtonLocation(theme.ButtonClose) {
		t.Fatalf("Location() = %v, want close button", hs.frame.Location())
	}
	if hs.redraws != 2 {
		t.Fatalf("redraws = %d, want hover redraw after ack", hs.redraws)
	}
	hs.frame.HandleEvent(platform.PointerButton{Serial: 4, Button: platform.BtnLeft, State: platform.ButtonPressed})
	if hs.closes != 1 {
		t.Fatalf("closes = %d after close button", hs.closes)
	}

	hs.frame.HandleEvent(platform.XdgToplevelClose{})
	if hs.closes != 2 {
		t.Fatalf("closes = %d after server close", hs.closes)
	}
}

func TestPointer_LegacyMinimizeButtonIsSilent(t *testing.T) {
	hs := newHarness(t, false, true, 200, 100)
	hs.frame.SetState(StateMaximized)
	deco := hs.frame.Surface().ID()
	hs.frame.HandleEvent(platform.PointerEnter{Serial: 3, Surface: deco, X: 120, Y: 16})
	if hs.frame.Location() != theme.ButtonLocation(theme.ButtonMinimize) {
		t.Fatalf("Location() = %v, want minimize button", hs.frame.Location())
	}
	hs.host.Reset()

	hs.frame.HandleEvent(platform.PointerButton{Serial: 4, Button: platform.BtnLeft, State: platform.ButtonPressed})
	if calls := hs.host.Calls(); len(calls) != 0 {
		t.Fatalf("minimize on the legacy shell issued %v", calls)
	}
	if !hs.frame.shared.Snapshot().Maximized {
		t.Fatal("minimize button dropped the maximized state")
	}
}

func TestPointer_ModernMinimizeButton(t *testing.T) {
	hs := newHarness(t, true, true, 200, 100)
	deco := hs.frame.Surface().ID()
	hs.frame.HandleEvent(platform.PointerEnter{Serial: 3, Surface: deco, X: 120, Y: 16})
	hs.host.Reset()

	hs.frame.HandleEvent(platform.PointerButton{Serial: 4, Button: platform.BtnLeft, State: platform.ButtonPressed})
	if calls := hs.host.Calls(); len(calls) != 1 || calls[0] != "toplevel.set_minimized" {
		t.Fatalf("calls = %v, want only toplevel.set_minimized", calls)
	}
}

func TestPointer_BarPressMoves(t *testing.T) {
	hs := newHarness(t, true, true, 200, 100)
	deco := hs.frame.Surface().ID()
	hs.frame.HandleEvent(platform.PointerEnter{Serial: 3, Surface: deco, X: 100, Y: 16})
	hs.frame.HandleEvent(platform.PointerButton{Serial: 4, Button: platform.BtnLeft, State: platform.ButtonPressed})
	if !hs.host.Has("toplevel.move 4") {
		t.Fatalf("calls = %v", hs.host.Calls())
	}
}

func TestClose_TearsDownInOrder(t *testing.T) {
	hs := newHarness(t, true, true, 100, 100)
	hs.ready(t)
	hs.refresh(t)
	view := hs.attached(t)
	hs.host.Reset()

	hs.frame.Close()
	hs.frame.Close()

	want := []string{
		"toplevel.destroy",
		"xdg_surface.destroy",
		"surface.destroy 2",
		"subsurface.destroy",
		"buffer.destroy 0",
		"pool.destroy",
		"pointer.release",
	}
	got := hs.host.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
	if !view.Destroyed || hs.host.Surfaces[0].Destroyed {
		t.Fatal("Close() must destroy its own buffer and leave the content surface alone")
	}
	if err := hs.frame.Refresh(); err != nil {
		t.Fatalf("Refresh() after Close() error: %v", err)
	}
}

func TestSetTitleAndAppID(t *testing.T) {
	hs := newHarness(t, true, false, 10, 10)
	hs.frame.SetTitle("csdframe demo")
	hs.frame.SetAppID("csdframe")
	if hs.xdg.Toplevel.Title != "csdframe demo" || hs.xdg.Toplevel.AppID != "csdframe" {
		t.Fatalf("toplevel = %+v", *hs.xdg.Toplevel)
	}
}
