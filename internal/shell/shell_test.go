package shell

import (
	"errors"
	"testing"

	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/platform/platformtest"
	"github.com/1broseidon/csdframe/internal/theme"
)

func newModern(t *testing.T) (*Surface, *platformtest.Host, *platformtest.XdgShell) {
	t.Helper()
	host := platformtest.NewHost()
	xs := platformtest.NewXdgShell(host.Recorder)
	surf, _ := host.CreateSurface()
	s, err := NewSurface(Modern(xs), surf, host, nil)
	if err != nil {
		t.Fatalf("NewSurface() error: %v", err)
	}
	return s, host, xs
}

func newLegacy(t *testing.T) (*Surface, *platformtest.Host, *platformtest.LegacyShell) {
	t.Helper()
	host := platformtest.NewHost()
	ls := platformtest.NewLegacyShell(host.Recorder)
	surf, _ := host.CreateSurface()
	s, err := NewSurface(Legacy(ls), surf, host, nil)
	if err != nil {
		t.Fatalf("NewSurface() error: %v", err)
	}
	return s, host, ls
}

func TestShell_Readiness(t *testing.T) {
	if Legacy(nil).NeedsReadiness() {
		t.Fatal("legacy shell should start ready")
	}
	if !Modern(nil).NeedsReadiness() {
		t.Fatal("modern shell should wait for an ack")
	}
	if Legacy(nil).Capabilities().Minimize {
		t.Fatal("legacy shell should not advertise minimize")
	}
}

func TestNewSurface_ModernCommitsBareSurface(t *testing.T) {
	_, host, _ := newModern(t)
	if host.Surfaces[0].Commits != 1 {
		t.Fatalf("commits = %d, want 1 initial commit", host.Surfaces[0].Commits)
	}
	if !host.Has("xdg_surface.get_toplevel") {
		t.Fatalf("toplevel role not assigned: %v", host.Calls())
	}
}

func TestNewSurface_LegacySetsToplevel(t *testing.T) {
	_, host, _ := newLegacy(t)
	if !host.Has("shell_surface.set_toplevel") {
		t.Fatalf("calls = %v, want set_toplevel", host.Calls())
	}
}

func TestNewSurface_Failure(t *testing.T) {
	host := platformtest.NewHost()
	xs := platformtest.NewXdgShell(host.Recorder)
	xs.Fail = true
	surf, _ := host.CreateSurface()
	if _, err := NewSurface(Modern(xs), surf, host, nil); !errors.Is(err, platformtest.ErrInjected) {
		t.Fatalf("NewSurface() error = %v, want injected failure", err)
	}
}

func TestHandleEvent_PingsAnsweredInline(t *testing.T) {
	s, host, _ := newModern(t)
	if _, ok := s.HandleEvent(platform.XdgPing{Serial: 7}); ok {
		t.Fatal("ping should not be reported")
	}
	if !host.Has("xdg_wm_base.pong 7") {
		t.Fatalf("calls = %v, want pong 7", host.Calls())
	}

	l, lhost, _ := newLegacy(t)
	if _, ok := l.HandleEvent(platform.LegacyPing{Serial: 3}); ok {
		t.Fatal("legacy ping should not be reported")
	}
	if !lhost.Has("shell_surface.pong 3") {
		t.Fatalf("calls = %v, want pong 3", lhost.Calls())
	}
}

func TestHandleEvent_ModernConfigureAndAck(t *testing.T) {
	s, host, _ := newModern(t)
	ev, ok := s.HandleEvent(platform.XdgToplevelConfigure{
		Width: 640, Height: 480,
		States: []uint32{platform.XdgStateMaximized, 99, platform.XdgStateActivated},
	})
	if !ok {
		t.Fatal("configure not reported")
	}
	c := ev.(Configure)
	if c.Width != 640 || c.Height != 480 || c.States == nil {
		t.Fatalf("configure = %+v", c)
	}
	if want := (States{Maximized: true, Activated: true}); *c.States != want {
		t.Fatalf("states = %+v, want %+v", *c.States, want)
	}

	ev, ok = s.HandleEvent(platform.XdgSurfaceConfigure{Serial: 11})
	if !ok || ev != (Ack{Serial: 11}) {
		t.Fatalf("surface configure = (%v,%v), want Ack 11", ev, ok)
	}
	if !host.Has("xdg_surface.ack_configure 11") {
		t.Fatalf("calls = %v, want ack 11", host.Calls())
	}

	if ev, ok := s.HandleEvent(platform.XdgToplevelClose{}); !ok || ev != (Close{}) {
		t.Fatalf("close = (%v,%v)", ev, ok)
	}
}

func TestHandleEvent_LegacyConfigureHasNoStates(t *testing.T) {
	s, _, _ := newLegacy(t)
	ev, ok := s.HandleEvent(platform.LegacyConfigure{Edges: platform.EdgeBottomRight, Width: 300, Height: 200})
	if !ok {
		t.Fatal("configure not reported")
	}
	c := ev.(Configure)
	if c.States != nil || c.Edges != platform.EdgeBottomRight || c.Width != 300 {
		t.Fatalf("configure = %+v", c)
	}
	if _, ok := s.HandleEvent(platform.XdgToplevelClose{}); ok {
		t.Fatal("legacy surface reported a modern event")
	}
}

func TestRequests_LegacyMapsAndDropsUnsupported(t *testing.T) {
	s, host, ls := newLegacy(t)
	host.Reset()

	s.UnsetMaximized()
	s.UnsetFullscreen()
	s.SetMinimized()
	s.SetMinSize(&theme.Size{Width: 10, Height: 10})
	s.SetMaxSize(nil)
	s.SetAppID("demo")
	s.Resize(4, platform.EdgeLeft)

	want := []string{
		"shell_surface.set_toplevel",
		"shell_surface.set_toplevel",
		"shell_surface.set_class demo",
		"shell_surface.resize 4 4",
	}
	got := host.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
	if ls.Surface.Class != "demo" {
		t.Fatalf("class = %q", ls.Surface.Class)
	}
}

func TestRequests_ModernForwardsEverything(t *testing.T) {
	s, host, xs := newModern(t)
	host.Reset()

	s.SetMinimized()
	s.SetMaximized()
	s.UnsetMaximized()
	s.SetMinSize(&theme.Size{Width: 116, Height: 132})
	s.SetMaxSize(nil)
	s.Move(9)

	for _, c := range []string{
		"toplevel.set_minimized",
		"toplevel.set_maximized",
		"toplevel.unset_maximized",
		"toplevel.set_min_size 116 132",
		"toplevel.set_max_size 0 0",
		"toplevel.move 9",
	} {
		if !host.Has(c) {
			t.Fatalf("missing %q in %v", c, host.Calls())
		}
	}
	if xs.Toplevel.MinSize != [2]int{116, 132} {
		t.Fatalf("min size = %v", xs.Toplevel.MinSize)
	}

	s.Destroy()
	calls := host.Calls()
	if calls[len(calls)-2] != "toplevel.destroy" || calls[len(calls)-1] != "xdg_surface.destroy" {
		t.Fatalf("destroy order = %v", calls[len(calls)-2:])
	}
}
