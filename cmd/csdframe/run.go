package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/csdframe/internal/config"
	"github.com/1broseidon/csdframe/internal/frame"
	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/shell"
	"github.com/1broseidon/csdframe/internal/shm"
	"github.com/1broseidon/csdframe/internal/theme"
	"github.com/lucasb-eyer/go-colorful"
)

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: $CSDFRAME_CONFIG or ~/.config/csdframe/config.yaml)")
	title := fs.String("title", "", "Window title (overrides config)")
	width := fs.Int("width", 0, "Content width (overrides config)")
	height := fs.Int("height", 0, "Content height (overrides config)")
	shellMode := fs.String("shell", "", "Shell protocol: auto, modern or legacy (overrides config)")
	noDecorate := fs.Bool("no-decorate", false, "Start without decorations")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: csdframe run [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a client-side decorated window on the X display.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg := res.Config
	if *title != "" {
		cfg.Window.Title = *title
	}
	if *width > 0 {
		cfg.Window.Width = *width
	}
	if *height > 0 {
		cfg.Window.Height = *height
	}
	if *shellMode != "" {
		cfg.Shell = config.ShellMode(*shellMode)
	}
	if *noDecorate {
		cfg.Window.Decorate = false
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWindow(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("csdframe failed", "error", err)
		return 1
	}
	return 0
}

// runWindow opens the decorated window and serves it until ctx is done or
// the window is closed.
func runWindow(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.ApplyDisplay(); err != nil {
		return fmt.Errorf("set display: %w", err)
	}
	background, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	backend, err := platform.NewLinuxBackendFromDisplay(logger.With("component", "x11"))
	if err != nil {
		return err
	}
	defer backend.Disconnect()

	sh := selectShell(cfg.Shell, backend)
	logger.Info("connected", "display", os.Getenv(config.EnvDisplay), "shell", sh.Variant())

	content, err := newContentWindow(backend, background)
	if err != nil {
		return err
	}
	defer content.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := &demoApp{backend: backend, content: content, logger: logger}
	f, err := frame.New(content.surface, cfg.Window.Width, cfg.Window.Height, frame.Env{
		Compositor:    backend,
		Subcompositor: backend,
		Shm:           backend,
		Shell:         sh,
		Seat:          backend,
		Cursors:       backend,
		CursorTheme:   cfg.Cursor.Theme,
		CursorSize:    cfg.Cursor.Size,
	}, frame.Options{
		Logger:      logger.With("component", "frame"),
		Decorate:    cfg.Window.Decorate,
		OnConfigure: app.configure,
		OnClose:     cancel,
		OnRedraw:    app.scheduleRefresh,
	})
	if err != nil {
		return err
	}
	defer f.Close()
	app.frame = f

	f.SetTitle(cfg.Window.Title)
	f.SetAppID(cfg.Window.AppID)
	if s := cfg.Window.MinSize; s != nil {
		f.SetMinSize(&theme.Size{Width: s.Width, Height: s.Height})
	}
	if s := cfg.Window.MaxSize; s != nil {
		f.SetMaxSize(&theme.Size{Width: s.Width, Height: s.Height})
	}
	if err := content.Paint(cfg.Window.Width, cfg.Window.Height); err != nil {
		return err
	}
	applyInitialState(f, cfg.Window, backend, logger)

	backend.SetEventHandler(app.handleEvent)
	app.scheduleRefresh()

	logger.Info("window ready", "title", cfg.Window.Title, "width", cfg.Window.Width, "height", cfg.Window.Height)
	return backend.Run(ctx)
}

func selectShell(mode config.ShellMode, backend *platform.LinuxBackend) shell.Shell {
	switch mode {
	case config.ShellModern:
		return shell.Modern(backend.XdgShell())
	case config.ShellLegacy:
		return shell.Legacy(backend.LegacyShell())
	}
	if backend.PreferModernShell() {
		return shell.Modern(backend.XdgShell())
	}
	return shell.Legacy(backend.LegacyShell())
}

func applyInitialState(f *frame.Frame, w config.WindowConfig, backend *platform.LinuxBackend, logger *slog.Logger) {
	switch w.State {
	case config.StateMaximized:
		f.SetState(frame.StateMaximized)
	case config.StateFullscreen:
		if w.Output == "" {
			f.SetState(frame.StateFullscreen)
			return
		}
		out, err := backend.Output(w.Output)
		if err != nil {
			logger.Warn("output not found, letting the window manager choose", "output", w.Output, "error", err)
			f.SetState(frame.StateFullscreen)
			return
		}
		f.SetFullscreenOn(out)
	}
}

// demoApp glues the frame to the event loop. Everything runs on the loop
// goroutine.
type demoApp struct {
	backend *platform.LinuxBackend
	frame   *frame.Frame
	content *contentWindow
	logger  *slog.Logger
	pending bool
}

func (a *demoApp) handleEvent(ev platform.Event) {
	a.frame.HandleEvent(ev)
	if a.frame.NeedsRefresh() {
		a.scheduleRefresh()
	}
}

// scheduleRefresh coalesces redraw requests into one refresh after the
// current batch of events.
func (a *demoApp) scheduleRefresh() {
	if a.pending {
		return
	}
	a.pending = true
	a.backend.Post(func() {
		a.pending = false
		if err := a.frame.Refresh(); err != nil {
			a.logger.Warn("refresh failed", "error", err)
		}
	})
}

func (a *demoApp) configure(ev frame.ConfigureEvent) {
	if ev.States != nil {
		a.logger.Debug("configure", "maximized", ev.States.Maximized, "fullscreen", ev.States.Fullscreen, "activated", ev.States.Activated)
	}
	if ev.Size == nil {
		return
	}
	if err := a.content.Paint(ev.Size.Width, ev.Size.Height); err != nil {
		a.logger.Warn("content paint failed", "error", err)
		return
	}
	a.frame.Resize(ev.Size.Width, ev.Size.Height)
	a.scheduleRefresh()
}

// contentWindow is the application side of the demo: a surface showing a
// vertical gradient.
type contentWindow struct {
	surface    platform.Surface
	pixels     *shm.Buffer
	background colorful.Color
	view       platform.Buffer
	width      int
	height     int
}

func newContentWindow(backend *platform.LinuxBackend, background colorful.Color) (*contentWindow, error) {
	surface, err := backend.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("create content surface: %w", err)
	}
	pixels, err := shm.Create(backend, 1)
	if err != nil {
		surface.Destroy()
		return nil, fmt.Errorf("create content buffer: %w", err)
	}
	return &contentWindow{surface: surface, pixels: pixels, background: background}, nil
}

// Paint redraws the content at width x height and commits it.
func (c *contentWindow) Paint(width, height int) error {
	if width == c.width && height == c.height && c.view != nil {
		return nil
	}
	stride := width * shm.BytesPerPixel
	n := stride * height
	if err := c.pixels.EnsureCapacity(n); err != nil {
		return err
	}
	canvas, err := c.pixels.Canvas(0, n)
	if err != nil {
		return err
	}
	fillGradient(canvas, width, height, c.background)

	view, err := c.pixels.AllocateView(0, width, height, stride)
	if err != nil {
		return err
	}
	c.surface.Attach(view, 0, 0)
	c.surface.Damage(0, 0, width, height)
	c.surface.Commit()
	if c.view != nil {
		c.view.Destroy()
	}
	c.view = view
	c.width, c.height = width, height
	return nil
}

func (c *contentWindow) Close() {
	if c.view != nil {
		c.view.Destroy()
	}
	_ = c.pixels.Close()
	c.surface.Destroy()
}

// fillGradient paints rows blending from top towards white, in native
// ARGB8888.
func fillGradient(canvas []byte, width, height int, top colorful.Color) {
	white := colorful.Color{R: 1, G: 1, B: 1}
	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = 0.2 * float64(y) / float64(height-1)
		}
		r, g, b := top.BlendLab(white, t).Clamped().RGB255()
		px := 0xff<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		row := canvas[y*width*shm.BytesPerPixel:]
		for x := 0; x < width; x++ {
			binary.NativeEndian.PutUint32(row[x*shm.BytesPerPixel:], px)
		}
	}
}
