package pointer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/csdframe/internal/platform"
	"github.com/1broseidon/csdframe/internal/theme"
)

// DefaultCursor is shown outside resize zones.
const DefaultCursor = "left_ptr"

var cursorNames = map[theme.Location]string{
	theme.LocationTop:         "top_side",
	theme.LocationTopRight:    "top_right_corner",
	theme.LocationRight:       "right_side",
	theme.LocationBottomRight: "bottom_right_corner",
	theme.LocationBottom:      "bottom_side",
	theme.LocationBottomLeft:  "bottom_left_corner",
	theme.LocationLeft:        "left_side",
	theme.LocationTopLeft:     "top_left_corner",
}

// CursorName returns the themed cursor shown over loc.
func CursorName(loc theme.Location) string {
	if name, ok := cursorNames[loc]; ok {
		return name
	}
	return DefaultCursor
}

var resizeEdges = map[theme.Location]platform.ResizeEdge{
	theme.LocationTop:         platform.EdgeTop,
	theme.LocationTopRight:    platform.EdgeTopRight,
	theme.LocationRight:       platform.EdgeRight,
	theme.LocationBottomRight: platform.EdgeBottomRight,
	theme.LocationBottom:      platform.EdgeBottom,
	theme.LocationBottomLeft:  platform.EdgeBottomLeft,
	theme.LocationLeft:        platform.EdgeLeft,
	theme.LocationTopLeft:     platform.EdgeTopLeft,
}

// ResizeEdge returns the edge grabbed by a press over loc.
func ResizeEdge(loc theme.Location) (platform.ResizeEdge, bool) {
	e, ok := resizeEdges[loc]
	return e, ok
}

// ThemedPointer shows named cursors from a cursor theme on a dedicated
// cursor surface. Missing cursors leave the current image in place.
type ThemedPointer struct {
	pointer    platform.Pointer
	surface    platform.Surface
	theme      platform.CursorTheme
	logger     *slog.Logger
	lastSerial uint32
}

// LoadThemedPointer loads theme name at size and creates the cursor surface.
// An empty name selects the default theme.
func LoadThemedPointer(p platform.Pointer, compositor platform.Compositor, loader platform.CursorLoader, shm platform.Shm, name string, size int, logger *slog.Logger) (*ThemedPointer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	th, err := loader.LoadTheme(name, size, shm)
	if err != nil {
		return nil, fmt.Errorf("load cursor theme %q: %w", name, err)
	}
	surface, err := compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("create cursor surface: %w", err)
	}
	return &ThemedPointer{pointer: p, surface: surface, theme: th, logger: logger}, nil
}

// SetCursor shows cursor name for the enter event with serial.
func (t *ThemedPointer) SetCursor(name string, serial uint32) {
	t.lastSerial = serial
	t.apply(name)
}

// ChangeCursor shows cursor name using the last known serial.
func (t *ThemedPointer) ChangeCursor(name string) {
	t.apply(name)
}

func (t *ThemedPointer) apply(name string) {
	cursor, ok := t.theme.Cursor(name)
	if !ok {
		t.logger.Debug("cursor not in theme", "cursor", name)
		return
	}
	buf, img, ok := cursor.Image(0)
	if !ok {
		t.logger.Debug("cursor has no image", "cursor", name)
		return
	}
	t.surface.Attach(buf, 0, 0)
	t.surface.Damage(0, 0, img.Width, img.Height)
	t.surface.Commit()
	t.pointer.SetCursor(t.lastSerial, t.surface, img.HotspotX, img.HotspotY)
}

// Release destroys the cursor surface and releases the pointer.
func (t *ThemedPointer) Release() {
	t.surface.Destroy()
	t.pointer.Release()
}
