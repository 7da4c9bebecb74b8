// Package platformtest provides an in-memory host that records every request
// made against it.
package platformtest

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/1broseidon/csdframe/internal/platform"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected failure")

// Recorder keeps an ordered log of requests.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *Recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the log.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Count returns how many logged calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Has reports whether call was logged verbatim.
func (r *Recorder) Has(call string) bool {
	for _, c := range r.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Host implements the compositor, sub-compositor, shm and seat globals.
type Host struct {
	*Recorder

	FailSurface    bool
	FailSubsurface bool
	FailPool       bool

	Surfaces    []*Surface
	Subsurfaces []*Subsurface
	Pools       []*Pool
	Pointer     *Pointer

	nextID platform.SurfaceID
}

// NewHost returns an empty host.
func NewHost() *Host {
	return &Host{Recorder: &Recorder{}}
}

// CreateSurface implements platform.Compositor.
func (h *Host) CreateSurface() (platform.Surface, error) {
	if h.FailSurface {
		return nil, ErrInjected
	}
	h.nextID++
	s := &Surface{id: h.nextID, rec: h.Recorder}
	h.Surfaces = append(h.Surfaces, s)
	h.record("compositor.create_surface %d", s.id)
	return s, nil
}

// GetSubsurface implements platform.Subcompositor.
func (h *Host) GetSubsurface(child, parent platform.Surface) (platform.Subsurface, error) {
	if h.FailSubsurface {
		return nil, ErrInjected
	}
	ss := &Subsurface{Child: child.ID(), Parent: parent.ID(), rec: h.Recorder}
	h.Subsurfaces = append(h.Subsurfaces, ss)
	h.record("subcompositor.get_subsurface %d %d", child.ID(), parent.ID())
	return ss, nil
}

// CreatePool implements platform.Shm.
func (h *Host) CreatePool(fd uintptr, size int) (platform.Pool, error) {
	if h.FailPool {
		return nil, ErrInjected
	}
	p := &Pool{Size: size, rec: h.Recorder}
	h.Pools = append(h.Pools, p)
	h.record("shm.create_pool %d", size)
	return p, nil
}

// GetPointer implements platform.Seat.
func (h *Host) GetPointer() (platform.Pointer, error) {
	h.Pointer = &Pointer{rec: h.Recorder}
	return h.Pointer, nil
}

// Surface records attach/damage/commit.
type Surface struct {
	id  platform.SurfaceID
	rec *Recorder

	Attached  platform.Buffer
	Damaged   []image.Rectangle
	Commits   int
	Destroyed bool
}

func (s *Surface) ID() platform.SurfaceID { return s.id }

func (s *Surface) Attach(buf platform.Buffer, x, y int) {
	s.Attached = buf
	s.rec.record("surface.attach %d", s.id)
}

func (s *Surface) Damage(x, y, width, height int) {
	s.Damaged = append(s.Damaged, image.Rect(x, y, x+width, y+height))
	s.rec.record("surface.damage %d %d %d %d %d", s.id, x, y, width, height)
}

func (s *Surface) Commit() {
	s.Commits++
	s.rec.record("surface.commit %d", s.id)
}

func (s *Surface) Destroy() {
	s.Destroyed = true
	s.rec.record("surface.destroy %d", s.id)
}

// Subsurface records its position.
type Subsurface struct {
	Child, Parent platform.SurfaceID
	X, Y          int
	Desync        bool
	Destroyed     bool
	rec           *Recorder
}

func (s *Subsurface) SetPosition(x, y int) {
	s.X, s.Y = x, y
	s.rec.record("subsurface.set_position %d %d", x, y)
}

func (s *Subsurface) SetDesync() { s.Desync = true }

func (s *Subsurface) Destroy() {
	s.Destroyed = true
	s.rec.record("subsurface.destroy")
}

// Pool records resizes and minted buffers.
type Pool struct {
	Size       int
	FailResize bool
	Buffers    []*Buffer
	Destroyed  bool
	rec        *Recorder
}

func (p *Pool) Resize(size int) error {
	if p.FailResize {
		return ErrInjected
	}
	p.Size = size
	p.rec.record("pool.resize %d", size)
	return nil
}

func (p *Pool) CreateBuffer(offset, width, height, stride int, format platform.Format) (platform.Buffer, error) {
	b := &Buffer{Offset: offset, Width: width, Height: height, Stride: stride, rec: p.rec}
	p.Buffers = append(p.Buffers, b)
	p.rec.record("pool.create_buffer %d %dx%d", offset, width, height)
	return b, nil
}

func (p *Pool) Destroy() {
	p.Destroyed = true
	p.rec.record("pool.destroy")
}

// Buffer is a minted pool view.
type Buffer struct {
	Offset, Width, Height, Stride int
	Label                         string
	Destroyed                     bool
	rec                           *Recorder
}

func (b *Buffer) Destroy() {
	b.Destroyed = true
	if b.rec != nil {
		b.rec.record("buffer.destroy %d", b.Offset)
	}
}

// Pointer records cursor changes.
type Pointer struct {
	Serial   uint32
	Surface  platform.Surface
	HotspotX int
	HotspotY int
	Released bool
	rec      *Recorder
}

func (p *Pointer) SetCursor(serial uint32, surface platform.Surface, hotspotX, hotspotY int) {
	p.Serial, p.Surface, p.HotspotX, p.HotspotY = serial, surface, hotspotX, hotspotY
	p.rec.record("pointer.set_cursor %d", serial)
}

// CursorName returns the name of the cursor image last attached to the
// cursor surface, or "" when none was set.
func (p *Pointer) CursorName() string {
	s, ok := p.Surface.(*Surface)
	if !ok || s.Attached == nil {
		return ""
	}
	b, ok := s.Attached.(*Buffer)
	if !ok {
		return ""
	}
	return b.Label
}

func (p *Pointer) Release() {
	p.Released = true
	p.rec.record("pointer.release")
}
