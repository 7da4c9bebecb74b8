// Package shm manages the shared-memory pixel store behind decoration
// buffers.
package shm

import (
	"errors"
	"fmt"

	"github.com/1broseidon/csdframe/internal/platform"
)

var (
	// ErrAllocation means the backing store or its pool could not be created.
	ErrAllocation = errors.New("shm allocation failed")
	// ErrGrow means the store could not be enlarged; the previous store is
	// still valid.
	ErrGrow = errors.New("shm grow failed")
)

// BytesPerPixel of FormatARGB8888.
const BytesPerPixel = 4

// Buffer is a growable memory-mapped store shared with the server through a
// pool. Capacity only grows.
type Buffer struct {
	store    backing
	pool     platform.Pool
	data     []byte
	capacity int
}

// Create allocates a store of at least initialPixels pixels and a pool over it.
func Create(shm platform.Shm, initialPixels int) (*Buffer, error) {
	store, err := openBacking()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	b, err := newBuffer(shm, store, initialPixels*BytesPerPixel)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return b, nil
}

func newBuffer(shm platform.Shm, store backing, size int) (*Buffer, error) {
	size = max(size, BytesPerPixel)
	if err := store.Truncate(size); err != nil {
		return nil, fmt.Errorf("%w: truncate: %w", ErrAllocation, err)
	}
	data, err := store.Map(size)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %w", ErrAllocation, err)
	}
	pool, err := shm.CreatePool(store.Fd(), size)
	if err != nil {
		_ = store.Unmap(data)
		return nil, fmt.Errorf("%w: create pool: %w", ErrAllocation, err)
	}
	return &Buffer{store: store, pool: pool, data: data, capacity: size}, nil
}

// Capacity returns the store size in bytes.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// EnsureCapacity grows the store to hold at least required bytes, doubling
// the capacity until it fits. On error the store is truncated back and the
// old mapping, pool size and views stay valid.
func (b *Buffer) EnsureCapacity(required int) error {
	if required <= b.capacity {
		return nil
	}
	next := b.capacity
	for next < required {
		next *= 2
	}

	if err := b.store.Truncate(next); err != nil {
		return fmt.Errorf("%w: truncate to %d: %w", ErrGrow, next, err)
	}
	data, err := b.store.Map(next)
	if err != nil {
		_ = b.store.Truncate(b.capacity)
		return fmt.Errorf("%w: mmap %d: %w", ErrGrow, next, err)
	}
	if err := b.pool.Resize(next); err != nil {
		_ = b.store.Unmap(data)
		_ = b.store.Truncate(b.capacity)
		return fmt.Errorf("%w: pool resize to %d: %w", ErrGrow, next, err)
	}

	old := b.data
	b.data = data
	b.capacity = next
	_ = b.store.Unmap(old)
	return nil
}

// Canvas returns n bytes of the mapping starting at offset for direct
// drawing.
func (b *Buffer) Canvas(offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > b.capacity {
		return nil, fmt.Errorf("canvas [%d,%d) outside capacity %d", offset, offset+n, b.capacity)
	}
	return b.data[offset : offset+n : offset+n], nil
}

// Paint copies width x height ARGB8888 pixels, stored row after row, into the
// store at offset.
func (b *Buffer) Paint(offset, width, height int, pixels []byte) error {
	n := width * height * BytesPerPixel
	if len(pixels) < n {
		return fmt.Errorf("paint %dx%d needs %d bytes, got %d", width, height, n, len(pixels))
	}
	dst, err := b.Canvas(offset, n)
	if err != nil {
		return err
	}
	copy(dst, pixels[:n])
	return nil
}

// AllocateView mints a server-visible buffer over a region of the store.
// Views may overlap.
func (b *Buffer) AllocateView(offset, width, height, stride int) (platform.Buffer, error) {
	if width <= 0 || height <= 0 || stride < width*BytesPerPixel {
		return nil, fmt.Errorf("invalid view %dx%d stride %d", width, height, stride)
	}
	if offset < 0 || offset+stride*height > b.capacity {
		return nil, fmt.Errorf("view [%d,%d) outside capacity %d", offset, offset+stride*height, b.capacity)
	}
	return b.pool.CreateBuffer(offset, width, height, stride, platform.FormatARGB8888)
}

// Close destroys the pool and releases the mapping and file.
func (b *Buffer) Close() error {
	b.pool.Destroy()
	err := b.store.Unmap(b.data)
	b.data = nil
	b.capacity = 0
	return errors.Join(err, b.store.Close())
}
