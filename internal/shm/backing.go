package shm

import (
	"fmt"
	"os"

	"github.com/1broseidon/csdframe/internal/runtimepath"
	"golang.org/x/sys/unix"
)

// backing is the file shared with the server and its memory mapping.
type backing interface {
	Fd() uintptr
	Truncate(size int) error
	Map(size int) ([]byte, error)
	Unmap(data []byte) error
	Close() error
}

type fileBacking struct {
	f *os.File
}

// openBacking prefers an anonymous memfd and falls back to an unlinked file
// in the runtime directory.
func openBacking() (*fileBacking, error) {
	fd, err := unix.MemfdCreate("csdframe-shm", unix.MFD_CLOEXEC)
	if err == nil {
		return &fileBacking{f: os.NewFile(uintptr(fd), "csdframe-shm")}, nil
	}

	f, ferr := runtimepath.AnonymousFile("csdframe-shm-*")
	if ferr != nil {
		return nil, fmt.Errorf("memfd_create: %v; %w", err, ferr)
	}
	return &fileBacking{f: f}, nil
}

func (b *fileBacking) Fd() uintptr {
	return b.f.Fd()
}

func (b *fileBacking) Truncate(size int) error {
	return b.f.Truncate(int64(size))
}

func (b *fileBacking) Map(size int) ([]byte, error) {
	return unix.Mmap(int(b.f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func (b *fileBacking) Unmap(data []byte) error {
	if data == nil {
		return nil
	}
	return unix.Munmap(data)
}

func (b *fileBacking) Close() error {
	return b.f.Close()
}
