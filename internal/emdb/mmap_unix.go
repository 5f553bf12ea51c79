//go:build unix

package emdb

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile maps the first size bytes of f read-write and shared, so
// writes through the returned slice are visible to any other process
// mapping the same file (spec.md §2: "memory is the source of truth").
func mmapFile(f *os.File, size int) ([]byte, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, newErr("mmap", KindIoError, err)
	}
	return data, nil
}

func munmapFile(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := unix.Munmap(data); err != nil {
		return newErr("munmap", KindIoError, err)
	}
	return nil
}

// flushMapping asks the kernel to write dirty mapped pages back to f.
func flushMapping(f *os.File, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		return newErr("msync", KindIoError, err)
	}
	return nil
}
