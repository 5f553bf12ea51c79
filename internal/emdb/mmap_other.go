//go:build !unix

package emdb

import "os"

// mmapFile falls back to a plain heap buffer read in from f on
// platforms without a real shared mapping. Writes are only committed
// back to disk by flushMapping (called from Sync/Close/Grow), so the
// single-writer, best-effort-durability semantics of spec.md §2 still
// hold; only the "memory IS the file" property is approximated rather
// than literal.
func mmapFile(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	_, _ = f.ReadAt(data, 0)
	return data, nil
}

func munmapFile(data []byte) error { return nil }

func flushMapping(f *os.File, data []byte) error {
	if _, err := f.WriteAt(data, 0); err != nil {
		return newErr("sync", KindIoError, err)
	}
	if err := f.Sync(); err != nil {
		return newErr("sync", KindIoError, err)
	}
	return nil
}
