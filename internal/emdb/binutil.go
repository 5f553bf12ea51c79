package emdb

import (
	"encoding/binary"

	"github.com/cespare/xxhash"
)

// readU16/readU32/writeU16/writeU32 pack and unpack the fixed-width
// integers used throughout the on-disk container image. The format is not
// portable across machine endianness (see spec non-goals), so a single
// fixed byte order is enforced rather than relying on host order.

func readU16(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func readU32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func readI32(b []byte) int32 {
	return int32(readU32(b))
}

func writeU16(b []byte, v uint16) {
	if len(b) < 2 {
		return
	}
	binary.LittleEndian.PutUint16(b, v)
}

func writeU32(b []byte, v uint32) {
	if len(b) < 4 {
		return
	}
	binary.LittleEndian.PutUint32(b, v)
}

func writeI32(b []byte, v int32) {
	writeU32(b, uint32(v))
}

// dictHash returns a deterministic 64-bit hash of a case-folded string,
// used only as an in-memory overflow accelerator for the string
// dictionary (see dictionary.go); it is never persisted.
func dictHash(lowered string) uint64 {
	return xxhash.Sum64String(lowered)
}
