package emdb

import "strings"

// headerPayloadSize is the fixed size of the serialized Header record:
// Fips(4) + Edges(4*4) + Cfccs(4) + BlockSize(4) + NumTotalBlocks(4) +
// NumUsedBlocks(4) + FileSize(4) + CurrentTrkseg(4) + dateLen(4) +
// dateBuf(maxMapDateLen) + LastGlobalTrkseg(4) + NumBaseLines(4).
const headerPayloadSize = 4 + 4*4 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + maxMapDateLen + 4 + 4

// Header is the container's global state (spec.md §3 "Container header").
// It is cached in memory from the mapped image at Open/Create and
// serialized back by Container.Sync before any operation (grow, sync, close)
// that must leave the on-disk bytes consistent with memory.
type Header struct {
	Fips           int32
	Edges          Area
	Cfccs          uint32
	BlockSize      uint32
	NumTotalBlocks uint32
	NumUsedBlocks  uint32
	FileSize       uint32
	CurrentTrkseg  int32
	RMMapDate      string

	// LastGlobalTrkseg is the tail of the trkseg "global" linked list
	// (see Trksegs.Add); persisted here since it is container-wide
	// bookkeeping rather than a per-trkseg field.
	LastGlobalTrkseg int32

	// NumBaseLines is the base-map's total line count as of the last
	// map-date stamped into RMMapDate. It sizes the override index
	// section (one slot per base-map line, spec.md §3 "Override") and
	// is fixed for the container's lifetime unless the base map changes.
	NumBaseLines int32
}

// MarkCFCC sets bit cfcc in the feature-class bitmap. Spec §9: the bitmap
// is a single word, so cfcc must be < 32.
func (h *Header) MarkCFCC(cfcc int) {
	if cfcc < 0 || cfcc >= 32 {
		corruptf("mark_cfcc", "cfcc %d out of range for a 32-bit bitmap", cfcc)
	}
	h.Cfccs |= 1 << uint(cfcc)
}

// IsCFCCMarked reports whether bit cfcc is set.
func (h *Header) IsCFCCMarked(cfcc int) bool {
	if cfcc < 0 || cfcc >= 32 {
		return false
	}
	return h.Cfccs&(1<<uint(cfcc)) != 0
}

// checkInvariants validates the header invariants from spec.md §3.
func (h *Header) checkInvariants() error {
	if h.NumUsedBlocks > h.NumTotalBlocks {
		return newErr("header_invariant", KindIoError, nil)
	}
	return nil
}

func decodeHeader(b []byte) Header {
	var h Header
	h.Fips = readI32(b[0:4])
	h.Edges.West = readI32(b[4:8])
	h.Edges.South = readI32(b[8:12])
	h.Edges.East = readI32(b[12:16])
	h.Edges.North = readI32(b[16:20])
	h.Cfccs = readU32(b[20:24])
	h.BlockSize = readU32(b[24:28])
	h.NumTotalBlocks = readU32(b[28:32])
	h.NumUsedBlocks = readU32(b[32:36])
	h.FileSize = readU32(b[36:40])
	h.CurrentTrkseg = readI32(b[40:44])
	dateLen := int(readU32(b[44:48]))
	dateBuf := b[48 : 48+maxMapDateLen]
	if dateLen > len(dateBuf) {
		dateLen = len(dateBuf)
	}
	h.RMMapDate = string(dateBuf[:dateLen])
	h.LastGlobalTrkseg = readI32(b[48+maxMapDateLen : 52+maxMapDateLen])
	h.NumBaseLines = readI32(b[52+maxMapDateLen : 56+maxMapDateLen])
	return h
}

func (h Header) encode(b []byte) {
	writeI32(b[0:4], h.Fips)
	writeI32(b[4:8], h.Edges.West)
	writeI32(b[8:12], h.Edges.South)
	writeI32(b[12:16], h.Edges.East)
	writeI32(b[16:20], h.Edges.North)
	writeU32(b[20:24], h.Cfccs)
	writeU32(b[24:28], h.BlockSize)
	writeU32(b[28:32], h.NumTotalBlocks)
	writeU32(b[32:36], h.NumUsedBlocks)
	writeU32(b[36:40], h.FileSize)
	writeI32(b[40:44], h.CurrentTrkseg)

	date := h.RMMapDate
	if len(date) > maxMapDateLen {
		date = date[:maxMapDateLen]
	}
	writeU32(b[44:48], uint32(len(date)))
	dateBuf := b[48 : 48+maxMapDateLen]
	for i := range dateBuf {
		dateBuf[i] = 0
	}
	copy(dateBuf, date)

	writeI32(b[48+maxMapDateLen:52+maxMapDateLen], h.LastGlobalTrkseg)
	writeI32(b[52+maxMapDateLen:56+maxMapDateLen], h.NumBaseLines)
}

// mapDateMatches compares the container's stamped base-map date against
// the currently active base map's date, case-sensitively (dates are
// formatted timestamps, not user text).
func mapDateMatches(containerDate, activeDate string) bool {
	return strings.TrimSpace(containerDate) == strings.TrimSpace(activeDate)
}
