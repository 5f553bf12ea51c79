package emdb

// On-disk layout constants. The container is a single flat byte image
// (mapped read-write, shared) made up of: a fixed file header, the
// Header payload, the section table (one fixed-size record per section,
// plus each section's blocks[] index array), and finally the data_blocks
// pool. Multi-byte integers are packed with a fixed byte order rather
// than true host order (see binutil.go); portability across machines is
// explicitly out of scope.
const (
	fileMagic        = "EMDBCTNR"
	formatVersion    = uint32(1)
	fileHeaderSize   = 32 // magic(8) + version(4) + headerOff(4) + tableOff(4) + tableSize(4) + blocksOff(4) + fileSize(4)
	maxMapDateLen    = 32
	sectionNameBytes = 24

	// defaultBlockSize must be at least 2x the largest record size (Square).
	defaultBlockSize = 2 * squareDescSize

	defaultInitialBlocks = 1000

	flushEvery = 300

	editorMaxPoints    = 10000
	editorMaxPointsDel = 1000
	editorMaxShapes    = 100000
	editorMaxStreets   = 500
	editorMaxLines     = 5000
	editorMaxRanges    = editorMaxLines * 2
	editorMaxTrksegs   = 20000
	editorMaxMarkers   = 2000
	editorMaxOverrides = editorMaxLines

	// editorDBLongitudeStep/editorDBLatitudeStep define the uniform grid
	// used by the spatial index (squares). Chosen so a typical US county
	// (roughly 0.3-1.5 degrees across) yields a few hundred squares, as
	// required by spec; the exact original constants were not present in
	// the retrieved source slice (see DESIGN.md).
	editorDBLongitudeStep int32 = 50_000 // micro-degrees, ~0.05 deg
	editorDBLatitudeStep  int32 = 50_000

	maxBlocksPerSquare = 8

	dictionaryIndexSize = 0x10000
	dictionaryDataSize  = 0x10000

	// dictOverflowFanout caps the number of entries in each volume's
	// in-memory hash accelerator; once full, the accelerator is cleared
	// and refilled by later lookups, while misses always fall back to the
	// on-disk trie search; see dictionary.go.
	dictOverflowFanout = 64
)

// sectionKind enumerates the closed set of section handlers. Spec §9 calls
// for replacing dynamic map/activate/unmap dispatch with a fixed enum.
type sectionKind uint8

const (
	kindHeader sectionKind = iota
	kindDataBlocks
	kindPoints
	kindPointsDel
	kindShape
	kindLines
	kindSquares
	kindStreets
	kindRanges
	kindRoute
	kindOverride
	kindOverrideIndex
	kindTrkseg
	kindMarkers
	kindDictVolume
	kindDictData
	kindDictTrees
	kindDictReferences
)

func (k sectionKind) String() string {
	names := [...]string{
		"header", "data_blocks", "points", "points_del", "shape", "lines",
		"squares", "streets", "ranges", "route", "override", "override_index",
		"trkseg", "markers", "dict_volume", "data", "trees", "references",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// DictVolumeName enumerates the six string-dictionary volumes.
type DictVolumeName string

const (
	VolumeStreets DictVolumeName = "streets"
	VolumeCities  DictVolumeName = "cities"
	VolumeTypes   DictVolumeName = "types"
	VolumeZips    DictVolumeName = "zips"
	VolumeT2S     DictVolumeName = "t2s"
	VolumeNotes   DictVolumeName = "notes"
)

var allVolumes = [...]DictVolumeName{
	VolumeStreets, VolumeCities, VolumeTypes, VolumeZips, VolumeT2S, VolumeNotes,
}
