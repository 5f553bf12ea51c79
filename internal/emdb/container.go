package emdb

import (
	"os"

	"github.com/cespare/xxhash"
)

// sectionSpec describes one fixed-capacity section of the container: its
// kind, item size, and maximum item count. Specs are derived purely from
// the container's edges and the editorMax* constants, so they never need
// to be persisted — Open recomputes the same specs Create used.
type sectionSpec struct {
	kind     sectionKind
	itemSize int
	maxItems int
}

func buildSectionSpecs(edges Area, numBaseLines int32) []sectionSpec {
	numLon, numLat := newSquaresGrid(edges)
	if numBaseLines < 1 {
		numBaseLines = 1
	}
	return []sectionSpec{
		{kindOverride, overrideSize, editorMaxOverrides},
		{kindOverrideIndex, overrideIndexSize, int(numBaseLines)},
		{kindRoute, routeSize, editorMaxLines},
		{kindTrkseg, trksegSize, editorMaxTrksegs},
		{kindSquares, squareDescSize, numLon * numLat},
		{kindLines, lineSize, editorMaxLines},
		{kindRanges, rangeSize, editorMaxRanges},
		{kindStreets, streetSize, editorMaxStreets},
		{kindShape, shapeSize, editorMaxShapes},
		{kindPointsDel, delPointSize, editorMaxPointsDel},
		{kindPoints, pointSize, editorMaxPoints},
		{kindMarkers, markerSize, editorMaxMarkers},
		{kindDictVolume, dictVolumeSize, len(allVolumes)},
		{kindDictData, 1, dictionaryDataSize},
		{kindDictTrees, dictTreeSize, dictionaryIndexSize},
		{kindDictReferences, dictRefSize, dictionaryIndexSize},
	}
}

func tableEntrySize(spec sectionSpec, blockSize int) int {
	_, maxBlocks := computeBlocking(spec.itemSize, spec.maxItems, blockSize)
	return 8 + maxBlocks*4 // numItems + maxBlocks + blocks[maxBlocks]
}

// Container is one open, memory-mapped EMDB file: the header, the shared
// data_blocks pool, and every section built on top of it (spec.md §2,
// "Container I/O"). There is exactly one Container per open county file;
// CountyCache is the layer that owns at most countyCacheSize of them.
type Container struct {
	path string
	file *os.File
	data []byte

	header Header
	pool   *blockPool

	headerOff int
	tableOff  int
	blocksOff int

	specs          []sectionSpec
	sectionOffsets map[sectionKind]int
	sections       map[sectionKind]*sectionDescriptor

	Points    *Points
	DelPoints *DelPoints
	Shapes    *Shapes
	Trksegs   *Trksegs
	Lines     *Lines
	Squares   *Squares
	Streets   *Streets
	Ranges    *Ranges
	Routes    *Routes
	Overrides *Overrides
	Markers   *Markers
	Dict      *Dictionary

	appendsSinceSync int
}

// CreateContainer creates a new, empty container at path for the county
// identified by fips, covering edges, stamped with the base map's
// mapDate (spec.md §4.1 "editor_db_create"). It fails if path already
// exists.
func CreateContainer(path string, fips int32, edges Area, mapDate string, numBaseLines int32) (*Container, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, newErr("create", KindIoError, err)
	}

	specs := buildSectionSpecs(edges, numBaseLines)
	tableSize := 0
	for _, s := range specs {
		tableSize += tableEntrySize(s, defaultBlockSize)
	}

	headerOff := fileHeaderSize
	tableOff := headerOff + headerPayloadSize
	blocksOff := tableOff + tableSize
	fileSize := blocksOff + defaultInitialBlocks*defaultBlockSize

	if err := f.Truncate(int64(fileSize)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, newErr("create", KindIoError, err)
	}

	data, err := mmapFile(f, fileSize)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}

	c := &Container{
		path:      path,
		file:      f,
		data:      data,
		headerOff: headerOff,
		tableOff:  tableOff,
		blocksOff: blocksOff,
		specs:     specs,
	}

	copy(data[0:8], fileMagic)
	writeU32(data[8:12], formatVersion)
	writeU32(data[12:16], uint32(headerOff))
	writeU32(data[16:20], uint32(tableOff))
	writeU32(data[20:24], uint32(tableSize))
	writeU32(data[24:28], uint32(blocksOff))
	writeU32(data[28:32], uint32(fileSize))

	c.header = Header{
		Fips:             fips,
		Edges:            edges,
		BlockSize:        uint32(defaultBlockSize),
		NumTotalBlocks:   uint32(defaultInitialBlocks),
		NumUsedBlocks:    0,
		FileSize:         uint32(fileSize),
		CurrentTrkseg:    -1,
		RMMapDate:        mapDate,
		LastGlobalTrkseg: -1,
		NumBaseLines:     numBaseLines,
	}

	c.pool = &blockPool{blockSize: defaultBlockSize, data: data[blocksOff:], header: &c.header}
	c.buildSections()

	if err := c.Sync(); err != nil {
		c.Close()
		os.Remove(path)
		return nil, err
	}

	return c, nil
}

// OpenContainer opens an existing container at path. If activeMapDate is
// non-empty, it is compared against the container's stamped RMMapDate;
// a mismatch is reported as KindVersionMismatch rather than silently
// proceeding against stale geometry (spec.md §4.1).
func OpenContainer(path string, activeMapDate string) (*Container, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErr("open", KindNotFound, err)
		}
		return nil, newErr("open", KindIoError, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newErr("open", KindIoError, err)
	}
	size := int(info.Size())
	if size < fileHeaderSize {
		f.Close()
		return nil, newErr("open", KindIoError, nil)
	}

	data, err := mmapFile(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	if string(data[0:8]) != fileMagic {
		munmapFile(data)
		f.Close()
		return nil, newErr("open", KindIoError, nil)
	}
	if readU32(data[8:12]) != formatVersion {
		munmapFile(data)
		f.Close()
		return nil, newErr("open", KindVersionMismatch, nil)
	}
	headerOff := int(readU32(data[12:16]))
	tableOff := int(readU32(data[16:20]))
	blocksOff := int(readU32(data[24:28]))

	header := decodeHeader(data[headerOff : headerOff+headerPayloadSize])
	if err := header.checkInvariants(); err != nil {
		munmapFile(data)
		f.Close()
		return nil, err
	}
	if activeMapDate != "" && !mapDateMatches(header.RMMapDate, activeMapDate) {
		munmapFile(data)
		f.Close()
		return nil, newErr("open", KindVersionMismatch, nil)
	}

	c := &Container{
		path:      path,
		file:      f,
		data:      data,
		headerOff: headerOff,
		tableOff:  tableOff,
		blocksOff: blocksOff,
		header:    header,
		specs:     buildSectionSpecs(header.Edges, header.NumBaseLines),
	}
	c.pool = &blockPool{blockSize: int(header.BlockSize), data: data[blocksOff:], header: &c.header}
	c.buildSections()
	c.loadSectionTable()
	c.Trksegs.lastGlobalTrkseg = header.LastGlobalTrkseg

	return c, nil
}

// buildSections constructs every sectionDescriptor and typed view over
// c.pool, in the fixed order of c.specs, and records each section's
// table byte offset for Sync/loadSectionTable.
func (c *Container) buildSections() {
	c.sections = make(map[sectionKind]*sectionDescriptor, len(c.specs))
	c.sectionOffsets = make(map[sectionKind]int, len(c.specs))

	offset := c.tableOff
	for _, spec := range c.specs {
		sec := newSectionDescriptor(spec.kind.String(), spec.itemSize, spec.maxItems, c.pool.blockSize, c.pool)
		sec.notify = c.noteAppend
		c.sections[spec.kind] = sec
		c.sectionOffsets[spec.kind] = offset
		offset += tableEntrySize(spec, c.pool.blockSize)
	}

	numLon, numLat := newSquaresGrid(c.header.Edges)

	c.Points = &Points{sec: c.sections[kindPoints]}
	c.DelPoints = &DelPoints{sec: c.sections[kindPointsDel]}
	c.Shapes = &Shapes{sec: c.sections[kindShape]}
	c.Trksegs = &Trksegs{sec: c.sections[kindTrkseg], shapes: c.Shapes, points: c.Points, lastGlobalTrkseg: -1}
	c.Lines = &Lines{sec: c.sections[kindLines]}
	c.Squares = &Squares{sec: c.sections[kindSquares], pool: c.pool, edges: c.header.Edges, numLon: numLon, numLat: numLat}
	c.Streets = &Streets{sec: c.sections[kindStreets]}
	c.Ranges = &Ranges{sec: c.sections[kindRanges]}
	c.Routes = &Routes{sec: c.sections[kindRoute]}
	c.Overrides = &Overrides{sec: c.sections[kindOverride], indexSec: c.sections[kindOverrideIndex]}
	c.Markers = &Markers{sec: c.sections[kindMarkers]}
	c.Dict = newDictionary(c.sections[kindDictVolume], c.sections[kindDictTrees], c.sections[kindDictReferences], c.sections[kindDictData])
}

func (c *Container) noteAppend() {
	c.appendsSinceSync++
	if c.appendsSinceSync >= flushEvery {
		c.appendsSinceSync = 0
		_ = c.Sync()
	}
}

// loadSectionTable overwrites each freshly built section's numItems and
// blocks[] with what is stored on disk, validating that the stored
// max-blocks agrees with what this open recomputed (a mismatch means the
// geometry or constants changed under the file, which is corruption).
func (c *Container) loadSectionTable() {
	for _, spec := range c.specs {
		sec := c.sections[spec.kind]
		off := c.sectionOffsets[spec.kind]
		entry := c.data[off : off+tableEntrySize(spec, c.pool.blockSize)]

		numItems := int(readI32(entry[0:4]))
		storedMaxBlocks := int(readI32(entry[4:8]))
		if storedMaxBlocks != len(sec.blocks) {
			corruptf("section_table", "section %s: stored max_blocks %d != computed %d", sec.name, storedMaxBlocks, len(sec.blocks))
		}
		sec.numItems = numItems
		for i := range sec.blocks {
			b := entry[8+i*4 : 12+i*4]
			sec.blocks[i] = readI32(b)
		}
	}
}

func (c *Container) storeSectionTable() {
	for _, spec := range c.specs {
		sec := c.sections[spec.kind]
		off := c.sectionOffsets[spec.kind]
		entry := c.data[off : off+tableEntrySize(spec, c.pool.blockSize)]

		writeI32(entry[0:4], int32(sec.numItems))
		writeI32(entry[4:8], int32(len(sec.blocks)))
		for i, blk := range sec.blocks {
			writeI32(entry[8+i*4:12+i*4], blk)
		}
	}
}

// Header returns a copy of the container's current header.
func (c *Container) Header() Header { return c.header }

// Path returns the container's backing file path.
func (c *Container) Path() string { return c.path }

// BlocksChecksum returns an xxhash checksum over every currently used
// data block, for corruption spot-checks and test fixtures.
func (c *Container) BlocksChecksum() uint64 {
	n := int(c.header.NumUsedBlocks) * c.pool.blockSize
	if n > len(c.pool.data) {
		n = len(c.pool.data)
	}
	return xxhash.Sum64(c.pool.data[:n])
}

// Sync writes the in-memory header, section table, and current trkseg
// global-list tail back into the mapped image and asks the OS to flush
// it to disk (spec.md §4.1). It is safe to call repeatedly.
func (c *Container) Sync() error {
	c.header.LastGlobalTrkseg = c.Trksegs.lastGlobalTrkseg
	c.header.encode(c.data[c.headerOff : c.headerOff+headerPayloadSize])
	c.storeSectionTable()
	c.appendsSinceSync = 0
	return flushMapping(c.file, c.data)
}

// Close syncs and releases the container's mapping and file handle.
// Closing an already closed container is a no-op.
func (c *Container) Close() error {
	if c.data == nil {
		return nil
	}
	syncErr := c.Sync()
	unmapErr := munmapFile(c.data)
	c.data = nil
	closeErr := c.file.Close()
	if syncErr != nil {
		return syncErr
	}
	if unmapErr != nil {
		return unmapErr
	}
	if closeErr != nil {
		return newErr("close", KindIoError, closeErr)
	}
	return nil
}

// rewire re-points the pool and every section at a remapped c.data slice
// after Grow/Compact changes the mapping's backing array.
func (c *Container) rewire() {
	c.pool.data = c.data[c.blocksOff:]
	for _, sec := range c.sections {
		sec.pool = c.pool
	}
}
