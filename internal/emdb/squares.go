package emdb

// squareDescSize is the fixed encoded size of a Square record: a feature
// class bitmap, an item count, and a fixed table of pool block indices
// holding that square's line-id list (spec.md §3 "Square").
const squareDescSize = 4 + 4 + maxBlocksPerSquare*4

// Square is one cell of the uniform spatial grid laid over a county's
// bounding box. It indexes the ids of every line that intersects it via
// its own chain of pool blocks, independent of the shared section's
// blocks[] table (spec.md §4.7 "editor_square_add_line").
type Square struct {
	Cfccs    uint32
	NumItems uint32
	Blocks   [maxBlocksPerSquare]int32
}

func decodeSquare(b []byte) Square {
	var s Square
	s.Cfccs = readU32(b[0:4])
	s.NumItems = readU32(b[4:8])
	for i := 0; i < maxBlocksPerSquare; i++ {
		off := 8 + i*4
		s.Blocks[i] = readI32(b[off : off+4])
	}
	return s
}

func (s Square) encode(b []byte) {
	writeU32(b[0:4], s.Cfccs)
	writeU32(b[4:8], s.NumItems)
	for i := 0; i < maxBlocksPerSquare; i++ {
		off := 8 + i*4
		writeI32(b[off:off+4], s.Blocks[i])
	}
}

func initSquareBytes(b []byte) {
	rec := Square{}
	for i := range rec.Blocks {
		rec.Blocks[i] = -1
	}
	rec.encode(b)
}

// Squares is a thin, typed view over the "squares" section plus the grid
// geometry derived from the container's edges.
type Squares struct {
	sec    *sectionDescriptor
	pool   *blockPool
	edges  Area
	numLon int
	numLat int
}

func newSquaresGrid(edges Area) (numLon, numLat int) {
	width := edges.East - edges.West
	height := edges.North - edges.South
	numLon = int(width/editorDBLongitudeStep) + 1
	numLat = int(height/editorDBLatitudeStep) + 1
	if numLon < 1 {
		numLon = 1
	}
	if numLat < 1 {
		numLat = 1
	}
	return numLon, numLat
}

// IndexOf returns the square id covering pos (clamped to the county's
// edges), per the uniform grid of spec.md §4.7.
func (sq *Squares) IndexOf(pos Position) int {
	lon := clampI32(pos.Lon, sq.edges.West, sq.edges.East)
	lat := clampI32(pos.Lat, sq.edges.South, sq.edges.North)
	col := int((lon - sq.edges.West) / editorDBLongitudeStep)
	row := int((lat - sq.edges.South) / editorDBLatitudeStep)
	if col >= sq.numLon {
		col = sq.numLon - 1
	}
	if row >= sq.numLat {
		row = sq.numLat - 1
	}
	return row*sq.numLon + col
}

func (sq *Squares) get(id int) (Square, error) {
	b, err := sq.sec.Get(id, true, initSquareBytes)
	if err != nil {
		return Square{}, err
	}
	return decodeSquare(b), nil
}

func (sq *Squares) put(id int, rec Square) error {
	b, err := sq.sec.Get(id, true, initSquareBytes)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

func (sq *Squares) allocateBlock(op string) (int32, error) {
	if sq.pool.header.NumUsedBlocks >= sq.pool.header.NumTotalBlocks {
		return -1, newErr(op, KindFull, nil)
	}
	idx := int32(sq.pool.header.NumUsedBlocks)
	sq.pool.header.NumUsedBlocks++
	return idx, nil
}

// lastLineID returns the most recently appended line id in square rec,
// or -1 if rec is empty, so AddLine can skip a consecutive duplicate
// (spec.md §4.6: "append line_id if the square's last entry is not
// already line_id").
func (sq *Squares) lastLineID(rec Square) int32 {
	if rec.NumItems == 0 {
		return -1
	}
	itemsPerBlock := sq.pool.blockSize / 4
	last := int(rec.NumItems) - 1
	blockIdx := last / itemsPerBlock
	if blockIdx >= maxBlocksPerSquare || rec.Blocks[blockIdx] == -1 {
		return -1
	}
	buf := sq.pool.blockBytes(rec.Blocks[blockIdx])
	slot := last % itemsPerBlock
	return readI32(buf[slot*4 : slot*4+4])
}

// AddLine records lineID (with its feature class) into the square
// covering pos, growing the square's own block chain on demand. A
// consecutive repeat of lineID in the same square is skipped, matching
// the "distinct squares traversed in order" rule of spec.md §4.6.
func (sq *Squares) AddLine(pos Position, cfcc int, lineID int32) error {
	const op = "square_add_line"
	id := sq.IndexOf(pos)
	rec, err := sq.get(id)
	if err != nil {
		return err
	}
	if cfcc >= 0 && cfcc < 32 {
		rec.Cfccs |= 1 << uint(cfcc)
	}
	if sq.lastLineID(rec) == lineID {
		return sq.put(id, rec)
	}

	itemsPerBlock := sq.pool.blockSize / 4
	blockIdx := int(rec.NumItems) / itemsPerBlock
	if blockIdx >= maxBlocksPerSquare {
		return newErr(op, KindSectionFull, nil)
	}
	if rec.Blocks[blockIdx] == -1 {
		poolIdx, err := sq.allocateBlock(op)
		if err != nil {
			return err
		}
		rec.Blocks[blockIdx] = poolIdx
		buf := sq.pool.blockBytes(poolIdx)
		for off := 0; off+4 <= len(buf); off += 4 {
			writeI32(buf[off:off+4], -1)
		}
	}

	buf := sq.pool.blockBytes(rec.Blocks[blockIdx])
	slot := int(rec.NumItems) % itemsPerBlock
	writeI32(buf[slot*4:slot*4+4], lineID)
	rec.NumItems++

	return sq.put(id, rec)
}

// Lines calls fn for every line id stored in the square covering pos.
func (sq *Squares) Lines(pos Position, fn func(lineID int32) error) error {
	id := sq.IndexOf(pos)
	rec, err := sq.get(id)
	if err != nil {
		return err
	}
	itemsPerBlock := sq.pool.blockSize / 4
	remaining := int(rec.NumItems)
	for _, poolIdx := range rec.Blocks {
		if remaining <= 0 || poolIdx == -1 {
			break
		}
		buf := sq.pool.blockBytes(poolIdx)
		n := itemsPerBlock
		if remaining < n {
			n = remaining
		}
		for i := 0; i < n; i++ {
			lineID := readI32(buf[i*4 : i*4+4])
			if err := fn(lineID); err != nil {
				return err
			}
		}
		remaining -= n
	}
	return nil
}

// AddLineGeometry indexes lineID into every square traversed by from, the
// shape points (in order), and to, matching spec.md §4.6's
// "add_line(line_id, from, to, shape_points, cfcc)": each distinct square
// along the path gets lineID appended once (consecutive repeats
// collapsed by AddLine).
func (sq *Squares) AddLineGeometry(from, to Position, shapePoints []Position, cfcc int, lineID int32) error {
	if err := sq.AddLine(from, cfcc, lineID); err != nil {
		return err
	}
	for _, p := range shapePoints {
		if err := sq.AddLine(p, cfcc, lineID); err != nil {
			return err
		}
	}
	return sq.AddLine(to, cfcc, lineID)
}

// GetLines returns every line id stored in square id, in insertion order.
func (sq *Squares) GetLines(id int) ([]int32, error) {
	rec, err := sq.get(id)
	if err != nil {
		return nil, err
	}
	out := make([]int32, 0, rec.NumItems)
	itemsPerBlock := sq.pool.blockSize / 4
	remaining := int(rec.NumItems)
	for _, poolIdx := range rec.Blocks {
		if remaining <= 0 || poolIdx == -1 {
			break
		}
		buf := sq.pool.blockBytes(poolIdx)
		n := itemsPerBlock
		if remaining < n {
			n = remaining
		}
		for i := 0; i < n; i++ {
			out = append(out, readI32(buf[i*4:i*4+4]))
		}
		remaining -= n
	}
	return out, nil
}

// GetCFCCs returns the feature-class bitmap of square id.
func (sq *Squares) GetCFCCs(id int) (uint32, error) {
	rec, err := sq.get(id)
	if err != nil {
		return 0, err
	}
	return rec.Cfccs, nil
}

// nearDistance is how close (in micro-degrees) pos must be to a square's
// edge for FindByPosition's Near mode to also return the adjacent
// square across that edge (spec.md §4.6).
const nearDistance = 5_000

// FindByPosition returns the square containing pos, clamped into
// [0, numLon*numLat). If near is true and pos lies within nearDistance of
// one or more of its square's edges, the adjacent square(s) across those
// edges are appended too (spec.md §4.6 "find_by_position").
func (sq *Squares) FindByPosition(pos Position, near bool) []int {
	lon := clampI32(pos.Lon, sq.edges.West, sq.edges.East)
	lat := clampI32(pos.Lat, sq.edges.South, sq.edges.North)
	col := int((lon - sq.edges.West) / editorDBLongitudeStep)
	row := int((lat - sq.edges.South) / editorDBLatitudeStep)
	if col >= sq.numLon {
		col = sq.numLon - 1
	}
	if row >= sq.numLat {
		row = sq.numLat - 1
	}

	result := []int{row*sq.numLon + col}
	if !near {
		return result
	}

	colOrigin := sq.edges.West + int32(col)*editorDBLongitudeStep
	rowOrigin := sq.edges.South + int32(row)*editorDBLatitudeStep
	addIfDistinct := func(r, c int) {
		if r < 0 || r >= sq.numLat || c < 0 || c >= sq.numLon {
			return
		}
		idx := r*sq.numLon + c
		for _, existing := range result {
			if existing == idx {
				return
			}
		}
		result = append(result, idx)
	}

	if lon-colOrigin <= nearDistance {
		addIfDistinct(row, col-1)
	}
	if colOrigin+editorDBLongitudeStep-lon <= nearDistance {
		addIfDistinct(row, col+1)
	}
	if lat-rowOrigin <= nearDistance {
		addIfDistinct(row-1, col)
	}
	if rowOrigin+editorDBLatitudeStep-lat <= nearDistance {
		addIfDistinct(row+1, col)
	}
	return result
}
