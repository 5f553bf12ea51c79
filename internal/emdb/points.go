package emdb

// pointSize is the fixed encoded size of a Point record.
const pointSize = 16

// PointFlag bits (spec.md §3 "Point").
const (
	PointShared uint32 = 1 << iota
)

// Point is an editable point, optionally sharing a position with a
// base-map point (BaseID >= 0, flag PointShared set).
type Point struct {
	Lon    int32
	Lat    int32
	Flags  uint32
	BaseID int32
}

func (p Point) Position() Position { return Position{Lon: p.Lon, Lat: p.Lat} }

func decodePoint(b []byte) Point {
	return Point{
		Lon:    readI32(b[0:4]),
		Lat:    readI32(b[4:8]),
		Flags:  readU32(b[8:12]),
		BaseID: readI32(b[12:16]),
	}
}

func (p Point) encode(b []byte) {
	writeI32(b[0:4], p.Lon)
	writeI32(b[4:8], p.Lat)
	writeU32(b[8:12], p.Flags)
	writeI32(b[12:16], p.BaseID)
}

// delPointSize is the fixed encoded size of a DelPoint record.
const delPointSize = 8

// DelPoint bridges a base-map point id to the editor point that mirrors
// it. The section is kept sorted ascending by BaseID (spec.md §8 property 5).
type DelPoint struct {
	BaseID        int32
	EditorPointID int32
}

func decodeDelPoint(b []byte) DelPoint {
	return DelPoint{BaseID: readI32(b[0:4]), EditorPointID: readI32(b[4:8])}
}

func (d DelPoint) encode(b []byte) {
	writeI32(b[0:4], d.BaseID)
	writeI32(b[4:8], d.EditorPointID)
}

// Points is a thin, typed view over the "points" section.
type Points struct {
	sec *sectionDescriptor
}

// Add appends a new editor point and returns its id (editor_point_add).
func (p *Points) Add(pos Position, flags uint32, baseID int32) (int, error) {
	var buf [pointSize]byte
	Point{Lon: pos.Lon, Lat: pos.Lat, Flags: flags, BaseID: baseID}.encode(buf[:])
	return p.sec.Append(buf[:])
}

// Get returns the point at id.
func (p *Points) Get(id int) (Point, error) {
	b, err := p.sec.Get(id, false, nil)
	if err != nil {
		return Point{}, err
	}
	return decodePoint(b), nil
}

func (p *Points) position(id int) (Position, error) {
	pt, err := p.Get(id)
	if err != nil {
		return Position{}, err
	}
	return pt.Position(), nil
}

// Count returns the number of points appended so far.
func (p *Points) Count() int { return p.sec.NumItems() }

// DelPoints is a thin, typed view over the "points_del" section, which is
// kept sorted ascending by BaseID.
type DelPoints struct {
	sec *sectionDescriptor
}

func (d *DelPoints) get(id int) (DelPoint, error) {
	b, err := d.sec.Get(id, false, nil)
	if err != nil {
		return DelPoint{}, err
	}
	return decodeDelPoint(b), nil
}

// search performs the strict [begin, end) binary search spec.md §9 calls
// for (re-derived from the loop invariant rather than a last-inspected
// pointer), returning the insertion position and whether baseID was found
// exactly.
func (d *DelPoints) search(baseID int32) (pos int, found bool, err error) {
	lo, hi := 0, d.sec.NumItems()
	for lo < hi {
		mid := lo + (hi-lo)/2
		rec, gerr := d.get(mid)
		if gerr != nil {
			return 0, false, gerr
		}
		switch {
		case rec.BaseID < baseID:
			lo = mid + 1
		case rec.BaseID > baseID:
			hi = mid
		default:
			return mid, true, nil
		}
	}
	return lo, false, nil
}

func (d *DelPoints) insertAt(pos int, rec DelPoint) error {
	var buf [delPointSize]byte
	rec.encode(buf[:])
	return d.sec.Insert(buf[:], pos)
}

// BaseIDToEditor resolves a base-map point id to an editor point id,
// creating a SHARED editor point and a sorted DelPoint bridge entry on
// first use (spec.md §4.8 "Points & DelPoints").
func BaseIDToEditor(points *Points, delPoints *DelPoints, baseMap BaseMap, baseID int32) (int32, error) {
	pos, found, err := delPoints.search(baseID)
	if err != nil {
		return -1, err
	}
	if found {
		rec, err := delPoints.get(pos)
		if err != nil {
			return -1, err
		}
		return rec.EditorPointID, nil
	}

	basePos, err := baseMap.PointPosition(baseID)
	if err != nil {
		return -1, err
	}
	editorID, err := points.Add(basePos, PointShared, baseID)
	if err != nil {
		return -1, err
	}
	if err := delPoints.insertAt(pos, DelPoint{BaseID: baseID, EditorPointID: int32(editorID)}); err != nil {
		return -1, err
	}
	return int32(editorID), nil
}
