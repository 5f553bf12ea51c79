package emdb

// lineSize is the fixed encoded size of a Line record.
const lineSize = 36

// Line flag bits (spec.md §3 "Line"), carried over from the original
// editor_line.h constants of the same names.
const (
	LineDeleted uint32 = 1 << iota
	LineExplicitSplit
	LineDirty
)

// Line is an editable road segment: either brand new (FromPoint/ToPoint
// reference editor Points directly) or a split of a base-map line (in
// which case FromPoint/ToPoint reference editor Points created as SHARED
// bridges over base-map point ids, via BaseIDToEditor).
type Line struct {
	FromPoint  int32
	ToPoint    int32
	Cfcc       int32
	TrksegHead int32 // head of the "road" linked list for this line, -1 if none
	Square     int32
	StreetID   int32 // index into Streets, -1 if none
	RangeID    int32 // index into Ranges, -1 if none
	Flags      uint32
	Reserved   int32
}

func decodeLine(b []byte) Line {
	return Line{
		FromPoint:  readI32(b[0:4]),
		ToPoint:    readI32(b[4:8]),
		Cfcc:       readI32(b[8:12]),
		TrksegHead: readI32(b[12:16]),
		Square:     readI32(b[16:20]),
		StreetID:   readI32(b[20:24]),
		RangeID:    readI32(b[24:28]),
		Flags:      readU32(b[28:32]),
		Reserved:   readI32(b[32:36]),
	}
}

func (l Line) encode(b []byte) {
	writeI32(b[0:4], l.FromPoint)
	writeI32(b[4:8], l.ToPoint)
	writeI32(b[8:12], l.Cfcc)
	writeI32(b[12:16], l.TrksegHead)
	writeI32(b[16:20], l.Square)
	writeI32(b[20:24], l.StreetID)
	writeI32(b[24:28], l.RangeID)
	writeU32(b[28:32], l.Flags)
	writeI32(b[32:36], l.Reserved)
}

// Lines is a thin, typed view over the "lines" section.
type Lines struct {
	sec *sectionDescriptor
}

// Add appends a new line and returns its id.
func (l *Lines) Add(rec Line) (int32, error) {
	var buf [lineSize]byte
	rec.encode(buf[:])
	id, err := l.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	return int32(id), nil
}

// Count returns the number of lines appended so far.
func (l *Lines) Count() int { return l.sec.NumItems() }

// Get returns the line at id.
func (l *Lines) Get(id int32) (Line, error) {
	b, err := l.sec.Get(int(id), false, nil)
	if err != nil {
		return Line{}, err
	}
	return decodeLine(b), nil
}

func (l *Lines) put(id int32, rec Line) error {
	b, err := l.sec.Get(int(id), false, nil)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

// MarkDirty sets LineDirty on id, matching editor_line_mark_dirty: a
// dirty line is re-examined by the next GPS-track matching pass (out of
// scope here, but the bit is part of the persisted container state).
func (l *Lines) MarkDirty(id int32) error {
	rec, err := l.Get(id)
	if err != nil {
		return err
	}
	rec.Flags |= LineDirty
	return l.put(id, rec)
}

// ClearDirty clears LineDirty on id, matching editor_line.h's
// clear-dirty pair to MarkDirty: the (external) GPX export path calls
// this once a dirty line has been re-exported.
func (l *Lines) ClearDirty(id int32) error {
	rec, err := l.Get(id)
	if err != nil {
		return err
	}
	rec.Flags &^= LineDirty
	return l.put(id, rec)
}

// MarkDeleted sets LineDeleted on id. Lines are never physically removed
// from the section (spec.md §4.2: blocks are never freed); deletion is a
// flag that downstream consumers (rendering, routing) must honor.
func (l *Lines) MarkDeleted(id int32) error {
	rec, err := l.Get(id)
	if err != nil {
		return err
	}
	rec.Flags |= LineDeleted
	return l.put(id, rec)
}

// CrossTime returns the GPS timestamp at which a line's road-list of
// trksegs crosses its From (fromEnd=true) or To (fromEnd=false) endpoint,
// matching editor_line_get_cross_time: it walks the road list headed by
// line.TrksegHead and returns the first trkseg's GPSStart, or the last
// trkseg's GPSEnd. Returns KindNotAllocated if the line carries no
// trkseg geometry (a pure editor-drawn line).
func (l *Lines) CrossTime(trksegs *Trksegs, line Line, fromEnd bool) (int32, error) {
	if line.TrksegHead < 0 {
		return 0, newErr("line_cross_time", KindNotAllocated, nil)
	}
	if fromEnd {
		rec, err := trksegs.Get(line.TrksegHead)
		if err != nil {
			return 0, err
		}
		return rec.GPSStart, nil
	}
	var last Trkseg
	err := trksegs.RoadList(line.TrksegHead, func(_ int32, rec Trkseg) error {
		last = rec
		return nil
	})
	if err != nil {
		return 0, err
	}
	return last.GPSEnd, nil
}

// LineCopy materializes base-map line baseLineID as a brand-new editor
// line: its endpoints are bridged to editor points, its shape geometry
// is copied into a single TrksegFake|TrksegNoGlobal trkseg (there is no
// GPS capture to attribute the copy to), and its route attributes and
// street name are copied alongside it — matching editor_line_copy.
// SplitLine calls this first when asked to split a line that is not yet
// an editor line, per line_split's "copies the line if it is a base-map
// line" precondition (spec.md §4.8 "Lines").
func LineCopy(c *Container, baseMap BaseMap, baseLineID int32) (int32, error) {
	baseFromID, err := baseMap.LineFrom(baseLineID)
	if err != nil {
		return -1, err
	}
	baseToID, err := baseMap.LineTo(baseLineID)
	if err != nil {
		return -1, err
	}

	fromID, err := BaseIDToEditor(c.Points, c.DelPoints, baseMap, baseFromID)
	if err != nil {
		return -1, err
	}
	toID, err := BaseIDToEditor(c.Points, c.DelPoints, baseMap, baseToID)
	if err != nil {
		return -1, err
	}

	fromPos, err := baseMap.PointPosition(baseFromID)
	if err != nil {
		return -1, err
	}
	toPos, err := baseMap.PointPosition(baseToID)
	if err != nil {
		return -1, err
	}

	name, cfcc, err := baseMap.StreetGetProperties(baseLineID)
	if err != nil {
		return -1, err
	}

	rec := Line{
		FromPoint:  fromID,
		ToPoint:    toID,
		Cfcc:       cfcc,
		TrksegHead: -1,
		Square:     int32(c.Squares.IndexOf(fromPos)),
		StreetID:   -1,
		RangeID:    -1,
	}
	lineID, err := c.Lines.Add(rec)
	if err != nil {
		return -1, err
	}
	if err := c.Squares.AddLine(fromPos, int(cfcc), lineID); err != nil {
		return -1, err
	}
	if err := c.Squares.AddLine(toPos, int(cfcc), lineID); err != nil {
		return -1, err
	}

	shapes, err := baseMap.LineShapes(baseLineID)
	if err != nil {
		return -1, err
	}
	firstShape, lastShape := int32(-1), int32(-1)
	for _, sh := range shapes {
		id, err := c.Shapes.Add(sh)
		if err != nil {
			return -1, err
		}
		if firstShape < 0 {
			firstShape = int32(id)
		}
		lastShape = int32(id)
	}
	trksegID, err := c.Trksegs.Add(Trkseg{
		LineID:     lineID,
		PluginID:   -1,
		FromPoint:  fromID,
		FirstShape: firstShape,
		LastShape:  lastShape,
		GPSStart:   -1,
		GPSEnd:     -1,
		Flags:      TrksegFake | TrksegNoGlobal,
	})
	if err != nil {
		return -1, err
	}
	rec.TrksegHead = trksegID
	if err := c.Lines.put(lineID, rec); err != nil {
		return -1, err
	}

	flags, err := baseMap.LineRouteGetFlags(baseLineID)
	if err != nil {
		return -1, err
	}
	speed, err := baseMap.LineRouteGetSpeedLimit(baseLineID)
	if err != nil {
		return -1, err
	}
	if _, err := c.Routes.Add(Route{LineID: lineID, Flags: flags, SpeedLimit: speed, Cfcc: cfcc}); err != nil {
		return -1, err
	}

	if name != "" {
		nameRef, err := c.Dict.Add(VolumeStreets, name)
		if err != nil {
			return -1, err
		}
		streetID, err := c.Streets.Add(Street{
			NameRef: nameRef, Cfcc: cfcc, FirstRange: -1, LastRange: -1,
			FedirpRef: -1, FetypeRef: -1, FedirsRef: -1, T2SRef: -1,
		})
		if err != nil {
			return -1, err
		}
		rec.StreetID = streetID
		if err := c.Lines.put(lineID, rec); err != nil {
			return -1, err
		}
	}

	return lineID, nil
}

// Split creates a new line covering [splitPoint, ToPoint] of id, shortens
// id to [FromPoint, splitPoint], marks both LineExplicitSplit, and
// returns the new line's id. Street/range redistribution is performed by
// the caller (see RedistributeOnSplit in ranges.go), since it requires
// the two new line lengths.
func (l *Lines) Split(id int32, splitPoint int32) (int32, error) {
	rec, err := l.Get(id)
	if err != nil {
		return -1, err
	}

	newRec := Line{
		FromPoint:  splitPoint,
		ToPoint:    rec.ToPoint,
		Cfcc:       rec.Cfcc,
		TrksegHead: -1,
		Square:     rec.Square,
		StreetID:   rec.StreetID,
		RangeID:    -1,
		Flags:      rec.Flags | LineExplicitSplit,
	}
	newID, err := l.Add(newRec)
	if err != nil {
		return -1, err
	}

	rec.ToPoint = splitPoint
	rec.Flags |= LineExplicitSplit
	if err := l.put(id, rec); err != nil {
		return -1, err
	}

	return newID, nil
}
