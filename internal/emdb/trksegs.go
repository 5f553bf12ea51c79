package emdb

// trksegSize is the fixed encoded size of a Trkseg record.
const trksegSize = 40

// Trkseg flag bits (spec.md §3 "Trkseg").
const (
	TrksegFake uint32 = 1 << iota
	TrksegIgnore
	TrksegEndTrack
	TrksegNewTrack
	TrksegOppositeDir
	TrksegNoGlobal
)

// Trkseg is a contiguous captured GPS sub-segment, member of two
// independent intrusive singly-linked lists: "road" (all trksegs of one
// line, via NextInRoad) and "global" (all user-visible trksegs in capture
// order, via NextGlobal, used by export).
type Trkseg struct {
	LineID     int32
	PluginID   int32
	FromPoint  int32
	FirstShape int32
	LastShape  int32
	GPSStart   int32
	GPSEnd     int32
	Flags      uint32
	NextInRoad int32
	NextGlobal int32
}

func decodeTrkseg(b []byte) Trkseg {
	return Trkseg{
		LineID:     readI32(b[0:4]),
		PluginID:   readI32(b[4:8]),
		FromPoint:  readI32(b[8:12]),
		FirstShape: readI32(b[12:16]),
		LastShape:  readI32(b[16:20]),
		GPSStart:   readI32(b[20:24]),
		GPSEnd:     readI32(b[24:28]),
		Flags:      readU32(b[28:32]),
		NextInRoad: readI32(b[32:36]),
		NextGlobal: readI32(b[36:40]),
	}
}

func (t Trkseg) encode(b []byte) {
	writeI32(b[0:4], t.LineID)
	writeI32(b[4:8], t.PluginID)
	writeI32(b[8:12], t.FromPoint)
	writeI32(b[12:16], t.FirstShape)
	writeI32(b[16:20], t.LastShape)
	writeI32(b[20:24], t.GPSStart)
	writeI32(b[24:28], t.GPSEnd)
	writeU32(b[28:32], t.Flags)
	writeI32(b[32:36], t.NextInRoad)
	writeI32(b[36:40], t.NextGlobal)
}

// Trksegs is a thin, typed view over the "trkseg" section plus the
// private "last_global_trkseg" bookkeeping field the original keeps in
// the section's own header.
type Trksegs struct {
	sec              *sectionDescriptor
	shapes           *Shapes
	points           *Points
	lastGlobalTrkseg int32
}

// Get returns the trkseg at id.
func (t *Trksegs) Get(id int32) (Trkseg, error) {
	b, err := t.sec.Get(int(id), false, nil)
	if err != nil {
		return Trkseg{}, err
	}
	return decodeTrkseg(b), nil
}

func (t *Trksegs) put(id int32, rec Trkseg) error {
	b, err := t.sec.Get(int(id), false, nil)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

// Add appends a new trkseg, links it onto the global tail (unless
// NoGlobal is set), and updates last_global_trkseg, per spec.md §4.8.
func (t *Trksegs) Add(rec Trkseg) (int32, error) {
	rec.NextInRoad = -1
	rec.NextGlobal = -1
	var buf [trksegSize]byte
	rec.encode(buf[:])
	id, err := t.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	newID := int32(id)

	if rec.Flags&TrksegNoGlobal == 0 {
		if t.lastGlobalTrkseg >= 0 {
			prev, err := t.Get(t.lastGlobalTrkseg)
			if err != nil {
				return -1, err
			}
			prev.NextGlobal = newID
			if err := t.put(t.lastGlobalTrkseg, prev); err != nil {
				return -1, err
			}
		}
		t.lastGlobalTrkseg = newID
	}

	return newID, nil
}

// AppendToRoad links next onto the tail of line's road list, whose
// current tail is tailID (or -1 for an empty list).
func (t *Trksegs) AppendToRoad(tailID, next int32) error {
	if tailID < 0 {
		return nil
	}
	rec, err := t.Get(tailID)
	if err != nil {
		return err
	}
	rec.NextInRoad = next
	return t.put(tailID, rec)
}

// RoadList walks the "road" linked list starting at first, calling fn for
// each trkseg id in order.
func (t *Trksegs) RoadList(first int32, fn func(id int32, rec Trkseg) error) error {
	for id := first; id >= 0; {
		rec, err := t.Get(id)
		if err != nil {
			return err
		}
		if err := fn(id, rec); err != nil {
			return err
		}
		id = rec.NextInRoad
	}
	return nil
}

// SetLineID rewrites LineID to lineID for every trkseg in the road list
// headed by first, matching editor_trkseg_set_line: a split's new road
// list belongs to a different line than the one its trksegs were
// originally recorded against.
func (t *Trksegs) SetLineID(first, lineID int32) error {
	return t.RoadList(first, func(id int32, rec Trkseg) error {
		rec.LineID = lineID
		return t.put(id, rec)
	})
}

// interpolateTime linearly interpolates a timestamp at shape index
// splitShape between GPSStart and GPSEnd, proportional to shape position
// within [firstShape, lastShape].
func interpolateTime(rec Trkseg, splitShape int32) int32 {
	span := rec.LastShape - rec.FirstShape
	if span <= 0 {
		return rec.GPSStart
	}
	frac := float64(splitShape-rec.FirstShape) / float64(span)
	return rec.GPSStart + int32(frac*float64(rec.GPSEnd-rec.GPSStart))
}

// splitGeometry finds the shape point closest to splitPos, creates a
// new trkseg covering [splitShape, lastShape], and shortens trkseg to
// [firstShape, splitShape-1]. The split time is interpolated between
// GPSStart and GPSEnd by the split shape's index (see interpolateTime);
// the shapes' DTime deltas are not used. Road/global linkage is left to the caller
// (SplitRoad): the new record is appended with both links at -1. Shape
// deltas are anchored at trkseg's own FromPoint, not the owning line's —
// only the first trkseg in a road list necessarily starts at the line's
// From endpoint.
func (t *Trksegs) splitGeometry(trkseg int32, splitPos Position) (int32, error) {
	rec, err := t.Get(trkseg)
	if err != nil {
		return -1, err
	}
	if rec.FirstShape < 0 || rec.LastShape < rec.FirstShape {
		return -1, newErr("trkseg_split", KindNotAllocated, nil)
	}

	anchor, err := t.points.Get(int(rec.FromPoint))
	if err != nil {
		return -1, err
	}

	splitShape := rec.FirstShape
	best := -1.0
	pos := anchor.Position()
	for i := rec.FirstShape; i <= rec.LastShape; i++ {
		sh, err := t.shapes.Get(int(i))
		if err != nil {
			return -1, err
		}
		pos.Lon += int32(sh.DLon)
		pos.Lat += int32(sh.DLat)
		d := distanceMeters(pos, splitPos)
		if best < 0 || d < best {
			best = d
			splitShape = i
		}
	}

	splitTime := interpolateTime(rec, splitShape)

	newRec := Trkseg{
		LineID:     rec.LineID,
		PluginID:   rec.PluginID,
		FromPoint:  rec.FromPoint,
		FirstShape: splitShape,
		LastShape:  rec.LastShape,
		GPSStart:   splitTime,
		GPSEnd:     rec.GPSEnd,
		Flags:      rec.Flags,
		NextInRoad: -1,
		NextGlobal: -1,
	}
	var buf [trksegSize]byte
	newRec.encode(buf[:])
	id, err := t.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	newID := int32(id)

	rec.LastShape = splitShape - 1
	rec.GPSEnd = splitTime
	if err := t.put(trkseg, rec); err != nil {
		return -1, err
	}

	return newID, nil
}

// insertGlobalAfter splices next into the global capture-order list
// immediately after prev, preserving whatever followed prev. Used by
// SplitRoad so a split trkseg's tail half keeps its chronological place
// next to its head half, instead of landing at the list's current tail.
func (t *Trksegs) insertGlobalAfter(prev, next int32) error {
	prevRec, err := t.Get(prev)
	if err != nil {
		return err
	}
	following := prevRec.NextGlobal
	prevRec.NextGlobal = next
	if err := t.put(prev, prevRec); err != nil {
		return err
	}

	nextRec, err := t.Get(next)
	if err != nil {
		return err
	}
	nextRec.NextGlobal = following
	if err := t.put(next, nextRec); err != nil {
		return err
	}

	if t.lastGlobalTrkseg == prev {
		t.lastGlobalTrkseg = next
	}
	return nil
}

// SplitRoad splits every trkseg in the road list headed by firstTrkseg at
// splitPos, partitioning the halves into two road lists: oldHead/oldTail
// stays with the line being split, newHead/newTail goes to the line
// created by the split. A trkseg flagged TrksegOppositeDir runs backward
// relative to its line, so its "old" half is the geometric tail and its
// "new" half is the geometric head — matching editor_line_split's
// handling of ED_TRKSEG_OPPOSITE_DIR.
func (t *Trksegs) SplitRoad(firstTrkseg int32, splitPos Position) (oldHead, oldTail, newHead, newTail int32, err error) {
	oldHead, oldTail = -1, -1
	newHead, newTail = -1, -1

	for cur := firstTrkseg; cur >= 0; {
		rec, gerr := t.Get(cur)
		if gerr != nil {
			return -1, -1, -1, -1, gerr
		}

		split, gerr := t.splitGeometry(cur, splitPos)
		if gerr != nil {
			return -1, -1, -1, -1, gerr
		}
		if gerr := t.insertGlobalAfter(cur, split); gerr != nil {
			return -1, -1, -1, -1, gerr
		}

		oldCur, newCur := cur, split
		if rec.Flags&TrksegOppositeDir != 0 {
			oldCur, newCur = split, cur
		}

		if oldHead < 0 {
			oldHead = oldCur
		} else if gerr := t.AppendToRoad(oldTail, oldCur); gerr != nil {
			return -1, -1, -1, -1, gerr
		}
		oldTail = oldCur

		if newHead < 0 {
			newHead = newCur
		} else if gerr := t.AppendToRoad(newTail, newCur); gerr != nil {
			return -1, -1, -1, -1, gerr
		}
		newTail = newCur

		cur = rec.NextInRoad
	}
	return oldHead, oldTail, newHead, newTail, nil
}
