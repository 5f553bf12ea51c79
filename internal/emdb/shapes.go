package emdb

// shapeSize is the fixed encoded size of a Shape record: three 16-bit
// deltas relative to the previous anchor (spec.md §3 "Shape").
const shapeSize = 6

// Shape is a mid-segment geometry sample stored as a signed delta from
// the trkseg's start point or the previous shape.
type Shape struct {
	DLon  int16
	DLat  int16
	DTime int16
}

func decodeShape(b []byte) Shape {
	return Shape{
		DLon:  int16(readU16(b[0:2])),
		DLat:  int16(readU16(b[2:4])),
		DTime: int16(readU16(b[4:6])),
	}
}

func (s Shape) encode(b []byte) {
	writeU16(b[0:2], uint16(s.DLon))
	writeU16(b[2:4], uint16(s.DLat))
	writeU16(b[4:6], uint16(s.DTime))
}

// Shapes is a thin, typed view over the "shape" section.
type Shapes struct {
	sec *sectionDescriptor
}

// Add appends a new shape delta and returns its id.
func (s *Shapes) Add(delta Shape) (int, error) {
	var buf [shapeSize]byte
	delta.encode(buf[:])
	return s.sec.Append(buf[:])
}

// Get returns the shape delta at id.
func (s *Shapes) Get(id int) (Shape, error) {
	b, err := s.sec.Get(id, false, nil)
	if err != nil {
		return Shape{}, err
	}
	return decodeShape(b), nil
}

// PositionAt reconstructs the absolute position of shape id given the
// anchor position it is chained from and the cumulative deltas of every
// shape between the anchor and id (inclusive).
func (s *Shapes) PositionAt(anchor Position, firstShape, id int) (Position, error) {
	pos := anchor
	for i := firstShape; i <= id; i++ {
		d, err := s.Get(i)
		if err != nil {
			return Position{}, err
		}
		pos.Lon += int32(d.DLon)
		pos.Lat += int32(d.DLat)
	}
	return pos, nil
}
