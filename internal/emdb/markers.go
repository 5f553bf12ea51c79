package emdb

// markerSize is the fixed encoded size of a Marker record.
const markerSize = 32

// Marker flag bits.
const (
	MarkerDeleted uint32 = 1 << iota
)

// Marker is a user-placed point of interest, independent of the
// road/line graph (spec.md §3 "Marker").
type Marker struct {
	Lon      int32
	Lat      int32
	Type     int32
	NameRef  int32 // dictionary reference id, VolumeNotes
	Flags    uint32
	Reserved [3]int32
}

func (m Marker) Position() Position { return Position{Lon: m.Lon, Lat: m.Lat} }

func decodeMarker(b []byte) Marker {
	m := Marker{
		Lon:     readI32(b[0:4]),
		Lat:     readI32(b[4:8]),
		Type:    readI32(b[8:12]),
		NameRef: readI32(b[12:16]),
		Flags:   readU32(b[16:20]),
	}
	for i := range m.Reserved {
		off := 20 + i*4
		m.Reserved[i] = readI32(b[off : off+4])
	}
	return m
}

func (m Marker) encode(b []byte) {
	writeI32(b[0:4], m.Lon)
	writeI32(b[4:8], m.Lat)
	writeI32(b[8:12], m.Type)
	writeI32(b[12:16], m.NameRef)
	writeU32(b[16:20], m.Flags)
	for i, v := range m.Reserved {
		off := 20 + i*4
		writeI32(b[off:off+4], v)
	}
}

// Markers is a thin, typed view over the "markers" section.
type Markers struct {
	sec *sectionDescriptor
}

// Add appends a new marker and returns its id.
func (m *Markers) Add(rec Marker) (int32, error) {
	var buf [markerSize]byte
	rec.encode(buf[:])
	id, err := m.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	return int32(id), nil
}

// Get returns the marker at id.
func (m *Markers) Get(id int32) (Marker, error) {
	b, err := m.sec.Get(int(id), false, nil)
	if err != nil {
		return Marker{}, err
	}
	return decodeMarker(b), nil
}

// Delete sets MarkerDeleted on id. Like lines, markers are never
// physically removed (spec.md §4.2).
func (m *Markers) Delete(id int32) error {
	rec, err := m.Get(id)
	if err != nil {
		return err
	}
	rec.Flags |= MarkerDeleted
	b, err := m.sec.Get(int(id), false, nil)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

// Count returns the number of markers appended so far.
func (m *Markers) Count() int { return m.sec.NumItems() }
