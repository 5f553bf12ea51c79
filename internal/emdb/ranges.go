package emdb

// rangeSize is the fixed encoded size of a Range record.
const rangeSize = 40

// Range side-of-street values.
const (
	RangeSideLeft int32 = iota
	RangeSideRight
)

// Range is one address-numbering sub-range of a Street, attached to one
// Line and one side of the street (spec.md §3 "Range": left/right
// (city_id, zip_id, from_number, to_number)). The original's
// editor_db_range carries both sides' city/zip/from/to in a single
// record; here each side gets its own Range record instead (Side picks
// which), so CityRef/ZipRef name just that side's city and ZIP code,
// both dictionary references (VolumeCities, VolumeZips). Ranges form a
// singly-linked list per Street via Next.
type Range struct {
	LineID   int32
	StreetID int32
	FromAddr int32
	ToAddr   int32
	Side     int32
	Cfcc     int32
	Next     int32
	Flags    uint32
	CityRef  int32 // dictionary reference id, VolumeCities, -1 if none
	ZipRef   int32 // dictionary reference id, VolumeZips, -1 if none
}

func decodeRange(b []byte) Range {
	return Range{
		LineID:   readI32(b[0:4]),
		StreetID: readI32(b[4:8]),
		FromAddr: readI32(b[8:12]),
		ToAddr:   readI32(b[12:16]),
		Side:     readI32(b[16:20]),
		Cfcc:     readI32(b[20:24]),
		Next:     readI32(b[24:28]),
		Flags:    readU32(b[28:32]),
		CityRef:  readI32(b[32:36]),
		ZipRef:   readI32(b[36:40]),
	}
}

func (r Range) encode(b []byte) {
	writeI32(b[0:4], r.LineID)
	writeI32(b[4:8], r.StreetID)
	writeI32(b[8:12], r.FromAddr)
	writeI32(b[12:16], r.ToAddr)
	writeI32(b[16:20], r.Side)
	writeI32(b[20:24], r.Cfcc)
	writeI32(b[24:28], r.Next)
	writeU32(b[28:32], r.Flags)
	writeI32(b[32:36], r.CityRef)
	writeI32(b[36:40], r.ZipRef)
}

// Ranges is a thin, typed view over the "ranges" section.
type Ranges struct {
	sec *sectionDescriptor
}

// Add appends a new range, links it onto street's list (via Streets),
// and returns its id.
func (r *Ranges) Add(streets *Streets, rec Range) (int32, error) {
	rec.Next = -1
	var buf [rangeSize]byte
	rec.encode(buf[:])
	id, err := r.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	newID := int32(id)

	if rec.StreetID >= 0 {
		st, err := streets.Get(rec.StreetID)
		if err != nil {
			return -1, err
		}
		if st.LastRange >= 0 {
			prev, err := r.Get(st.LastRange)
			if err != nil {
				return -1, err
			}
			prev.Next = newID
			if err := r.put(st.LastRange, prev); err != nil {
				return -1, err
			}
		}
		if err := streets.AppendRange(rec.StreetID, newID); err != nil {
			return -1, err
		}
	}

	return newID, nil
}

// Get returns the range at id.
func (r *Ranges) Get(id int32) (Range, error) {
	b, err := r.sec.Get(int(id), false, nil)
	if err != nil {
		return Range{}, err
	}
	return decodeRange(b), nil
}

func (r *Ranges) put(id int32, rec Range) error {
	b, err := r.sec.Get(int(id), false, nil)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

// SetCityZip sets rangeID's city and ZIP code, interning each non-empty
// string into its dictionary volume (VolumeCities, VolumeZips), matching
// editor_db_range's left_city/left_zip (or right_city/right_zip,
// depending on rec.Side).
func (r *Ranges) SetCityZip(dict *Dictionary, rangeID int32, city, zip string) error {
	rec, err := r.Get(rangeID)
	if err != nil {
		return err
	}
	if city == "" {
		rec.CityRef = -1
	} else {
		ref, err := dict.Add(VolumeCities, city)
		if err != nil {
			return err
		}
		rec.CityRef = ref
	}
	if zip == "" {
		rec.ZipRef = -1
	} else {
		ref, err := dict.Add(VolumeZips, zip)
		if err != nil {
			return err
		}
		rec.ZipRef = ref
	}
	return r.put(rangeID, rec)
}

// RedistributeOnSplit splits a range's address numbers proportionally to
// the geometric lengths of the two new lines produced by Lines.Split,
// creating a second range for the tail line and shortening the original
// to cover only the head line (spec.md §4.8 "Range redistribution").
func RedistributeOnSplit(r *Ranges, streets *Streets, rangeID, tailLineID int32, headLen, tailLen float64) (int32, error) {
	rec, err := r.Get(rangeID)
	if err != nil {
		return -1, err
	}
	total := headLen + tailLen
	if total <= 0 {
		return -1, newErr("range_redistribute", KindIoError, nil)
	}
	span := rec.ToAddr - rec.FromAddr
	splitAt := rec.FromAddr + int32(float64(span)*headLen/total)

	tailRec := rec
	tailRec.LineID = tailLineID
	tailRec.FromAddr = splitAt
	newID, err := r.Add(streets, tailRec)
	if err != nil {
		return -1, err
	}

	rec.ToAddr = splitAt
	if err := r.put(rangeID, rec); err != nil {
		return -1, err
	}

	return newID, nil
}
