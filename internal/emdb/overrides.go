package emdb

// overrideSize is the fixed encoded size of an Override record.
const overrideSize = 16

// overrideIndexSize is the fixed size of one override_index slot: a
// single i32 override record id (or -1), one slot per base-map line.
const overrideIndexSize = 4

// Override records a user's additions to an otherwise read-only
// base-map line (spec.md §3 "Override"): a private trkseg road-list
// (FirstTrkseg/LastTrkseg, -1 if the base-map line has no editor-added
// geometry), a Route record id, and a flags word (e.g. LineDeleted to
// mask the base-map line entirely, LineDirty for re-export).
type Override struct {
	FirstTrkseg int32
	LastTrkseg  int32
	RouteID     int32
	Flags       uint32
}

func decodeOverride(b []byte) Override {
	return Override{
		FirstTrkseg: readI32(b[0:4]),
		LastTrkseg:  readI32(b[4:8]),
		RouteID:     readI32(b[8:12]),
		Flags:       readU32(b[12:16]),
	}
}

func (o Override) encode(b []byte) {
	writeI32(b[0:4], o.FirstTrkseg)
	writeI32(b[4:8], o.LastTrkseg)
	writeI32(b[8:12], o.RouteID)
	writeU32(b[12:16], o.Flags)
}

// Overrides is a thin, typed view over the "override" data section and
// the "override_index" section (spec.md §4.8 "Overrides"): index has one
// i32 slot per base-map line, initialized to -1, pointing into the data
// section only once that base-map line has been touched.
type Overrides struct {
	sec      *sectionDescriptor
	indexSec *sectionDescriptor
}

func initOverrideIndexSlot(buf []byte) { writeI32(buf, -1) }

// Index returns the override record id for lineBaseID (or -1 if none),
// matching spec.md §8 scenario S5: without create, an unallocated index
// block surfaces as KindNotAllocated; with create, the whole backing
// block is pre-filled with -1 slots (not just the requested one).
func (o *Overrides) Index(lineBaseID int32, create bool) (int32, error) {
	b, err := o.indexSec.Get(int(lineBaseID), create, initOverrideIndexSlot)
	if err != nil {
		return -1, err
	}
	return readI32(b), nil
}

func (o *Overrides) setIndex(lineBaseID, recordID int32) error {
	b, err := o.indexSec.Get(int(lineBaseID), true, initOverrideIndexSlot)
	if err != nil {
		return err
	}
	writeI32(b, recordID)
	return nil
}

// Get returns the override record at id.
func (o *Overrides) Get(id int32) (Override, error) {
	b, err := o.sec.Get(int(id), false, nil)
	if err != nil {
		return Override{}, err
	}
	return decodeOverride(b), nil
}

func (o *Overrides) put(id int32, rec Override) error {
	b, err := o.sec.Get(int(id), false, nil)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

// Set records rec as the override for lineBaseID, creating its data
// record on first use or updating it in place thereafter, and returns
// the override record's id (spec.md §4.8 "Override").
func (o *Overrides) Set(lineBaseID int32, rec Override) (int32, error) {
	id, err := o.Index(lineBaseID, true)
	if err != nil {
		return -1, err
	}
	if id >= 0 {
		return id, o.put(id, rec)
	}

	var buf [overrideSize]byte
	rec.encode(buf[:])
	newID, err := o.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	if err := o.setIndex(lineBaseID, int32(newID)); err != nil {
		return -1, err
	}
	return int32(newID), nil
}

// Find returns the override record for lineBaseID, if any has been set.
func (o *Overrides) Find(lineBaseID int32) (Override, bool, error) {
	id, err := o.Index(lineBaseID, false)
	if err != nil {
		if KindNotAllocated.Is(err) {
			return Override{}, false, nil
		}
		return Override{}, false, err
	}
	if id < 0 {
		return Override{}, false, nil
	}
	rec, err := o.Get(id)
	if err != nil {
		return Override{}, false, err
	}
	return rec, true, nil
}
