package emdb

// streetSize is the fixed encoded size of a Street record.
const streetSize = 36

// Street names an editor-created or edited road, referencing its name
// and its FIPS-style name-component fields in the string dictionary
// (spec.md §3 "Street"), matching editor_db_street's fedirp/fetype/
// fedirs/t2s fields: pre-directional, suffix type, post-directional, and
// the type-to-suffix abbreviation used for display.
type Street struct {
	NameRef    int32 // dictionary reference id, VolumeStreets
	Cfcc       int32
	FirstRange int32 // head of this street's Range linked list, -1 if none
	LastRange  int32
	Flags      uint32
	FedirpRef  int32 // dictionary reference id, VolumeTypes, -1 if none
	FetypeRef  int32 // dictionary reference id, VolumeTypes, -1 if none
	FedirsRef  int32 // dictionary reference id, VolumeTypes, -1 if none
	T2SRef     int32 // dictionary reference id, VolumeT2S, -1 if none
}

func decodeStreet(b []byte) Street {
	return Street{
		NameRef:    readI32(b[0:4]),
		Cfcc:       readI32(b[4:8]),
		FirstRange: readI32(b[8:12]),
		LastRange:  readI32(b[12:16]),
		Flags:      readU32(b[16:20]),
		FedirpRef:  readI32(b[20:24]),
		FetypeRef:  readI32(b[24:28]),
		FedirsRef:  readI32(b[28:32]),
		T2SRef:     readI32(b[32:36]),
	}
}

func (s Street) encode(b []byte) {
	writeI32(b[0:4], s.NameRef)
	writeI32(b[4:8], s.Cfcc)
	writeI32(b[8:12], s.FirstRange)
	writeI32(b[12:16], s.LastRange)
	writeU32(b[16:20], s.Flags)
	writeI32(b[20:24], s.FedirpRef)
	writeI32(b[24:28], s.FetypeRef)
	writeI32(b[28:32], s.FedirsRef)
	writeI32(b[32:36], s.T2SRef)
}

// Streets is a thin, typed view over the "streets" section.
type Streets struct {
	sec *sectionDescriptor
}

// Add appends a new street and returns its id.
func (s *Streets) Add(rec Street) (int32, error) {
	var buf [streetSize]byte
	rec.encode(buf[:])
	id, err := s.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	return int32(id), nil
}

// Get returns the street at id.
func (s *Streets) Get(id int32) (Street, error) {
	b, err := s.sec.Get(int(id), false, nil)
	if err != nil {
		return Street{}, err
	}
	return decodeStreet(b), nil
}

func (s *Streets) put(id int32, rec Street) error {
	b, err := s.sec.Get(int(id), false, nil)
	if err != nil {
		return err
	}
	rec.encode(b)
	return nil
}

// SetNameFields sets street id's pre-directional, suffix type,
// post-directional, and type-to-suffix display fields, interning each
// non-empty string into its dictionary volume (fedirp/fetype/fedirs into
// VolumeTypes, t2s into VolumeT2S, matching editor_street_set_t2s and the
// fields editor_street_copy_street carries across a line_copy).
func (s *Streets) SetNameFields(dict *Dictionary, id int32, fedirp, fetype, fedirs, t2s string) error {
	st, err := s.Get(id)
	if err != nil {
		return err
	}
	refs := []struct {
		dst *int32
		vol DictVolumeName
		str string
	}{
		{&st.FedirpRef, VolumeTypes, fedirp},
		{&st.FetypeRef, VolumeTypes, fetype},
		{&st.FedirsRef, VolumeTypes, fedirs},
		{&st.T2SRef, VolumeT2S, t2s},
	}
	for _, r := range refs {
		if r.str == "" {
			*r.dst = -1
			continue
		}
		ref, err := dict.Add(r.vol, r.str)
		if err != nil {
			return err
		}
		*r.dst = ref
	}
	return s.put(id, st)
}

// AppendRange links a newly created range record onto the tail of
// street's Range linked list.
func (s *Streets) AppendRange(streetID, rangeID int32) error {
	st, err := s.Get(streetID)
	if err != nil {
		return err
	}
	if st.FirstRange < 0 {
		st.FirstRange = rangeID
	}
	st.LastRange = rangeID
	return s.put(streetID, st)
}
