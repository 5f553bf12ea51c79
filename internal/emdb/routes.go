package emdb

// routeSize is the fixed encoded size of a Route record.
const routeSize = 16

// Route flag bits, overriding the base map's own routing attributes for
// an editor-created line (spec.md §3 "Route").
const (
	RouteOneway uint32 = 1 << iota
	RouteNoThroughTraffic
)

// Route carries turn-restriction-free routing attributes for a Line that
// has no base-map counterpart to inherit them from.
type Route struct {
	LineID     int32
	Flags      uint32
	SpeedLimit int32
	Cfcc       int32
}

func decodeRoute(b []byte) Route {
	return Route{
		LineID:     readI32(b[0:4]),
		Flags:      readU32(b[4:8]),
		SpeedLimit: readI32(b[8:12]),
		Cfcc:       readI32(b[12:16]),
	}
}

func (r Route) encode(b []byte) {
	writeI32(b[0:4], r.LineID)
	writeU32(b[4:8], r.Flags)
	writeI32(b[8:12], r.SpeedLimit)
	writeI32(b[12:16], r.Cfcc)
}

// Routes is a thin, typed view over the "route" section.
type Routes struct {
	sec *sectionDescriptor
}

// Add appends a new route record and returns its id.
func (r *Routes) Add(rec Route) (int32, error) {
	var buf [routeSize]byte
	rec.encode(buf[:])
	id, err := r.sec.Append(buf[:])
	if err != nil {
		return -1, err
	}
	return int32(id), nil
}

// Get returns the route record at id.
func (r *Routes) Get(id int32) (Route, error) {
	b, err := r.sec.Get(int(id), false, nil)
	if err != nil {
		return Route{}, err
	}
	return decodeRoute(b), nil
}
