package emdb

// BaseMap is the narrow, read-only interface EMDB depends on to resolve
// base-map point positions, line geometry, and attributes it does not
// itself store. The base map's own on-disk format is out of scope for
// this package (spec.md "Non-goals"); callers inject whatever
// implementation reads it.
type BaseMap interface {
	// LocatorActivate loads and activates the base map covering fips,
	// returning its rm_map_date stamp for comparison against a
	// container's Header.RMMapDate.
	LocatorActivate(fips int32) (mapDate string, err error)

	// LocatorActive returns the fips of the currently active base map,
	// or Unknown if none is active. Per spec.md §9's redesign flag, this
	// never silently falls back to a hard-coded county.
	LocatorActive() (fips int32, ok bool)

	// LocatorByPosition returns the fips of the county containing pos.
	LocatorByPosition(pos Position) (fips int32, ok bool)

	// CountyGetEdges returns the bounding box of the county identified by fips.
	CountyGetEdges(fips int32) (Area, error)

	// PointPosition returns the position of base-map point id.
	PointPosition(id int32) (Position, error)

	// PointDBID returns the stable database id of base-map point id, used
	// for cross-referencing between a container and the base map it
	// overlays.
	PointDBID(id int32) (int32, error)

	// LineFrom and LineTo return the endpoint base-map point ids of line id.
	LineFrom(id int32) (int32, error)
	LineTo(id int32) (int32, error)

	// LineCount returns the number of shape points between a line's
	// endpoints (exclusive), and LinePoints yields them in order.
	LineCount(id int32) (int, error)
	LinePoints(id int32, fn func(index int, pos Position) error) error

	// LineTotalCount returns the active base map's total line count,
	// used to size a newly created container's override index (one
	// slot per base-map line, spec.md §3 "Override").
	LineTotalCount() (int32, error)

	// LineLength returns the cumulative geometric length of line id, in meters.
	LineLength(id int32) (float64, error)

	// LineShapes returns the shape deltas of line id relative to its From point.
	LineShapes(id int32) ([]Shape, error)

	// LineRouteGetFlags and LineRouteGetSpeedLimit return the base map's
	// own routing attributes for line id, before any Override is applied.
	LineRouteGetFlags(id int32) (uint32, error)
	LineRouteGetSpeedLimit(id int32) (int32, error)

	// StreetGetProperties returns the name and feature class of the
	// street that owns line id.
	StreetGetProperties(lineID int32) (name string, cfcc int32, err error)

	// MetadataGetAttribute returns a named attribute of the active base
	// map (e.g. its build date), used to validate a container's stamped
	// RMMapDate at open time.
	MetadataGetAttribute(name string) (string, bool)
}

// UnknownFips is returned by LocatorActive/LocatorByPosition when no
// county can be determined. Spec.md §9's redesign flag: editor_db_locator
// must report this explicitly instead of defaulting to a hard-coded FIPS.
const UnknownFips int32 = -1
