package emdb

import (
	"fmt"
	"path/filepath"
)

// EditorDB is the single explicit owner of a directory of county
// containers, the active base map, and the county cache sitting between
// them (spec.md §5 "Editor DB facade"). Applications drive edits through
// EditorDB rather than opening Containers directly, so that growth,
// negative caching, and the base-map version check are applied
// consistently everywhere.
type EditorDB struct {
	baseMap BaseMap
	dir     string
	cache   *CountyCache
}

// NewEditorDB creates a facade rooted at dir (one container file per
// county, named by its FIPS code) and backed by baseMap for geometry and
// attributes EMDB does not itself store.
func NewEditorDB(dir string, baseMap BaseMap) *EditorDB {
	db := &EditorDB{baseMap: baseMap, dir: dir}
	db.cache = NewCountyCache(0, db.openOrCreate)
	return db
}

func (db *EditorDB) containerPath(fips int32) string {
	return filepath.Join(db.dir, fmt.Sprintf("edt%05d.rdm", fips))
}

func (db *EditorDB) openOrCreate(fips int32) (*Container, error) {
	path := db.containerPath(fips)
	mapDate, _ := db.baseMap.MetadataGetAttribute("rm_map_date")

	cont, err := OpenContainer(path, mapDate)
	if err == nil {
		return cont, nil
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != KindNotFound {
		return nil, err
	}

	edges, aerr := db.baseMap.CountyGetEdges(fips)
	if aerr != nil {
		return nil, aerr
	}
	numBaseLines, aerr := db.baseMap.LineTotalCount()
	if aerr != nil {
		return nil, aerr
	}
	return CreateContainer(path, fips, edges, mapDate, numBaseLines)
}

// Active returns the container for the currently active base-map county.
// Per spec.md §9's redesign flag, this reports KindNoCounty explicitly
// rather than falling back to a hard-coded FIPS when none is active.
func (db *EditorDB) Active() (*Container, error) {
	fips, ok := db.baseMap.LocatorActive()
	if !ok {
		return nil, newErr("active", KindNoCounty, nil)
	}
	return db.cache.Get(fips)
}

// ForPosition returns the container for the county containing pos.
func (db *EditorDB) ForPosition(pos Position) (*Container, error) {
	fips, ok := db.baseMap.LocatorByPosition(pos)
	if !ok {
		return nil, newErr("for_position", KindNoCounty, nil)
	}
	return db.cache.Get(fips)
}

// Close flushes and closes every cached container.
func (db *EditorDB) Close() error {
	return db.cache.Close()
}

// withGrowRetry runs op; on KindFull it grows c by INITIAL_BLOCKS and
// retries exactly once, matching spec.md §4.7 step 3's "num_total_blocks
// += INITIAL_BLOCKS" and the contract documented on errors.go's KindFull.
func withGrowRetry(c *Container, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != KindFull {
		return err
	}
	if gerr := c.Grow(defaultInitialBlocks); gerr != nil {
		return gerr
	}
	return op()
}

// AddPoint resolves baseID (if >= 0) to a shared editor point via the
// DelPoints bridge, or appends a brand new editor-only point at pos
// (spec.md §4.8 "Points & DelPoints").
func (db *EditorDB) AddPoint(c *Container, pos Position, baseID int32) (int32, error) {
	var id int32
	err := withGrowRetry(c, func() error {
		if baseID >= 0 {
			resolved, ierr := BaseIDToEditor(c.Points, c.DelPoints, db.baseMap, baseID)
			id = resolved
			return ierr
		}
		newID, ierr := c.Points.Add(pos, 0, -1)
		id = int32(newID)
		return ierr
	})
	return id, err
}

// AddLine appends a new line between two already-resolved editor points,
// indexes it into the square grid at both endpoints, and attaches a
// fresh Route record (spec.md §4.8 "Line").
func (db *EditorDB) AddLine(c *Container, from, to Position, fromID, toID int32, cfcc int32) (int32, error) {
	var lineID int32
	err := withGrowRetry(c, func() error {
		squareID := int32(c.Squares.IndexOf(from))
		rec := Line{
			FromPoint:  fromID,
			ToPoint:    toID,
			Cfcc:       cfcc,
			TrksegHead: -1,
			Square:     squareID,
			StreetID:   -1,
			RangeID:    -1,
		}
		id, ierr := c.Lines.Add(rec)
		if ierr != nil {
			return ierr
		}
		if ierr := c.Squares.AddLine(from, int(cfcc), id); ierr != nil {
			return ierr
		}
		if ierr := c.Squares.AddLine(to, int(cfcc), id); ierr != nil {
			return ierr
		}
		if _, ierr := c.Routes.Add(Route{LineID: id, Cfcc: cfcc}); ierr != nil {
			return ierr
		}
		lineID = id
		return nil
	})
	return lineID, err
}

// SplitLine splits lineID at splitPos: a new editor point is added at the
// split, every trkseg in the line's road list is divided between the two
// resulting lines (honoring each trkseg's recorded direction), and any
// attached Range's address numbers are redistributed proportionally to
// the two lines' lengths (spec.md §4.8 "Range redistribution"). If
// lineID is negative, baseLineID names a base-map line that is copied
// into an editor line first via LineCopy, matching line_split's "copies
// the line if it is a base-map line" precondition.
func (db *EditorDB) SplitLine(c *Container, lineID, baseLineID int32, splitPos Position) (int32, error) {
	var newLineID int32
	err := withGrowRetry(c, func() error {
		if lineID < 0 {
			copied, ierr := LineCopy(c, db.baseMap, baseLineID)
			if ierr != nil {
				return ierr
			}
			lineID = copied
		}

		line, ierr := c.Lines.Get(lineID)
		if ierr != nil {
			return ierr
		}
		fromPt, ierr := c.Points.Get(int(line.FromPoint))
		if ierr != nil {
			return ierr
		}
		toPt, ierr := c.Points.Get(int(line.ToPoint))
		if ierr != nil {
			return ierr
		}

		splitPointID, ierr := c.Points.Add(splitPos, 0, -1)
		if ierr != nil {
			return ierr
		}

		oldTrksegHead, newTrksegHead := int32(-1), int32(-1)
		if line.TrksegHead >= 0 {
			oldHead, _, newHead, _, rerr := c.Trksegs.SplitRoad(line.TrksegHead, splitPos)
			if rerr != nil {
				return rerr
			}
			oldTrksegHead, newTrksegHead = oldHead, newHead
		}

		id, ierr := c.Lines.Split(lineID, int32(splitPointID))
		if ierr != nil {
			return ierr
		}
		newLineID = id

		if newTrksegHead >= 0 {
			if ierr := c.Trksegs.SetLineID(newTrksegHead, newLineID); ierr != nil {
				return ierr
			}
		}
		if oldTrksegHead >= 0 {
			if ierr := c.Trksegs.SetLineID(oldTrksegHead, lineID); ierr != nil {
				return ierr
			}
		}

		line.TrksegHead = oldTrksegHead
		if ierr := c.Lines.put(lineID, line); ierr != nil {
			return ierr
		}

		newLine, ierr := c.Lines.Get(newLineID)
		if ierr != nil {
			return ierr
		}
		newLine.TrksegHead = newTrksegHead
		if ierr := c.Lines.put(newLineID, newLine); ierr != nil {
			return ierr
		}

		if line.RangeID >= 0 {
			headLen := distanceMeters(fromPt.Position(), splitPos)
			tailLen := distanceMeters(splitPos, toPt.Position())
			newRangeID, rerr := RedistributeOnSplit(c.Ranges, c.Streets, line.RangeID, newLineID, headLen, tailLen)
			if rerr != nil {
				return rerr
			}
			newLine.RangeID = newRangeID
			if ierr := c.Lines.put(newLineID, newLine); ierr != nil {
				return ierr
			}
		}

		return nil
	})
	return newLineID, err
}

// AddMarker appends a new, independent point-of-interest marker.
func (db *EditorDB) AddMarker(c *Container, pos Position, markerType int32, name string) (int32, error) {
	var id int32
	err := withGrowRetry(c, func() error {
		var nameRef int32 = -1
		if name != "" {
			ref, ierr := c.Dict.Add(VolumeNotes, name)
			if ierr != nil {
				return ierr
			}
			nameRef = ref
		}
		newID, ierr := c.Markers.Add(Marker{Lon: pos.Lon, Lat: pos.Lat, Type: markerType, NameRef: nameRef})
		id = newID
		return ierr
	})
	return id, err
}

// SetOverride records (or updates) the user's override of the base-map
// line identified by lineBaseID (spec.md §4.8 "Override").
func (db *EditorDB) SetOverride(c *Container, lineBaseID int32, rec Override) (int32, error) {
	var id int32
	err := withGrowRetry(c, func() error {
		newID, ierr := c.Overrides.Set(lineBaseID, rec)
		id = newID
		return ierr
	})
	return id, err
}
