package emdb

import "testing"

// fakeBaseMap is a minimal, in-memory BaseMap good enough to drive
// EditorDB through CreateContainer's county-resolution path, and
// optionally a single base-map line (baseFrom/baseTo/basePositions) for
// exercising LineCopy.
type fakeBaseMap struct {
	edges        Area
	numBaseLines int32
	mapDate      string
	active       int32

	baseFrom, baseTo     int32
	basePositions        map[int32]Position
	baseShapes           []Shape
	baseStreetName       string
	baseCfcc             int32
	baseRouteFlags       uint32
	baseRouteSpeedLimit  int32
}

var _ BaseMap = (*fakeBaseMap)(nil)

func (f *fakeBaseMap) LocatorActivate(int32) (string, error) { return f.mapDate, nil }
func (f *fakeBaseMap) LocatorActive() (int32, bool) {
	if f.active < 0 {
		return UnknownFips, false
	}
	return f.active, true
}
func (f *fakeBaseMap) LocatorByPosition(Position) (int32, bool) { return f.active, f.active >= 0 }
func (f *fakeBaseMap) CountyGetEdges(int32) (Area, error)        { return f.edges, nil }

func (f *fakeBaseMap) PointPosition(id int32) (Position, error) {
	pos, ok := f.basePositions[id]
	if !ok {
		return Position{}, newErr("point_position", KindNotFound, nil)
	}
	return pos, nil
}
func (f *fakeBaseMap) PointDBID(int32) (int32, error) { panic("unused") }
func (f *fakeBaseMap) LineFrom(int32) (int32, error)  { return f.baseFrom, nil }
func (f *fakeBaseMap) LineTo(int32) (int32, error)    { return f.baseTo, nil }
func (f *fakeBaseMap) LineCount(int32) (int, error)   { panic("unused") }
func (f *fakeBaseMap) LinePoints(int32, func(int, Position) error) error {
	panic("unused")
}
func (f *fakeBaseMap) LineTotalCount() (int32, error)    { return f.numBaseLines, nil }
func (f *fakeBaseMap) LineLength(int32) (float64, error) { panic("unused") }
func (f *fakeBaseMap) LineShapes(int32) ([]Shape, error) { return f.baseShapes, nil }
func (f *fakeBaseMap) LineRouteGetFlags(int32) (uint32, error) {
	return f.baseRouteFlags, nil
}
func (f *fakeBaseMap) LineRouteGetSpeedLimit(int32) (int32, error) {
	return f.baseRouteSpeedLimit, nil
}
func (f *fakeBaseMap) StreetGetProperties(int32) (string, int32, error) {
	return f.baseStreetName, f.baseCfcc, nil
}
func (f *fakeBaseMap) MetadataGetAttribute(name string) (string, bool) {
	if name == "rm_map_date" {
		return f.mapDate, true
	}
	return "", false
}

func TestEditorDBActiveCreatesCountyWithBaseLineCount(t *testing.T) {
	bm := &fakeBaseMap{edges: testEdges(), numBaseLines: 3, mapDate: "2026-01-01", active: 42}
	db := NewEditorDB(t.TempDir(), bm)
	defer db.Close()

	c, err := db.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if c.Header().Fips != 42 {
		t.Errorf("Fips = %d, want 42", c.Header().Fips)
	}
	if c.Header().NumBaseLines != 3 {
		t.Errorf("NumBaseLines = %d, want 3", c.Header().NumBaseLines)
	}
}

func TestEditorDBActiveReportsNoCounty(t *testing.T) {
	bm := &fakeBaseMap{edges: testEdges(), numBaseLines: 1, mapDate: "2026-01-01", active: -1}
	db := NewEditorDB(t.TempDir(), bm)
	defer db.Close()

	if _, err := db.Active(); !KindNoCounty.Is(err) {
		t.Fatalf("Active() = %v, want KindNoCounty", err)
	}
}

func TestEditorDBAddLineAndSplit(t *testing.T) {
	bm := &fakeBaseMap{edges: testEdges(), numBaseLines: 1, mapDate: "2026-01-01", active: 42}
	db := NewEditorDB(t.TempDir(), bm)
	defer db.Close()

	c, err := db.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}

	from := Position{Lon: 0, Lat: 0}
	to := Position{Lon: 100_000, Lat: 0}
	fromID, err := db.AddPoint(c, from, -1)
	if err != nil {
		t.Fatalf("AddPoint(from): %v", err)
	}
	toID, err := db.AddPoint(c, to, -1)
	if err != nil {
		t.Fatalf("AddPoint(to): %v", err)
	}

	lineID, err := db.AddLine(c, from, to, fromID, toID, 4)
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	split := Position{Lon: 50_000, Lat: 0}
	newLineID, err := db.SplitLine(c, lineID, -1, split)
	if err != nil {
		t.Fatalf("SplitLine: %v", err)
	}
	if newLineID == lineID {
		t.Fatal("SplitLine returned the original line id")
	}

	orig, err := c.Lines.Get(lineID)
	if err != nil {
		t.Fatalf("Lines.Get(orig): %v", err)
	}
	tail, err := c.Lines.Get(newLineID)
	if err != nil {
		t.Fatalf("Lines.Get(tail): %v", err)
	}
	if orig.ToPoint == toID {
		t.Error("original line still points at the old To endpoint after split")
	}
	if tail.ToPoint != toID {
		t.Errorf("tail.ToPoint = %d, want %d", tail.ToPoint, toID)
	}
}

func TestEditorDBSplitBaseMapLine(t *testing.T) {
	bm := &fakeBaseMap{
		edges: testEdges(), numBaseLines: 1, mapDate: "2026-01-01", active: 42,
		baseFrom: 100, baseTo: 101,
		basePositions: map[int32]Position{
			100: {Lon: 0, Lat: 0},
			101: {Lon: 100_000, Lat: 0},
		},
		baseShapes: []Shape{
			{DLon: 20_000, DLat: 0, DTime: 0},
			{DLon: 20_000, DLat: 0, DTime: 0},
			{DLon: 20_000, DLat: 0, DTime: 0},
			{DLon: 20_000, DLat: 0, DTime: 0},
			{DLon: 20_000, DLat: 0, DTime: 0},
		},
		baseStreetName:      "Base Street",
		baseCfcc:            4,
		baseRouteFlags:      RouteOneway,
		baseRouteSpeedLimit: 55,
	}
	db := NewEditorDB(t.TempDir(), bm)
	defer db.Close()

	c, err := db.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}

	split := Position{Lon: 50_000, Lat: 0}
	newLineID, err := db.SplitLine(c, -1, 7, split)
	if err != nil {
		t.Fatalf("SplitLine(base-map line): %v", err)
	}

	if c.Lines.Count() != 2 {
		t.Fatalf("Lines.Count() = %d, want 2 (copy + split)", c.Lines.Count())
	}
	copied, err := c.Lines.Get(0)
	if err != nil {
		t.Fatalf("Lines.Get(copy): %v", err)
	}
	if copied.StreetID < 0 {
		t.Error("copied line has no StreetID, want the copied base street")
	}
	street, err := c.Streets.Get(copied.StreetID)
	if err != nil {
		t.Fatalf("Streets.Get: %v", err)
	}
	name, err := c.Dict.String(street.NameRef)
	if err != nil {
		t.Fatalf("Dict.String(NameRef): %v", err)
	}
	if name != "Base Street" {
		t.Errorf("street name = %q, want %q", name, "Base Street")
	}

	tail, err := c.Lines.Get(newLineID)
	if err != nil {
		t.Fatalf("Lines.Get(tail): %v", err)
	}
	if tail.TrksegHead < 0 {
		t.Error("tail.TrksegHead is -1, want the copied geometry's tail trkseg")
	}
}

func TestEditorDBSetOverride(t *testing.T) {
	bm := &fakeBaseMap{edges: testEdges(), numBaseLines: 5, mapDate: "2026-01-01", active: 42}
	db := NewEditorDB(t.TempDir(), bm)
	defer db.Close()

	c, err := db.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}

	rec := Override{FirstTrkseg: 1, LastTrkseg: 2, RouteID: -1, Flags: LineDirty}
	if _, err := db.SetOverride(c, 3, rec); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}

	got, found, err := c.Overrides.Find(3)
	if err != nil {
		t.Fatalf("Overrides.Find: %v", err)
	}
	if !found || got != rec {
		t.Errorf("Find(3) = (%+v, %v), want (%+v, true)", got, found, rec)
	}
}
