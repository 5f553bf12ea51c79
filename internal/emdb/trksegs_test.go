package emdb

import "testing"

// addTrksegWithShapes adds shape deltas for a straight trkseg starting at
// fromPoint and returns the new trkseg's id.
func addTrksegWithShapes(t *testing.T, c *Container, fromPoint int32, deltas [][2]int16, flags uint32) int32 {
	t.Helper()
	first, last := int32(-1), int32(-1)
	for _, d := range deltas {
		id, err := c.Shapes.Add(Shape{DLon: d[0], DLat: d[1]})
		if err != nil {
			t.Fatalf("Shapes.Add: %v", err)
		}
		if first < 0 {
			first = int32(id)
		}
		last = int32(id)
	}
	id, err := c.Trksegs.Add(Trkseg{
		FromPoint:  fromPoint,
		FirstShape: first,
		LastShape:  last,
		GPSStart:   0,
		GPSEnd:     100,
		Flags:      flags,
	})
	if err != nil {
		t.Fatalf("Trksegs.Add: %v", err)
	}
	return id
}

// TestTrksegsSplitRoadMultiSegment exercises a road list of two trksegs:
// A from (0,0) to (10_000,0), B from (10_000,0) to (20_000,0), split at
// (15_000,0). SplitRoad splits every trkseg of the list at its shape
// closest to the split: A's only shape moves to A's split-off piece, and
// B's first shape (15_000,0) starts B's split-off piece. A and B stay on
// the "old" list; the two split-off pieces form the "new" list.
func TestTrksegsSplitRoadMultiSegment(t *testing.T) {
	c, _ := mustCreate(t, 1)

	p0, err := c.Points.Add(Position{Lon: 0, Lat: 0}, 0, -1)
	if err != nil {
		t.Fatalf("Points.Add(p0): %v", err)
	}
	p1, err := c.Points.Add(Position{Lon: 10_000, Lat: 0}, 0, -1)
	if err != nil {
		t.Fatalf("Points.Add(p1): %v", err)
	}

	segA := addTrksegWithShapes(t, c, int32(p0), [][2]int16{{10_000, 0}}, 0)
	segB := addTrksegWithShapes(t, c, int32(p1), [][2]int16{{5_000, 0}, {5_000, 0}}, 0)
	if err := c.Trksegs.AppendToRoad(segA, segB); err != nil {
		t.Fatalf("AppendToRoad: %v", err)
	}

	splitPos := Position{Lon: 15_000, Lat: 0}
	oldHead, oldTail, newHead, newTail, err := c.Trksegs.SplitRoad(segA, splitPos)
	if err != nil {
		t.Fatalf("SplitRoad: %v", err)
	}

	if oldHead != segA {
		t.Errorf("oldHead = %d, want %d (segA)", oldHead, segA)
	}
	if newHead == segB {
		t.Errorf("newHead = %d, want the new trkseg split off segB, not segB itself", newHead)
	}

	var oldIDs, newIDs []int32
	if err := c.Trksegs.RoadList(oldHead, func(id int32, _ Trkseg) error {
		oldIDs = append(oldIDs, id)
		return nil
	}); err != nil {
		t.Fatalf("RoadList(old): %v", err)
	}
	if err := c.Trksegs.RoadList(newHead, func(id int32, _ Trkseg) error {
		newIDs = append(newIDs, id)
		return nil
	}); err != nil {
		t.Fatalf("RoadList(new): %v", err)
	}

	if len(oldIDs) != 2 || oldIDs[0] != segA || oldIDs[1] != segB {
		t.Errorf("old road list = %v, want [segA(%d), segB(%d)]", oldIDs, segA, segB)
	}
	if len(newIDs) != 2 || newIDs[0] != newHead || newIDs[1] != newTail {
		t.Errorf("new road list = %v, want [newHead(%d), newTail(%d)]", newIDs, newHead, newTail)
	}
	if oldTail != segB {
		t.Errorf("oldTail = %d, want segB(%d)", oldTail, segB)
	}
	if newTail == newHead {
		t.Errorf("newTail = %d, want a second trkseg after newHead %d", newTail, newHead)
	}

	bRec, err := c.Trksegs.Get(segB)
	if err != nil {
		t.Fatalf("Trksegs.Get(segB): %v", err)
	}
	if bRec.LastShape != bRec.FirstShape-1 {
		t.Errorf("segB.LastShape = %d, want %d (split at its first shape)", bRec.LastShape, bRec.FirstShape-1)
	}
}

// TestTrksegsSplitRoadOppositeDir exercises a single trkseg flagged
// TrksegOppositeDir: its "old" half must be the geometric tail (the split
// piece), and its "new" half the geometric head (the original record),
// matching editor_line_split's handling of ED_TRKSEG_OPPOSITE_DIR.
func TestTrksegsSplitRoadOppositeDir(t *testing.T) {
	c, _ := mustCreate(t, 1)

	p0, err := c.Points.Add(Position{Lon: 0, Lat: 0}, 0, -1)
	if err != nil {
		t.Fatalf("Points.Add(p0): %v", err)
	}

	seg := addTrksegWithShapes(t, c, int32(p0), [][2]int16{{5_000, 0}, {5_000, 0}}, TrksegOppositeDir)

	splitPos := Position{Lon: 5_000, Lat: 0}
	oldHead, _, newHead, _, err := c.Trksegs.SplitRoad(seg, splitPos)
	if err != nil {
		t.Fatalf("SplitRoad: %v", err)
	}

	if newHead != seg {
		t.Errorf("newHead = %d, want the original record %d for an opposite-direction trkseg", newHead, seg)
	}
	if oldHead == seg {
		t.Errorf("oldHead = %d, want the newly split-off record, not the original %d", oldHead, seg)
	}
}

// TestTrksegsSplitRoadGlobalSplice checks that the split piece is spliced
// into the global list immediately after its source, not appended at the
// list's tail.
func TestTrksegsSplitRoadGlobalSplice(t *testing.T) {
	c, _ := mustCreate(t, 1)

	p0, err := c.Points.Add(Position{Lon: 0, Lat: 0}, 0, -1)
	if err != nil {
		t.Fatalf("Points.Add(p0): %v", err)
	}

	seg := addTrksegWithShapes(t, c, int32(p0), [][2]int16{{5_000, 0}, {5_000, 0}}, 0)
	tailOfGlobal := addTrksegWithShapes(t, c, int32(p0), [][2]int16{{1, 1}}, 0)

	splitPos := Position{Lon: 5_000, Lat: 0}
	_, _, newHead, _, err := c.Trksegs.SplitRoad(seg, splitPos)
	if err != nil {
		t.Fatalf("SplitRoad: %v", err)
	}

	segRec, err := c.Trksegs.Get(seg)
	if err != nil {
		t.Fatalf("Trksegs.Get(seg): %v", err)
	}
	if segRec.NextGlobal != newHead {
		t.Errorf("seg.NextGlobal = %d, want the split piece %d spliced in right after it", segRec.NextGlobal, newHead)
	}

	splitRec, err := c.Trksegs.Get(newHead)
	if err != nil {
		t.Fatalf("Trksegs.Get(newHead): %v", err)
	}
	if splitRec.NextGlobal != tailOfGlobal {
		t.Errorf("split piece.NextGlobal = %d, want it to keep pointing at what used to follow seg (%d)", splitRec.NextGlobal, tailOfGlobal)
	}
}
