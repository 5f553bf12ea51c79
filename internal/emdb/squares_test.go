package emdb

import "testing"

func TestSquaresAddLineSkipsConsecutiveDuplicate(t *testing.T) {
	c, _ := mustCreate(t, 1)
	pos := Position{Lon: 10, Lat: 10}

	if err := c.Squares.AddLine(pos, 1, 7); err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if err := c.Squares.AddLine(pos, 1, 7); err != nil {
		t.Fatalf("AddLine (repeat): %v", err)
	}

	id := c.Squares.IndexOf(pos)
	lines, err := c.Squares.GetLines(id)
	if err != nil {
		t.Fatalf("GetLines: %v", err)
	}
	if len(lines) != 1 || lines[0] != 7 {
		t.Errorf("GetLines = %v, want [7] (consecutive repeat collapsed)", lines)
	}
}

func TestSquaresAddLineGeometryVisitsEveryDistinctSquare(t *testing.T) {
	c, _ := mustCreate(t, 1)
	from := Position{Lon: 10, Lat: 10}
	to := Position{Lon: 480_000, Lat: 480_000}

	if err := c.Squares.AddLineGeometry(from, to, nil, 2, 99); err != nil {
		t.Fatalf("AddLineGeometry: %v", err)
	}

	fromSquare := c.Squares.IndexOf(from)
	toSquare := c.Squares.IndexOf(to)
	if fromSquare == toSquare {
		t.Fatal("test assumes from/to fall in different squares")
	}

	for _, id := range []int{fromSquare, toSquare} {
		lines, err := c.Squares.GetLines(id)
		if err != nil {
			t.Fatalf("GetLines(%d): %v", id, err)
		}
		if len(lines) != 1 || lines[0] != 99 {
			t.Errorf("square %d lines = %v, want [99]", id, lines)
		}
		cfccs, err := c.Squares.GetCFCCs(id)
		if err != nil {
			t.Fatalf("GetCFCCs(%d): %v", id, err)
		}
		if cfccs&(1<<2) == 0 {
			t.Errorf("square %d cfccs bitmap missing bit 2", id)
		}
	}
}

func TestSquaresFindByPositionNear(t *testing.T) {
	c, _ := mustCreate(t, 1)

	// Chosen 1000 micro-degrees from the right edge of its column cell
	// (within nearDistance), and well clear of any other cell edge, so
	// FindByPosition(near=true) deterministically picks up exactly the
	// adjacent column.
	pos := Position{Lon: 149_000, Lat: 275_000}
	plain := c.Squares.FindByPosition(pos, false)
	if len(plain) != 1 {
		t.Fatalf("FindByPosition(near=false) = %v, want exactly one square", plain)
	}

	near := c.Squares.FindByPosition(pos, true)
	if len(near) < 2 {
		t.Errorf("FindByPosition(near=true) near an edge = %v, want adjacent squares included", near)
	}
	if near[0] != plain[0] {
		t.Errorf("FindByPosition(near=true)[0] = %d, want the containing square %d first", near[0], plain[0])
	}
}
