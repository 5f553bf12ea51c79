package emdb

import (
	"path/filepath"
	"testing"
)

func testEdges() Area {
	return Area{West: 0, South: 0, East: 500_000, North: 500_000}
}

func mustCreate(t *testing.T, numBaseLines int32) (*Container, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edt00001.rdm")
	c, err := CreateContainer(path, 1, testEdges(), "2026-01-01", numBaseLines)
	if err != nil {
		t.Fatalf("CreateContainer: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestCreateContainerRejectsExisting(t *testing.T) {
	_, path := mustCreate(t, 5)
	if _, err := CreateContainer(path, 1, testEdges(), "2026-01-01", 5); err == nil {
		t.Fatal("expected an error creating over an existing container")
	}
}

func TestOpenRoundTripsHeader(t *testing.T) {
	c, path := mustCreate(t, 5)
	if _, err := c.Points.Add(Position{Lon: 100, Lat: 100}, 0, -1); err != nil {
		t.Fatalf("Points.Add: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenContainer(path, "2026-01-01")
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}
	defer reopened.Close()

	h := reopened.Header()
	if h.Fips != 1 {
		t.Errorf("Fips = %d, want 1", h.Fips)
	}
	if h.Edges != testEdges() {
		t.Errorf("Edges = %+v, want %+v", h.Edges, testEdges())
	}
	if h.RMMapDate != "2026-01-01" {
		t.Errorf("RMMapDate = %q, want %q", h.RMMapDate, "2026-01-01")
	}
	if h.NumBaseLines != 5 {
		t.Errorf("NumBaseLines = %d, want 5", h.NumBaseLines)
	}
	if reopened.Points.Count() != 1 {
		t.Errorf("Points.Count() = %d, want 1", reopened.Points.Count())
	}
}

func TestOpenRejectsMapDateMismatch(t *testing.T) {
	_, path := mustCreate(t, 5)

	if _, err := OpenContainer(path, "some-other-date"); !KindVersionMismatch.Is(err) {
		t.Fatalf("expected KindVersionMismatch, got %v", err)
	}
}

func TestOpenMissingFileIsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.rdm")
	if _, err := OpenContainer(path, ""); !KindNotFound.Is(err) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestBlocksChecksumStableAcrossReopen(t *testing.T) {
	c, path := mustCreate(t, 5)
	if _, err := c.Points.Add(Position{Lon: 1, Lat: 2}, 0, -1); err != nil {
		t.Fatalf("Points.Add: %v", err)
	}
	want := c.BlocksChecksum()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenContainer(path, "2026-01-01")
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}
	defer reopened.Close()

	if got := reopened.BlocksChecksum(); got != want {
		t.Errorf("BlocksChecksum after reopen = %x, want %x", got, want)
	}
}
