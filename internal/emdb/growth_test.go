package emdb

import "testing"

func TestGrowIncreasesBlocksAndPreservesData(t *testing.T) {
	c, _ := mustCreate(t, 1)

	id, err := c.Points.Add(Position{Lon: 5, Lat: 6}, 0, -1)
	if err != nil {
		t.Fatalf("Points.Add: %v", err)
	}

	before := c.header.NumTotalBlocks
	if err := c.Grow(25); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	after := c.header.NumTotalBlocks
	if after != before+25 {
		t.Errorf("NumTotalBlocks = %d, want %d", after, before+25)
	}
	if uint32(c.header.FileSize) != uint32(c.blocksOff)+after*c.header.BlockSize {
		t.Errorf("FileSize = %d, inconsistent with blocksOff + total*block_size", c.header.FileSize)
	}

	pt, err := c.Points.Get(id)
	if err != nil {
		t.Fatalf("Points.Get after Grow: %v", err)
	}
	if pt.Position() != (Position{Lon: 5, Lat: 6}) {
		t.Errorf("point data lost across Grow: got %+v", pt.Position())
	}
}

func TestWithGrowRetryGrowsOnceThenSucceeds(t *testing.T) {
	c, _ := mustCreate(t, 1)

	calls := 0
	err := withGrowRetry(c, func() error {
		calls++
		if calls == 1 {
			return newErr("test", KindFull, nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withGrowRetry: %v", err)
	}
	if calls != 2 {
		t.Errorf("op called %d times, want exactly 2 (fail once, grow, retry)", calls)
	}
}

func TestWithGrowRetryPropagatesNonFullError(t *testing.T) {
	c, _ := mustCreate(t, 1)

	wantErr := newErr("test", KindIoError, nil)
	calls := 0
	err := withGrowRetry(c, func() error {
		calls++
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("withGrowRetry returned %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want exactly 1 (no retry on non-Full error)", calls)
	}
}
