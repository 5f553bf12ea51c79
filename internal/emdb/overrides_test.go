package emdb

import "testing"

// TestOverrideIndexScenario matches spec's override-index scenario:
// reading an unallocated index slot without create fails with
// NotAllocated; reading with create pre-fills every slot of the backing
// block with -1, not just the one requested.
func TestOverrideIndexScenario(t *testing.T) {
	c, _ := mustCreate(t, 5)

	if _, err := c.Overrides.Index(3, false); !KindNotAllocated.Is(err) {
		t.Fatalf("Index(3, false) = %v, want KindNotAllocated", err)
	}

	itemsPerBlock := c.pool.blockSize / overrideIndexSize
	if itemsPerBlock < 5 {
		t.Fatalf("test assumes one block covers all 5 base lines, got itemsPerBlock=%d", itemsPerBlock)
	}

	got, err := c.Overrides.Index(3, true)
	if err != nil {
		t.Fatalf("Index(3, true): %v", err)
	}
	if got != -1 {
		t.Errorf("Index(3, true) = %d, want -1", got)
	}

	for id := int32(0); id < 5; id++ {
		slot, err := c.Overrides.Index(id, false)
		if err != nil {
			t.Fatalf("Index(%d, false) after create: %v", id, err)
		}
		if slot != -1 {
			t.Errorf("Index(%d) = %d, want -1 (pre-filled by create)", id, slot)
		}
	}
}

func TestOverridesSetAndFind(t *testing.T) {
	c, _ := mustCreate(t, 5)

	if _, found, err := c.Overrides.Find(2); err != nil {
		t.Fatalf("Find before Set: %v", err)
	} else if found {
		t.Fatal("Find before Set reported found=true")
	}

	rec := Override{FirstTrkseg: 10, LastTrkseg: 12, RouteID: 7, Flags: LineDirty}
	id, err := c.Overrides.Set(2, rec)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found, err := c.Overrides.Find(2)
	if err != nil {
		t.Fatalf("Find after Set: %v", err)
	}
	if !found {
		t.Fatal("Find after Set reported found=false")
	}
	if got != rec {
		t.Errorf("Find = %+v, want %+v", got, rec)
	}

	updated := Override{FirstTrkseg: 20, LastTrkseg: 22, RouteID: 7, Flags: 0}
	updatedID, err := c.Overrides.Set(2, updated)
	if err != nil {
		t.Fatalf("Set (update): %v", err)
	}
	if updatedID != id {
		t.Errorf("update allocated a new record: got id %d, want %d (reused)", updatedID, id)
	}

	got, _, err = c.Overrides.Find(2)
	if err != nil {
		t.Fatalf("Find after update: %v", err)
	}
	if got != updated {
		t.Errorf("Find after update = %+v, want %+v", got, updated)
	}

	if _, found, err := c.Overrides.Find(4); err != nil {
		t.Fatalf("Find(4): %v", err)
	} else if found {
		t.Error("Find(4) reported found=true, but line 4 was never overridden")
	}
}
