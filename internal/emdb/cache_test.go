package emdb

import "testing"

func TestCountyCacheEvictsLeastRecentlyUsed(t *testing.T) {
	opened := map[int32]int{}
	open := func(fips int32) (*Container, error) {
		opened[fips]++
		path := t.TempDir() + "/fake.rdm"
		return CreateContainer(path, fips, testEdges(), "d", 1)
	}

	cache := NewCountyCache(2, open)
	defer cache.Close()

	if _, err := cache.Get(1); err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if _, err := cache.Get(2); err != nil {
		t.Fatalf("Get(2): %v", err)
	}
	// Touch 1 again so 2 becomes the least recently used.
	if _, err := cache.Get(1); err != nil {
		t.Fatalf("Get(1) again: %v", err)
	}
	if _, err := cache.Get(3); err != nil {
		t.Fatalf("Get(3): %v", err)
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

	if _, err := cache.Get(2); err != nil {
		t.Fatalf("Get(2) after eviction: %v", err)
	}
	if opened[2] != 2 {
		t.Errorf("county 2 opened %d times, want 2 (reopened after eviction)", opened[2])
	}
	if opened[1] != 1 {
		t.Errorf("county 1 opened %d times, want 1 (never evicted)", opened[1])
	}
}

func TestCountyCacheNegativeCaching(t *testing.T) {
	calls := 0
	open := func(fips int32) (*Container, error) {
		calls++
		return nil, newErr("open", KindNotFound, nil)
	}
	cache := NewCountyCache(0, open)
	defer cache.Close()

	if _, err := cache.Get(99); !KindNoCounty.Is(err) {
		t.Fatalf("Get(99) = %v, want KindNoCounty", err)
	}
	if _, err := cache.Get(99); !KindNoCounty.Is(err) {
		t.Fatalf("Get(99) second call = %v, want KindNoCounty", err)
	}
	if calls != 1 {
		t.Errorf("opener called %d times, want 1 (negative result cached)", calls)
	}
}
