package emdb

import "testing"

// TestRedistributeOnSplitConservesAddressSpan matches the S4 scenario:
// splitting a line at its midpoint splits its attached range
// proportionally, and the two halves' spans sum back to the original.
func TestRedistributeOnSplitConservesAddressSpan(t *testing.T) {
	c, _ := mustCreate(t, 1)

	street, err := c.Streets.Add(Street{NameRef: -1, Cfcc: 4, FirstRange: -1, LastRange: -1, FedirpRef: -1, FetypeRef: -1, FedirsRef: -1, T2SRef: -1})
	if err != nil {
		t.Fatalf("Streets.Add: %v", err)
	}

	original := Range{LineID: 0, StreetID: street, FromAddr: 1, ToAddr: 99, Side: RangeSideLeft, Cfcc: 4, CityRef: -1, ZipRef: -1}
	rangeID, err := c.Ranges.Add(c.Streets, original)
	if err != nil {
		t.Fatalf("Ranges.Add: %v", err)
	}

	newID, err := RedistributeOnSplit(c.Ranges, c.Streets, rangeID, 1, 50, 50)
	if err != nil {
		t.Fatalf("RedistributeOnSplit: %v", err)
	}

	head, err := c.Ranges.Get(rangeID)
	if err != nil {
		t.Fatalf("Ranges.Get(head): %v", err)
	}
	tail, err := c.Ranges.Get(newID)
	if err != nil {
		t.Fatalf("Ranges.Get(tail): %v", err)
	}

	if head.FromAddr != original.FromAddr {
		t.Errorf("head.FromAddr = %d, want %d (unchanged)", head.FromAddr, original.FromAddr)
	}
	if head.ToAddr != tail.FromAddr {
		t.Errorf("head.ToAddr (%d) != tail.FromAddr (%d): split point must be contiguous", head.ToAddr, tail.FromAddr)
	}
	if tail.ToAddr != original.ToAddr {
		t.Errorf("tail.ToAddr = %d, want %d (unchanged)", tail.ToAddr, original.ToAddr)
	}
	if tail.LineID != 1 {
		t.Errorf("tail.LineID = %d, want 1", tail.LineID)
	}

	// Equal-length halves of an even 98-wide span split evenly.
	if head.ToAddr-head.FromAddr != tail.ToAddr-tail.FromAddr {
		t.Errorf("unequal halves for an equal-length split: head span %d, tail span %d",
			head.ToAddr-head.FromAddr, tail.ToAddr-tail.FromAddr)
	}
}

func TestRangesAddLinksStreetList(t *testing.T) {
	c, _ := mustCreate(t, 1)

	street, err := c.Streets.Add(Street{NameRef: -1, Cfcc: 4, FirstRange: -1, LastRange: -1, FedirpRef: -1, FetypeRef: -1, FedirsRef: -1, T2SRef: -1})
	if err != nil {
		t.Fatalf("Streets.Add: %v", err)
	}

	r1, err := c.Ranges.Add(c.Streets, Range{StreetID: street, FromAddr: 1, ToAddr: 10, CityRef: -1, ZipRef: -1})
	if err != nil {
		t.Fatalf("Ranges.Add(r1): %v", err)
	}
	r2, err := c.Ranges.Add(c.Streets, Range{StreetID: street, FromAddr: 11, ToAddr: 20, CityRef: -1, ZipRef: -1})
	if err != nil {
		t.Fatalf("Ranges.Add(r2): %v", err)
	}

	st, err := c.Streets.Get(street)
	if err != nil {
		t.Fatalf("Streets.Get: %v", err)
	}
	if st.FirstRange != r1 {
		t.Errorf("FirstRange = %d, want %d", st.FirstRange, r1)
	}
	if st.LastRange != r2 {
		t.Errorf("LastRange = %d, want %d", st.LastRange, r2)
	}

	first, err := c.Ranges.Get(r1)
	if err != nil {
		t.Fatalf("Ranges.Get(r1): %v", err)
	}
	if first.Next != r2 {
		t.Errorf("r1.Next = %d, want %d", first.Next, r2)
	}
}
