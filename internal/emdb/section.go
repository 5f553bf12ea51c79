package emdb

// sectionDescriptor is the per-section bookkeeping record described in
// spec.md §3 ("Section descriptor"): num_items, max_items, item_size,
// items_per_block, max_blocks and the blocks[] table of pool indices.
// It is handed out by the container's section table and backed by a
// live byte-slice view into the mapped image, so mutations are visible
// immediately (there is no write-back buffer above the mapped region).
type sectionDescriptor struct {
	name          string
	itemSize      int
	numItems      int
	maxItems      int
	itemsPerBlock int
	maxBlocks     int
	blocks        []int32 // pool block index per logical block, -1 = unallocated

	pool   *blockPool
	notify func() // called after each successful Append (periodic sync)
}

// computeBlocking derives items-per-block and max-blocks for a section of
// the given item size and item capacity, drawn from a pool of blockSize
// blocks. Shared by newSectionDescriptor and the container's section
// table sizing so the two never disagree.
func computeBlocking(itemSize, maxItems, blockSize int) (itemsPerBlock, maxBlocks int) {
	itemsPerBlock = blockSize / itemSize
	if itemsPerBlock < 1 {
		itemsPerBlock = 1
	}
	maxBlocks = (maxItems + itemsPerBlock - 1) / itemsPerBlock
	if maxBlocks < 1 {
		maxBlocks = 1
	}
	return itemsPerBlock, maxBlocks
}

func newSectionDescriptor(name string, itemSize, maxItems, blockSize int, pool *blockPool) *sectionDescriptor {
	itemsPerBlock, maxBlocks := computeBlocking(itemSize, maxItems, blockSize)
	blocks := make([]int32, maxBlocks)
	for i := range blocks {
		blocks[i] = -1
	}
	return &sectionDescriptor{
		name:          name,
		itemSize:      itemSize,
		maxItems:      maxItems,
		itemsPerBlock: itemsPerBlock,
		maxBlocks:     maxBlocks,
		blocks:        blocks,
		pool:          pool,
	}
}

// NumItems returns the number of logical items appended so far.
func (s *sectionDescriptor) NumItems() int { return s.numItems }

func (s *sectionDescriptor) blockIndexFor(logicalBlock int) (int32, bool) {
	if logicalBlock < 0 || logicalBlock >= len(s.blocks) {
		return 0, false
	}
	return s.blocks[logicalBlock], true
}

// ensureBlock allocates the backing pool block for logical block k,
// growing the section's blocks[] entry via the shared allocator (spec §4.2).
func (s *sectionDescriptor) ensureBlock(op string, k int, create bool, initFn func([]byte)) error {
	if k >= s.maxBlocks {
		return newErr(op, KindSectionFull, nil)
	}
	if s.blocks[k] != -1 {
		return nil
	}
	if !create {
		return newErr(op, KindNotAllocated, nil)
	}
	poolIdx, err := s.pool.allocate(op, s, k)
	if err != nil {
		return err
	}
	s.blocks[k] = poolIdx
	if initFn != nil {
		buf := s.pool.blockBytes(poolIdx)
		for off := 0; off+s.itemSize <= len(buf); off += s.itemSize {
			initFn(buf[off : off+s.itemSize])
		}
	}
	return nil
}

// itemBytes returns the raw backing bytes for item id, allocating the
// block on demand when create is true. init is applied to every slot of a
// freshly allocated block (used by the override index to pre-fill -1).
func (s *sectionDescriptor) itemBytes(op string, id int, create bool, init func([]byte)) ([]byte, error) {
	if id < 0 {
		return nil, newErr(op, KindNotAllocated, nil)
	}
	logicalBlock := id / s.itemsPerBlock
	if err := s.ensureBlock(op, logicalBlock, create, init); err != nil {
		return nil, err
	}
	poolIdx := s.blocks[logicalBlock]
	buf := s.pool.blockBytes(poolIdx)
	off := (id % s.itemsPerBlock) * s.itemSize
	return buf[off : off+s.itemSize], nil
}

// Get returns the backing bytes of item id. With create=false, an
// unallocated block yields KindNotAllocated ("no such item").
func (s *sectionDescriptor) Get(id int, create bool, init func([]byte)) ([]byte, error) {
	return s.itemBytes("get", id, create, init)
}

// GetLast returns the bytes for the most recently appended item.
func (s *sectionDescriptor) GetLast() ([]byte, error) {
	if s.numItems == 0 {
		return nil, newErr("get_last", KindNotAllocated, nil)
	}
	return s.itemBytes("get_last", s.numItems-1, false, nil)
}

// Append copies data into a freshly allocated slot, growing a block when
// the current one is full, and returns its pre-increment id.
func (s *sectionDescriptor) Append(data []byte) (int, error) {
	if s.numItems >= s.maxItems {
		return -1, newErr("append", KindSectionFull, nil)
	}
	id := s.numItems
	buf, err := s.itemBytes("append", id, true, nil)
	if err != nil {
		return -1, err
	}
	copy(buf, data)
	s.numItems++
	if s.notify != nil {
		s.notify()
	}
	return id, nil
}

// Insert appends then shifts items [pos, numItems-2] up by one slot and
// overwrites pos, per spec.md §4.3.
func (s *sectionDescriptor) Insert(data []byte, pos int) error {
	if pos < 0 || pos > s.numItems {
		return newErr("insert", KindNotAllocated, nil)
	}
	if _, err := s.Append(make([]byte, s.itemSize)); err != nil {
		return err
	}
	for i := s.numItems - 2; i >= pos; i-- {
		src, err := s.itemBytes("insert", i, false, nil)
		if err != nil {
			return err
		}
		tmp := make([]byte, s.itemSize)
		copy(tmp, src)
		dst, err := s.itemBytes("insert", i+1, false, nil)
		if err != nil {
			return err
		}
		copy(dst, tmp)
	}
	dst, err := s.itemBytes("insert", pos, false, nil)
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// AllocateRange reserves count contiguous items within one block,
// skipping to the next block boundary if the current one cannot hold
// them all (spec.md §4.3). Fails if count exceeds items_per_block.
func (s *sectionDescriptor) AllocateRange(count int) (int, error) {
	if count > s.itemsPerBlock {
		return -1, newErr("allocate_range", KindSectionFull, nil)
	}
	if count <= 0 {
		return s.numItems, nil
	}
	curBlock := s.numItems / s.itemsPerBlock
	posInBlock := s.numItems % s.itemsPerBlock
	if posInBlock+count > s.itemsPerBlock {
		s.numItems = (curBlock + 1) * s.itemsPerBlock
		curBlock++
	}
	if s.numItems+count > s.maxItems {
		return -1, newErr("allocate_range", KindSectionFull, nil)
	}
	if err := s.ensureBlock("allocate_range", curBlock, true, nil); err != nil {
		return -1, err
	}
	first := s.numItems
	s.numItems += count
	return first, nil
}
