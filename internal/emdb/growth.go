package emdb

// Grow extends the container by additionalBlocks (or INITIAL_BLOCKS if
// <= 0), per spec.md §4.9/§4.7 step 3. The on-disk file is truncated to
// its new, larger size first; only once that succeeds is the in-memory
// header updated and the mapping rebuilt — spec.md §9's redesign flag
// against mutating header state before a resize is known to have landed
// on disk.
func (c *Container) Grow(additionalBlocks int) error {
	if additionalBlocks <= 0 {
		additionalBlocks = defaultInitialBlocks
	}
	oldTotalBlocks := int(c.header.NumTotalBlocks)
	newTotalBlocks := oldTotalBlocks + additionalBlocks
	newFileSize := c.blocksOff + newTotalBlocks*c.pool.blockSize

	if err := c.Sync(); err != nil {
		return err
	}
	if err := munmapFile(c.data); err != nil {
		return err
	}

	if err := c.file.Truncate(int64(newFileSize)); err != nil {
		c.remapAtOrPanic(c.blocksOff + oldTotalBlocks*c.pool.blockSize)
		return newErr("grow", KindIoError, err)
	}

	data, err := mmapFile(c.file, newFileSize)
	if err != nil {
		return newErr("grow", KindIoError, err)
	}

	c.data = data
	c.header.NumTotalBlocks = uint32(newTotalBlocks)
	c.header.FileSize = uint32(newFileSize)
	c.rewire()
	return c.Sync()
}

// Compact truncates the container down to only its used blocks,
// reclaiming unused tail space (spec.md §4.9, the only other resize
// operation besides Grow). It follows the same truncate-then-update
// order: a failed truncate leaves the container exactly as it was.
func (c *Container) Compact() error {
	used := int(c.header.NumUsedBlocks)
	total := int(c.header.NumTotalBlocks)
	if used >= total {
		return nil
	}
	newFileSize := c.blocksOff + used*c.pool.blockSize

	if err := c.Sync(); err != nil {
		return err
	}
	if err := munmapFile(c.data); err != nil {
		return err
	}

	if err := c.file.Truncate(int64(newFileSize)); err != nil {
		c.remapAtOrPanic(c.blocksOff + total*c.pool.blockSize)
		return newErr("compact", KindIoError, err)
	}

	data, err := mmapFile(c.file, newFileSize)
	if err != nil {
		return newErr("compact", KindIoError, err)
	}

	c.data = data
	c.header.NumTotalBlocks = uint32(used)
	c.header.FileSize = uint32(newFileSize)
	c.rewire()
	return c.Sync()
}

// remapAtOrPanic restores the mapping at the given (pre-resize) size
// after a failed truncate, so the container is still usable for the
// caller to retry or close cleanly. A failure here means the file
// handle itself is no longer usable, which is unrecoverable.
func (c *Container) remapAtOrPanic(size int) {
	data, err := mmapFile(c.file, size)
	if err != nil {
		corruptf("grow", "failed to remap after a failed truncate: %v", err)
	}
	c.data = data
	c.rewire()
}
