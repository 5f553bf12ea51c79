package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/woozymasta/roadmap-emdb/internal/emdb"
)

type cacheCmd struct {
	Args struct {
		CountyFile string `positional-arg-name:"COUNTYFILE" required:"true" description:"YAML batch file listing counties to warm"`
	} `positional-args:"true"`

	Dir  string `long:"dir" default:"." description:"Directory containing (or to create) county container files"`
	Size int    `long:"size" default:"0" description:"County cache capacity (0 uses the batch file's cache_size, or the default of 10)"`
}

// Execute reads a YAML batch of counties and pre-activates each through
// a CountyCache of the requested size, noting each county's first
// activation that found the cache full and so forced an LRU eviction —
// a quick way to see whether a cache size is big enough for a given
// access pattern without wiring up a full EditorDB. Later activations of
// a county already seen in the batch are never noted, even when they
// reopen an evicted county and force another eviction.
func (c *cacheCmd) Execute(_ []string) error {
	raw, err := os.ReadFile(c.Args.CountyFile)
	if err != nil {
		return err
	}
	var batch countyBatch
	if err := unmarshalBatch(raw, &batch); err != nil {
		return err
	}

	size := c.Size
	if size <= 0 {
		size = batch.CacheSize
	}

	edgesByFips := make(map[int32]emdb.Area, len(batch.Counties))
	numBaseLinesByFips := make(map[int32]int32, len(batch.Counties))
	for _, entry := range batch.Counties {
		edges, err := parseEdges(entry.Edges)
		if err != nil {
			return fmt.Errorf("county %d: %w", entry.Fips, err)
		}
		edgesByFips[entry.Fips] = edges
		numBaseLinesByFips[entry.Fips] = entry.NumBaseLines
	}

	open := func(fips int32) (*emdb.Container, error) {
		edges, ok := edgesByFips[fips]
		if !ok {
			return nil, fmt.Errorf("fips %d not present in %s", fips, c.Args.CountyFile)
		}
		path := filepath.Join(c.Dir, fmt.Sprintf("edt%05d.rdm", fips))
		cont, err := emdb.OpenContainer(path, batch.MapDate)
		if err == nil {
			return cont, nil
		}
		if emdb.KindNotFound.Is(err) {
			return emdb.CreateContainer(path, fips, edges, batch.MapDate, numBaseLinesByFips[fips])
		}
		return nil, err
	}

	cache := emdb.NewCountyCache(size, open)
	defer cache.Close()

	effectiveSize := size
	if effectiveSize <= 0 {
		effectiveSize = 10
	}
	seen := make(map[int32]bool, len(batch.Counties))
	for _, entry := range batch.Counties {
		before := cache.Len()
		if _, err := cache.Get(entry.Fips); err != nil {
			return fmt.Errorf("fips %d: %w", entry.Fips, err)
		}
		note := ""
		if !seen[entry.Fips] && before >= effectiveSize {
			note = " (forced an lru eviction)"
		}
		seen[entry.Fips] = true
		fmt.Fprintf(os.Stdout, "activated fips=%05d cache_len=%d%s\n", entry.Fips, cache.Len(), note)
	}

	return nil
}
