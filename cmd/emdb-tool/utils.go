package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/invopop/yaml"

	"github.com/woozymasta/roadmap-emdb/internal/emdb"
)

// parseEdges parses "west,south,east,north" micro-degree bounds, the
// same flat-CSV style the teacher's CLI uses for simple scalar tuples.
func parseEdges(s string) (emdb.Area, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return emdb.Area{}, fmt.Errorf("edges must be west,south,east,north, got %q", s)
	}
	vals := make([]int32, 4)
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return emdb.Area{}, fmt.Errorf("edges: %w", err)
		}
		vals[i] = int32(n)
	}
	return emdb.Area{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}, nil
}

// encodeAny renders v as YAML or JSON, matching
// cmd/tv4p-road-tool/utils.go's encodeConfig.
func encodeAny(v any, format string) ([]byte, error) {
	switch format {
	case "yaml", "":
		return yaml.Marshal(v)
	case "json":
		return json.MarshalIndent(v, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// countyBatch is the YAML shape read by `cache`: one entry per
// county to pre-activate, with enough of the container header to create
// it from scratch if it doesn't exist yet.
type countyBatch struct {
	MapDate   string        `json:"map_date" yaml:"map_date"`
	Counties  []countyEntry `json:"counties" yaml:"counties"`
	CacheSize int           `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
}

type countyEntry struct {
	Fips         int32  `json:"fips" yaml:"fips"`
	Edges        string `json:"edges" yaml:"edges"`
	NumBaseLines int32  `json:"base_lines,omitempty" yaml:"base_lines,omitempty"`
}

// unmarshalBatch parses a countyBatch from YAML, matching the teacher's
// readConfig.
func unmarshalBatch(raw []byte, batch *countyBatch) error {
	return yaml.Unmarshal(raw, batch)
}
