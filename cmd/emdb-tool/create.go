package main

import (
	"fmt"
	"os"

	"github.com/woozymasta/roadmap-emdb/internal/emdb"
)

type createCmd struct {
	Args struct {
		Path string `positional-arg-name:"PATH" required:"true" description:"Container file to create"`
	} `positional-args:"true"`

	Fips         int32  `long:"fips" required:"true" description:"County FIPS code"`
	Edges        string `long:"edges" required:"true" description:"Bounding box west,south,east,north (micro-degrees)"`
	MapDate      string `long:"map-date" required:"true" description:"Base-map date this edit layer is cut against"`
	NumBaseLines int32  `long:"base-lines" default:"1" description:"Base map's total line count, sizes the override index"`
}

// Execute creates a new, empty county container at PATH.
func (c *createCmd) Execute(_ []string) error {
	edges, err := parseEdges(c.Edges)
	if err != nil {
		return err
	}

	cont, err := emdb.CreateContainer(c.Args.Path, c.Fips, edges, c.MapDate, c.NumBaseLines)
	if err != nil {
		return err
	}
	defer cont.Close()

	fmt.Fprintf(os.Stdout, "created %s: fips=%d blocks=%d block_size=%d\n",
		c.Args.Path, c.Fips, cont.Header().NumTotalBlocks, cont.Header().BlockSize)
	return nil
}
