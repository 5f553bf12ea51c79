// Command emdb-tool inspects and exercises Editor Map Database
// containers: create a fresh county container, dump its header/section
// table/dictionary stats, add or look up dictionary strings, and warm a
// county cache from a batch file.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

const toolVersion = "0.1.0"

type rootCmd struct {
	Version versionCmd `command:"version" description:"Show version information"`
	Create  createCmd  `command:"create" description:"Create a new county container"`
	Inspect inspectCmd `command:"inspect" description:"Dump a container's header, sections, and dictionary stats"`
	Dict    dictCmd    `command:"dict" description:"Add or locate a string in a container's string dictionary"`
	Cache   cacheCmd   `command:"cache" description:"Warm a county cache from a batch file"`
}

func main() {
	var root rootCmd
	parser := flags.NewParser(&root, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

type versionCmd struct{}

// Execute prints the tool's version.
func (c *versionCmd) Execute(_ []string) error {
	fmt.Fprintln(os.Stdout, toolVersion)
	return nil
}
