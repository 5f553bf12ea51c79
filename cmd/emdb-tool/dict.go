package main

import (
	"fmt"
	"os"

	"github.com/woozymasta/roadmap-emdb/internal/emdb"
)

type dictCmd struct {
	Args struct {
		Volume string `positional-arg-name:"VOLUME" choice:"streets" choice:"cities" choice:"types" choice:"zips" choice:"t2s" choice:"notes" required:"true" description:"Dictionary volume"`
		Action string `positional-arg-name:"ACTION" choice:"add" choice:"locate" required:"true" description:"Operation to perform"`
		Value  string `positional-arg-name:"STRING" required:"true" description:"String to add or locate"`
		Path   string `positional-arg-name:"PATH" required:"true" description:"Container file"`
	} `positional-args:"true"`
}

// Execute adds or looks up a string in one of a container's six string
// dictionary volumes.
func (c *dictCmd) Execute(_ []string) error {
	cont, err := emdb.OpenContainer(c.Args.Path, "")
	if err != nil {
		return err
	}
	defer cont.Close()

	volume := emdb.DictVolumeName(c.Args.Volume)

	switch c.Args.Action {
	case "add":
		id, err := cont.Dict.Add(volume, c.Args.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d\n", id)
		return nil
	case "locate":
		id, found, err := cont.Dict.Find(volume, c.Args.Value)
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintln(os.Stdout, -1)
			return nil
		}
		fmt.Fprintf(os.Stdout, "%d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown action: %s", c.Args.Action)
	}
}
