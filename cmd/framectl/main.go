package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&createCmd{}, "assets")
	subcommands.Register(&listCmd{}, "assets")
	subcommands.Register(&deleteCmd{}, "assets")
	subcommands.Register(&placeCmd{}, "placements")
	subcommands.Register(&unplaceCmd{}, "placements")
	subcommands.Register(&whoisCmd{}, "placements")
	subcommands.Register(&reconcileCmd{}, "placements")
	subcommands.Register(&stateAddCmd{}, "states")
	subcommands.Register(&stateRmCmd{}, "states")
	subcommands.Register(&statesCmd{}, "states")
	subcommands.Register(&seedCmd{}, "states")
	subcommands.Register(&convertIndexCmd{}, "index")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
