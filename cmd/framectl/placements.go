package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/eak1mov/go-libframes/registry"
	"github.com/google/subcommands"
)

type placeCmd struct {
	assetID   string
	name      string
	url       string
	blocksX   int
	alignment alignmentFlag
	at        coordsFlag
}

func (c *placeCmd) Name() string     { return "place" }
func (c *placeCmd) Synopsis() string { return "place an existing asset, replacing the current occupant" }
func (c *placeCmd) Usage() string {
	return "framectl place -asset <id> -at <x,y,z> [-blocks <n> -align <alignment> -name <name> -url <url>]\n"
}
func (c *placeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assetID, "asset", "", "Asset id")
	f.StringVar(&c.name, "name", "", "Display name recorded in the metadata")
	f.StringVar(&c.url, "url", "", "Source URL recorded in the metadata")
	f.IntVar(&c.blocksX, "blocks", 1, "Width in blocks")
	f.Var(&c.alignment, "align", "Alignment recorded in the metadata")
	f.Var(&c.at, "at", "Coordinates x,y,z")
}

func (c *placeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.assetID == "" || !c.at.set {
		log.Println("-asset and -at are required")
		return subcommands.ExitUsageError
	}

	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	err = s.Registry().WriteMetadata(registry.Placement{
		AssetID:   c.assetID,
		Name:      c.name,
		URL:       c.url,
		At:        c.at.coords,
		BlocksX:   c.blocksX,
		Alignment: c.alignment.alignment,
	})
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type unplaceCmd struct {
	at coordsFlag
}

func (c *unplaceCmd) Name() string     { return "unplace" }
func (c *unplaceCmd) Synopsis() string { return "remove whatever is placed at coordinates" }
func (c *unplaceCmd) Usage() string {
	return "framectl unplace -at <x,y,z>\n"
}
func (c *unplaceCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.at, "at", "Coordinates x,y,z")
}

func (c *unplaceCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if !c.at.set {
		log.Println("-at is required")
		return subcommands.ExitUsageError
	}

	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	removed, err := s.Unplace(actor, c.at.coords)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if !removed {
		log.Printf("nothing placed at %s", c.at.coords)
	}
	return subcommands.ExitSuccess
}

type whoisCmd struct {
	at coordsFlag
}

func (c *whoisCmd) Name() string     { return "whois" }
func (c *whoisCmd) Synopsis() string { return "print the asset placed at coordinates" }
func (c *whoisCmd) Usage() string {
	return "framectl whois -at <x,y,z>\n"
}
func (c *whoisCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.at, "at", "Coordinates x,y,z")
}

func (c *whoisCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	assetID, inst, ok, err := s.Registry().InstanceAt(c.at.coords)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if !ok {
		log.Printf("nothing placed at %s", c.at.coords)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s\t%s\t%d\t%s\n", assetID, inst.MetaFile, inst.Blocks.X, inst.CreatedAt)
	return subcommands.ExitSuccess
}

type reconcileCmd struct{}

func (c *reconcileCmd) Name() string     { return "reconcile" }
func (c *reconcileCmd) Synopsis() string { return "rebuild metadata frames from the index" }
func (c *reconcileCmd) Usage() string {
	return "framectl reconcile\n"
}
func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {}

func (c *reconcileCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	rewritten, err := s.Registry().Reconcile()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d metadata files rewritten\n", rewritten)
	return subcommands.ExitSuccess
}
