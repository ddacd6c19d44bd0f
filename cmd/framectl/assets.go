package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eak1mov/go-libframes/raster"
	"github.com/eak1mov/go-libframes/service"
	"github.com/google/subcommands"
)

type createCmd struct {
	imagePath string
	name      string
	url       string
	blocksX   int
	alignment alignmentFlag
	at        coordsFlag
}

func (c *createCmd) Name() string     { return "create" }
func (c *createCmd) Synopsis() string { return "generate an asset from an image, optionally placing it" }
func (c *createCmd) Usage() string {
	return "framectl create -i <image> [-name <name> -blocks <n> -align <alignment> -at <x,y,z> -url <url>]\n"
}
func (c *createCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.imagePath, "i", "", "Input image path")
	f.StringVar(&c.name, "name", "", "Display name (random if empty)")
	f.StringVar(&c.url, "url", "", "Source URL recorded in the metadata")
	f.IntVar(&c.blocksX, "blocks", 1, "Width in blocks")
	f.Var(&c.alignment, "align", "Alignment (bottom_left, top_center, ...)")
	f.Var(&c.at, "at", "Place the asset at x,y,z")
}

func (c *createCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	data, err := os.ReadFile(c.imagePath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	if !c.at.set {
		img, err := raster.Decode(data)
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		asset, err := s.Generator().CreateAsset(img, c.name, c.blocksX, c.alignment.alignment)
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s\t%s\n", asset.ID, asset.SizeClass)
		return subcommands.ExitSuccess
	}

	asset, _, err := s.Upload(ctx, actor, service.UploadRequest{
		Image:     data,
		Name:      c.name,
		URL:       c.url,
		BlocksX:   c.blocksX,
		Alignment: c.alignment.alignment,
		At:        c.at.coords,
	})
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s\t%s\t%s\n", asset.ID, asset.SizeClass, c.at.coords)
	return subcommands.ExitSuccess
}

type listCmd struct {
	instances bool
}

func (c *listCmd) Name() string     { return "list" }
func (c *listCmd) Synopsis() string { return "list asset metadata files or placements" }
func (c *listCmd) Usage() string {
	return "framectl list [-instances]\n"
}
func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.instances, "instances", false, "List placements instead of assets")
}

func (c *listCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	if c.instances {
		instances, err := s.Registry().Instances()
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		for _, inst := range instances {
			fmt.Printf("%s\t%s\t%d\n", inst.Coords, inst.AssetID, inst.BlocksX)
		}
		return subcommands.ExitSuccess
	}

	infos, err := s.Registry().Assets()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	for _, info := range infos {
		if info.Err != nil {
			fmt.Printf("%s\t(broken: %v)\n", info.AssetID, info.Err)
			continue
		}
		fmt.Printf("%s\t%q\t%d frames\t%s\n", info.AssetID, info.Metadata.Name, len(info.Metadata.Frames), info.Metadata.URL)
	}
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	assetID string
}

func (c *deleteCmd) Name() string     { return "delete" }
func (c *deleteCmd) Synopsis() string { return "delete an asset's placements and metadata" }
func (c *deleteCmd) Usage() string {
	return "framectl delete -asset <id>\n"
}
func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assetID, "asset", "", "Asset id")
}

func (c *deleteCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	if err := s.DeleteAsset(actor, c.assetID); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
