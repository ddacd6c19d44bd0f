package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eak1mov/go-libframes/definitions"
	"github.com/eak1mov/go-libframes/frame"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type stateAddCmd struct {
	imagePath string
	size      sizeFlag
	name      string
}

func (c *stateAddCmd) Name() string     { return "state_add" }
func (c *stateAddCmd) Synopsis() string { return "add an image state to a size class" }
func (c *stateAddCmd) Usage() string {
	return "framectl state_add -i <image> -size <WxH> [-name <name>]\n"
}
func (c *stateAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.imagePath, "i", "", "Input image path")
	f.Var(&c.size, "size", "Size class, e.g. 2x1")
	f.StringVar(&c.name, "name", "", "State name (random if empty)")
}

func (c *stateAddCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if !c.size.size.Valid() {
		log.Println("-size is required")
		return subcommands.ExitUsageError
	}
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

	key, err := s.AddState(actor, data, c.size.size, c.name)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	fmt.Println(key)
	return subcommands.ExitSuccess
}

type stateRmCmd struct {
	size sizeFlag
	key  string
}

func (c *stateRmCmd) Name() string     { return "state_rm" }
func (c *stateRmCmd) Synopsis() string { return "remove a state and its texture" }
func (c *stateRmCmd) Usage() string {
	return "framectl state_rm -size <WxH> -key <key>\n"
}
func (c *stateRmCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.size, "size", "Size class, e.g. 2x1")
	f.StringVar(&c.key, "key", "", "State key")
}

func (c *stateRmCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if !c.size.size.Valid() || c.key == "" {
		log.Println("-size and -key are required")
		return subcommands.ExitUsageError
	}

	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	removed, err := s.RemoveState(actor, c.size.size, c.key)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if !removed {
		log.Printf("no state %q in %s", c.key, c.size.size)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type statesCmd struct {
	size sizeFlag
}

func (c *statesCmd) Name() string     { return "states" }
func (c *statesCmd) Synopsis() string { return "list the states of one or all default size classes" }
func (c *statesCmd) Usage() string {
	return "framectl states [-size <WxH>]\n"
}
func (c *statesCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.size, "size", "Size class, e.g. 2x1")
}

func (c *statesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	sizes := definitions.DefaultSizeClasses
	if c.size.size.Valid() {
		sizes = []frame.SizeClass{c.size.size}
	}
	for _, size := range sizes {
		keys, err := s.Definitions().States(size)
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		for _, key := range keys {
			fmt.Printf("%s\t%s\n", size, key)
		}
	}
	return subcommands.ExitSuccess
}

type seedCmd struct{}

func (c *seedCmd) Name() string     { return "seed" }
func (c *seedCmd) Synopsis() string { return "create missing definition documents from templates" }
func (c *seedCmd) Usage() string {
	return "framectl seed\n"
}
func (c *seedCmd) SetFlags(f *flag.FlagSet) {}

func (c *seedCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	s, err := openService()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	bar := progressbar.NewOptions(len(definitions.DefaultSizeClasses), progressbar.OptionShowCount())
	for _, size := range definitions.DefaultSizeClasses {
		err = s.Definitions().Seed(size)
		bar.Add(1)
		if err != nil {
			break
		}
	}
	bar.Finish()
	fmt.Println()

	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
