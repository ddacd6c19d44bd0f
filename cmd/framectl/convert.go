package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/eak1mov/go-libframes/config"
	"github.com/eak1mov/go-libframes/index"
	"github.com/eak1mov/go-libframes/sqlindex"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type convertIndexCmd struct {
	inputFormat  string
	inputPath    string
	outputFormat string
	outputPath   string
}

func (c *convertIndexCmd) Name() string     { return "convert_index" }
func (c *convertIndexCmd) Synopsis() string { return "convert the instance index between backends" }
func (c *convertIndexCmd) Usage() string {
	return "framectl convert_index -i <path> -o <path> [-if <format> | -of <format>]\n"
}
func (c *convertIndexCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input path")
	f.StringVar(&c.inputFormat, "if", "", "Input format (json, sqlite)")
	f.StringVar(&c.outputPath, "o", "", "Output path")
	f.StringVar(&c.outputFormat, "of", "", "Output format (json, sqlite)")
}

func deduceFormat(format, filePath string) string {
	if format == "" && (strings.HasSuffix(filePath, ".sqlite") || strings.HasSuffix(filePath, ".db")) {
		return config.BackendSQLite
	}
	if format == "" {
		return config.BackendJSON
	}
	return format
}

func openStore(format, filePath string) (index.Store, error) {
	switch format {
	case config.BackendSQLite:
		return sqlindex.Open(filePath, sqlindex.WithLogger(logger()))
	case config.BackendJSON:
		return index.NewFileStore(filePath), nil
	}
	return nil, fmt.Errorf("invalid index format: %q", format)
}

func (c *convertIndexCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	reader, err := openStore(deduceFormat(c.inputFormat, c.inputPath), c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	writer, err := openStore(deduceFormat(c.outputFormat, c.outputPath), c.outputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if closer, ok := writer.(io.Closer); ok {
		defer closer.Close()
	}

	src, err := reader.Load()
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	dst := index.New()
	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	for _, assetID := range src.Assets() {
		for _, rec := range src.Items[assetID] {
			dst.Items[assetID] = append(dst.Items[assetID], rec)
			bar.Add(1)
		}
	}
	bar.Finish()
	fmt.Println()

	if err := writer.Save(dst); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
