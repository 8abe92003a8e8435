package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hyperpage/pagegen/gen"
	"github.com/hyperpage/pagegen/gen/golang"
	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/schema"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/urfave/cli/v2"
)

var schemaDirFlag = &cli.StringFlag{
	Name:     "schema-dir",
	Usage:    "folder holding one object descriptor JSON file per type",
	Required: true,
	EnvVars:  []string{"PAGEGEN_SCHEMA_DIR"},
}

var aliasFlag = &cli.StringSliceFlag{
	Name:    "alias",
	Usage:   "extra type name alias, as 'short=Full' (repeatable)",
	EnvVars: []string{"PAGEGEN_ALIASES"},
}

var cmdGenerate = &cli.Command{
	Name:  "generate",
	Usage: "emit Go page types and sample documents from a schema folder",
	Flags: []cli.Flag{
		schemaDirFlag,
		aliasFlag,
		&cli.StringFlag{
			Name:     "package",
			Usage:    "Go package name for the emitted files",
			Required: true,
			EnvVars:  []string{"PAGEGEN_PACKAGE"},
		},
		&cli.StringFlag{
			Name:    "out-dir",
			Usage:   "folder receiving the emitted Go files",
			Value:   ".",
			EnvVars: []string{"PAGEGEN_OUT_DIR"},
		},
		&cli.StringFlag{
			Name:    "samples-dir",
			Usage:   "folder receiving sample JSON documents (empty to skip)",
			EnvVars: []string{"PAGEGEN_SAMPLES_DIR"},
		},
		&cli.StringFlag{
			Name:    "object-key",
			Usage:   "embed links in sample documents as objects, with the token under this key",
			EnvVars: []string{"PAGEGEN_OBJECT_KEY"},
		},
		&cli.IntFlag{
			Name:  "indent",
			Usage: "spaces per indentation level in sample documents (0 for compact)",
			Value: 2,
		},
		&cli.Int64Flag{
			Name:  "fake-seed",
			Usage: "fill sample documents with random values from this seed, instead of placeholders (0 for placeholders)",
		},
	},
	Action: runGenerate,
}

func runGenerate(cctx *cli.Context) error {
	logger := configLogger(cctx, os.Stderr)

	set, err := loadSchema(cctx)
	if err != nil {
		return err
	}

	var faker *gofakeit.Faker
	if seed := cctx.Int64("fake-seed"); seed != 0 {
		faker = gofakeit.New(seed)
	}

	artifacts, err := gen.Generate(set, gen.Options{
		Package:    cctx.String("package"),
		OutDir:     cctx.String("out-dir"),
		SamplesDir: cctx.String("samples-dir"),
		Emitter:    golang.NewEmitter(),
		Codec:      linkcodec.NewOfflineCodec(cctx.String("object-key")),
		Indent:     cctx.Int("indent"),
		Faker:      faker,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	logger.Info("generation complete", "artifacts", len(artifacts), "schema", set.String())
	return nil
}

func loadSchema(cctx *cli.Context) (*schema.Set, error) {
	loader := schema.NewLoader()
	for _, a := range cctx.StringSlice("alias") {
		short, full, err := parseAlias(a)
		if err != nil {
			return nil, err
		}
		loader.AddAlias(short, full)
	}
	return loader.LoadDirectory(cctx.String("schema-dir"))
}

func parseAlias(s string) (string, string, error) {
	short, full, ok := strings.Cut(s, "=")
	short = strings.TrimSpace(short)
	full = strings.TrimSpace(full)
	if !ok || short == "" || full == "" {
		return "", "", fmt.Errorf("alias must be formatted as 'short=Full': %q", s)
	}
	return short, full, nil
}
