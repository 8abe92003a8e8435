package gen

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/schema"

	"github.com/brianvoe/gofakeit/v6"
)

// Emitter renders one top-level type plan, with its nested types, as a source artifact.
type Emitter interface {
	// FileName returns the artifact file name for a top-level type.
	FileName(t *TypePlan) string
	// Emit writes the artifact for t, declared in package pkg.
	Emit(w io.Writer, pkg string, t *TypePlan) error
}

// SymbolReporter is implemented by emitters whose artifacts share one namespace,
// such as a Go package. Symbols lists the top-level names emitted for t alone,
// not for its nested plans.
type SymbolReporter interface {
	Symbols(t *TypePlan) []string
}

// SymbolCollisionError reports two objects whose emitted top-level names clash.
type SymbolCollisionError struct {
	Symbol string
	First  string
	Second string
}

func (e *SymbolCollisionError) Error() string {
	return fmt.Sprintf("objects %q and %q both emit %s", e.First, e.Second, e.Symbol)
}

// checkSymbols fails when two plans, anywhere in the set, would emit the same
// top-level name.
func checkSymbols(r SymbolReporter, plans []*TypePlan) error {
	owners := map[string]string{}
	var err error
	for _, tp := range plans {
		tp.Walk(func(t *TypePlan) {
			for _, sym := range r.Symbols(t) {
				if prev, ok := owners[sym]; ok && err == nil {
					err = &SymbolCollisionError{Symbol: sym, First: prev, Second: t.Desc.Name}
				}
				owners[sym] = t.Desc.Name
			}
		})
	}
	return err
}

type Options struct {
	// Package is the package (or namespace) identifier the emitted types are declared in.
	Package string
	// OutDir receives one emitted artifact per top-level descriptor.
	OutDir string
	// SamplesDir receives one sample document per top-level descriptor. Empty
	// skips samples.
	SamplesDir string
	Emitter    Emitter
	// Codec shapes the links in sample documents. Defaults to an offline codec
	// writing bare tokens.
	Codec linkcodec.Codec
	// Indent is the number of spaces per level in sample documents.
	Indent int
	// Faker, when set, fills sample documents with random values instead of placeholders.
	Faker  *gofakeit.Faker
	Logger *slog.Logger
}

// Artifact is one rendered output file.
type Artifact struct {
	Path string
	Data []byte
}

// Render plans set and renders every artifact in memory. Nothing is written;
// any planning, sample or emit failure returns no artifacts.
func Render(set *schema.Set, opts Options) ([]Artifact, error) {
	if opts.Emitter == nil {
		return nil, fmt.Errorf("no emitter configured")
	}
	if opts.Package == "" {
		return nil, fmt.Errorf("no package name configured")
	}
	codec := opts.Codec
	if codec == nil {
		codec = linkcodec.NewOfflineCodec("")
	}

	plans, err := Plan(set)
	if err != nil {
		return nil, err
	}
	if r, ok := opts.Emitter.(SymbolReporter); ok {
		if err := checkSymbols(r, plans); err != nil {
			return nil, err
		}
	}

	var out []Artifact
	for _, tp := range plans {
		var buf bytes.Buffer
		if err := opts.Emitter.Emit(&buf, opts.Package, tp); err != nil {
			return nil, fmt.Errorf("emitting %s: %w", tp.Desc.Name, err)
		}
		out = append(out, Artifact{
			Path: filepath.Join(opts.OutDir, opts.Emitter.FileName(tp)),
			Data: buf.Bytes(),
		})
	}

	if opts.SamplesDir == "" {
		return out, nil
	}
	var samples []Sample
	if opts.Faker != nil {
		samples, err = FakeSamples(set, codec, opts.Faker)
	} else {
		samples, err = Samples(set, codec)
	}
	if err != nil {
		return nil, err
	}
	for _, s := range samples {
		b, err := EncodeSample(s.Document, opts.Indent)
		if err != nil {
			return nil, fmt.Errorf("encoding sample %s: %w", s.Name, err)
		}
		out = append(out, Artifact{
			Path: filepath.Join(opts.SamplesDir, s.Name+".json"),
			Data: b,
		})
	}
	return out, nil
}

// Generate renders every artifact for set and writes them out, creating
// directories as needed.
func Generate(set *schema.Set, opts Options) ([]Artifact, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("system", "gen")
	}

	artifacts, err := Render(set, opts)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(a.Path, a.Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", a.Path, err)
		}
		logger.Info("wrote artifact", "path", a.Path, "bytes", len(a.Data))
	}
	return artifacts, nil
}
