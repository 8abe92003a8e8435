package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/hyperpage/pagegen/gen"
	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/schema"

	"github.com/urfave/cli/v2"
	"github.com/xlab/treeprint"
)

var cmdLint = &cli.Command{
	Name:  "lint",
	Usage: "load and classify a schema folder, printing one row per field",
	Flags: []cli.Flag{
		schemaDirFlag,
		aliasFlag,
		&cli.BoolFlag{
			Name:  "tree",
			Usage: "print objects as a tree following nesting, instead of a table",
		},
		&cli.BoolFlag{
			Name:  "describe-format",
			Usage: "also print the descriptor format itself, and the link object for --object-key",
		},
		&cli.StringFlag{
			Name:    "object-key",
			Usage:   "link object key to describe with --describe-format",
			EnvVars: []string{"PAGEGEN_OBJECT_KEY"},
		},
		&cli.StringFlag{
			Name:  "format-dir",
			Usage: "with --describe-format, also write the format as a schema folder here",
		},
	},
	Action: runLint,
}

func runLint(cctx *cli.Context) error {
	configLogger(cctx, os.Stderr)
	out := cctx.App.Writer

	set, err := loadSchema(cctx)
	if err != nil {
		return err
	}
	if cctx.Bool("tree") {
		plans, err := gen.Plan(set)
		if err != nil {
			return err
		}
		fmt.Fprint(out, planTree(cctx.String("schema-dir"), plans))
	} else if err := printFieldTable(out, set); err != nil {
		return err
	}

	if !cctx.Bool("describe-format") {
		return nil
	}
	descs := schema.DescriptorOfDescriptor()
	if link := linkcodec.LinkDescriptor(cctx.String("object-key")); link != nil {
		descs = append(descs, *link)
	}
	format, err := schema.NewSet(descs)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := printFieldTable(out, format); err != nil {
		return err
	}
	if dir := cctx.String("format-dir"); dir != "" {
		return writeDescriptors(dir, format)
	}
	return nil
}

// writeDescriptors saves every descriptor of set as its own file in dir.
func writeDescriptors(dir string, set *schema.Set) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, d := range set.Descriptors() {
		b, err := schema.EncodeDescriptor(d)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, gen.FileName(d.Name)+".json"), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// printFieldTable plans set and writes its fields as aligned columns.
func printFieldTable(w io.Writer, set *schema.Set) error {
	plans, err := gen.Plan(set)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT\tCATEGORY\tKEY\tTYPE\tKIND\tSTRATEGY")
	for _, tp := range plans {
		tp.Walk(func(t *gen.TypePlan) {
			category := t.Desc.Category
			if category == "" {
				category = "-"
			}
			if len(t.Fields) == 0 {
				fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\n", t.Desc.Name, category)
			}
			for _, fp := range t.Fields {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.Desc.Name, category, fp.Field.Key, fieldType(fp), fp.Kind, fp.Strategy)
			}
		})
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d objects, %d pages (%s)\n", len(set.Descriptors()), len(set.Pages()), strings.Join(categories(set), ", "))
	return nil
}

// fieldType is the canonical type name of a field, with a "[]" prefix on arrays.
func fieldType(fp *gen.FieldPlan) string {
	typ := fp.Field.TypeName
	if fp.Kind == schema.KindPrimitive {
		typ = string(fp.Primitive)
	}
	if fp.Field.IsArray {
		typ = "[]" + typ
	}
	return typ
}

func categories(set *schema.Set) []string {
	var out []string
	for _, d := range set.Pages() {
		out = append(out, d.Category)
	}
	return out
}

// planTree renders plans as an indented tree: one branch per object, one leaf per field.
func planTree(root string, plans []*gen.TypePlan) string {
	tree := treeprint.NewWithRoot(root)
	for _, tp := range plans {
		addPlan(tree, tp)
	}
	return tree.String()
}

func addPlan(tree treeprint.Tree, tp *gen.TypePlan) {
	label := tp.Desc.Name
	if tp.IsPage() {
		label += " (" + tp.Desc.Category + ")"
	}
	branch := tree.AddBranch(label)
	for _, fp := range tp.Fields {
		branch.AddMetaNode(fp.Strategy.String(), fp.Field.Key+": "+fieldType(fp))
	}
	for _, n := range tp.Nested {
		addPlan(branch, n)
	}
}
