// Package golang renders type plans as Go source, using the pagecache, pageutil
// and linkcodec runtime packages.
package golang

import (
	"fmt"
	"io"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/hyperpage/pagegen/gen"
	"github.com/hyperpage/pagegen/schema"
)

const (
	linkcodecPkg = "github.com/hyperpage/pagegen/linkcodec"
	pagecachePkg = "github.com/hyperpage/pagegen/pagecache"
	pageutilPkg  = "github.com/hyperpage/pagegen/pageutil"
	schemaPkg    = "github.com/hyperpage/pagegen/schema"
)

const DefaultHeader = "Code generated by pagegen. DO NOT EDIT."

type Emitter struct {
	// Header is rendered as the file header comment.
	Header string
}

var (
	_ gen.Emitter        = (*Emitter)(nil)
	_ gen.SymbolReporter = (*Emitter)(nil)
)

func NewEmitter() *Emitter {
	return &Emitter{Header: DefaultHeader}
}

func (e *Emitter) FileName(t *gen.TypePlan) string {
	return gen.FileName(t.GoName) + ".go"
}

// top-level names declared for a type
func categoryConst(t string) string  { return t + "Category" }
func newFunc(t string) string        { return "New" + t }
func decodeFunc(t string) string     { return "Decode" + t }
func decodeListFunc(t string) string { return "Decode" + t + "List" }
func registerFunc(t string) string   { return "Register" + t }
func descriptorFunc(t string) string { return t + "Descriptor" }

// Symbols lists the package-level identifiers genType declares for t.
func (e *Emitter) Symbols(t *gen.TypePlan) []string {
	name := t.GoName
	out := []string{name, newFunc(name), decodeFunc(name), descriptorFunc(name)}
	if t.IsPage() {
		return append(out, categoryConst(name), registerFunc(name))
	}
	return append(out, decodeListFunc(name))
}

func (e *Emitter) Emit(w io.Writer, pkg string, t *gen.TypePlan) error {
	return e.File(pkg, t).Render(w)
}

// File builds the jennifer file for a top-level type and everything nested in it.
func (e *Emitter) File(pkg string, t *gen.TypePlan) *jen.File {
	f := jen.NewFile(pkg)
	if e.Header != "" {
		f.HeaderComment(e.Header)
	}
	f.ImportName(linkcodecPkg, "linkcodec")
	f.ImportName(pagecachePkg, "pagecache")
	f.ImportName(pageutilPkg, "pageutil")
	f.ImportName(schemaPkg, "schema")
	t.Walk(func(tp *gen.TypePlan) {
		genType(f, tp)
	})
	return f
}

func docType() *jen.Statement {
	return jen.Map(jen.String()).Id("any")
}

func cacheParam() *jen.Statement {
	return jen.Id("cache").Op("*").Qual(pagecachePkg, "Cache")
}

func codecParam() *jen.Statement {
	return jen.Id("codec").Qual(linkcodecPkg, "Codec")
}

func receiver(t *gen.TypePlan) *jen.Statement {
	return jen.Id("t").Op("*").Id(t.GoName)
}

func errorf(key string) *jen.Statement {
	return jen.Qual("fmt", "Errorf").Call(jen.Lit(strings.ReplaceAll(key, "%", "%%")+": %w"), jen.Err())
}

func primitiveType(p schema.Primitive) *jen.Statement {
	switch p {
	case schema.Boolean:
		return jen.Bool()
	case schema.Integer:
		return jen.Int64()
	case schema.Float:
		return jen.Float32()
	case schema.Double:
		return jen.Float64()
	default:
		return jen.String()
	}
}

func primitiveLoader(p schema.Primitive, array bool) string {
	var name string
	switch p {
	case schema.Boolean:
		name = "Bool"
	case schema.Integer:
		name = "Int"
	case schema.Float:
		name = "Float"
	case schema.Double:
		name = "Double"
	default:
		name = "String"
	}
	if array {
		return "Load" + name + "Array"
	}
	return "Get" + name
}

// goType is the in-memory Go type of a field.
func goType(fp *gen.FieldPlan) *jen.Statement {
	switch fp.Strategy {
	case gen.RawValue:
		return primitiveType(fp.Primitive)
	case gen.RawArray:
		return jen.Index().Add(primitiveType(fp.Primitive))
	case gen.NestedDocument:
		return jen.Op("*").Id(fp.TargetGoName())
	case gen.NestedDocumentArray:
		return jen.Index().Op("*").Id(fp.TargetGoName())
	case gen.LinkEncoding:
		return jen.Int64()
	case gen.LinkEncodingArray:
		return jen.Index().Int64()
	}
	panic(fmt.Sprintf("unhandled strategy %s for %s", fp.Strategy, fp.Field.Key))
}

func genType(f *jen.File, t *gen.TypePlan) {
	name := t.GoName

	if t.IsPage() {
		f.Commentf("%s is the category %s pages are linked and cached under.", categoryConst(name), name)
		f.Const().Id(categoryConst(name)).Op("=").Lit(t.Desc.Category)
	}

	if t.Desc.Documentation != "" {
		f.Comment(t.Desc.Documentation)
	}
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		if t.IsPage() {
			g.Qual(pagecachePkg, "Base")
		}
		for _, fp := range t.Fields {
			if fp.Field.Documentation != "" {
				g.Comment(fp.Field.Documentation)
			}
			g.Id(fp.GoName).Add(goType(fp))
		}
	})

	if t.IsPage() {
		f.Var().Id("_").Qual(pagecachePkg, "Loadable").Op("=").Parens(jen.Op("*").Id(name)).Call(jen.Nil())
	} else {
		f.Var().Defs(
			jen.Id("_").Qual(pagecachePkg, "Serializable").Op("=").Parens(jen.Op("*").Id(name)).Call(jen.Nil()),
			jen.Id("_").Qual(pagecachePkg, "SelfDescribing").Op("=").Parens(jen.Op("*").Id(name)).Call(jen.Nil()),
		)
	}

	genConstructor(f, t)
	genDecode(f, t)
	if t.IsPage() {
		genRegister(f, t)
		f.Func().Params(receiver(t)).Id("Category").Params().String().Block(
			jen.Return(jen.Id(categoryConst(name))),
		)
	}
	genDescriptor(f, t)
	genPopulate(f, t)
	genResolvers(f, t)
	genMarshal(f, t)
}

// paramDoc is one line of a constructor's parameter list.
func paramDoc(f *jen.File, param, doc string) {
	f.Commentf("//   - %s: %s", param, doc)
}

func fieldParamDocs(f *jen.File, t *gen.TypePlan) {
	for _, fp := range t.Fields {
		doc := strings.Join(strings.Fields(fp.Field.Documentation), " ")
		if doc == "" {
			doc = fmt.Sprintf("the %q value.", fp.Field.Key)
		}
		paramDoc(f, fp.ParamName, doc)
	}
}

func genConstructor(f *jen.File, t *gen.TypePlan) {
	name := t.GoName
	f.Commentf("%s builds a %s from its field values.", newFunc(name), name)
	if t.IsPage() || len(t.Fields) > 0 {
		f.Comment("//")
	}
	if t.IsPage() {
		paramDoc(f, "cache", "registers the page before its fields are assigned.")
		paramDoc(f, "base", "the page name and id.")
		fieldParamDocs(f, t)
		f.Func().Id(newFunc(name)).ParamsFunc(func(g *jen.Group) {
			g.Add(cacheParam())
			g.Id("base").Qual(pagecachePkg, "Base")
			for _, fp := range t.Fields {
				g.Id(fp.ParamName).Add(goType(fp))
			}
		}).Op("*").Id(name).BlockFunc(func(g *jen.Group) {
			g.Id("t").Op(":=").Op("&").Id(name).Values(jen.Dict{
				jen.Id("Base"): jen.Id("base"),
			})
			g.Id("cache").Dot("Adopt").Call(jen.Id("t"))
			for _, fp := range t.Fields {
				g.Id("t").Dot(fp.GoName).Op("=").Id(fp.ParamName)
			}
			g.Return(jen.Id("t"))
		})
		return
	}

	fieldParamDocs(f, t)
	f.Func().Id(newFunc(name)).ParamsFunc(func(g *jen.Group) {
		for _, fp := range t.Fields {
			g.Id(fp.ParamName).Add(goType(fp))
		}
	}).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.DictFunc(func(d jen.Dict) {
			for _, fp := range t.Fields {
				d[jen.Id(fp.GoName)] = jen.Id(fp.ParamName)
			}
		}))),
	)
}

func genDecode(f *jen.File, t *gen.TypePlan) {
	name := t.GoName
	if t.IsPage() {
		f.Commentf("%s loads a %s page from its document,", decodeFunc(name), name)
		f.Comment("registering it in cache first.")
		f.Func().Id(decodeFunc(name)).Params(
			cacheParam(),
			jen.Id("doc").Add(docType()),
			codecParam(),
		).Params(jen.Op("*").Id(name), jen.Error()).Block(
			jen.Id("t").Op(":=").New(jen.Id(name)),
			jen.If(
				jen.Err().Op(":=").Qual(pagecachePkg, "Construct").Call(jen.Id("cache"), jen.Id("t"), jen.Id("doc"), jen.Id("codec")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
			jen.Return(jen.Id("t"), jen.Nil()),
		)
		return
	}

	f.Func().Id(decodeFunc(name)).Params(
		jen.Id("doc").Add(docType()),
		codecParam(),
	).Params(jen.Op("*").Id(name), jen.Error()).Block(
		jen.Id("t").Op(":=").New(jen.Id(name)),
		jen.If(
			jen.Err().Op(":=").Id("t").Dot("PopulateDocument").Call(jen.Id("doc"), jen.Id("codec")),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id("t"), jen.Nil()),
	)

	f.Commentf("%s decodes an array of %s documents.", decodeListFunc(name), name)
	f.Func().Id(decodeListFunc(name)).Params(
		jen.Id("docs").Index().Id("any"),
		codecParam(),
	).Params(jen.Index().Op("*").Id(name), jen.Error()).Block(
		jen.Return(jen.Qual(pageutilPkg, "DecodeList").Call(jen.Id("docs"), jen.Id("codec"), jen.Id(decodeFunc(name)))),
	)
}

func genRegister(f *jen.File, t *gen.TypePlan) {
	name := t.GoName
	f.Commentf("%s lets cache load %s pages on a miss.", registerFunc(name), name)
	f.Func().Id(registerFunc(name)).Params(cacheParam()).Block(
		jen.Id("cache").Dot("Register").Call(
			jen.Id(categoryConst(name)),
			jen.Func().Params().Qual(pagecachePkg, "Loadable").Block(
				jen.Return(jen.New(jen.Id(name))),
			),
		),
	)
}

func genDescriptor(f *jen.File, t *gen.TypePlan) {
	name := t.GoName
	d := t.Desc
	f.Func().Id(descriptorFunc(name)).Params().Op("*").Qual(schemaPkg, "ObjectDescriptor").Block(
		jen.Return(jen.Op("&").Qual(schemaPkg, "ObjectDescriptor").Values(jen.DictFunc(func(dict jen.Dict) {
			dict[jen.Id("Name")] = jen.Lit(d.Name)
			if d.Documentation != "" {
				dict[jen.Id("Documentation")] = jen.Lit(d.Documentation)
			}
			if d.Category != "" {
				dict[jen.Id("Category")] = jen.Lit(d.Category)
			}
			if d.EnclosingName != "" {
				dict[jen.Id("EnclosingName")] = jen.Lit(d.EnclosingName)
			}
			if len(d.Fields) > 0 {
				dict[jen.Id("Fields")] = jen.Index().Qual(schemaPkg, "FieldDescriptor").ValuesFunc(func(g *jen.Group) {
					for _, fd := range d.Fields {
						g.Values(jen.DictFunc(func(fdict jen.Dict) {
							fdict[jen.Id("Key")] = jen.Lit(fd.Key)
							fdict[jen.Id("TypeName")] = jen.Lit(fd.TypeName)
							if fd.IsArray {
								fdict[jen.Id("IsArray")] = jen.True()
							}
							if fd.Documentation != "" {
								fdict[jen.Id("Documentation")] = jen.Lit(fd.Documentation)
							}
						}))
					}
				})
			}
		}))),
	)

	f.Func().Params(receiver(t)).Id("Descriptor").Params().Op("*").Qual(schemaPkg, "ObjectDescriptor").Block(
		jen.Return(jen.Id(descriptorFunc(name)).Call()),
	)
}

func loadExpr(fp *gen.FieldPlan) *jen.Statement {
	doc := jen.Id("doc")
	key := jen.Lit(fp.Field.Key)
	codec := jen.Id("codec")
	switch fp.Strategy {
	case gen.RawValue:
		return jen.Qual(pageutilPkg, primitiveLoader(fp.Primitive, false)).Call(doc, key)
	case gen.RawArray:
		return jen.Qual(pageutilPkg, primitiveLoader(fp.Primitive, true)).Call(doc, key)
	case gen.NestedDocument:
		return jen.Qual(pageutilPkg, "LoadObject").Call(doc, key, codec, jen.Id(decodeFunc(fp.TargetGoName())))
	case gen.NestedDocumentArray:
		return jen.Qual(pageutilPkg, "LoadObjectArray").Call(doc, key, codec, jen.Id(decodeFunc(fp.TargetGoName())))
	case gen.LinkEncoding:
		return jen.Qual(pageutilPkg, "LoadLinkID").Call(doc, key, codec, jen.Id(categoryConst(fp.TargetGoName())))
	case gen.LinkEncodingArray:
		return jen.Qual(pageutilPkg, "LoadLinkIDs").Call(doc, key, codec, jen.Id(categoryConst(fp.TargetGoName())))
	}
	panic(fmt.Sprintf("unhandled strategy %s for %s", fp.Strategy, fp.Field.Key))
}

func genPopulate(f *jen.File, t *gen.TypePlan) {
	f.Comment("PopulateDocument assigns every declared field from doc.")
	f.Comment("Links are stored as ids and not resolved.")
	f.Func().Params(receiver(t)).Id("PopulateDocument").Params(
		jen.Id("doc").Add(docType()),
		codecParam(),
	).Error().BlockFunc(func(g *jen.Group) {
		if len(t.Fields) == 0 {
			g.Return(jen.Nil())
			return
		}
		g.Var().Err().Error()
		for _, fp := range t.Fields {
			g.If(
				jen.List(jen.Id("t").Dot(fp.GoName), jen.Err()).Op("=").Add(loadExpr(fp)),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Return(errorf(fp.Field.Key)),
			)
		}
		g.Return(jen.Nil())
	})
}

func genResolvers(f *jen.File, t *gen.TypePlan) {
	for _, fp := range t.Links() {
		target := fp.TargetGoName()
		method := fp.ResolverName
		args := []jen.Code{
			jen.Id("ctx"), jen.Id("cache"), jen.Id("codec"),
			jen.Id(categoryConst(target)), jen.Id("t").Dot(fp.GoName),
		}
		params := []jen.Code{
			jen.Id("ctx").Qual("context", "Context"),
			cacheParam(),
			codecParam(),
		}
		if fp.Strategy == gen.LinkEncodingArray {
			f.Commentf("%s returns the %s pages linked under %q.", method, target, fp.Field.Key)
			f.Comment("Slots for pages which can not be loaded are nil.")
			f.Func().Params(receiver(t)).Id(method).Params(params...).Index().Op("*").Id(target).Block(
				jen.Return(jen.Qual(pagecachePkg, "ResolveAll").Types(jen.Op("*").Id(target)).Call(args...)),
			)
			continue
		}
		f.Commentf("%s returns the %s page linked under %q,", method, target, fp.Field.Key)
		f.Comment("or nil when it can not be loaded.")
		f.Func().Params(receiver(t)).Id(method).Params(params...).Op("*").Id(target).Block(
			jen.Return(jen.Qual(pagecachePkg, "Resolve").Types(jen.Op("*").Id(target)).Call(args...)),
		)
	}
}

func marshalField(g *jen.Group, fp *gen.FieldPlan) {
	key := jen.Lit(fp.Field.Key)
	field := jen.Id("t").Dot(fp.GoName)
	slot := jen.Id("out").Index(key)
	env := []jen.Code{jen.Id("ctx"), jen.Id("cache"), jen.Id("codec")}

	switch fp.Strategy {
	case gen.RawValue:
		g.Add(slot).Op("=").Add(field)
	case gen.RawArray:
		g.Add(slot).Op("=").Qual(pageutilPkg, "MakeArray").Call(field)
	case gen.LinkEncoding:
		g.Id("codec").Dot("AddLink").Call(
			jen.Id("out"), key,
			jen.Qual(pagecachePkg, "LinkTarget").Call(append(env, jen.Id(categoryConst(fp.TargetGoName())), field)...),
		)
	case gen.LinkEncodingArray:
		g.Add(slot).Op("=").Qual(pagecachePkg, "LinkArray").Call(append(env, jen.Id(categoryConst(fp.TargetGoName())), field)...)
	case gen.NestedDocument, gen.NestedDocumentArray:
		fn := "MarshalValue"
		if fp.Strategy == gen.NestedDocumentArray {
			fn = "MarshalList"
		}
		local := jen.Id(fp.ParamName)
		g.List(local, jen.Err()).Op(":=").Qual(pagecachePkg, fn).Call(append(env, field)...)
		g.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), errorf(fp.Field.Key)),
		)
		g.Add(slot).Op("=").Id(fp.ParamName)
	}
}

func genMarshal(f *jen.File, t *gen.TypePlan) {
	f.Comment("MarshalDocument serializes t. Links carry the linked page's name")
	f.Comment("when the page can be resolved.")
	f.Func().Params(receiver(t)).Id("MarshalDocument").Params(
		jen.Id("ctx").Qual("context", "Context"),
		cacheParam(),
		codecParam(),
	).Params(docType(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.If(jen.Id("t").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Nil()),
		)
		if t.IsPage() {
			g.Id("out").Op(":=").Qual(pagecachePkg, "BaseDocument").Call(jen.Id("t"))
		} else {
			g.Id("out").Op(":=").Make(docType(), jen.Lit(len(t.Fields)))
		}
		for _, fp := range t.Fields {
			marshalField(g, fp)
		}
		g.Return(jen.Id("out"), jen.Nil())
	})
}
