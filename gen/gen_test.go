package gen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/schema"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWidgets(t *testing.T) *schema.Set {
	set, err := schema.NewLoader().LoadDirectory("../schema/testdata/widgets")
	require.NoError(t, err)
	return set
}

func fieldStrategies(tp *TypePlan) map[string]Strategy {
	out := map[string]Strategy{}
	for _, f := range tp.Fields {
		out[f.Field.Key] = f.Strategy
	}
	return out
}

func TestPlanWidgets(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	plans, err := Plan(loadWidgets(t))
	require.NoError(err)

	var names []string
	for _, p := range plans {
		names = append(names, p.GoName)
	}
	assert.Equal([]string{"Dimensions", "Person", "Widget"}, names)

	widget := plans[2]
	assert.True(widget.IsPage())
	assert.Equal(map[string]Strategy{
		"count":    RawValue,
		"owner":    LinkEncoding,
		"tags":     RawArray,
		"parts":    NestedDocumentArray,
		"watchers": LinkEncodingArray,
		"size":     NestedDocument,
	}, fieldStrategies(widget))
	require.Len(widget.Nested, 1)
	assert.Equal("Part", widget.Nested[0].GoName)
	assert.False(widget.Nested[0].IsPage())
	assert.Equal("Person", widget.Fields[1].TargetGoName())

	// implicit page fields are carried by the runtime base
	person := plans[1]
	assert.Equal(map[string]Strategy{"email": RawValue, "friend": LinkEncoding}, fieldStrategies(person))

	links := widget.Links()
	require.Len(links, 2)
	assert.Equal("owner", links[0].Field.Key)
	assert.Equal("watchers", links[1].Field.Key)

	var walked []string
	widget.Walk(func(tp *TypePlan) { walked = append(walked, tp.GoName) })
	assert.Equal([]string{"Widget", "Part"}, walked)
}

func TestPlanPrimitive(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	plans, err := Plan(loadWidgets(t))
	require.NoError(err)
	part := plans[2].Nested[0]
	prims := map[string]schema.Primitive{}
	for _, f := range part.Fields {
		prims[f.Field.Key] = f.Primitive
	}
	assert.Equal(schema.String, prims["label"])
	assert.Equal(schema.Double, prims["weight"])
	assert.Equal(schema.Boolean, prims["enabled"])
	assert.Equal(schema.Primitive(""), prims["maker"])
}

func TestPolicyTable(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(RawValue, StrategyFor(schema.KindPrimitive, false))
	assert.Equal(RawArray, StrategyFor(schema.KindPrimitive, true))
	assert.Equal(NestedDocument, StrategyFor(schema.KindNestedValue, false))
	assert.Equal(NestedDocumentArray, StrategyFor(schema.KindNestedValue, true))
	assert.Equal(LinkEncoding, StrategyFor(schema.KindPageReference, false))
	assert.Equal(LinkEncodingArray, StrategyFor(schema.KindPageReference, true))
	assert.Equal("link-array", LinkEncodingArray.String())
}

func TestPlanUnresolved(t *testing.T) {
	assert := assert.New(t)

	set, err := schema.NewLoader().LoadDirectory("../schema/testdata/unresolved")
	require.NoError(t, err)
	_, err = Plan(set)
	assert.True(errors.Is(err, schema.ErrUnresolvedType))
	var ute *schema.UnresolvedTypeError
	if assert.True(errors.As(err, &ute)) {
		assert.Equal("Missing", ute.Type)
		assert.Equal("Gadget", ute.Object)
	}
}

func TestPlanUnknownEnclosing(t *testing.T) {
	set, err := schema.NewSet([]schema.ObjectDescriptor{
		{Name: "Lost", EnclosingName: "Nowhere"},
	})
	require.NoError(t, err)
	_, err = Plan(set)
	var ee *EnclosingError
	assert.True(t, errors.As(err, &ee))
}

func TestPlanResolverNames(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	set, err := schema.NewSet([]schema.ObjectDescriptor{
		{Name: "Box", Category: "boxes", Fields: []schema.FieldDescriptor{
			{Key: "owner", TypeName: "Box"},
			{Key: "resolve_owner", TypeName: "Integer"},
		}},
	})
	require.NoError(err)
	plans, err := Plan(set)
	require.NoError(err)

	fields := plans[0].Fields
	assert.Equal("Owner", fields[0].GoName)
	assert.Equal("ResolveOwner", fields[1].GoName)
	assert.Equal("", fields[1].ResolverName)
	assert.NotEqual(fields[1].GoName, fields[0].ResolverName)
	assert.True(strings.HasPrefix(fields[0].ResolverName, "ResolveOwner"))
}

// prefixReporter claims the type name and "Decode<T>List" for every plan.
type prefixReporter struct{ fakeEmitter }

func (prefixReporter) Symbols(t *TypePlan) []string {
	return []string{t.GoName, "Decode" + t.GoName + "List"}
}

func TestRenderSymbolCollision(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	set, err := schema.NewSet([]schema.ObjectDescriptor{
		{Name: "Item"},
		{Name: "ItemList"},
		{Name: "Holder", Fields: []schema.FieldDescriptor{{Key: "x", TypeName: "Integer"}}},
		{Name: "DecodeItemList", EnclosingName: "Holder"},
	})
	require.NoError(err)

	out, err := Render(set, Options{Package: "things", Emitter: &prefixReporter{}})
	assert.Nil(out)
	var sce *SymbolCollisionError
	if assert.True(errors.As(err, &sce)) {
		assert.Equal("DecodeItemList", sce.Symbol)
		assert.Equal("Item", sce.First)
		assert.Equal("DecodeItemList", sce.Second)
	}

	// emitters without a shared namespace are not checked
	_, err = Render(set, Options{Package: "things", Emitter: &fakeEmitter{}})
	assert.NoError(err)
}

func TestNaming(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("FirstName", GoName("first_name"))
	assert.Equal("Owner", GoName("owner"))
	assert.Equal("HTTPStatus", GoName("HTTPStatus"))
	assert.True(strings.HasPrefix(GoName("2fa"), "X2"))
	assert.Equal("X", GoName("--"))

	assert.Equal("widget", FileName("Widget"))
	assert.Equal("widget_part", FileName("WidgetPart"))
	assert.Equal("http_status", FileName("HTTPStatus"))

	set, err := schema.NewSet([]schema.ObjectDescriptor{
		{Name: "Thing", Category: "things", Fields: []schema.FieldDescriptor{
			{Key: "category", TypeName: "String"},
			{Key: "type", TypeName: "String"},
			{Key: "cache", TypeName: "String"},
			{Key: "base", TypeName: "String"},
			{Key: "first-name", TypeName: "String"},
			{Key: "first_name", TypeName: "String"},
		}},
	})
	require.NoError(t, err)
	plans, err := Plan(set)
	require.NoError(t, err)
	var goNames, params []string
	for _, f := range plans[0].Fields {
		goNames = append(goNames, f.GoName)
		params = append(params, f.ParamName)
	}
	assert.Equal([]string{"Category_", "Type", "Cache", "Base_", "FirstName", "FirstName_"}, goNames)
	assert.Equal([]string{"category", "type_", "cache_", "base_", "firstName", "firstName_"}, params)
}

func TestSampleDocument(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	set := loadWidgets(t)
	widget, ok := set.Lookup("Widget")
	require.True(ok)

	doc, err := SampleDocument(set, widget, linkcodec.NewOfflineCodec("url"))
	require.NoError(err)

	maker := map[string]any{"url": "people/9999", "name": "<Person>"}
	part := map[string]any{"label": "<String>", "weight": "<double>", "enabled": "<boolean>", "maker": maker}
	assert.Equal(map[string]any{
		"count": "<integer>",
		"owner": map[string]any{"url": "people/9999", "name": "<Person>"},
		"tags":  []any{"<string0>", "<string1>", "<string2>"},
		"parts": []any{part, part, part},
		"watchers": []any{
			map[string]any{"url": "people/99990", "name": "<Person0>"},
			map[string]any{"url": "people/99991", "name": "<Person1>"},
			map[string]any{"url": "people/99992", "name": "<Person2>"},
		},
		"size": map[string]any{
			"width":  "<float>",
			"height": "<float>",
			"marks":  []any{"<integer0>", "<integer1>", "<integer2>"},
		},
	}, doc)

	// bare token codecs write links as plain strings
	doc, err = SampleDocument(set, widget, linkcodec.NewOfflineCodec(""))
	require.NoError(err)
	assert.Equal("people/9999", doc["owner"])
}

func TestSamplesDeterministic(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	set := loadWidgets(t)
	codec := linkcodec.NewOfflineCodec("url")

	first, err := Samples(set, codec)
	require.NoError(err)
	second, err := Samples(set, codec)
	require.NoError(err)
	require.Len(first, 3)
	assert.Equal("Dimensions", first[0].Name)

	for i := range first {
		a, err := EncodeSample(first[i].Document, 2)
		require.NoError(err)
		b, err := EncodeSample(second[i].Document, 2)
		require.NoError(err)
		assert.Equal(string(a), string(b))
		assert.NotContains(string(a), `\u003c`)
	}

	person, err := EncodeSample(first[1].Document, 2)
	require.NoError(err)
	assert.Equal(`{
  "email": "<string>",
  "friend": {
    "name": "<Person>",
    "url": "people/9999"
  },
  "id": "<integer>",
  "name": "<string>"
}
`, string(person))

	compact, err := EncodeSample(first[1].Document, 0)
	require.NoError(err)
	assert.False(strings.Contains(strings.TrimSpace(string(compact)), "\n"))
}

func TestFakeSamples(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	set := loadWidgets(t)
	codec := linkcodec.NewOfflineCodec("url")

	first, err := FakeSamples(set, codec, gofakeit.New(7))
	require.NoError(err)
	second, err := FakeSamples(set, codec, gofakeit.New(7))
	require.NoError(err)
	require.Len(first, 3)
	assert.Equal(first, second)

	person := first[1].Document
	assert.IsType("", person["name"])
	assert.IsType("", person["email"])
	assert.Contains(person["email"], "@")
	id, ok := person["id"].(int64)
	if assert.True(ok) {
		assert.True(id > 0 && id < SampleLinkID)
	}
	ref, err := codec.LoadLink(person, "friend")
	require.NoError(err)
	assert.Equal("people", ref.Cat)
	assert.True(ref.ID < SampleLinkID)
	assert.NotEmpty(ref.Name)

	widget := first[2].Document
	assert.IsType(int64(0), widget["count"])
	assert.Len(widget["tags"], SampleArrayLen)
	size := widget["size"].(map[string]any)
	assert.IsType(float32(0), size["width"])
	parts := widget["parts"].([]any)
	assert.IsType(true, parts[0].(map[string]any)["enabled"])
	assert.IsType(float64(0), parts[0].(map[string]any)["weight"])

	_, err = EncodeSample(widget, 2)
	assert.NoError(err)
}

func TestSampleRecursion(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	set, err := schema.NewSet([]schema.ObjectDescriptor{
		{Name: "Tree", Fields: []schema.FieldDescriptor{
			{Key: "label", TypeName: "String"},
			{Key: "branch", TypeName: "Branch"},
		}},
		{Name: "Branch", EnclosingName: "Tree", Fields: []schema.FieldDescriptor{
			{Key: "tree", TypeName: "Tree"},
			{Key: "leaves", TypeName: "Branch", IsArray: true},
		}},
	})
	require.NoError(err)
	tree, _ := set.Lookup("Tree")

	doc, err := SampleDocument(set, tree, linkcodec.NewOfflineCodec(""))
	require.NoError(err)
	assert.Equal(map[string]any{
		"label":  "<String>",
		"branch": map[string]any{"tree": nil, "leaves": []any{nil, nil, nil}},
	}, doc)
}

func TestSampleSelfArray(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	set, err := schema.NewSet([]schema.ObjectDescriptor{
		{Name: "Node", Fields: []schema.FieldDescriptor{
			{Key: "children", TypeName: "Node", IsArray: true},
		}},
	})
	require.NoError(err)
	node, _ := set.Lookup("Node")

	doc, err := SampleDocument(set, node, linkcodec.NewOfflineCodec(""))
	require.NoError(err)
	children, ok := doc["children"].([]any)
	if assert.True(ok) {
		assert.Len(children, SampleArrayLen)
	}

	b, err := EncodeSample(doc, 0)
	require.NoError(err)
	assert.Equal("{\"children\":[null,null,null]}\n", string(b))
}

// fakeEmitter writes the plan's field keys, one per line.
type fakeEmitter struct {
	fail bool
}

func (e *fakeEmitter) FileName(t *TypePlan) string { return FileName(t.GoName) + ".txt" }

func (e *fakeEmitter) Emit(w io.Writer, pkg string, t *TypePlan) error {
	if e.fail {
		return fmt.Errorf("emitter failure")
	}
	fmt.Fprintf(w, "package %s\n", pkg)
	t.Walk(func(tp *TypePlan) {
		for _, f := range tp.Fields {
			fmt.Fprintf(w, "%s.%s %s\n", tp.GoName, f.GoName, f.Strategy)
		}
	})
	return nil
}

func TestGenerate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	opts := Options{
		Package:    "widgets",
		OutDir:     filepath.Join(dir, "out"),
		SamplesDir: filepath.Join(dir, "samples"),
		Emitter:    &fakeEmitter{},
		Codec:      linkcodec.NewOfflineCodec("url"),
		Indent:     2,
	}
	artifacts, err := Generate(loadWidgets(t), opts)
	require.NoError(err)
	assert.Len(artifacts, 6)

	b, err := os.ReadFile(filepath.Join(dir, "out", "widget.txt"))
	require.NoError(err)
	assert.Contains(string(b), "package widgets\n")
	assert.Contains(string(b), "Part.Maker link\n")

	for _, name := range []string{"Dimensions", "Person", "Widget"} {
		_, err := os.Stat(filepath.Join(dir, "samples", name+".json"))
		assert.NoError(err)
	}
	// nested descriptors get no artifacts of their own
	_, err = os.Stat(filepath.Join(dir, "samples", "Part.json"))
	assert.True(os.IsNotExist(err))
}

func TestGenerateWritesNothingOnFailure(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	set, err := schema.NewLoader().LoadDirectory("../schema/testdata/unresolved")
	require.NoError(t, err)

	_, err = Generate(set, Options{Package: "p", OutDir: filepath.Join(dir, "out"), SamplesDir: filepath.Join(dir, "samples"), Emitter: &fakeEmitter{}})
	assert.True(errors.Is(err, schema.ErrUnresolvedType))

	_, err = Generate(loadWidgets(t), Options{Package: "p", OutDir: filepath.Join(dir, "out"), Emitter: &fakeEmitter{fail: true}})
	assert.Error(err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(entries)

	_, err = Render(loadWidgets(t), Options{Package: "p"})
	assert.Error(err)
}
