// Package docpage implements pages whose shape is interpreted from a descriptor
// at run time, rather than generated ahead of time.
//
// Values are held in the same in-memory forms generated types use: primitives
// as bool, int64, float32, float64 or string (or slices of them), links as
// int64 ids, and nested values as *Value.
package docpage

import (
	"context"
	"fmt"

	"github.com/hyperpage/pagegen/gen"
	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/pagecache"
	"github.com/hyperpage/pagegen/pageutil"
	"github.com/hyperpage/pagegen/schema"
)

// Value is a nested value of some descriptor.
type Value struct {
	set    *schema.Set
	desc   *schema.ObjectDescriptor
	fields map[string]any
}

var (
	_ pagecache.Serializable   = (*Value)(nil)
	_ pagecache.SelfDescribing = (*Value)(nil)
)

func NewValue(set *schema.Set, desc *schema.ObjectDescriptor) *Value {
	return &Value{set: set, desc: desc, fields: map[string]any{}}
}

// Page is a page of some descriptor with a category.
type Page struct {
	pagecache.Base
	Value
}

var _ pagecache.Loadable = (*Page)(nil)

func NewPage(set *schema.Set, desc *schema.ObjectDescriptor) *Page {
	return &Page{Value: *NewValue(set, desc)}
}

// RegisterAll registers a factory for every page descriptor in set.
func RegisterAll(cache *pagecache.Cache, set *schema.Set) {
	for _, d := range set.Pages() {
		cache.Register(d.Category, func() pagecache.Loadable {
			return NewPage(set, d)
		})
	}
}

// Decode loads a page of desc from doc, registering it in cache first.
func Decode(cache *pagecache.Cache, set *schema.Set, desc *schema.ObjectDescriptor, doc map[string]any, codec linkcodec.Codec) (*Page, error) {
	if !desc.IsPage() {
		return nil, fmt.Errorf("%s is not a page type", desc.Name)
	}
	p := NewPage(set, desc)
	if err := pagecache.Construct(cache, p, doc, codec); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) Category() string {
	return p.desc.Category
}

func (p *Page) MarshalDocument(ctx context.Context, cache *pagecache.Cache, codec linkcodec.Codec) (map[string]any, error) {
	if p == nil {
		return nil, nil
	}
	out := pagecache.BaseDocument(p)
	if err := p.marshalInto(ctx, cache, codec, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Value) Descriptor() *schema.ObjectDescriptor {
	return v.desc
}

// Get returns the in-memory value of a declared field.
func (v *Value) Get(key string) (any, bool) {
	val, ok := v.fields[key]
	return val, ok
}

// Set assigns a declared field. The value must already be in its in-memory form.
func (v *Value) Set(key string, val any) {
	v.fields[key] = val
}

func (v *Value) field(key string) (schema.FieldDescriptor, bool) {
	for _, f := range v.desc.DeclaredFields() {
		if f.Key == key {
			return f, true
		}
	}
	return schema.FieldDescriptor{}, false
}

// Resolve returns the page linked under key. It is nil when key is not a scalar
// link field, or the page can not be loaded.
func (v *Value) Resolve(ctx context.Context, cache *pagecache.Cache, codec linkcodec.Codec, key string) pagecache.Page {
	f, ok := v.field(key)
	if !ok || f.IsArray {
		return nil
	}
	kind, target, err := v.set.Resolve(f)
	if err != nil || kind != schema.KindPageReference {
		return nil
	}
	id, ok := v.fields[key].(int64)
	if !ok {
		return nil
	}
	return pagecache.Resolve[pagecache.Page](ctx, cache, codec, target.Category, id)
}

// ResolveAll returns the pages linked under an array link field, with nil slots
// for pages which can not be loaded.
func (v *Value) ResolveAll(ctx context.Context, cache *pagecache.Cache, codec linkcodec.Codec, key string) []pagecache.Page {
	f, ok := v.field(key)
	if !ok || !f.IsArray {
		return nil
	}
	kind, target, err := v.set.Resolve(f)
	if err != nil || kind != schema.KindPageReference {
		return nil
	}
	ids, _ := v.fields[key].([]int64)
	return pagecache.ResolveAll[pagecache.Page](ctx, cache, codec, target.Category, ids)
}

func loadPrimitive(doc map[string]any, f schema.FieldDescriptor) (any, error) {
	p, _ := schema.ParsePrimitive(f.TypeName)
	if f.IsArray {
		switch p {
		case schema.Boolean:
			return pageutil.LoadBoolArray(doc, f.Key)
		case schema.Integer:
			return pageutil.LoadIntArray(doc, f.Key)
		case schema.Float:
			return pageutil.LoadFloatArray(doc, f.Key)
		case schema.Double:
			return pageutil.LoadDoubleArray(doc, f.Key)
		default:
			return pageutil.LoadStringArray(doc, f.Key)
		}
	}
	switch p {
	case schema.Boolean:
		return pageutil.GetBool(doc, f.Key)
	case schema.Integer:
		return pageutil.GetInt(doc, f.Key)
	case schema.Float:
		return pageutil.GetFloat(doc, f.Key)
	case schema.Double:
		return pageutil.GetDouble(doc, f.Key)
	default:
		return pageutil.GetString(doc, f.Key)
	}
}

func (v *Value) PopulateDocument(doc map[string]any, codec linkcodec.Codec) error {
	for _, f := range v.desc.DeclaredFields() {
		kind, target, err := v.set.Resolve(f)
		if err != nil {
			return err
		}
		var val any
		switch gen.StrategyFor(kind, f.IsArray) {
		case gen.RawValue, gen.RawArray:
			val, err = loadPrimitive(doc, f)
		case gen.NestedDocument:
			val, err = pageutil.LoadObject(doc, f.Key, codec, v.decoder(target))
		case gen.NestedDocumentArray:
			val, err = pageutil.LoadObjectArray(doc, f.Key, codec, v.decoder(target))
		case gen.LinkEncoding:
			val, err = pageutil.LoadLinkID(doc, f.Key, codec, target.Category)
		case gen.LinkEncodingArray:
			val, err = pageutil.LoadLinkIDs(doc, f.Key, codec, target.Category)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", f.Key, err)
		}
		v.fields[f.Key] = val
	}
	return nil
}

func (v *Value) decoder(target *schema.ObjectDescriptor) pageutil.Decoder[*Value] {
	return func(doc map[string]any, codec linkcodec.Codec) (*Value, error) {
		nested := NewValue(v.set, target)
		if err := nested.PopulateDocument(doc, codec); err != nil {
			return nil, err
		}
		return nested, nil
	}
}

func (v *Value) MarshalDocument(ctx context.Context, cache *pagecache.Cache, codec linkcodec.Codec) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	out := make(map[string]any, len(v.desc.Fields))
	if err := v.marshalInto(ctx, cache, codec, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Value) marshalInto(ctx context.Context, cache *pagecache.Cache, codec linkcodec.Codec, out map[string]any) error {
	for _, f := range v.desc.DeclaredFields() {
		kind, target, err := v.set.Resolve(f)
		if err != nil {
			return err
		}
		val := v.fields[f.Key]
		switch gen.StrategyFor(kind, f.IsArray) {
		case gen.RawValue:
			out[f.Key] = val
		case gen.RawArray:
			out[f.Key] = rawArray(val)
		case gen.NestedDocument:
			nested, _ := val.(*Value)
			doc, err := pagecache.MarshalValue(ctx, cache, codec, nested)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Key, err)
			}
			out[f.Key] = doc
		case gen.NestedDocumentArray:
			nested, _ := val.([]*Value)
			docs, err := pagecache.MarshalList(ctx, cache, codec, nested)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Key, err)
			}
			out[f.Key] = docs
		case gen.LinkEncoding:
			id, _ := val.(int64)
			codec.AddLink(out, f.Key, pagecache.LinkTarget(ctx, cache, codec, target.Category, id))
		case gen.LinkEncodingArray:
			ids, _ := val.([]int64)
			out[f.Key] = pagecache.LinkArray(ctx, cache, codec, target.Category, ids)
		}
	}
	return nil
}

func rawArray(val any) []any {
	switch a := val.(type) {
	case []bool:
		return pageutil.MakeArray(a)
	case []int64:
		return pageutil.MakeArray(a)
	case []float32:
		return pageutil.MakeArray(a)
	case []float64:
		return pageutil.MakeArray(a)
	case []string:
		return pageutil.MakeArray(a)
	}
	return nil
}
