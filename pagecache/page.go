package pagecache

import (
	"context"
	"fmt"

	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/pageutil"
	"github.com/hyperpage/pagegen/schema"
)

// Serializable values can be written out as a JSON document.
type Serializable interface {
	MarshalDocument(ctx context.Context, cache *Cache, codec linkcodec.Codec) (map[string]any, error)
}

// SelfDescribing values can report the descriptor they were generated from.
type SelfDescribing interface {
	Descriptor() *schema.ObjectDescriptor
}

// Page is an addressable, serializable, self-describing object of some category.
type Page interface {
	linkcodec.Target
	Serializable
	SelfDescribing
}

// Loadable is a Page which the cache can construct from a fetched document.
type Loadable interface {
	Page
	SetBase(base Base)
	PopulateDocument(doc map[string]any, codec linkcodec.Codec) error
}

// Factory allocates an empty Loadable of one category.
type Factory func() Loadable

// Base holds the implicit fields every page carries. Page types embed it.
type Base struct {
	Name string
	ID   int64
}

func (b Base) PageID() int64    { return b.ID }
func (b Base) PageName() string { return b.Name }

func (b *Base) SetBase(base Base) { *b = base }

// DecodeBase reads the implicit name and id of a page document. The id is
// required; the name may be absent.
func DecodeBase(doc map[string]any) (Base, error) {
	v, ok := doc[schema.PageIDKey]
	if !ok || v == nil {
		return Base{}, fmt.Errorf("page document has no %q", schema.PageIDKey)
	}
	id, err := pageutil.GetInt(doc, schema.PageIDKey)
	if err != nil {
		return Base{}, err
	}
	name, err := pageutil.GetString(doc, schema.PageNameKey)
	if err != nil {
		return Base{}, err
	}
	return Base{Name: name, ID: id}, nil
}

// BaseDocument starts the document of a page with its implicit fields.
func BaseDocument(p linkcodec.Target) map[string]any {
	return map[string]any{
		schema.PageNameKey: p.PageName(),
		schema.PageIDKey:   p.PageID(),
	}
}

// Construct loads a freshly allocated page from doc. The page is registered in
// the cache before its fields are populated, so references back to it resolve
// to this same instance while it is being built. If population fails the
// registration is dropped again.
func Construct(cache *Cache, t Loadable, doc map[string]any, codec linkcodec.Codec) error {
	base, err := DecodeBase(doc)
	if err != nil {
		return fmt.Errorf("decoding %s page: %w", t.Category(), err)
	}
	t.SetBase(base)
	cache.Adopt(t)
	if err := t.PopulateDocument(doc, codec); err != nil {
		cache.drop(t)
		return fmt.Errorf("decoding %s page %d: %w", t.Category(), base.ID, err)
	}
	return nil
}

// Resolve returns the page of the given category and id as a T, fetching and
// constructing it on a cache miss. The zero T is returned when the page is
// absent, could not be loaded, or is not a T.
func Resolve[T Page](ctx context.Context, cache *Cache, codec linkcodec.Codec, category string, id int64) T {
	var zero T
	p, ok := cache.Get(ctx, codec, category, id)
	if !ok {
		return zero
	}
	t, ok := p.(T)
	if !ok {
		cache.logger().Warn("cached page has unexpected type", "category", category, "id", id, "type", fmt.Sprintf("%T", p))
		return zero
	}
	return t
}

// ResolveAll resolves every id in order. Slots for absent pages hold the zero T.
func ResolveAll[T Page](ctx context.Context, cache *Cache, codec linkcodec.Codec, category string, ids []int64) []T {
	if ids == nil {
		return nil
	}
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = Resolve[T](ctx, cache, codec, category, id)
	}
	return out
}

// LinkTarget returns the live page for (category, id) when it can be resolved,
// so that links carry its name, and a bare Reference otherwise.
func LinkTarget(ctx context.Context, cache *Cache, codec linkcodec.Codec, category string, id int64) linkcodec.Target {
	if p, ok := cache.Get(ctx, codec, category, id); ok {
		return p
	}
	return linkcodec.Reference{Cat: category, ID: id}
}

// LinkArray encodes an array of links to pages of one category.
func LinkArray(ctx context.Context, cache *Cache, codec linkcodec.Codec, category string, ids []int64) []any {
	if ids == nil {
		return nil
	}
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = codec.EncodeLink(LinkTarget(ctx, cache, codec, category, id))
	}
	return out
}

// MarshalValue serializes a nested value. A nil value (or a typed nil that
// serializes to nil) yields nil.
func MarshalValue(ctx context.Context, cache *Cache, codec linkcodec.Codec, v Serializable) (any, error) {
	if v == nil {
		return nil, nil
	}
	doc, err := v.MarshalDocument(ctx, cache, codec)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return doc, nil
}

// MarshalList serializes an array of nested values in order.
func MarshalList[T Serializable](ctx context.Context, cache *Cache, codec linkcodec.Codec, values []T) ([]any, error) {
	if values == nil {
		return nil, nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		doc, err := MarshalValue(ctx, cache, codec, v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = doc
	}
	return out, nil
}
