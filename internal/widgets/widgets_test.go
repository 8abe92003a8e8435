package widgets

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperpage/pagegen/gen"
	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/pagecache"
	"github.com/hyperpage/pagegen/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docServer is an offline codec which serves fixed documents.
type docServer struct {
	*linkcodec.OfflineCodec
	docs map[string]string
}

func (c *docServer) Fetch(ctx context.Context, category string, id int64) (map[string]any, error) {
	raw, ok := c.docs[c.Encode(category, id)]
	if !ok {
		return nil, linkcodec.ErrUnavailable
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func newSession(docs map[string]string) (*pagecache.Cache, *docServer) {
	cache := pagecache.New()
	RegisterPerson(cache)
	RegisterWidget(cache)
	return cache, &docServer{OfflineCodec: linkcodec.NewOfflineCodec("url"), docs: docs}
}

var people = map[string]string{
	"people/1": `{"name": "Ada", "id": 1, "email": "ada@example.com", "friend": {"url": "people/2", "name": "Bob"}}`,
	"people/2": `{"name": "Bob", "id": 2, "email": "bob@example.com", "friend": {"url": "people/1", "name": "Ada"}}`,
}

func TestOfflineSerialization(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	w := NewWidget(nil, pagecache.Base{Name: "gizmo", ID: 5}, 3, 42, nil, nil, nil, nil)
	doc, err := w.MarshalDocument(context.Background(), nil, linkcodec.NewOfflineCodec(""))
	require.NoError(err)

	assert.Equal("gizmo", doc["name"])
	assert.Equal(int64(5), doc["id"])
	assert.Equal(int64(3), doc["count"])
	assert.Equal("people/42", doc["owner"])

	b, err := json.Marshal(doc)
	require.NoError(err)
	assert.JSONEq(`{"name": "gizmo", "id": 5, "count": 3, "owner": "people/42", "tags": null, "parts": null, "watchers": null, "size": null}`, string(b))
}

func TestDecodeAndResolve(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	cache, codec := newSession(people)
	var doc map[string]any
	require.NoError(json.Unmarshal([]byte(`{
		"name": "gizmo", "id": 5, "count": 3,
		"owner": {"url": "people/1", "name": "Ada"},
		"tags": ["a", "b"],
		"parts": [{"label": "lid", "weight": 2.5, "enabled": true, "maker": {"url": "people/2"}}],
		"watchers": [{"url": "people/1"}, {"url": "people/3"}],
		"size": {"width": 1.5, "height": 2, "marks": [1, 2]}
	}`), &doc))

	w, err := DecodeWidget(cache, doc, codec)
	require.NoError(err)
	assert.Equal(int64(3), w.Count)
	assert.Equal(int64(1), w.Owner)
	assert.Equal([]string{"a", "b"}, w.Tags)
	require.Len(w.Parts, 1)
	assert.Equal(NewPart("lid", 2.5, true, 2), w.Parts[0])
	assert.Equal([]int64{1, 3}, w.Watchers)
	assert.Equal(NewDimensions(1.5, 2, []int64{1, 2}), w.Size)

	// construction registered the widget but fetched nothing
	p, ok := cache.Lookup(WidgetCategory, 5)
	assert.True(ok)
	assert.Same(w, p)
	assert.Equal(1, cache.Len())

	owner := w.ResolveOwner(ctx, cache, codec)
	require.NotNil(owner)
	assert.Equal("ada@example.com", owner.Email)

	watchers := w.ResolveWatchers(ctx, cache, codec)
	require.Len(watchers, 2)
	assert.Same(owner, watchers[0])
	assert.Nil(watchers[1])

	maker := w.Parts[0].ResolveMaker(ctx, cache, codec)
	require.NotNil(maker)
	assert.Same(owner, maker.ResolveFriend(ctx, cache, codec))
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	src := `{
		"name": "gizmo", "id": 5, "count": 3,
		"owner": {"url": "people/1", "name": "Ada"},
		"tags": ["a", "b"],
		"parts": [{"label": "lid", "weight": 2.5, "enabled": true, "maker": {"url": "people/2", "name": "Bob"}}],
		"watchers": [{"url": "people/2", "name": "Bob"}],
		"size": {"width": 1.5, "height": 2, "marks": [1, 2]}
	}`
	cache, codec := newSession(people)
	var doc map[string]any
	require.NoError(json.Unmarshal([]byte(src), &doc))

	w, err := DecodeWidget(cache, doc, codec)
	require.NoError(err)
	out, err := w.MarshalDocument(ctx, cache, codec)
	require.NoError(err)

	b, err := json.Marshal(out)
	require.NoError(err)
	assert.JSONEq(src, string(b))
}

func TestReferenceCycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	cache, codec := newSession(people)
	ada, ok := cache.Get(ctx, codec, PersonCategory, 1)
	require.True(ok)

	bob := ada.(*Person).ResolveFriend(ctx, cache, codec)
	require.NotNil(bob)
	assert.Same(ada, bob.ResolveFriend(ctx, cache, codec))
	assert.Equal(2, cache.Len())

	// unknown ids are absent, never an error
	_, ok = cache.Get(ctx, codec, PersonCategory, 99)
	assert.False(ok)
}

func TestMissingOwnerLink(t *testing.T) {
	cache, codec := newSession(people)
	_, err := DecodeWidget(cache, map[string]any{"name": "x", "id": 9, "count": 1}, codec)
	assert.ErrorIs(t, err, linkcodec.ErrMalformedLink)
	assert.Equal(t, 0, cache.Len())
}

func TestWrongCategoryLink(t *testing.T) {
	assert := assert.New(t)
	cache, codec := newSession(people)

	_, err := DecodeWidget(cache, map[string]any{"name": "x", "id": 9, "owner": map[string]any{"url": "widgets/1"}}, codec)
	var mle *linkcodec.MalformedLinkError
	assert.True(errors.As(err, &mle))

	_, err = DecodeWidget(cache, map[string]any{
		"name":     "x",
		"id":       9,
		"owner":    map[string]any{"url": "people/1"},
		"watchers": []any{map[string]any{"url": "widgets/2"}},
	}, codec)
	assert.ErrorIs(err, linkcodec.ErrMalformedLink)
	assert.Equal(0, cache.Len())
}

func TestDescriptorsMatchSchema(t *testing.T) {
	assert := assert.New(t)

	set, err := schema.NewLoader().LoadDirectory("../../schema/testdata/widgets")
	require.NoError(t, err)

	for _, generated := range []*schema.ObjectDescriptor{
		WidgetDescriptor(), PartDescriptor(), PersonDescriptor(), DimensionsDescriptor(),
	} {
		loaded, ok := set.Lookup(generated.Name)
		if assert.True(ok, generated.Name) {
			assert.Equal(*loaded, *generated)
		}
	}
	assert.Equal(WidgetDescriptor(), new(Widget).Descriptor())
}

func TestSamplesUpToDate(t *testing.T) {
	require := require.New(t)

	set, err := schema.NewLoader().LoadDirectory("../../schema/testdata/widgets")
	require.NoError(err)
	samples, err := gen.Samples(set, linkcodec.NewOfflineCodec("url"))
	require.NoError(err)
	require.Len(samples, 3)

	for _, s := range samples {
		want, err := gen.EncodeSample(s.Document, 2)
		require.NoError(err)
		got, err := os.ReadFile(filepath.Join("testdata", "samples", s.Name+".json"))
		require.NoError(err, s.Name)
		assert.Equal(t, string(want), string(got), s.Name)
	}
}
