// Package pagecache keeps the live page objects of a session, keyed by category
// and id.
//
// Every page constructed with a non-negative id is registered before its fields
// are populated, so two links to the same (category, id) resolve to one
// instance, and link cycles terminate. There is no eviction. A Cache is not
// safe for concurrent use.
package pagecache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hyperpage/pagegen/linkcodec"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type pageKey struct {
	category string
	id       int64
}

type Cache struct {
	Logger *slog.Logger

	pages     *expirable.LRU[pageKey, Page]
	factories map[string]Factory
}

func New() *Cache {
	return &Cache{
		Logger: slog.Default().With("system", "pagecache"),
		// Capacity of zero means unlimited size, and ttl of zero means
		// unlimited duration.
		pages:     expirable.NewLRU[pageKey, Page](0, nil, 0),
		factories: make(map[string]Factory),
	}
}

func (c *Cache) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Register sets the factory used to construct pages of category on a cache miss.
func (c *Cache) Register(category string, f Factory) {
	if c == nil {
		return
	}
	c.factories[category] = f
}

// Adopt registers p under its category and id. Pages with a negative id are not
// registered. An existing entry for the same key is replaced.
func (c *Cache) Adopt(p Page) {
	if c == nil || p.PageID() < 0 {
		return
	}
	key := pageKey{category: p.Category(), id: p.PageID()}
	if old, ok := c.pages.Peek(key); ok && old != p {
		pageOverwrites.Inc()
		c.logger().Debug("replacing cached page", "category", key.category, "id", key.id)
	}
	c.pages.Add(key, p)
}

func (c *Cache) drop(p Page) {
	if c == nil {
		return
	}
	key := pageKey{category: p.Category(), id: p.PageID()}
	if cur, ok := c.pages.Peek(key); ok && cur == p {
		c.pages.Remove(key)
	}
}

// Lookup returns the registered page without fetching.
func (c *Cache) Lookup(category string, id int64) (Page, bool) {
	if c == nil {
		return nil, false
	}
	return c.pages.Get(pageKey{category: category, id: id})
}

// Get returns the page for (category, id), fetching its document through codec
// and constructing it on a miss. Any failure along the way is reported as
// absence.
func (c *Cache) Get(ctx context.Context, codec linkcodec.Codec, category string, id int64) (Page, bool) {
	if c == nil {
		return nil, false
	}
	if p, ok := c.Lookup(category, id); ok {
		pageCacheHits.Inc()
		return p, true
	}
	pageCacheMisses.Inc()

	factory, ok := c.factories[category]
	if !ok {
		pageLoadFailures.WithLabelValues("unregistered").Inc()
		c.logger().Debug("no factory for page category", "category", category, "id", id)
		return nil, false
	}
	doc, err := codec.Fetch(ctx, category, id)
	if err != nil {
		pageLoadFailures.WithLabelValues("fetch").Inc()
		c.logger().Debug("page fetch failed", "category", category, "id", id, "err", err)
		return nil, false
	}
	t := factory()
	if err := Construct(c, t, doc, codec); err != nil {
		pageLoadFailures.WithLabelValues("construct").Inc()
		c.logger().Debug("page construction failed", "category", category, "id", id, "err", err)
		return nil, false
	}
	if t.PageID() != id {
		c.logger().Debug("fetched page has a different id", "category", category, "id", id, "pageID", t.PageID())
	}
	return t, true
}

// GetMany resolves each id in order. Slots for absent pages are nil.
func (c *Cache) GetMany(ctx context.Context, codec linkcodec.Codec, category string, ids []int64) []Page {
	out := make([]Page, len(ids))
	for i, id := range ids {
		if p, ok := c.Get(ctx, codec, category, id); ok {
			out[i] = p
		}
	}
	return out
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.pages.Len()
}

// Purge drops every registered page. Factories stay registered.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.pages.Purge()
}

func (c *Cache) String() string {
	return fmt.Sprintf("pagecache(%d pages)", c.Len())
}
