package linkcodec

import (
	"context"
	"fmt"
)

// OfflineCodec encodes links as "category/id" and never fetches anything. It is
// used for sample generation and for working with documents already in hand.
type OfflineCodec struct {
	shape linkShape
}

var _ Codec = (*OfflineCodec)(nil)

// NewOfflineCodec returns an offline codec. A non-empty objectKey selects the
// embedded link object representation.
func NewOfflineCodec(objectKey string) *OfflineCodec {
	return &OfflineCodec{shape: linkShape{objectKey: objectKey}}
}

func (c *OfflineCodec) Encode(category string, id int64) string {
	return c.shape.encode(category, id)
}

func (c *OfflineCodec) Decode(token string) (Reference, error) {
	return c.shape.decode(token)
}

func (c *OfflineCodec) AddLink(container map[string]any, key string, target Target) {
	container[key] = c.shape.encodeLink(target)
}

func (c *OfflineCodec) EncodeLink(target Target) any {
	return c.shape.encodeLink(target)
}

func (c *OfflineCodec) LoadLink(container map[string]any, key string) (Reference, error) {
	return c.shape.loadLink(container, key)
}

func (c *OfflineCodec) LoadLinkArray(array []any) ([]Reference, error) {
	return c.shape.loadLinkArray(array)
}

func (c *OfflineCodec) Fetch(ctx context.Context, category string, id int64) (map[string]any, error) {
	return nil, fmt.Errorf("fetching %s: %w", c.Encode(category, id), ErrUnavailable)
}

func (c *OfflineCodec) ObjectKey() string {
	return c.shape.objectKey
}
