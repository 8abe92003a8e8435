package linkcodec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/carlmjohnson/versioninfo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// NetworkCodec encodes links as URLs (URLBase + "category/id") and fetches page
// documents over HTTP.
type NetworkCodec struct {
	// URLBase is prepended to every token, e.g. "https://api.example.com/".
	URLBase string
	// ObjectKey selects the embedded link object representation when non-empty;
	// it is the key holding the URL inside the link object.
	ObjectKey string
	// UserAgent is sent with every fetch. Defaults to "pagegen/<version>".
	UserAgent string
	// Client is an HTTP client to use. If not set, defaults to NewFetchClient
	// logging through Logger.
	Client *http.Client
	// Limiter paces fetches, if set.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

var _ Codec = (*NetworkCodec)(nil)

func NewNetworkCodec(urlBase, objectKey, userAgent string) *NetworkCodec {
	return &NetworkCodec{
		URLBase:   urlBase,
		ObjectKey: objectKey,
		UserAgent: userAgent,
		Logger:    slog.Default().With("system", "linkcodec"),
	}
}

func (c *NetworkCodec) shape() linkShape {
	return linkShape{base: c.URLBase, objectKey: c.ObjectKey}
}

func (c *NetworkCodec) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *NetworkCodec) getClient() *http.Client {
	if c.Client == nil {
		c.Client = NewFetchClient(WithLogger(c.logger()))
	}
	return c.Client
}

func (c *NetworkCodec) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return "pagegen/" + versioninfo.Short()
}

func (c *NetworkCodec) Encode(category string, id int64) string {
	return c.shape().encode(category, id)
}

func (c *NetworkCodec) Decode(token string) (Reference, error) {
	return c.shape().decode(token)
}

func (c *NetworkCodec) AddLink(container map[string]any, key string, target Target) {
	container[key] = c.shape().encodeLink(target)
}

func (c *NetworkCodec) EncodeLink(target Target) any {
	return c.shape().encodeLink(target)
}

func (c *NetworkCodec) LoadLink(container map[string]any, key string) (Reference, error) {
	return c.shape().loadLink(container, key)
}

func (c *NetworkCodec) LoadLinkArray(array []any) ([]Reference, error) {
	return c.shape().loadLinkArray(array)
}

// Fetch performs a blocking GET of the page URL and decodes the JSON body.
// Numbers are decoded as json.Number.
func (c *NetworkCodec) Fetch(ctx context.Context, category string, id int64) (map[string]any, error) {
	u := c.Encode(category, id)

	ctx, span := otel.Tracer("linkcodec").Start(ctx, "NetworkCodec.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", u))

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for fetch limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.getClient().Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("fetching %s: HTTP status %d", u, resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	var out map[string]any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decoding %s: %w", u, err)
	}
	if out == nil {
		return nil, fmt.Errorf("decoding %s: document was null", u)
	}
	c.logger().Debug("fetched page", "url", u)
	return out, nil
}
