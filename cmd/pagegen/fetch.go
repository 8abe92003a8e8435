package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hyperpage/pagegen/docpage"
	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/linkcodec/redisfetch"
	"github.com/hyperpage/pagegen/pagecache"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

var cmdFetch = &cli.Command{
	Name:      "fetch",
	Usage:     "load one page from a live API and print its serialized document",
	ArgsUsage: "<category> <id>",
	Flags: []cli.Flag{
		schemaDirFlag,
		aliasFlag,
		&cli.StringFlag{
			Name:     "url-base",
			Usage:    "prefix of every page URL, eg 'https://api.example.com/'",
			Required: true,
			EnvVars:  []string{"PAGEGEN_URL_BASE"},
		},
		&cli.StringFlag{
			Name:    "object-key",
			Usage:   "links are embedded objects holding the URL under this key",
			EnvVars: []string{"PAGEGEN_OBJECT_KEY"},
		},
		&cli.StringFlag{
			Name:    "user-agent",
			Usage:   "HTTP User-Agent header for page fetches",
			EnvVars: []string{"PAGEGEN_USER_AGENT"},
		},
		&cli.Float64Flag{
			Name:    "rate-limit",
			Usage:   "maximum page fetches per second (0 for unlimited)",
			Value:   10,
			EnvVars: []string{"PAGEGEN_RATE_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis server URL for caching fetched documents, eg 'redis://localhost:6379/0'",
			EnvVars: []string{"PAGEGEN_REDIS_URL"},
		},
		&cli.DurationFlag{
			Name:    "redis-ttl",
			Usage:   "how long fetched documents stay in redis",
			Value:   24 * time.Hour,
			EnvVars: []string{"PAGEGEN_REDIS_TTL"},
		},
		&cli.IntFlag{
			Name:  "indent",
			Usage: "spaces per indentation level in the printed document",
			Value: 2,
		},
	},
	Action: runFetch,
}

func runFetch(cctx *cli.Context) error {
	ctx := cctx.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := configLogger(cctx, os.Stderr)

	if cctx.Args().Len() != 2 {
		return fmt.Errorf("expected category and id arguments")
	}
	category := cctx.Args().Get(0)
	id, err := strconv.ParseInt(cctx.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid page id %q: %w", cctx.Args().Get(1), err)
	}

	set, err := loadSchema(cctx)
	if err != nil {
		return err
	}
	if _, ok := set.ByCategory(category); !ok {
		return fmt.Errorf("no page type with category %q in %s", category, set)
	}

	nc := linkcodec.NewNetworkCodec(cctx.String("url-base"), cctx.String("object-key"), cctx.String("user-agent"))
	nc.Logger = logger.With("system", "linkcodec")
	if rps := cctx.Float64("rate-limit"); rps > 0 {
		nc.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	var codec linkcodec.Codec = nc
	if redisURL := cctx.String("redis-url"); redisURL != "" {
		rc, err := redisfetch.New(nc, redisURL, cctx.Duration("redis-ttl"), 1000)
		if err != nil {
			return err
		}
		rc.Logger = logger.With("system", "redisfetch")
		codec = rc
	}

	cache := pagecache.New()
	cache.Logger = logger.With("system", "pagecache")
	docpage.RegisterAll(cache, set)

	page, ok := cache.Get(ctx, codec, category, id)
	if !ok {
		return fmt.Errorf("page %s could not be loaded", codec.Encode(category, id))
	}
	doc, err := page.MarshalDocument(ctx, cache, codec)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cctx.App.Writer)
	enc.SetEscapeHTML(false)
	if n := cctx.Int("indent"); n > 0 {
		enc.SetIndent("", fmt.Sprintf("%*s", n, ""))
	}
	if err := enc.Encode(doc); err != nil {
		return err
	}
	logger.Debug("fetched page", "category", category, "id", id, "cached", cache.Len())
	return nil
}
