package linkcodec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestOfflineRoundTrip(t *testing.T) {
	assert := assert.New(t)
	c := NewOfflineCodec("")

	for _, category := range []string{"people", "widgets", "a", "with-dash.dot"} {
		for _, id := range []int64{0, 1, 42, 9999, 99992, 1 << 40} {
			token := c.Encode(category, id)
			assert.Equal(fmt.Sprintf("%s/%d", category, id), token)
			ref, err := c.Decode(token)
			assert.NoError(err)
			assert.Equal(category, ref.Category())
			assert.Equal(id, ref.PageID())
		}
	}
}

func TestMalformedTokens(t *testing.T) {
	assert := assert.New(t)

	offline := NewOfflineCodec("")
	network := NewNetworkCodec("https://api.example.com/", "", "")

	testVec := []struct {
		codec Codec
		token string
	}{
		{offline, "people"},
		{offline, "/42"},
		{offline, "people/"},
		{offline, "people/abc"},
		{offline, "people/4/2"},
		{network, "people/42"},
		{network, "http://other.example.com/people/42"},
		{network, "https://api.example.com/people"},
		{network, "https://api.example.com//42"},
		{network, "https://api.example.com/people/x"},
	}
	for _, tc := range testVec {
		_, err := tc.codec.Decode(tc.token)
		assert.Error(err, tc.token)
		assert.True(errors.Is(err, ErrMalformedLink), tc.token)
		var mle *MalformedLinkError
		if assert.True(errors.As(err, &mle)) {
			assert.Equal(tc.token, mle.Token)
		}
	}
}

func TestNetworkTokens(t *testing.T) {
	assert := assert.New(t)
	c := NewNetworkCodec("https://api.example.com/", "", "")

	assert.Equal("https://api.example.com/people/42", c.Encode("people", 42))
	ref, err := c.Decode("https://api.example.com/people/42")
	assert.NoError(err)
	assert.Equal(Reference{Cat: "people", ID: 42}, ref)
	assert.Equal("people/42", ref.String())
}

func TestAddLinkShapes(t *testing.T) {
	assert := assert.New(t)
	target := Reference{Cat: "people", ID: 42, Name: "Ada"}

	bare := NewOfflineCodec("")
	out := map[string]any{}
	bare.AddLink(out, "owner", target)
	assert.Equal("people/42", out["owner"])

	embedded := NewOfflineCodec("url")
	out = map[string]any{}
	embedded.AddLink(out, "owner", target)
	assert.Equal(map[string]any{"name": "Ada", "url": "people/42"}, out["owner"])

	// unnamed targets leave the name out
	assert.Equal(map[string]any{"url": "people/7"}, embedded.EncodeLink(Reference{Cat: "people", ID: 7}))

	network := NewNetworkCodec("https://h/", "href", "")
	assert.Equal(map[string]any{"name": "Ada", "href": "https://h/people/42"}, network.EncodeLink(target))
}

func TestLoadLink(t *testing.T) {
	assert := assert.New(t)

	bare := NewOfflineCodec("")
	ref, err := bare.LoadLink(map[string]any{"owner": "people/42"}, "owner")
	assert.NoError(err)
	assert.Equal(int64(42), ref.ID)

	_, err = bare.LoadLink(map[string]any{}, "owner")
	assert.True(errors.Is(err, ErrMalformedLink))

	_, err = bare.LoadLink(map[string]any{"owner": nil}, "owner")
	assert.True(errors.Is(err, ErrMalformedLink))

	_, err = bare.LoadLink(map[string]any{"owner": 42}, "owner")
	assert.True(errors.Is(err, ErrMalformedLink))

	embedded := NewOfflineCodec("url")
	ref, err = embedded.LoadLink(map[string]any{"owner": map[string]any{"name": "Ada", "url": "people/42"}}, "owner")
	assert.NoError(err)
	assert.Equal(Reference{Cat: "people", ID: 42, Name: "Ada"}, ref)

	obj := map[string]any{"name": "Ada"}
	_, err = embedded.LoadLink(map[string]any{"owner": obj}, "owner")
	var mle *MalformedLinkError
	if assert.True(errors.As(err, &mle)) {
		assert.Equal(obj, mle.Container)
	}

	refs, err := embedded.LoadLinkArray([]any{
		map[string]any{"url": "people/1"},
		map[string]any{"url": "people/2"},
	})
	assert.NoError(err)
	assert.Equal([]Reference{{Cat: "people", ID: 1}, {Cat: "people", ID: 2}}, refs)

	_, err = bare.LoadLinkArray([]any{"people/1", nil})
	assert.True(errors.Is(err, ErrMalformedLink))
}

func TestOfflineFetch(t *testing.T) {
	assert := assert.New(t)

	_, err := NewOfflineCodec("").Fetch(context.Background(), "people", 1)
	assert.True(errors.Is(err, ErrUnavailable))
}

func TestNetworkFetch(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/people/42":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"name": "Ada", "id": 42, "email": "ada@example.com"}`)
		case "/people/43":
			fmt.Fprint(w, `not json`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewNetworkCodec(srv.URL+"/", "", "pagegen-test/1.0")
	c.Client = srv.Client()
	c.Limiter = rate.NewLimiter(rate.Inf, 1)

	doc, err := c.Fetch(context.Background(), "people", 42)
	require.NoError(err)
	assert.Equal("Ada", doc["name"])
	assert.Equal("42", fmt.Sprint(doc["id"]))
	assert.Equal("pagegen-test/1.0", agent)

	_, err = c.Fetch(context.Background(), "people", 404)
	assert.Error(err)

	_, err = c.Fetch(context.Background(), "people", 43)
	assert.Error(err)
}

func TestNetworkFetchUnreachable(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/"
	client := srv.Client()
	srv.Close()

	c := NewNetworkCodec(base, "", "")
	c.Client = client
	_, err := c.Fetch(context.Background(), "people", 1)
	assert.Error(err)
}

func TestFetchClientRetries(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		switch {
		case r.URL.Path == "/people/1" && n < 3:
			w.WriteHeader(http.StatusServiceUnavailable)
		case r.URL.Path == "/people/1":
			fmt.Fprint(w, `{"name": "Ada", "id": 1}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var logs bytes.Buffer
	client := NewFetchClient(
		WithRetries(3, time.Millisecond, 2*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithTimeout(5*time.Second),
	)
	assert.Equal(5*time.Second, client.Timeout)

	c := NewNetworkCodec(srv.URL+"/", "", "")
	c.Client = client
	doc, err := c.Fetch(context.Background(), "people", 1)
	require.NoError(err)
	assert.Equal("Ada", doc["name"])
	assert.Equal(int32(3), hits.Load())
	assert.Contains(logs.String(), "retrying request")

	// missing pages are not retried
	hits.Store(10)
	_, err = c.Fetch(context.Background(), "people", 2)
	assert.Error(err)
	assert.Equal(int32(11), hits.Load())
}

func TestLinkDescriptor(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(LinkDescriptor(""))
	d := LinkDescriptor("url")
	if assert.NotNil(d) {
		assert.Equal("Link", d.Name)
		assert.Equal("url", d.Fields[1].Key)
	}
}
