package linkcodec

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperpage/pagegen/schema"
)

var (
	ErrMalformedLink = errors.New("malformed link")
	ErrUnavailable   = errors.New("page fetch unavailable")
)

// Target is anything a link can point at: a live page, or just a Reference.
type Target interface {
	Category() string
	PageID() int64
	PageName() string
}

// Reference is a decoded link: a (category, id) pair, plus the display name
// when the link was object-shaped. It carries no object data.
type Reference struct {
	Cat  string
	ID   int64
	Name string
}

var _ Target = Reference{}

func (r Reference) Category() string { return r.Cat }
func (r Reference) PageID() int64    { return r.ID }
func (r Reference) PageName() string { return r.Name }

func (r Reference) String() string {
	return r.Cat + "/" + strconv.FormatInt(r.ID, 10)
}

// Codec encodes and decodes references to pages, and fetches raw page
// documents. Implementations differ by transport.
type Codec interface {
	// Encode returns the token for a page reference.
	Encode(category string, id int64) string
	// Decode parses a token; it fails with a *MalformedLinkError when the token
	// does not have the expected shape.
	Decode(token string) (Reference, error)
	// AddLink stores a link to target in container under key, either as a bare
	// token or an embedded link object.
	AddLink(container map[string]any, key string, target Target)
	// EncodeLink returns the wire value for a link to target.
	EncodeLink(target Target) any
	// LoadLink parses the link stored in container under key, without resolving it.
	LoadLink(container map[string]any, key string) (Reference, error)
	// LoadLinkArray parses an array of links, without resolving them.
	LoadLinkArray(array []any) ([]Reference, error)
	// Fetch retrieves the raw document of a page. It may block on I/O.
	Fetch(ctx context.Context, category string, id int64) (map[string]any, error)
}

// MalformedLinkError reports a token, or object-shaped link, which did not
// match the codec's expected shape.
type MalformedLinkError struct {
	Token     string
	Container map[string]any
	Reason    string
}

func (e *MalformedLinkError) Error() string {
	if e.Container != nil {
		return fmt.Sprintf("malformed link object %v: %s", e.Container, e.Reason)
	}
	return fmt.Sprintf("malformed link %q: %s", e.Token, e.Reason)
}

func (e *MalformedLinkError) Is(target error) bool {
	return target == ErrMalformedLink
}

// linkShape holds the link (de)serialization rules shared by all codecs. When
// objectKey is set, links are embedded as {"name": ..., objectKey: token};
// otherwise they are bare tokens.
type linkShape struct {
	base      string
	objectKey string
}

func (s linkShape) encode(category string, id int64) string {
	return s.base + category + "/" + strconv.FormatInt(id, 10)
}

func (s linkShape) decode(token string) (Reference, error) {
	rest, ok := strings.CutPrefix(token, s.base)
	if !ok {
		return Reference{}, &MalformedLinkError{Token: token, Reason: fmt.Sprintf("does not fit the format %q", s.base+"<category>/<id>")}
	}
	category, id, ok := strings.Cut(rest, "/")
	if !ok || category == "" {
		return Reference{}, &MalformedLinkError{Token: token, Reason: "no category separator"}
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Reference{}, &MalformedLinkError{Token: token, Reason: "id is not an integer"}
	}
	return Reference{Cat: category, ID: n}, nil
}

func (s linkShape) encodeLink(target Target) any {
	token := s.encode(target.Category(), target.PageID())
	if s.objectKey == "" {
		return token
	}
	out := map[string]any{s.objectKey: token}
	if name := target.PageName(); name != "" {
		out[schema.PageNameKey] = name
	}
	return out
}

func (s linkShape) loadValue(v any) (Reference, error) {
	if s.objectKey == "" {
		token, ok := v.(string)
		if !ok {
			return Reference{}, &MalformedLinkError{Token: fmt.Sprint(v), Reason: "link is not a string"}
		}
		return s.decode(token)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return Reference{}, &MalformedLinkError{Token: fmt.Sprint(v), Reason: "link is not an object"}
	}
	token, ok := obj[s.objectKey].(string)
	if !ok {
		return Reference{}, &MalformedLinkError{Container: obj, Reason: fmt.Sprintf("key %q was missing or not a string", s.objectKey)}
	}
	ref, err := s.decode(token)
	if err != nil {
		return Reference{}, err
	}
	if name, ok := obj[schema.PageNameKey].(string); ok {
		ref.Name = name
	}
	return ref, nil
}

func (s linkShape) loadLink(container map[string]any, key string) (Reference, error) {
	v, ok := container[key]
	if !ok || v == nil {
		return Reference{}, &MalformedLinkError{Container: container, Reason: fmt.Sprintf("no link under key %q", key)}
	}
	return s.loadValue(v)
}

func (s linkShape) loadLinkArray(array []any) ([]Reference, error) {
	out := make([]Reference, len(array))
	for i, v := range array {
		ref, err := s.loadValue(v)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		out[i] = ref
	}
	return out, nil
}

// LinkDescriptor describes the embedded link object a codec writes, or returns
// nil when the codec writes bare tokens.
func LinkDescriptor(objectKey string) *schema.ObjectDescriptor {
	if objectKey == "" {
		return nil
	}
	return &schema.ObjectDescriptor{
		Name:          "Link",
		Documentation: "An object used when linking to another object.",
		Fields: []schema.FieldDescriptor{
			{Key: schema.PageNameKey, TypeName: string(schema.String), Documentation: "Display name of the linked page."},
			{Key: objectKey, TypeName: string(schema.String), Documentation: "Token addressing the linked page."},
		},
	}
}
