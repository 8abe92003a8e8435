package pageutil

import (
	"fmt"

	"github.com/hyperpage/pagegen/linkcodec"
)

// Decoder builds a value from a nested document.
type Decoder[T any] func(doc map[string]any, codec linkcodec.Codec) (T, error)

func loadArray[T any](doc map[string]any, key string, conv func(string, any) (T, error)) ([]T, error) {
	arr, err := GetArray(doc, key)
	if err != nil || arr == nil {
		return nil, err
	}
	out := make([]T, len(arr))
	for i, v := range arr {
		if v == nil {
			continue
		}
		out[i], err = conv(fmt.Sprintf("%s[%d]", key, i), v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Array loaders leave null elements at the zero value.

func LoadBoolArray(doc map[string]any, key string) ([]bool, error) {
	return loadArray(doc, key, asBool)
}

func LoadIntArray(doc map[string]any, key string) ([]int64, error) {
	return loadArray(doc, key, asInt)
}

func LoadFloatArray(doc map[string]any, key string) ([]float32, error) {
	return loadArray(doc, key, func(k string, v any) (float32, error) {
		f, err := asDouble(k, v)
		return float32(f), err
	})
}

func LoadDoubleArray(doc map[string]any, key string) ([]float64, error) {
	return loadArray(doc, key, asDouble)
}

func LoadStringArray(doc map[string]any, key string) ([]string, error) {
	return loadArray(doc, key, asString)
}

// LoadObject decodes the nested document under key. A missing or null value
// yields the zero T without calling decode.
func LoadObject[T any](doc map[string]any, key string, codec linkcodec.Codec, decode Decoder[T]) (T, error) {
	var zero T
	obj, err := GetObject(doc, key)
	if err != nil || obj == nil {
		return zero, err
	}
	v, err := decode(obj, codec)
	if err != nil {
		return zero, fmt.Errorf("decoding %q: %w", key, err)
	}
	return v, nil
}

// LoadObjectArray decodes the array of nested documents under key.
func LoadObjectArray[T any](doc map[string]any, key string, codec linkcodec.Codec, decode Decoder[T]) ([]T, error) {
	arr, err := GetArray(doc, key)
	if err != nil || arr == nil {
		return nil, err
	}
	out, err := DecodeList(arr, codec, decode)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", key, err)
	}
	return out, nil
}

// DecodeList decodes every element of docs. Null elements stay at the zero T.
func DecodeList[T any](docs []any, codec linkcodec.Codec, decode Decoder[T]) ([]T, error) {
	out := make([]T, len(docs))
	for i, v := range docs {
		if v == nil {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &TypeError{Key: fmt.Sprintf("[%d]", i), Want: "an object", Value: v}
		}
		d, err := decode(obj, codec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

// MakeArray converts a slice of raw values to its document form. A nil slice
// stays nil, which serializes as null.
func MakeArray[T any](values []T) []any {
	if values == nil {
		return nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// checkCategory fails with a *linkcodec.MalformedLinkError when ref addresses a
// page outside category.
func checkCategory(ref linkcodec.Reference, category string, codec linkcodec.Codec) error {
	if ref.Cat == category {
		return nil
	}
	return &linkcodec.MalformedLinkError{
		Token:  codec.Encode(ref.Cat, ref.ID),
		Reason: fmt.Sprintf("links to category %q, expected %q", ref.Cat, category),
	}
}

// LoadLinkID reads the link under key and returns the id it addresses. The
// link must be present and point into category.
func LoadLinkID(doc map[string]any, key string, codec linkcodec.Codec, category string) (int64, error) {
	ref, err := codec.LoadLink(doc, key)
	if err != nil {
		return 0, err
	}
	if err := checkCategory(ref, category, codec); err != nil {
		return 0, err
	}
	return ref.ID, nil
}

// LoadLinkIDs reads the array of links under key, each of which must point
// into category. A missing or null array yields nil.
func LoadLinkIDs(doc map[string]any, key string, codec linkcodec.Codec, category string) ([]int64, error) {
	arr, err := GetArray(doc, key)
	if err != nil || arr == nil {
		return nil, err
	}
	refs, err := codec.LoadLinkArray(arr)
	if err != nil {
		return nil, fmt.Errorf("links under %q: %w", key, err)
	}
	out := make([]int64, len(refs))
	for i, ref := range refs {
		if err := checkCategory(ref, category, codec); err != nil {
			return nil, fmt.Errorf("links under %q: element %d: %w", key, i, err)
		}
		out[i] = ref.ID
	}
	return out, nil
}
