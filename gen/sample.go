package gen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/schema"
)

// Sample links point into an id band real pages never use.
const (
	SampleLinkID        = 9999
	SampleLinkArrayBase = 99990
	SampleArrayLen      = 3
)

type Sample struct {
	Name     string
	Document map[string]any
}

// valueSource supplies the leaf values of a sample document. k is the array
// index, or -1 for a single value.
type valueSource interface {
	primitive(f schema.FieldDescriptor, k int) any
	link(target *schema.ObjectDescriptor, f schema.FieldDescriptor, k int) linkcodec.Reference
}

// placeholders fills documents with "<Type>" markers and links into the sample id band.
type placeholders struct{}

func (placeholders) primitive(f schema.FieldDescriptor, k int) any {
	if k < 0 {
		return "<" + f.TypeName + ">"
	}
	return fmt.Sprintf("<%s%d>", f.TypeName, k)
}

func (placeholders) link(target *schema.ObjectDescriptor, f schema.FieldDescriptor, k int) linkcodec.Reference {
	if k < 0 {
		return linkcodec.Reference{Cat: target.Category, ID: SampleLinkID, Name: "<" + f.TypeName + ">"}
	}
	return linkcodec.Reference{Cat: target.Category, ID: int64(SampleLinkArrayBase + k), Name: fmt.Sprintf("<%s%d>", f.TypeName, k)}
}

// SampleDocument builds the placeholder document for d. Every field of the
// descriptor appears, in terms of the codec's link shape. A nested value type
// which contains itself is cut off with null where it recurs; a recurring
// array keeps its length, with null elements.
func SampleDocument(set *schema.Set, d *schema.ObjectDescriptor, codec linkcodec.Codec) (map[string]any, error) {
	return sampleObject(set, d, codec, placeholders{}, map[string]bool{})
}

func sampleObject(set *schema.Set, d *schema.ObjectDescriptor, codec linkcodec.Codec, src valueSource, visiting map[string]bool) (map[string]any, error) {
	visiting[d.Name] = true
	defer delete(visiting, d.Name)

	out := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		kind, target, err := set.Resolve(f)
		if err != nil {
			var ute *schema.UnresolvedTypeError
			if errors.As(err, &ute) {
				ute.Object = d.Name
			}
			return nil, err
		}
		switch kind {
		case schema.KindPrimitive:
			if !f.IsArray {
				out[f.Key] = src.primitive(f, -1)
				continue
			}
			arr := make([]any, SampleArrayLen)
			for k := range arr {
				arr[k] = src.primitive(f, k)
			}
			out[f.Key] = arr
		case schema.KindPageReference:
			if !f.IsArray {
				out[f.Key] = codec.EncodeLink(src.link(target, f, -1))
				continue
			}
			arr := make([]any, SampleArrayLen)
			for k := range arr {
				arr[k] = codec.EncodeLink(src.link(target, f, k))
			}
			out[f.Key] = arr
		case schema.KindNestedValue:
			if visiting[target.Name] {
				// arrays keep their length, with each element cut off
				if f.IsArray {
					out[f.Key] = make([]any, SampleArrayLen)
				} else {
					out[f.Key] = nil
				}
				continue
			}
			if !f.IsArray {
				v, err := sampleObject(set, target, codec, src, visiting)
				if err != nil {
					return nil, err
				}
				out[f.Key] = v
				continue
			}
			arr := make([]any, SampleArrayLen)
			for k := range arr {
				v, err := sampleObject(set, target, codec, src, visiting)
				if err != nil {
					return nil, err
				}
				arr[k] = v
			}
			out[f.Key] = arr
		}
	}
	return out, nil
}

// Samples builds one placeholder document per top-level descriptor, in load order.
func Samples(set *schema.Set, codec linkcodec.Codec) ([]Sample, error) {
	return buildSamples(set, codec, placeholders{})
}

func buildSamples(set *schema.Set, codec linkcodec.Codec, src valueSource) ([]Sample, error) {
	var out []Sample
	for _, d := range set.TopLevel() {
		doc, err := sampleObject(set, d, codec, src, map[string]bool{})
		if err != nil {
			return nil, err
		}
		out = append(out, Sample{Name: d.Name, Document: doc})
	}
	return out, nil
}

// EncodeSample renders a sample document as JSON with keys sorted and the given
// number of spaces per indent level. An indent of zero produces compact output.
func EncodeSample(doc map[string]any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
