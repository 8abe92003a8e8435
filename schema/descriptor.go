package schema

import (
	"fmt"
	"strings"
)

// Implicit fields supplied by the page runtime rather than by schema authors.
const (
	PageNameKey = "name"
	PageIDKey   = "id"
)

// ObjectDescriptor describes one object of a hypermedia JSON API.
//
// A non-empty Category marks a page type: addressable, and cached by (category,
// id). An empty Category marks a nested value type, always embedded inline in
// its parent document.
//
// A non-empty EnclosingName means the object is only ever emitted nested inside
// the named descriptor.
type ObjectDescriptor struct {
	Name          string
	Fields        []FieldDescriptor
	Documentation string
	Category      string
	EnclosingName string
}

// FieldDescriptor describes a single keyed value of an object.
type FieldDescriptor struct {
	Key           string
	TypeName      string
	IsArray       bool
	Documentation string
}

func (d *ObjectDescriptor) IsPage() bool {
	return d.Category != ""
}

func (d *ObjectDescriptor) IsTopLevel() bool {
	return d.EnclosingName == ""
}

// IsImplicit reports whether the field is one of the implicit page fields
// (name, id), which the runtime base supplies for page types.
func (d *ObjectDescriptor) IsImplicit(f FieldDescriptor) bool {
	if !d.IsPage() {
		return false
	}
	return f.Key == PageNameKey || f.Key == PageIDKey
}

// DeclaredFields returns the fields that generated code carries for this
// object: every field, minus the implicit name and id on page types.
func (d *ObjectDescriptor) DeclaredFields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(d.Fields))
	for _, f := range d.Fields {
		if d.IsImplicit(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Set is an immutable collection of object descriptors which were loaded
// together. Field types are resolved against the whole set.
type Set struct {
	descs  []*ObjectDescriptor
	byName map[string]*ObjectDescriptor
}

// NewSet builds a Set, preserving the order of descs. Descriptors are copied;
// later changes to the arguments are not observed by the Set.
func NewSet(descs []ObjectDescriptor) (*Set, error) {
	s := &Set{
		descs:  make([]*ObjectDescriptor, 0, len(descs)),
		byName: make(map[string]*ObjectDescriptor, len(descs)),
	}
	for i := range descs {
		d := descs[i]
		if d.Name == "" {
			return nil, fmt.Errorf("descriptor %d has no object name", i)
		}
		if _, ok := s.byName[d.Name]; ok {
			return nil, fmt.Errorf("duplicate object descriptor: %s", d.Name)
		}
		d.Fields = append([]FieldDescriptor(nil), d.Fields...)
		s.descs = append(s.descs, &d)
		s.byName[d.Name] = &d
	}
	return s, nil
}

// Lookup finds a descriptor by exact name.
func (s *Set) Lookup(name string) (*ObjectDescriptor, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// Descriptors returns every descriptor, in load order.
func (s *Set) Descriptors() []*ObjectDescriptor {
	return append([]*ObjectDescriptor(nil), s.descs...)
}

// TopLevel returns the descriptors that are not enclosed in another, in load order.
func (s *Set) TopLevel() []*ObjectDescriptor {
	var out []*ObjectDescriptor
	for _, d := range s.descs {
		if d.IsTopLevel() {
			out = append(out, d)
		}
	}
	return out
}

// NestedIn returns the descriptors whose enclosing name is name, in load order.
func (s *Set) NestedIn(name string) []*ObjectDescriptor {
	var out []*ObjectDescriptor
	for _, d := range s.descs {
		if d.EnclosingName == name {
			out = append(out, d)
		}
	}
	return out
}

// Pages returns every page type descriptor, nested or not.
func (s *Set) Pages() []*ObjectDescriptor {
	var out []*ObjectDescriptor
	for _, d := range s.descs {
		if d.IsPage() {
			out = append(out, d)
		}
	}
	return out
}

// ByCategory finds the page descriptor for a link category.
func (s *Set) ByCategory(category string) (*ObjectDescriptor, bool) {
	for _, d := range s.descs {
		if d.IsPage() && d.Category == category {
			return d, true
		}
	}
	return nil, false
}

func (s *Set) String() string {
	names := make([]string, len(s.descs))
	for i, d := range s.descs {
		names[i] = d.Name
	}
	return "Set[" + strings.Join(names, ",") + "]"
}

// DescriptorOfDescriptor describes the descriptor file format itself, in its own terms.
func DescriptorOfDescriptor() []ObjectDescriptor {
	return []ObjectDescriptor{
		{
			Name:          "ObjectDescriptor",
			Documentation: "An API description for an object.",
			Fields: []FieldDescriptor{
				{Key: "object", TypeName: "String", Documentation: "The full name of the object."},
				{Key: "values", TypeName: "FieldDescriptor", IsArray: true, Documentation: "An array of values in the object."},
				{Key: "details", TypeName: "String", Documentation: "The API documentation explaining the object."},
				{Key: "category", TypeName: "String", Documentation: "The category name of the object, used in links. If null, this is a nested value which can not be loaded as a page."},
				{Key: "inside", TypeName: "String", Documentation: "The object this one is always nested inside of. If null, it is emitted on its own."},
			},
		},
		{
			Name:          "FieldDescriptor",
			Documentation: "A single API value.",
			EnclosingName: "ObjectDescriptor",
			Fields: []FieldDescriptor{
				{Key: "key", TypeName: "String", Documentation: "The name of the key."},
				{Key: "type", TypeName: "String", Documentation: "The type of value."},
				{Key: "array", TypeName: "Boolean", Documentation: "If true, this value is an array."},
				{Key: "detail", TypeName: "String", Documentation: "The API documentation explaining the value."},
			},
		},
	}
}
