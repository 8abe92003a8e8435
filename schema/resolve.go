package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the classification of a field's type against a loaded Set.
type Kind int

const (
	KindPrimitive Kind = iota + 1
	KindPageReference
	KindNestedValue
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindPageReference:
		return "page-reference"
	case KindNestedValue:
		return "nested-value"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Primitive is one of the built-in scalar value types.
type Primitive string

const (
	Boolean Primitive = "Boolean"
	Integer Primitive = "Integer"
	Float   Primitive = "Float"
	Double  Primitive = "Double"
	String  Primitive = "String"
)

var primitives = []Primitive{Boolean, Integer, Float, Double, String}

// ParsePrimitive matches a type name against the primitive set, ignoring case.
func ParsePrimitive(typeName string) (Primitive, bool) {
	for _, p := range primitives {
		if strings.EqualFold(string(p), typeName) {
			return p, true
		}
	}
	return "", false
}

var ErrUnresolvedType = errors.New("unresolved type")

// UnresolvedTypeError is returned when a field names a type which is neither
// primitive nor present in the loaded Set. It is fatal to generation.
type UnresolvedTypeError struct {
	Type   string
	Object string
	Field  string
}

func (e *UnresolvedTypeError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s.%s: type %q does not have a loaded descriptor", e.Object, e.Field, e.Type)
	}
	return fmt.Sprintf("type %q does not have a loaded descriptor", e.Type)
}

func (e *UnresolvedTypeError) Is(target error) bool {
	return target == ErrUnresolvedType
}

// Classify reports how a field's type resolves against the set. Answers are
// computed fresh on every call.
func (s *Set) Classify(f FieldDescriptor) (Kind, error) {
	k, _, err := s.Resolve(f)
	return k, err
}

// Resolve classifies a field and returns the descriptor its type refers to. The
// descriptor is nil for primitives.
func (s *Set) Resolve(f FieldDescriptor) (Kind, *ObjectDescriptor, error) {
	if _, ok := ParsePrimitive(f.TypeName); ok {
		return KindPrimitive, nil, nil
	}
	d, ok := s.byName[f.TypeName]
	if !ok {
		return 0, nil, &UnresolvedTypeError{Type: f.TypeName, Field: f.Key}
	}
	if d.IsPage() {
		return KindPageReference, d, nil
	}
	return KindNestedValue, d, nil
}

// Check classifies every field of every descriptor, returning the first failure.
func (s *Set) Check() error {
	for _, d := range s.descs {
		for _, f := range d.Fields {
			if _, err := s.Classify(f); err != nil {
				var ute *UnresolvedTypeError
				if errors.As(err, &ute) {
					ute.Object = d.Name
				}
				return err
			}
		}
	}
	return nil
}
