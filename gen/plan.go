package gen

import (
	"fmt"

	"github.com/hyperpage/pagegen/schema"
)

// Strategy selects how a field is read from and written to a document.
type Strategy int

const (
	// RawValue stores the primitive value as-is.
	RawValue Strategy = iota + 1
	// RawArray stores an array of primitive values.
	RawArray
	// NestedDocument stores the value's own serialized document.
	NestedDocument
	// NestedDocumentArray stores an array of serialized documents.
	NestedDocumentArray
	// LinkEncoding stores a link produced by the codec; only the id is kept in memory.
	LinkEncoding
	// LinkEncodingArray stores an array of links.
	LinkEncodingArray
)

func (s Strategy) String() string {
	switch s {
	case RawValue:
		return "raw"
	case RawArray:
		return "raw-array"
	case NestedDocument:
		return "nested"
	case NestedDocumentArray:
		return "nested-array"
	case LinkEncoding:
		return "link"
	case LinkEncodingArray:
		return "link-array"
	default:
		return "unknown"
	}
}

// StrategyFor is the serialization policy table, indexed by kind and shape.
func StrategyFor(kind schema.Kind, array bool) Strategy {
	switch kind {
	case schema.KindPrimitive:
		if array {
			return RawArray
		}
		return RawValue
	case schema.KindNestedValue:
		if array {
			return NestedDocumentArray
		}
		return NestedDocument
	case schema.KindPageReference:
		if array {
			return LinkEncodingArray
		}
		return LinkEncoding
	}
	return 0
}

type FieldPlan struct {
	Field    schema.FieldDescriptor
	Kind     schema.Kind
	Strategy Strategy

	// Primitive is set for primitive fields.
	Primitive schema.Primitive
	// Target is the referenced or nested descriptor; nil for primitives.
	Target *schema.ObjectDescriptor

	// GoName is the struct field name.
	GoName string
	// ResolverName is the method returning the linked page(s). Set on page
	// reference fields only.
	ResolverName string
	// ParamName is the constructor parameter and local variable name.
	ParamName string
}

// TargetGoName is the Go type name of the referenced or nested descriptor.
func (f *FieldPlan) TargetGoName() string {
	if f.Target == nil {
		return ""
	}
	return GoName(f.Target.Name)
}

type TypePlan struct {
	Desc   *schema.ObjectDescriptor
	GoName string
	Fields []*FieldPlan
	Nested []*TypePlan
}

func (t *TypePlan) IsPage() bool {
	return t.Desc.IsPage()
}

// Walk visits t and all its nested plans, depth first.
func (t *TypePlan) Walk(fn func(*TypePlan)) {
	fn(t)
	for _, n := range t.Nested {
		n.Walk(fn)
	}
}

// Links lists the fields which link to pages.
func (t *TypePlan) Links() []*FieldPlan {
	var out []*FieldPlan
	for _, f := range t.Fields {
		if f.Kind == schema.KindPageReference {
			out = append(out, f)
		}
	}
	return out
}

// EnclosingError reports a descriptor nested inside a name that no descriptor has.
type EnclosingError struct {
	Object    string
	Enclosing string
}

func (e *EnclosingError) Error() string {
	return fmt.Sprintf("object %q is declared inside unknown object %q", e.Object, e.Enclosing)
}

// Plan classifies every field of set and builds one TypePlan tree per top-level
// descriptor, in load order. Any unresolved type aborts planning.
func Plan(set *schema.Set) ([]*TypePlan, error) {
	if err := set.Check(); err != nil {
		return nil, err
	}
	for _, d := range set.Descriptors() {
		if !d.IsTopLevel() {
			if _, ok := set.Lookup(d.EnclosingName); !ok {
				return nil, &EnclosingError{Object: d.Name, Enclosing: d.EnclosingName}
			}
		}
	}

	var out []*TypePlan
	for _, d := range set.TopLevel() {
		tp, err := planType(set, d)
		if err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, nil
}

func planType(set *schema.Set, d *schema.ObjectDescriptor) (*TypePlan, error) {
	tp := &TypePlan{
		Desc:   d,
		GoName: GoName(d.Name),
	}

	reserved := valueReserved
	if d.IsPage() {
		reserved = pageReserved
	}
	fieldNames := newUniqueNamer(reserved)
	paramNames := newUniqueNamer(paramReserved)

	for _, f := range d.DeclaredFields() {
		kind, target, err := set.Resolve(f)
		if err != nil {
			return nil, err
		}
		fp := &FieldPlan{
			Field:    f,
			Kind:     kind,
			Strategy: StrategyFor(kind, f.IsArray),
			Target:   target,
		}
		if kind == schema.KindPrimitive {
			fp.Primitive, _ = schema.ParsePrimitive(f.TypeName)
		}
		fp.GoName = fieldNames.name(GoName(f.Key))
		fp.ParamName = paramNames.name(lowerFirst(GoName(f.Key)))
		tp.Fields = append(tp.Fields, fp)
	}
	// resolvers share the field namespace, and are named after every field has
	// claimed its name
	for _, fp := range tp.Links() {
		fp.ResolverName = fieldNames.name("Resolve" + fp.GoName)
	}

	for _, n := range set.NestedIn(d.Name) {
		np, err := planType(set, n)
		if err != nil {
			return nil, err
		}
		tp.Nested = append(tp.Nested, np)
	}
	return tp, nil
}
