package model

import (
	"fmt"
	"strings"
)

// Type describes the expected shape of a decoded value. Implementations are
// the primitive descriptors (StringType, IntType, ...), AnyType, *ArrayType
// and *StructType. Descriptors are immutable and can be shared.
type Type interface {
	Kind() Kind
	String() string
}

type basicType Kind

func (t basicType) Kind() Kind     { return Kind(t) }
func (t basicType) String() string { return Kind(t).String() }

// Primitive type descriptors.
var (
	StringType   Type = basicType(StringKind)
	IntType      Type = basicType(IntKind)
	I8Type       Type = basicType(I8Kind)
	DoubleType   Type = basicType(DoubleKind)
	BoolType     Type = basicType(BoolKind)
	DateTimeType Type = basicType(DateTimeKind)
	Base64Type   Type = basicType(Base64Kind)

	// AnyType accepts every XML-RPC value. The wire tag alone decides the
	// kind of the decoded value.
	AnyType Type = basicType(AnyKind)
)

// ArrayType describes an array with elements of type Elem.
type ArrayType struct {
	Elem Type
}

// ArrayOf creates an array type descriptor.
func ArrayOf(elem Type) *ArrayType {
	if elem == nil {
		panic("ArrayOf: element type is nil")
	}
	return &ArrayType{Elem: elem}
}

// Kind implements Type.
func (t *ArrayType) Kind() Kind { return ArrayKind }

func (t *ArrayType) String() string {
	return "array of " + t.Elem.String()
}

// Field describes a named member of a struct type.
type Field struct {
	Name string
	Type Type
}

// StructType describes a record with named fields. It is the explicit schema
// used to map XML-RPC struct members: fields are encoded in declaration order
// and looked up by exact name while decoding.
type StructType struct {
	fields []Field
	index  map[string]int
}

// StructOf creates a struct type descriptor. Empty or duplicate field names
// and missing field types cause a panic.
func StructOf(fields ...Field) *StructType {
	t := &StructType{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			panic(fmt.Sprintf("StructOf: field %d has no name", i))
		}
		if f.Type == nil {
			panic(fmt.Sprintf("StructOf: field %s has no type", f.Name))
		}
		if _, ok := t.index[f.Name]; ok {
			panic(fmt.Sprintf("StructOf: duplicate field %s", f.Name))
		}
		t.fields[i] = f
		t.index[f.Name] = i
	}
	return t
}

// Kind implements Type.
func (t *StructType) Kind() Kind { return StructKind }

// NumField returns the number of fields.
func (t *StructType) NumField() int { return len(t.fields) }

// Field returns the i'th field.
func (t *StructType) Field(i int) Field { return t.fields[i] }

// Lookup returns the index of the field with the specified name. The name is
// matched case-sensitive.
func (t *StructType) Lookup(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

func (t *StructType) String() string {
	var sb strings.Builder
	sb.WriteString("struct{")
	for i, f := range t.fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(f.Name)
		sb.WriteByte(' ')
		sb.WriteString(f.Type.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Zero returns the default value for the type t. Reference shapes (base64,
// arrays, structs and AnyType) default to Nil.
func Zero(t Type) Value {
	switch t.Kind() {
	case StringKind:
		return String("")
	case IntKind:
		return Int(0)
	case I8Kind:
		return I8(0)
	case DoubleKind:
		return Double(0)
	case BoolKind:
		return Bool(false)
	case DateTimeKind:
		return DateTime{}
	}
	return Nil
}

// New returns a struct value with all fields of t set to their default.
func (t *StructType) New() *Struct {
	s := &Struct{Members: make([]Member, len(t.fields))}
	for i, f := range t.fields {
		s.Members[i] = Member{Name: f.Name, Value: Zero(f.Type)}
	}
	return s
}

// TypeOf returns the shape of v. An array whose elements do not share one
// shape gets the element type AnyType, as do empty arrays. Nil yields AnyType.
func TypeOf(v Value) Type {
	switch val := v.(type) {
	case String:
		return StringType
	case Int:
		return IntType
	case I8:
		return I8Type
	case Double:
		return DoubleType
	case Bool:
		return BoolType
	case DateTime:
		return DateTimeType
	case Base64:
		return Base64Type
	case Array:
		return ArrayOf(elemTypeOf(val))
	case *Struct:
		if val == nil {
			return AnyType
		}
		fs := make([]Field, 0, len(val.Members))
		seen := make(map[string]bool, len(val.Members))
		for _, m := range val.Members {
			if m.Name == "" || seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			fs = append(fs, Field{Name: m.Name, Type: TypeOf(m.Value)})
		}
		return StructOf(fs...)
	}
	return AnyType
}

func elemTypeOf(a Array) Type {
	if len(a) == 0 {
		return AnyType
	}
	first := TypeOf(a[0])
	for _, e := range a[1:] {
		if !SameType(first, TypeOf(e)) {
			return AnyType
		}
	}
	return first
}

// SameType reports whether a and b describe the same shape.
func SameType(a, b Type) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && SameType(at.Elem, bt.Elem)
	case *StructType:
		bt, ok := b.(*StructType)
		if !ok || len(at.fields) != len(bt.fields) {
			return false
		}
		for i, f := range at.fields {
			g := bt.fields[i]
			if f.Name != g.Name || !SameType(f.Type, g.Type) {
				return false
			}
		}
	}
	return true
}
