package model

import (
	"time"
)

// Kind identifies the variant of a logical value or of a type descriptor.
type Kind int

// Kinds of logical values. AnyKind is only used by type descriptors.
const (
	NilKind Kind = iota
	StringKind
	IntKind
	I8Kind
	DoubleKind
	BoolKind
	DateTimeKind
	Base64Kind
	ArrayKind
	StructKind
	AnyKind
)

var kindNames = [...]string{
	NilKind:      "nil",
	StringKind:   "string",
	IntKind:      "int",
	I8Kind:       "i8",
	DoubleKind:   "double",
	BoolKind:     "boolean",
	DateTimeKind: "dateTime.iso8601",
	Base64Kind:   "base64",
	ArrayKind:    "array",
	StructKind:   "struct",
	AnyKind:      "any",
}

// String returns the XML-RPC tag name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// Value is a logical XML-RPC value. The set of implementations is closed:
// Nil, String, Int, I8, Double, Bool, DateTime, Base64, Array and *Struct. A
// nil Value is treated like Nil.
type Value interface {
	Kind() Kind
	value()
}

// NilValue is the type of Nil.
type NilValue struct{}

// Nil is the absent value.
var Nil = NilValue{}

// String is an XML-RPC string.
type String string

// Int is an XML-RPC int (or i4).
type Int int32

// I8 is an XML-RPC i8.
type I8 int64

// Double is an XML-RPC double.
type Double float64

// Bool is an XML-RPC boolean.
type Bool bool

// DateTime is an XML-RPC dateTime.iso8601.
type DateTime struct {
	time.Time
}

// NewDateTime wraps a time.Time.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// Base64 is an XML-RPC base64 value.
type Base64 []byte

// Array is an XML-RPC array.
type Array []Value

// Member is a named field of a Struct.
type Member struct {
	Name  string
	Value Value
}

// Struct is an XML-RPC struct. The members keep their order.
type Struct struct {
	Members []Member
}

// NewStruct creates a Struct with the specified members.
func NewStruct(members ...Member) *Struct {
	return &Struct{Members: members}
}

// Len returns the number of members.
func (s *Struct) Len() int {
	return len(s.Members)
}

// Get returns the value of the member with the specified name. The name is
// matched case-sensitive.
func (s *Struct) Get(name string) (Value, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of the member with the specified name or appends a
// new member.
func (s *Struct) Set(name string, v Value) {
	for i := range s.Members {
		if s.Members[i].Name == name {
			s.Members[i].Value = v
			return
		}
	}
	s.Members = append(s.Members, Member{Name: name, Value: v})
}

func (NilValue) Kind() Kind { return NilKind }
func (String) Kind() Kind   { return StringKind }
func (Int) Kind() Kind      { return IntKind }
func (I8) Kind() Kind       { return I8Kind }
func (Double) Kind() Kind   { return DoubleKind }
func (Bool) Kind() Kind     { return BoolKind }
func (DateTime) Kind() Kind { return DateTimeKind }
func (Base64) Kind() Kind   { return Base64Kind }
func (Array) Kind() Kind    { return ArrayKind }
func (*Struct) Kind() Kind  { return StructKind }

func (NilValue) value() {}
func (String) value()   {}
func (Int) value()      {}
func (I8) value()       {}
func (Double) value()   {}
func (Bool) value()     {}
func (DateTime) value() {}
func (Base64) value()   {}
func (Array) value()    {}
func (*Struct) value()  {}

// KindOf returns the kind of v. A nil Value or a nil *Struct has kind
// NilKind.
func KindOf(v Value) Kind {
	if v == nil {
		return NilKind
	}
	if s, ok := v.(*Struct); ok && s == nil {
		return NilKind
	}
	return v.Kind()
}
