package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Query helps to extract values from a logical value tree. The first error
// encountered is kept and all further accessors return zero values.
type Query struct {
	value Value
	err   *error
	// faster lookup for structs
	lookup map[string]*Query
	// cache arrays
	array []*Query
}

// Q creates a new Query for the specified Value.
func Q(v Value) *Query {
	var err error
	return &Query{value: v, err: &err}
}

// Err returns the first encountered error.
func (q *Query) Err() error {
	return *q.err
}

func (q *Query) absent() bool {
	return q.Err() != nil || KindOf(q.value) == NilKind
}

// IsNil returns true, if there is no previous error and the value is absent.
func (q *Query) IsNil() bool {
	return q.Err() == nil && KindOf(q.value) == NilKind
}

// Int gets an XML-RPC int value. An i8 value is accepted, if it fits into 32
// bits.
func (q *Query) Int() int {
	// previous error or empty optional?
	if q.absent() {
		return 0
	}
	switch v := q.value.(type) {
	case Int:
		return int(v)
	case I8:
		if v < math.MinInt32 || v > math.MaxInt32 {
			*q.err = fmt.Errorf("Int out of range: %d", v)
			return 0
		}
		return int(v)
	}
	*q.err = errors.New("Not an int")
	return 0
}

// I8 gets an XML-RPC i8 or int value.
func (q *Query) I8() int64 {
	// previous error or empty optional?
	if q.absent() {
		return 0
	}
	switch v := q.value.(type) {
	case Int:
		return int64(v)
	case I8:
		return int64(v)
	}
	*q.err = errors.New("Not an i8")
	return 0
}

// Bool gets an XML-RPC boolean value.
func (q *Query) Bool() bool {
	// previous error or empty optional?
	if q.absent() {
		return false
	}
	b, ok := q.value.(Bool)
	if !ok {
		*q.err = errors.New("Not a bool")
		return false
	}
	return bool(b)
}

// String gets an XML-RPC string value.
func (q *Query) String() string {
	// previous error or empty optional?
	if q.absent() {
		return ""
	}
	s, ok := q.value.(String)
	if !ok {
		*q.err = errors.New("Not a string")
		return ""
	}
	return string(s)
}

// Float64 gets an XML-RPC double value.
func (q *Query) Float64() float64 {
	// previous error or empty optional?
	if q.absent() {
		return 0
	}
	d, ok := q.value.(Double)
	if !ok {
		*q.err = errors.New("Not a double")
		return 0
	}
	return float64(d)
}

// Time gets an XML-RPC dateTime.iso8601 value.
func (q *Query) Time() time.Time {
	// previous error or empty optional?
	if q.absent() {
		return time.Time{}
	}
	t, ok := q.value.(DateTime)
	if !ok {
		*q.err = errors.New("Not a dateTime.iso8601")
		return time.Time{}
	}
	return t.Time
}

// Bytes gets an XML-RPC base64 value.
func (q *Query) Bytes() []byte {
	// previous error or empty optional?
	if q.absent() {
		return nil
	}
	b, ok := q.value.(Base64)
	if !ok {
		*q.err = errors.New("Not a base64")
		return nil
	}
	return []byte(b)
}

// Any returns the value as native data type (see Native) or nil for an empty
// optional.
func (q *Query) Any() interface{} {
	// previous error or empty optional?
	if q.absent() {
		return nil
	}
	return Native(q.value)
}

// Map returns all members of an XML-RPC struct. For duplicate member names
// the last member wins.
func (q *Query) Map() map[string]*Query {
	// previous error or empty optional?
	if q.absent() {
		// return empty map
		return nil
	}
	// is map already created?
	if q.lookup != nil {
		return q.lookup
	}
	// create map
	s, ok := q.value.(*Struct)
	if !ok {
		*q.err = errors.New("Not a struct")
		return nil
	}
	q.lookup = make(map[string]*Query)
	for _, m := range s.Members {
		q.lookup[m.Name] = &Query{value: m.Value, err: q.err}
	}
	return q.lookup
}

// key gets the specified member from a struct.
func (q *Query) key(name string, must bool) *Query {
	m := q.Map()
	// previous error?
	if q.Err() != nil {
		return &Query{err: q.err}
	}
	// lookup
	f, ok := m[name]
	if !ok {
		if must {
			*q.err = fmt.Errorf("Field not found: %s", name)
		}
		return &Query{err: q.err}
	}
	return f
}

// Key sets an error, if the specified member is missing.
func (q *Query) Key(name string) *Query {
	return q.key(name, true)
}

// TryKey does not set an error, if the specified member is missing.
func (q *Query) TryKey(name string) *Query {
	return q.key(name, false)
}

// Slice returns all array elements.
func (q *Query) Slice() []*Query {
	// previous error or empty optional?
	if q.absent() {
		// return empty slice
		return nil
	}
	// array already created?
	if q.array != nil {
		return q.array
	}
	// create array
	a, ok := q.value.(Array)
	if !ok {
		*q.err = errors.New("Not an array")
		return nil
	}
	q.array = make([]*Query, len(a))
	for i, v := range a {
		q.array[i] = &Query{value: v, err: q.err}
	}
	return q.array
}

// Strings returns a string array.
func (q *Query) Strings() []string {
	// previous error or empty optional?
	if q.absent() {
		// return empty slice
		return nil
	}
	// create array
	var r []string
	s := q.Slice()
	for _, e := range s {
		r = append(r, e.String())
	}
	if q.Err() != nil {
		// return empty slice
		return nil
	}
	return r
}

// Idx returns the array element at i.
func (q *Query) Idx(i int) *Query {
	s := q.Slice()
	// previous error
	if q.Err() != nil {
		return &Query{err: q.err}
	}
	// check bounds
	if i < 0 || i >= len(s) {
		*q.err = fmt.Errorf("Index out of bounds (array length: %d): %d", len(s), i)
		return &Query{err: q.err}
	}
	return s[i]
}

// Value returns the wrapped Value.
func (q *Query) Value() Value {
	return q.value
}
