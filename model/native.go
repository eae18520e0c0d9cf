package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// NewValue creates a logical value from a native data type. Supported types:
// nil, Value, bool, all integer types, float32, float64, string, time.Time,
// []byte, []string, []int, []interface{} and map[string]interface{}. Members
// of maps are sorted by name. Integers that fit into 32 bits become Int, wider
// ones I8.
func NewValue(in interface{}) (Value, error) {
	switch val := in.(type) {
	case nil:
		return Nil, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return newInteger(int64(val)), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return I8(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return I8(val), nil
	case uint:
		return newUnsigned(uint64(val), in)
	case uint64:
		return newUnsigned(val, in)
	case float32:
		return Double(val), nil
	case float64:
		return Double(val), nil
	case string:
		return String(val), nil
	case time.Time:
		return DateTime{Time: val}, nil
	case []byte:
		if val == nil {
			return Nil, nil
		}
		return Base64(val), nil
	case []string:
		out := make(Array, len(val))
		for i, e := range val {
			out[i] = String(e)
		}
		return out, nil
	case []int:
		out := make(Array, len(val))
		for i, e := range val {
			out[i] = newInteger(int64(e))
		}
		return out, nil
	case []interface{}:
		out := make(Array, len(val))
		for i, e := range val {
			cv, err := NewValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]interface{}:
		names := make([]string, 0, len(val))
		for n := range val {
			names = append(names, n)
		}
		sort.Strings(names)
		out := &Struct{Members: make([]Member, len(names))}
		for i, n := range names {
			cv, err := NewValue(val[n])
			if err != nil {
				return nil, err
			}
			out.Members[i] = Member{Name: n, Value: cv}
		}
		return out, nil
	}
	return nil, newError(
		ErrUnsupportedType,
		fmt.Sprintf("Conversion of type %[1]T with value %[1]v is not supported", in),
	)
}

func newInteger(i int64) Value {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return Int(i)
	}
	return I8(i)
}

func newUnsigned(u uint64, in interface{}) (Value, error) {
	if u > math.MaxInt64 {
		return nil, newError(
			ErrUnsupportedType,
			fmt.Sprintf("Value %d of type %T exceeds the range of i8", u, in),
		)
	}
	return newInteger(int64(u)), nil
}

// Native converts a logical value into native data types: nil, string, int,
// int64, float64, bool, time.Time, []byte, []interface{} and
// map[string]interface{}.
func Native(v Value) interface{} {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int(val)
	case I8:
		return int64(val)
	case Double:
		return float64(val)
	case Bool:
		return bool(val)
	case DateTime:
		return val.Time
	case Base64:
		return []byte(val)
	case Array:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = Native(e)
		}
		return out
	case *Struct:
		if val == nil {
			return nil
		}
		out := make(map[string]interface{}, len(val.Members))
		for _, m := range val.Members {
			out[m.Name] = Native(m.Value)
		}
		return out
	}
	return nil
}
