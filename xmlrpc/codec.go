package xmlrpc

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mdzio/go-logging"

	"github.com/mdzio/go-xmlrpc/model"
)

var log = logging.Get("xmlrpc-codec")

// Decoder converts XML-RPC values into logical values. The zero value is
// ready to use. A Decoder holds no state and can be used concurrently.
type Decoder struct {
	// Location is used for dateTime.iso8601 values without zone offset. If
	// nil, UTC is used.
	Location *time.Location
}

// Decode converts an XML-RPC value into a logical value of type t with the
// zero Decoder. If t is nil, AnyType is used.
func Decode(v *Value, t model.Type) (model.Value, error) {
	var d Decoder
	return d.Decode(v, t)
}

// Decode converts an XML-RPC value into a logical value of type t. The type
// is needed to decode arrays and structs: elements and members are decoded
// with the element and field types. Unknown struct members are skipped, struct
// fields missing on the wire keep their default value. If t is nil, AnyType
// is used.
func (d *Decoder) Decode(v *Value, t model.Type) (model.Value, error) {
	if t == nil {
		t = model.AnyType
	}
	return d.decode(v, t, "")
}

func (d *Decoder) location() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func (d *Decoder) decode(v *Value, t model.Type, path string) (model.Value, error) {
	if v == nil {
		return nil, &model.Error{Kind: model.ErrMalformedInput, Path: path, Msg: "Missing value"}
	}
	// programmatically built values have no name
	if v.XMLName.Local != "" && !isValueName(v.XMLName.Local) {
		return nil, &model.Error{
			Kind: model.ErrMalformedInput,
			Path: path,
			Tag:  v.XMLName.Local,
			Msg:  "Not a value element: " + v.XMLName.Local,
		}
	}
	tags := v.typeTags()
	switch {
	case len(tags) == 0:
		return nil, &model.Error{Kind: model.ErrMalformedInput, Path: path, Msg: "Value without data type"}
	case len(tags) > 1:
		return nil, &model.Error{
			Kind: model.ErrMalformedInput,
			Path: path,
			Msg:  "Multiple data types in value: " + strings.Join(tags, ", "),
		}
	}
	tag := tags[0]

	switch tag {
	case "nil":
		return model.Nil, nil
	case "array":
		return d.decodeArray(v.Array, t, path)
	case "struct":
		return d.decodeStruct(v.Struct, t, path)
	}

	kind, ok := scalarKinds[tag]
	if !ok {
		return nil, &model.Error{
			Kind: model.ErrUnknownType,
			Path: path,
			Tag:  tag,
			Msg:  "Unknown data type: " + tag,
		}
	}
	if !accepts(t, kind) {
		return nil, mismatch(tag, t, path)
	}
	text := v.text(tag)
	invalid := func() error {
		return &model.Error{
			Kind: model.ErrFormat,
			Path: path,
			Tag:  tag,
			Msg:  fmt.Sprintf("Invalid %s: %s", tag, text),
		}
	}

	switch kind {
	case model.StringKind:
		return model.String(text), nil
	case model.IntKind:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return nil, invalid()
		}
		if t.Kind() == model.I8Kind {
			return model.I8(i), nil
		}
		return model.Int(i), nil
	case model.I8Kind:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, invalid()
		}
		return model.I8(i), nil
	case model.DoubleKind:
		s := strings.TrimSpace(text)
		if isHexFloat(s) {
			return nil, invalid()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, invalid()
		}
		return model.Double(f), nil
	case model.BoolKind:
		return model.Bool(text == "1"), nil
	case model.DateTimeKind:
		ts, ok := parseDateTime(text, d.location())
		if !ok {
			return nil, invalid()
		}
		return model.DateTime{Time: ts}, nil
	case model.Base64Kind:
		b, err := base64.StdEncoding.DecodeString(stripSpace(text))
		if err != nil {
			return nil, &model.Error{Kind: model.ErrFormat, Path: path, Tag: tag, Msg: "Invalid base64", Err: err}
		}
		return model.Base64(b), nil
	}
	// not reached, all scalar kinds are handled above
	return nil, mismatch(tag, t, path)
}

func (d *Decoder) decodeArray(a *Array, t model.Type, path string) (model.Value, error) {
	elem := model.AnyType
	if at, ok := t.(*model.ArrayType); ok {
		elem = at.Elem
	} else if t.Kind() != model.AnyKind {
		return nil, mismatch("array", t, path)
	}
	if a.Data == nil {
		return nil, &model.Error{Kind: model.ErrMalformedInput, Path: path, Msg: "Array without data element"}
	}
	out := make(model.Array, len(a.Data.Values))
	for i, e := range a.Data.Values {
		ev, err := d.decode(e, elem, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

func (d *Decoder) decodeStruct(s *Struct, t model.Type, path string) (model.Value, error) {
	st, ok := t.(*model.StructType)
	if !ok && t.Kind() != model.AnyKind {
		return nil, mismatch("struct", t, path)
	}
	var out *model.Struct
	if st != nil {
		out = st.New()
	} else {
		out = &model.Struct{Members: []model.Member{}}
	}
	for _, m := range s.Members {
		if m == nil {
			return nil, &model.Error{Kind: model.ErrMalformedInput, Path: path, Msg: "Missing struct member"}
		}
		mpath := m.Name
		if path != "" {
			mpath = path + "." + m.Name
		}
		if st == nil {
			mv, err := d.decode(m.Value, model.AnyType, mpath)
			if err != nil {
				return nil, err
			}
			out.Set(m.Name, mv)
			continue
		}
		idx, ok := st.Lookup(m.Name)
		if !ok {
			log.Tracef("Skipping unknown struct member: %s", mpath)
			continue
		}
		mv, err := d.decode(m.Value, st.Field(idx).Type, mpath)
		if err != nil {
			return nil, err
		}
		out.Members[idx].Value = mv
	}
	return out, nil
}

var scalarKinds = map[string]model.Kind{
	"string":           model.StringKind,
	"int":              model.IntKind,
	"i4":               model.IntKind,
	"i8":               model.I8Kind,
	"double":           model.DoubleKind,
	"boolean":          model.BoolKind,
	"dateTime.iso8601": model.DateTimeKind,
	"base64":           model.Base64Kind,
}

// accepts reports whether a wire value of kind k can be decoded into type t.
// int and i4 widen into i8.
func accepts(t model.Type, k model.Kind) bool {
	switch t.Kind() {
	case model.AnyKind:
		return true
	case model.I8Kind:
		return k == model.I8Kind || k == model.IntKind
	}
	return t.Kind() == k
}

func mismatch(tag string, t model.Type, path string) error {
	return &model.Error{
		Kind: model.ErrTypeMismatch,
		Path: path,
		Tag:  tag,
		Msg:  fmt.Sprintf("Cannot decode %s into %s", tag, t),
	}
}

// isHexFloat reports whether s carries a 0x prefix, which strconv.ParseFloat
// accepts but XML-RPC doubles do not.
func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

// Encode converts a logical value into an XML-RPC value. A nil Value is
// encoded as nil. Struct members keep their order. An error is only returned
// for values that are not part of the closed set of logical value types.
func Encode(v model.Value) (*Value, error) {
	switch val := v.(type) {
	case nil, model.NilValue:
		return NewNil(), nil
	case model.String:
		return NewString(string(val)), nil
	case model.Int:
		return NewInt(int32(val)), nil
	case model.I8:
		return NewI8(int64(val)), nil
	case model.Double:
		return NewDouble(float64(val)), nil
	case model.Bool:
		return NewBool(bool(val)), nil
	case model.DateTime:
		return NewDateTime(formatDateTime(val.Time)), nil
	case model.Base64:
		return NewBase64(val), nil
	case model.Array:
		values := make([]*Value, len(val))
		for i, e := range val {
			ev, err := Encode(e)
			if err != nil {
				return nil, err
			}
			values[i] = ev
		}
		return NewArray(values...), nil
	case *model.Struct:
		if val == nil {
			return NewNil(), nil
		}
		members := make([]*Member, len(val.Members))
		for i, m := range val.Members {
			mv, err := Encode(m.Value)
			if err != nil {
				return nil, err
			}
			members[i] = &Member{Name: m.Name, Value: mv}
		}
		return NewStruct(members...), nil
	}
	return nil, &model.Error{
		Kind: model.ErrUnsupportedType,
		Msg:  fmt.Sprintf("Encoding of type %T is not supported", v),
	}
}

// Marshal converts native data types (see model.NewValue) into an XML-RPC
// value.
func Marshal(in interface{}) (*Value, error) {
	v, err := model.NewValue(in)
	if err != nil {
		return nil, err
	}
	return Encode(v)
}
