package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/mdzio/go-xmlrpc/model"
)

var personType = model.StructOf(
	model.Field{Name: "Name", Type: model.StringType},
	model.Field{Name: "Age", Type: model.IntType},
	model.Field{Name: "Tags", Type: model.ArrayOf(model.StringType)},
)

func parse(t *testing.T, s string) *Value {
	t.Helper()
	v, err := ParseValue(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parsing of %s failed: %v", s, err)
	}
	return v
}

func TestDecodeScalar(t *testing.T) {
	cases := []struct {
		in      string
		typ     model.Type
		want    model.Value
		wantErr error
	}{
		{"<value><string>Ada</string></value>", model.StringType, model.String("Ada"), nil},
		{"<value><string> a&amp;b </string></value>", model.StringType, model.String(" a&b "), nil},
		{"<value><string></string></value>", model.StringType, model.String(""), nil},
		{"<value><int>36</int></value>", model.IntType, model.Int(36), nil},
		{"<value><i4>-7</i4></value>", model.IntType, model.Int(-7), nil},
		{"<value><int> 5 </int></value>", model.IntType, model.Int(5), nil},
		{"<value><int>+5</int></value>", model.IntType, model.Int(5), nil},
		{"<value><int>2147483648</int></value>", model.IntType, nil, model.ErrFormat},
		{"<value><int>abc</int></value>", model.IntType, nil, model.ErrFormat},
		{"<value><int>1,000</int></value>", model.IntType, nil, model.ErrFormat},
		{"<value><i8>4294967296</i8></value>", model.I8Type, model.I8(4294967296), nil},
		{"<value><i8>x</i8></value>", model.I8Type, nil, model.ErrFormat},
		{"<value><int>5</int></value>", model.I8Type, model.I8(5), nil},
		{"<value><i8>5</i8></value>", model.IntType, nil, model.ErrTypeMismatch},
		{"<value><double>-12.5</double></value>", model.DoubleType, model.Double(-12.5), nil},
		{"<value><double>1e3</double></value>", model.DoubleType, model.Double(1000), nil},
		{"<value><double>1,5</double></value>", model.DoubleType, nil, model.ErrFormat},
		{"<value><double>0x1p4</double></value>", model.DoubleType, nil, model.ErrFormat},
		{"<value><double>-0X1P4</double></value>", model.DoubleType, nil, model.ErrFormat},
		{"<value><double>0.5e1</double></value>", model.DoubleType, model.Double(5), nil},
		{"<value><boolean>1</boolean></value>", model.BoolType, model.Bool(true), nil},
		{"<value><boolean>0</boolean></value>", model.BoolType, model.Bool(false), nil},
		{"<value><boolean>true</boolean></value>", model.BoolType, model.Bool(false), nil},
		{"<value><boolean>anything-not-1</boolean></value>", model.BoolType, model.Bool(false), nil},
		{"<value><boolean/></value>", model.BoolType, model.Bool(false), nil},
		{
			"<value><dateTime.iso8601>19980717T14:08:55</dateTime.iso8601></value>",
			model.DateTimeType,
			model.DateTime{Time: time.Date(1998, 7, 17, 14, 8, 55, 0, time.UTC)},
			nil,
		},
		{"<value><dateTime.iso8601>yesterday</dateTime.iso8601></value>", model.DateTimeType, nil, model.ErrFormat},
		{"<value><dateTime.iso8601>2024-03-05T13:25:36.123Z</dateTime.iso8601></value>", model.DateTimeType, nil, model.ErrFormat},
		{"<value><base64>SGVsbG8gV29ybGQh</base64></value>", model.Base64Type, model.Base64("Hello World!"), nil},
		{"<value><base64>SGVsbG8g\n  V29ybGQh</base64></value>", model.Base64Type, model.Base64("Hello World!"), nil},
		{"<value><base64>%%%</base64></value>", model.Base64Type, nil, model.ErrFormat},
		{"<value><nil/></value>", model.IntType, model.Nil, nil},
		{"<value><nil/></value>", personType, model.Nil, nil},
		{"<value><string>x</string></value>", model.IntType, nil, model.ErrTypeMismatch},
		{"<value><i4>1</i4></value>", model.AnyType, model.Int(1), nil},
		{"<value><i4>1</i4></value>", nil, model.Int(1), nil},
	}
	for _, c := range cases {
		got, err := Decode(parse(t, c.in), c.typ)
		if c.wantErr != nil {
			if !errors.Is(err, c.wantErr) {
				t.Errorf("expected error %v for %s, got: %v", c.wantErr, c.in, err)
			}
			if got != nil {
				t.Errorf("unexpected result on error: %v", got)
			}
			continue
		}
		if err != nil {
			t.Errorf("unexpected error for %s: %v", c.in, err)
			continue
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("unexpected value for %s (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		in      *Value
		typ     model.Type
		wantErr error
		wantTag string
	}{
		{nil, model.AnyType, model.ErrMalformedInput, ""},
		{&Value{}, model.AnyType, model.ErrMalformedInput, ""},
		{&Value{Int: NewInt(1).Int, String: NewString("a").String}, model.AnyType, model.ErrMalformedInput, ""},
		{&Value{Int: NewInt(1).Int, XMLName: xml.Name{Local: "values"}}, model.IntType, model.ErrMalformedInput, "values"},
		{&Value{Unknown: "frobnicate"}, model.AnyType, model.ErrUnknownType, "frobnicate"},
		{&Value{Array: &Array{}}, model.ArrayOf(model.IntType), model.ErrMalformedInput, ""},
		{NewArray(nil), model.ArrayOf(model.IntType), model.ErrMalformedInput, ""},
		{NewStruct(nil), personType, model.ErrMalformedInput, ""},
		{NewStruct(&Member{Name: "Name"}), personType, model.ErrMalformedInput, ""},
		{NewArray(), model.IntType, model.ErrTypeMismatch, "array"},
		{NewArray(), personType, model.ErrTypeMismatch, "array"},
		{NewStruct(), model.ArrayOf(model.IntType), model.ErrTypeMismatch, "struct"},
		{NewStruct(), model.StringType, model.ErrTypeMismatch, "struct"},
	}
	for i, c := range cases {
		got, err := Decode(c.in, c.typ)
		if !errors.Is(err, c.wantErr) {
			t.Errorf("test case %d: expected error %v, got: %v", i+1, c.wantErr, err)
			continue
		}
		if got != nil {
			t.Errorf("test case %d: unexpected result: %v", i+1, got)
		}
		var merr *model.Error
		if errors.As(err, &merr) && merr.Tag != c.wantTag {
			t.Errorf("test case %d: unexpected tag: %s", i+1, merr.Tag)
		}
	}
}

func TestDecodeValueName(t *testing.T) {
	// the value element name is matched case-insensitive
	for _, s := range []string{"<value><int>1</int></value>", "<VALUE><int>1</int></VALUE>", "<Value><int>1</int></Value>"} {
		v := &Value{}
		if err := xml.Unmarshal([]byte(s), v); err != nil {
			t.Fatal(err)
		}
		got, err := Decode(v, model.IntType)
		assert.NoError(t, err)
		assert.Equal(t, model.Int(1), got)
	}

	v := &Value{}
	if err := xml.Unmarshal([]byte("<values><int>1</int></values>"), v); err != nil {
		t.Fatal(err)
	}
	_, err := Decode(v, model.IntType)
	assert.True(t, errors.Is(err, model.ErrMalformedInput), "unexpected error: %v", err)

	_, err = ParseValue(strings.NewReader("<values><int>1</int></values>"))
	assert.True(t, errors.Is(err, model.ErrMalformedInput), "unexpected error: %v", err)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(parse(t, "<value><frobnicate>x</frobnicate></value>"), model.AnyType)
	var merr *model.Error
	if !errors.As(err, &merr) {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, model.ErrUnknownType, merr.Kind)
	assert.Equal(t, "frobnicate", merr.Tag)

	// tags are case-sensitive
	_, err = Decode(parse(t, "<value><Int>1</Int></value>"), model.IntType)
	assert.True(t, errors.Is(err, model.ErrUnknownType))
}

func TestDecodeStruct(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *model.Struct
	}{
		{
			"unknown member",
			"<value><struct><member><name>Ghost</name><value><int>42</int></value></member></struct></value>",
			personType.New(),
		},
		{
			"unknown member with unknown type",
			"<value><struct><member><name>Ghost</name><value><frobnicate/></value></member></struct></value>",
			personType.New(),
		},
		{
			"case-sensitive names",
			"<value><struct><member><name>name</name><value><string>Ada</string></value></member></struct></value>",
			personType.New(),
		},
		{
			"member order",
			"<value><struct>" +
				"<member><name>Age</name><value><int>36</int></value></member>" +
				"<member><name>Name</name><value><string>Ada</string></value></member>" +
				"</struct></value>",
			&model.Struct{Members: []model.Member{
				{Name: "Name", Value: model.String("Ada")},
				{Name: "Age", Value: model.Int(36)},
				{Name: "Tags", Value: model.Nil},
			}},
		},
		{
			"repeated member",
			"<value><struct>" +
				"<member><name>Age</name><value><int>1</int></value></member>" +
				"<member><name>Age</name><value><int>2</int></value></member>" +
				"</struct></value>",
			&model.Struct{Members: []model.Member{
				{Name: "Name", Value: model.String("")},
				{Name: "Age", Value: model.Int(2)},
				{Name: "Tags", Value: model.Nil},
			}},
		},
		{
			"nested array",
			"<value><struct>" +
				"<member><name>Tags</name><value><array><data>" +
				"<value><string>a</string></value><value><string>b</string></value>" +
				"</data></array></value></member>" +
				"</struct></value>",
			&model.Struct{Members: []model.Member{
				{Name: "Name", Value: model.String("")},
				{Name: "Age", Value: model.Int(0)},
				{Name: "Tags", Value: model.Array{model.String("a"), model.String("b")}},
			}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Decode(parse(t, c.in), personType)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("unexpected value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrorPath(t *testing.T) {
	outer := model.StructOf(
		model.Field{Name: "People", Type: model.ArrayOf(personType)},
	)
	in := "<value><struct><member><name>People</name><value><array><data>" +
		"<value><struct></struct></value>" +
		"<value><struct><member><name>Tags</name><value><array><data>" +
		"<value><string>a</string></value><value><int>1</int></value>" +
		"</data></array></value></member></struct></value>" +
		"</data></array></value></member></struct></value>"
	_, err := Decode(parse(t, in), outer)
	var merr *model.Error
	if !errors.As(err, &merr) {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, model.ErrTypeMismatch, merr.Kind)
	assert.Equal(t, "People[1].Tags[1]", merr.Path)
	assert.Equal(t, "XML-RPC type mismatch at People[1].Tags[1]: Cannot decode int into string", err.Error())
}

func TestDecodeAny(t *testing.T) {
	in := "<value><struct>" +
		"<member><name>b</name><value><i4>1</i4></value></member>" +
		"<member><name>a</name><value><array><data>" +
		"<value><string>x</string></value><value><double>1.5</double></value><value><nil/></value>" +
		"</data></array></value></member>" +
		"</struct></value>"
	got, err := Decode(parse(t, in), model.AnyType)
	if err != nil {
		t.Fatal(err)
	}
	want := &model.Struct{Members: []model.Member{
		{Name: "b", Value: model.Int(1)},
		{Name: "a", Value: model.Array{model.String("x"), model.Double(1.5), model.Nil}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected value (-want +got):\n%s", diff)
	}
}

// roundTrip encodes v, writes and parses the XML and decodes it against t.
func roundTrip(t *testing.T, d *Decoder, v model.Value, typ model.Type) model.Value {
	t.Helper()
	ev, err := Encode(v)
	if err != nil {
		t.Fatalf("encoding of %#v failed: %v", v, err)
	}
	var buf bytes.Buffer
	if err := WriteValue(&buf, ev); err != nil {
		t.Fatal(err)
	}
	pv, err := ParseValue(&buf)
	if err != nil {
		t.Fatal(err)
	}
	dv, err := d.Decode(pv, typ)
	if err != nil {
		t.Fatalf("decoding of %#v failed: %v", v, err)
	}
	return dv
}

func TestRoundTrip(t *testing.T) {
	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []model.Value{
		model.String("Ada"),
		model.String(""),
		model.String("<&>\"' \t\r\n spaced "),
		model.String("Grüße"),
		model.Int(0),
		model.Int(math.MaxInt32),
		model.Int(math.MinInt32),
		model.I8(math.MaxInt64),
		model.I8(math.MinInt64),
		model.Double(0.1),
		model.Double(-1e-10),
		model.Double(math.MaxFloat64),
		model.Double(math.SmallestNonzeroFloat64),
		model.Bool(true),
		model.Bool(false),
		model.DateTime{Time: ts},
		model.Base64{0, 1, 2, 0xff},
		model.Array{},
		model.Array{model.Int(1), model.Int(2), model.Int(3)},
		model.Array{model.Array{model.String("a")}, model.Array{}},
		&model.Struct{Members: []model.Member{}},
		&model.Struct{Members: []model.Member{
			{Name: "Name", Value: model.String("Ada")},
			{Name: "Age", Value: model.Int(36)},
			{Name: "Tags", Value: model.Array{model.String("math"), model.String("engines")}},
		}},
	}
	var d Decoder
	for _, v := range cases {
		got := roundTrip(t, &d, v, model.TypeOf(v))
		if diff := cmp.Diff(v, got); diff != "" {
			t.Errorf("round trip failed (-want +got):\n%s", diff)
		}
	}
}

func TestRoundTripNil(t *testing.T) {
	var d Decoder
	for _, typ := range []model.Type{model.AnyType, model.IntType, model.ArrayOf(model.IntType), personType} {
		assert.Equal(t, model.Nil, roundTrip(t, &d, model.Nil, typ))
		assert.Equal(t, model.Nil, roundTrip(t, &d, nil, typ))
	}
	// nil members and elements
	got := roundTrip(t, &d, model.Array{nil, model.Int(1)}, model.ArrayOf(model.IntType))
	assert.Equal(t, model.Array{model.Nil, model.Int(1)}, got)
}

func TestRoundTripDateTime(t *testing.T) {
	var d Decoder

	// sub-second precision is lost
	in := time.Date(2020, 1, 2, 3, 4, 5, 999999999, time.UTC)
	got := roundTrip(t, &d, model.DateTime{Time: in}, model.DateTimeType)
	assert.True(t, got.(model.DateTime).Equal(in.Truncate(time.Second)), "unexpected time: %v", got)

	// the offset is lost, the wall clock is kept
	loc := time.FixedZone("CET", 3600)
	in = time.Date(2020, 1, 2, 3, 4, 5, 0, loc)
	got = roundTrip(t, &d, model.DateTime{Time: in}, model.DateTimeType)
	assert.True(t, got.(model.DateTime).Equal(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)))

	d.Location = loc
	got = roundTrip(t, &d, model.DateTime{Time: in}, model.DateTimeType)
	assert.True(t, got.(model.DateTime).Equal(in))
}

func TestEncodeExample(t *testing.T) {
	v := &model.Struct{Members: []model.Member{
		{Name: "Name", Value: model.String("Ada")},
		{Name: "Age", Value: model.Int(36)},
	}}
	ev, err := Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteValue(&buf, ev); err != nil {
		t.Fatal(err)
	}
	want := "<value><struct><member><name>Name</name><value><string>Ada</string></value></member>" +
		"<member><name>Age</name><value><int>36</int></value></member></struct></value>"
	assert.Equal(t, want, buf.String())
}

func TestEncode(t *testing.T) {
	cases := []xmlTestCase{
		{mustEncode(t, model.I8(1<<40)), "<value><i8>1099511627776</i8></value>"},
		{mustEncode(t, model.Double(-0.25)), "<value><double>-0.25</double></value>"},
		{mustEncode(t, model.Bool(true)), "<value><boolean>1</boolean></value>"},
		{
			mustEncode(t, model.DateTime{Time: time.Date(2024, 3, 5, 13, 25, 36, 500, time.UTC)}),
			"<value><dateTime.iso8601>2024-03-05T13:25:36</dateTime.iso8601></value>",
		},
		{mustEncode(t, model.Base64("Hello World!")), "<value><base64>SGVsbG8gV29ybGQh</base64></value>"},
		{mustEncode(t, nil), "<value><nil></nil></value>"},
		{mustEncode(t, (*model.Struct)(nil)), "<value><nil></nil></value>"},
		{mustEncode(t, model.Array(nil)), "<value><array><data></data></array></value>"},
		{mustEncode(t, &model.Struct{}), "<value><struct></struct></value>"},
	}
	xmlRunMarshalTests(t, cases)
}

func mustEncode(t *testing.T, v model.Value) *Value {
	t.Helper()
	ev, err := Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	return ev
}

// foreignValue satisfies model.Value without being one of its variants.
type foreignValue struct {
	model.Int
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := Encode(foreignValue{model.Int(1)})
	assert.True(t, errors.Is(err, model.ErrUnsupportedType), "unexpected error: %v", err)

	_, err = Encode(model.Array{model.Int(1), foreignValue{}})
	assert.True(t, errors.Is(err, model.ErrUnsupportedType), "unexpected error: %v", err)
}

func TestMarshal(t *testing.T) {
	v, err := Marshal(map[string]interface{}{"b": []int{1}, "a": "x"})
	if err != nil {
		t.Fatal(err)
	}
	xmlRunMarshalTests(t, []xmlTestCase{{
		v,
		"<value><struct><member><name>a</name><value><string>x</string></value></member>" +
			"<member><name>b</name><value><array><data><value><int>1</int></value></data></array></value></member></struct></value>",
	}})

	_, err = Marshal(struct{ A int }{1})
	assert.True(t, errors.Is(err, model.ErrUnsupportedType), "unexpected error: %v", err)
	_, err = Marshal([]interface{}{1, 2i})
	assert.True(t, errors.Is(err, model.ErrUnsupportedType), "unexpected error: %v", err)
}
