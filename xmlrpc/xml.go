package xmlrpc

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/mdzio/go-xmlrpc/model"
)

// Value represents an XML-RPC value element. Exactly one of the data type
// fields must be set.
type Value struct {
	I4       *string  `xml:"i4"`
	Int      *string  `xml:"int"`
	I8       *string  `xml:"i8"`
	Boolean  *string  `xml:"boolean"`
	String   *string  `xml:"string"`
	Double   *string  `xml:"double"`
	DateTime *string  `xml:"dateTime.iso8601"`
	Base64   *string  `xml:"base64"`
	Struct   *Struct  `xml:"struct"`
	Array    *Array   `xml:"array"`
	Nil      *Nil     `xml:"nil"`
	XMLName  xml.Name `xml:"value"`

	// Unknown holds the tag name of an unrecognized data type element found
	// while unmarshalling.
	Unknown string `xml:"-"`
}

// Nil represents the XML-RPC nil extension.
type Nil struct{}

// Struct represents an XML-RPC struct.
type Struct struct {
	Members []*Member `xml:"member"`
}

// Member represents an XML-RPC struct member.
type Member struct {
	Name  string `xml:"name"`
	Value *Value `xml:"value"`
}

// Array represents an XML-RPC array.
type Array struct {
	Data *Data `xml:"data"`
}

// Data holds the elements of an XML-RPC array.
type Data struct {
	Values []*Value `xml:"value"`
}

// NewString creates an XML-RPC string.
func NewString(s string) *Value {
	return &Value{String: &s}
}

// NewInt creates an XML-RPC int.
func NewInt(i int32) *Value {
	s := strconv.FormatInt(int64(i), 10)
	return &Value{Int: &s}
}

// NewI8 creates an XML-RPC i8.
func NewI8(i int64) *Value {
	s := strconv.FormatInt(i, 10)
	return &Value{I8: &s}
}

// NewDouble creates an XML-RPC double. The text contains no exponent.
func NewDouble(f float64) *Value {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return &Value{Double: &s}
}

// NewBool creates an XML-RPC boolean.
func NewBool(b bool) *Value {
	s := "0"
	if b {
		s = "1"
	}
	return &Value{Boolean: &s}
}

// NewDateTime creates an XML-RPC dateTime.iso8601 from already formatted text.
func NewDateTime(s string) *Value {
	return &Value{DateTime: &s}
}

// NewBase64 creates an XML-RPC base64.
func NewBase64(b []byte) *Value {
	s := base64.StdEncoding.EncodeToString(b)
	return &Value{Base64: &s}
}

// NewNil creates an XML-RPC nil.
func NewNil() *Value {
	return &Value{Nil: &Nil{}}
}

// NewArray creates an XML-RPC array.
func NewArray(values ...*Value) *Value {
	if values == nil {
		values = []*Value{}
	}
	return &Value{Array: &Array{Data: &Data{Values: values}}}
}

// NewStruct creates an XML-RPC struct.
func NewStruct(members ...*Member) *Value {
	if members == nil {
		members = []*Member{}
	}
	return &Value{Struct: &Struct{Members: members}}
}

// typeTags returns the tag names of all set data type fields.
func (v *Value) typeTags() []string {
	var tags []string
	add := func(set bool, tag string) {
		if set {
			tags = append(tags, tag)
		}
	}
	add(v.I4 != nil, "i4")
	add(v.Int != nil, "int")
	add(v.I8 != nil, "i8")
	add(v.Boolean != nil, "boolean")
	add(v.String != nil, "string")
	add(v.Double != nil, "double")
	add(v.DateTime != nil, "dateTime.iso8601")
	add(v.Base64 != nil, "base64")
	add(v.Struct != nil, "struct")
	add(v.Array != nil, "array")
	add(v.Nil != nil, "nil")
	add(v.Unknown != "", v.Unknown)
	return tags
}

// text returns the character data of the scalar field for tag.
func (v *Value) text(tag string) string {
	var p *string
	switch tag {
	case "i4":
		p = v.I4
	case "int":
		p = v.Int
	case "i8":
		p = v.I8
	case "boolean":
		p = v.Boolean
	case "string":
		p = v.String
	case "double":
		p = v.Double
	case "dateTime.iso8601":
		p = v.DateTime
	case "base64":
		p = v.Base64
	}
	if p == nil {
		return ""
	}
	return *p
}

func malformed(format string, a ...interface{}) error {
	return &model.Error{Kind: model.ErrMalformedInput, Msg: fmt.Sprintf(format, a...)}
}

// UnmarshalXML implements xml.Unmarshaler. The element name is not checked,
// but recorded in XMLName. More than one data type element is rejected.
func (v *Value) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*v = Value{XMLName: start.Name}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if tags := v.typeTags(); len(tags) > 0 {
				return malformed("Multiple data types in value: %s, %s", tags[0], t.Name.Local)
			}
			if err := v.unmarshalType(d, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (v *Value) unmarshalType(d *xml.Decoder, start xml.StartElement) error {
	text := func() (*string, error) {
		var s string
		err := d.DecodeElement(&s, &start)
		return &s, err
	}
	var err error
	switch tag := start.Name.Local; tag {
	case "i4":
		v.I4, err = text()
	case "int":
		v.Int, err = text()
	case "i8":
		v.I8, err = text()
	case "boolean":
		v.Boolean, err = text()
	case "string":
		v.String, err = text()
	case "double":
		v.Double, err = text()
	case "dateTime.iso8601":
		v.DateTime, err = text()
	case "base64":
		v.Base64, err = text()
	case "struct":
		v.Struct = &Struct{}
		err = d.DecodeElement(v.Struct, &start)
	case "array":
		v.Array = &Array{}
		err = d.DecodeElement(v.Array, &start)
	case "nil":
		v.Nil = &Nil{}
		err = d.Skip()
	default:
		v.Unknown = tag
		err = d.Skip()
	}
	return err
}

// UnmarshalXML implements xml.Unmarshaler. Exactly one data element is
// required.
func (a *Array) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*a = Array{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "data" {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			if a.Data != nil {
				return malformed("Multiple data elements in array")
			}
			a.Data = &Data{Values: []*Value{}}
			if err := d.DecodeElement(a.Data, &t); err != nil {
				return err
			}
		case xml.EndElement:
			if a.Data == nil {
				return malformed("Array without data element")
			}
			return nil
		}
	}
}

// UnmarshalXML implements xml.Unmarshaler. Exactly one name and one value
// element are required.
func (m *Member) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*m = Member{}
	var hasName bool
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				if hasName {
					return malformed("Multiple names in struct member: %s", m.Name)
				}
				hasName = true
				if err := d.DecodeElement(&m.Name, &t); err != nil {
					return err
				}
			case "value":
				if m.Value != nil {
					return malformed("Multiple values in struct member")
				}
				m.Value = &Value{}
				if err := d.DecodeElement(m.Value, &t); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if !hasName {
				return malformed("Struct member without name")
			}
			if m.Value == nil {
				return malformed("Struct member without value: %s", m.Name)
			}
			return nil
		}
	}
}

func isValueName(name string) bool {
	return strings.EqualFold(name, "value")
}
