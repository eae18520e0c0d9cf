package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"

	"github.com/mdzio/go-xmlrpc/model"
)

// max. size of a value document: 10 MB
const valueSizeLimit = 10 * 1024 * 1024

const iso88591Header = "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n"

// ParseValue reads an XML document with a value element as root. The
// character encoding of the XML declaration is honoured. The name of the root
// element is compared case-insensitive.
func ParseValue(r io.Reader) (*Value, error) {
	return parseValue(r, valueSizeLimit)
}

func parseValue(r io.Reader, limit int64) (*Value, error) {
	buf, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("Reading of XML-RPC value failed: %v", err)
	}
	if int64(len(buf)) > limit {
		return nil, fmt.Errorf("Value document exceeds size limit of %d bytes", limit)
	}
	if log.TraceEnabled() {
		// attention: log message is probably ISO8859-1 encoded!
		log.Tracef("Value XML: %s", string(buf))
	}

	dec := xml.NewDecoder(bytes.NewReader(buf))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("Decoding of XML-RPC value failed: %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !isValueName(start.Name.Local) {
			return nil, &model.Error{
				Kind: model.ErrMalformedInput,
				Tag:  start.Name.Local,
				Msg:  "Not a value element: " + start.Name.Local,
			}
		}
		v := &Value{}
		err = dec.DecodeElement(v, &start)
		if err != nil {
			var merr *model.Error
			if errors.As(err, &merr) {
				return nil, err
			}
			return nil, fmt.Errorf("Decoding of XML-RPC value failed: %v", err)
		}
		log.Debugf("Parsed XML-RPC value of type %s", v.typeTagString())
		return v, nil
	}
}

// WriteValue writes v as UTF-8 encoded XML without declaration.
func WriteValue(w io.Writer, v *Value) error {
	enc := xml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("Encoding of XML-RPC value failed: %v", err)
	}
	return nil
}

// WriteValueISO88591 writes v as ISO8859-1 encoded XML document. Characters
// not representable in ISO8859-1 cause an error.
func WriteValueISO88591(w io.Writer, v *Value) error {
	tw := charmap.ISO8859_1.NewEncoder().Writer(w)

	// write xml header
	if _, err := io.WriteString(tw, iso88591Header); err != nil {
		return fmt.Errorf("Writing of XML header failed: %v", err)
	}

	// encode value to xml
	enc := xml.NewEncoder(tw)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("Encoding of XML-RPC value failed: %v", err)
	}
	if c, ok := tw.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("Encoding of XML-RPC value failed: %v", err)
		}
	}
	return nil
}

func (v *Value) typeTagString() string {
	tags := v.typeTags()
	if len(tags) == 0 {
		return "<none>"
	}
	return tags[0]
}
