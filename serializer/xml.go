/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package serializer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// XMLCodec handles an ArrayOf{Type} root element wrapping one element per entity
type XMLCodec struct {
	indent string
}

// XML creates a new XML codec
func XML() *XMLCodec {
	return &XMLCodec{indent: "  "}
}

// Format returns the codec format identifier
func (c *XMLCodec) Format() string {
	return "xml"
}

// Marshal encodes items under an ArrayOf{Type} root element
func (c *XMLCodec) Marshal(items any) ([]byte, error) {
	rv := reflect.ValueOf(items)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("xml codec: expected a slice, got %T", items)
	}
	elemName := elementName(rv.Type().Elem())

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", c.indent)

	root := xml.StartElement{Name: xml.Name{Local: "ArrayOf" + elemName}}
	if err := encoder.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("failed to encode XML: %w", err)
	}
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.Kind() == reflect.Pointer && item.IsNil() {
			continue
		}
		start := xml.StartElement{Name: xml.Name{Local: elemName}}
		if err := encoder.EncodeElement(item.Interface(), start); err != nil {
			return nil, fmt.Errorf("failed to encode XML element %d: %w", i, err)
		}
	}
	if err := encoder.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("failed to encode XML: %w", err)
	}
	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("failed to encode XML: %w", err)
	}

	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Unmarshal decodes every child of the root element into out
func (c *XMLCodec) Unmarshal(data []byte, out any) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("xml codec: expected a pointer to a slice, got %T", out)
	}
	slice := ptr.Elem()
	elemType := slice.Type().Elem()

	decoder := xml.NewDecoder(bytes.NewReader(data))

	if err := seekRoot(decoder); err != nil {
		return err
	}

	result := reflect.MakeSlice(slice.Type(), 0, 0)
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to parse XML: unterminated root element")
			}
			return fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			item := reflect.New(elemType)
			if err := decoder.DecodeElement(item.Interface(), &t); err != nil {
				return fmt.Errorf("failed to parse XML element <%s>: %w", t.Name.Local, err)
			}
			result = reflect.Append(result, item.Elem())
		case xml.EndElement:
			slice.Set(result)
			return nil
		}
	}
}

func seekRoot(decoder *xml.Decoder) error {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("failed to parse XML: missing root element: %w", err)
		}
		if _, ok := tok.(xml.StartElement); ok {
			return nil
		}
	}
}

func elementName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "Item"
	}
	return t.Name()
}
