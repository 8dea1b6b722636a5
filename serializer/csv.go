/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package serializer

import (
	"bytes"
	"encoding"
	"encoding/csv"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// CSVCodec handles a header row of field names followed by one row per entity.
// Only exported fields that can be both formatted and parsed become columns.
type CSVCodec struct{}

// CSV creates a new CSV codec
func CSV() *CSVCodec {
	return &CSVCodec{}
}

// Format returns the codec format identifier
func (c *CSVCodec) Format() string {
	return "csv"
}

type csvColumn struct {
	name  string
	index []int
}

// Marshal encodes items with a header row
func (c *CSVCodec) Marshal(items any) ([]byte, error) {
	rv := reflect.ValueOf(items)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("csv codec: expected a slice, got %T", items)
	}
	columns, err := csvColumns(rv.Type().Elem())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.name
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to encode CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for i := 0; i < rv.Len(); i++ {
		item := reflect.Indirect(rv.Index(i))
		if !item.IsValid() {
			continue
		}
		for j, col := range columns {
			cell, err := formatCell(item.FieldByIndex(col.index))
			if err != nil {
				return nil, fmt.Errorf("failed to encode CSV row %d column %s: %w", i, col.name, err)
			}
			record[j] = cell
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to encode CSV row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes rows matching header names to fields case-insensitively.
// Unknown columns are ignored.
func (c *CSVCodec) Unmarshal(data []byte, out any) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("csv codec: expected a pointer to a slice, got %T", out)
	}
	slice := ptr.Elem()
	elemType := slice.Type().Elem()

	columns, err := csvColumns(elemType)
	if err != nil {
		return err
	}

	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		slice.Set(reflect.MakeSlice(slice.Type(), 0, 0))
		return nil
	}

	byName := make(map[string]csvColumn, len(columns))
	for _, col := range columns {
		byName[strings.ToLower(col.name)] = col
	}
	mapping := make([]*csvColumn, len(records[0]))
	for i, name := range records[0] {
		if col, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
			mapping[i] = &col
		}
	}

	result := reflect.MakeSlice(slice.Type(), 0, len(records)-1)
	for rowNum, record := range records[1:] {
		item := reflect.New(structType(elemType)).Elem()
		for i, cell := range record {
			if i >= len(mapping) || mapping[i] == nil {
				continue
			}
			if err := parseCell(item.FieldByIndex(mapping[i].index), cell); err != nil {
				return fmt.Errorf("failed to parse CSV row %d column %s: %w", rowNum+1, mapping[i].name, err)
			}
		}
		if elemType.Kind() == reflect.Pointer {
			result = reflect.Append(result, item.Addr())
		} else {
			result = reflect.Append(result, item)
		}
	}
	slice.Set(result)
	return nil
}

func structType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func csvColumns(elemType reflect.Type) ([]csvColumn, error) {
	st := structType(elemType)
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("csv codec: element type %s is not a struct", elemType)
	}

	var columns []csvColumn
	depths := map[string]int{}
	collectColumns(st, nil, &columns, depths)
	return columns, nil
}

// collectColumns flattens promoted fields of embedded structs into columns.
// A field closer to the outer struct shadows a deeper one with the same name.
func collectColumns(st reflect.Type, parent []int, columns *[]csvColumn, depths map[string]int) {
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag, tagged := f.Tag.Lookup("csv")
		if tag == "-" {
			continue
		}
		index := append(append([]int{}, parent...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && !scalarField(f.Type) && tag == "" {
			collectColumns(f.Type, index, columns, depths)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tagged && tag != "" {
			name = tag
		}
		if !scalarField(f.Type) {
			continue
		}

		depth := len(index)
		if prev, ok := depths[name]; ok {
			if prev <= depth {
				continue
			}
			for j, col := range *columns {
				if col.name == name {
					*columns = append((*columns)[:j], (*columns)[j+1:]...)
					break
				}
			}
		}
		depths[name] = depth
		*columns = append(*columns, csvColumn{name: name, index: index})
	}
}

// scalarField reports whether t round-trips through a single text cell.
func scalarField(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func formatCell(v reflect.Value) (string, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", nil
		}
		v = v.Elem()
	}
	if v.Type().Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}
		return string(text), nil
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()), nil
	}
	return "", fmt.Errorf("unsupported type %s", v.Type())
}

func parseCell(v reflect.Value, cell string) error {
	if v.Kind() == reflect.Pointer {
		if cell == "" {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		v.Set(reflect.New(v.Type().Elem()))
		v = v.Elem()
	}
	if reflect.PointerTo(v.Type()).Implements(textUnmarshalerType) {
		if cell == "" {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(cell))
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(cell)
		return nil
	case reflect.Bool:
		if cell == "" {
			v.SetBool(false)
			return nil
		}
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cell == "" {
			v.SetInt(0)
			return nil
		}
		n, err := strconv.ParseInt(cell, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if cell == "" {
			v.SetUint(0)
			return nil
		}
		n, err := strconv.ParseUint(cell, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		if cell == "" {
			v.SetFloat(0)
			return nil
		}
		f, err := strconv.ParseFloat(cell, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
		return nil
	}
	return fmt.Errorf("unsupported type %s", v.Type())
}
