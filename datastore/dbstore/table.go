/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dbstore

import (
	"database/sql"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/suparena/persistence/datastore"
)

var (
	scannerType         = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// Column maps one struct field to a storage column
type Column struct {
	Name  string
	Key   bool
	index []int
	typ   reflect.Type
}

// Table describes how an entity type is laid out as rows.
type Table struct {
	Name    string
	Columns []Column
	key     int
	elem    reflect.Type
}

// Row holds one entity's column values in Table.Columns order.
type Row []any

// TableOf reflects the table layout of T from its `db` struct tags.
//
// A tag of "-" skips the field; an untagged exported field maps to its
// lowercased name. Fields of untagged embedded structs are promoted. The key column is the one tagged ",key", else the column
// named "id". The key field must be an integer.
func TableOf[T any](name string) (*Table, error) {
	elem := datastore.ElemType[T]()
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("dbstore: %s is not a struct type", elem)
	}
	if name == "" {
		return nil, fmt.Errorf("dbstore: table name for %s is empty", elem.Name())
	}

	t := &Table{Name: name, key: -1, elem: elem}
	t.collect(elem, nil, map[string]int{})

	for i, col := range t.Columns {
		if col.Key {
			t.key = i
			break
		}
	}
	if t.key < 0 {
		for i, col := range t.Columns {
			if strings.EqualFold(col.Name, "id") {
				t.Columns[i].Key = true
				t.key = i
				break
			}
		}
	}
	if t.key < 0 {
		return nil, fmt.Errorf("dbstore: %s has no key column", elem.Name())
	}
	switch t.Columns[t.key].typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return nil, fmt.Errorf("dbstore: key column %s of %s must be an integer", t.Columns[t.key].Name, elem.Name())
	}
	return t, nil
}

// collect appends the columns of st, flattening embedded structs the way
// encoding/json promotes their fields. Shallower fields shadow deeper ones.
func (t *Table) collect(st reflect.Type, parent []int, depths map[string]int) {
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag, tagged := f.Tag.Lookup("db")
		parts := strings.Split(tag, ",")
		if parts[0] == "-" {
			continue
		}
		index := append(append([]int{}, parent...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && !valueType(f.Type) && (!tagged || parts[0] == "") {
			t.collect(f.Type, index, depths)
			continue
		}
		if !f.IsExported() {
			continue
		}

		col := Column{Name: strings.ToLower(f.Name), index: index, typ: f.Type}
		if parts[0] != "" {
			col.Name = parts[0]
		}
		for _, opt := range parts[1:] {
			if opt == "key" {
				col.Key = true
			}
		}

		if prev, ok := depths[col.Name]; ok {
			if prev <= len(index) {
				continue
			}
			for j, existing := range t.Columns {
				if existing.Name == col.Name {
					t.Columns = append(t.Columns[:j], t.Columns[j+1:]...)
					break
				}
			}
		}
		depths[col.Name] = len(index)
		t.Columns = append(t.Columns, col)
	}
}

// valueType reports whether t is stored as a single column value
func valueType(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(scannerType) || pt.Implements(textUnmarshalerType) || pt.Implements(jsonUnmarshalerType)
}

// ColumnNames returns column names in row order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// KeyColumn returns the key column
func (t *Table) KeyColumn() Column {
	return t.Columns[t.key]
}

// KeyOf returns the key value of row
func (t *Table) KeyOf(row Row) int64 {
	return reflect.ValueOf(row[t.key]).Int()
}

// RowOf extracts the column values of entity, which may be a pointer.
func (t *Table) RowOf(entity any) (Row, error) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("dbstore: nil %s", t.elem.Name())
		}
		v = v.Elem()
	}
	if v.Type() != t.elem {
		return nil, fmt.Errorf("dbstore: table %s holds %s, got %s", t.Name, t.elem, v.Type())
	}
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		row[i] = v.FieldByIndex(col.index).Interface()
	}
	return row, nil
}

// ScanRow builds a row by handing scan one typed destination per column.
// The destinations point at fields of a fresh element, so sql.Scanner and
// json.Unmarshaler implementations on field types apply.
func (t *Table) ScanRow(scan func(dest ...any) error) (Row, error) {
	elem := reflect.New(t.elem).Elem()
	dest := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		dest[i] = elem.FieldByIndex(col.index).Addr().Interface()
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		row[i] = elem.FieldByIndex(col.index).Interface()
	}
	return row, nil
}

// MarshalRow encodes row as a JSON object keyed by column name.
func (t *Table) MarshalRow(row Row) ([]byte, error) {
	obj := make(map[string]any, len(t.Columns))
	for i, col := range t.Columns {
		obj[col.Name] = row[i]
	}
	return json.Marshal(obj)
}

// UnmarshalRow decodes a JSON object produced by MarshalRow. Missing columns
// keep their zero value.
func (t *Table) UnmarshalRow(data []byte) (Row, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return t.ScanRow(func(dest ...any) error {
		for i, col := range t.Columns {
			raw, ok := obj[col.Name]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, dest[i]); err != nil {
				return fmt.Errorf("column %s: %w", col.Name, err)
			}
		}
		return nil
	})
}

// entity converts row back into a T.
func entity[T any](t *Table, row Row) (T, error) {
	var zero T
	if len(row) != len(t.Columns) {
		return zero, fmt.Errorf("dbstore: table %s expects %d columns, row has %d", t.Name, len(t.Columns), len(row))
	}
	ptr := reflect.New(t.elem)
	elem := ptr.Elem()
	for i, col := range t.Columns {
		if row[i] == nil {
			continue
		}
		v := reflect.ValueOf(row[i])
		f := elem.FieldByIndex(col.index)
		switch {
		case v.Type().AssignableTo(f.Type()):
			f.Set(v)
		case v.Type().ConvertibleTo(f.Type()):
			f.Set(v.Convert(f.Type()))
		default:
			return zero, fmt.Errorf("dbstore: column %s: cannot assign %s to %s", col.Name, v.Type(), f.Type())
		}
	}

	var out any = ptr.Interface()
	if reflect.TypeOf((*T)(nil)).Elem().Kind() != reflect.Pointer {
		out = elem.Interface()
	}
	result, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("dbstore: table %s cannot produce %T", t.Name, zero)
	}
	return result, nil
}
