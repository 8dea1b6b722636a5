/*
Package serializer converts entity collections to and from text.

A Codec is the untyped, format-specific half; file provider registrars hand one
out through CreateSerializer. Serializer[T] wraps a Codec with the typed,
fail-open contract used by the file data store:

	s := serializer.New[*catalog.Product](serializer.JSON())
	data, err := s.Serialize(products)
	back := s.Deserialize(data) // never fails; corrupt input yields an empty slice

Formats:
  - JSON: array of objects, two-space indent, case-insensitive field names on read
  - XML: <ArrayOfProduct> wrapping one <Product> element per entity
  - CSV: header row of field names, RFC 4180 quoting
  - YAML: sequence of mappings
  - TOML: array of tables under the "items" key
*/
package serializer
