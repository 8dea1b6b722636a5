/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package serializer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/persistence/serializer"
)

type Widget struct {
	ID       int             `json:"Id" xml:"Id" csv:"Id" yaml:"Id" toml:"Id"`
	Name     string          `json:"Name" xml:"Name" csv:"Name" yaml:"Name" toml:"Name"`
	Price    decimal.Decimal `json:"Price" xml:"Price" csv:"Price" yaml:"Price" toml:"Price"`
	Quantity int             `json:"Quantity" xml:"Quantity" csv:"Quantity" yaml:"Quantity" toml:"Quantity"`
	Active   bool            `json:"Active" xml:"Active" csv:"Active" yaml:"Active" toml:"Active"`
	Tags     []string        `json:"-" xml:"-" csv:"-" yaml:"-" toml:"-"`
}

func widgets() []*Widget {
	return []*Widget{
		{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("1299.99"), Quantity: 4, Active: true},
		{ID: 2, Name: `Mouse, "wireless"`, Price: decimal.RequireFromString("19.5"), Quantity: 40},
		{ID: 3, Name: "Multi\nline <desk> & chair", Price: decimal.Zero, Quantity: 0, Active: true},
	}
}

func assertSameWidgets(t *testing.T, want, got []*Widget) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.True(t, want[i].Price.Equal(got[i].Price), "price %s != %s", want[i].Price, got[i].Price)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].Active, got[i].Active)
	}
}

func codecs() []serializer.Codec {
	return []serializer.Codec{
		serializer.JSON(),
		serializer.XML(),
		serializer.CSV(),
		serializer.YAML(),
		serializer.TOML(),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, codec := range codecs() {
		t.Run(codec.Format(), func(t *testing.T) {
			s := serializer.New[*Widget](codec)

			data, err := s.Serialize(widgets())
			require.NoError(t, err)

			assertSameWidgets(t, widgets(), s.Deserialize(data))
		})
	}
}

func TestRoundTripValueElements(t *testing.T) {
	in := []Widget{
		{ID: 10, Name: "Cable", Price: decimal.RequireFromString("2.25"), Quantity: 100},
	}
	for _, codec := range codecs() {
		t.Run(codec.Format(), func(t *testing.T) {
			s := serializer.New[Widget](codec)

			data, err := s.Serialize(in)
			require.NoError(t, err)

			out := s.Deserialize(data)
			require.Len(t, out, 1)
			assert.Equal(t, 10, out[0].ID)
			assert.Equal(t, "Cable", out[0].Name)
			assert.True(t, in[0].Price.Equal(out[0].Price))
		})
	}
}

func TestDeserializeEmptyInput(t *testing.T) {
	for _, codec := range codecs() {
		t.Run(codec.Format(), func(t *testing.T) {
			s := serializer.New[*Widget](codec)

			for _, input := range []string{"", "   ", "\n\t\r\n"} {
				out := s.Deserialize([]byte(input))
				assert.NotNil(t, out)
				assert.Empty(t, out)
			}
		})
	}
}

func TestDeserializeMalformedInputFailsOpen(t *testing.T) {
	tests := []struct {
		codec serializer.Codec
		input string
	}{
		{serializer.JSON(), `[{"Id": 1, "Name": "Laptop"`},
		{serializer.JSON(), `{"Id": 1}`},
		{serializer.XML(), `<ArrayOfWidget><Widget><Id>1</Id>`},
		{serializer.XML(), `<ArrayOfWidget><Widget><Id>not-a-number</Id></Widget></ArrayOfWidget>`},
		{serializer.CSV(), "Id,Name\n\"unterminated,quote\n"},
		{serializer.CSV(), "Id,Name\nabc,Laptop\n"},
		{serializer.YAML(), "Id: [1, 2\n"},
		{serializer.TOML(), "[[items]\nId = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.codec.Format(), func(t *testing.T) {
			s := serializer.New[*Widget](tt.codec)

			out := s.Deserialize([]byte(tt.input))
			assert.NotNil(t, out)
			assert.Empty(t, out)
		})
	}
}

func TestSerializeNilAsEmptyCollection(t *testing.T) {
	s := serializer.New[*Widget](serializer.JSON())

	data, err := s.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONIsPrettyAndCaseInsensitive(t *testing.T) {
	s := serializer.New[*Widget](serializer.JSON())

	data, err := s.Serialize(widgets()[:1])
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"Id\": 1,")

	out := s.Deserialize([]byte(`[{"id": 5, "NAME": "Dock", "quantity": 2}]`))
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].ID)
	assert.Equal(t, "Dock", out[0].Name)
	assert.Equal(t, 2, out[0].Quantity)
}

func TestXMLRootElement(t *testing.T) {
	s := serializer.New[*Widget](serializer.XML())

	data, err := s.Serialize(widgets()[:1])
	require.NoError(t, err)

	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, "<ArrayOfWidget>")
	assert.Contains(t, doc, "<Widget>")
	assert.Contains(t, doc, "<Id>1</Id>")
	assert.Contains(t, doc, "</ArrayOfWidget>")
}

func TestCSVQuotingAndHeader(t *testing.T) {
	s := serializer.New[*Widget](serializer.CSV())

	data, err := s.Serialize(widgets()[1:2])
	require.NoError(t, err)

	lines := strings.SplitN(string(data), "\n", 2)
	assert.Equal(t, "Id,Name,Price,Quantity,Active", lines[0])
	assert.Equal(t, "2,\"Mouse, \"\"wireless\"\"\",19.5,40,false\n", lines[1])
}

func TestCSVIgnoresUnknownColumnsAndReordering(t *testing.T) {
	s := serializer.New[*Widget](serializer.CSV())

	out := s.Deserialize([]byte("Name,Color,id\nDesk,red,9\n"))
	require.Len(t, out, 1)
	assert.Equal(t, 9, out[0].ID)
	assert.Equal(t, "Desk", out[0].Name)
}

func TestCSVHeaderOnly(t *testing.T) {
	s := serializer.New[*Widget](serializer.CSV())

	data, err := s.Serialize([]*Widget{})
	require.NoError(t, err)

	out := s.Deserialize(data)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

type stamped struct {
	ID        int             `csv:"Id"`
	UpdatedAt strfmt.DateTime `csv:"UpdatedAt"`
	Name      string          `csv:"Name"`
}

type Gizmo struct {
	stamped
	Name  string          `csv:"Name"`
	Price decimal.Decimal `csv:"Price"`
}

func TestCSVPromotesEmbeddedFields(t *testing.T) {
	s := serializer.New[*Gizmo](serializer.CSV())
	when := strfmt.DateTime(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	data, err := s.Serialize([]*Gizmo{
		{stamped: stamped{ID: 7, UpdatedAt: when, Name: "inner"}, Name: "Sprocket", Price: decimal.RequireFromString("2.50")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Id,UpdatedAt,Name,Price\n"), string(data))

	out := s.Deserialize(data)
	require.Len(t, out, 1)
	assert.Equal(t, 7, out[0].ID)
	assert.Equal(t, "Sprocket", out[0].Name)
	assert.Empty(t, out[0].stamped.Name)
	assert.True(t, time.Time(when).Equal(time.Time(out[0].UpdatedAt)))
}

func TestCSVEmptyCellsAreZeroValues(t *testing.T) {
	s := serializer.New[*Gizmo](serializer.CSV())

	out := s.Deserialize([]byte("Id,UpdatedAt,Name,Price\n4,,Lamp,\n"))
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].ID)
	assert.Equal(t, "Lamp", out[0].Name)
	assert.True(t, out[0].Price.IsZero())
	assert.True(t, time.Time(out[0].UpdatedAt).IsZero())
}
