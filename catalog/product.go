/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package catalog

import (
	"github.com/go-openapi/strfmt"
	"github.com/shopspring/decimal"
)

// Product is a catalog item
type Product struct {

	// Unique identifier. Zero until the product is added to a repository.
	ID int `json:"Id" xml:"Id" csv:"Id" yaml:"Id" toml:"Id" db:"id"`

	// Display name of the product.
	// Required: true
	Name string `json:"Name" xml:"Name" csv:"Name" yaml:"Name" toml:"Name" db:"name"`

	// category
	Category string `json:"Category,omitempty" xml:"Category,omitempty" csv:"Category" yaml:"Category,omitempty" toml:"Category,omitempty" db:"category"`

	// Unit price.
	// Format: decimal
	Price decimal.Decimal `json:"Price" xml:"Price" csv:"Price" yaml:"Price" toml:"Price" db:"price"`

	// Units in stock.
	Quantity int `json:"Quantity" xml:"Quantity" csv:"Quantity" yaml:"Quantity" toml:"Quantity" db:"quantity"`

	// Timestamp of the last change.
	// Format: date-time
	UpdatedAt strfmt.DateTime `json:"UpdatedAt" xml:"UpdatedAt" csv:"UpdatedAt" yaml:"UpdatedAt" toml:"UpdatedAt" db:"updated_at"`
}

func (p *Product) GetID() int   { return p.ID }
func (p *Product) SetID(id int) { p.ID = id }

// Equal compares field values; prices compare numerically and timestamps
// at millisecond precision.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID &&
		p.Name == other.Name &&
		p.Category == other.Category &&
		p.Price.Equal(other.Price) &&
		p.Quantity == other.Quantity &&
		p.UpdatedAt.String() == other.UpdatedAt.String()
}

// Touch sets UpdatedAt to now
func (p *Product) Touch() {
	p.UpdatedAt = strfmt.DateTime(timeNow().UTC())
}
