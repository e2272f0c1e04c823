package domain

import "github.com/shopspring/decimal"

var gramsPerKilogram = decimal.NewFromInt(1000)

// ShippableUnit is one physical unit of a shippable product. Units are
// computed on demand from cart contents, one per requested quantity.
type ShippableUnit struct {
	Name   string
	Weight decimal.Decimal // kilograms
}

// Package is the aggregated shipment entry for one product: the summed
// weight of all its units.
type Package struct {
	Name   string
	Weight decimal.Decimal // kilograms
}

// Grams returns the package weight scaled to grams, truncated toward zero.
func (p Package) Grams() int64 {
	return p.Weight.Mul(gramsPerKilogram).IntPart()
}

// ShipmentManifest groups shippable units by product for shipment
// reporting.
type ShipmentManifest struct {
	Packages    []Package
	TotalWeight decimal.Decimal // kilograms
}

// BuildManifest aggregates units into per-product packages. Packages are
// ordered by first appearance so output is deterministic; weights are
// summed exactly before any scaling.
func BuildManifest(units []ShippableUnit) ShipmentManifest {
	manifest := ShipmentManifest{TotalWeight: decimal.Zero}
	index := make(map[string]int)
	for _, unit := range units {
		i, ok := index[unit.Name]
		if !ok {
			i = len(manifest.Packages)
			index[unit.Name] = i
			manifest.Packages = append(manifest.Packages, Package{Name: unit.Name, Weight: decimal.Zero})
		}
		manifest.Packages[i].Weight = manifest.Packages[i].Weight.Add(unit.Weight)
		manifest.TotalWeight = manifest.TotalWeight.Add(unit.Weight)
	}
	return manifest
}
