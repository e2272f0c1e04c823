// Package console renders shipment notices and checkout receipts to a
// writer. It is the default implementation of the checkout collaborators;
// the core hands it computed values and never formats anything itself.
package console

import (
	"fmt"
	"io"

	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
)

// ShippingNotice prints the aggregated shipment manifest: per product the
// summed weight in grams, then the total package weight in kilograms.
type ShippingNotice struct {
	w io.Writer
}

func NewShippingNotice(w io.Writer) *ShippingNotice {
	return &ShippingNotice{w: w}
}

func (s *ShippingNotice) Ship(units []domain.ShippableUnit) error {
	manifest := domain.BuildManifest(units)

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(s.w, format, args...)
		}
	}

	printf("** Shipment notice **\n")
	for _, pkg := range manifest.Packages {
		printf("%s\t%dg\n", pkg.Name, pkg.Grams())
	}
	printf("Total package weight %skg\n\n", manifest.TotalWeight)
	return err
}
