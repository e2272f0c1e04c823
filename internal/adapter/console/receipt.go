package console

import (
	"fmt"
	"io"

	"github.com/AhmedEsam99/checkout-service/internal/core/domain"
)

// ReceiptPrinter prints the checkout receipt: one row per cart line, then
// subtotal, shipping fee, total, and the customer's remaining balance.
type ReceiptPrinter struct {
	w io.Writer
}

func NewReceiptPrinter(w io.Writer) *ReceiptPrinter {
	return &ReceiptPrinter{w: w}
}

func (p *ReceiptPrinter) Emit(receipt domain.Receipt) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(p.w, format, args...)
		}
	}

	printf("** Checkout receipt **\n")
	for _, line := range receipt.Lines {
		printf("%dx %s\t%s\n", line.Quantity, line.Name, line.Total)
	}
	printf("----------------------\n")
	printf("Subtotal\t\t%s\n", receipt.Subtotal)
	printf("Shipping\t\t%s\n", receipt.ShippingFee)
	printf("Amount\t\t%s\n", receipt.Total)
	printf("Remaining balance\t%s\n", receipt.RemainingBalance)
	return err
}
