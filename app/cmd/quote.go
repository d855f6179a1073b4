package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/Rakhulsr/go-bookstore/app/utils/calc"
	"github.com/Rakhulsr/go-bookstore/app/utils/format"
	"github.com/go-playground/validator/v10"
)

// cartFile is the subset of a cart snapshot the quote command reads.
type cartFile struct {
	Items     []models.CartItem `json:"items" validate:"dive"`
	Promotion *models.Promotion `json:"appliedPromotion" validate:"omitempty"`
}

func QuoteFile(out io.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cart cartFile
	if err := json.Unmarshal(raw, &cart); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := validator.New().Struct(&cart); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return writeQuote(out, cart.Items, cart.Promotion)
}

func writeQuote(out io.Writer, items []models.CartItem, promo *models.Promotion) error {
	summary := calc.Quote(items, promo)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\tx%d\t%s\t\n", item.Product.Title, item.Quantity, format.FormatVND(item.LineTotal()))
	}
	fmt.Fprintf(tw, "\t\t\t\n")
	fmt.Fprintf(tw, "Subtotal (%d items)\t\t%s\t\n", summary.TotalItems, format.FormatVND(summary.Subtotal))
	if summary.Discount > 0 {
		fmt.Fprintf(tw, "Discount %s\t\t-%s\t\n", promo.Code, format.FormatVND(summary.Discount))
	}
	fmt.Fprintf(tw, "Shipping\t\t%s\t\n", format.FormatVND(summary.ShippingFee))
	fmt.Fprintf(tw, "Tax (%s%%)\t\t%s\t\n", calc.GetTaxPercent().String(), format.FormatVND(summary.Tax))
	fmt.Fprintf(tw, "Total\t\t%s\t\n", format.FormatVND(summary.Total))
	return tw.Flush()
}
