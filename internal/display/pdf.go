package display

import (
	"bytes"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/tayloree/dealchef/internal/shopping"
)

// QRCode encodes the plain-text shopping list as a PNG QR code. Long lists
// fall back to the lowest error-correction level before giving up.
func QRCode(list shopping.List) ([]byte, error) {
	payload := PlainShoppingList(list)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err == nil {
		return png, nil
	}
	png, err = qrcode.Encode(payload, qrcode.Low, 256)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return png, nil
}

// WriteShoppingListPDF renders the list as an A4 document grouped by store.
// The QR code is left out when the list is too long to encode.
func WriteShoppingListPDF(w io.Writer, list shopping.List, title string) error {
	if title == "" {
		title = "Shopping list"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, tr(title))
	pdf.Ln(12)

	if qrPNG, err := QRCode(list); err == nil {
		imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("qr", 160, 10, 40, 40, false, imageOpts, 0, "")
	}

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr(fmt.Sprintf("%d items, estimated %s, saves %s",
		len(list.Items), Euro(list.TotalEstimatedCost), Euro(list.TotalSavings))))
	pdf.Ln(14)

	section := func(name, subtotal string, items []shopping.Item) {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(140, 8, tr(name), "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, tr(subtotal), "B", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, it := range items {
			label := itemLabel(it)
			if it.Offer != nil {
				label += "  (" + it.Offer.ProductName + ")"
			}
			pdf.CellFormat(8, 7, "[ ]", "", 0, "L", false, 0, "")
			pdf.CellFormat(132, 7, tr(label), "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, tr(Euro(it.EstimatedPrice)), "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	for _, g := range list.Stores {
		if len(g.Items) == 0 {
			continue
		}
		section(g.Store.DisplayName(), Euro(g.Subtotal), g.Items)
	}
	if rest := list.Unassigned(); len(rest) > 0 {
		section("Not on offer", "", rest)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
