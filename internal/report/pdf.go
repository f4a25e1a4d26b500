package report

import (
	"bytes"
	"fmt"
	"time"

	"dukaan-guru/internal/core"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders the downloadable ledger summary: shop name, generation date,
// both aggregates, the stock table, and the credit register table.
// On error no partial document is returned.
func PDF(shopName string, stock []core.StockItem, credits []core.CreditEntry, now time.Time) ([]byte, error) {
	if shopName == "" {
		shopName = "Meri Dukaan"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(shopName+" — Hisab Kitab", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, shopName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+now.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Stock Value: Rs %s", core.TotalStockValue(stock).String()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Udhaar Outstanding: Rs %s", core.TotalCreditOutstanding(credits).String()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Stock", "", 1, "L", false, 0, "")
	stockWidths := []float64{70, 30, 40, 40}
	tableHeader(pdf, stockWidths, []string{"Item", "Qty", "Price", "Line Total"})
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range stock {
		tableRow(pdf, stockWidths, []string{
			item.Name,
			fmt.Sprintf("%d", item.Quantity),
			"Rs " + item.UnitPrice.String(),
			"Rs " + item.LineTotal().String(),
		})
	}
	if len(stock) == 0 {
		tableRow(pdf, []float64{180}, []string{"No items in stock"})
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Udhaar Register", "", 1, "L", false, 0, "")
	creditWidths := []float64{55, 40, 50, 35}
	tableHeader(pdf, creditWidths, []string{"Customer", "Phone", "Product", "Amount"})
	pdf.SetFont("Helvetica", "", 10)
	for _, entry := range credits {
		tableRow(pdf, creditWidths, []string{
			entry.CustomerName,
			entry.Phone,
			entry.Product,
			"Rs " + entry.Amount.String(),
		})
	}
	if len(credits) == 0 {
		tableRow(pdf, []float64{180}, []string{"No udhaar entries"})
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, cells []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells []string) {
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}
