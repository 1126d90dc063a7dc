// Package excel exports reports as xlsx workbooks.
package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tilemart/tilemart-api/internal/application/reports"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

const sheetName = "Sheet1"

// StockReport writes one row per product with availability and health.
func StockReport(summary *reports.StockSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headings := []string{
		"Name", "Type", "Size", "Pieces/Box",
		"Stock", "Sold", "Damaged", "Returned", "Available",
		"Status", "Damage %", "Return Rate %", "Price/Box",
	}
	for i, h := range headings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, r := range summary.Rows {
		rowNo := i + 2
		p := r.Product
		values := []any{
			p.Name, p.Type, p.Size, p.PiecesPerBox,
			units.FormatQty(p.Stock.Boxes, p.Stock.Pieces),
			units.FormatQty(p.Sales.Boxes, p.Sales.Pieces),
			units.FormatQty(p.Damage.Boxes, p.Damage.Pieces),
			units.FormatQty(p.Returns.Boxes, p.Returns.Pieces),
			units.FormatQty(r.Available.Boxes, r.Available.Pieces),
			r.Status, r.DamagePercentage, r.ReturnRate,
			p.PricePerBox.InexactFloat64(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNo)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: write stock report: %w", err)
	}
	return buf.Bytes(), nil
}

// InvoiceList writes one row per invoice for the sales export.
func InvoiceList(invoices []*entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headings := []string{
		"Invoice No", "Date", "Type", "Customer", "Phone",
		"Subtotal", "Tax", "Final Amount", "Paid", "Pending", "Payment Status",
	}
	for i, h := range headings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, inv := range invoices {
		rowNo := i + 2
		values := []any{
			inv.InvoiceNumber, inv.InvoiceDate.Format("02/01/2006"), inv.InvoiceType,
			inv.CustomerDetails.Name, inv.CustomerDetails.Phone,
			inv.Subtotal.InexactFloat64(), inv.TotalTax.InexactFloat64(),
			inv.FinalAmount.InexactFloat64(), inv.Payment.TotalPaid.InexactFloat64(),
			inv.Payment.PendingAmount.InexactFloat64(), inv.Payment.Status,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNo)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: write invoice list: %w", err)
	}
	return buf.Bytes(), nil
}
