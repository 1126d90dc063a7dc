// Package pdf renders printable documents with Maroto v2.
//
// A4 invoice layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Shop name + GSTIN  │  Invoice number + date         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BILL TO: customer name + phone + address + GSTIN            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: Item | HSN | Qty | Rate/Box | Amount                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALS: Subtotal / CGST / SGST / IGST / Round off / TOTAL   │
//	│  PAYMENT: Paid / Balance due                                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/tilemart/tilemart-api/internal/application/reports"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/units"
)

var (
	colorPrimary = &props.Color{Red: 128, Green: 0, Blue: 32}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ShopInfo is the seller block printed on every document.
type ShopInfo struct {
	Name      string
	Address   string
	Phone     string
	Email     string
	GSTNumber string
}

// Generator renders invoices and stock reports as PDF bytes.
type Generator struct {
	shop ShopInfo
}

// NewGenerator builds the generator.
func NewGenerator(shop ShopInfo) *Generator {
	return &Generator{shop: shop}
}

// InvoicePDF renders one invoice and returns its bytes.
func (g *Generator) InvoicePDF(invoice *entity.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Invoice "+invoice.InvoiceNumber, true).
		WithAuthor(g.shop.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(billToRow(invoice.CustomerDetails))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	for _, r := range itemRows(invoice.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range totalsRows(invoice) {
		m.AddRows(r)
	}
	m.AddRows(paymentRow(invoice))

	if invoice.Notes != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Notes: "+invoice.Notes, props.Text{Size: 8, Color: colorGray, Top: 2}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: render invoice: %w", err)
	}
	return doc.GetBytes(), nil
}

// StockReportPDF renders the stock summary and returns its bytes.
func (g *Generator) StockReportPDF(summary *reports.StockSummary, at time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Stock Report", true).
		WithAuthor(g.shop.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(row.New(14).Add(
		col.New(8).Add(
			text.New(g.shop.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Stock Report", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(at.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 2, Color: colorGray}),
			text.New(fmt.Sprintf("%d items, %d low, %d out of stock",
				summary.TotalItems, summary.LowStock, summary.OutOfStock),
				props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorGray}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	m.AddRows(row.New(8).Add(
		h("Product", 4, align.Left),
		h("Size", 1, align.Center),
		h("Stock", 2, align.Right),
		h("Available", 2, align.Right),
		h("Status", 1, align.Center),
		h("Value", 2, align.Right),
	))

	for _, r := range summary.Rows {
		valuation := r.Product.PricePerBox.Mul(decimal.NewFromInt(int64(r.Available.Boxes)))
		m.AddRows(row.New(6).Add(
			col.New(4).Add(text.New(r.Product.Name, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(r.Product.Size, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(units.FormatQty(r.Product.Stock.Boxes, r.Product.Stock.Pieces),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(units.FormatQty(r.Available.Boxes, r.Available.Pieces),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(r.Status, props.Text{Size: 7, Align: align.Center, Top: 1, Color: colorGray})),
			col.New(2).Add(text.New("Rs. "+formatINR(valuation),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: render stock report: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *Generator) headerRow(invoice *entity.Invoice) core.Row {
	title := "TAX INVOICE"
	if invoice.InvoiceType == entity.InvoiceTypeNonGST {
		title = "INVOICE"
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.shop.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(g.shop.Address, ""), props.Text{Size: 8, Top: 9, Color: colorGray}),
			text.New(fmt.Sprintf("Ph: %s   GSTIN: %s",
				nonEmpty(g.shop.Phone, "-"), nonEmpty(g.shop.GSTNumber, "-")),
				props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+invoice.InvoiceDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func billToRow(customer entity.CustomerSnapshot) core.Row {
	contact := fmt.Sprintf("Ph: %s", nonEmpty(customer.Phone, "-"))
	if customer.GSTNumber != "" {
		contact += "   GSTIN: " + customer.GSTNumber
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("BILL TO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(customer.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(contact, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Item", 5, align.Left),
		h("HSN", 1, align.Center),
		h("Qty", 2, align.Right),
		h("Rate/Box", 2, align.Right),
		h("Amount", 2, align.Right),
	)
}

func itemRows(items []entity.InvoiceItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, item := range items {
		result = append(result, row.New(7).Add(
			col.New(5).Add(text.New(item.ProductName, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(nonEmpty(item.HSNNo, "-"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(units.FormatQty(item.Quantity.Boxes, item.Quantity.Pieces),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(formatINR(item.PricePerBox),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(formatINR(item.ItemTotal),
				props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return result
}

func totalsRows(invoice *entity.Invoice) []core.Row {
	moneyRow := func(label string, amount decimal.Decimal, bold bool) core.Row {
		style := fontstyle.Normal
		size := 9.0
		color := (*props.Color)(nil)
		if bold {
			style = fontstyle.Bold
			size = 10
			color = colorPrimary
		}
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{
				Style: style, Size: size, Align: align.Right, Right: 2, Color: color,
			})),
			col.New(3).Add(text.New("Rs. "+formatINR(amount), props.Text{
				Style: style, Size: size, Align: align.Right, Right: 1, Color: color,
			})),
		)
	}

	rows := []core.Row{moneyRow("Subtotal:", invoice.Subtotal, false)}
	if invoice.InvoiceType == entity.InvoiceTypeGST {
		if !invoice.CGST.IsZero() {
			rows = append(rows, moneyRow("CGST:", invoice.CGST, false))
		}
		if !invoice.SGST.IsZero() {
			rows = append(rows, moneyRow("SGST:", invoice.SGST, false))
		}
		if !invoice.IGST.IsZero() {
			rows = append(rows, moneyRow("IGST:", invoice.IGST, false))
		}
	}
	if !invoice.RoundOffAmount.IsZero() {
		rows = append(rows, moneyRow("Round off:", invoice.RoundOffAmount, false))
	}
	rows = append(rows, moneyRow("TOTAL:", invoice.FinalAmount, true))
	return rows
}

func paymentRow(invoice *entity.Invoice) core.Row {
	return row.New(10).Add(
		col.New(6).Add(
			text.New("Payment: "+invoice.Payment.Status, props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Paid: Rs. %s    Balance: Rs. %s",
				formatINR(invoice.Payment.TotalPaid), formatINR(invoice.Payment.PendingAmount)),
				props.Text{Size: 8, Align: align.Right, Top: 2, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

var inr = message.NewPrinter(language.MustParse("en-IN"))

// formatINR renders an amount with Indian digit grouping, two decimals.
// Eg: 125000 → "1,25,000.00".
func formatINR(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return inr.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
