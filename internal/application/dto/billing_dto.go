package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest is the customer create/update form.
type CustomerRequest struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address"`
	GSTNumber string `json:"gstNumber"`
	Notes     string `json:"notes"`
}

// InvoiceItemRequest is one invoice line. Line money arrives precomputed by
// the frontend; document totals are derived server-side.
type InvoiceItemRequest struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName" validate:"required"`
	ProductType  string          `json:"productType"`
	ProductSize  string          `json:"productSize"`
	HSNNo        string          `json:"hsnNo"`
	IsCustom     bool            `json:"isCustom"`
	Quantity     QuantityInput   `json:"quantity"`
	PiecesPerBox int             `json:"piecesPerBox" validate:"min=0"`
	PricePerBox  decimal.Decimal `json:"pricePerBox"`
	ItemTotal    decimal.Decimal `json:"itemTotal"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	TaxAmount    decimal.Decimal `json:"taxAmount"`
}

// CreateInvoiceRequest is the invoice intake form.
type CreateInvoiceRequest struct {
	InvoiceType         string               `json:"invoiceType" validate:"required,oneof=GST NON_GST"`
	CustomInvoiceNumber string               `json:"customInvoiceNumber"`
	InvoiceDate         *time.Time           `json:"invoiceDate"`
	SalesChannel        string               `json:"salesChannel" validate:"omitempty,oneof=OFFLINE ONLINE"`
	CustomerID          string               `json:"customerId" validate:"required"`
	Items               []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount            decimal.Decimal      `json:"discount"`
	CGST                decimal.Decimal      `json:"cgst"`
	SGST                decimal.Decimal      `json:"sgst"`
	IGST                decimal.Decimal      `json:"igst"`
	PaidAmount          decimal.Decimal      `json:"paidAmount"`
	PaymentMethod       string               `json:"paymentMethod"`
	TransactionID       string               `json:"transactionId"`
	NextDueDate         *time.Time           `json:"nextDueDate"`
	Notes               string               `json:"notes"`
}

// UpdateInvoiceRequest replaces the editable parts of an invoice.
type UpdateInvoiceRequest struct {
	InvoiceDate  *time.Time           `json:"invoiceDate"`
	SalesChannel string               `json:"salesChannel" validate:"omitempty,oneof=OFFLINE ONLINE"`
	Items        []InvoiceItemRequest `json:"items" validate:"omitempty,min=1,dive"`
	Discount     *decimal.Decimal     `json:"discount"`
	CGST         *decimal.Decimal     `json:"cgst"`
	SGST         *decimal.Decimal     `json:"sgst"`
	IGST         *decimal.Decimal     `json:"igst"`
	Notes        *string              `json:"notes"`
}

// PaymentUpdateRequest settles money, grants a discount or moves the due
// date; any combination may arrive.
type PaymentUpdateRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transactionId"`
	Discount      decimal.Decimal `json:"discount"`
	NextDueDate   *time.Time      `json:"nextDueDate"`
	Notes         string          `json:"notes"`
}

// ReturnItemRequest is one line being returned.
type ReturnItemRequest struct {
	ProductID    string           `json:"productId" validate:"required"`
	Quantity     QuantityInput    `json:"quantity"`
	ReturnValue  *decimal.Decimal `json:"returnValue"`
	ReturnReason string           `json:"returnReason"`
	Condition    string           `json:"condition"`
}

// CreateReturnRequest is the return intake form.
type CreateReturnRequest struct {
	InvoiceID    string              `json:"invoiceId" validate:"required"`
	ReturnType   string              `json:"returnType" validate:"required,oneof=CREDIT REFUND EXCHANGE"`
	Items        []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
	RefundMethod string              `json:"refundMethod"`
	Notes        string              `json:"notes"`
}

// UseCreditRequest consumes store credit oldest-first.
type UseCreditRequest struct {
	CustomerID string          `json:"customerId" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
}
