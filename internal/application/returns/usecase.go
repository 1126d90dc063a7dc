package returns

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/application/billing"
	"github.com/tilemart/tilemart-api/internal/application/stock"
	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

// UseCase handles invoice returns and the store-credit ledger they generate.
type UseCase struct {
	returns   repository.ReturnRepository
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	ledger    *stock.Ledger
	log       *logger.Logger
}

// New builds the use case.
func New(
	returns repository.ReturnRepository,
	invoices repository.InvoiceRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	ledger *stock.Ledger,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		returns:   returns,
		invoices:  invoices,
		customers: customers,
		products:  products,
		ledger:    ledger,
		log:       log,
	}
}

// ItemInput is one line being returned. ReturnValue overrides the price
// derived from the original invoice line when set.
type ItemInput struct {
	ProductID    string
	Quantity     units.Quantity
	ReturnValue  *decimal.Decimal
	ReturnReason string
	Condition    string
}

// CreateInput is the return intake form.
type CreateInput struct {
	InvoiceID    string
	ReturnType   string // CREDIT | REFUND | EXCHANGE
	Items        []ItemInput
	RefundMethod string
	Notes        string
}

// Create books a return against an invoice: stock goes back through the
// ledger, the invoice's embedded return state and pending amount adjust, the
// customer's outstanding balance drops, and CREDIT returns seed a consumable
// credit balance.
func (uc *UseCase) Create(in CreateInput) (*entity.Return, error) {
	if in.InvoiceID == "" || len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: invoice and items are required", domain.ErrInvalidInput)
	}
	switch in.ReturnType {
	case entity.ReturnTypeCredit, entity.ReturnTypeRefund, entity.ReturnTypeExchange:
	default:
		return nil, fmt.Errorf("%w: invalid return type %q", domain.ErrInvalidInput, in.ReturnType)
	}

	invoice, err := uc.invoices.GetByID(in.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("load invoice %s: %w", in.InvoiceID, err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
	}

	items := make([]entity.ReturnItem, 0, len(in.Items))
	totalValue := decimal.Zero
	for _, itemIn := range in.Items {
		line := findInvoiceItem(invoice, itemIn.ProductID)
		if line == nil {
			return nil, fmt.Errorf("%w: product %s is not on invoice %s", domain.ErrInvalidInput, itemIn.ProductID, invoice.InvoiceNumber)
		}
		if itemIn.Quantity.Boxes < 0 || itemIn.Quantity.Pieces < 0 {
			return nil, fmt.Errorf("%w: Cannot return negative quantity", domain.ErrInvalidInput)
		}
		if itemIn.Quantity.Boxes == 0 && itemIn.Quantity.Pieces == 0 {
			return nil, fmt.Errorf("%w: Must return at least 1 piece", domain.ErrInvalidInput)
		}

		value := returnValueFor(line, itemIn)
		totalValue = totalValue.Add(value)
		items = append(items, entity.ReturnItem{
			ProductID:           itemIn.ProductID,
			ProductName:         line.ProductName,
			ProductType:         line.ProductType,
			ProductSize:         line.ProductSize,
			PiecesPerBox:        line.PiecesPerBox,
			Quantity:            itemIn.Quantity,
			OriginalPricePerBox: line.PricePerBox,
			OriginalItemTotal:   line.ItemTotal,
			ReturnValue:         value,
			ReturnReason:        itemIn.ReturnReason,
			Condition:           itemIn.Condition,
		})
	}

	number, err := billing.NextReturnNumber(uc.returns, time.Now())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ret := &entity.Return{
		ID:               uuid.New().String(),
		ReturnNumber:     number,
		InvoiceID:        invoice.ID,
		InvoiceNumber:    invoice.InvoiceNumber,
		CustomerID:       invoice.CustomerID,
		CustomerDetails:  invoice.CustomerDetails,
		Items:            items,
		TotalReturnValue: totalValue,
		ReturnType:       in.ReturnType,
		Status:           entity.ReturnStatusApproved,
		Notes:            in.Notes,
		StockAdjusted:    true,
	}
	switch in.ReturnType {
	case entity.ReturnTypeCredit:
		ret.CreditGenerated = totalValue
		ret.CreditBalance = totalValue
	case entity.ReturnTypeRefund:
		ret.RefundAmount = totalValue
		ret.RefundMethod = in.RefundMethod
		ret.RefundDate = &now
	}

	for i := range items {
		if err := uc.restockItem(invoice, &items[i]); err != nil {
			return nil, err
		}
	}

	if err := uc.returns.Create(ret); err != nil {
		return nil, fmt.Errorf("persist return %s: %w", ret.ReturnNumber, err)
	}

	summaries := make([]entity.ReturnedItemSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, entity.ReturnedItemSummary{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	invoice.Return.IsReturned = true
	invoice.Return.ReturnDate = &now
	invoice.Return.ReturnNotes = in.Notes
	if in.ReturnType == entity.ReturnTypeRefund {
		invoice.Return.TotalRefundAmount = invoice.Return.TotalRefundAmount.Add(totalValue)
	}
	if in.ReturnType == entity.ReturnTypeCredit {
		invoice.Return.TotalReturnCredit = invoice.Return.TotalReturnCredit.Add(totalValue)
		invoice.Return.AvailableReturnCredit = invoice.Return.TotalReturnCredit.Sub(invoice.Return.UsedReturnCredit)
	}
	invoice.Return.History = append(invoice.Return.History, entity.ReturnHistoryEntry{
		ReturnID:     ret.ID,
		ReturnNumber: ret.ReturnNumber,
		ReturnDate:   now,
		ReturnType:   ret.ReturnType,
		ReturnValue:  totalValue,
		Items:        summaries,
	})
	invoice.Payment.PendingAmount = floorZero(invoice.Payment.PendingAmount.Sub(totalValue))
	invoice.Status = entity.InvoiceStatusReturned
	if err := uc.invoices.Update(invoice); err != nil {
		return nil, fmt.Errorf("persist invoice %s for return %s: %w", invoice.ID, ret.ID, err)
	}

	customer, err := uc.customers.GetByID(invoice.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load customer %s: %w", invoice.CustomerID, err)
	}
	if customer != nil {
		customer.OutstandingBalance = floorZero(customer.OutstandingBalance.Sub(totalValue))
		if err := uc.customers.Update(customer); err != nil {
			return nil, fmt.Errorf("update customer %s for return %s: %w", customer.ID, ret.ID, err)
		}
	}

	return ret, nil
}

// restockItem pushes a returned line back through the ledger. A vanished
// product logs a warning; the money side of the return still stands.
func (uc *UseCase) restockItem(invoice *entity.Invoice, item *entity.ReturnItem) error {
	product, err := uc.products.GetByID(item.ProductID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", item.ProductID, err)
	}
	if product == nil {
		uc.log.Warn().
			Str("product_id", item.ProductID).
			Str("invoice_number", invoice.InvoiceNumber).
			Msg("returned product no longer exists, skipping restock")
		return nil
	}
	return uc.ledger.ReturnForInvoice(product, item.Quantity, invoice.ID, invoice.InvoiceNumber, invoice.CustomerID, item.ReturnReason)
}

// List returns returns matching the filter.
func (uc *UseCase) List(filter repository.ReturnFilter) ([]*entity.Return, error) {
	return uc.returns.List(filter)
}

// Get returns one return.
func (uc *UseCase) Get(id string) (*entity.Return, error) {
	ret, err := uc.returns.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load return %s: %w", id, err)
	}
	if ret == nil {
		return nil, domain.ErrNotFound
	}
	return ret, nil
}

// CustomerCredit is a customer's open store credit.
type CustomerCredit struct {
	Available decimal.Decimal
	Credits   []*entity.Return
}

// CreditByCustomer sums the open CREDIT returns for a customer.
func (uc *UseCase) CreditByCustomer(customerID string) (*CustomerCredit, error) {
	credits, err := uc.returns.ListOpenCreditsByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("list credits for customer %s: %w", customerID, err)
	}
	total := decimal.Zero
	for _, ret := range credits {
		total = total.Add(ret.CreditBalance)
	}
	return &CustomerCredit{Available: total, Credits: credits}, nil
}

// CreditApplication reports how much was taken from one return.
type CreditApplication struct {
	ReturnID     string
	ReturnNumber string
	Amount       decimal.Decimal
}

// UseCredit consumes store credit oldest-first. The amount must be fully
// coverable; partial application never happens.
func (uc *UseCase) UseCredit(customerID string, amount decimal.Decimal) ([]CreditApplication, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: credit amount must be positive", domain.ErrInvalidInput)
	}
	credits, err := uc.returns.ListOpenCreditsByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("list credits for customer %s: %w", customerID, err)
	}
	available := decimal.Zero
	for _, ret := range credits {
		available = available.Add(ret.CreditBalance)
	}
	if available.LessThan(amount) {
		return nil, fmt.Errorf("%w: available %s, needed %s", domain.ErrInsufficientCredit, available, amount)
	}

	var applied []CreditApplication
	remaining := amount
	for _, ret := range credits {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(ret.CreditBalance, remaining)
		ret.CreditUsed = ret.CreditUsed.Add(take)
		ret.CreditBalance = ret.CreditBalance.Sub(take)
		if err := uc.returns.Update(ret); err != nil {
			return nil, fmt.Errorf("update return %s: %w", ret.ID, err)
		}
		applied = append(applied, CreditApplication{
			ReturnID:     ret.ID,
			ReturnNumber: ret.ReturnNumber,
			Amount:       take,
		})
		remaining = remaining.Sub(take)
	}
	return applied, nil
}

func findInvoiceItem(invoice *entity.Invoice, productID string) *entity.InvoiceItem {
	for i := range invoice.Items {
		if invoice.Items[i].ProductID == productID {
			return &invoice.Items[i]
		}
	}
	return nil
}

// returnValueFor prices a returned quantity off the original invoice line:
// full boxes at pricePerBox, loose pieces at the per-piece fraction.
func returnValueFor(line *entity.InvoiceItem, in ItemInput) decimal.Decimal {
	if in.ReturnValue != nil {
		return *in.ReturnValue
	}
	value := line.PricePerBox.Mul(decimal.NewFromInt(int64(in.Quantity.Boxes)))
	if in.Quantity.Pieces > 0 && line.PiecesPerBox > 0 {
		perPiece := line.PricePerBox.Div(decimal.NewFromInt(int64(line.PiecesPerBox)))
		value = value.Add(perPiece.Mul(decimal.NewFromInt(int64(in.Quantity.Pieces))))
	}
	return value.Round(2)
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return d
}
