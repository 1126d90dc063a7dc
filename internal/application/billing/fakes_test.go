package billing

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tilemart/tilemart-api/internal/application/stock"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindActiveMatch(name, productType, subType, size string) (*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) List(filter repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) SetActive(id string, active bool) error { return nil }

func (r *fakeProductRepo) UpdateLowStockThreshold(id string, threshold int) error { return nil }

func (r *fakeProductRepo) BulkUpdateLowStockThreshold(ids []string, threshold int) (int, error) {
	return 0, nil
}

type fakeHistoryRepo struct {
	entries []*entity.StockHistory
}

func (r *fakeHistoryRepo) Create(e *entity.StockHistory) error {
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeHistoryRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockHistory, error) {
	return nil, nil
}

func (r *fakeHistoryRepo) List(filter repository.StockHistoryFilter) ([]*entity.StockHistory, int, error) {
	return r.entries, len(r.entries), nil
}

func (r *fakeHistoryRepo) SetRelatedTransaction(id, relatedID string) error { return nil }

func (r *fakeHistoryRepo) DeleteByInvoice(invoiceID string) error {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.InvoiceID != invoiceID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

func (r *fakeHistoryRepo) byInvoice(invoiceID string) []*entity.StockHistory {
	var out []*entity.StockHistory
	for _, e := range r.entries {
		if e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}
	return out
}

type fakeDamagedRepo struct{}

func (r *fakeDamagedRepo) Create(rec *entity.DamagedInventory) error { return nil }

func (r *fakeDamagedRepo) GetByID(id string) (*entity.DamagedInventory, error) { return nil, nil }

func (r *fakeDamagedRepo) List(filter repository.DamagedFilter) ([]*entity.DamagedInventory, int, error) {
	return nil, 0, nil
}

func (r *fakeDamagedRepo) UpdateStatus(id, status string) (*entity.DamagedInventory, error) {
	return nil, nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetByPhone(phone string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) List(filter repository.CustomerFilter) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.customers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) Delete(id string) error {
	delete(r.customers, id)
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[string]*entity.Invoice
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByNumber(number string) (*entity.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) List(filter repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeInvoiceRepo) ListByCustomer(customerID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListPendingWithDueDate() ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.Payment.NextDueDate == nil {
			continue
		}
		if inv.Payment.Status == entity.PaymentStatusPending || inv.Payment.Status == entity.PaymentStatusPartial {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Payment.NextDueDate.Before(*out[j].Payment.NextDueDate)
	})
	return out, nil
}

func (r *fakeInvoiceRepo) ListMissingDerivedValues() ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.TotalBeforeDiscount.IsZero() || inv.InvoiceValue.IsZero() {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Update(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Delete(id string) error {
	delete(r.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) LastNumberWithPrefix(prefix string) (string, error) {
	last := ""
	for _, inv := range r.invoices {
		if strings.HasPrefix(inv.InvoiceNumber, prefix) && inv.InvoiceNumber > last {
			last = inv.InvoiceNumber
		}
	}
	return last, nil
}

func (r *fakeInvoiceRepo) SumDiscountByCustomer(customerID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			sum = sum.Add(inv.Discount)
		}
	}
	return sum, nil
}

type fakePaymentRepo struct {
	payments map[string]*entity.Payment
}

func (r *fakePaymentRepo) Create(p *entity.Payment) error {
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(id string) (*entity.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) List(filter repository.PaymentFilter) ([]*entity.Payment, int, error) {
	var out []*entity.Payment
	for _, p := range r.payments {
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakePaymentRepo) ListByCustomer(customerID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.payments {
		if p.CustomerID == customerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Delete(id string) error {
	delete(r.payments, id)
	return nil
}

func (r *fakePaymentRepo) DeleteByInvoice(invoiceID string) error {
	for id, p := range r.payments {
		if p.InvoiceID == invoiceID {
			delete(r.payments, id)
		}
	}
	return nil
}

type fakeReturnRepo struct {
	returns map[string]*entity.Return
}

func (r *fakeReturnRepo) Create(ret *entity.Return) error {
	cp := *ret
	r.returns[ret.ID] = &cp
	return nil
}

func (r *fakeReturnRepo) GetByID(id string) (*entity.Return, error) {
	ret, ok := r.returns[id]
	if !ok {
		return nil, nil
	}
	cp := *ret
	return &cp, nil
}

func (r *fakeReturnRepo) List(filter repository.ReturnFilter) ([]*entity.Return, error) {
	var out []*entity.Return
	for _, ret := range r.returns {
		cp := *ret
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeReturnRepo) ListOpenCreditsByCustomer(customerID string) ([]*entity.Return, error) {
	var out []*entity.Return
	for _, ret := range r.returns {
		if ret.CustomerID == customerID && ret.ReturnType == entity.ReturnTypeCredit &&
			ret.CreditBalance.GreaterThan(decimal.Zero) {
			cp := *ret
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeReturnRepo) Update(ret *entity.Return) error {
	cp := *ret
	r.returns[ret.ID] = &cp
	return nil
}

func (r *fakeReturnRepo) LastNumberWithPrefix(prefix string) (string, error) {
	last := ""
	for _, ret := range r.returns {
		if strings.HasPrefix(ret.ReturnNumber, prefix) && ret.ReturnNumber > last {
			last = ret.ReturnNumber
		}
	}
	return last, nil
}

type fixture struct {
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	invoices  *fakeInvoiceRepo
	payments  *fakePaymentRepo
	returns   *fakeReturnRepo
	history   *fakeHistoryRepo
	ledger    *stock.Ledger

	invoiceUC  *InvoiceUseCase
	customerUC *CustomerUseCase
}

func newFixture() *fixture {
	products := &fakeProductRepo{products: map[string]*entity.Product{}}
	customers := &fakeCustomerRepo{customers: map[string]*entity.Customer{}}
	invoices := &fakeInvoiceRepo{invoices: map[string]*entity.Invoice{}}
	payments := &fakePaymentRepo{payments: map[string]*entity.Payment{}}
	returns := &fakeReturnRepo{returns: map[string]*entity.Return{}}
	history := &fakeHistoryRepo{}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	ledger := stock.NewLedger(products, history, &fakeDamagedRepo{}, log)
	return &fixture{
		products:   products,
		customers:  customers,
		invoices:   invoices,
		payments:   payments,
		returns:    returns,
		history:    history,
		ledger:     ledger,
		invoiceUC:  NewInvoiceUseCase(invoices, customers, products, payments, ledger, log),
		customerUC: NewCustomerUseCase(customers, invoices, returns, log),
	}
}

func (f *fixture) seedCustomer(name, phone string) *entity.Customer {
	c := &entity.Customer{ID: uuid.New().String(), Name: name, Phone: phone, IsActive: true}
	_ = f.customers.Create(c)
	return c
}

func (f *fixture) seedProduct(name string, ppb, stockBoxes int, pricePerBox decimal.Decimal) *entity.Product {
	p := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		Type:         "Floor",
		SubType:      "Glossy",
		Size:         "2×2",
		PiecesPerBox: ppb,
		Stock:        units.Quantity{Boxes: stockBoxes},
		PricePerBox:  pricePerBox,
		IsActive:     true,
	}
	_ = f.products.Create(p)
	return p
}

func (f *fixture) item(p *entity.Product, boxes, pieces int) entity.InvoiceItem {
	ppb := decimal.NewFromInt(int64(p.PiecesPerBox))
	total := p.PricePerBox.Mul(decimal.NewFromInt(int64(boxes))).
		Add(p.PricePerBox.Div(ppb).Mul(decimal.NewFromInt(int64(pieces))))
	return entity.InvoiceItem{
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     units.Quantity{Boxes: boxes, Pieces: pieces},
		PiecesPerBox: p.PiecesPerBox,
		PricePerBox:  p.PricePerBox,
		ItemTotal:    total,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
