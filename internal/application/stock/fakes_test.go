package stock

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/internal/domain/units"
	"github.com/tilemart/tilemart-api/pkg/logger"
)

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
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
	for _, p := range r.products {
		if p.IsActive &&
			strings.EqualFold(p.Name, name) &&
			p.Type == productType && p.SubType == subType && p.Size == size {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(filter repository.ProductFilter) ([]*entity.Product, int, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) SetActive(id string, active bool) error {
	if p, ok := r.products[id]; ok {
		p.IsActive = active
	}
	return nil
}

func (r *fakeProductRepo) UpdateLowStockThreshold(id string, threshold int) error {
	if p, ok := r.products[id]; ok {
		p.LowStockThreshold = threshold
	}
	return nil
}

func (r *fakeProductRepo) BulkUpdateLowStockThreshold(ids []string, threshold int) (int, error) {
	n := 0
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			p.LowStockThreshold = threshold
			n++
		}
	}
	return n, nil
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
	var out []*entity.StockHistory
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ProductID == productID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) List(filter repository.StockHistoryFilter) ([]*entity.StockHistory, int, error) {
	var out []*entity.StockHistory
	for i := len(r.entries) - 1; i >= 0; i-- {
		if filter.Action == "" || r.entries[i].Action == filter.Action {
			out = append(out, r.entries[i])
		}
	}
	return out, len(out), nil
}

func (r *fakeHistoryRepo) SetRelatedTransaction(id, relatedID string) error {
	for _, e := range r.entries {
		if e.ID == id {
			e.RelatedTransactionID = relatedID
		}
	}
	return nil
}

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

func (r *fakeHistoryRepo) last() *entity.StockHistory {
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

type fakeDamagedRepo struct {
	records []*entity.DamagedInventory
}

func (r *fakeDamagedRepo) Create(rec *entity.DamagedInventory) error {
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *fakeDamagedRepo) GetByID(id string) (*entity.DamagedInventory, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDamagedRepo) List(filter repository.DamagedFilter) ([]*entity.DamagedInventory, int, error) {
	var out []*entity.DamagedInventory
	for _, rec := range r.records {
		if filter.ProductID != "" && rec.ProductID != filter.ProductID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeDamagedRepo) UpdateStatus(id, status string) (*entity.DamagedInventory, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Status = status
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

type fixture struct {
	products *fakeProductRepo
	history  *fakeHistoryRepo
	damaged  *fakeDamagedRepo
	ledger   *Ledger
	usecase  *ProductUseCase
}

func newFixture() *fixture {
	products := newFakeProductRepo()
	history := &fakeHistoryRepo{}
	damaged := &fakeDamagedRepo{}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return &fixture{
		products: products,
		history:  history,
		damaged:  damaged,
		ledger:   NewLedger(products, history, damaged, log),
		usecase:  NewProductUseCase(products, history, damaged, log),
	}
}

func (f *fixture) seedProduct(name string, ppb, stockBoxes, stockPieces int) *entity.Product {
	p := &entity.Product{
		ID:           uuid.New().String(),
		Name:         name,
		Type:         "Floor",
		SubType:      "Glossy",
		Size:         "2×2",
		PiecesPerBox: ppb,
		Stock:        units.Quantity{Boxes: stockBoxes, Pieces: stockPieces},
		IsActive:     true,
	}
	_ = f.products.Create(p)
	return p
}
