package repository

import "github.com/tilemart/tilemart-api/internal/domain/entity"

// StockHistoryFilter narrows ledger listings.
type StockHistoryFilter struct {
	Action string
	Limit  int
	Offset int
}

// StockHistoryRepository is the persistence port for the append-only ledger.
type StockHistoryRepository interface {
	Create(entry *entity.StockHistory) error
	ListByProduct(productID string, limit, offset int) ([]*entity.StockHistory, error)
	List(filter StockHistoryFilter) ([]*entity.StockHistory, int, error)
	// SetRelatedTransaction backfills the reciprocal link on the first half
	// of an exchange-different pair. The only permitted mutation.
	SetRelatedTransaction(id, relatedID string) error
	DeleteByInvoice(invoiceID string) error
}
