package repository

import "github.com/tilemart/tilemart-api/internal/domain/entity"

// ProductFilter narrows product listings.
type ProductFilter struct {
	Query       string // matches product name
	Type        string
	Size        string
	HSNNo       string
	Location    string
	InStockOnly bool
	Limit       int
	Offset      int
}

// ProductRepository is the persistence port for Product.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// FindActiveMatch locates an active product with the same name and
	// classification (merge-or-create on stock intake).
	FindActiveMatch(name, productType, subType, size string) (*entity.Product, error)
	List(filter ProductFilter) ([]*entity.Product, int, error)
	Update(product *entity.Product) error
	SetActive(id string, active bool) error
	UpdateLowStockThreshold(id string, threshold int) error
	BulkUpdateLowStockThreshold(ids []string, threshold int) (int, error)
}
