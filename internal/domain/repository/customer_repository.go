package repository

import "github.com/tilemart/tilemart-api/internal/domain/entity"

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search string // matches name, phone or address
	SortBy string
	Order  string // asc | desc
}

// CustomerRepository is the persistence port for Customer.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByPhone(phone string) (*entity.Customer, error)
	List(filter CustomerFilter) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	Delete(id string) error
}
