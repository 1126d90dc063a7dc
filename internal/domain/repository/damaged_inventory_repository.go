package repository

import "github.com/tilemart/tilemart-api/internal/domain/entity"

// DamagedFilter narrows damaged-inventory listings.
type DamagedFilter struct {
	ProductID  string
	DamageType string
	Status     string
	Limit      int
	Offset     int
}

// DamagedInventoryRepository is the persistence port for DamagedInventory.
type DamagedInventoryRepository interface {
	Create(record *entity.DamagedInventory) error
	GetByID(id string) (*entity.DamagedInventory, error)
	List(filter DamagedFilter) ([]*entity.DamagedInventory, int, error)
	UpdateStatus(id, status string) (*entity.DamagedInventory, error)
}
