package repository

import "github.com/tilemart/tilemart-api/internal/domain/entity"

// UserRepository is the persistence port for User.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	// GetByIdentifier matches an active user by email or phone.
	GetByIdentifier(identifier string) (*entity.User, error)
}
