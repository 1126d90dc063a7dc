package entity

import "time"

// User roles.
const (
	RoleAdmin       = "admin"
	RoleStaff       = "staff"
	RoleStockViewer = "stock-viewer"
)

// User is a backoffice account for the legacy bearer-token login.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	IsActive     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
