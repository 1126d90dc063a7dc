package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `
	id, name, phone, email, address, gst_number,
	total_purchase_amount, total_paid_amount, outstanding_balance,
	total_invoices, last_purchase_date, is_active, notes, created_at, updated_at`

// CustomerRepo implements the CustomerRepository port over PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository builds the customer persistence adapter.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.GSTNumber,
		&c.TotalPurchaseAmount, &c.TotalPaidAmount, &c.OutstandingBalance,
		&c.TotalInvoices, &c.LastPurchaseDate, &c.IsActive, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new customer.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	query := `
		INSERT INTO customers (
			id, name, phone, email, address, gst_number,
			total_purchase_amount, total_paid_amount, outstanding_balance,
			total_invoices, last_purchase_date, is_active, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name, customer.Phone, customer.Email, customer.Address, customer.GSTNumber,
		customer.TotalPurchaseAmount, customer.TotalPaidAmount, customer.OutstandingBalance,
		customer.TotalInvoices, customer.LastPurchaseDate, customer.IsActive, customer.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID returns one customer, nil when absent.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	customer, err := scanCustomer(r.q.QueryRow(context.Background(),
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

// GetByPhone returns one customer by phone, nil when absent.
func (r *CustomerRepo) GetByPhone(phone string) (*entity.Customer, error) {
	customer, err := scanCustomer(r.q.QueryRow(context.Background(),
		`SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by phone: %w", err)
	}
	return customer, nil
}

// List returns customers matching the filter.
func (r *CustomerRepo) List(filter repository.CustomerFilter) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE is_active`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR phone ILIKE $%d OR address ILIKE $%d)",
			len(args), len(args), len(args))
	}
	query += " ORDER BY " + customerSortColumn(filter.SortBy) + " " + sortOrder(filter.Order)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, customer)
	}
	return list, rows.Err()
}

// Update rewrites the customer row.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers SET
			name = $2, phone = $3, email = $4, address = $5, gst_number = $6,
			total_purchase_amount = $7, total_paid_amount = $8, outstanding_balance = $9,
			total_invoices = $10, last_purchase_date = $11, is_active = $12, notes = $13,
			updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Name, customer.Phone, customer.Email, customer.Address, customer.GSTNumber,
		customer.TotalPurchaseAmount, customer.TotalPaidAmount, customer.OutstandingBalance,
		customer.TotalInvoices, customer.LastPurchaseDate, customer.IsActive, customer.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete removes the customer row.
func (r *CustomerRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func customerSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "name"
	case "outstandingBalance":
		return "outstanding_balance"
	case "totalPurchaseAmount":
		return "total_purchase_amount"
	case "lastPurchaseDate":
		return "last_purchase_date"
	default:
		return "name"
	}
}

func sortOrder(order string) string {
	if order == "desc" {
		return "DESC"
	}
	return "ASC"
}
