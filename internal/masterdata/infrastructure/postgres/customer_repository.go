package postgres

import (
	"context"
	"database/sql"
	"errors"

	masterdata "platerline-cloud/internal/masterdata/domain"
)

// CustomerRepository persists customers.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository constructs a repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Get returns one customer, or (nil, nil) when absent.
func (r *CustomerRepository) Get(ctx context.Context, id int64) (*masterdata.Customer, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("customer repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, company_name, point_of_contact, email
FROM customers
WHERE id = $1
LIMIT 1`, id)

	var customer masterdata.Customer
	err := row.Scan(&customer.ID, &customer.CompanyName, &customer.PointOfContact, &customer.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// List returns all customers ordered by company name.
func (r *CustomerRepository) List(ctx context.Context) ([]masterdata.Customer, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("customer repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, company_name, point_of_contact, email
FROM customers
ORDER BY company_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []masterdata.Customer
	for rows.Next() {
		var customer masterdata.Customer
		if err := rows.Scan(&customer.ID, &customer.CompanyName, &customer.PointOfContact, &customer.Email); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

// Create inserts a customer and assigns its id.
func (r *CustomerRepository) Create(ctx context.Context, customer *masterdata.Customer) error {
	if r == nil || r.db == nil {
		return errors.New("customer repo: nil db")
	}
	if customer == nil {
		return errors.New("customer repo: nil customer")
	}
	return r.db.QueryRowContext(ctx, `
INSERT INTO customers (company_name, point_of_contact, email)
VALUES ($1,$2,$3)
RETURNING id`, customer.CompanyName, customer.PointOfContact, customer.Email).Scan(&customer.ID)
}

// Update overwrites a customer.
func (r *CustomerRepository) Update(ctx context.Context, customer *masterdata.Customer) error {
	if r == nil || r.db == nil {
		return errors.New("customer repo: nil db")
	}
	if customer == nil {
		return errors.New("customer repo: nil customer")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE customers
SET company_name = $1, point_of_contact = $2, email = $3
WHERE id = $4`, customer.CompanyName, customer.PointOfContact, customer.Email, customer.ID)
	return err
}

// Delete removes a customer.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("customer repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	return err
}
