package masterdata

import (
	"context"
	"errors"
	"strings"
)

// Customer represents a customer company commissioning plating lines.
type Customer struct {
	ID             int64
	CompanyName    string
	PointOfContact string
	Email          string
}

// Validate checks customer invariants.
func (c Customer) Validate() error {
	if c.CompanyName == "" {
		return errors.New("customer: empty company name")
	}
	if c.PointOfContact == "" {
		return errors.New("customer: empty point of contact")
	}
	if !strings.Contains(c.Email, "@") {
		return errors.New("customer: invalid email")
	}
	return nil
}

// CustomerRepository manages customer persistence.
type CustomerRepository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id int64) error
}
