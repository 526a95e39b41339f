package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/shwekart/preorder-backend/internal/domain/customer"
)

const getCustomerByIDSQL = `SELECT id, merchant_id, name, phone
	FROM customers WHERE id = $1`

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	db Querier
}

// NewCustomerRepository returns a CustomerRepository bound to the given querier.
func NewCustomerRepository(db Querier) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.QueryRow(ctx, getCustomerByIDSQL, id).Scan(
		&c.ID, &c.MerchantID, &c.Name, &c.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %q: %w", id, err)
	}
	return &c, nil
}
