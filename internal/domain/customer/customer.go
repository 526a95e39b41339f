package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer represents a buyer registered with a merchant.
type Customer struct {
	ID         string
	MerchantID string
	Name       string
	Phone      string
}

// Repository defines read operations for customers.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
}
