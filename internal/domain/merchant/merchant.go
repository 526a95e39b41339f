package merchant

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested merchant does not exist.
var ErrNotFound = errors.New("merchant not found")

// Merchant represents a tenant: a shop that purchases stock in a foreign
// currency and sells it to customers in its base currency.
type Merchant struct {
	ID               string
	Name             string
	BaseCurrency     string
	PurchaseCurrency string
}

// Repository defines read operations for merchants.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Merchant, error)
}
