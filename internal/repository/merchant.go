package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/shwekart/preorder-backend/internal/domain/merchant"
)

const getMerchantByIDSQL = `SELECT id, name, base_currency, purchase_currency
	FROM merchants WHERE id = $1`

var _ merchant.Repository = (*MerchantRepository)(nil)

// MerchantRepository implements merchant.Repository backed by PostgreSQL.
type MerchantRepository struct {
	db Querier
}

// NewMerchantRepository returns a MerchantRepository bound to the given querier.
func NewMerchantRepository(db Querier) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// GetByID returns a single merchant by its identifier.
func (r *MerchantRepository) GetByID(ctx context.Context, id string) (*merchant.Merchant, error) {
	var m merchant.Merchant
	err := r.db.QueryRow(ctx, getMerchantByIDSQL, id).Scan(
		&m.ID, &m.Name, &m.BaseCurrency, &m.PurchaseCurrency,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, merchant.ErrNotFound
		}
		return nil, fmt.Errorf("getting merchant %q: %w", id, err)
	}
	return &m, nil
}
