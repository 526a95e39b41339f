package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shwekart/preorder-backend/internal/domain/order"
)

var _ order.TxRunner = (*TxManager)(nil)

// TxManager implements order.TxRunner on a pgx pool. Each RunInTx call opens
// one transaction, binds every repository to it, and commits only if fn
// returns nil; any error rolls the whole transaction back.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager returns a TxManager using the given pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// RunInTx runs fn inside a single database transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context, s order.Stores) error) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewStores(tx))
	})
}

// NewStores builds the repository bundle bound to the given querier. Passing
// a pgx.Tx scopes every operation to that transaction; passing the pool runs
// them directly.
func NewStores(db Querier) order.Stores {
	return order.Stores{
		Merchants: NewMerchantRepository(db),
		Customers: NewCustomerRepository(db),
		Rates:     NewRateRepository(db),
		Orders:    NewOrderRepository(db),
	}
}

// Ensure pool and tx both satisfy Querier.
var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)
