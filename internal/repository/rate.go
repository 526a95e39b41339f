package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/shwekart/preorder-backend/internal/domain/exchange"
)

const (
	activeRateSQL = `SELECT id, merchant_id, rate_type, value, from_currency, to_currency, effective_date
		FROM exchange_rates
		WHERE merchant_id = $1 AND rate_type = $2 AND effective_date <= $3
		ORDER BY effective_date DESC
		LIMIT 1`

	upsertRateSQL = `INSERT INTO exchange_rates (id, merchant_id, rate_type, value, from_currency, to_currency, effective_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (merchant_id, rate_type, effective_date) DO UPDATE SET
			value = EXCLUDED.value,
			from_currency = EXCLUDED.from_currency,
			to_currency = EXCLUDED.to_currency`
)

var _ exchange.Repository = (*RateRepository)(nil)

// RateRepository implements exchange.Repository backed by PostgreSQL.
type RateRepository struct {
	db Querier
}

// NewRateRepository returns a RateRepository bound to the given querier.
func NewRateRepository(db Querier) *RateRepository {
	return &RateRepository{db: db}
}

// ActiveRate returns the most recent rate of the given type whose effective
// date is on or before the given day, or exchange.ErrNoActiveRate.
func (r *RateRepository) ActiveRate(ctx context.Context, merchantID string, typ exchange.RateType, on time.Time) (*exchange.Rate, error) {
	var rate exchange.Rate
	err := r.db.QueryRow(ctx, activeRateSQL, merchantID, string(typ), on).Scan(
		&rate.ID, &rate.MerchantID, &rate.Type, &rate.Value,
		&rate.FromCurrency, &rate.ToCurrency, &rate.EffectiveDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, exchange.ErrNoActiveRate
		}
		return nil, fmt.Errorf("getting %s rate for merchant %q: %w", typ, merchantID, err)
	}
	return &rate, nil
}

// Upsert writes a rate row, replacing any entry for the same merchant, type,
// and effective date.
func (r *RateRepository) Upsert(ctx context.Context, rate *exchange.Rate) error {
	_, err := r.db.Exec(ctx, upsertRateSQL,
		rate.ID, rate.MerchantID, string(rate.Type), rate.Value,
		rate.FromCurrency, rate.ToCurrency, rate.EffectiveDate,
	)
	if err != nil {
		return fmt.Errorf("upserting %s rate for merchant %q: %w", rate.Type, rate.MerchantID, err)
	}
	return nil
}
