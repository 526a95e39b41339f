package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// MissingRateError indicates the merchant has no active rate of one type,
// so an order cannot be priced.
type MissingRateError struct {
	MerchantID string
	Type       RateType
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no active %s rate for merchant %s", e.Type, e.MerchantID)
}

// Resolver looks up the active BUY and SELL rates for a merchant.
type Resolver struct {
	rates Repository
}

// NewResolver creates a Resolver backed by the given rate Repository.
func NewResolver(rates Repository) *Resolver {
	return &Resolver{rates: rates}
}

// Resolve returns the merchant's rate snapshot as of the given date.
// Both directions must be present: a missing BUY or SELL rate fails the
// whole lookup with a MissingRateError.
func (r *Resolver) Resolve(ctx context.Context, merchantID string, on time.Time) (*Snapshot, error) {
	buy, err := r.rates.ActiveRate(ctx, merchantID, RateBuy, on)
	if err != nil {
		if errors.Is(err, ErrNoActiveRate) {
			return nil, &MissingRateError{MerchantID: merchantID, Type: RateBuy}
		}
		return nil, errors.Wrap(err, "lookup buy rate")
	}

	sell, err := r.rates.ActiveRate(ctx, merchantID, RateSell, on)
	if err != nil {
		if errors.Is(err, ErrNoActiveRate) {
			return nil, &MissingRateError{MerchantID: merchantID, Type: RateSell}
		}
		return nil, errors.Wrap(err, "lookup sell rate")
	}

	return &Snapshot{Buy: buy.Value, Sell: sell.Value}, nil
}
