package exchange

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// RateType distinguishes the two conversion directions a merchant maintains.
type RateType string

const (
	// RateBuy values foreign-currency purchase costs in the merchant's base currency.
	RateBuy RateType = "BUY"
	// RateSell values foreign-currency selling prices in the merchant's base currency.
	RateSell RateType = "SELL"
)

// ErrNoActiveRate is returned when no rate of the requested type is in effect
// for the merchant on the given date.
var ErrNoActiveRate = errors.New("no active exchange rate")

// Rate is one entry in a merchant's exchange rate table. A rate is active
// from its effective date until a newer rate of the same type supersedes it.
type Rate struct {
	ID            string
	MerchantID    string
	Type          RateType
	Value         decimal.Decimal
	FromCurrency  string
	ToCurrency    string
	EffectiveDate time.Time
}

// Snapshot holds the BUY and SELL rate values resolved once at order creation
// time. The values are copied into the order and its lines; later changes to
// the rate table never affect an already-created order.
type Snapshot struct {
	Buy  decimal.Decimal
	Sell decimal.Decimal
}

// Repository defines read and write operations for the rate table.
type Repository interface {
	// ActiveRate returns the rate of the given type in effect for the
	// merchant on the given date, or ErrNoActiveRate.
	ActiveRate(ctx context.Context, merchantID string, typ RateType, on time.Time) (*Rate, error)
	Upsert(ctx context.Context, rate *Rate) error
}
