package order

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shwekart/preorder-backend/internal/domain/exchange"
)

var hundred = decimal.NewFromInt(100)

// Sentinel errors for malformed line input.
var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than 0")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrNegativeDiscount = errors.New("discount value must not be negative")
)

// LineInput holds the raw figures for pricing one order line.
type LineInput struct {
	Quantity          int
	UnitPurchasePrice decimal.Decimal
	UnitShippingPrice decimal.Decimal
	Discount          Discount
	UnitSellingPrice  decimal.Decimal
}

// LineCost is the full cost, discount, and margin breakdown of one line.
// PurchaseTotal, SellingTotal, and Profit are in the line's native currency;
// the remaining figures are in the merchant's base currency. Values are kept
// at full precision; call Rounded before persisting.
type LineCost struct {
	PurchaseTotal      decimal.Decimal
	PurchaseTotalBase  decimal.Decimal
	ShippingBase       decimal.Decimal
	CostBeforeDiscount decimal.Decimal
	DiscountAmount     decimal.Decimal
	FinalCost          decimal.Decimal
	SellingTotal       decimal.Decimal
	SellingTotalBase   decimal.Decimal
	Profit             decimal.Decimal
	ProfitBase         decimal.Decimal
}

// CostLine computes the breakdown for one line under the given rate snapshot.
// It is a pure function: the same input and snapshot always produce the same
// output. Shipping is valued into the base currency through the BUY rate,
// matching the merchant's historical bookkeeping.
func CostLine(in LineInput, rates exchange.Snapshot) (LineCost, error) {
	if in.Quantity <= 0 {
		return LineCost{}, ErrInvalidQuantity
	}
	if in.UnitPurchasePrice.IsNegative() || in.UnitShippingPrice.IsNegative() || in.UnitSellingPrice.IsNegative() {
		return LineCost{}, ErrNegativePrice
	}
	if in.Discount.Value.IsNegative() {
		return LineCost{}, ErrNegativeDiscount
	}

	qty := decimal.NewFromInt(int64(in.Quantity))

	purchaseTotal := in.UnitPurchasePrice.Mul(qty)
	purchaseTotalBase := purchaseTotal.Mul(rates.Buy)
	shippingBase := in.UnitShippingPrice.Mul(rates.Buy)
	costBeforeDiscount := purchaseTotalBase.Add(shippingBase)

	var discountAmount decimal.Decimal
	switch in.Discount.Type {
	case DiscountFixed:
		discountAmount = in.Discount.Value.Mul(rates.Buy)
	case DiscountPercent:
		discountAmount = costBeforeDiscount.Mul(in.Discount.Value).Div(hundred)
	default:
		discountAmount = decimal.Zero
	}

	finalCost := costBeforeDiscount.Sub(discountAmount)

	sellingTotal := in.UnitSellingPrice.Mul(qty)
	sellingTotalBase := sellingTotal.Mul(rates.Sell)
	profitBase := sellingTotalBase.Sub(finalCost)
	profit := profitBase.Div(rates.Sell)

	return LineCost{
		PurchaseTotal:      purchaseTotal,
		PurchaseTotalBase:  purchaseTotalBase,
		ShippingBase:       shippingBase,
		CostBeforeDiscount: costBeforeDiscount,
		DiscountAmount:     discountAmount,
		FinalCost:          finalCost,
		SellingTotal:       sellingTotal,
		SellingTotalBase:   sellingTotalBase,
		Profit:             profit,
		ProfitBase:         profitBase,
	}, nil
}

// Rounded returns the breakdown at the persistence scale: 2 decimal places
// for base-currency figures, 4 for native-currency figures. Rounding happens
// only here so intermediate results never compound rounding error. FinalCost
// and ProfitBase are re-derived from the rounded components so that
// finalCost = costBeforeDiscount - discountAmount and
// profitBase = sellingTotalBase - finalCost hold exactly at scale.
func (c LineCost) Rounded() LineCost {
	costBeforeDiscount := c.CostBeforeDiscount.Round(2)
	discountAmount := c.DiscountAmount.Round(2)
	finalCost := costBeforeDiscount.Sub(discountAmount)
	sellingTotalBase := c.SellingTotalBase.Round(2)
	profitBase := sellingTotalBase.Sub(finalCost)

	return LineCost{
		PurchaseTotal:      c.PurchaseTotal.Round(4),
		PurchaseTotalBase:  c.PurchaseTotalBase.Round(2),
		ShippingBase:       c.ShippingBase.Round(2),
		CostBeforeDiscount: costBeforeDiscount,
		DiscountAmount:     discountAmount,
		FinalCost:          finalCost,
		SellingTotal:       c.SellingTotal.Round(4),
		SellingTotalBase:   sellingTotalBase,
		Profit:             c.Profit.Round(4),
		ProfitBase:         profitBase,
	}
}
