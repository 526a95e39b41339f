package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shwekart/preorder-backend/internal/domain/exchange"
)

func testRates() exchange.Snapshot {
	return exchange.Snapshot{
		Buy:  decimal.NewFromInt(650),
		Sell: decimal.NewFromInt(670),
	}
}

func baseLine() LineInput {
	return LineInput{
		Quantity:          1,
		UnitPurchasePrice: decimal.NewFromInt(100),
		UnitShippingPrice: decimal.NewFromInt(10),
		Discount:          NoDiscount(),
		UnitSellingPrice:  decimal.NewFromInt(150),
	}
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got),
		"want %s, got %s", want, got.String())
}

func TestCostLine_NoDiscount(t *testing.T) {
	cost, err := CostLine(baseLine(), testRates())
	require.NoError(t, err)

	assertDecimalEqual(t, "100", cost.PurchaseTotal)
	assertDecimalEqual(t, "65000", cost.PurchaseTotalBase)
	assertDecimalEqual(t, "6500", cost.ShippingBase)
	assertDecimalEqual(t, "71500", cost.CostBeforeDiscount)
	assertDecimalEqual(t, "0", cost.DiscountAmount)
	assertDecimalEqual(t, "71500", cost.FinalCost)
	assertDecimalEqual(t, "150", cost.SellingTotal)
	assertDecimalEqual(t, "100500", cost.SellingTotalBase)
	assertDecimalEqual(t, "29000", cost.ProfitBase)
}

func TestCostLine_FixedDiscount(t *testing.T) {
	in := baseLine()
	in.Discount = FixedDiscount(decimal.NewFromInt(5))

	cost, err := CostLine(in, testRates())
	require.NoError(t, err)

	assertDecimalEqual(t, "3250", cost.DiscountAmount)
	assertDecimalEqual(t, "68250", cost.FinalCost)
	assertDecimalEqual(t, "32250", cost.ProfitBase)
}

func TestCostLine_PercentDiscount(t *testing.T) {
	in := baseLine()
	in.Discount = PercentDiscount(decimal.NewFromInt(10))

	cost, err := CostLine(in, testRates())
	require.NoError(t, err)

	assertDecimalEqual(t, "7150", cost.DiscountAmount)
	assertDecimalEqual(t, "64350", cost.FinalCost)
}

func TestCostLine_MultiQuantity(t *testing.T) {
	in := baseLine()
	in.Quantity = 3

	cost, err := CostLine(in, testRates())
	require.NoError(t, err)

	// Shipping is a per-line figure valued through the BUY rate; quantity
	// scales only the purchase and selling sides.
	assertDecimalEqual(t, "300", cost.PurchaseTotal)
	assertDecimalEqual(t, "195000", cost.PurchaseTotalBase)
	assertDecimalEqual(t, "6500", cost.ShippingBase)
	assertDecimalEqual(t, "201500", cost.CostBeforeDiscount)
	assertDecimalEqual(t, "301500", cost.SellingTotalBase)
}

func TestCostLine_Deterministic(t *testing.T) {
	in := baseLine()
	in.Discount = PercentDiscount(decimal.RequireFromString("12.5"))

	first, err := CostLine(in, testRates())
	require.NoError(t, err)

	for range 10 {
		again, err := CostLine(in, testRates())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCostLine_InvalidQuantity(t *testing.T) {
	in := baseLine()
	in.Quantity = 0

	_, err := CostLine(in, testRates())
	require.ErrorIs(t, err, ErrInvalidQuantity)

	in.Quantity = -2
	_, err = CostLine(in, testRates())
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCostLine_NegativePrice(t *testing.T) {
	in := baseLine()
	in.UnitPurchasePrice = decimal.NewFromInt(-1)

	_, err := CostLine(in, testRates())
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestCostLine_NegativeDiscount(t *testing.T) {
	in := baseLine()
	in.Discount = PercentDiscount(decimal.NewFromInt(-5))

	_, err := CostLine(in, testRates())
	require.ErrorIs(t, err, ErrNegativeDiscount)

	in.Discount = FixedDiscount(decimal.NewFromInt(-1))
	_, err = CostLine(in, testRates())
	require.ErrorIs(t, err, ErrNegativeDiscount)
}

func TestLineCost_RoundedInvariants(t *testing.T) {
	in := LineInput{
		Quantity:          7,
		UnitPurchasePrice: decimal.RequireFromString("33.333"),
		UnitShippingPrice: decimal.RequireFromString("1.119"),
		Discount:          PercentDiscount(decimal.RequireFromString("7.77")),
		UnitSellingPrice:  decimal.RequireFromString("49.995"),
	}
	rates := exchange.Snapshot{
		Buy:  decimal.RequireFromString("651.37"),
		Sell: decimal.RequireFromString("672.49"),
	}

	cost, err := CostLine(in, rates)
	require.NoError(t, err)
	rounded := cost.Rounded()

	// finalCost = costBeforeDiscount - discountAmount, exactly at scale.
	assert.True(t, rounded.FinalCost.Equal(rounded.CostBeforeDiscount.Sub(rounded.DiscountAmount)))
	// profitBase = sellingTotalBase - finalCost, exactly at scale.
	assert.True(t, rounded.ProfitBase.Equal(rounded.SellingTotalBase.Sub(rounded.FinalCost)))
	// Base figures carry 2 decimal places, native figures 4.
	assert.LessOrEqual(t, int(-rounded.FinalCost.Exponent()), 2)
	assert.LessOrEqual(t, int(-rounded.PurchaseTotal.Exponent()), 4)
}
