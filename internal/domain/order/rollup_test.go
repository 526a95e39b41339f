package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSumLines(t *testing.T) {
	items := []OrderItem{
		{
			PurchaseTotalBase:  decimal.NewFromInt(65000),
			ShippingBase:       decimal.NewFromInt(6500),
			CostBeforeDiscount: decimal.NewFromInt(71500),
			DiscountAmount:     decimal.NewFromInt(3250),
			FinalCost:          decimal.NewFromInt(68250),
			SellingTotalBase:   decimal.NewFromInt(100500),
			ProfitBase:         decimal.NewFromInt(32250),
		},
		{
			PurchaseTotalBase:  decimal.NewFromInt(130000),
			ShippingBase:       decimal.NewFromInt(6500),
			CostBeforeDiscount: decimal.NewFromInt(136500),
			DiscountAmount:     decimal.Zero,
			FinalCost:          decimal.NewFromInt(136500),
			SellingTotalBase:   decimal.NewFromInt(201000),
			ProfitBase:         decimal.NewFromInt(64500),
		},
	}

	totals := SumLines(items)

	assertDecimalEqual(t, "195000", totals.Purchase)
	assertDecimalEqual(t, "13000", totals.Shipping)
	assertDecimalEqual(t, "208000", totals.CostBeforeDiscount)
	assertDecimalEqual(t, "3250", totals.Discount)
	assertDecimalEqual(t, "204750", totals.FinalCost)
	assertDecimalEqual(t, "301500", totals.Selling)
	assertDecimalEqual(t, "96750", totals.Profit)
}

func TestSumPayments(t *testing.T) {
	customerOrders := []CustomerOrder{
		{TotalBillable: decimal.NewFromInt(150), TotalPaid: decimal.NewFromInt(150)},
		{TotalBillable: decimal.NewFromInt(330), TotalPaid: decimal.NewFromInt(100)},
	}

	billable, paid := SumPayments(customerOrders)
	assertDecimalEqual(t, "480", billable)
	assertDecimalEqual(t, "250", paid)
}

func TestAggregate(t *testing.T) {
	o := &Order{}
	items := []OrderItem{
		{
			PurchaseTotalBase:  decimal.NewFromInt(65000),
			ShippingBase:       decimal.NewFromInt(6500),
			CostBeforeDiscount: decimal.NewFromInt(71500),
			FinalCost:          decimal.NewFromInt(71500),
			SellingTotalBase:   decimal.NewFromInt(100500),
			ProfitBase:         decimal.NewFromInt(29000),
		},
	}
	customerOrders := []CustomerOrder{
		{TotalBillable: decimal.NewFromInt(150), TotalPaid: decimal.NewFromInt(50)},
	}

	Aggregate(o, items, customerOrders)

	assertDecimalEqual(t, "65000", o.TotalPurchase)
	assertDecimalEqual(t, "71500", o.TotalCost)
	assertDecimalEqual(t, "29000", o.TotalProfit)
	assertDecimalEqual(t, "150", o.TotalBillable)
	assertDecimalEqual(t, "50", o.PaidAmount)
	assertDecimalEqual(t, "100", o.RemainingAmount)
	assert.Equal(t, PaymentPartial, o.PaymentStatus)
}

func TestPaymentStatusFor(t *testing.T) {
	billable := decimal.NewFromInt(100)

	assert.Equal(t, PaymentUnpaid, PaymentStatusFor(billable, decimal.Zero))
	assert.Equal(t, PaymentUnpaid, PaymentStatusFor(billable, decimal.NewFromInt(-5)))
	assert.Equal(t, PaymentPartial, PaymentStatusFor(billable, decimal.NewFromInt(40)))
	assert.Equal(t, PaymentPaid, PaymentStatusFor(billable, billable))
	assert.Equal(t, PaymentPaid, PaymentStatusFor(billable, decimal.NewFromInt(120)))
	// A zero-billable order with no payments counts as unpaid, not paid.
	assert.Equal(t, PaymentUnpaid, PaymentStatusFor(decimal.Zero, decimal.Zero))
}
