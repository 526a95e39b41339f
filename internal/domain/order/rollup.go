package order

import "github.com/shopspring/decimal"

// Totals holds the order-level sums of the per-line base-currency figures.
type Totals struct {
	Purchase           decimal.Decimal
	Shipping           decimal.Decimal
	CostBeforeDiscount decimal.Decimal
	Discount           decimal.Decimal
	FinalCost          decimal.Decimal
	Selling            decimal.Decimal
	Profit             decimal.Decimal
}

// SumLines rolls every line's cost and margin figures up into order totals.
func SumLines(items []OrderItem) Totals {
	t := Totals{
		Purchase:           decimal.Zero,
		Shipping:           decimal.Zero,
		CostBeforeDiscount: decimal.Zero,
		Discount:           decimal.Zero,
		FinalCost:          decimal.Zero,
		Selling:            decimal.Zero,
		Profit:             decimal.Zero,
	}

	for _, item := range items {
		t.Purchase = t.Purchase.Add(item.PurchaseTotalBase)
		t.Shipping = t.Shipping.Add(item.ShippingBase)
		t.CostBeforeDiscount = t.CostBeforeDiscount.Add(item.CostBeforeDiscount)
		t.Discount = t.Discount.Add(item.DiscountAmount)
		t.FinalCost = t.FinalCost.Add(item.FinalCost)
		t.Selling = t.Selling.Add(item.SellingTotalBase)
		t.Profit = t.Profit.Add(item.ProfitBase)
	}

	return t
}

// SumPayments returns the billable and paid totals across customer orders.
// At creation time paid is always zero, but the computation is generic so the
// same rollup serves payment recomputation later.
func SumPayments(customerOrders []CustomerOrder) (billable, paid decimal.Decimal) {
	billable = decimal.Zero
	paid = decimal.Zero
	for _, co := range customerOrders {
		billable = billable.Add(co.TotalBillable)
		paid = paid.Add(co.TotalPaid)
	}
	return billable, paid
}

// Aggregate writes the line totals and payment rollup onto the order header.
func Aggregate(o *Order, items []OrderItem, customerOrders []CustomerOrder) {
	t := SumLines(items)
	o.TotalPurchase = t.Purchase
	o.TotalShipping = t.Shipping
	o.TotalCostBeforeDiscount = t.CostBeforeDiscount
	o.TotalDiscount = t.Discount
	o.TotalCost = t.FinalCost
	o.TotalSelling = t.Selling
	o.TotalProfit = t.Profit

	billable, paid := SumPayments(customerOrders)
	o.TotalBillable = billable
	o.PaidAmount = paid
	o.RemainingAmount = billable.Sub(paid)
	o.PaymentStatus = PaymentStatusFor(billable, paid)
}
