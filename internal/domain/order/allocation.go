package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AllocationRequest assigns a quantity of one order line, named by its
// ordinal index, to a customer order. SellingPriceOverride replaces the
// line's default selling price when set.
type AllocationRequest struct {
	LineIndex            int
	Quantity             int
	SellingPriceOverride *decimal.Decimal
}

// CustomerOrderRequest asks for one sub-order for a customer.
type CustomerOrderRequest struct {
	CustomerID  string
	Allocations []AllocationRequest
}

// LineIndexError indicates an allocation referenced a line index outside the
// created lines' range.
type LineIndexError struct {
	Index int
	Lines int
}

func (e *LineIndexError) Error() string {
	return fmt.Sprintf("line index %d out of range (order has %d lines)", e.Index, e.Lines)
}

// StockExceededError indicates the cumulative allocations for a line exceed
// its purchased quantity.
type StockExceededError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// ValidateStockAllocation checks every allocation request: line indices in
// range, quantities positive, price overrides non-negative, and no line
// over-allocated across all customer orders. It runs after every line exists
// and before any customer order is persisted, so a violation aborts the whole
// transaction with nothing written.
func ValidateStockAllocation(items []OrderItem, reqs []CustomerOrderRequest) error {
	requested := make(map[int]int, len(items))
	for _, req := range reqs {
		for _, alloc := range req.Allocations {
			if alloc.LineIndex < 0 || alloc.LineIndex >= len(items) {
				return &LineIndexError{Index: alloc.LineIndex, Lines: len(items)}
			}
			if alloc.Quantity <= 0 {
				return ErrInvalidQuantity
			}
			if alloc.SellingPriceOverride != nil && alloc.SellingPriceOverride.IsNegative() {
				return ErrNegativePrice
			}
			requested[alloc.LineIndex] += alloc.Quantity
		}
	}

	for idx, total := range requested {
		item := items[idx]
		if total > item.Quantity {
			return &StockExceededError{
				ProductName: item.ProductName,
				Requested:   total,
				Available:   item.Quantity,
			}
		}
	}

	return nil
}

// AllocateCustomerOrder materializes one customer order from its allocation
// requests. Caller has already validated stock and line indices. Each
// allocation carries a proportional share of the line's final cost:
// unitCost = finalCost / lineQuantity, allocatedCost = unitCost * quantity,
// profit = sellingTotal - allocatedCost. The sub-order starts unpaid with
// remainingAmount = totalBillable. IDs are left for the caller to assign.
func AllocateCustomerOrder(items []OrderItem, req CustomerOrderRequest) CustomerOrder {
	co := CustomerOrder{
		CustomerID:    req.CustomerID,
		TotalBillable: decimal.Zero,
		TotalPaid:     decimal.Zero,
	}

	for _, alloc := range req.Allocations {
		item := items[alloc.LineIndex]
		qty := decimal.NewFromInt(int64(alloc.Quantity))

		price := item.UnitSellingPrice
		if alloc.SellingPriceOverride != nil {
			price = *alloc.SellingPriceOverride
		}

		// Selling figures are native-currency and round at 4 decimal places
		// like the order line's selling_total; allocated cost is base-currency
		// and rounds at 2.
		sellingTotal := price.Mul(qty).Round(4)
		unitCost := item.FinalCost.Div(decimal.NewFromInt(int64(item.Quantity)))
		allocatedCost := unitCost.Mul(qty).Round(2)

		co.Items = append(co.Items, CustomerOrderItem{
			OrderItemID:   item.ID,
			LineIndex:     alloc.LineIndex,
			Quantity:      alloc.Quantity,
			SellingPrice:  price,
			SellingTotal:  sellingTotal,
			AllocatedCost: allocatedCost,
			Profit:        sellingTotal.Sub(allocatedCost),
		})

		co.TotalBillable = co.TotalBillable.Add(sellingTotal)
	}

	co.TotalBillable = co.TotalBillable.Round(4)
	co.RemainingAmount = co.TotalBillable
	co.PaymentStatus = PaymentStatusFor(co.TotalBillable, co.TotalPaid)

	return co
}
