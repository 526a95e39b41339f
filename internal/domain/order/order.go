package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shwekart/preorder-backend/internal/domain/customer"
	"github.com/shwekart/preorder-backend/internal/domain/exchange"
	"github.com/shwekart/preorder-backend/internal/domain/merchant"
)

// ArrivalStatus tracks whether the purchased goods have arrived.
type ArrivalStatus string

const (
	NotArrived ArrivalStatus = "NOT_ARRIVED"
	Arrived    ArrivalStatus = "ARRIVED"
)

// PaymentStatus is the three-way payment state shared by orders and
// customer orders.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// PaymentStatusFor derives the payment status from a billable total and the
// amount paid so far: UNPAID when paid <= 0, PAID when paid >= billable,
// PARTIAL otherwise.
func PaymentStatusFor(billable, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return PaymentUnpaid
	case paid.GreaterThanOrEqual(billable):
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// Order is one purchase event for a merchant. Aggregate totals are in the
// merchant's base currency and the BUY/SELL rate values are frozen at
// creation time.
type Order struct {
	ID            string
	MerchantID    string
	Code          string
	OrderDate     time.Time
	ArrivalStatus ArrivalStatus

	BuyRate  decimal.Decimal
	SellRate decimal.Decimal

	TotalPurchase           decimal.Decimal
	TotalShipping           decimal.Decimal
	TotalCostBeforeDiscount decimal.Decimal
	TotalDiscount           decimal.Decimal
	TotalCost               decimal.Decimal
	TotalSelling            decimal.Decimal
	TotalProfit             decimal.Decimal

	TotalBillable   decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	PaymentStatus   PaymentStatus

	Items          []OrderItem
	CustomerOrders []CustomerOrder

	CreatedAt time.Time
}

// OrderItem is one purchased product line. Each cost, selling, and profit
// figure is stored both in the line's native currency and in the merchant's
// base currency using the frozen rates. Index is the stable ordinal used by
// customer-order allocations.
type OrderItem struct {
	ID          string
	OrderID     string
	Index       int
	ProductName string
	Variant     string
	Quantity    int

	UnitPurchasePrice decimal.Decimal
	UnitShippingPrice decimal.Decimal
	Discount          Discount
	UnitSellingPrice  decimal.Decimal

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

	BuyRate  decimal.Decimal
	SellRate decimal.Decimal
}

// CustomerOrder is a customer's claim on a subset of an order's lines.
type CustomerOrder struct {
	ID         string
	OrderID    string
	CustomerID string

	TotalBillable   decimal.Decimal
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal
	PaymentStatus   PaymentStatus

	Items []CustomerOrderItem
}

// CustomerOrderItem allocates a quantity of an order line to a customer
// order, carrying a proportional share of the line's final cost for margin
// attribution.
type CustomerOrderItem struct {
	ID              string
	CustomerOrderID string
	OrderItemID     string
	LineIndex       int
	Quantity        int

	SellingPrice  decimal.Decimal
	SellingTotal  decimal.Decimal
	AllocatedCost decimal.Decimal
	Profit        decimal.Decimal
}

// Repository defines persistence operations for the order graph. Inside the
// creation flow every call runs on the same transaction.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	CreateItems(ctx context.Context, items []OrderItem) error
	CreateCustomerOrder(ctx context.Context, co *CustomerOrder) error
	CreateCustomerOrderItems(ctx context.Context, items []CustomerOrderItem) error
	UpdateTotals(ctx context.Context, o *Order) error

	GetOrder(ctx context.Context, id string) (*Order, error)
	GetGraph(ctx context.Context, id string) (*Order, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]Order, error)

	UpdateArrival(ctx context.Context, orderID string, status ArrivalStatus) error

	GetCustomerOrder(ctx context.Context, id string) (*CustomerOrder, error)
	ListCustomerOrders(ctx context.Context, orderID string) ([]CustomerOrder, error)
	UpdateCustomerOrderPayment(ctx context.Context, co *CustomerOrder) error
	UpdateOrderPayment(ctx context.Context, o *Order) error
}

// Stores bundles every repository the creation flow touches. A TxRunner
// hands the flow a Stores bound to one transaction.
type Stores struct {
	Merchants merchant.Repository
	Customers customer.Repository
	Rates     exchange.Repository
	Orders    Repository
}

// TxRunner supplies one database transaction shared by every read and write
// inside fn. If fn returns an error the transaction is rolled back and
// nothing is committed.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
